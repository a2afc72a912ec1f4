package httpapi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/match-predictor/internal/domain/match"
	"github.com/riskibarqy/match-predictor/internal/infrastructure/repository/memory"
	idgen "github.com/riskibarqy/match-predictor/internal/platform/id"
	"github.com/riskibarqy/match-predictor/internal/platform/logging"
	"github.com/riskibarqy/match-predictor/internal/usecase"
)

const testAdminToken = "admin-secret"

type testServer struct {
	router   http.Handler
	source   *memory.MatchSource
	listener *usecase.MatchEventListener
}

func newTestServer(t *testing.T, adminToken string) testServer {
	t.Helper()

	logger := logging.NewNop()
	predictions := memory.NewPredictionRepository()
	stats := memory.NewUserStatsRepository()
	source := memory.NewMatchSource()

	scorer := usecase.NewAutoScorer(predictions, stats, nil, nil, usecase.AutoScorerConfig{Workers: 2}, logger)
	listener := usecase.NewMatchEventListener(source, scorer, nil, nil, usecase.MatchEventListenerConfig{
		PollInterval: time.Hour,
		FetchTimeout: time.Second,
		StopTimeout:  time.Second,
	}, logger)
	t.Cleanup(func() { _ = listener.Stop(context.Background()) })

	handler := NewHandler(
		usecase.NewPredictionService(predictions, nil, idgen.NewUUIDGenerator(), logger),
		usecase.NewLeaderboardService(stats),
		usecase.NewMatchCatalog(source, time.Second),
		scorer,
		listener,
		logger,
	)
	router := NewRouter(handler, RouterConfig{
		CORSAllowedOrigins: []string{"*"},
		AdminToken:         adminToken,
		MetricsHandler: http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("metrics"))
		}),
	}, logger)

	return testServer{router: router, source: source, listener: listener}
}

func (s testServer) do(t *testing.T, method, path, body string, admin bool) (int, map[string]any) {
	t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if admin {
		req.Header.Set(AdminTokenHeader, testAdminToken)
	}

	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	var out map[string]any
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		if err := sonic.Unmarshal(rec.Body.Bytes(), &out); err != nil {
			t.Fatalf("unmarshal response body: %v", err)
		}
	}
	return rec.Code, out
}

func errorReason(body map[string]any) string {
	errObj, _ := body["error"].(map[string]any)
	items, _ := errObj["errors"].([]any)
	if len(items) == 0 {
		return ""
	}
	first, _ := items[0].(map[string]any)
	reason, _ := first["reason"].(string)
	return reason
}

func TestHandler_SubmitPrediction(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, testAdminToken)
	payload := `{"user":"alice","matchId":42,"homeScore":2,"awayScore":1,"homeTeam":"Arsenal","awayTeam":"Chelsea","matchStatus":"TIMED"}`

	code, body := srv.do(t, http.MethodPost, "/v1/predictions", payload, false)
	if code != http.StatusCreated {
		t.Fatalf("unexpected status: got=%d want=%d body=%v", code, http.StatusCreated, body)
	}
	data, _ := body["data"].(map[string]any)
	if data["user"] != "alice" || data["matchId"] != float64(42) || data["isScored"] != false {
		t.Fatalf("unexpected prediction payload: %v", data)
	}
	info, _ := data["matchInfo"].(map[string]any)
	if info["status"] != string(match.StatusScheduled) {
		t.Fatalf("unexpected match info status: got=%v want=%s", info["status"], match.StatusScheduled)
	}

	code, body = srv.do(t, http.MethodPost, "/v1/predictions", payload, false)
	if code != http.StatusConflict {
		t.Fatalf("duplicate prediction: got=%d want=%d", code, http.StatusConflict)
	}
	if reason := errorReason(body); reason != "conflict" {
		t.Fatalf("unexpected error reason: got=%q want=conflict", reason)
	}
}

func TestHandler_SubmitPredictionRejectsBadInput(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		body       string
		wantReason string
	}{
		{name: "empty body", body: "", wantReason: "invalidInput"},
		{name: "unknown field", body: `{"user":"alice","matchId":1,"homeScore":0,"awayScore":0,"extra":true}`, wantReason: "invalidInput"},
		{name: "missing away score", body: `{"user":"alice","matchId":1,"homeScore":0}`, wantReason: "invalidInput"},
		{name: "negative score", body: `{"user":"alice","matchId":1,"homeScore":-1,"awayScore":0}`, wantReason: "invalidInput"},
		{name: "closed match", body: `{"user":"alice","matchId":1,"homeScore":1,"awayScore":0,"matchStatus":"IN_PLAY"}`, wantReason: "matchClosed"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			srv := newTestServer(t, testAdminToken)
			code, body := srv.do(t, http.MethodPost, "/v1/predictions", tc.body, false)
			if code != http.StatusBadRequest {
				t.Fatalf("unexpected status: got=%d want=%d", code, http.StatusBadRequest)
			}
			if reason := errorReason(body); reason != tc.wantReason {
				t.Fatalf("unexpected error reason: got=%q want=%q", reason, tc.wantReason)
			}
		})
	}
}

func TestHandler_ScoreMatchUpdatesLeaderboard(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, testAdminToken)
	for _, payload := range []string{
		`{"user":"alice","matchId":7,"homeScore":2,"awayScore":1}`,
		`{"user":"bob","matchId":7,"homeScore":1,"awayScore":0}`,
		`{"user":"carol","matchId":7,"homeScore":0,"awayScore":0}`,
	} {
		if code, body := srv.do(t, http.MethodPost, "/v1/predictions", payload, false); code != http.StatusCreated {
			t.Fatalf("seed prediction: got=%d body=%v", code, body)
		}
	}

	code, body := srv.do(t, http.MethodPost, "/v1/admin/matches/7/score", `{"homeScore":2,"awayScore":1}`, true)
	if code != http.StatusOK {
		t.Fatalf("score match: got=%d body=%v", code, body)
	}
	report, _ := body["data"].(map[string]any)
	if report["scored"] != float64(3) {
		t.Fatalf("unexpected scored count: got=%v want=3", report["scored"])
	}

	// A second pass finds nothing left to score.
	_, body = srv.do(t, http.MethodPost, "/v1/admin/matches/7/score", `{"homeScore":2,"awayScore":1}`, true)
	report, _ = body["data"].(map[string]any)
	if report["pending"] != float64(0) || report["scored"] != float64(0) {
		t.Fatalf("expected empty repeat pass, got=%v", report)
	}

	code, body = srv.do(t, http.MethodGet, "/v1/leaderboard?limit=2", "", false)
	if code != http.StatusOK {
		t.Fatalf("leaderboard: got=%d", code)
	}
	entries, _ := body["data"].([]any)
	if len(entries) != 2 {
		t.Fatalf("unexpected leaderboard size: got=%d want=2", len(entries))
	}
	top, _ := entries[0].(map[string]any)
	if top["username"] != "alice" || top["totalScore"] != float64(10) || top["rank"] != float64(1) {
		t.Fatalf("unexpected leader: %v", top)
	}
	second, _ := entries[1].(map[string]any)
	if second["username"] != "bob" || second["totalScore"] != float64(3) {
		t.Fatalf("unexpected runner-up: %v", second)
	}

	code, body = srv.do(t, http.MethodGet, "/v1/users/carol/stats", "", false)
	if code != http.StatusOK {
		t.Fatalf("user stats: got=%d", code)
	}
	stats, _ := body["data"].(map[string]any)
	if stats["totalPredictions"] != float64(1) || stats["correctPredictions"] != float64(0) {
		t.Fatalf("unexpected carol stats: %v", stats)
	}

	code, body = srv.do(t, http.MethodGet, "/v1/matches/7/predictions", "", false)
	if code != http.StatusOK {
		t.Fatalf("match predictions: got=%d", code)
	}
	items, _ := body["data"].([]any)
	if len(items) != 3 {
		t.Fatalf("unexpected prediction count: got=%d want=3", len(items))
	}
	for _, raw := range items {
		item, _ := raw.(map[string]any)
		if item["isScored"] != true || item["actualHomeScore"] != float64(2) {
			t.Fatalf("expected scored prediction, got=%v", item)
		}
	}
}

func TestHandler_UserStatsNotFound(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, testAdminToken)
	code, body := srv.do(t, http.MethodGet, "/v1/users/nobody/stats", "", false)
	if code != http.StatusNotFound {
		t.Fatalf("unexpected status: got=%d want=%d", code, http.StatusNotFound)
	}
	if reason := errorReason(body); reason != "notFound" {
		t.Fatalf("unexpected error reason: got=%q", reason)
	}
}

func TestHandler_InvalidPathAndQuery(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, testAdminToken)
	paths := []string{
		"/v1/matches/abc/predictions",
		"/v1/matches/0/predictions",
		"/v1/leaderboard?limit=-3",
		"/v1/users/alice/predictions?limit=ten",
	}
	for _, path := range paths {
		if code, _ := srv.do(t, http.MethodGet, path, "", false); code != http.StatusBadRequest {
			t.Fatalf("unexpected status for %s: got=%d want=%d", path, code, http.StatusBadRequest)
		}
	}
}

func TestHandler_AdminRoutesRequireToken(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, testAdminToken)
	code, body := srv.do(t, http.MethodGet, "/v1/admin/listener/status", "", false)
	if code != http.StatusUnauthorized {
		t.Fatalf("missing token: got=%d want=%d", code, http.StatusUnauthorized)
	}
	if reason := errorReason(body); reason != "unauthorized" {
		t.Fatalf("unexpected error reason: got=%q", reason)
	}

	unconfigured := newTestServer(t, "")
	code, _ = unconfigured.do(t, http.MethodGet, "/v1/admin/listener/status", "", true)
	if code != http.StatusServiceUnavailable {
		t.Fatalf("unconfigured token: got=%d want=%d", code, http.StatusServiceUnavailable)
	}
}

func TestHandler_ListenerLifecycleAndForceCheck(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, testAdminToken)
	srv.source.Set(
		match.Match{ID: 1, Status: match.StatusScheduled},
		match.Match{ID: 2, Status: match.StatusLive, HomeScore: 1},
	)

	code, body := srv.do(t, http.MethodPost, "/v1/admin/listener/force-check", "", true)
	if code != http.StatusOK {
		t.Fatalf("force check: got=%d body=%v", code, body)
	}
	report, _ := body["data"].(map[string]any)
	if report["initialized"] != true || report["tracked"] != float64(2) {
		t.Fatalf("unexpected check report: %v", report)
	}

	code, _ = srv.do(t, http.MethodPost, "/v1/admin/listener/start", "", true)
	if code != http.StatusOK {
		t.Fatalf("start listener: got=%d", code)
	}
	code, body = srv.do(t, http.MethodPost, "/v1/admin/listener/start", "", true)
	if code != http.StatusConflict || errorReason(body) != "listenerRunning" {
		t.Fatalf("second start: got=%d reason=%q", code, errorReason(body))
	}

	code, body = srv.do(t, http.MethodGet, "/v1/admin/listener/status", "", true)
	if code != http.StatusOK {
		t.Fatalf("status: got=%d", code)
	}
	data, _ := body["data"].(map[string]any)
	status, _ := data["status"].(map[string]any)
	if status["isRunning"] != true || status["trackedMatches"] != float64(2) {
		t.Fatalf("unexpected listener status: %v", status)
	}
	matches, _ := data["matches"].([]any)
	if len(matches) != 2 {
		t.Fatalf("unexpected match statuses: %v", matches)
	}

	code, body = srv.do(t, http.MethodPost, "/v1/admin/listener/stop", "", true)
	if code != http.StatusOK {
		t.Fatalf("stop listener: got=%d", code)
	}
	stopped, _ := body["data"].(map[string]any)
	if stopped["isRunning"] != false || stopped["trackedMatches"] != float64(0) {
		t.Fatalf("unexpected status after stop: %v", stopped)
	}
}

func TestHandler_ReconcileScoresFinishedMatches(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, testAdminToken)
	if code, _ := srv.do(t, http.MethodPost, "/v1/predictions", `{"user":"alice","matchId":9,"homeScore":1,"awayScore":1}`, false); code != http.StatusCreated {
		t.Fatalf("seed prediction: got=%d", code)
	}
	srv.source.Set(match.Match{ID: 9, Status: match.StatusFinished, HomeScore: 0, AwayScore: 0})

	code, body := srv.do(t, http.MethodPost, "/v1/admin/listener/reconcile", "", true)
	if code != http.StatusOK {
		t.Fatalf("reconcile: got=%d body=%v", code, body)
	}
	report, _ := body["data"].(map[string]any)
	finished, _ := report["finished"].([]any)
	if len(finished) != 1 || finished[0] != float64(9) {
		t.Fatalf("unexpected finished list: %v", report["finished"])
	}

	_, body = srv.do(t, http.MethodGet, "/v1/users/alice/stats", "", false)
	stats, _ := body["data"].(map[string]any)
	if stats["totalScore"] != float64(3) {
		t.Fatalf("expected outcome points after reconcile, got=%v", stats["totalScore"])
	}
}

func TestHandler_ForceCheckSourceUnavailable(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, testAdminToken)
	srv.source.Fail(usecase.ErrDependencyUnavailable)

	code, body := srv.do(t, http.MethodPost, "/v1/admin/listener/force-check", "", true)
	if code != http.StatusServiceUnavailable {
		t.Fatalf("unexpected status: got=%d want=%d body=%v", code, http.StatusServiceUnavailable, body)
	}
}

func TestHandler_ListMatchesGroupedByCompetition(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, testAdminToken)
	kickoff := time.Date(2026, 5, 2, 15, 0, 0, 0, time.UTC)
	srv.source.Set(
		match.Match{ID: 1, Status: match.StatusScheduled, Competition: "Premier League", MatchDate: kickoff.Add(2 * time.Hour)},
		match.Match{ID: 2, Status: match.StatusLive, Competition: "Premier League", MatchDate: kickoff},
		match.Match{ID: 3, Status: match.StatusScheduled, Competition: "La Liga", MatchDate: kickoff},
	)

	code, body := srv.do(t, http.MethodGet, "/v1/matches", "", false)
	if code != http.StatusOK {
		t.Fatalf("list matches: got=%d body=%v", code, body)
	}
	groups, _ := body["data"].([]any)
	if len(groups) != 2 {
		t.Fatalf("unexpected group count: got=%d want=2", len(groups))
	}
	first, _ := groups[0].(map[string]any)
	if first["competition"] != "Premier League" || first["count"] != float64(2) {
		t.Fatalf("unexpected first group: %v", first)
	}
	matches, _ := first["matches"].([]any)
	earliest, _ := matches[0].(map[string]any)
	if earliest["id"] != float64(2) {
		t.Fatalf("matches must be ordered by kickoff, got=%v", matches)
	}

	_, body = srv.do(t, http.MethodGet, "/v1/matches?view=upcoming", "", false)
	if groups, _ := body["data"].([]any); len(groups) != 2 {
		t.Fatalf("unexpected upcoming groups: got=%d want=2", len(groups))
	}
	_, body = srv.do(t, http.MethodGet, "/v1/matches?view=live", "", false)
	if groups, _ := body["data"].([]any); len(groups) != 1 {
		t.Fatalf("unexpected live groups: got=%d want=1", len(groups))
	}

	if code, _ := srv.do(t, http.MethodGet, "/v1/matches?view=tomorrow", "", false); code != http.StatusBadRequest {
		t.Fatalf("unexpected status for bad view: got=%d want=%d", code, http.StatusBadRequest)
	}

	srv.source.Fail(errors.New("provider down"))
	if code, _ := srv.do(t, http.MethodGet, "/v1/matches", "", false); code != http.StatusServiceUnavailable {
		t.Fatalf("unexpected status for source failure: got=%d want=%d", code, http.StatusServiceUnavailable)
	}
}

func TestHandler_PurgeMatchPredictions(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, testAdminToken)
	for _, user := range []string{"alice", "bob"} {
		payload := `{"user":"` + user + `","matchId":5,"homeScore":1,"awayScore":0}`
		if code, _ := srv.do(t, http.MethodPost, "/v1/predictions", payload, false); code != http.StatusCreated {
			t.Fatalf("seed prediction for %s: got=%d", user, code)
		}
	}

	code, body := srv.do(t, http.MethodDelete, "/v1/admin/matches/5/predictions", "", true)
	if code != http.StatusOK {
		t.Fatalf("purge: got=%d", code)
	}
	data, _ := body["data"].(map[string]any)
	if data["deleted"] != float64(2) {
		t.Fatalf("unexpected deleted count: got=%v want=2", data["deleted"])
	}

	_, body = srv.do(t, http.MethodGet, "/v1/matches/5/predictions", "", false)
	if items, _ := body["data"].([]any); len(items) != 0 {
		t.Fatalf("expected no predictions after purge, got=%d", len(items))
	}
}

func TestHandler_SystemRoutes(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, testAdminToken)
	code, body := srv.do(t, http.MethodGet, "/healthz", "", false)
	if code != http.StatusOK {
		t.Fatalf("healthz: got=%d", code)
	}
	data, _ := body["data"].(map[string]any)
	if data["status"] != "ok" {
		t.Fatalf("unexpected health payload: %v", data)
	}

	rec := httptest.NewRecorder()
	srv.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "metrics" {
		t.Fatalf("unexpected metrics response: code=%d body=%q", rec.Code, rec.Body.String())
	}
}

func TestRecoverPanic_WritesInternalError(t *testing.T) {
	t.Parallel()

	handler := recoverPanic(logging.NewNop(), http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/leaderboard", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("unexpected status: got=%d want=%d", rec.Code, http.StatusInternalServerError)
	}
}
