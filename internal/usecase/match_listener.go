package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/panjf2000/ants/v2"
	"github.com/riskibarqy/match-predictor/internal/domain/match"
	"github.com/riskibarqy/match-predictor/internal/domain/notification"
	"github.com/riskibarqy/match-predictor/internal/platform/logging"
	"go.opentelemetry.io/otel/attribute"
)

const (
	defaultPollInterval     = 2 * time.Minute
	defaultFetchTimeout     = 15 * time.Second
	defaultStopTimeout      = 30 * time.Second
	defaultReconcileWorkers = 4
)

// MatchScorer is the scoring capability the listener drives.
type MatchScorer interface {
	ScoreIfUnscored(ctx context.Context, m match.Match) (ScoreReport, error)
}

type MatchEventListenerConfig struct {
	PollInterval     time.Duration
	FetchTimeout     time.Duration
	StopTimeout      time.Duration
	ReconcileWorkers int
}

// MatchStatusEntry is the last observed state of one match.
type MatchStatusEntry struct {
	MatchID    int64        `json:"matchId"`
	Status     match.Status `json:"status"`
	HomeScore  int          `json:"homeScore"`
	AwayScore  int          `json:"awayScore"`
	LastUpdate time.Time    `json:"lastUpdate"`
}

type ListenerStatus struct {
	IsRunning      bool       `json:"isRunning"`
	LastCheckTime  *time.Time `json:"lastCheckTime"`
	TrackedMatches int        `json:"trackedMatches"`
}

// CheckReport describes the outcome of one poll pass.
type CheckReport struct {
	Initialized  bool          `json:"initialized"`
	Tracked      int           `json:"tracked"`
	Transitions  int           `json:"transitions"`
	ScoreChanges int           `json:"scoreChanges"`
	Finished     []int64       `json:"finished"`
	Scored       []ScoreReport `json:"scored"`
	Failed       int           `json:"failed"`
	CheckedAt    time.Time     `json:"checkedAt"`
}

// MatchEventListener polls the match source, diffs each snapshot against the
// last observed state and scores matches that transition into FINISHED.
// Every pass that reads or writes the status cache holds passMu.
type MatchEventListener struct {
	source    match.Source
	scorer    MatchScorer
	publisher notification.Publisher
	metrics   PipelineMetrics
	logger    *logging.Logger
	cfg       MatchEventListenerConfig
	now       func() time.Time

	passMu      sync.Mutex
	initialized bool

	cacheMu sync.RWMutex
	cache   map[int64]MatchStatusEntry

	running   atomic.Bool
	lastCheck atomic.Pointer[time.Time]

	lifecycleMu sync.Mutex
	scheduler   gocron.Scheduler
	cancelRun   context.CancelFunc
}

func NewMatchEventListener(
	source match.Source,
	scorer MatchScorer,
	publisher notification.Publisher,
	metrics PipelineMetrics,
	cfg MatchEventListenerConfig,
	logger *logging.Logger,
) *MatchEventListener {
	if publisher == nil {
		publisher = notification.NopPublisher{}
	}
	if metrics == nil {
		metrics = nopPipelineMetrics{}
	}
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = defaultPollInterval
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = defaultFetchTimeout
	}
	if cfg.StopTimeout <= 0 {
		cfg.StopTimeout = defaultStopTimeout
	}
	if cfg.ReconcileWorkers <= 0 {
		cfg.ReconcileWorkers = defaultReconcileWorkers
	}

	return &MatchEventListener{
		source:    source,
		scorer:    scorer,
		publisher: publisher,
		metrics:   metrics,
		logger:    logger.With("component", "match_event_listener"),
		cfg:       cfg,
		now:       time.Now,
		cache:     make(map[int64]MatchStatusEntry),
	}
}

// Start seeds the status cache with one poll and schedules periodic checks.
// A failed initialization poll is not fatal: the first tick seeds instead.
func (l *MatchEventListener) Start(ctx context.Context) error {
	l.lifecycleMu.Lock()
	defer l.lifecycleMu.Unlock()

	if l.running.Load() {
		return ErrListenerRunning
	}

	if _, err := l.check(ctx); err != nil {
		l.logger.WarnContext(ctx, "initialization poll failed, next tick will seed the cache", "error", err)
	}

	scheduler, err := gocron.NewScheduler(
		gocron.WithLogger(l.logger),
		gocron.WithStopTimeout(l.cfg.StopTimeout),
	)
	if err != nil {
		return fmt.Errorf("create listener scheduler: %w", err)
	}

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	_, err = scheduler.NewJob(
		gocron.DurationJob(l.cfg.PollInterval),
		gocron.NewTask(func() { l.tick(runCtx) }),
		gocron.WithName("match-status-check"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		cancel()
		_ = scheduler.Shutdown()
		return fmt.Errorf("schedule match status check: %w", err)
	}

	scheduler.Start()
	l.scheduler = scheduler
	l.cancelRun = cancel
	l.running.Store(true)

	l.logger.InfoContext(ctx, "match event listener started",
		"poll_interval", l.cfg.PollInterval,
		"fetch_timeout", l.cfg.FetchTimeout,
		"tracked_matches", l.trackedCount(),
	)
	return nil
}

// Stop halts the timer after the in-flight pass completes and clears the cache.
func (l *MatchEventListener) Stop(ctx context.Context) error {
	l.lifecycleMu.Lock()
	defer l.lifecycleMu.Unlock()

	if !l.running.Load() {
		return nil
	}

	var shutdownErr error
	if l.scheduler != nil {
		shutdownErr = l.scheduler.Shutdown()
	}

	// Waits for any ad-hoc ForceCheck or Reconcile pass.
	l.passMu.Lock()
	if l.cancelRun != nil {
		l.cancelRun()
	}
	l.cacheMu.Lock()
	l.cache = make(map[int64]MatchStatusEntry)
	l.cacheMu.Unlock()
	l.initialized = false
	l.passMu.Unlock()

	l.scheduler = nil
	l.cancelRun = nil
	l.running.Store(false)
	l.metrics.SetTrackedMatches(0)

	if shutdownErr != nil {
		l.logger.WarnContext(ctx, "listener scheduler shutdown", "error", shutdownErr)
		return fmt.Errorf("shutdown listener scheduler: %w", shutdownErr)
	}
	l.logger.InfoContext(ctx, "match event listener stopped")
	return nil
}

// ForceCheck runs one out-of-band check, serialized with the timer.
func (l *MatchEventListener) ForceCheck(ctx context.Context) (CheckReport, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchEventListener.ForceCheck")
	defer span.End()

	l.logger.InfoContext(ctx, "force check requested")
	return l.check(ctx)
}

// Reconcile runs a normal check and then scores every FINISHED match in the
// snapshot, relying on the scorer's idempotency guard. It recovers matches that
// finished while the process was down.
func (l *MatchEventListener) Reconcile(ctx context.Context) (CheckReport, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchEventListener.Reconcile")
	defer span.End()

	l.passMu.Lock()
	defer l.passMu.Unlock()

	snapshot, err := l.fetch(ctx)
	if err != nil {
		return CheckReport{}, err
	}

	report := l.applySnapshot(ctx, snapshot)
	finished := make([]match.Match, 0, len(snapshot))
	for _, m := range snapshot {
		if m.Status.IsFinished() {
			finished = append(finished, m)
		}
	}

	report.Finished = matchIDs(finished)
	report.Scored, report.Failed, err = l.scoreConcurrently(ctx, finished)
	if err != nil {
		return report, err
	}
	report.CheckedAt = l.markChecked()
	span.SetAttributes(attribute.Int("reconcile.finished", len(finished)))

	l.logger.InfoContext(ctx, "reconciliation completed",
		"finished", len(finished),
		"failed", report.Failed,
		"tracked", report.Tracked,
	)
	return report, nil
}

func (l *MatchEventListener) Status() ListenerStatus {
	return ListenerStatus{
		IsRunning:      l.running.Load(),
		LastCheckTime:  l.lastCheck.Load(),
		TrackedMatches: l.trackedCount(),
	}
}

// MatchStatuses returns a copy of the status cache ordered by match id.
func (l *MatchEventListener) MatchStatuses() []MatchStatusEntry {
	l.cacheMu.RLock()
	out := make([]MatchStatusEntry, 0, len(l.cache))
	for _, entry := range l.cache {
		out = append(out, entry)
	}
	l.cacheMu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].MatchID < out[j].MatchID })
	return out
}

func (l *MatchEventListener) tick(ctx context.Context) {
	if _, err := l.check(ctx); err != nil {
		l.logger.WarnContext(ctx, "scheduled match status check failed", "error", err)
	}
}

func (l *MatchEventListener) check(ctx context.Context) (CheckReport, error) {
	l.passMu.Lock()
	defer l.passMu.Unlock()

	snapshot, err := l.fetch(ctx)
	if err != nil {
		return CheckReport{}, err
	}

	report := l.applySnapshot(ctx, snapshot)
	if report.Initialized {
		report.CheckedAt = l.markChecked()
		l.logger.InfoContext(ctx, "status cache initialized", "tracked", report.Tracked)
		return report, nil
	}

	finished := make([]match.Match, 0, len(report.Finished))
	byID := indexByID(snapshot)
	for _, id := range report.Finished {
		finished = append(finished, byID[id])
	}

	report.Scored = make([]ScoreReport, 0, len(finished))
	for _, m := range finished {
		scored, scoreErr := l.scorer.ScoreIfUnscored(ctx, m)
		if scoreErr != nil {
			report.Failed++
			l.logger.ErrorContext(ctx, "score finished match failed", "match_id", m.ID, "error", scoreErr)
		}
		report.Scored = append(report.Scored, scored)
	}
	report.CheckedAt = l.markChecked()

	if report.Transitions > 0 || len(report.Finished) > 0 {
		l.logger.InfoContext(ctx, "match status check completed",
			"tracked", report.Tracked,
			"transitions", report.Transitions,
			"finished", len(report.Finished),
			"failed", report.Failed,
		)
	}
	return report, nil
}

// fetch bounds the snapshot call by FetchTimeout and dedupes ids.
func (l *MatchEventListener) fetch(ctx context.Context) ([]match.Match, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, l.cfg.FetchTimeout)
	defer cancel()

	snapshot, err := l.source.FetchSnapshot(fetchCtx)
	l.metrics.ObservePoll(err)
	if err != nil {
		l.logger.WarnContext(ctx, "fetch match snapshot failed, keeping cached state", "error", err)
		return nil, fmt.Errorf("fetch match snapshot: %w", err)
	}
	return match.DedupeByID(snapshot), nil
}

// applySnapshot diffs snapshot against the cache and records the new state.
// On the first successful pass it only seeds. Callers hold passMu.
func (l *MatchEventListener) applySnapshot(ctx context.Context, snapshot []match.Match) CheckReport {
	now := l.now().UTC()
	report := CheckReport{Finished: []int64{}}

	l.cacheMu.Lock()
	if !l.initialized {
		for _, m := range snapshot {
			l.cache[m.ID] = entryOf(m, now)
		}
		l.initialized = true
		report.Initialized = true
		report.Tracked = len(l.cache)
		l.cacheMu.Unlock()
		l.metrics.SetTrackedMatches(report.Tracked)
		return report
	}

	var events []notification.Event
	for _, m := range snapshot {
		prev, seen := l.cache[m.ID]
		l.cache[m.ID] = entryOf(m, now)

		if !seen {
			// A match first observed as FINISHED after initialization is scored
			// right away; the scorer's guard makes this safe.
			if m.Status.IsFinished() {
				report.Finished = append(report.Finished, m.ID)
			}
			continue
		}

		if prev.Status != m.Status {
			report.Transitions++
			l.metrics.ObserveTransition(m.Status.String())
			events = append(events, notification.Event{
				Name:    notification.EventMatchStatusChanged,
				MatchID: m.ID,
				Payload: notification.MatchStatusChanged{
					MatchID:   m.ID,
					OldStatus: prev.Status.String(),
					NewStatus: m.Status.String(),
				},
				OccurredAt: now,
			})
			l.logger.InfoContext(ctx, "match status changed",
				"match_id", m.ID,
				"old_status", prev.Status,
				"new_status", m.Status,
				"home_score", m.HomeScore,
				"away_score", m.AwayScore,
			)
			if m.Status.IsFinished() {
				report.Finished = append(report.Finished, m.ID)
			}
			continue
		}

		if prev.HomeScore != m.HomeScore || prev.AwayScore != m.AwayScore {
			report.ScoreChanges++
			events = append(events, notification.Event{
				Name:    notification.EventMatchScoreChanged,
				MatchID: m.ID,
				Payload: notification.MatchScoreChanged{
					MatchID:   m.ID,
					HomeScore: m.HomeScore,
					AwayScore: m.AwayScore,
				},
				OccurredAt: now,
			})
		}
	}
	report.Tracked = len(l.cache)
	l.cacheMu.Unlock()

	l.metrics.SetTrackedMatches(report.Tracked)
	for _, event := range events {
		if err := l.publisher.Publish(ctx, event); err != nil {
			l.logger.WarnContext(ctx, "publish notification failed", "event", event.Name, "match_id", event.MatchID, "error", err)
		}
	}
	return report
}

func (l *MatchEventListener) scoreConcurrently(ctx context.Context, finished []match.Match) ([]ScoreReport, int, error) {
	if len(finished) == 0 {
		return []ScoreReport{}, 0, nil
	}

	workerPool, err := ants.NewPool(l.cfg.ReconcileWorkers)
	if err != nil {
		return nil, 0, fmt.Errorf("create reconcile worker pool: %w", err)
	}
	defer workerPool.Release()

	reports := make([]ScoreReport, len(finished))
	var failed atomic.Int32
	var workers sync.WaitGroup
	for i, m := range finished {
		i, m := i, m
		workers.Add(1)
		if err := workerPool.Submit(func() {
			defer workers.Done()

			scored, scoreErr := l.scorer.ScoreIfUnscored(ctx, m)
			if scoreErr != nil {
				failed.Add(1)
				l.logger.ErrorContext(ctx, "reconcile match failed", "match_id", m.ID, "error", scoreErr)
			}
			reports[i] = scored
		}); err != nil {
			workers.Done()
			workers.Wait()
			return nil, 0, fmt.Errorf("submit reconcile task: %w", err)
		}
	}
	workers.Wait()

	return reports, int(failed.Load()), nil
}

func (l *MatchEventListener) markChecked() time.Time {
	checked := l.now().UTC()
	l.lastCheck.Store(&checked)
	return checked
}

func (l *MatchEventListener) trackedCount() int {
	l.cacheMu.RLock()
	defer l.cacheMu.RUnlock()
	return len(l.cache)
}

func entryOf(m match.Match, now time.Time) MatchStatusEntry {
	return MatchStatusEntry{
		MatchID:    m.ID,
		Status:     m.Status,
		HomeScore:  m.HomeScore,
		AwayScore:  m.AwayScore,
		LastUpdate: now,
	}
}

func indexByID(items []match.Match) map[int64]match.Match {
	out := make(map[int64]match.Match, len(items))
	for _, item := range items {
		out[item.ID] = item
	}
	return out
}

func matchIDs(items []match.Match) []int64 {
	out := make([]int64, 0, len(items))
	for _, item := range items {
		out = append(out, item.ID)
	}
	return out
}
