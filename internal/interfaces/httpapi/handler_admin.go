package httpapi

import (
	"context"
	"net/http"
)

func (h *Handler) GetListenerStatus(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetListenerStatus")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, listenerStatusDTO{
		Status:  h.listener.Status(),
		Matches: h.listener.MatchStatuses(),
	})
}

func (h *Handler) StartListener(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.StartListener")
	defer span.End()

	// The listener outlives the request that started it.
	if err := h.listener.Start(context.WithoutCancel(ctx)); err != nil {
		h.logger.WarnContext(ctx, "start listener failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, h.listener.Status())
}

func (h *Handler) StopListener(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.StopListener")
	defer span.End()

	if err := h.listener.Stop(ctx); err != nil {
		h.logger.ErrorContext(ctx, "stop listener failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, h.listener.Status())
}

func (h *Handler) ForceCheck(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ForceCheck")
	defer span.End()

	report, err := h.listener.ForceCheck(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "force check failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, report)
}

func (h *Handler) Reconcile(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Reconcile")
	defer span.End()

	report, err := h.listener.Reconcile(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "reconcile failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, report)
}

func (h *Handler) ScoreMatch(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ScoreMatch")
	defer span.End()

	matchID, err := parseMatchID(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req scoreMatchRequest
	if err := decodeJSONBody(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	report, err := h.autoScorer.ScoreMatchManually(ctx, matchID, *req.HomeScore, *req.AwayScore)
	if err != nil {
		h.logger.ErrorContext(ctx, "manual scoring failed", "match_id", matchID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, report)
}

func (h *Handler) PurgeMatchPredictions(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.PurgeMatchPredictions")
	defer span.End()

	matchID, err := parseMatchID(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	deleted, err := h.predictionService.PurgeByMatch(ctx, matchID)
	if err != nil {
		h.logger.ErrorContext(ctx, "purge match predictions failed", "match_id", matchID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, purgeResultDTO{MatchID: matchID, Deleted: deleted})
}
