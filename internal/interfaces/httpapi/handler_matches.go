package httpapi

import "net/http"

// ListMatches serves the current snapshot grouped by competition.
// ?view= selects all (default), live or upcoming.
func (h *Handler) ListMatches(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListMatches")
	defer span.End()

	view := r.URL.Query().Get("view")
	groups, err := h.matchCatalog.ByCompetition(ctx, view)
	if err != nil {
		h.logger.WarnContext(ctx, "list matches failed", "view", view, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, groups)
}
