package handlers

import (
	"net/http"

	"github.com/youtoob/backend/internal/logging"
	"github.com/youtoob/backend/internal/middleware"
	"github.com/youtoob/backend/internal/relations"
)

// RelationHandler exposes the like/subscribe toggle endpoint.
type RelationHandler struct {
	Relations RelationToggler
}

// Toggle handles POST /api/v1/relations/toggle/{kind}/{targetID} requests.
// The same call both likes and unlikes (or subscribes and unsubscribes); the
// response reports which way the edge flipped.
func (h RelationHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	ctx, span := logging.StartSpan(r.Context(), "relations.toggle")
	defer span.End()
	logger := logging.FromContext(ctx)

	actorID, ok := middleware.UserID(ctx)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, kindUnauthorized, "authentication required")
		return
	}

	kind, err := relations.ParseKind(r.PathValue("kind"))
	if err != nil {
		logger.Warn("toggle with unknown kind", "kind", r.PathValue("kind"))
		respondDomainError(ctx, w, err)
		return
	}

	targetID := r.PathValue("targetID")
	if targetID == "" {
		respondError(ctx, w, http.StatusBadRequest, kindValidation, "target id is required")
		return
	}

	state, err := h.Relations.Toggle(ctx, actorID, targetID, kind)
	if err != nil {
		logger.Warn("toggle failed", "kind", kind, "targetId", targetID, "error", err)
		respondDomainError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, toggleResponse{State: state})
}

type toggleResponse struct {
	State relations.State `json:"state"`
}
