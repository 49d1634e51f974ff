package handler

import (
	"net/http"

	"github.com/hathi-labs/tuskwatch/internal/api/respond"
	"github.com/hathi-labs/tuskwatch/internal/store"
)

// ListHotspots returns all active hotspots with their zone parameters.
// Map clients draw these as overlays; live changes arrive on the
// `hotspots` websocket topic.
// @Summary List active hotspots
// @Tags hotspots
// @Produce json
// @Success 200 {array} store.Hotspot
// @Router /hotspots [get]
func (h *Handler) ListHotspots(w http.ResponseWriter, r *http.Request) {
	hotspots, err := h.store.ActiveHotspots(r.Context())
	if err != nil {
		respond.WriteError(w, http.StatusInternalServerError, "query_failed", "Could not list hotspots")
		return
	}
	if hotspots == nil {
		hotspots = []store.Hotspot{}
	}
	respond.WriteJSON(w, http.StatusOK, hotspots)
}
