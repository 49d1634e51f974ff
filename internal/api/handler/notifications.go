package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/hathi-labs/tuskwatch/internal/api/respond"
	"github.com/hathi-labs/tuskwatch/internal/store"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

// ListNotifications returns a user's notification audit trail, newest first.
// @Summary List notifications
// @Description Returns the persisted notification records for one user.
// @Tags notifications
// @Produce json
// @Param userID path int true "User ID"
// @Param limit query int false "Page size (max 200)"
// @Param offset query int false "Offset"
// @Success 200 {array} store.Notification
// @Failure 400 {object} respond.ErrorResponse
// @Router /notifications/{userID} [get]
func (h *Handler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil {
		respond.WriteError(w, http.StatusBadRequest, "invalid_user_id", "userID must be an integer")
		return
	}

	limit := queryInt(r, "limit", defaultPageSize)
	if limit < 1 || limit > maxPageSize {
		limit = defaultPageSize
	}
	offset := max(queryInt(r, "offset", 0), 0)

	list, err := h.store.ListNotifications(r.Context(), userID, limit, offset)
	if err != nil {
		respond.WriteError(w, http.StatusInternalServerError, "query_failed", "Could not list notifications")
		return
	}
	if list == nil {
		list = []store.Notification{}
	}
	respond.WriteJSON(w, http.StatusOK, list)
}

// MarkNotificationRead flips the read flag on one notification.
// @Summary Mark notification read
// @Tags notifications
// @Produce json
// @Param id path int true "Notification ID"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} respond.ErrorResponse
// @Failure 404 {object} respond.ErrorResponse
// @Router /notifications/{id}/read [post]
func (h *Handler) MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respond.WriteError(w, http.StatusBadRequest, "invalid_id", "id must be an integer")
		return
	}

	if err := h.store.MarkNotificationRead(r.Context(), id); err != nil {
		respond.WriteError(w, http.StatusNotFound, "not_found", "Notification not found")
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"id": id, "read": true})
}

func queryInt(r *http.Request, key string, fallback int) int {
	if v := r.URL.Query().Get(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
