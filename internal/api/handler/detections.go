package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/hathi-labs/tuskwatch/internal/api/respond"
	"github.com/hathi-labs/tuskwatch/internal/pipeline"
)

// CreateDetection ingests one field-sensor detection event.
// @Summary Ingest a detection
// @Description Accepts a sensor detection, persists it, and fans out alerts. The dispatch summary in the response is observability only — once the detection is stored, provider failures do not fail the request.
// @Tags detections
// @Accept json
// @Produce json
// @Param detection body pipeline.IncomingDetection true "Detection event"
// @Success 201 {object} pipeline.Result
// @Failure 400 {object} respond.ErrorResponse
// @Failure 503 {object} respond.ErrorResponse
// @Router /detections [post]
func (h *Handler) CreateDetection(w http.ResponseWriter, r *http.Request) {
	var in pipeline.IncomingDetection
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respond.WriteErrorDetail(w, http.StatusBadRequest,
			"invalid_body", "Request body must be valid JSON", err.Error())
		return
	}

	result, err := h.pipeline.Ingest(r.Context(), in)
	if err != nil {
		var vErr *pipeline.ValidationError
		if errors.As(err, &vErr) {
			respond.WriteError(w, http.StatusBadRequest, "validation_failed", vErr.Error())
			return
		}
		// The detection itself was not accepted.
		respond.WriteError(w, http.StatusServiceUnavailable,
			"storage_failed", "Detection could not be stored")
		return
	}

	respond.WriteJSON(w, http.StatusCreated, result)
}
