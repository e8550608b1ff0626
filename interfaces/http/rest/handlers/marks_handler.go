// Package handlers contains the REST request handlers.
package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"fishdex/application/ports"
	"fishdex/application/services"
	"fishdex/pkg/auth"
	"fishdex/pkg/common"
	"fishdex/pkg/utils"
)

const maxBodyBytes = 1 << 20

// MarksHandler handles mark-related HTTP requests
type MarksHandler struct {
	marks  *services.MarkService
	logger *zap.Logger
}

// NewMarksHandler creates a marks handler
func NewMarksHandler(marks *services.MarkService, logger *zap.Logger) *MarksHandler {
	return &MarksHandler{marks: marks, logger: logger}
}

// MarkResponse is the wire shape of one mark
type MarkResponse struct {
	ID         string    `json:"id"`
	EntryID    string    `json:"entry_id"`
	Address    string    `json:"address"`
	RecordedAt time.Time `json:"recorded_at"`
}

// CreateMarkRequest is the request body for recording one mark
type CreateMarkRequest struct {
	EntryID    string    `json:"entry_id" validate:"required"`
	Address    string    `json:"address" validate:"required,max=200"`
	RecordedAt time.Time `json:"recorded_at"`
}

// BatchCreateRequest is the request body for the batch endpoint
type BatchCreateRequest struct {
	Marks []CreateMarkRequest `json:"marks" validate:"required,min=1,max=100,dive"`
}

// List handles GET /marks?entry_id=
func (h *MarksHandler) List(w http.ResponseWriter, r *http.Request) {
	user, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	records, err := h.marks.List(r.Context(), user.UserID, r.URL.Query().Get("entry_id"))
	if err != nil {
		h.logger.Error("failed to list marks", zap.String("userID", user.UserID), zap.Error(err))
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, toMarkResponses(records))
}

// Create handles POST /marks
func (h *MarksHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	var req CreateMarkRequest
	if err := common.ParseJSONBody(r, &req, maxBodyBytes); err != nil {
		common.RespondAppError(w, err)
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondAppError(w, err)
		return
	}

	record, err := h.marks.Record(r.Context(), user.UserID, req.EntryID, req.Address, req.RecordedAt)
	if err != nil {
		h.logger.Error("failed to record mark",
			zap.String("userID", user.UserID),
			zap.String("entryID", req.EntryID),
			zap.Error(err))
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusCreated, toMarkResponse(record))
}

// BatchCreate handles POST /marks/batch
func (h *MarksHandler) BatchCreate(w http.ResponseWriter, r *http.Request) {
	user, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	var req BatchCreateRequest
	if err := common.ParseJSONBody(r, &req, maxBodyBytes); err != nil {
		common.RespondAppError(w, err)
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondAppError(w, err)
		return
	}

	items := make([]ports.MarkRecord, 0, len(req.Marks))
	for _, item := range req.Marks {
		items = append(items, ports.MarkRecord{
			EntryID:    item.EntryID,
			Address:    item.Address,
			RecordedAt: item.RecordedAt,
		})
	}

	records, err := h.marks.BatchRecord(r.Context(), user.UserID, items)
	if err != nil {
		h.logger.Error("failed to batch record marks",
			zap.String("userID", user.UserID),
			zap.Int("count", len(items)),
			zap.Error(err))
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusCreated, toMarkResponses(records))
}

// Delete handles DELETE /marks/{markID}
func (h *MarksHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	markID := chi.URLParam(r, "markID")
	if err := h.marks.Delete(r.Context(), user.UserID, markID); err != nil {
		common.RespondAppError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func toMarkResponse(record ports.MarkRecord) MarkResponse {
	return MarkResponse{
		ID:         record.ID,
		EntryID:    record.EntryID,
		Address:    record.Address,
		RecordedAt: record.RecordedAt,
	}
}

func toMarkResponses(records []ports.MarkRecord) []MarkResponse {
	result := make([]MarkResponse, 0, len(records))
	for _, record := range records {
		result = append(result, toMarkResponse(record))
	}
	return result
}
