package handlers

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"fishdex/application/ports"
	"fishdex/pkg/auth"
	"fishdex/pkg/common"
	"fishdex/pkg/utils"
)

// FeedbackHandler stores user feedback and lists past submissions
// along with any admin replies.
type FeedbackHandler struct {
	feedback ports.FeedbackRepository
	logger   *zap.Logger
}

// NewFeedbackHandler creates a feedback handler
func NewFeedbackHandler(feedback ports.FeedbackRepository, logger *zap.Logger) *FeedbackHandler {
	return &FeedbackHandler{feedback: feedback, logger: logger}
}

// CreateFeedbackRequest is the request body for submitting feedback
type CreateFeedbackRequest struct {
	Content string `json:"content" validate:"required,min=1,max=2000"`
}

// Create handles POST /feedback
func (h *FeedbackHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	var req CreateFeedbackRequest
	if err := common.ParseJSONBody(r, &req, maxBodyBytes); err != nil {
		common.RespondAppError(w, err)
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondAppError(w, err)
		return
	}

	record := ports.FeedbackRecord{
		ID:        uuid.New().String(),
		UserID:    user.UserID,
		Content:   req.Content,
		CreatedAt: time.Now().UTC(),
	}
	if err := h.feedback.Create(r.Context(), record); err != nil {
		h.logger.Error("failed to store feedback", zap.String("userID", user.UserID), zap.Error(err))
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusCreated, record)
}

// List handles GET /feedback
func (h *FeedbackHandler) List(w http.ResponseWriter, r *http.Request) {
	user, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	records, err := h.feedback.ListByUser(r.Context(), user.UserID)
	if err != nil {
		h.logger.Error("failed to list feedback", zap.String("userID", user.UserID), zap.Error(err))
		common.RespondAppError(w, err)
		return
	}
	if records == nil {
		records = []ports.FeedbackRecord{}
	}

	common.RespondJSON(w, http.StatusOK, records)
}
