package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"fishdex/application/ports"
	"fishdex/pkg/auth"
	"fishdex/pkg/common"
	apperrors "fishdex/pkg/errors"
	"fishdex/pkg/utils"
)

// ProgressHandler exposes the user's collected entry ids
type ProgressHandler struct {
	progress ports.ProgressRepository
	logger   *zap.Logger
}

// NewProgressHandler creates a progress handler
func NewProgressHandler(progress ports.ProgressRepository, logger *zap.Logger) *ProgressHandler {
	return &ProgressHandler{progress: progress, logger: logger}
}

// ProgressResponse is the wire shape of a user's collection progress
type ProgressResponse struct {
	Collected []string `json:"collected"`
}

// SaveProgressRequest replaces the collected set wholesale
type SaveProgressRequest struct {
	Collected []string `json:"collected" validate:"required,max=2000"`
}

// Get handles GET /progress. A user with no saved progress gets an
// empty set, not an error.
func (h *ProgressHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	collected, err := h.progress.Get(r.Context(), user.UserID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			common.RespondJSON(w, http.StatusOK, ProgressResponse{Collected: []string{}})
			return
		}
		h.logger.Error("failed to load progress", zap.String("userID", user.UserID), zap.Error(err))
		common.RespondAppError(w, err)
		return
	}
	if collected == nil {
		collected = []string{}
	}

	common.RespondJSON(w, http.StatusOK, ProgressResponse{Collected: collected})
}

// Save handles PUT /progress
func (h *ProgressHandler) Save(w http.ResponseWriter, r *http.Request) {
	user, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	var req SaveProgressRequest
	if err := common.ParseJSONBody(r, &req, maxBodyBytes); err != nil {
		common.RespondAppError(w, err)
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondAppError(w, err)
		return
	}

	if err := h.progress.Save(r.Context(), user.UserID, req.Collected); err != nil {
		h.logger.Error("failed to save progress", zap.String("userID", user.UserID), zap.Error(err))
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, ProgressResponse{Collected: req.Collected})
}
