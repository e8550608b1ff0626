package handlers

import (
	"encoding/base64"
	"net/http"

	"go.uber.org/zap"

	"fishdex/application/ports"
	"fishdex/pkg/auth"
	"fishdex/pkg/common"
	"fishdex/pkg/utils"
)

// images arrive base64-encoded; 8 MiB of JSON covers roughly a 6 MiB photo
const maxImageBodyBytes = 8 << 20

// RecognizeHandler proxies photos to the species recognizer
type RecognizeHandler struct {
	recognizer ports.Recognizer
	logger     *zap.Logger
}

// NewRecognizeHandler creates a recognize handler
func NewRecognizeHandler(recognizer ports.Recognizer, logger *zap.Logger) *RecognizeHandler {
	return &RecognizeHandler{recognizer: recognizer, logger: logger}
}

// RecognizeRequest is the request body for species recognition
type RecognizeRequest struct {
	ImageBase64 string `json:"image_base64" validate:"required"`
	MimeType    string `json:"mime_type" validate:"omitempty,oneof=image/jpeg image/png image/webp"`
}

// Recognize handles POST /recognize. An unrecognized image is a
// successful response carrying status "unrecognized", not an error.
func (h *RecognizeHandler) Recognize(w http.ResponseWriter, r *http.Request) {
	user, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	var req RecognizeRequest
	if err := common.ParseJSONBody(r, &req, maxImageBodyBytes); err != nil {
		common.RespondAppError(w, err)
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondAppError(w, err)
		return
	}
	if _, err := base64.StdEncoding.DecodeString(req.ImageBase64[:min(len(req.ImageBase64), 4)]); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION", "image_base64 is not valid base64")
		return
	}

	recognition, err := h.recognizer.Recognize(r.Context(), req.ImageBase64, req.MimeType)
	if err != nil {
		h.logger.Error("recognition failed", zap.String("userID", user.UserID), zap.Error(err))
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, recognition)
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
