package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"fishdex/application/services"
	"fishdex/pkg/auth"
	"fishdex/pkg/common"
	"fishdex/pkg/utils"
)

// AccountHandler handles phone binding and recovery
type AccountHandler struct {
	accounts *services.AccountService
	logger   *zap.Logger
}

// NewAccountHandler creates an account handler
func NewAccountHandler(accounts *services.AccountService, logger *zap.Logger) *AccountHandler {
	return &AccountHandler{accounts: accounts, logger: logger}
}

// BindRequest is the request body for binding a phone number
type BindRequest struct {
	Phone    string `json:"phone" validate:"required"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

// RecoverRequest is the request body for recovering a bound account
type RecoverRequest struct {
	Phone    string `json:"phone" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Bind handles POST /account/bind. The caller's current anonymous
// identity is read from context; its progress is carried over to the
// phone-keyed identity.
func (h *AccountHandler) Bind(w http.ResponseWriter, r *http.Request) {
	user, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	var req BindRequest
	if err := common.ParseJSONBody(r, &req, maxBodyBytes); err != nil {
		common.RespondAppError(w, err)
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondAppError(w, err)
		return
	}

	result, err := h.accounts.Bind(r.Context(), req.Phone, req.Password, user.UserID)
	if err != nil {
		h.logger.Warn("account bind failed", zap.String("phone", maskPhone(req.Phone)), zap.Error(err))
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusCreated, result)
}

// Recover handles POST /account/recover
func (h *AccountHandler) Recover(w http.ResponseWriter, r *http.Request) {
	var req RecoverRequest
	if err := common.ParseJSONBody(r, &req, maxBodyBytes); err != nil {
		common.RespondAppError(w, err)
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondAppError(w, err)
		return
	}

	result, err := h.accounts.Recover(r.Context(), req.Phone, req.Password)
	if err != nil {
		h.logger.Warn("account recovery failed", zap.String("phone", maskPhone(req.Phone)), zap.Error(err))
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, result)
}

func maskPhone(phone string) string {
	if len(phone) < 7 {
		return "***"
	}
	return phone[:3] + "****" + phone[len(phone)-4:]
}
