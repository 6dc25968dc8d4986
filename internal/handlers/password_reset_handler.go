package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"teamtasks/internal/models"
	"teamtasks/internal/services"
)

type PasswordResetHandler struct {
	service services.PasswordResetService
	log     zerolog.Logger
}

func NewPasswordResetHandler(service services.PasswordResetService, log zerolog.Logger) *PasswordResetHandler {
	return &PasswordResetHandler{service: service, log: log}
}

// @Summary      Forgot password
// @Description  Mails a reset link. Always answers 202 so accounts cannot be probed.
// @Tags         Auth
// @Accept       json
// @Param        body  body  models.ForgotPasswordRequest  true  "Email"
// @Success      202
// @Failure      400  {object}  errorResponse
// @Router       /password/forgot [post]
func (h *PasswordResetHandler) ForgotPassword(c *gin.Context) {
	var req models.ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	if err := h.service.RequestReset(c.Request.Context(), req.Email); err != nil {
		fail(c, h.log, "[password][forgot]", err)
		return
	}
	c.Status(http.StatusAccepted)
}

// @Summary      Reset password
// @Tags         Auth
// @Accept       json
// @Param        body  body  models.ResetPasswordRequest  true  "Token and new password"
// @Success      204
// @Failure      400  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Failure      409  {object}  errorResponse
// @Router       /password/reset [post]
func (h *PasswordResetHandler) ResetPassword(c *gin.Context) {
	var req models.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	if err := h.service.ResetPassword(c.Request.Context(), req.Token, req.Password); err != nil {
		fail(c, h.log, "[password][reset]", err)
		return
	}
	c.Status(http.StatusNoContent)
}
