package handlers

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"teamtasks/internal/services"
)

const telegramSecretHeader = "X-Telegram-Bot-Api-Secret-Token"

type IntegrationsHandler struct {
	telegram services.TelegramService
	secret   string
	log      zerolog.Logger
}

func NewIntegrationsHandler(telegram services.TelegramService, webhookSecret string, log zerolog.Logger) *IntegrationsHandler {
	return &IntegrationsHandler{telegram: telegram, secret: webhookSecret, log: log}
}

// @Summary      Request Telegram link code
// @Description  Returns a code to send to the bot as "/link CODE"
// @Tags         Me
// @Produce      json
// @Security     BearerAuth
// @Success      201  {object}  models.TelegramLink
// @Failure      401  {object}  errorResponse
// @Router       /me/telegram-link [post]
func (h *IntegrationsHandler) RequestTelegramLink(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	link, err := h.telegram.RequestLink(c.Request.Context(), a)
	if err != nil {
		fail(c, h.log, "[telegram][request-link]", err)
		return
	}
	c.JSON(http.StatusCreated, link)
}

// TelegramWebhook receives bot updates. It always answers 200 so Telegram
// does not redeliver updates that failed on our side.
//
// @Summary  Telegram webhook
// @Tags     Integrations
// @Accept   json
// @Success  200
// @Failure  401  {object}  errorResponse
// @Router   /integrations/telegram/webhook [post]
func (h *IntegrationsHandler) TelegramWebhook(c *gin.Context) {
	if h.secret != "" && subtle.ConstantTimeCompare([]byte(c.GetHeader(telegramSecretHeader)), []byte(h.secret)) != 1 {
		c.JSON(http.StatusUnauthorized, errorResponse{Error: "invalid webhook secret"})
		return
	}
	var up tgbotapi.Update
	if err := c.ShouldBindJSON(&up); err != nil {
		h.log.Debug().Err(err).Msg("[telegram][webhook] bind failed")
		c.Status(http.StatusOK)
		return
	}
	if up.Message == nil || up.Message.Chat == nil {
		c.Status(http.StatusOK)
		return
	}
	if err := h.telegram.HandleMessage(c.Request.Context(), up.Message.Chat.ID, up.Message.Text); err != nil {
		h.log.Warn().Err(err).Int64("chat_id", up.Message.Chat.ID).Msg("[telegram][webhook] reply failed")
	}
	c.Status(http.StatusOK)
}
