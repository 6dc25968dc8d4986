package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"teamtasks/internal/models"
	"teamtasks/internal/services"
)

// TokenIssuer signs access tokens for authenticated users.
type TokenIssuer interface {
	Issue(userID, name string) (string, time.Time, error)
}

type AuthHandler struct {
	users  services.UserService
	tokens TokenIssuer
	log    zerolog.Logger
}

func NewAuthHandler(users services.UserService, tokens TokenIssuer, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{users: users, tokens: tokens, log: log}
}

type tokenResponse struct {
	AccessToken string      `json:"accessToken"`
	ExpiresAt   time.Time   `json:"expiresAt"`
	User        models.User `json:"user"`
}

// @Summary      Register
// @Description  Creates an account and returns an access token
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        body  body      models.RegisterRequest  true  "Account"
// @Success      201   {object}  tokenResponse
// @Failure      400   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Debug().Err(err).Msg("[auth][register] bind failed")
		badRequest(c, err.Error())
		return
	}
	user, err := h.users.Register(c.Request.Context(), req)
	if err != nil {
		fail(c, h.log, "[auth][register]", err)
		return
	}
	h.respondToken(c, http.StatusCreated, user)
}

// @Summary      Login
// @Description  Authenticates by email and password
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        body  body      models.LoginRequest  true  "Credentials"
// @Success      200   {object}  tokenResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Router       /login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	user, err := h.users.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.log.Info().Str("email", req.Email).Msg("[auth][login] rejected")
		fail(c, h.log, "[auth][login]", err)
		return
	}
	h.respondToken(c, http.StatusOK, user)
}

func (h *AuthHandler) respondToken(c *gin.Context, status int, user *models.User) {
	token, exp, err := h.tokens.Issue(user.ID, user.DisplayName)
	if err != nil {
		fail(c, h.log, "[auth][token]", err)
		return
	}
	c.JSON(status, tokenResponse{AccessToken: token, ExpiresAt: exp, User: user.Public()})
}

// @Summary  Current user
// @Tags     Me
// @Produce  json
// @Security BearerAuth
// @Success  200  {object}  models.User
// @Router   /me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	user, err := h.users.GetByID(c.Request.Context(), a.ID)
	if err != nil {
		fail(c, h.log, "[me][get]", err)
		return
	}
	c.JSON(http.StatusOK, user.Public())
}

// @Summary  Update profile
// @Tags     Me
// @Accept   json
// @Produce  json
// @Security BearerAuth
// @Success  200  {object}  models.User
// @Router   /me [patch]
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	var req struct {
		DisplayName string `json:"displayName"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	user, err := h.users.UpdateProfile(c.Request.Context(), a, req.DisplayName)
	if err != nil {
		fail(c, h.log, "[me][profile]", err)
		return
	}
	c.JSON(http.StatusOK, user.Public())
}

// @Summary  Update notification preferences
// @Tags     Me
// @Accept   json
// @Produce  json
// @Security BearerAuth
// @Param    body  body      models.NotificationPreferences  true  "Preferences"
// @Success  200   {object}  models.User
// @Router   /me/preferences [put]
func (h *AuthHandler) UpdatePreferences(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	var prefs models.NotificationPreferences
	if err := c.ShouldBindJSON(&prefs); err != nil {
		badRequest(c, err.Error())
		return
	}
	user, err := h.users.UpdatePreferences(c.Request.Context(), a, prefs)
	if err != nil {
		fail(c, h.log, "[me][preferences]", err)
		return
	}
	c.JSON(http.StatusOK, user.Public())
}

// @Summary      Set push token
// @Description  Registers the Telegram chat id that receives push messages
// @Tags         Me
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  models.User
// @Router       /me/push-token [put]
func (h *AuthHandler) SetPushToken(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	var req struct {
		Token string `json:"token"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	user, err := h.users.SetPushToken(c.Request.Context(), a, req.Token)
	if err != nil {
		fail(c, h.log, "[me][push-token]", err)
		return
	}
	c.JSON(http.StatusOK, user.Public())
}
