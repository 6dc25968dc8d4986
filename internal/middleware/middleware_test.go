package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func setupRouter(tokens *Tokens) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(AuthMiddleware(tokens))
	whoami := func(c *gin.Context) {
		actor, ok := ActorFrom(c)
		if !ok {
			c.JSON(http.StatusOK, gin.H{"id": ""})
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": actor.ID, "name": actor.Name})
	}
	r.GET("/me", whoami)
	r.GET("/healthz", whoami)
	r.GET("/invitations/:token", whoami)
	r.POST("/invitations/:token/accept", whoami)
	r.GET("/tasks", RequireScope(), func(c *gin.Context) {
		c.JSON(http.StatusOK, ScopeFrom(c))
	})
	return r
}

func do(r http.Handler, method, target, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	tokens := NewTokens("secret", time.Hour)
	r := setupRouter(tokens)
	token, exp, err := tokens.Issue("u1", "Ann")
	if err != nil {
		t.Fatal(err)
	}
	if exp.Before(time.Now()) {
		t.Errorf("expiry %v in the past", exp)
	}

	tests := []struct {
		name   string
		method string
		target string
		token  string
		want   int
	}{
		{"valid token", http.MethodGet, "/me", token, http.StatusOK},
		{"missing token", http.MethodGet, "/me", "", http.StatusUnauthorized},
		{"garbage token", http.MethodGet, "/me", "abc.def.ghi", http.StatusUnauthorized},
		{"query token", http.MethodGet, "/me?token=" + token, "", http.StatusOK},
		{"public health", http.MethodGet, "/healthz", "", http.StatusOK},
		{"public preview", http.MethodGet, "/invitations/tok", "", http.StatusOK},
		{"accept needs auth", http.MethodPost, "/invitations/tok/accept", "", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(r, tt.method, tt.target, tt.token)
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d (%s)", w.Code, tt.want, w.Body.String())
			}
		})
	}
}

func TestTokens_ExpiredAndForeign(t *testing.T) {
	tokens := NewTokens("secret", time.Hour)
	tokens.now = func() time.Time { return time.Now().Add(-3 * time.Hour) }
	old, _, err := tokens.Issue("u1", "Ann")
	if err != nil {
		t.Fatal(err)
	}
	tokens.now = time.Now
	if _, err := tokens.Parse(old); err == nil {
		t.Error("expired token accepted")
	}

	foreign, _, err := NewTokens("other", time.Hour).Issue("u1", "Ann")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := tokens.Parse(foreign); err == nil {
		t.Error("token signed with another secret accepted")
	}

	fresh, _, err := tokens.Issue("u2", "Bob")
	if err != nil {
		t.Fatal(err)
	}
	claims, err := tokens.Parse(fresh)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if claims.UserID != "u2" || claims.Name != "Bob" {
		t.Errorf("claims = %+v", claims)
	}
}

func TestRequireScope(t *testing.T) {
	tokens := NewTokens("secret", time.Hour)
	r := setupRouter(tokens)
	token, _, _ := tokens.Issue("u1", "Ann")

	if w := do(r, http.MethodGet, "/tasks", token); w.Code != http.StatusOK || w.Body.String() != `{"mode":"personal"}` {
		t.Errorf("default scope = %d %s", w.Code, w.Body.String())
	}
	if w := do(r, http.MethodGet, "/tasks?mode=team&teamId=t1", token); w.Code != http.StatusOK || w.Body.String() != `{"mode":"team","teamId":"t1"}` {
		t.Errorf("team scope = %d %s", w.Code, w.Body.String())
	}
	if w := do(r, http.MethodGet, "/tasks?mode=team", token); w.Code != http.StatusBadRequest {
		t.Errorf("team scope without id = %d", w.Code)
	}
	if w := do(r, http.MethodGet, "/tasks?mode=galaxy", token); w.Code != http.StatusBadRequest {
		t.Errorf("unknown mode = %d", w.Code)
	}
}
