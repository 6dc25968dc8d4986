package app

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"teamtasks/internal/config"
	"teamtasks/internal/models"
)

func setupApp(t *testing.T) http.Handler {
	t.Helper()
	cfg := &config.Config{
		Env:      config.EnvDev,
		Database: config.DatabaseConfig{Driver: "memory"},
		Auth:     config.AuthConfig{JWTSecret: "test-secret", TokenTTL: time.Hour},
		App:      config.AppConfig{Timezone: "UTC", AutoStartTasks: true, InvitationTTL: time.Hour},
	}
	a, err := New(context.Background(), cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { a.Close() })
	return a.Router()
}

func call(t *testing.T, h http.Handler, method, target, token string, body any, out any) int {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if out != nil && w.Code < 300 {
		if err := json.Unmarshal(w.Body.Bytes(), out); err != nil {
			t.Fatalf("%s %s: decode %q: %v", method, target, w.Body.String(), err)
		}
	}
	return w.Code
}

func register(t *testing.T, h http.Handler, email, name string) (token, id string) {
	t.Helper()
	var resp struct {
		AccessToken string      `json:"accessToken"`
		User        models.User `json:"user"`
	}
	code := call(t, h, http.MethodPost, "/register", "",
		models.RegisterRequest{Email: email, Password: "secret1", DisplayName: name}, &resp)
	if code != http.StatusCreated || resp.AccessToken == "" {
		t.Fatalf("register %s = %d", email, code)
	}
	return resp.AccessToken, resp.User.ID
}

func TestRouter_TaskFlow(t *testing.T) {
	h := setupApp(t)

	if code := call(t, h, http.MethodGet, "/healthz", "", nil, nil); code != http.StatusOK {
		t.Errorf("healthz = %d", code)
	}
	annToken, annID := register(t, h, "ann@example.com", "Ann")

	if code := call(t, h, http.MethodGet, "/tasks", "", nil, nil); code != http.StatusUnauthorized {
		t.Errorf("anonymous list = %d", code)
	}

	start := time.Now().UTC().Add(24 * time.Hour)
	var task models.Task
	code := call(t, h, http.MethodPost, "/tasks", annToken, map[string]any{
		"title":     "Write report",
		"startDate": start,
		"endDate":   start.Add(2 * time.Hour),
	}, &task)
	if code != http.StatusCreated {
		t.Fatalf("create = %d", code)
	}
	if task.AssigneeID != annID || task.CreatorID != annID {
		t.Errorf("task = %+v", task)
	}

	var tasks []models.Task
	if code := call(t, h, http.MethodGet, "/tasks?mode=personal", annToken, nil, &tasks); code != http.StatusOK || len(tasks) != 1 {
		t.Errorf("list = %d, %d tasks", code, len(tasks))
	}

	bobToken, _ := register(t, h, "bob@example.com", "Bob")
	if code := call(t, h, http.MethodGet, "/tasks/"+task.ID, bobToken, nil, nil); code != http.StatusForbidden {
		t.Errorf("stranger get = %d", code)
	}
	if code := call(t, h, http.MethodGet, "/tasks/nope", annToken, nil, nil); code != http.StatusNotFound {
		t.Errorf("missing get = %d", code)
	}
}

func TestRouter_InvitationFlow(t *testing.T) {
	h := setupApp(t)
	annToken, _ := register(t, h, "ann@example.com", "Ann")
	bobToken, bobID := register(t, h, "bob@example.com", "Bob")

	var team models.Team
	if code := call(t, h, http.MethodPost, "/teams", annToken, map[string]string{"name": "Core"}, &team); code != http.StatusCreated {
		t.Fatalf("create team = %d", code)
	}
	var inv models.TeamInvitation
	if code := call(t, h, http.MethodPost, "/teams/"+team.ID+"/invitations", annToken, map[string]string{"role": "member"}, &inv); code != http.StatusCreated {
		t.Fatalf("invite = %d", code)
	}

	var preview models.TeamInvitation
	if code := call(t, h, http.MethodGet, "/invitations/"+inv.Token, "", nil, &preview); code != http.StatusOK || preview.TeamID != team.ID {
		t.Errorf("preview = %d %+v", code, preview)
	}

	var joined models.Team
	if code := call(t, h, http.MethodPost, "/invitations/"+inv.Token+"/accept", bobToken, nil, &joined); code != http.StatusOK {
		t.Fatalf("accept = %d", code)
	}
	if role, ok := joined.MemberRole(bobID); !ok || role != models.TeamRoleMember {
		t.Errorf("bob role = %q, %v", role, ok)
	}
	if code := call(t, h, http.MethodPost, "/invitations/"+inv.Token+"/accept", bobToken, nil, nil); code != http.StatusConflict {
		t.Errorf("second accept = %d", code)
	}

	var notes []models.Notification
	if code := call(t, h, http.MethodGet, "/notifications", annToken, nil, &notes); code != http.StatusOK || len(notes) != 1 {
		t.Errorf("ann notifications = %d, %+v", code, notes)
	}
}

func TestRouter_PublicIntegrations(t *testing.T) {
	h := setupApp(t)

	if code := call(t, h, http.MethodPost, "/password/forgot", "", map[string]string{"email": "ghost@example.com"}, nil); code != http.StatusAccepted {
		t.Errorf("forgot = %d", code)
	}
	if code := call(t, h, http.MethodPost, "/password/reset", "", map[string]string{"token": "nope", "password": "newsecret"}, nil); code != http.StatusNotFound {
		t.Errorf("reset unknown token = %d", code)
	}
	if code := call(t, h, http.MethodPost, "/integrations/telegram/webhook", "", map[string]any{"update_id": 1}, nil); code != http.StatusOK {
		t.Errorf("webhook = %d", code)
	}

	if code := call(t, h, http.MethodPost, "/me/telegram-link", "", nil, nil); code != http.StatusUnauthorized {
		t.Errorf("anonymous link = %d", code)
	}
	token, _ := register(t, h, "ann@example.com", "Ann")
	var link models.TelegramLink
	if code := call(t, h, http.MethodPost, "/me/telegram-link", token, nil, &link); code != http.StatusCreated || len(link.Code) != 32 {
		t.Errorf("link = %d %+v", code, link)
	}
}
