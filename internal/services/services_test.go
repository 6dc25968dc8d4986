package services

import (
	"context"
	"errors"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"teamtasks/internal/authz"
	"teamtasks/internal/docstore"
	"teamtasks/internal/models"
	"teamtasks/internal/pdf"
	"teamtasks/internal/repositories"
)

type recordingNotifier struct {
	mu   sync.Mutex
	sent []models.Notification
}

func (n *recordingNotifier) Notify(_ context.Context, msg models.Notification) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, msg)
}

func (n *recordingNotifier) ofType(typ models.NotificationType) []models.Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []models.Notification
	for _, m := range n.sent {
		if m.Type == typ {
			out = append(out, m)
		}
	}
	return out
}

type recordingPush struct {
	mu     sync.Mutex
	tokens []string
	bodies []string
	err    error
}

func (p *recordingPush) Send(_ context.Context, token, _, body string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.tokens = append(p.tokens, token)
	p.bodies = append(p.bodies, body)
	return p.err
}

func (p *recordingPush) last() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.bodies) == 0 {
		return ""
	}
	return p.bodies[len(p.bodies)-1]
}

type fakeEmails struct {
	to    []string
	links []string
}

func (f *fakeEmails) SendInvitationEmail(to, _, _, link string) error {
	f.to = append(f.to, to)
	f.links = append(f.links, link)
	return nil
}

func (f *fakeEmails) SendPasswordResetEmail(to, link string) error {
	f.to = append(f.to, to)
	f.links = append(f.links, link)
	return nil
}

type fixture struct {
	ctx context.Context
	now time.Time

	tasks       repositories.TaskRepository
	projects    repositories.ProjectRepository
	teams       repositories.TeamRepository
	users       repositories.UserRepository
	invitations repositories.InvitationRepository

	notifier *recordingNotifier
	push     *recordingPush
	emails   *fakeEmails

	taskSvc       *taskService
	projectSvc    *projectService
	teamSvc       *teamService
	invitationSvc *invitationService
	reminderSvc   *reminderService
}

var (
	ann = Actor{ID: "ann", Name: "Ann"}
	bob = Actor{ID: "bob", Name: "Bob"}
	cat = Actor{ID: "cat", Name: "Cat"}
	dan = Actor{ID: "dan", Name: "Dan"}
)

// setupServices wires every service over one memory store. The clock starts
// at 2024-01-01 09:00 UTC and is moved with f.now.
func setupServices(t *testing.T) *fixture {
	t.Helper()
	db := docstore.NewMemory()
	f := &fixture{
		ctx:         context.Background(),
		now:         time.Date(2024, time.January, 1, 9, 0, 0, 0, time.UTC),
		tasks:       repositories.NewTaskRepository(db),
		projects:    repositories.NewProjectRepository(db),
		teams:       repositories.NewTeamRepository(db),
		users:       repositories.NewUserRepository(db),
		invitations: repositories.NewInvitationRepository(db),
		notifier:    &recordingNotifier{},
		push:        &recordingPush{},
		emails:      &fakeEmails{},
	}
	clock := func() time.Time { return f.now }
	log := zerolog.Nop()

	for _, a := range []Actor{ann, bob, cat, dan} {
		u := &models.User{ID: a.ID, Email: a.ID + "@example.com", DisplayName: a.Name}
		if err := f.users.Create(f.ctx, u); err != nil {
			t.Fatalf("create user %s: %v", a.ID, err)
		}
	}

	lookup := NewAccessLookup(f.projects, f.teams, f.tasks)
	access := authz.NewResolver(lookup)
	opts := TaskOptions{AutoStart: true, Location: time.UTC}

	f.projectSvc = NewProjectService(f.projects, f.tasks, lookup.(TaskLookup), f.teams, f.users, access,
		f.notifier, pdf.NewReportGenerator(""), opts, log).(*projectService)
	f.projectSvc.now = clock
	f.taskSvc = NewTaskService(f.tasks, f.projects, f.teams, access, f.notifier, f.projectSvc, opts, log).(*taskService)
	f.taskSvc.now = clock
	f.teamSvc = NewTeamService(f.teams, f.users, f.notifier, log).(*teamService)
	f.teamSvc.now = clock
	f.invitationSvc = NewInvitationService(f.invitations, f.teams, f.users, f.emails, f.notifier,
		InvitationOptions{TTL: 48 * time.Hour, PublicURL: "https://tasks.example.com/"}, log).(*invitationService)
	f.invitationSvc.now = clock
	f.reminderSvc = NewReminderService(f.tasks, f.users, f.push, f.notifier, log).(*reminderService)
	f.reminderSvc.now = clock
	return f
}

// setupTeam creates a team owned by ann with bob as admin, cat as member and
// dan as viewer.
func (f *fixture) setupTeam(t *testing.T) *models.Team {
	t.Helper()
	team, err := f.teamSvc.Create(f.ctx, ann, "Core", "")
	if err != nil {
		t.Fatalf("create team: %v", err)
	}
	for _, m := range []struct {
		who  Actor
		role models.TeamRole
	}{{bob, models.TeamRoleAdmin}, {cat, models.TeamRoleMember}, {dan, models.TeamRoleViewer}} {
		if team, err = f.teamSvc.AddMember(f.ctx, ann, team.ID, m.who.ID, m.role); err != nil {
			t.Fatalf("add %s: %v", m.who.ID, err)
		}
	}
	return team
}

func (f *fixture) children(t *testing.T, parentID string) []models.Task {
	t.Helper()
	children, err := f.tasks.ListChildren(f.ctx, parentID)
	if err != nil {
		t.Fatalf("ListChildren: %v", err)
	}
	slices.SortFunc(children, func(a, b models.Task) int { return a.StartDate.Compare(b.StartDate) })
	return children
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func ptr[T any](v T) *T { return &v }

func wantKind(t *testing.T, err, kind error) {
	t.Helper()
	if !errors.Is(err, kind) {
		t.Fatalf("err = %v, want %v", err, kind)
	}
}

func startDates(tasks []models.Task) []string {
	out := make([]string, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.StartDate.Format(time.DateOnly))
	}
	return out
}
