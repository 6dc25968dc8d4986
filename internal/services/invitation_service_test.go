package services

import (
	"testing"
	"time"

	"teamtasks/internal/apperr"
	"teamtasks/internal/authz"
	"teamtasks/internal/models"
)

func TestEmailInvitation_AcceptOnce(t *testing.T) {
	f := setupServices(t)
	team, err := f.teamSvc.Create(f.ctx, ann, "Core", "")
	if err != nil {
		t.Fatal(err)
	}

	inv, err := f.invitationSvc.CreateEmailInvitation(f.ctx, ann, team.ID, " BOB@example.com ", "")
	if err != nil {
		t.Fatalf("CreateEmailInvitation: %v", err)
	}
	if inv.Email != "bob@example.com" || inv.Role != models.TeamRoleMember || inv.Status != models.InvitationPending {
		t.Errorf("invitation = %+v", inv)
	}
	if len(inv.Token) != 64 {
		t.Errorf("token length = %d", len(inv.Token))
	}
	if len(f.emails.to) != 1 || f.emails.to[0] != "bob@example.com" {
		t.Errorf("emails = %v", f.emails.to)
	}
	if got := f.notifier.ofType(models.NotifyTeamInvitation); len(got) != 1 || got[0].UserID != bob.ID {
		t.Errorf("invitation notifications = %+v", got)
	}

	_, err = f.invitationSvc.Accept(f.ctx, cat, inv.Token)
	wantKind(t, err, apperr.ErrPermissionDenied)

	joined, err := f.invitationSvc.Accept(f.ctx, bob, inv.Token)
	if err != nil {
		t.Fatalf("Accept: %v", err)
	}
	if role := authz.TeamRole(joined, bob.ID); role != models.TeamRoleMember {
		t.Errorf("bob role = %q", role)
	}
	if got := f.notifier.ofType(models.NotifyInvitationAccepted); len(got) != 1 || got[0].UserID != ann.ID {
		t.Errorf("accepted notifications = %+v", got)
	}

	_, err = f.invitationSvc.Accept(f.ctx, bob, inv.Token)
	wantKind(t, err, apperr.ErrStaleState)

	_, err = f.invitationSvc.CreateEmailInvitation(f.ctx, ann, team.ID, "bob@example.com", models.TeamRoleMember)
	wantKind(t, err, apperr.ErrStaleState)
}

func TestLinkInvitation_Expires(t *testing.T) {
	f := setupServices(t)
	team, err := f.teamSvc.Create(f.ctx, ann, "Core", "")
	if err != nil {
		t.Fatal(err)
	}
	inv, err := f.invitationSvc.CreateLinkInvitation(f.ctx, ann, team.ID, models.TeamRoleViewer)
	if err != nil {
		t.Fatal(err)
	}
	if want := inv.CreatedAt.Add(48 * time.Hour); !inv.ExpiresAt.Equal(want) {
		t.Errorf("ExpiresAt = %v, want %v", inv.ExpiresAt, want)
	}

	f.now = f.now.Add(49 * time.Hour)
	got, err := f.invitationSvc.Get(f.ctx, inv.Token)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Status != models.InvitationExpired {
		t.Errorf("status = %s, want expired", got.Status)
	}
	stored, err := f.invitations.GetByToken(f.ctx, inv.Token)
	if err != nil {
		t.Fatal(err)
	}
	if stored.Status != models.InvitationExpired {
		t.Errorf("stored status = %s", stored.Status)
	}

	_, err = f.invitationSvc.Accept(f.ctx, cat, inv.Token)
	wantKind(t, err, apperr.ErrStaleState)
}

func TestLinkInvitation_SingleUse(t *testing.T) {
	f := setupServices(t)
	team, err := f.teamSvc.Create(f.ctx, ann, "Core", "")
	if err != nil {
		t.Fatal(err)
	}
	inv, err := f.invitationSvc.CreateLinkInvitation(f.ctx, ann, team.ID, "")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.invitationSvc.Accept(f.ctx, cat, inv.Token); err != nil {
		t.Fatalf("Accept: %v", err)
	}
	_, err = f.invitationSvc.Accept(f.ctx, dan, inv.Token)
	wantKind(t, err, apperr.ErrStaleState)

	list, err := f.invitationSvc.ListForTeam(f.ctx, ann, team.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 || list[0].Status != models.InvitationAccepted || list[0].AcceptedBy != cat.ID {
		t.Errorf("invitations = %+v", list)
	}
	_, err = f.invitationSvc.ListForTeam(f.ctx, cat, team.ID)
	wantKind(t, err, apperr.ErrPermissionDenied)
}

func TestInvitation_Permissions(t *testing.T) {
	f := setupServices(t)
	team := f.setupTeam(t)

	_, err := f.invitationSvc.CreateLinkInvitation(f.ctx, cat, team.ID, models.TeamRoleMember)
	wantKind(t, err, apperr.ErrPermissionDenied)

	_, err = f.invitationSvc.CreateLinkInvitation(f.ctx, bob, team.ID, models.TeamRoleAdmin)
	wantKind(t, err, apperr.ErrPermissionDenied)

	_, err = f.invitationSvc.CreateEmailInvitation(f.ctx, ann, team.ID, "not-an-email", models.TeamRoleMember)
	wantKind(t, err, apperr.ErrValidation)

	inv, err := f.invitationSvc.CreateEmailInvitation(f.ctx, bob, team.ID, "new@example.com", models.TeamRoleMember)
	if err != nil {
		t.Fatalf("admin invite: %v", err)
	}
	if inv.TeamName != "Core" || inv.InviterID != bob.ID {
		t.Errorf("invitation = %+v", inv)
	}

	eve := Actor{ID: "eve", Name: "Eve"}
	if err := f.users.Create(f.ctx, &models.User{ID: eve.ID, Email: "new@example.com", DisplayName: eve.Name}); err != nil {
		t.Fatal(err)
	}
	rejected, err := f.invitationSvc.Reject(f.ctx, eve, inv.Token)
	if err != nil {
		t.Fatalf("Reject: %v", err)
	}
	if rejected.Status != models.InvitationRejected {
		t.Errorf("status = %s", rejected.Status)
	}
	_, err = f.invitationSvc.Accept(f.ctx, eve, inv.Token)
	wantKind(t, err, apperr.ErrStaleState)
}
