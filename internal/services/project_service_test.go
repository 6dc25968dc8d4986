package services

import (
	"bytes"
	"testing"
	"time"

	"teamtasks/internal/apperr"
	"teamtasks/internal/authz"
	"teamtasks/internal/models"
)

// seedProject creates ann's personal project with bob as member and two
// tasks: one assigned to bob, one unassigned.
func (f *fixture) seedProject(t *testing.T) (*models.Project, *models.Task, *models.Task) {
	t.Helper()
	p, err := f.projectSvc.Create(f.ctx, ann, ProjectInput{
		Name:    "Website",
		Members: []models.ProjectMember{{UserID: bob.ID, Role: models.ProjectRoleMember}},
	})
	if err != nil {
		t.Fatalf("create project: %v", err)
	}
	first, err := f.taskSvc.Create(f.ctx, ann, TaskInput{
		Title: "Design", ProjectID: p.ID, AssigneeID: bob.ID, StartDate: day(2024, time.January, 3),
	})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	second, err := f.taskSvc.Create(f.ctx, ann, TaskInput{
		Title: "Build", ProjectID: p.ID, StartDate: day(2024, time.January, 4),
	})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	return p, first, second
}

func (f *fixture) project(t *testing.T, id string) *models.Project {
	t.Helper()
	p, err := f.projects.FindByID(f.ctx, id)
	if err != nil {
		t.Fatalf("load project: %v", err)
	}
	return p
}

func TestProjectCreate_NotifiesMembers(t *testing.T) {
	f := setupServices(t)
	p, _, _ := f.seedProject(t)

	added := f.notifier.ofType(models.NotifyProjectAdded)
	if len(added) != 1 || added[0].UserID != bob.ID || added[0].ProjectID != p.ID {
		t.Errorf("member notifications = %+v", added)
	}

	_, err := f.projectSvc.Create(f.ctx, ann, ProjectInput{
		Name: "Bad", AssigneeID: cat.ID,
	})
	wantKind(t, err, apperr.ErrValidation)
}

func TestProjectTask_AssigneeMustBelongToProject(t *testing.T) {
	f := setupServices(t)
	p, _, _ := f.seedProject(t)

	_, err := f.taskSvc.Create(f.ctx, ann, TaskInput{
		Title: "Outsider", ProjectID: p.ID, AssigneeID: cat.ID, StartDate: day(2024, time.January, 3),
	})
	wantKind(t, err, apperr.ErrValidation)
}

func TestRecalculateCompletion(t *testing.T) {
	f := setupServices(t)
	p, first, _ := f.seedProject(t)

	if got := f.project(t, p.ID); got.TotalTasks != 2 || got.CompletedTasks != 0 || got.CompletionRate != 0 {
		t.Fatalf("counters = %d/%d %d%%", got.CompletedTasks, got.TotalTasks, got.CompletionRate)
	}
	if _, err := f.taskSvc.ChangeStatus(f.ctx, bob, first.ID, models.StatusCompleted); err != nil {
		t.Fatalf("ChangeStatus: %v", err)
	}
	if got := f.project(t, p.ID); got.CompletedTasks != 1 || got.CompletionRate != 50 {
		t.Errorf("counters = %d/%d %d%%", got.CompletedTasks, got.TotalTasks, got.CompletionRate)
	}
	if n := len(f.notifier.ofType(models.NotifyTaskCompleted)); n != 1 {
		t.Errorf("completion notifications = %d, want 1", n)
	}
}

func TestProjectComplete(t *testing.T) {
	f := setupServices(t)
	p, first, second := f.seedProject(t)

	done, err := f.projectSvc.Complete(f.ctx, ann, p.ID)
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if done.Status != models.ProjectCompleted || done.CompletionRate != 100 {
		t.Errorf("project = %s %d%%", done.Status, done.CompletionRate)
	}
	if len(done.ClosedTaskIDs) != 2 {
		t.Errorf("closed tasks = %v", done.ClosedTaskIDs)
	}
	for _, id := range []string{first.ID, second.ID} {
		task, err := f.tasks.FindByID(f.ctx, id)
		if err != nil {
			t.Fatal(err)
		}
		if task.Status != models.StatusCompleted || task.CompletedAt == nil {
			t.Errorf("task %s = %s", task.Title, task.Status)
		}
	}
	if got := f.notifier.ofType(models.NotifyProjectCompleted); len(got) != 1 || got[0].UserID != bob.ID {
		t.Errorf("project completed notifications = %+v", got)
	}

	_, err = f.projectSvc.Complete(f.ctx, ann, p.ID)
	wantKind(t, err, apperr.ErrStaleState)
}

func TestProjectReopen_ReopensClosedTasks(t *testing.T) {
	f := setupServices(t)
	p, first, second := f.seedProject(t)
	if _, err := f.taskSvc.ChangeStatus(f.ctx, bob, first.ID, models.StatusCompleted); err != nil {
		t.Fatal(err)
	}
	done, err := f.projectSvc.Complete(f.ctx, ann, p.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(done.ClosedTaskIDs) != 1 || done.ClosedTaskIDs[0] != second.ID {
		t.Fatalf("closed tasks = %v, want [%s]", done.ClosedTaskIDs, second.ID)
	}

	reopened, err := f.projectSvc.Update(f.ctx, ann, p.ID, models.ProjectPatch{Status: models.Set(models.ProjectInProgress)})
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if reopened.Status != models.ProjectInProgress || reopened.ClosedTaskIDs != nil {
		t.Errorf("project = %s closed %v", reopened.Status, reopened.ClosedTaskIDs)
	}
	if reopened.CompletedTasks != 1 || reopened.CompletionRate != 50 {
		t.Errorf("counters = %d/%d %d%%", reopened.CompletedTasks, reopened.TotalTasks, reopened.CompletionRate)
	}
	if got, _ := f.tasks.FindByID(f.ctx, first.ID); got.Status != models.StatusCompleted {
		t.Errorf("task completed by hand = %s, want completed", got.Status)
	}
	got, err := f.tasks.FindByID(f.ctx, second.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != models.StatusNotStarted || got.CompletedAt != nil {
		t.Errorf("task closed by completion = %s completedAt %v", got.Status, got.CompletedAt)
	}
}

func TestProjectDelete_WithTasks(t *testing.T) {
	f := setupServices(t)
	p, first, second := f.seedProject(t)

	_, err := f.projectSvc.Delete(f.ctx, bob, p.ID, true)
	wantKind(t, err, apperr.ErrPermissionDenied)

	deleted, err := f.projectSvc.Delete(f.ctx, ann, p.ID, true)
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if !deleted.IsDeleted || len(deleted.OriginalTaskIDs) != 2 {
		t.Fatalf("deleted = %+v", deleted)
	}
	for _, id := range []string{first.ID, second.ID} {
		task, err := f.tasks.FindByID(f.ctx, id)
		if err != nil {
			t.Fatal(err)
		}
		if !task.IsDeleted || task.ProjectID != p.ID {
			t.Errorf("task %s deleted=%v project=%q", task.Title, task.IsDeleted, task.ProjectID)
		}
	}

	trash, err := f.projectSvc.ListTrash(f.ctx, ann)
	if err != nil {
		t.Fatal(err)
	}
	if len(trash) != 1 {
		t.Errorf("trash = %d projects", len(trash))
	}

	restored, err := f.projectSvc.Restore(f.ctx, ann, p.ID, true)
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if restored.IsDeleted || restored.OriginalTaskIDs != nil || restored.TotalTasks != 2 {
		t.Errorf("restored = %+v", restored)
	}
	task, err := f.tasks.FindByID(f.ctx, first.ID)
	if err != nil {
		t.Fatal(err)
	}
	if task.IsDeleted || task.Status != models.StatusNotStarted {
		t.Errorf("restored task = deleted %v status %s", task.IsDeleted, task.Status)
	}

	_, err = f.projectSvc.Restore(f.ctx, ann, p.ID, true)
	wantKind(t, err, apperr.ErrStaleState)
}

func TestProjectDelete_DetachesTasks(t *testing.T) {
	f := setupServices(t)
	p, first, _ := f.seedProject(t)

	if _, err := f.projectSvc.Delete(f.ctx, ann, p.ID, false); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	task, err := f.tasks.FindByID(f.ctx, first.ID)
	if err != nil {
		t.Fatal(err)
	}
	if task.IsDeleted || task.ProjectID != "" {
		t.Fatalf("detached task = deleted %v project %q", task.IsDeleted, task.ProjectID)
	}

	if _, err := f.projectSvc.Restore(f.ctx, ann, p.ID, true); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	task, err = f.tasks.FindByID(f.ctx, first.ID)
	if err != nil {
		t.Fatal(err)
	}
	if task.ProjectID != p.ID {
		t.Errorf("task not re-attached: project %q", task.ProjectID)
	}
}

func TestProjectPermanentlyDelete(t *testing.T) {
	f := setupServices(t)
	p, first, _ := f.seedProject(t)

	err := f.projectSvc.PermanentlyDelete(f.ctx, bob, p.ID)
	wantKind(t, err, apperr.ErrPermissionDenied)

	if err := f.projectSvc.PermanentlyDelete(f.ctx, ann, p.ID); err != nil {
		t.Fatalf("PermanentlyDelete: %v", err)
	}
	_, err = f.tasks.FindByID(f.ctx, first.ID)
	wantKind(t, err, apperr.ErrNotFound)
	_, err = f.projects.FindByID(f.ctx, p.ID)
	wantKind(t, err, apperr.ErrNotFound)
}

func TestProjectMembers(t *testing.T) {
	f := setupServices(t)
	p, _, _ := f.seedProject(t)

	_, err := f.projectSvc.AddMember(f.ctx, bob, p.ID, cat.ID, models.ProjectRoleViewer)
	wantKind(t, err, apperr.ErrPermissionDenied)

	updated, err := f.projectSvc.AddMember(f.ctx, ann, p.ID, cat.ID, models.ProjectRoleViewer)
	if err != nil {
		t.Fatalf("AddMember: %v", err)
	}
	if role, ok := updated.MemberRole(cat.ID); !ok || role != models.ProjectRoleViewer {
		t.Errorf("cat role = %q", role)
	}
	if _, err := f.projectSvc.Get(f.ctx, cat, p.ID); err != nil {
		t.Errorf("viewer Get: %v", err)
	}
	_, err = f.projectSvc.Update(f.ctx, cat, p.ID, models.ProjectPatch{Name: models.Set("Hijacked")})
	wantKind(t, err, apperr.ErrPermissionDenied)

	updated, err = f.projectSvc.RemoveMember(f.ctx, ann, p.ID, cat.ID)
	if err != nil {
		t.Fatalf("RemoveMember: %v", err)
	}
	if _, ok := updated.MemberRole(cat.ID); ok {
		t.Error("cat still a member")
	}
	_, err = f.projectSvc.Get(f.ctx, cat, p.ID)
	wantKind(t, err, apperr.ErrPermissionDenied)
}

func TestProjectUpdate_StatusTransitions(t *testing.T) {
	f := setupServices(t)
	p, _, _ := f.seedProject(t)

	started, err := f.projectSvc.Update(f.ctx, bob, p.ID, models.ProjectPatch{Status: models.Set(models.ProjectInProgress)})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if started.Status != models.ProjectInProgress {
		t.Errorf("status = %s", started.Status)
	}
	done, err := f.projectSvc.Update(f.ctx, ann, p.ID, models.ProjectPatch{Status: models.Set(models.ProjectCompleted)})
	if err != nil {
		t.Fatalf("complete via Update: %v", err)
	}
	if done.CompletionRate != 100 {
		t.Errorf("rate = %d", done.CompletionRate)
	}
	_, err = f.projectSvc.Update(f.ctx, ann, p.ID, models.ProjectPatch{Status: models.Set(models.ProjectNotStarted)})
	wantKind(t, err, apperr.ErrValidation)
}

func TestProjectDateCheck(t *testing.T) {
	f := setupServices(t)
	start, end := day(2024, time.January, 1), day(2024, time.January, 2)
	p, err := f.projectSvc.Create(f.ctx, ann, ProjectInput{Name: "Sprint", StartDate: &start, EndDate: &end})
	if err != nil {
		t.Fatal(err)
	}

	got, err := f.projectSvc.Get(f.ctx, ann, p.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != models.ProjectInProgress {
		t.Errorf("status = %s, want in_progress", got.Status)
	}

	f.now = time.Date(2024, time.January, 5, 8, 0, 0, 0, time.UTC)
	for i := 0; i < 2; i++ {
		if _, err := f.projectSvc.Get(f.ctx, ann, p.ID); err != nil {
			t.Fatal(err)
		}
	}
	if n := len(f.notifier.ofType(models.NotifyProjectOverdue)); n != 1 {
		t.Errorf("overdue notifications = %d, want 1", n)
	}
	f.now = f.now.AddDate(0, 0, 1)
	res, err := f.projectSvc.RunDateCheck(f.ctx, ann, p.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !res.Overdue || res.Project.Status != models.ProjectInProgress {
		t.Errorf("result = %+v status %s", res.Result, res.Project.Status)
	}
	if n := len(f.notifier.ofType(models.NotifyProjectOverdue)); n != 2 {
		t.Errorf("overdue notifications on day two = %d, want 2", n)
	}
}

func TestProjectSweepDates_LeavesStartConfirmationToUser(t *testing.T) {
	f := setupServices(t)
	f.projectSvc.opts.AutoStart = false
	start, end := day(2024, time.January, 1), day(2024, time.January, 20)
	p, err := f.projectSvc.Create(f.ctx, ann, ProjectInput{Name: "Sprint", StartDate: &start, EndDate: &end})
	if err != nil {
		t.Fatal(err)
	}

	f.now = time.Date(2024, time.January, 2, 0, 5, 0, 0, time.UTC)
	if changed, err := f.projectSvc.SweepDates(f.ctx); err != nil || changed != 0 {
		t.Fatalf("sweep = %d, %v", changed, err)
	}
	f.now = time.Date(2024, time.January, 2, 9, 0, 0, 0, time.UTC)
	res, err := f.projectSvc.RunDateCheck(f.ctx, ann, p.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !res.NeedsConfirmation || res.Project.Status != models.ProjectNotStarted {
		t.Errorf("result = %+v needsConfirmation=%v status %s", res.Result, res.NeedsConfirmation, res.Project.Status)
	}
}

func TestProjectList_Scopes(t *testing.T) {
	f := setupServices(t)
	team := f.setupTeam(t)
	personal, _, _ := f.seedProject(t)
	teamProject, err := f.projectSvc.Create(f.ctx, bob, ProjectInput{Name: "Platform", TeamID: team.ID})
	if err != nil {
		t.Fatal(err)
	}

	mine, err := f.projectSvc.List(f.ctx, ann, authz.PersonalScope())
	if err != nil {
		t.Fatal(err)
	}
	if len(mine) != 1 || mine[0].ID != personal.ID {
		t.Errorf("personal projects = %d", len(mine))
	}
	ours, err := f.projectSvc.List(f.ctx, dan, authz.TeamScope(team.ID))
	if err != nil {
		t.Fatal(err)
	}
	if len(ours) != 1 || ours[0].ID != teamProject.ID {
		t.Errorf("team projects = %d", len(ours))
	}

	_, err = f.projectSvc.Create(f.ctx, dan, ProjectInput{Name: "Nope", TeamID: team.ID})
	wantKind(t, err, apperr.ErrPermissionDenied)
}

func TestProjectReport(t *testing.T) {
	f := setupServices(t)
	p, _, _ := f.seedProject(t)

	out, err := f.projectSvc.Report(f.ctx, bob, p.ID)
	if err != nil {
		t.Fatalf("Report: %v", err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF-")) {
		t.Errorf("report does not look like a PDF: %q", out[:min(len(out), 8)])
	}
	_, err = f.projectSvc.Report(f.ctx, dan, p.ID)
	wantKind(t, err, apperr.ErrPermissionDenied)
}
