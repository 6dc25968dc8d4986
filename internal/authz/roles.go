package authz

import "teamtasks/internal/models"

// teamRole returns the user's role in the team, or "" for non-members and
// missing or deleted teams.
func teamRole(team *models.Team, userID string) models.TeamRole {
	if team == nil || team.IsDeleted || userID == "" {
		return ""
	}
	if team.OwnerID == userID {
		return models.TeamRoleOwner
	}
	role, _ := team.MemberRole(userID)
	return role
}

func IsTeamMember(team *models.Team, userID string) bool {
	return teamRole(team, userID) != ""
}

// CanManageTeam is true for the team owner and admins.
func CanManageTeam(team *models.Team, userID string) bool {
	return teamRole(team, userID).IsManager()
}

// TeamRole exposes the resolved role, "" for strangers.
func TeamRole(team *models.Team, userID string) models.TeamRole {
	return teamRole(team, userID)
}

func projectRole(project *models.Project, userID string) models.ProjectRole {
	if project == nil || userID == "" {
		return ""
	}
	if project.OwnerID == userID {
		return models.ProjectRoleOwner
	}
	role, _ := project.MemberRole(userID)
	return role
}

// isProjectOwner covers the owner field and members holding the owner role.
func isProjectOwner(project *models.Project, userID string) bool {
	return projectRole(project, userID) == models.ProjectRoleOwner
}

func canContribute(role models.ProjectRole) bool {
	return role == models.ProjectRoleOwner || role == models.ProjectRoleMember
}
