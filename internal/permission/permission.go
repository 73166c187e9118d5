// Package permission derives what the current user may do in a team
// workspace. Every function is pure and accepts nil inputs, returning false
// while data is still loading.
package permission

import "teamdocs/internal/model"

// IsTeamOwner reports whether user holds the owner role in team. Admins are
// not owners.
func IsTeamOwner(user *model.CurrentUser, team *model.Team) bool {
	if user == nil || team == nil {
		return false
	}
	m, ok := team.MemberFor(user.ID)
	return ok && m.Role == model.RoleOwner
}

// CanDeleteDocument reports whether user may delete doc: its owner may, and
// so may the owner of team.
func CanDeleteDocument(user *model.CurrentUser, team *model.Team, doc *model.Document) bool {
	if user == nil || doc == nil {
		return false
	}
	if doc.Owner == user.ID {
		return true
	}
	return IsTeamOwner(user, team)
}

// CanInviteMembers reports whether user may invite members to team.
func CanInviteMembers(user *model.CurrentUser, team *model.Team) bool {
	return IsTeamOwner(user, team)
}

// Set is the permission view for one render of a team workspace.
type Set struct {
	user      *model.CurrentUser
	team      *model.Team
	TeamOwner bool
	Invite    bool
}

// Evaluate computes the team-level permissions of user in team.
func Evaluate(user *model.CurrentUser, team *model.Team) Set {
	owner := IsTeamOwner(user, team)
	return Set{
		user:      user,
		team:      team,
		TeamOwner: owner,
		Invite:    owner,
	}
}

// CanDelete reports whether the delete affordance is shown for doc.
func (s Set) CanDelete(doc *model.Document) bool {
	return CanDeleteDocument(s.user, s.team, doc)
}
