package auth

import (
	"github.com/mesconnect/backend/internal/app/models"
)

// CanModerateConfessions reports whether the actor may approve, unapprove or
// feature confessions.
func CanModerateConfessions(actor Actor) bool {
	return actor.IsAdmin()
}

// CanDeleteConfession reports whether the actor may delete the confession.
// Owners may delete their attributed posts; admins may delete anything,
// including anonymous posts which have no recorded owner.
func CanDeleteConfession(actor Actor, ownerID *int64) bool {
	if actor.IsAdmin() {
		return true
	}
	return ownerID != nil && *ownerID == actor.UserID
}

// CanViewParticipants reports whether the actor may list an event's
// registrants.
func CanViewParticipants(actor Actor, organizerID int64) bool {
	return actor.IsAdmin() || actor.UserID == organizerID
}

// CanSetGroupRole reports whether a member with actorRole may change a member
// from currentRole to newRole. Admins may assign any role. Moderators may only
// move members between member and moderator.
func CanSetGroupRole(actorRole, currentRole, newRole models.GroupRole) bool {
	switch actorRole {
	case models.GroupRoleAdmin:
		return true
	case models.GroupRoleModerator:
		if currentRole == models.GroupRoleAdmin || newRole == models.GroupRoleAdmin {
			return false
		}
		return true
	}
	return false
}

// CanBanGroupMember reports whether a member with actorRole may ban or unban
// a member with targetRole. Admins and moderators may ban, but never an admin.
func CanBanGroupMember(actorRole, targetRole models.GroupRole) bool {
	if targetRole == models.GroupRoleAdmin {
		return false
	}
	return actorRole == models.GroupRoleAdmin || actorRole == models.GroupRoleModerator
}
