package room

import "github.com/syncroom/server/internal/repository/session"

// authorize applies the admission rules for a new connection. The admin seat
// has cardinality one, regular members are capped, regulars may not enter a
// room no admin has ever opened, and a global connection cap backstops
// everything regardless of role.
func (s *service) authorize(isAdmin bool, occ session.Occupancy) error {
	if isAdmin {
		if occ.Admins > 0 {
			return ErrAdminSeatTaken
		}
	} else {
		if occ.Regulars >= s.cfg.MembersLimit {
			return ErrMembersLimit
		}

		if !occ.AdminEverJoined {
			return ErrWaitingForAdmin
		}
	}

	if occ.Total >= s.cfg.ConnectionsLimit {
		return ErrRoomFull
	}

	return nil
}
