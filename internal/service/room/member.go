package room

import (
	"fmt"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/syncroom/server/internal/repository/session"
)

const maxUsernameLength = 20

const teardownCloseCode = 4000

type ConnectParams struct {
	Conn     *websocket.Conn
	ConnId   string
	Username string
	IsAdmin  bool
}

// Connect admits a member, registers its connection and seeds it with the
// current room state. The caller owns the websocket until Connect returns nil.
func (s *service) Connect(params *ConnectParams) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.authorize(params.IsAdmin, s.sessionRepo.Occupancy()); err != nil {
		return err
	}

	if err := s.connRepo.Add(params.Conn, params.ConnId); err != nil {
		return fmt.Errorf("failed to add connection: %w", err)
	}

	now := s.now()
	s.sessionRepo.Apply(now, func(state *session.State) {
		state.Members[params.ConnId] = session.Member{
			Id:       params.ConnId,
			Username: sanitizeUsername(params.Username),
			IsAdmin:  params.IsAdmin,
			JoinedAt: now,
		}

		if params.IsAdmin {
			state.AdminId = params.ConnId
			state.AdminEverJoined = true
		}
	})

	s.sendToConn(params.ConnId, &Message{
		Type: MsgInitState,
		Payload: InitStatePayload{
			RoomSnapshot: s.roomSnapshot(now),
			ConnectionId: params.ConnId,
			IsAdmin:      params.IsAdmin,
		},
	})

	s.broadcastServerMessage(s.memberUsername(params.ConnId)+" joined the room", false)
	s.broadcastMembers()

	// A late sync settles everyone on the position the new member landed on.
	// When the admin joins it is forced, so waiting members snap to the
	// authoritative state immediately.
	if params.IsAdmin {
		s.schedule(params.ConnId, s.cfg.AdminSyncDelay, func() {
			s.broadcast(&Message{
				Type: MsgSyncState,
				Payload: SyncStatePayload{
					RoomSnapshot: s.roomSnapshot(s.now()),
					Force:        true,
				},
			})
		})
	} else {
		s.schedule(params.ConnId, s.cfg.AdminSyncDelay, func() {
			s.sendToConn(params.ConnId, &Message{
				Type:    MsgSyncState,
				Payload: SyncStatePayload{RoomSnapshot: s.roomSnapshot(s.now())},
			})
		})
	}

	return nil
}

// Disconnect removes a member and its connection. When the departing member
// holds the admin seat the room is torn down after a grace period unless a
// new admin claims the seat first.
func (s *service) Disconnect(connId string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	member, ok := s.sessionRepo.Member(connId)
	if !ok {
		if err := s.connRepo.Remove(connId); err != nil {
			return fmt.Errorf("failed to remove connection: %w", err)
		}

		return ErrMemberNotFound
	}

	s.stopTimers(connId)

	s.sessionRepo.Apply(s.now(), func(state *session.State) {
		delete(state.Members, connId)

		if state.AdminId == connId {
			state.AdminId = ""
			state.Player.IsPlaying = false
		}
	})

	if err := s.connRepo.Remove(connId); err != nil {
		return fmt.Errorf("failed to remove connection: %w", err)
	}

	if member.IsAdmin {
		s.broadcast(&Message{
			Type: MsgAdminLeft,
			Payload: ServerMessagePayload{
				Message:   "The admin left the room. The room will close shortly.",
				Timestamp: s.now().UnixMilli(),
			},
		})

		// Teardown is not tied to the departed connection, so it is tracked
		// by the closure itself instead of the per-connection timer list.
		time.AfterFunc(s.cfg.TeardownGrace, s.teardown)
	} else {
		s.broadcastServerMessage(member.Username+" left the room. A slot is now available", false)
	}

	s.broadcastMembers()

	return nil
}

// teardown closes every remaining connection, unless an admin reclaimed the
// seat during the grace period.
func (s *service) teardown() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.adminConnected() {
		return
	}

	for _, connId := range s.sessionRepo.MemberIds() {
		s.stopTimers(connId)

		if err := s.connRepo.Close(connId, teardownCloseCode, "room closed"); err != nil {
			s.logger.Info("failed to close connection", "conn_id", connId, "error", err)
		}

		if err := s.connRepo.Remove(connId); err != nil {
			s.logger.Info("failed to remove connection", "conn_id", connId, "error", err)
		}
	}

	s.sessionRepo.Apply(s.now(), func(state *session.State) {
		for id := range state.Members {
			delete(state.Members, id)
		}
	})
}

// SetUsername renames a member. Empty names are ignored, long ones truncated.
func (s *service) SetUsername(connId, username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	member, ok := s.sessionRepo.Member(connId)
	if !ok {
		return ErrMemberNotFound
	}

	username = sanitizeUsername(username)
	if username == "" || username == member.Username {
		return nil
	}

	s.sessionRepo.Apply(s.now(), func(state *session.State) {
		member := state.Members[connId]
		member.Username = username
		state.Members[connId] = member
	})

	s.sendToConn(connId, &Message{
		Type: MsgUsernameSet,
		Payload: MemberInfo{
			Id:       connId,
			Username: username,
			IsAdmin:  member.IsAdmin,
		},
	})

	s.broadcastMembers()

	return nil
}

func sanitizeUsername(username string) string {
	username = strings.TrimSpace(username)

	runes := []rune(username)
	if len(runes) > maxUsernameLength {
		username = string(runes[:maxUsernameLength])
	}

	return username
}
