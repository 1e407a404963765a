package room

import (
	"context"
	"strings"
	"time"
)

const maxChatMessageLength = 500

// Chat relays a chat message from a member to the whole room, stamped with
// the server's wall clock.
func (s *service) Chat(connId, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	member, ok := s.sessionRepo.Member(connId)
	if !ok {
		return ErrMemberNotFound
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	runes := []rune(text)
	if len(runes) > maxChatMessageLength {
		text = string(runes[:maxChatMessageLength])
	}

	s.broadcast(&Message{
		Type: MsgChatMessage,
		Payload: ChatMessagePayload{
			Username: member.Username,
			Text:     text,
			Time:     s.now().Format("15:04:05"),
			IsAdmin:  member.IsAdmin,
		},
	})

	return nil
}

// BroadcastServerMessage announces an out-of-band message to the whole room.
func (s *service) BroadcastServerMessage(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.broadcastServerMessage(text, false)
}

// StartHeartbeat periodically announces the room is alive until ctx is
// cancelled. Nothing is sent while the room is empty.
func (s *service) StartHeartbeat(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.mu.Lock()
				if s.sessionRepo.Occupancy().Total > 0 {
					s.broadcastServerMessage("Server connection active", true)
				}
				s.mu.Unlock()
			}
		}
	}()
}
