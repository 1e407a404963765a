package room

import (
	"github.com/syncroom/server/internal/repository/session"
)

// Play applies a play event at the given position. Admin plays always win
// and open playback for everyone else. Regular plays are accepted only once
// the admin has started playback, and their broadcasts are debounced so a
// burst of resumes does not flood the room. A rejected play leaves the room
// state untouched and pauses the sender back to the authoritative position.
func (s *service) Play(connId string, position float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	member, ok := s.sessionRepo.Member(connId)
	if !ok {
		return ErrMemberNotFound
	}

	now := s.now()
	player := s.sessionRepo.Player(now)

	switch decidePlay(member.IsAdmin, player.AdminStartedPlayback) {
	case playReject:
		s.sendToConn(connId, &Message{
			Type: MsgVideoPause,
			Payload: PausePayload{
				Time:      player.CurrentTime,
				Timestamp: now.UnixMilli(),
				FromAdmin: false,
				Message:   "Waiting for the admin to start playback",
			},
		})
		s.sendToConn(connId, &Message{
			Type:    MsgSyncState,
			Payload: SyncStatePayload{RoomSnapshot: s.roomSnapshot(now)},
		})

		return nil

	case playAccept:
		s.sessionRepo.Apply(now, func(state *session.State) {
			state.Player.CurrentTime = position
			state.Player.IsPlaying = true
			state.Player.AdminStartedPlayback = true
		})

		s.broadcast(&Message{
			Type: MsgVideoPlay,
			Payload: PlayPayload{
				Time:                 position,
				Timestamp:            now.UnixMilli(),
				FromAdmin:            true,
				AdminStartedPlayback: true,
				Force:                true,
			},
		})
		s.playGate.Mark(MsgVideoPlay, now)

	case playAcceptThrottled:
		s.sessionRepo.Apply(now, func(state *session.State) {
			state.Player.CurrentTime = position
			state.Player.IsPlaying = true
		})

		if s.playGate.Allow(MsgVideoPlay, now) {
			s.broadcast(&Message{
				Type: MsgVideoPlay,
				Payload: PlayPayload{
					Time:                 position,
					Timestamp:            now.UnixMilli(),
					FromAdmin:            false,
					AdminStartedPlayback: true,
				},
			})
		}
	}

	return nil
}

// Pause applies a pause event. Admin pauses are authoritative, as is
// anyone's while no admin is connected. Other pauses are ignored and the
// sender is resynced to the shared state.
func (s *service) Pause(connId string, position float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	member, ok := s.sessionRepo.Member(connId)
	if !ok {
		return ErrMemberNotFound
	}

	now := s.now()

	if !decideAuthoritative(member.IsAdmin, s.adminConnected()) {
		s.sendToConn(connId, &Message{
			Type:    MsgSyncState,
			Payload: SyncStatePayload{RoomSnapshot: s.roomSnapshot(now)},
		})

		return nil
	}

	s.sessionRepo.Apply(now, func(state *session.State) {
		state.Player.CurrentTime = position
		state.Player.IsPlaying = false
	})

	s.broadcast(&Message{
		Type: MsgVideoPause,
		Payload: PausePayload{
			Time:      position,
			Timestamp: now.UnixMilli(),
			FromAdmin: member.IsAdmin,
		},
	})

	return nil
}

// Seek applies a seek event. Authoritative seeks move the shared position.
// A regular seek while the admin is connected is allowed to stand locally as
// a temporary jump, and a corrective sync snaps the seeker back to the
// authoritative position shortly after.
func (s *service) Seek(connId string, position float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	member, ok := s.sessionRepo.Member(connId)
	if !ok {
		return ErrMemberNotFound
	}

	now := s.now()

	if decideAuthoritative(member.IsAdmin, s.adminConnected()) {
		s.sessionRepo.Apply(now, func(state *session.State) {
			state.Player.CurrentTime = position
		})

		s.broadcast(&Message{
			Type: MsgVideoSeek,
			Payload: SeekPayload{
				Time:      position,
				Timestamp: now.UnixMilli(),
				FromAdmin: member.IsAdmin,
			},
		})

		return nil
	}

	s.sendToConn(connId, &Message{
		Type:    MsgTemporarySeek,
		Payload: TemporarySeekPayload{Time: position},
	})

	s.schedule(connId, s.cfg.SeekCorrectDelay, func() {
		s.sendToConn(connId, &Message{
			Type: MsgSyncState,
			Payload: SyncStatePayload{
				RoomSnapshot: s.roomSnapshot(s.now()),
				Force:        true,
			},
		})
	})

	return nil
}

// ChangeVideo switches the room to a new video. Any member may do it. The
// switch resets position, pauses playback and closes the playback latch, so
// regular plays are rejected again until the admin starts the new video.
func (s *service) ChangeVideo(connId, videoId string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	member, ok := s.sessionRepo.Member(connId)
	if !ok {
		return ErrMemberNotFound
	}

	now := s.now()
	s.sessionRepo.Apply(now, func(state *session.State) {
		state.Player.VideoId = videoId
		state.Player.CurrentTime = 0
		state.Player.IsPlaying = false
		state.Player.AdminStartedPlayback = false
	})
	s.playGate.Reset(MsgVideoPlay)

	s.broadcast(&Message{
		Type: MsgVideoChanged,
		Payload: VideoChangedPayload{
			VideoId:   videoId,
			Timestamp: now.UnixMilli(),
			ChangedBy: member.Username,
		},
	})

	return nil
}

// PlayNext pops the head of the queue and starts playing it. A play from the
// admin opens the playback latch for the new video. An empty queue is a
// no-op.
func (s *service) PlayNext(connId string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	member, ok := s.sessionRepo.Member(connId)
	if !ok {
		return ErrMemberNotFound
	}

	var next session.QueueEntry
	popped := false

	now := s.now()
	s.sessionRepo.Apply(now, func(state *session.State) {
		if len(state.Queue) == 0 {
			return
		}

		next = state.Queue[0]
		state.Queue = state.Queue[1:]
		popped = true

		state.Player.VideoId = next.VideoId
		state.Player.CurrentTime = 0
		state.Player.IsPlaying = true
		state.Player.AdminStartedPlayback = member.IsAdmin
	})

	if !popped {
		return nil
	}

	s.broadcast(&Message{
		Type: MsgVideoChanged,
		Payload: VideoChangedPayload{
			VideoId:   next.VideoId,
			Timestamp: now.UnixMilli(),
			ChangedBy: member.Username,
		},
	})
	s.broadcastQueue()
	s.broadcast(&Message{
		Type: MsgVideoPlay,
		Payload: PlayPayload{
			Time:                 0,
			Timestamp:            now.UnixMilli(),
			FromAdmin:            member.IsAdmin,
			AdminStartedPlayback: s.sessionRepo.Player(now).AdminStartedPlayback,
			Force:                true,
		},
	})
	s.playGate.Mark(MsgVideoPlay, now)

	return nil
}

// RequestSync sends the current room state back to the requesting member.
func (s *service) RequestSync(connId string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.sessionRepo.HasMember(connId) {
		return ErrMemberNotFound
	}

	s.sendToConn(connId, &Message{
		Type:    MsgSyncState,
		Payload: SyncStatePayload{RoomSnapshot: s.roomSnapshot(s.now())},
	})

	return nil
}

// Ping echoes the client's timestamp back so it can measure its round trip.
func (s *service) Ping(connId string, clientTime int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.sessionRepo.HasMember(connId) {
		return ErrMemberNotFound
	}

	s.sendToConn(connId, &Message{
		Type:    MsgPong,
		Payload: PongPayload{Time: clientTime},
	})

	return nil
}
