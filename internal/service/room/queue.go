package room

import (
	"fmt"
	"strings"

	"github.com/syncroom/server/internal/repository/session"
)

type AddToQueueParams struct {
	ConnId    string
	VideoId   string
	Title     string
	Thumbnail string
}

// AddToQueue appends a video to the shared queue. Any member may add.
func (s *service) AddToQueue(params *AddToQueueParams) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	member, ok := s.sessionRepo.Member(params.ConnId)
	if !ok {
		return ErrMemberNotFound
	}

	if len(s.sessionRepo.Queue()) >= s.cfg.QueueLimit {
		return ErrQueueLimitReached
	}

	entry := session.QueueEntry{
		VideoId:   params.VideoId,
		Title:     strings.TrimSpace(params.Title),
		Thumbnail: params.Thumbnail,
		AddedBy:   member.Username,
	}
	if entry.Title == "" {
		entry.Title = params.VideoId
	}
	if entry.Thumbnail == "" {
		entry.Thumbnail = defaultThumbnail(params.VideoId)
	}

	s.sessionRepo.Apply(s.now(), func(state *session.State) {
		state.Queue = append(state.Queue, entry)
	})

	s.broadcastQueue()

	return nil
}

// RemoveFromQueue drops the entry at the given index. Out-of-range indexes
// are ignored.
func (s *service) RemoveFromQueue(connId string, index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.sessionRepo.HasMember(connId) {
		return ErrMemberNotFound
	}

	removed := false
	s.sessionRepo.Apply(s.now(), func(state *session.State) {
		if index < 0 || index >= len(state.Queue) {
			return
		}

		state.Queue = append(state.Queue[:index], state.Queue[index+1:]...)
		removed = true
	})

	if removed {
		s.broadcastQueue()
	}

	return nil
}

// ReorderQueue moves the entry at from to to, shifting the entries between
// them. Out-of-range indexes and moves to the same place are ignored.
func (s *service) ReorderQueue(connId string, from, to int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.sessionRepo.HasMember(connId) {
		return ErrMemberNotFound
	}

	moved := false
	s.sessionRepo.Apply(s.now(), func(state *session.State) {
		if from == to {
			return
		}
		if from < 0 || from >= len(state.Queue) || to < 0 || to >= len(state.Queue) {
			return
		}

		entry := state.Queue[from]
		state.Queue = append(state.Queue[:from], state.Queue[from+1:]...)
		state.Queue = append(state.Queue[:to], append([]session.QueueEntry{entry}, state.Queue[to:]...)...)
		moved = true
	})

	if moved {
		s.broadcastQueue()
	}

	return nil
}

func defaultThumbnail(videoId string) string {
	return fmt.Sprintf("https://img.youtube.com/vi/%s/mqdefault.jpg", videoId)
}
