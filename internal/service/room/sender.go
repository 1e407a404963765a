package room

import (
	"time"
)

func (s *service) sendToConn(connId string, msg *Message) {
	if err := s.connRepo.Send(connId, msg); err != nil {
		s.logger.Info("failed to send message", "conn_id", connId, "type", msg.Type, "error", err)
	}
}

func (s *service) broadcast(msg *Message) {
	for _, connId := range s.sessionRepo.MemberIds() {
		s.sendToConn(connId, msg)
	}
}

func (s *service) broadcastServerMessage(text string, isHeartbeat bool) {
	s.broadcast(&Message{
		Type: MsgServerMessage,
		Payload: ServerMessagePayload{
			Message:     text,
			Timestamp:   s.now().UnixMilli(),
			IsHeartbeat: isHeartbeat,
		},
	})
}

func (s *service) broadcastMembers() {
	members := s.sessionRepo.Members()
	infos := make([]MemberInfo, 0, len(members))
	for _, member := range members {
		infos = append(infos, MemberInfo{
			Id:       member.Id,
			Username: member.Username,
			IsAdmin:  member.IsAdmin,
		})
	}

	s.broadcast(&Message{
		Type: MsgMembersUpdated,
		Payload: MembersUpdatedPayload{
			Count:   len(infos),
			Members: infos,
			AdminId: s.sessionRepo.AdminId(),
		},
	})
}

func (s *service) broadcastQueue() {
	s.broadcast(&Message{
		Type:    MsgQueueUpdated,
		Payload: QueueUpdatedPayload{Queue: s.queueItems()},
	})
}

func (s *service) queueItems() []QueueItem {
	queue := s.sessionRepo.Queue()
	items := make([]QueueItem, 0, len(queue))
	for _, entry := range queue {
		items = append(items, QueueItem{
			VideoId:   entry.VideoId,
			Title:     entry.Title,
			Thumbnail: entry.Thumbnail,
			AddedBy:   entry.AddedBy,
		})
	}

	return items
}

func (s *service) playerSnapshot(now time.Time) PlayerSnapshot {
	player := s.sessionRepo.Player(now)

	return PlayerSnapshot{
		VideoId:              player.VideoId,
		CurrentTime:          player.CurrentTime,
		IsPlaying:            player.IsPlaying,
		AdminStartedPlayback: player.AdminStartedPlayback,
		UpdatedAt:            player.UpdatedAt.UnixMilli(),
	}
}

func (s *service) roomSnapshot(now time.Time) RoomSnapshot {
	return RoomSnapshot{
		Player:  s.playerSnapshot(now),
		Queue:   s.queueItems(),
		AdminId: s.sessionRepo.AdminId(),
	}
}

func (s *service) memberUsername(connId string) string {
	member, ok := s.sessionRepo.Member(connId)
	if !ok {
		return "Someone"
	}

	return member.Username
}

func (s *service) adminConnected() bool {
	return s.sessionRepo.AdminId() != ""
}
