package room

const (
	MsgInitState          = "INIT_STATE"
	MsgSyncState          = "SYNC_STATE"
	MsgVideoPlay          = "VIDEO_PLAY"
	MsgVideoPause         = "VIDEO_PAUSE"
	MsgVideoSeek          = "VIDEO_SEEK"
	MsgTemporarySeek      = "TEMPORARY_SEEK"
	MsgVideoChanged       = "VIDEO_CHANGED"
	MsgQueueUpdated       = "QUEUE_UPDATED"
	MsgMembersUpdated     = "MEMBERS_UPDATED"
	MsgChatMessage        = "CHAT_MESSAGE"
	MsgServerMessage      = "SERVER_MESSAGE"
	MsgAdminLeft          = "ADMIN_LEFT"
	MsgUsernameSet        = "USERNAME_SET"
	MsgPong               = "PONG"
	MsgConnectionRejected = "CONNECTION_REJECTED"
)

type Message struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

type PlayerSnapshot struct {
	VideoId              string  `json:"video_id"`
	CurrentTime          float64 `json:"current_time"`
	IsPlaying            bool    `json:"is_playing"`
	AdminStartedPlayback bool    `json:"admin_started_playback"`
	UpdatedAt            int64   `json:"updated_at"`
}

type MemberInfo struct {
	Id       string `json:"id"`
	Username string `json:"username"`
	IsAdmin  bool   `json:"is_admin"`
}

type QueueItem struct {
	VideoId   string `json:"video_id"`
	Title     string `json:"title"`
	Thumbnail string `json:"thumbnail"`
	AddedBy   string `json:"added_by"`
}

type RoomSnapshot struct {
	Player  PlayerSnapshot `json:"player"`
	Queue   []QueueItem    `json:"queue"`
	AdminId string         `json:"admin_id"`
}

type InitStatePayload struct {
	RoomSnapshot
	ConnectionId string `json:"connection_id"`
	IsAdmin      bool   `json:"is_admin"`
}

type SyncStatePayload struct {
	RoomSnapshot
	Force bool `json:"force,omitempty"`
}

type PlayPayload struct {
	Time                 float64 `json:"time"`
	Timestamp            int64   `json:"timestamp"`
	FromAdmin            bool    `json:"from_admin"`
	AdminStartedPlayback bool    `json:"admin_started_playback"`
	Force                bool    `json:"force,omitempty"`
}

type PausePayload struct {
	Time      float64 `json:"time"`
	Timestamp int64   `json:"timestamp"`
	FromAdmin bool    `json:"from_admin"`
	Message   string  `json:"message,omitempty"`
}

type SeekPayload struct {
	Time      float64 `json:"time"`
	Timestamp int64   `json:"timestamp"`
	FromAdmin bool    `json:"from_admin"`
}

type TemporarySeekPayload struct {
	Time float64 `json:"time"`
}

type VideoChangedPayload struct {
	VideoId   string `json:"video_id"`
	Timestamp int64  `json:"timestamp"`
	ChangedBy string `json:"changed_by"`
}

type QueueUpdatedPayload struct {
	Queue []QueueItem `json:"queue"`
}

type MembersUpdatedPayload struct {
	Count   int          `json:"count"`
	Members []MemberInfo `json:"members"`
	AdminId string       `json:"admin_id"`
}

type ChatMessagePayload struct {
	Username string `json:"username"`
	Text     string `json:"text"`
	Time     string `json:"time"`
	IsAdmin  bool   `json:"is_admin"`
}

type ServerMessagePayload struct {
	Message     string `json:"message"`
	Timestamp   int64  `json:"timestamp"`
	IsHeartbeat bool   `json:"is_heartbeat,omitempty"`
}

type PongPayload struct {
	Time int64 `json:"time"`
}

type ConnectionRejectedPayload struct {
	Reason string `json:"reason"`
}
