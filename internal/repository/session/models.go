package session

import "time"

// Player is the authoritative playback state of the room. CurrentTime is only
// accurate at UpdatedAt; read it through the repository's extrapolating
// accessors.
type Player struct {
	VideoId              string
	CurrentTime          float64
	IsPlaying            bool
	UpdatedAt            time.Time
	AdminStartedPlayback bool
}

type Member struct {
	Id       string
	Username string
	IsAdmin  bool
	JoinedAt time.Time
}

type QueueEntry struct {
	VideoId   string
	Title     string
	Thumbnail string
	AddedBy   string
}

type Occupancy struct {
	Admins          int
	Regulars        int
	Total           int
	AdminEverJoined bool
}

// State is the full mutable room state. Only the room service mutates it,
// through the repository's Apply.
type State struct {
	Player          Player
	Members         map[string]Member
	Queue           []QueueEntry
	AdminId         string
	AdminEverJoined bool
}
