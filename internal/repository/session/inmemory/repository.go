package inmemory

import (
	"sort"
	"sync"
	"time"

	"golang.org/x/exp/maps"

	"github.com/syncroom/server/internal/repository/session"
)

type repo struct {
	mu    sync.RWMutex
	state session.State
}

func NewRepo(initialVideoId string) *repo {
	return &repo{
		state: session.State{
			Player: session.Player{
				VideoId:   initialVideoId,
				UpdatedAt: time.Now(),
			},
			Members: make(map[string]session.Member),
		},
	}
}

// Apply runs fn against the state under the write lock. Playback position is
// folded forward to now before fn runs, and the update timestamp is refreshed
// after, so extrapolation never runs backwards across a mutation.
func (r *repo) Apply(now time.Time, fn func(state *session.State)) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state.Player.IsPlaying {
		r.state.Player.CurrentTime += now.Sub(r.state.Player.UpdatedAt).Seconds()
	}

	fn(&r.state)

	r.state.Player.UpdatedAt = now
}

// Player returns a snapshot with CurrentTime extrapolated to now.
func (r *repo) Player(now time.Time) session.Player {
	r.mu.RLock()
	defer r.mu.RUnlock()

	player := r.state.Player
	if player.IsPlaying {
		player.CurrentTime += now.Sub(player.UpdatedAt).Seconds()
	}

	return player
}

func (r *repo) Member(id string) (session.Member, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	member, ok := r.state.Members[id]

	return member, ok
}

func (r *repo) HasMember(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.state.Members[id]

	return ok
}

// Members returns the roster ordered by join time.
func (r *repo) Members() []session.Member {
	r.mu.RLock()
	defer r.mu.RUnlock()

	members := maps.Values(r.state.Members)
	sort.Slice(members, func(i, j int) bool {
		return members[i].JoinedAt.Before(members[j].JoinedAt)
	})

	return members
}

func (r *repo) MemberIds() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return maps.Keys(r.state.Members)
}

func (r *repo) Queue() []session.QueueEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	queue := make([]session.QueueEntry, len(r.state.Queue))
	copy(queue, r.state.Queue)

	return queue
}

func (r *repo) AdminId() string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.state.AdminId
}

func (r *repo) Occupancy() session.Occupancy {
	r.mu.RLock()
	defer r.mu.RUnlock()

	occ := session.Occupancy{
		Total:           len(r.state.Members),
		AdminEverJoined: r.state.AdminEverJoined,
	}
	for _, member := range r.state.Members {
		if member.IsAdmin {
			occ.Admins++
		} else {
			occ.Regulars++
		}
	}

	return occ
}
