package room

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/syncroom/server/internal/repository/session"
	"github.com/syncroom/server/pkg/ratelimit"
)

var (
	ErrRoomFull          = errors.New("room is full")
	ErrAdminSeatTaken    = errors.New("maximum admin connections reached")
	ErrMembersLimit      = errors.New("maximum user connections reached")
	ErrWaitingForAdmin   = errors.New("waiting for an admin to start the room")
	ErrMemberNotFound    = errors.New("member not found")
	ErrQueueLimitReached = errors.New("queue limit reached")
)

type iSessionRepo interface {
	Apply(now time.Time, fn func(state *session.State))
	Player(now time.Time) session.Player
	Member(id string) (session.Member, bool)
	HasMember(id string) bool
	Members() []session.Member
	MemberIds() []string
	Queue() []session.QueueEntry
	AdminId() string
	Occupancy() session.Occupancy
}

type iConnRepo interface {
	Add(conn *websocket.Conn, connId string) error
	Remove(connId string) error
	Send(connId string, v any) error
	Close(connId string, code int, reason string) error
}

type Config struct {
	MembersLimit     int
	ConnectionsLimit int
	QueueLimit       int
	SyncDebounce     time.Duration
	AdminSyncDelay   time.Duration
	SeekCorrectDelay time.Duration
	TeardownGrace    time.Duration
}

// service is the single writer of the session state. Every operation runs
// under mu, so events from all connections are applied in receipt order and
// outbound messages leave in mutation order.
type service struct {
	sessionRepo iSessionRepo
	connRepo    iConnRepo
	logger      *slog.Logger
	cfg         Config

	playGate *ratelimit.IntervalGate
	now      func() time.Time

	mu     sync.Mutex
	timers map[string][]*time.Timer
}

func NewService(sessionRepo iSessionRepo, connRepo iConnRepo, logger *slog.Logger, cfg *Config) *service {
	return &service{
		sessionRepo: sessionRepo,
		connRepo:    connRepo,
		logger:      logger,
		cfg:         *cfg,
		playGate:    ratelimit.NewIntervalGate(cfg.SyncDebounce),
		now:         time.Now,
		timers:      make(map[string][]*time.Timer),
	}
}

// schedule runs fn under the service lock after d, unless the connection is
// gone by then. Stopped on disconnect.
func (s *service) schedule(connId string, d time.Duration, fn func()) {
	t := time.AfterFunc(d, func() {
		s.mu.Lock()
		defer s.mu.Unlock()

		if !s.sessionRepo.HasMember(connId) {
			return
		}

		fn()
	})

	s.timers[connId] = append(s.timers[connId], t)
}

func (s *service) stopTimers(connId string) {
	for _, t := range s.timers[connId] {
		t.Stop()
	}

	delete(s.timers, connId)
}
