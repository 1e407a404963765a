package room

import (
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syncroom/server/internal/repository/session/inmemory"
)

type fakeConnRepo struct {
	mu     sync.Mutex
	sent   map[string][]*Message
	closed map[string]int
}

func newFakeConnRepo() *fakeConnRepo {
	return &fakeConnRepo{
		sent:   make(map[string][]*Message),
		closed: make(map[string]int),
	}
}

func (f *fakeConnRepo) Add(conn *websocket.Conn, connId string) error {
	return nil
}

func (f *fakeConnRepo) Remove(connId string) error {
	return nil
}

func (f *fakeConnRepo) Send(connId string, v any) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.sent[connId] = append(f.sent[connId], v.(*Message))

	return nil
}

func (f *fakeConnRepo) Close(connId string, code int, reason string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.closed[connId] = code

	return nil
}

func (f *fakeConnRepo) messagesOfType(connId, messageType string) []*Message {
	f.mu.Lock()
	defer f.mu.Unlock()

	var msgs []*Message
	for _, msg := range f.sent[connId] {
		if msg.Type == messageType {
			msgs = append(msgs, msg)
		}
	}

	return msgs
}

func (f *fakeConnRepo) closeCode(connId string) (int, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	code, ok := f.closed[connId]

	return code, ok
}

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func newClock() *clock {
	return &clock{now: time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.now = c.now.Add(d)
}

func testConfig() *Config {
	return &Config{
		MembersLimit:     2,
		ConnectionsLimit: 3,
		QueueLimit:       50,
		SyncDebounce:     100 * time.Millisecond,
		AdminSyncDelay:   time.Hour,
		SeekCorrectDelay: time.Hour,
		TeardownGrace:    time.Hour,
	}
}

func newTestService(t *testing.T, cfg *Config) (*service, *fakeConnRepo, *clock) {
	t.Helper()

	connRepo := newFakeConnRepo()
	svc := NewService(inmemory.NewRepo("dQw4w9WgXcQ"), connRepo, slog.Default(), cfg)

	clk := newClock()
	svc.now = clk.Now

	return svc, connRepo, clk
}

func connect(t *testing.T, svc *service, connId, username string, isAdmin bool) {
	t.Helper()

	require.NoError(t, svc.Connect(&ConnectParams{
		ConnId:   connId,
		Username: username,
		IsAdmin:  isAdmin,
	}))
}

func TestConnect(t *testing.T) {
	t.Run("admin receives init state", func(t *testing.T) {
		svc, connRepo, _ := newTestService(t, testConfig())

		connect(t, svc, "admin-1", "alice", true)

		inits := connRepo.messagesOfType("admin-1", MsgInitState)
		require.Len(t, inits, 1)

		payload := inits[0].Payload.(InitStatePayload)
		assert.Equal(t, "admin-1", payload.ConnectionId)
		assert.True(t, payload.IsAdmin)
		assert.Equal(t, "dQw4w9WgXcQ", payload.Player.VideoId)
		assert.False(t, payload.Player.IsPlaying)
		assert.Equal(t, "admin-1", payload.AdminId)
	})

	t.Run("regular rejected before any admin joined", func(t *testing.T) {
		svc, _, _ := newTestService(t, testConfig())

		err := svc.Connect(&ConnectParams{ConnId: "reg-1", Username: "bob"})
		assert.ErrorIs(t, err, ErrWaitingForAdmin)
	})

	t.Run("regular admitted after admin joined", func(t *testing.T) {
		svc, connRepo, _ := newTestService(t, testConfig())

		connect(t, svc, "admin-1", "alice", true)
		connect(t, svc, "reg-1", "bob", false)

		members := connRepo.messagesOfType("reg-1", MsgMembersUpdated)
		require.NotEmpty(t, members)

		payload := members[len(members)-1].Payload.(MembersUpdatedPayload)
		assert.Equal(t, 2, payload.Count)
		assert.Equal(t, "admin-1", payload.AdminId)
	})

	t.Run("second admin rejected", func(t *testing.T) {
		svc, _, _ := newTestService(t, testConfig())

		connect(t, svc, "admin-1", "alice", true)

		err := svc.Connect(&ConnectParams{ConnId: "admin-2", Username: "mallory", IsAdmin: true})
		assert.ErrorIs(t, err, ErrAdminSeatTaken)
	})

	t.Run("regular limit enforced", func(t *testing.T) {
		svc, _, _ := newTestService(t, testConfig())

		connect(t, svc, "admin-1", "alice", true)
		connect(t, svc, "reg-1", "bob", false)
		connect(t, svc, "reg-2", "carol", false)

		err := svc.Connect(&ConnectParams{ConnId: "reg-3", Username: "dave"})
		assert.ErrorIs(t, err, ErrMembersLimit)
	})

	t.Run("join announced to the room", func(t *testing.T) {
		svc, connRepo, _ := newTestService(t, testConfig())

		connect(t, svc, "admin-1", "alice", true)
		connect(t, svc, "reg-1", "bob", false)

		msgs := connRepo.messagesOfType("admin-1", MsgServerMessage)
		require.NotEmpty(t, msgs)

		payload := msgs[len(msgs)-1].Payload.(ServerMessagePayload)
		assert.Contains(t, payload.Message, "bob")
		assert.False(t, payload.IsHeartbeat)
	})
}

func TestDisconnect(t *testing.T) {
	t.Run("regular departure frees a slot", func(t *testing.T) {
		svc, connRepo, _ := newTestService(t, testConfig())

		connect(t, svc, "admin-1", "alice", true)
		connect(t, svc, "reg-1", "bob", false)
		connect(t, svc, "reg-2", "carol", false)

		require.NoError(t, svc.Disconnect("reg-1"))

		connect(t, svc, "reg-3", "dave", false)

		members := connRepo.messagesOfType("admin-1", MsgMembersUpdated)
		payload := members[len(members)-1].Payload.(MembersUpdatedPayload)
		assert.Equal(t, 3, payload.Count)
	})

	t.Run("admin departure pauses playback and warns the room", func(t *testing.T) {
		svc, connRepo, clk := newTestService(t, testConfig())

		connect(t, svc, "admin-1", "alice", true)
		connect(t, svc, "reg-1", "bob", false)

		require.NoError(t, svc.Play("admin-1", 10))
		require.NoError(t, svc.Disconnect("admin-1"))

		require.NotEmpty(t, connRepo.messagesOfType("reg-1", MsgAdminLeft))
		assert.False(t, svc.sessionRepo.Player(clk.Now()).IsPlaying)
	})

	t.Run("room torn down after grace period", func(t *testing.T) {
		cfg := testConfig()
		cfg.TeardownGrace = 10 * time.Millisecond
		svc, connRepo, _ := newTestService(t, cfg)

		connect(t, svc, "admin-1", "alice", true)
		connect(t, svc, "reg-1", "bob", false)

		require.NoError(t, svc.Disconnect("admin-1"))

		assert.Eventually(t, func() bool {
			code, ok := connRepo.closeCode("reg-1")
			return ok && code == teardownCloseCode
		}, time.Second, 5*time.Millisecond)

		assert.Empty(t, svc.sessionRepo.MemberIds())
	})

	t.Run("teardown aborted when admin returns", func(t *testing.T) {
		cfg := testConfig()
		cfg.TeardownGrace = 20 * time.Millisecond
		svc, connRepo, _ := newTestService(t, cfg)

		connect(t, svc, "admin-1", "alice", true)
		connect(t, svc, "reg-1", "bob", false)

		require.NoError(t, svc.Disconnect("admin-1"))
		connect(t, svc, "admin-2", "alice", true)

		time.Sleep(100 * time.Millisecond)

		_, closed := connRepo.closeCode("reg-1")
		assert.False(t, closed)
		assert.True(t, svc.sessionRepo.HasMember("reg-1"))
	})
}

func TestSetUsername(t *testing.T) {
	t.Run("truncates long names", func(t *testing.T) {
		svc, connRepo, _ := newTestService(t, testConfig())

		connect(t, svc, "admin-1", "alice", true)

		require.NoError(t, svc.SetUsername("admin-1", "a-very-long-username-that-keeps-going"))

		msgs := connRepo.messagesOfType("admin-1", MsgUsernameSet)
		require.Len(t, msgs, 1)

		payload := msgs[0].Payload.(MemberInfo)
		assert.Equal(t, "a-very-long-username", payload.Username)
	})

	t.Run("blank name ignored", func(t *testing.T) {
		svc, connRepo, _ := newTestService(t, testConfig())

		connect(t, svc, "admin-1", "alice", true)

		require.NoError(t, svc.SetUsername("admin-1", "   "))

		assert.Empty(t, connRepo.messagesOfType("admin-1", MsgUsernameSet))

		member, ok := svc.sessionRepo.Member("admin-1")
		require.True(t, ok)
		assert.Equal(t, "alice", member.Username)
	})

	t.Run("unknown member", func(t *testing.T) {
		svc, _, _ := newTestService(t, testConfig())

		err := svc.SetUsername("ghost", "bob")
		assert.ErrorIs(t, err, ErrMemberNotFound)
	})
}

func TestChat(t *testing.T) {
	svc, connRepo, _ := newTestService(t, testConfig())

	connect(t, svc, "admin-1", "alice", true)
	connect(t, svc, "reg-1", "bob", false)

	require.NoError(t, svc.Chat("reg-1", "  hello room  "))

	for _, connId := range []string{"admin-1", "reg-1"} {
		msgs := connRepo.messagesOfType(connId, MsgChatMessage)
		require.Len(t, msgs, 1, connId)

		payload := msgs[0].Payload.(ChatMessagePayload)
		assert.Equal(t, "bob", payload.Username)
		assert.Equal(t, "hello room", payload.Text)
		assert.False(t, payload.IsAdmin)
	}

	require.NoError(t, svc.Chat("reg-1", "   "))
	assert.Len(t, connRepo.messagesOfType("admin-1", MsgChatMessage), 1)
}
