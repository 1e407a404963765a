package room

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func queueVideoIds(t *testing.T, connRepo *fakeConnRepo, connId string) []string {
	t.Helper()

	msgs := connRepo.messagesOfType(connId, MsgQueueUpdated)
	require.NotEmpty(t, msgs)

	queue := msgs[len(msgs)-1].Payload.(QueueUpdatedPayload).Queue
	ids := make([]string, 0, len(queue))
	for _, item := range queue {
		ids = append(ids, item.VideoId)
	}

	return ids
}

func TestAddToQueue(t *testing.T) {
	t.Run("broadcasts the updated queue", func(t *testing.T) {
		svc, connRepo, _ := newTestService(t, testConfig())

		connect(t, svc, "admin-1", "alice", true)
		connect(t, svc, "reg-1", "bob", false)

		require.NoError(t, svc.AddToQueue(&AddToQueueParams{
			ConnId:  "reg-1",
			VideoId: "9bZkp7q19f0",
			Title:   "  Some Video  ",
		}))

		msgs := connRepo.messagesOfType("admin-1", MsgQueueUpdated)
		require.Len(t, msgs, 1)

		queue := msgs[0].Payload.(QueueUpdatedPayload).Queue
		require.Len(t, queue, 1)
		assert.Equal(t, "9bZkp7q19f0", queue[0].VideoId)
		assert.Equal(t, "Some Video", queue[0].Title)
		assert.Equal(t, "bob", queue[0].AddedBy)
		assert.Equal(t, "https://img.youtube.com/vi/9bZkp7q19f0/mqdefault.jpg", queue[0].Thumbnail)
	})

	t.Run("missing title falls back to the video id", func(t *testing.T) {
		svc, connRepo, _ := newTestService(t, testConfig())

		connect(t, svc, "admin-1", "alice", true)

		require.NoError(t, svc.AddToQueue(&AddToQueueParams{ConnId: "admin-1", VideoId: "abc123"}))

		msgs := connRepo.messagesOfType("admin-1", MsgQueueUpdated)
		queue := msgs[0].Payload.(QueueUpdatedPayload).Queue
		assert.Equal(t, "abc123", queue[0].Title)
	})

	t.Run("queue limit enforced", func(t *testing.T) {
		cfg := testConfig()
		cfg.QueueLimit = 2
		svc, _, _ := newTestService(t, cfg)

		connect(t, svc, "admin-1", "alice", true)

		require.NoError(t, svc.AddToQueue(&AddToQueueParams{ConnId: "admin-1", VideoId: "one"}))
		require.NoError(t, svc.AddToQueue(&AddToQueueParams{ConnId: "admin-1", VideoId: "two"}))

		err := svc.AddToQueue(&AddToQueueParams{ConnId: "admin-1", VideoId: "three"})
		assert.ErrorIs(t, err, ErrQueueLimitReached)
	})
}

func TestRemoveFromQueue(t *testing.T) {
	svc, connRepo, _ := newTestService(t, testConfig())

	connect(t, svc, "admin-1", "alice", true)

	for _, id := range []string{"one", "two", "three"} {
		require.NoError(t, svc.AddToQueue(&AddToQueueParams{ConnId: "admin-1", VideoId: id}))
	}

	require.NoError(t, svc.RemoveFromQueue("admin-1", 1))
	assert.Equal(t, []string{"one", "three"}, queueVideoIds(t, connRepo, "admin-1"))

	// Out-of-range indexes are ignored without a broadcast.
	before := len(connRepo.messagesOfType("admin-1", MsgQueueUpdated))
	require.NoError(t, svc.RemoveFromQueue("admin-1", 5))
	require.NoError(t, svc.RemoveFromQueue("admin-1", -1))
	assert.Len(t, connRepo.messagesOfType("admin-1", MsgQueueUpdated), before)
}

func TestReorderQueue(t *testing.T) {
	svc, connRepo, _ := newTestService(t, testConfig())

	connect(t, svc, "admin-1", "alice", true)

	for _, id := range []string{"one", "two", "three", "four"} {
		require.NoError(t, svc.AddToQueue(&AddToQueueParams{ConnId: "admin-1", VideoId: id}))
	}

	require.NoError(t, svc.ReorderQueue("admin-1", 0, 2))
	assert.Equal(t, []string{"two", "three", "one", "four"}, queueVideoIds(t, connRepo, "admin-1"))

	require.NoError(t, svc.ReorderQueue("admin-1", 3, 0))
	assert.Equal(t, []string{"four", "two", "three", "one"}, queueVideoIds(t, connRepo, "admin-1"))

	before := len(connRepo.messagesOfType("admin-1", MsgQueueUpdated))
	require.NoError(t, svc.ReorderQueue("admin-1", 1, 1))
	require.NoError(t, svc.ReorderQueue("admin-1", 0, 9))
	assert.Len(t, connRepo.messagesOfType("admin-1", MsgQueueUpdated), before)
}
