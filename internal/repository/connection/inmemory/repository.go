package inmemory

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/syncroom/server/internal/repository/connection"
)

const closeWriteTimeout = 5 * time.Second

type repo struct {
	mu       sync.RWMutex
	connList map[*websocket.Conn]string
	idList   map[string]*websocket.Conn
}

func NewRepo() *repo {
	return &repo{
		connList: make(map[*websocket.Conn]string),
		idList:   make(map[string]*websocket.Conn),
	}
}

func (r *repo) Add(conn *websocket.Conn, connId string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.connList[conn] != "" || r.idList[connId] != nil {
		return connection.ErrAlreadyExists
	}

	r.connList[conn] = connId
	r.idList[connId] = conn

	return nil
}

func (r *repo) Remove(connId string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	conn, ok := r.idList[connId]
	if !ok {
		return connection.ErrNotFound
	}

	delete(r.connList, conn)
	delete(r.idList, connId)

	return nil
}

func (r *repo) Send(connId string, v any) error {
	r.mu.RLock()
	conn, ok := r.idList[connId]
	r.mu.RUnlock()

	if !ok {
		return connection.ErrNotFound
	}

	return conn.WriteJSON(v)
}

// Close writes a close control message and closes the underlying connection.
// The id stays registered until Remove, so the read loop's disconnect path
// still resolves it.
func (r *repo) Close(connId string, code int, reason string) error {
	r.mu.RLock()
	conn, ok := r.idList[connId]
	r.mu.RUnlock()

	if !ok {
		return connection.ErrNotFound
	}

	conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason), time.Now().Add(closeWriteTimeout))

	return conn.Close()
}
