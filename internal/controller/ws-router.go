package controller

import (
	"github.com/syncroom/server/pkg/wsrouter"
)

func (c controller) getWSRouter() *wsrouter.WSRouter {
	mux := wsrouter.New()

	mux.Use(c.wsLoggingMw)

	// player
	wsrouter.Handle(mux, "VIDEO_PLAY", c.handlePlay)
	wsrouter.Handle(mux, "VIDEO_PAUSE", c.handlePause)
	wsrouter.Handle(mux, "VIDEO_SEEK", c.handleSeek)
	wsrouter.Handle(mux, "CHANGE_VIDEO", c.handleChangeVideo)
	wsrouter.Handle(mux, "PLAY_NEXT", c.handlePlayNext)
	wsrouter.Handle(mux, "REQUEST_SYNC", c.handleRequestSync)

	// queue
	wsrouter.Handle(mux, "ADD_TO_QUEUE", c.handleAddToQueue)
	wsrouter.Handle(mux, "REMOVE_FROM_QUEUE", c.handleRemoveFromQueue)
	wsrouter.Handle(mux, "REORDER_QUEUE", c.handleReorderQueue)

	// member
	wsrouter.Handle(mux, "SET_USERNAME", c.handleSetUsername)
	wsrouter.Handle(mux, "CHAT_MESSAGE", c.handleChat)
	wsrouter.Handle(mux, "PING", c.handlePing)

	return mux
}
