package handlers

import (
	"net/http"
	"time"

	"air_purifier/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	maxMsgSize = 1 << 12 // 4 KB

	wsTypeState = "state"
	wsTypeError = "error"
)

type wsEnvelope struct {
	Type  string      `json:"type"`
	Data  interface{} `json:"data,omitempty"`
	Error string      `json:"error,omitempty"`
}

// Controllers on the LAN connect from arbitrary origins.
var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// stateFeed buffers the newest published snapshot for one connection.
// push never blocks the notifier: an unsent snapshot is replaced.
type stateFeed struct {
	ch chan models.PurifierState
}

func newStateFeed() *stateFeed {
	return &stateFeed{ch: make(chan models.PurifierState, 1)}
}

func (f *stateFeed) push(st models.PurifierState) {
	for {
		select {
		case f.ch <- st:
			return
		default:
		}
		select {
		case <-f.ch:
		default:
		}
	}
}

// @Summary      State stream
// @Description  WebSocket that sends {"type":"state","data":<snapshot>} on connect and again whenever a characteristic changes, from any controller or from the watcher.
// @Tags         purifier
// @Router       /ws [get]
func (h *Handler) wsConnect(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		if h.log != nil {
			h.log.Errorw("ws_upgrade_failed", "err", err)
		}
		return
	}
	defer func() { _ = conn.Close() }()

	conn.SetReadLimit(maxMsgSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	done := make(chan struct{})
	go h.drainControlFrames(conn, done)

	// subscribe before the first read so no change falls in between
	feed := newStateFeed()
	unsubscribe := h.services.Watcher.Subscribe(feed.push)
	defer unsubscribe()

	ctx := c.Request.Context()
	last, err := h.services.Monitoring.GetState(ctx)
	if err != nil {
		if h.log != nil {
			h.log.Errorw("ws_get_state_failed", "err", err)
		}
		_ = writeEnvelope(conn, wsEnvelope{Type: wsTypeError, Error: "state unavailable"})
		return
	}
	if err := writeEnvelope(conn, wsEnvelope{Type: wsTypeState, Data: last}); err != nil {
		h.wsWriteFailed(err)
		return
	}

	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()

	for {
		select {
		case <-done:
			return
		case <-ctx.Done():
			return
		case <-ping.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				h.wsWriteFailed(err)
				return
			}
		case st := <-feed.ch:
			if st.SameCharacteristics(last) {
				continue
			}
			if err := writeEnvelope(conn, wsEnvelope{Type: wsTypeState, Data: st}); err != nil {
				h.wsWriteFailed(err)
				return
			}
			last = st
		}
	}
}

// drainControlFrames reads until the peer goes away so pongs and close
// frames are processed.
func (h *Handler) drainControlFrames(conn *websocket.Conn, done chan<- struct{}) {
	defer close(done)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if h.log != nil {
				h.log.Debugw("ws_read_closed", "err", err)
			}
			return
		}
	}
}

func (h *Handler) wsWriteFailed(err error) {
	if h.log != nil {
		h.log.Infow("ws_write_failed", "err", err)
	}
}

func writeEnvelope(conn *websocket.Conn, env wsEnvelope) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(env)
}
