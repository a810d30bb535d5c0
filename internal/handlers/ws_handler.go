package handlers

import (
	"log"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"clinic-backoffice-api/internal/router"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 5 * time.Second

	// The read deadline; refreshed on every message and pong. Sized to span
	// three liveness probe intervals.
	readWait = 90 * time.Second

	maxFrameSize = 4096
)

// wsConn implements registry.Conn by wrapping a websocket connection.
type wsConn struct {
	id        string
	conn      *websocket.Conn
	writeMu   sync.Mutex
	alive     atomic.Bool
	closeOnce sync.Once
}

func newWSConn(conn *websocket.Conn) *wsConn {
	c := &wsConn{id: uuid.NewString(), conn: conn}
	c.alive.Store(true)
	return c
}

func (c *wsConn) ID() string { return c.id }

func (c *wsConn) Send(message []byte) bool {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
		return false
	}
	return true
}

// Probe sends a websocket ping control frame; the peer's pong resets the
// alive flag via the pong handler.
func (c *wsConn) Probe() bool {
	err := c.conn.WriteControl(websocket.PingMessage, []byte("probe"), time.Now().Add(writeWait))
	return err == nil
}

func (c *wsConn) Alive() bool         { return c.alive.Load() }
func (c *wsConn) SetAlive(alive bool) { c.alive.Store(alive) }

func (c *wsConn) Close() {
	c.closeOnce.Do(func() {
		_ = c.conn.Close()
	})
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// CORS is already handled at Gin level; allow upgrade from any origin here
		return true
	},
}

// WebSocket upgrades the connection and hands every received frame to the
// message router. The socket identity comes from the client's register
// frame, not from the HTTP layer.
// GET /api/ws
func WebSocket(rt *router.Router) gin.HandlerFunc {
	return func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Println("websocket upgrade error:", err)
			return
		}

		wc := newWSConn(conn)
		sess := rt.NewSession(wc)
		defer sess.Close()

		conn.SetReadLimit(maxFrameSize)
		conn.SetReadDeadline(time.Now().Add(readWait))
		conn.SetPongHandler(func(string) error {
			wc.SetAlive(true)
			conn.SetReadDeadline(time.Now().Add(readWait))
			return nil
		})

		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				// Normal close or transport error; registry cleanup happens
				// in the deferred session close.
				return
			}
			conn.SetReadDeadline(time.Now().Add(readWait))
			if !sess.HandleMessage(data) {
				return
			}
		}
	}
}
