package httpinterface

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
	"github.com/swapdex/swapd/internal/core/domain"
	"github.com/swapdex/swapd/internal/core/ports"
	"github.com/thanhpk/randstr"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBufferSize = 256
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// connection is the relay channel of a party connected through websocket.
// Events are queued in a buffered channel and written by a single goroutine,
// so that Send never blocks and preserves the enqueue order.
type connection struct {
	id   string
	uid  string
	conn *websocket.Conn
	send chan ports.RelayEvent

	lock   sync.Mutex
	closed bool
	quit   chan struct{}
}

func newConnection(uid string, conn *websocket.Conn) *connection {
	return &connection{
		id:   randstr.Hex(16),
		uid:  uid,
		conn: conn,
		send: make(chan ports.RelayEvent, sendBufferSize),
		quit: make(chan struct{}),
	}
}

func (c *connection) Id() string {
	return c.id
}

func (c *connection) Send(event ports.RelayEvent) error {
	c.lock.Lock()
	defer c.lock.Unlock()

	if c.closed {
		return domain.ErrPartyNotConnected
	}
	select {
	case c.send <- event:
		return nil
	default:
		return domain.ErrPartyChannelFull
	}
}

func (c *connection) Close() {
	c.lock.Lock()
	defer c.lock.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	close(c.quit)
}

// writePump forwards the queued events to the peer and keeps the connection
// alive with pings. It owns the underlying connection and closes it on exit.
func (c *connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case event := <-c.send:
			//nolint
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(event); err != nil {
				log.WithError(err).Debugf("http: failed to write to connection %s", c.id)
				c.Close()
				return
			}
		case <-ticker.C:
			//nolint
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.Close()
				return
			}
		case <-c.quit:
			//nolint
			c.conn.WriteControl(
				websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(writeWait),
			)
			return
		}
	}
}

// readPump discards whatever the peer sends and detects when it goes away.
func (c *connection) readPump() {
	defer c.Close()

	c.conn.SetReadLimit(maxMessageSize)
	//nolint
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(
				err, websocket.CloseNormalClosure, websocket.CloseGoingAway,
			) {
				log.WithError(err).Debugf("http: connection %s dropped", c.id)
			}
			return
		}
	}
}
