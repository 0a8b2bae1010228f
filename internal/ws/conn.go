package ws

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"nhooyr.io/websocket"
)

var (
	ErrConnClosed = errors.New("ws: connection closed")
	ErrConnSlow   = errors.New("ws: send buffer full")
)

// Client is anything the hub can queue a frame to. Send must not block.
type Client interface {
	Send(b []byte) error
}

type Conn struct {
	ws     *websocket.Conn
	out    chan []byte
	roomID string

	writeTimeout time.Duration
	pingEvery    time.Duration

	closeOnce sync.Once
	done      chan struct{}
}

// Accept upgrades HTTP to websocket (allow all origins)
func Accept(w http.ResponseWriter, r *http.Request) (*websocket.Conn, error) {
	return websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns:  []string{"*"},
		CompressionMode: websocket.CompressionDisabled,
	})
}

// NewConn wraps a WS connection subscribed to one room
func NewConn(ws *websocket.Conn, roomID string, opts ConnOptions) *Conn {
	return &Conn{
		ws:           ws,
		roomID:       roomID,
		out:          make(chan []byte, opts.SendBuffer),
		writeTimeout: opts.WriteTimeout,
		pingEvery:    opts.PingInterval,
		done:         make(chan struct{}),
	}
}

// Send queues b without blocking. A full queue drops the frame for this
// connection only.
func (c *Conn) Send(b []byte) error {
	select {
	case <-c.done:
		return ErrConnClosed
	default:
	}
	select {
	case c.out <- b:
		return nil
	default:
		return ErrConnSlow
	}
}

// Read blocks until it receives a text/binary message
// Returns false if connection is closed
func (c *Conn) Read(ctx context.Context) ([]byte, bool) {
	for {
		typ, data, err := c.ws.Read(ctx)
		if err != nil {
			return nil, false
		}
		if typ == websocket.MessageText || typ == websocket.MessageBinary {
			return data, true
		}
	}
}

// WriteLoop drains the send queue in order and pings periodically.
// Each write is bounded by the write timeout; a failed write ends the
// loop and closes the connection. Exits when ctx is cancelled.
func (c *Conn) WriteLoop(ctx context.Context) {
	t := time.NewTicker(c.pingEvery)
	defer t.Stop()

	for {
		select {
		case b := <-c.out:
			wctx, cancel := context.WithTimeout(ctx, c.writeTimeout)
			err := c.ws.Write(wctx, websocket.MessageText, b)
			cancel()
			if err != nil {
				_ = c.Close()
				return
			}
		case <-t.C:
			pctx, cancel := context.WithTimeout(ctx, c.writeTimeout)
			err := c.ws.Ping(pctx)
			cancel()
			if err != nil {
				_ = c.Close()
				return
			}
		case <-c.done:
			return
		case <-ctx.Done():
			return
		}
	}
}

// Close closes the WS connection normally; later calls are no-ops
func (c *Conn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.done)
		err = c.ws.Close(websocket.StatusNormalClosure, "bye")
	})
	return err
}
