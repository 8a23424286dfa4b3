// Package stream owns the websocket connection to the upstream signal
// feed. It keeps exactly one logical connection alive, retrying forever
// after a fixed delay. A long-lived dashboard never gives up.
package stream

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// DefaultReconnectDelay matches the upstream dashboard's fixed retry.
const DefaultReconnectDelay = 3 * time.Second

// FrameHandler receives one raw text frame.
type FrameHandler func(frame []byte)

// Config holds stream client settings.
type Config struct {
	Endpoint       string
	ReconnectDelay time.Duration
}

// Client dials the endpoint and pumps frames into the handler. On any
// close or error it flips the connectivity flag, waits the fixed delay
// and dials again. There is no backoff growth and no retry cap.
type Client struct {
	cfg     Config
	handler FrameHandler
	logger  *zap.Logger

	connected  atomic.Bool
	reconnects atomic.Int64

	// session identifies the current dial. Frames read under a
	// superseded session id are dropped, so a stale connection can
	// never deliver events after a newer one opened.
	mu      sync.Mutex
	session string

	onState func(connected bool)
}

// New creates a stream client. The handler must not be nil.
func New(cfg Config, handler FrameHandler, logger *zap.Logger) *Client {
	if cfg.ReconnectDelay <= 0 {
		cfg.ReconnectDelay = DefaultReconnectDelay
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		cfg:     cfg,
		handler: handler,
		logger:  logger,
	}
}

// OnStateChange registers a connectivity callback. Set before Run.
func (c *Client) OnStateChange(fn func(connected bool)) {
	c.onState = fn
}

// Connected reports current connectivity. It drives the UI indicator
// and gates nothing else.
func (c *Client) Connected() bool { return c.connected.Load() }

// Reconnects returns how many times the client has re-dialed after a
// loss.
func (c *Client) Reconnects() int64 { return c.reconnects.Load() }

// Run blocks, maintaining the connection until ctx is cancelled.
func (c *Client) Run(ctx context.Context) {
	first := true
	for {
		if ctx.Err() != nil {
			return
		}
		if !first {
			c.reconnects.Add(1)
		}
		first = false

		sid := c.newSession()
		conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.cfg.Endpoint, nil)
		if err != nil {
			c.logger.Warn("stream dial failed",
				zap.String("endpoint", c.cfg.Endpoint),
				zap.Error(err),
			)
			if !c.sleep(ctx) {
				return
			}
			continue
		}

		c.setConnected(true)
		c.logger.Info("stream connected", zap.String("endpoint", c.cfg.Endpoint))

		c.readLoop(ctx, sid, conn)

		c.setConnected(false)
		_ = conn.Close()
		c.logger.Warn("stream disconnected, retrying",
			zap.Duration("delay", c.cfg.ReconnectDelay),
		)

		if !c.sleep(ctx) {
			return
		}
	}
}

func (c *Client) readLoop(ctx context.Context, sid string, conn *websocket.Conn) {
	// Unblock the read when the context ends.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-done:
		}
	}()

	for {
		_, frame, err := conn.ReadMessage()
		if err != nil {
			return
		}
		if !c.currentSession(sid) {
			return
		}
		c.handler(frame)
	}
}

func (c *Client) newSession() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.session = uuid.NewString()
	return c.session
}

func (c *Client) currentSession(sid string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session == sid
}

func (c *Client) setConnected(up bool) {
	c.connected.Store(up)
	if c.onState != nil {
		c.onState(up)
	}
}

// sleep waits the reconnect delay; false means the context ended.
func (c *Client) sleep(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(c.cfg.ReconnectDelay):
		return true
	}
}
