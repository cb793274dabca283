// Package wsconn provides a WebSocket client with keepalive and reconnection.
package wsconn

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/coder/websocket"

	"github.com/fd1az/arbitrage-scanner/internal/apperror"
)

// State represents the connection state.
type State string

const (
	StateDisconnected State = "disconnected"
	StateConnecting   State = "connecting"
	StateConnected    State = "connected"
	StateReconnecting State = "reconnecting"
	StateClosed       State = "closed"
)

// Config holds WebSocket client configuration.
type Config struct {
	URL            string
	Name           string
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	MaxReconnects  int // 0 = infinite
	AutoReconnect  bool
	PingInterval   time.Duration // 0 disables pings
	PongTimeout    time.Duration
	ReadTimeout    time.Duration // 0 waits forever
	DialTimeout    time.Duration
	MaxMessageSize int64
}

// DefaultConfig returns sensible defaults.
func DefaultConfig(url, name string) Config {
	return Config{
		URL:            url,
		Name:           name,
		InitialBackoff: 1 * time.Second,
		MaxBackoff:     30 * time.Second,
		MaxReconnects:  0,
		AutoReconnect:  true,
		PingInterval:   30 * time.Second,
		PongTimeout:    10 * time.Second,
		ReadTimeout:    60 * time.Second,
		DialTimeout:    10 * time.Second,
		MaxMessageSize: 4 << 20,
	}
}

// MessageHandler receives every inbound message.
type MessageHandler func(ctx context.Context, msg []byte)

// StateHandler observes state transitions. err is set when a transition was caused by a failure.
type StateHandler func(state State, err error)

// Client is a read-only WebSocket stream consumer. Close is safe for concurrent use.
type Client struct {
	config Config

	ctx    context.Context
	cancel context.CancelFunc

	mu   sync.RWMutex
	conn *websocket.Conn
	gen  uint64

	stateMu       sync.RWMutex
	state         State
	onMessage     MessageHandler
	onStateChange StateHandler

	closeOnce sync.Once
	wg        sync.WaitGroup
}

// New creates a client. It does not dial.
func New(config Config) (*Client, error) {
	if config.URL == "" {
		return nil, apperror.New(apperror.CodeConfigurationError, apperror.WithContext("websocket url is required"))
	}
	if config.InitialBackoff <= 0 {
		config.InitialBackoff = time.Second
	}
	if config.MaxBackoff < config.InitialBackoff {
		config.MaxBackoff = config.InitialBackoff
	}
	if config.DialTimeout <= 0 {
		config.DialTimeout = 10 * time.Second
	}
	if config.PongTimeout <= 0 {
		config.PongTimeout = 10 * time.Second
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Client{
		config: config,
		ctx:    ctx,
		cancel: cancel,
		state:  StateDisconnected,
	}, nil
}

// OnMessage registers the inbound message handler. Call before Connect.
func (c *Client) OnMessage(h MessageHandler) {
	c.stateMu.Lock()
	c.onMessage = h
	c.stateMu.Unlock()
}

// OnStateChange registers a state observer. Call before Connect.
func (c *Client) OnStateChange(h StateHandler) {
	c.stateMu.Lock()
	c.onStateChange = h
	c.stateMu.Unlock()
}

// Connect dials once.
func (c *Client) Connect(ctx context.Context) error {
	if c.State() == StateClosed {
		return apperror.New(apperror.CodeWebSocketClosed, apperror.WithContext(c.config.Name))
	}

	c.setState(StateConnecting, nil)
	if err := c.dial(ctx); err != nil {
		c.setState(StateDisconnected, err)
		return err
	}
	return nil
}

// ConnectWithRetry dials with exponential backoff until it succeeds,
// MaxReconnects attempts are spent, or ctx is done.
func (c *Client) ConnectWithRetry(ctx context.Context) error {
	backoff := c.config.InitialBackoff
	for attempt := 1; ; attempt++ {
		err := c.Connect(ctx)
		if err == nil {
			return nil
		}
		if apperror.GetCode(err) == apperror.CodeWebSocketClosed {
			return err
		}
		if c.config.MaxReconnects > 0 && attempt >= c.config.MaxReconnects {
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-c.ctx.Done():
			return apperror.New(apperror.CodeWebSocketClosed, apperror.WithContext(c.config.Name))
		case <-time.After(backoff):
		}
		backoff = nextBackoff(backoff, c.config.MaxBackoff)
	}
}

func (c *Client) dial(ctx context.Context) error {
	conn, _, err := websocket.Dial(ctx, c.config.URL, nil)
	if err != nil {
		return apperror.New(apperror.CodeWebSocketConnectionError,
			apperror.WithCause(err), apperror.WithContext(c.config.Name))
	}
	if c.config.MaxMessageSize > 0 {
		conn.SetReadLimit(c.config.MaxMessageSize)
	}

	c.mu.Lock()
	if c.ctx.Err() != nil {
		c.mu.Unlock()
		_ = conn.Close(websocket.StatusNormalClosure, "")
		return apperror.New(apperror.CodeWebSocketClosed, apperror.WithContext(c.config.Name))
	}
	c.conn = conn
	c.gen++
	gen := c.gen
	c.mu.Unlock()

	c.setState(StateConnected, nil)

	c.wg.Add(1)
	go c.readLoop(conn, gen)
	if c.config.PingInterval > 0 {
		c.wg.Add(1)
		go c.pingLoop(conn, gen)
	}
	return nil
}

func (c *Client) readLoop(conn *websocket.Conn, gen uint64) {
	defer c.wg.Done()

	for {
		ctx := c.ctx
		var cancel context.CancelFunc = func() {}
		if c.config.ReadTimeout > 0 {
			ctx, cancel = context.WithTimeout(c.ctx, c.config.ReadTimeout)
		}
		_, data, err := conn.Read(ctx)
		cancel()

		if err != nil {
			c.handleDrop(conn, gen, err)
			return
		}

		c.stateMu.RLock()
		h := c.onMessage
		c.stateMu.RUnlock()
		if h != nil {
			h(c.ctx, data)
		}
	}
}

func (c *Client) pingLoop(conn *websocket.Conn, gen uint64) {
	defer c.wg.Done()

	ticker := time.NewTicker(c.config.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.ctx.Done():
			return
		case <-ticker.C:
			if !c.current(gen) {
				return
			}
			ctx, cancel := context.WithTimeout(c.ctx, c.config.PongTimeout)
			err := conn.Ping(ctx)
			cancel()
			if err != nil {
				// Closing the conn unblocks the read loop, which handles the drop.
				_ = conn.Close(websocket.StatusGoingAway, "ping timeout")
				return
			}
		}
	}
}

func (c *Client) current(gen uint64) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.gen == gen && c.conn != nil
}

// handleDrop runs once per connection generation.
func (c *Client) handleDrop(conn *websocket.Conn, gen uint64, cause error) {
	c.mu.Lock()
	if c.gen != gen {
		c.mu.Unlock()
		return
	}
	c.conn = nil
	c.mu.Unlock()

	_ = conn.CloseNow()

	if c.ctx.Err() != nil {
		return
	}

	err := apperror.New(apperror.CodeWebSocketConnectionError,
		apperror.WithCause(cause), apperror.WithContext(c.config.Name))

	if !c.config.AutoReconnect {
		c.setState(StateDisconnected, err)
		return
	}

	c.setState(StateReconnecting, err)
	c.wg.Add(1)
	go c.reconnect()
}

func (c *Client) reconnect() {
	defer c.wg.Done()

	backoff := c.config.InitialBackoff
	for attempt := 1; ; attempt++ {
		select {
		case <-c.ctx.Done():
			return
		case <-time.After(backoff):
		}

		ctx, cancel := context.WithTimeout(c.ctx, c.config.DialTimeout)
		err := c.dial(ctx)
		cancel()
		if err == nil {
			return
		}

		if c.config.MaxReconnects > 0 && attempt >= c.config.MaxReconnects {
			if c.ctx.Err() == nil {
				c.setState(StateDisconnected, err)
			}
			return
		}
		backoff = nextBackoff(backoff, c.config.MaxBackoff)
	}
}

func nextBackoff(cur, max time.Duration) time.Duration {
	next := cur * 2
	if next > max {
		return max
	}
	return next
}

// State returns the current connection state.
func (c *Client) State() State {
	c.stateMu.RLock()
	defer c.stateMu.RUnlock()
	return c.state
}

// IsConnected reports whether the client holds a live connection.
func (c *Client) IsConnected() bool {
	return c.State() == StateConnected
}

// Close closes the connection and stops reconnecting. It is idempotent.
// It must not be called from a message or state handler.
func (c *Client) Close() error {
	c.closeOnce.Do(func() {
		c.cancel()

		c.mu.Lock()
		conn := c.conn
		c.conn = nil
		c.gen++
		c.mu.Unlock()

		if conn != nil {
			if err := conn.Close(websocket.StatusNormalClosure, "client closing"); err != nil {
				var ce websocket.CloseError
				if !errors.As(err, &ce) {
					_ = conn.CloseNow()
				}
			}
		}

		c.setState(StateClosed, nil)
		c.wg.Wait()
	})
	return nil
}

func (c *Client) setState(state State, err error) {
	c.stateMu.Lock()
	if c.state == StateClosed {
		c.stateMu.Unlock()
		return
	}
	if c.state == state && err == nil {
		c.stateMu.Unlock()
		return
	}
	c.state = state
	h := c.onStateChange
	c.stateMu.Unlock()

	if h != nil {
		h(state, err)
	}
}
