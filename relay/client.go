package relay

import (
	"encoding/json"
	"errors"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/yeremiapane/hotel-ops/models"
	"github.com/yeremiapane/hotel-ops/utils"
)

// ErrLinkDown is returned by Send when no connection is established.
var ErrLinkDown = errors.New("relay link is down")

const (
	initialBackoff = 1 * time.Second
	maxBackoff     = 5 * time.Second
	writeTimeout   = 5 * time.Second
)

// Handler receives every envelope delivered on the channel.
type Handler func(models.Envelope)

// Client owns the single logical link to the relay. It reconnects
// forever with bounded backoff; a permanently unreachable relay keeps
// the device in local-only mode, it never errors out. On every
// successful (re)connect the registered connect hooks run in order
// before the read pump starts.
type Client struct {
	url      string
	channel  string
	deviceID string

	mu   sync.Mutex
	conn *websocket.Conn
	up   bool

	nudge chan struct{}
	stop  chan struct{}

	hookMu     sync.Mutex
	onConnect  []func()
	onState    []func(bool)
	onEnvelope Handler
}

func NewClient(relayURL, channel, deviceID string) *Client {
	return &Client{
		url:      relayURL,
		channel:  channel,
		deviceID: deviceID,
		nudge:    make(chan struct{}, 1),
		stop:     make(chan struct{}),
	}
}

// OnConnect registers a hook fired after every successful dial, in
// registration order. The drainer must be registered before the
// full-sync request.
func (c *Client) OnConnect(fn func()) {
	c.hookMu.Lock()
	defer c.hookMu.Unlock()
	c.onConnect = append(c.onConnect, fn)
}

// OnStateChange registers a link-state listener. Listeners run on their
// own goroutine so a slow listener cannot stall the run loop.
func (c *Client) OnStateChange(fn func(bool)) {
	c.hookMu.Lock()
	defer c.hookMu.Unlock()
	c.onState = append(c.onState, fn)
}

func (c *Client) OnEnvelope(fn Handler) {
	c.hookMu.Lock()
	defer c.hookMu.Unlock()
	c.onEnvelope = fn
}

func (c *Client) Start() {
	go c.run()
}

func (c *Client) Stop() {
	close(c.stop)
	c.mu.Lock()
	if c.conn != nil {
		c.conn.Close()
	}
	c.mu.Unlock()
}

func (c *Client) IsUp() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.up
}

// Nudge asks the run loop to retry immediately instead of waiting out
// the current backoff. The daemon wires OS network-online, visibility
// and focus signals here.
func (c *Client) Nudge() {
	select {
	case c.nudge <- struct{}{}:
	default:
	}
}

// Send writes one envelope to the relay. The caller handles failure by
// queueing; Send itself never retries.
func (c *Client) Send(env models.Envelope) error {
	raw, err := json.Marshal(env)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return ErrLinkDown
	}
	c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return c.conn.WriteMessage(websocket.TextMessage, raw)
}

func (c *Client) run() {
	backoff := initialBackoff
	for {
		select {
		case <-c.stop:
			return
		default:
		}

		conn, err := c.dial()
		if err != nil {
			utils.ErrorLogger.Printf("relay dial failed: %v (retry in %v)", err, backoff)
			select {
			case <-c.stop:
				return
			case <-c.nudge:
			case <-time.After(backoff):
			}
			backoff *= 2
			if backoff > maxBackoff {
				backoff = maxBackoff
			}
			continue
		}

		backoff = initialBackoff
		utils.InfoLogger.Printf("relay connected: %s channel=%s", c.url, c.channel)

		c.setLink(conn, true)
		c.fireConnectHooks()
		c.readPump(conn)
		c.setLink(nil, false)
		utils.InfoLogger.Printf("relay disconnected")
	}
}

func (c *Client) dial() (*websocket.Conn, error) {
	u, err := url.Parse(c.url)
	if err != nil {
		return nil, err
	}
	q := u.Query()
	q.Set("channel", c.channel)
	q.Set("device", c.deviceID)
	u.RawQuery = q.Encode()

	dialer := websocket.Dialer{HandshakeTimeout: 5 * time.Second}
	conn, _, err := dialer.Dial(u.String(), nil)
	return conn, err
}

func (c *Client) setLink(conn *websocket.Conn, up bool) {
	c.mu.Lock()
	c.conn = conn
	c.up = up
	c.mu.Unlock()

	c.hookMu.Lock()
	listeners := make([]func(bool), len(c.onState))
	copy(listeners, c.onState)
	c.hookMu.Unlock()
	for _, fn := range listeners {
		go fn(up)
	}
}

func (c *Client) fireConnectHooks() {
	c.hookMu.Lock()
	hooks := make([]func(), len(c.onConnect))
	copy(hooks, c.onConnect)
	c.hookMu.Unlock()
	for _, fn := range hooks {
		fn()
	}
}

func (c *Client) readPump(conn *websocket.Conn) {
	defer conn.Close()
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var env models.Envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			utils.ErrorLogger.Printf("relay message decode failed: %v", err)
			continue
		}
		c.hookMu.Lock()
		handler := c.onEnvelope
		c.hookMu.Unlock()
		if handler != nil {
			handler(env)
		}
	}
}
