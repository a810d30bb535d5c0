// Package connector is the client-side counterpart of the waiting-room
// coordinator. It performs the registration handshake, keeps a typed
// subscription registry for inbound frames, exposes the outbound action API
// and owns reconnection with a fixed backoff.
package connector

import (
	"errors"
	"log"
	"sync"
	"time"

	"clinic-backoffice-api/pkg/protocol"

	"github.com/gorilla/websocket"
)

// State is the connector's connection state.
type State int32

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
)

const (
	// DefaultRetryDelay is the fixed pause between reconnect attempts.
	DefaultRetryDelay = 3 * time.Second

	// DefaultMaxRetries bounds consecutive failed attempts before the
	// connector gives up until Connect is called again.
	DefaultMaxRetries = 5

	writeWait = 5 * time.Second
)

// ErrClosed is returned by Connect after an explicit Close.
var ErrClosed = errors.New("connector: closed")

// Identity is the registration identity sent in the first frame.
type Identity struct {
	Role         string
	EmployeeID   int
	EmployeeName string
}

// Handler receives one inbound frame of a subscribed type.
type Handler func(frame protocol.Frame)

type subscription struct {
	id uint64
	fn Handler
}

// Options tunes the connector; zero values fall back to the defaults.
type Options struct {
	RetryDelay time.Duration
	MaxRetries int
	Dialer     *websocket.Dialer
}

// Connector owns exactly one logical connection at a time. Reconnect
// attempts are serialized; subscription delivery is synchronous with frame
// receipt.
type Connector struct {
	url        string
	identity   Identity
	dialer     *websocket.Dialer
	retryDelay time.Duration
	maxRetries int

	mu         sync.Mutex
	writeMu    sync.Mutex
	state      State
	conn       *websocket.Conn
	subs       map[string][]subscription
	nextSubID  uint64
	attempts   int
	retryTimer *time.Timer
	closed     bool
}

// New creates a connector for the given websocket URL and identity. It does
// not connect until Connect is called.
func New(url string, identity Identity, opts Options) *Connector {
	c := &Connector{
		url:        url,
		identity:   identity,
		dialer:     opts.Dialer,
		retryDelay: opts.RetryDelay,
		maxRetries: opts.MaxRetries,
		subs:       make(map[string][]subscription),
	}
	if c.dialer == nil {
		c.dialer = websocket.DefaultDialer
	}
	if c.retryDelay <= 0 {
		c.retryDelay = DefaultRetryDelay
	}
	if c.maxRetries <= 0 {
		c.maxRetries = DefaultMaxRetries
	}
	return c
}

// State returns the current connection state.
func (c *Connector) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Connect starts the connection attempt. The first dial happens
// synchronously; on failure the error is returned and retries continue in
// the background until the retry budget is exhausted. Calling Connect while
// already connecting or connected is a no-op.
func (c *Connector) Connect() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if c.state != StateDisconnected {
		c.mu.Unlock()
		return nil
	}
	c.state = StateConnecting
	c.attempts = 0
	c.mu.Unlock()

	return c.dial()
}

func (c *Connector) dial() error {
	conn, resp, err := c.dialer.Dial(c.url, nil)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		if err == nil {
			conn.Close()
		}
		return ErrClosed
	}

	if err != nil {
		c.attempts++
		if c.attempts >= c.maxRetries {
			// Retry budget spent: stay down until Connect is called again.
			c.state = StateDisconnected
			c.mu.Unlock()
			log.Printf("connector: giving up after %d attempts: %v", c.maxRetries, err)
			return err
		}
		c.retryTimer = time.AfterFunc(c.retryDelay, func() { _ = c.dial() })
		c.mu.Unlock()
		return err
	}

	c.conn = conn
	c.state = StateConnected
	c.attempts = 0
	c.mu.Unlock()

	c.write(protocol.TypeRegister, protocol.RegisterPayload{
		Role:         c.identity.Role,
		EmployeeID:   c.identity.EmployeeID,
		EmployeeName: c.identity.EmployeeName,
	})

	go c.readLoop(conn)
	return nil
}

// readLoop delivers inbound frames to subscribers until the connection
// breaks, then schedules a reconnect.
func (c *Connector) readLoop(conn *websocket.Conn) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			break
		}
		frame, err := protocol.Decode(data)
		if err != nil {
			log.Printf("connector: dropping malformed frame: %v", err)
			continue
		}
		c.dispatch(frame)
	}
	conn.Close()

	c.mu.Lock()
	if c.closed || c.conn != conn {
		c.mu.Unlock()
		return
	}
	c.conn = nil
	c.state = StateConnecting
	c.attempts = 0
	c.retryTimer = time.AfterFunc(c.retryDelay, func() { _ = c.dial() })
	c.mu.Unlock()
}

func (c *Connector) dispatch(frame protocol.Frame) {
	c.mu.Lock()
	subs := make([]subscription, len(c.subs[frame.Type]))
	copy(subs, c.subs[frame.Type])
	c.mu.Unlock()

	// Callbacks run in registration order, outside the lock so they may
	// subscribe or unsubscribe.
	for _, s := range subs {
		s.fn(frame)
	}
}

// Subscribe registers a callback for one message type and returns the
// matching unsubscribe function. Unsubscribing removes only that callback.
func (c *Connector) Subscribe(msgType string, fn Handler) (unsubscribe func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.nextSubID
	c.nextSubID++
	c.subs[msgType] = append(c.subs[msgType], subscription{id: id, fn: fn})

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		list := c.subs[msgType]
		for i, s := range list {
			if s.id == id {
				c.subs[msgType] = append(list[:i:i], list[i+1:]...)
				return
			}
		}
	}
}

// Close tears the connector down: the socket is closed, any pending
// reconnect is cancelled and all subscriptions are dropped. The connector
// cannot be reused afterwards.
func (c *Connector) Close() {
	c.mu.Lock()
	c.closed = true
	if c.retryTimer != nil {
		c.retryTimer.Stop()
	}
	conn := c.conn
	c.conn = nil
	c.state = StateDisconnected
	c.subs = make(map[string][]subscription)
	c.mu.Unlock()

	if conn != nil {
		conn.Close()
	}
}

// write sends one frame if the socket is open; otherwise it logs a warning
// and drops the frame. Outbound calls never queue and never fail loudly.
func (c *Connector) write(msgType string, payload any) {
	c.mu.Lock()
	conn := c.conn
	connected := c.state == StateConnected
	c.mu.Unlock()

	if !connected || conn == nil {
		log.Printf("connector: not connected, dropping %s", msgType)
		return
	}

	frame, err := protocol.NewFrame(msgType, payload)
	if err != nil {
		log.Printf("connector: encode %s: %v", msgType, err)
		return
	}
	data, err := frame.Encode()
	if err != nil {
		log.Printf("connector: encode %s: %v", msgType, err)
		return
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		log.Printf("connector: write %s: %v", msgType, err)
	}
}

// PatientArrived announces an arrival at the reception desk.
func (c *Connector) PatientArrived(p protocol.PatientArrivedPayload) {
	c.write(protocol.TypePatientArrived, p)
}

// PatientWaiting moves a patient to the waiting room.
func (c *Connector) PatientWaiting(appointmentID int) {
	c.write(protocol.TypePatientWaiting, protocol.AppointmentRefPayload{AppointmentID: appointmentID})
}

// ConsultationStarted signals that the consultation has begun.
func (c *Connector) ConsultationStarted(appointmentID int) {
	c.write(protocol.TypeConsultationStarted, protocol.AppointmentRefPayload{AppointmentID: appointmentID})
}

// ConsultationEnded signals that the consultation is over.
func (c *Connector) ConsultationEnded(appointmentID int) {
	c.write(protocol.TypeConsultationEnded, protocol.AppointmentRefPayload{AppointmentID: appointmentID})
}

// StatusUpdate overwrites a patient's status, for admin corrections.
func (c *Connector) StatusUpdate(appointmentID int, newStatus string) {
	c.write(protocol.TypeStatusUpdate, protocol.StatusUpdatePayload{
		AppointmentID: appointmentID,
		NewStatus:     newStatus,
	})
}

// Ping asks the server for a pong.
func (c *Connector) Ping() {
	c.write(protocol.TypePing, nil)
}
