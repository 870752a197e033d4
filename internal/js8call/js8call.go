// Package js8call talks to the TCP API of a locally running JS8Call
// instance to read the station's configured callsign and grid.
package js8call

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"sync"

	"qrzbuddy/internal/components/assert"
	"qrzbuddy/internal/components/telemetry"

	"github.com/mazen160/go-random"
)

// DefaultAddress is where JS8Call listens by default.
const DefaultAddress = "127.0.0.1:2442"

const (
	TypeGetCallsign = "STATION.GET_CALLSIGN"
	TypeGetGrid     = "STATION.GET_GRID"
)

const (
	report_client_read    = "client.read"
	report_client_decode  = "client.decode"
	report_client_request = "client.request"
)

var ErrClosed = errors.New("js8call connection closed")

// Message is a single line on the wire.
type Message struct {
	Type   string         `json:"type"`
	Value  string         `json:"value"`
	Params map[string]any `json:"params"`
}

func (m Message) id() string {
	id, ok := m.Params["_ID"]
	if !ok {
		return ""
	}
	switch id := id.(type) {
	case string:
		return id
	case float64:
		return fmt.Sprintf("%.0f", id)
	}
	return fmt.Sprint(id)
}

// Client is a connection to JS8Call. Requests are matched to responses by
// their `_ID` param, messages JS8Call sends on its own are ignored.
type Client struct {
	conn net.Conn
	tel  telemetry.API

	writeMutex sync.Mutex

	mutex   sync.Mutex
	pending map[string]chan Message
	err     error
	done    chan struct{}
}

// Dial connects to JS8Call at `addr`.
func Dial(ctx context.Context, addr string, tel telemetry.API) (*Client, error) {
	assert.NotNil(tel)

	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("dial js8call: %w", err)
	}
	return NewClient(conn, tel), nil
}

// NewClient wraps an established connection.
func NewClient(conn net.Conn, tel telemetry.API) *Client {
	c := &Client{
		conn:    conn,
		tel:     telemetry.NewScopedAPI("js8call", tel),
		pending: map[string]chan Message{},
		done:    make(chan struct{}),
	}
	go c.read()
	return c
}

func (c *Client) Close() error {
	return c.conn.Close()
}

func (c *Client) read() {
	defer close(c.done)

	scanner := bufio.NewScanner(c.conn)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var msg Message
		err := json.Unmarshal(line, &msg)
		if err != nil {
			c.tel.ReportWarning(report_client_decode, string(line), err)
			continue
		}

		c.mutex.Lock()
		waiting, ok := c.pending[msg.id()]
		if ok {
			delete(c.pending, msg.id())
		}
		c.mutex.Unlock()

		if !ok {
			c.tel.ReportDebug("unsolicited message", "type", msg.Type)
			continue
		}
		waiting <- msg
	}

	err := scanner.Err()
	if err != nil && !errors.Is(err, net.ErrClosed) {
		c.tel.ReportWarning(report_client_read, err)
	}

	c.mutex.Lock()
	c.err = ErrClosed
	c.mutex.Unlock()
}

func (c *Client) register() (string, chan Message, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.err != nil {
		return "", nil, c.err
	}
	for {
		id, err := random.String(12)
		if err != nil {
			return "", nil, err
		}
		if _, taken := c.pending[id]; taken {
			continue
		}
		waiting := make(chan Message, 1)
		c.pending[id] = waiting
		return id, waiting, nil
	}
}

func (c *Client) unregister(id string) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	delete(c.pending, id)
}

// Request sends a message of the given type and waits for its response.
func (c *Client) Request(ctx context.Context, msgType string) (Message, error) {
	id, waiting, err := c.register()
	if err != nil {
		return Message{}, err
	}
	defer c.unregister(id)

	line, err := json.Marshal(Message{
		Type:   msgType,
		Params: map[string]any{"_ID": id},
	})
	if err != nil {
		return Message{}, err
	}
	line = append(line, '\n')

	c.writeMutex.Lock()
	_, err = c.conn.Write(line)
	c.writeMutex.Unlock()
	if err != nil {
		c.tel.ReportWarning(report_client_request, msgType, err)
		return Message{}, fmt.Errorf("send %s: %w", msgType, err)
	}

	select {
	case msg := <-waiting:
		return msg, nil
	case <-c.done:
		return Message{}, ErrClosed
	case <-ctx.Done():
		return Message{}, ctx.Err()
	}
}

// StationCallsign returns the callsign configured in JS8Call.
func (c *Client) StationCallsign(ctx context.Context) (string, error) {
	msg, err := c.Request(ctx, TypeGetCallsign)
	if err != nil {
		return "", err
	}
	return msg.Value, nil
}

// StationGrid returns the grid locator configured in JS8Call.
func (c *Client) StationGrid(ctx context.Context) (string, error) {
	msg, err := c.Request(ctx, TypeGetGrid)
	if err != nil {
		return "", err
	}
	return msg.Value, nil
}
