// Package events publishes template and document change notifications.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/docschema/docschema/pkg/logger"
)

// Kinds of entities that emit events.
const (
	KindTemplate = "template"
	KindDocument = "document"
)

// Actions carried in the subject suffix.
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// Event is the JSON payload of a change notification.
type Event struct {
	Kind       string    `json:"kind"`
	Action     string    `json:"action"`
	ID         string    `json:"id"`
	CustomerID string    `json:"customerId"`
	TemplateID string    `json:"templateId,omitempty"`
	At         time.Time `json:"at"`
}

// Subject returns "<prefix>.<kind>.<action>".
func (e Event) Subject(prefix string) string {
	if prefix == "" {
		return e.Kind + "." + e.Action
	}
	return prefix + "." + e.Kind + "." + e.Action
}

// Publisher delivers change events. Callers treat errors as non-fatal.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// Nop discards every event. Used when NATS is not configured.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }

// conn is the subset of *nats.Conn used for publishing.
type conn interface {
	Publish(subject string, data []byte) error
}

// NATSPublisher publishes events as core NATS messages.
type NATSPublisher struct {
	conn   conn
	nc     *nats.Conn
	prefix string
}

// ConnectNATS dials url and returns a publisher using subject prefix.
func ConnectNATS(url, prefix string) (*NATSPublisher, error) {
	nc, err := nats.Connect(url,
		nats.Name("docschema"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warnf("nats disconnected: %v", err)
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logger.Infof("nats reconnected to %s", c.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}
	return &NATSPublisher{conn: nc, nc: nc, prefix: prefix}, nil
}

func (p *NATSPublisher) Publish(ctx context.Context, e Event) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context cancelled before publish: %w", err)
	}
	if e.At.IsZero() {
		e.At = time.Now().UTC()
	}
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	return p.conn.Publish(e.Subject(p.prefix), data)
}

// Ready reports an error while the connection is not established.
func (p *NATSPublisher) Ready(context.Context) error {
	if p.nc == nil || !p.nc.IsConnected() {
		return errors.New("nats not connected")
	}
	return nil
}

// Close drains pending messages and closes the connection.
func (p *NATSPublisher) Close() error {
	if p.nc == nil {
		return nil
	}
	return p.nc.Drain()
}

// Recorder keeps published events in memory. Useful in tests.
type Recorder struct {
	mu     sync.Mutex
	events []Event
	Err    error
}

func (r *Recorder) Publish(_ context.Context, e Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return r.Err
}

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// Emit publishes e and logs a failure instead of returning it.
func Emit(ctx context.Context, p Publisher, e Event) {
	if p == nil {
		return
	}
	if err := p.Publish(ctx, e); err != nil {
		logger.Warnw("event publish failed", "subject", e.Kind+"."+e.Action, "id", e.ID, "err", err)
	}
}
