package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"github.com/angelmondragon/wanderlust-backend/pkg/config"
	"github.com/angelmondragon/wanderlust-backend/pkg/logger"
)

// ListingEvent names a listing lifecycle change.
type ListingEvent string

const (
	ListingCreated ListingEvent = "created"
	ListingUpdated ListingEvent = "updated"
	ListingDeleted ListingEvent = "deleted"
)

// ListingChanged is the payload published for every listing mutation.
type ListingChanged struct {
	Event      ListingEvent `json:"event"`
	ListingID  uuid.UUID    `json:"listing_id"`
	OwnerID    uuid.UUID    `json:"owner_id"`
	OccurredAt time.Time    `json:"occurred_at"`
}

// Publisher emits listing events. Implementations must be safe for concurrent use.
type Publisher interface {
	PublishListing(ctx context.Context, evt ListingChanged) error
	Close()
}

type conn interface {
	Publish(subject string, data []byte) error
	Drain() error
}

// NATSPublisher publishes JSON encoded events on core NATS subjects.
type NATSPublisher struct {
	conn   conn
	prefix string
}

// New connects to NATS when a URL is configured; otherwise it returns a
// publisher that drops events.
func New(cfg config.NATSConfig, logg *logger.Logger) (Publisher, error) {
	if strings.TrimSpace(cfg.URL) == "" {
		return Nop{}, nil
	}

	nc, err := nats.Connect(cfg.URL,
		nats.Name("wanderlust-api"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if logg != nil && err != nil {
				logg.Warn(logg.WithField(context.Background(), "error", err.Error()), "nats disconnected")
			}
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats %s: %w", cfg.URL, err)
	}

	return newNATSPublisher(nc, cfg.SubjectPrefix), nil
}

func newNATSPublisher(c conn, prefix string) *NATSPublisher {
	prefix = strings.Trim(strings.TrimSpace(prefix), ".")
	if prefix == "" {
		prefix = "wanderlust"
	}
	return &NATSPublisher{conn: c, prefix: prefix}
}

// Subject returns "<prefix>.listing.<event>".
func (p *NATSPublisher) Subject(evt ListingEvent) string {
	return p.prefix + ".listing." + string(evt)
}

func (p *NATSPublisher) PublishListing(ctx context.Context, evt ListingChanged) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if evt.OccurredAt.IsZero() {
		evt.OccurredAt = time.Now().UTC()
	}
	payload, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal listing event: %w", err)
	}
	return p.conn.Publish(p.Subject(evt.Event), payload)
}

// Close flushes pending messages before disconnecting.
func (p *NATSPublisher) Close() {
	_ = p.conn.Drain()
}

// Nop discards every event.
type Nop struct{}

func (Nop) PublishListing(context.Context, ListingChanged) error { return nil }

func (Nop) Close() {}
