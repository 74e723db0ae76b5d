// AngelaMos | 2026
// publisher.go

package events

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/casannunci/backend/internal/config"
)

// Subjects consumed by the notification service.
const (
	SubjectListingApproved     = "listings.approved"
	SubjectListingRejected     = "listings.rejected"
	SubjectListingExpired      = "listings.expired"
	SubjectRoleRequestApproved = "rolerequests.approved"
	SubjectRoleRequestRejected = "rolerequests.rejected"
)

type Publisher interface {
	Publish(subject string, payload any)
	Close()
}

type ListingEvent struct {
	ListingID  string    `json:"listing_id"`
	OwnerID    string    `json:"owner_id"`
	Title      string    `json:"title"`
	Status     string    `json:"status"`
	ReviewedBy string    `json:"reviewed_by,omitempty"`
	Note       string    `json:"note,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

type RoleRequestEvent struct {
	RequestID  string    `json:"request_id"`
	UserID     string    `json:"user_id"`
	Status     string    `json:"status"`
	ReviewedBy string    `json:"reviewed_by"`
	OccurredAt time.Time `json:"occurred_at"`
}

type natsPublisher struct {
	conn   *nats.Conn
	logger *slog.Logger
}

func NewPublisher(
	cfg config.EventsConfig,
	logger *slog.Logger,
) (Publisher, error) {
	if !cfg.Enabled {
		return Noop{}, nil
	}

	conn, err := nats.Connect(cfg.URL,
		nats.Name("casannunci-api"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to nats: %w", err)
	}

	return &natsPublisher{conn: conn, logger: logger}, nil
}

// Publish is fire-and-forget: moderation must not fail because the
// notification bus is down.
func (p *natsPublisher) Publish(subject string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		p.logger.Warn("marshal event", "subject", subject, "error", err)
		return
	}

	if err := p.conn.Publish(subject, data); err != nil {
		p.logger.Warn("publish event", "subject", subject, "error", err)
	}
}

func (p *natsPublisher) Close() {
	if p.conn != nil {
		p.conn.Drain() //nolint:errcheck // best-effort drain on shutdown
	}
}

// Noop is used when eventing is disabled in config.
type Noop struct{}

func (Noop) Publish(string, any) {}
func (Noop) Close()              {}
