// Package events publishes confirmed custody events to NATS.
package events

import (
	"context"
	"encoding/json"
	"fmt"

	"diamond-custody-gateway/config"
	"diamond-custody-gateway/internal/core/domain"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
)

// Conn is the part of *nats.Conn the publisher needs.
type Conn interface {
	Publish(subject string, data []byte) error
}

// NATSPublisher implements ports.EventPublisher. Events go to
// <prefix>.<event type>, e.g. custody.loan_approved.
type NATSPublisher struct {
	conn   Conn
	prefix string
}

func NewNATSPublisher(conn Conn, subjectPrefix string) *NATSPublisher {
	if subjectPrefix == "" {
		subjectPrefix = "custody"
	}
	return &NATSPublisher{conn: conn, prefix: subjectPrefix}
}

// Connect dials NATS with reconnects enabled for the lifetime of the process.
func Connect(cfg config.NATSConfig, log zerolog.Logger) (*nats.Conn, error) {
	nc, err := nats.Connect(cfg.URL,
		nats.Name("diamond-custody-gateway"),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.Warn().Err(err).Msg("NATS disconnected")
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			log.Info().Str("url", c.ConnectedUrl()).Msg("NATS reconnected")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connecting to nats: %w", err)
	}
	log.Info().Str("url", nc.ConnectedUrl()).Msg("NATS connection established")
	return nc, nil
}

// Subject returns the subject an event type is published on.
func (p *NATSPublisher) Subject(t domain.CustodyEventType) string {
	return p.prefix + "." + string(t)
}

func (p *NATSPublisher) Publish(ctx context.Context, ev *domain.CustodyEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encoding custody event: %w", err)
	}
	if err := p.conn.Publish(p.Subject(ev.Type), data); err != nil {
		return fmt.Errorf("publishing %s: %w", ev.Type, err)
	}
	return nil
}

// HealthCheck implements ports.HealthChecker for the NATS connection.
type HealthCheck struct {
	conn *nats.Conn
}

func NewHealthCheck(conn *nats.Conn) *HealthCheck {
	return &HealthCheck{conn: conn}
}

func (h *HealthCheck) Ping(ctx context.Context) error {
	if !h.conn.IsConnected() {
		return fmt.Errorf("nats status %s", h.conn.Status())
	}
	return nil
}

func (h *HealthCheck) Name() string {
	return "nats"
}
