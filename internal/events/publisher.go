// Copyright (c) 2024 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/qolzam/telar/apps/social/internal/metrics"
	"github.com/qolzam/telar/apps/social/internal/pkg/log"
)

// Publisher hands domain events to a broker
type Publisher interface {
	Publish(ctx context.Context, subject string, payload interface{}) error
	Close() error
}

// NATSPublisher publishes JSON events on core NATS subjects under a prefix
type NATSPublisher struct {
	conn   *nats.Conn
	prefix string
}

// NewNATSPublisher connects to url. Subjects are published as "<prefix>.<subject>".
func NewNATSPublisher(url, prefix string) (*NATSPublisher, error) {
	conn, err := nats.Connect(url,
		nats.Name("social-api"),
		nats.Timeout(5*time.Second),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.Warn("NATS disconnected: %v", err)
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			log.Info("NATS reconnected to %s", c.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("cannot connect to %s: %w", url, err)
	}
	return &NATSPublisher{conn: conn, prefix: prefix}, nil
}

// Subject joins a prefix and a subject with a dot, skipping an empty prefix
func Subject(prefix, subject string) string {
	prefix = strings.Trim(prefix, ".")
	if prefix == "" {
		return subject
	}
	return prefix + "." + subject
}

// Publish marshals payload and publishes it
func (p *NATSPublisher) Publish(ctx context.Context, subject string, payload interface{}) error {
	message, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal event %s: %w", subject, err)
	}

	full := Subject(p.prefix, subject)
	err = p.conn.Publish(full, message)
	metrics.IncrementEventsPublished(subject, err)
	if err != nil {
		log.ErrorWithContext(ctx, "(Publish) Failed to send message to %v, got error: %v", full, err)
		return fmt.Errorf("failed to publish %s: %w", full, err)
	}
	return nil
}

// Close drains pending messages and closes the connection
func (p *NATSPublisher) Close() error {
	if p.conn == nil {
		return nil
	}
	return p.conn.Drain()
}

// NoopPublisher drops every event; used when NATS is disabled
type NoopPublisher struct{}

func (NoopPublisher) Publish(ctx context.Context, subject string, payload interface{}) error {
	return nil
}

func (NoopPublisher) Close() error { return nil }
