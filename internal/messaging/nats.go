package messaging

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	stan "github.com/nats-io/stan.go"
)

// Config - NATS Streaming connection settings.
type Config struct {
	URL       string
	ClusterID string
	ClientID  string
	Enabled   bool
}

// NATSClient publishes domain events to NATS Streaming. Publishing is
// fire-and-forget from the caller's perspective: a failed publish is
// logged and never fails the request that triggered it.
type NATSClient struct {
	conn stan.Conn
}

// NewNATSClient connects to the streaming cluster. When messaging is
// disabled the returned client is a no-op, so callers never need to
// branch on configuration.
func NewNATSClient(cfg Config) (*NATSClient, error) {
	if !cfg.Enabled {
		slog.Info("NATS messaging disabled, events will not be published")
		return &NATSClient{}, nil
	}

	// Client IDs must be unique per connection within the cluster.
	clientID := fmt.Sprintf("%s-%s", cfg.ClientID, uuid.New().String()[:8])

	conn, err := stan.Connect(cfg.ClusterID, clientID, stan.NatsURL(cfg.URL))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS Streaming: %w", err)
	}

	slog.Info("Connected to NATS Streaming",
		"url", cfg.URL, "cluster_id", cfg.ClusterID, "client_id", clientID)

	return &NATSClient{conn: conn}, nil
}

// Publish serializes the event as JSON and publishes it on the subject.
func (c *NATSClient) Publish(subject string, data interface{}) error {
	if c.conn == nil {
		return nil
	}

	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err := c.conn.Publish(subject, payload); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", subject, err)
	}

	return nil
}

// Close shuts down the underlying connection.
func (c *NATSClient) Close() error {
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}
