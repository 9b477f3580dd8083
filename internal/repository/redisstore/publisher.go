package redisstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/abhishekmmb18-lang/Enigma/internal/domain"
)

const (
	// IncidentChannel carries every stored incident as JSON
	IncidentChannel = "vehicle:incidents"
	// LatestIncidentKey is a hash holding the newest incident
	LatestIncidentKey = "vehicle:incident:latest"

	latestIncidentTTL = 10 * time.Minute
)

// IncidentPublisher fans stored incidents out over Redis pub/sub
type IncidentPublisher struct {
	client *redis.Client
}

// NewIncidentPublisher connects to Redis and verifies the connection
func NewIncidentPublisher(ctx context.Context, addr, password string, db int) (*IncidentPublisher, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		PoolSize:     10,
		MinIdleConns: 2,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis: failed to connect: %w", err)
	}

	return &IncidentPublisher{client: client}, nil
}

// NewIncidentPublisherWithClient wraps an existing client
func NewIncidentPublisherWithClient(client *redis.Client) *IncidentPublisher {
	return &IncidentPublisher{client: client}
}

func (p *IncidentPublisher) Close() error {
	return p.client.Close()
}

func (p *IncidentPublisher) Ping(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}

// PublishIncident refreshes the latest-incident hash and publishes rec in
// one pipeline round-trip
func (p *IncidentPublisher) PublishIncident(ctx context.Context, rec domain.IncidentRecord) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("redis: failed to marshal incident: %w", err)
	}

	latest := map[string]interface{}{
		"id":         rec.ID,
		"type":       string(rec.Type),
		"latitude":   rec.Latitude,
		"longitude":  rec.Longitude,
		"sos_alert":  rec.SOSAlert,
		"created_at": rec.CreatedAt.Unix(),
	}

	pipe := p.client.Pipeline()
	pipe.HSet(ctx, LatestIncidentKey, latest)
	pipe.Expire(ctx, LatestIncidentKey, latestIncidentTTL)
	pipe.Publish(ctx, IncidentChannel, payload)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis: incident pipeline failed: %w", err)
	}
	return nil
}
