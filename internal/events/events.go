// Package events carries cache and live-data notifications over NATS.
package events

import (
	"context"
	"time"

	"github.com/alfredjeanlab/worldchart/internal/model"
)

// Event topics.
const (
	TopicSeriesFetched = "worldchart.series.fetched"
	TopicLiveUpdated   = "worldchart.live.updated"

	// TopicAll matches every worldchart event.
	TopicAll = "worldchart.>"
)

// SeriesFetched is emitted after an upstream fetch filled a cache entry.
type SeriesFetched struct {
	Key       string      `json:"key"`
	Query     model.Query `json:"query"`
	Bytes     int         `json:"bytes"`
	FetchedAt time.Time   `json:"fetched_at"`
}

// LiveUpdated is emitted when a new hourly live snapshot is available.
// Snapshot may be nil, in which case receivers refetch it themselves.
type LiveUpdated struct {
	Snapshot  *model.LiveSnapshot `json:"snapshot,omitempty"`
	UpdatedAt time.Time           `json:"updated_at"`
	Source    string              `json:"source,omitempty"`
}

// Publisher is the interface for emitting events.
type Publisher interface {
	Publish(ctx context.Context, topic string, event any) error
	Close() error
}

// Subscriber receives events from the event bus.
type Subscriber interface {
	// Subscribe delivers raw event payloads on the returned channel.
	// Call the returned cancel function to unsubscribe and close the channel.
	Subscribe(topic string) (<-chan []byte, func(), error)
	Close() error
}

// NoopPublisher drops every event. It is used when NATS is not configured.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, string, any) error { return nil }

func (NoopPublisher) Close() error { return nil }
