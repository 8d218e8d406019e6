package server

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alfredjeanlab/worldchart/internal/events"
)

// recordingPublisher remembers the topics it was asked to publish.
type recordingPublisher struct {
	topics []string
	closed bool
}

func (p *recordingPublisher) Publish(_ context.Context, topic string, _ any) error {
	p.topics = append(p.topics, topic)
	return nil
}

func (p *recordingPublisher) Close() error {
	p.closed = true
	return nil
}

func TestHub_PublishForwardsAndBroadcasts(t *testing.T) {
	next := &recordingPublisher{}
	hub := NewHub(next)

	client := hub.subscribe(nil)
	defer hub.unsubscribe(client)

	if err := hub.Publish(context.Background(), events.TopicSeriesFetched, events.SeriesFetched{Key: "k1"}); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	select {
	case evt := <-client.ch:
		if evt.Topic != events.TopicSeriesFetched || evt.ID != 1 {
			t.Fatalf("event = %+v", evt)
		}
		if !strings.Contains(string(evt.Data), `"key":"k1"`) {
			t.Fatalf("data = %s", evt.Data)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
	}

	if len(next.topics) != 1 || next.topics[0] != events.TopicSeriesFetched {
		t.Errorf("forwarded topics = %v", next.topics)
	}
	if err := hub.Close(); err != nil || !next.closed {
		t.Errorf("Close: err=%v closed=%v", err, next.closed)
	}
}

func TestHub_TopicFiltering(t *testing.T) {
	hub := NewHub(nil)

	client := hub.subscribe([]string{"worldchart.live.*"})
	defer hub.unsubscribe(client)

	hub.broadcast(events.TopicSeriesFetched, []byte(`{}`))
	hub.broadcast(events.TopicLiveUpdated, []byte(`{}`))

	select {
	case evt := <-client.ch:
		if evt.Topic != events.TopicLiveUpdated {
			t.Fatalf("expected topic=%q, got %q", events.TopicLiveUpdated, evt.Topic)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
	}

	select {
	case evt := <-client.ch:
		t.Fatalf("unexpected event: topic=%q", evt.Topic)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHub_Unsubscribe(t *testing.T) {
	hub := NewHub(nil)
	client := hub.subscribe(nil)
	hub.unsubscribe(client)

	hub.broadcast(events.TopicLiveUpdated, []byte(`{}`))

	select {
	case <-client.ch:
		t.Fatal("should not receive events after unsubscribe")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHub_EventsSince(t *testing.T) {
	hub := NewHub(nil)
	if evts := hub.eventsSince(0); len(evts) != 0 {
		t.Fatalf("expected 0 events, got %d", len(evts))
	}

	for range 5 {
		hub.broadcast(events.TopicSeriesFetched, []byte(`{}`))
	}
	evts := hub.eventsSince(2)
	if len(evts) != 3 {
		t.Fatalf("expected 3 events, got %d", len(evts))
	}
	if evts[0].ID != 3 || evts[2].ID != 5 {
		t.Fatalf("expected IDs 3..5, got %d..%d", evts[0].ID, evts[2].ID)
	}
}

func TestHub_RingBufferWrap(t *testing.T) {
	hub := NewHub(nil)
	for range sseRingBufferSize + 10 {
		hub.broadcast(events.TopicSeriesFetched, []byte(`{}`))
	}
	evts := hub.eventsSince(0)
	if len(evts) != sseRingBufferSize {
		t.Fatalf("expected %d events, got %d", sseRingBufferSize, len(evts))
	}
	if evts[0].ID != 11 {
		t.Fatalf("expected oldest event ID=11, got %d", evts[0].ID)
	}
}

func TestMatchTopicPattern(t *testing.T) {
	for _, tc := range []struct {
		pattern string
		topic   string
		want    bool
	}{
		{"worldchart.live.updated", "worldchart.live.updated", true},
		{"worldchart.live.updated", "worldchart.series.fetched", false},
		{"worldchart.series.*", "worldchart.series.fetched", true},
		{"worldchart.series.*", "worldchart.live.updated", false},
		{"worldchart.>", "worldchart.series.fetched", true},
		{"worldchart.>", "other.topic", false},
		{"*.*.*", "worldchart.live.updated", true},
		{"*.*.*", "worldchart.live", false},
	} {
		t.Run(tc.pattern+"_"+tc.topic, func(t *testing.T) {
			if got := matchTopicPattern(tc.pattern, tc.topic); got != tc.want {
				t.Fatalf("matchTopicPattern(%q, %q) = %v, want %v", tc.pattern, tc.topic, got, tc.want)
			}
		})
	}
}

func TestHandleEventStream(t *testing.T) {
	env := newTestServer()
	ts := httptest.NewServer(env.handler)
	defer ts.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+"/v1/events/stream?topics=worldchart.live.*", nil)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET stream: %v", err)
	}
	defer resp.Body.Close()
	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("Content-Type = %q", ct)
	}

	// Headers are flushed after the subscription is registered.
	_ = env.srv.hub.Publish(ctx, events.TopicSeriesFetched, events.SeriesFetched{Key: "skip"})
	_ = env.srv.hub.Publish(ctx, events.TopicLiveUpdated, events.LiveUpdated{Source: "test"})

	lines := make(chan string, 16)
	go func() {
		sc := bufio.NewScanner(resp.Body)
		for sc.Scan() {
			lines <- sc.Text()
		}
		close(lines)
	}()

	var got []string
	timeout := time.After(2 * time.Second)
	for len(got) < 3 {
		select {
		case line, ok := <-lines:
			if !ok {
				t.Fatalf("stream closed early; got %v", got)
			}
			if line != "" {
				got = append(got, line)
			}
		case <-timeout:
			t.Fatalf("timed out; got %v", got)
		}
	}
	if got[0] != "id:2" || got[1] != "event:"+events.TopicLiveUpdated || !strings.Contains(got[2], `"source":"test"`) {
		t.Errorf("event lines = %v", got)
	}
}
