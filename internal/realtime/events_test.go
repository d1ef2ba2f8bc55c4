// file: internal/realtime/events_test.go
// version: 2.0.0
// guid: a0b1c2d3-e4f5-6a7b-8c9d-0e1f2a3b4c5d

package realtime

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Wants(t *testing.T) {
	client := NewClient("c1")
	assert.True(t, client.Wants(TopicFeed), "no subscriptions means everything")

	client.Subscribe(TopicWeather)
	assert.True(t, client.Wants(TopicWeather))
	assert.False(t, client.Wants(TopicFeed))
	assert.True(t, client.Wants(""), "topic-less events reach everyone")

	client.Unsubscribe(TopicWeather)
	assert.True(t, client.Wants(TopicFeed))
}

func TestEventHub_BroadcastFiltersTopics(t *testing.T) {
	hub := NewEventHub()
	weather := NewClient("weather")
	weather.Subscribe(TopicWeather)
	all := NewClient("all")
	hub.RegisterClient(weather)
	hub.RegisterClient(all)
	assert.Equal(t, 2, hub.GetClientCount())

	hub.Publish(EventFeedUpdated, TopicFeed, map[string]any{"count": 3})
	hub.Publish(EventWeatherUpdated, TopicWeather, nil)

	require.Len(t, all.Channel, 2)
	require.Len(t, weather.Channel, 1)
	ev := <-weather.Channel
	assert.Equal(t, EventWeatherUpdated, ev.Type)

	hub.UnregisterClient("weather")
	hub.UnregisterClient("all")
	hub.UnregisterClient("missing")
	assert.Equal(t, 0, hub.GetClientCount())
}

func TestEventHub_BroadcastDropsWhenFull(t *testing.T) {
	hub := NewEventHub()
	client := NewClient("slow")
	hub.RegisterClient(client)
	defer hub.UnregisterClient("slow")

	for i := 0; i < cap(client.Channel)+10; i++ {
		hub.SendSystemStatus(map[string]any{"i": i})
	}
	assert.Len(t, client.Channel, cap(client.Channel))
}

func TestEventHub_NilPublishIsNoop(t *testing.T) {
	var hub *EventHub
	assert.NotPanics(t, func() { hub.Publish(EventFeedUpdated, TopicFeed, nil) })
}

func TestHandleSSE_StreamsSubscribedEvents(t *testing.T) {
	gin.SetMode(gin.TestMode)
	hub := NewEventHub()
	router := gin.New()
	router.GET("/events", hub.HandleSSE)
	server := httptest.NewServer(router)
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, server.URL+"/events?topic=sports", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	first, err := reader.ReadString('\n')
	require.NoError(t, err)
	assert.Contains(t, first, "connection.established")

	require.Eventually(t, func() bool { return hub.GetClientCount() == 1 }, time.Second, 5*time.Millisecond)
	hub.Publish(EventFeedUpdated, TopicFeed, nil)
	hub.Publish(EventSportsUpdated, TopicSports, map[string]any{"league": "eng.1"})

	for {
		line, err := reader.ReadString('\n')
		require.NoError(t, err)
		if strings.HasPrefix(line, "data:") {
			assert.Contains(t, line, "sports.updated")
			assert.NotContains(t, line, "feed.updated")
			break
		}
	}
}
