package websocket

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/agora/internal/app/models"
)

func startHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub(zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		_ = hub.Run(ctx)
		close(stopped)
	}()
	t.Cleanup(func() {
		cancel()
		<-stopped
	})
	return hub
}

func receive(t *testing.T, c *Client) Event {
	t.Helper()
	select {
	case data, ok := <-c.send:
		require.True(t, ok, "send channel closed")
		var ev Event
		require.NoError(t, json.Unmarshal(data, &ev))
		return ev
	case <-time.After(time.Second):
		t.Fatal("no event received")
	}
	return Event{}
}

func TestHubBroadcastsPerTopic(t *testing.T) {
	hub := startHub(t)

	school := newClient(hub, nil, 1, []string{TopicSMOS}, zerolog.Nop())
	agency := newClient(hub, nil, 2, []string{TopicETour}, zerolog.Nop())
	both := newClient(hub, nil, 3, []string{TopicSMOS, TopicETour}, zerolog.Nop())
	require.True(t, hub.Subscribe(school))
	require.True(t, hub.Subscribe(agency))
	require.True(t, hub.Subscribe(both))

	assert.Eventually(t, func() bool {
		return hub.GetClientsCount(TopicSMOS) == 2 && hub.GetClientsCount(TopicETour) == 2
	}, time.Second, 5*time.Millisecond)

	require.True(t, hub.Broadcast(&Event{Kind: "absence.recorded", Topic: TopicSMOS, Title: "absence"}))

	ev := receive(t, school)
	assert.Equal(t, "absence.recorded", ev.Kind)
	assert.False(t, ev.Timestamp.IsZero())
	assert.Equal(t, "absence.recorded", receive(t, both).Kind)

	require.True(t, hub.Broadcast(&Event{Kind: "feedback.inserted", Topic: TopicETour}))
	assert.Equal(t, "feedback.inserted", receive(t, agency).Kind)
	assert.Equal(t, "feedback.inserted", receive(t, both).Kind)
	assert.Len(t, school.send, 0)
}

func TestHubUnsubscribeClosesSend(t *testing.T) {
	hub := startHub(t)

	c := newClient(hub, nil, 1, []string{TopicSMOS}, zerolog.Nop())
	require.True(t, hub.Subscribe(c))
	hub.Unsubscribe(c)

	_, ok := <-c.send
	assert.False(t, ok)
	assert.Eventually(t, func() bool { return hub.GetClientsCount(TopicSMOS) == 0 }, time.Second, 5*time.Millisecond)
}

func TestHubDropsSlowClients(t *testing.T) {
	hub := startHub(t)

	c := newClient(hub, nil, 1, []string{TopicETour}, zerolog.Nop())
	require.True(t, hub.Subscribe(c))

	for i := 0; i <= sendBufferSize; i++ {
		hub.Broadcast(&Event{Kind: "banner.inserted", Topic: TopicETour})
	}

	assert.Eventually(t, func() bool { return hub.GetClientsCount(TopicETour) == 0 }, time.Second, 10*time.Millisecond)
}

func TestBroadcastAfterStop(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, hub.Run(ctx))

	assert.False(t, hub.Broadcast(&Event{Topic: TopicSMOS}))
}

func TestTopicsForRoles(t *testing.T) {
	assert.Equal(t, []string{TopicSMOS}, TopicsForRoles([]models.RoleType{models.RoleTeacher}))
	assert.Equal(t, []string{TopicETour}, TopicsForRoles([]models.RoleType{models.RolePointOperator}))
	assert.Equal(t, []string{TopicSMOS, TopicETour},
		TopicsForRoles([]models.RoleType{models.RoleAgencyOperator, models.RoleAdministrator}))
	assert.Empty(t, TopicsForRoles([]models.RoleType{models.RoleStudent, models.RoleTourist}))
}
