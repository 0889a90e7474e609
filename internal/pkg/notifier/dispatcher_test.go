package notifier

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/agora/internal/pkg/email"
	"github.com/yigit/agora/internal/pkg/metrics"
	"github.com/yigit/agora/internal/pkg/websocket"
)

type fakeMailer struct {
	mu       sync.Mutex
	failures map[string]int
	sent     []email.Message
	attempts int
}

func (f *fakeMailer) Send(_ context.Context, msg email.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.attempts++
	if f.failures[msg.To] > 0 {
		f.failures[msg.To]--
		return errors.New("smtp unavailable")
	}
	f.sent = append(f.sent, msg)
	return nil
}

func (f *fakeMailer) sentTo() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.sent))
	for _, m := range f.sent {
		out = append(out, m.To)
	}
	return out
}

func newTestDispatcher(cfg Config, m *metrics.Metrics, channels ...Channel) *Dispatcher {
	d := NewDispatcher(cfg, m, zerolog.Nop(), channels...)
	d.NewBackOff = func() backoff.BackOff { return &backoff.ZeroBackOff{} }
	return d
}

func runDispatcher(t *testing.T, d *Dispatcher) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = d.Run(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
}

func TestDispatcherRetriesPerRecipient(t *testing.T) {
	mailer := &fakeMailer{failures: map[string]int{"flaky@example.com": 2}}
	m := metrics.New()
	d := newTestDispatcher(Config{Workers: 2, QueueSize: 4, MaxRetries: 3, EnqueueTimeout: time.Second}, m, NewEmailChannel(mailer))
	runDispatcher(t, d)

	ev := AbsenceRecorded([]Recipient{
		{Email: "flaky@example.com", Name: "Flaky"},
		{Email: "steady@example.com", Name: "Steady"},
		{Name: "No Address"},
	}, 7, "Luca Rossi", 3, time.Date(2024, 10, 2, 0, 0, 0, 0, time.UTC))
	require.True(t, d.Publish(context.Background(), ev))

	assert.Eventually(t, func() bool { return len(mailer.sentTo()) == 2 }, 2*time.Second, 10*time.Millisecond)
	assert.ElementsMatch(t, []string{"flaky@example.com", "steady@example.com"}, mailer.sentTo())
	mailer.mu.Lock()
	assert.Equal(t, 4, mailer.attempts)
	mailer.mu.Unlock()

	expected := `
# HELP agora_notifications_total Notification deliveries by event kind, channel and outcome.
# TYPE agora_notifications_total counter
agora_notifications_total{channel="email",kind="absence.recorded",outcome="delivered"} 2
`
	assert.Eventually(t, func() bool {
		return testutil.GatherAndCompare(m.Registry(), strings.NewReader(expected), "agora_notifications_total") == nil
	}, 2*time.Second, 10*time.Millisecond)
}

func TestDispatcherGivesUpAfterMaxRetries(t *testing.T) {
	mailer := &fakeMailer{failures: map[string]int{"down@example.com": 100}}
	m := metrics.New()
	d := newTestDispatcher(Config{Workers: 1, QueueSize: 1, MaxRetries: 2, EnqueueTimeout: time.Second}, m, NewEmailChannel(mailer))
	runDispatcher(t, d)

	require.True(t, d.Publish(context.Background(), EnrollmentDecided(Recipient{Email: "down@example.com"}, 1, false, "")))

	assert.Eventually(t, func() bool {
		mailer.mu.Lock()
		defer mailer.mu.Unlock()
		return mailer.attempts == 3
	}, 2*time.Second, 10*time.Millisecond)
	assert.Empty(t, mailer.sentTo())
}

func TestPublishDropsWhenQueueFull(t *testing.T) {
	d := newTestDispatcher(Config{Workers: 1, QueueSize: 1, EnqueueTimeout: 20 * time.Millisecond}, metrics.New(), NewEmailChannel(&fakeMailer{}))

	// workers not running, so the queue fills up
	assert.True(t, d.Publish(context.Background(), BannerInserted(1, 1, "Bar Centrale")))

	start := time.Now()
	assert.False(t, d.Publish(context.Background(), BannerInserted(1, 2, "Bar Centrale")))
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
}

func TestFeedChannelBroadcasts(t *testing.T) {
	hub := websocket.NewHub(zerolog.Nop())
	ch := NewFeedChannel(hub)

	assert.Empty(t, ch.Deliveries(Event{Kind: KindAbsenceRecorded}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, hub.Run(ctx))

	deliveries := ch.Deliveries(FeedbackInserted(1, 2, "Museo", 5))
	require.Len(t, deliveries, 1)
	assert.ErrorIs(t, deliveries[0](context.Background()), ErrFeedClosed)
}

func TestEventBuildersEscapeHTML(t *testing.T) {
	ev := NoteRecorded(nil, 1, "Anna <script>", 9, "talks & shouts", time.Date(2024, 11, 5, 0, 0, 0, 0, time.UTC))

	assert.Equal(t, KindNoteRecorded, ev.Kind)
	assert.Equal(t, websocket.TopicSMOS, ev.Topic)
	assert.Contains(t, ev.Body, "Anna &lt;script&gt;")
	assert.Contains(t, ev.Body, "talks &amp; shouts")
	assert.Contains(t, ev.Body, "2024-11-05")

	report := MonitoringReport(nil, 2024, 5, 3, []MonitoringLine{{Name: "Luca", Absences: 9, Notes: 4}})
	assert.Equal(t, "Student monitoring report 2024/2025", report.Subject)
	assert.Contains(t, report.Body, "<li>Luca: 9 absences, 4 notes</li>")
}

func TestRunDeliversQueuedEventsAfterCancel(t *testing.T) {
	mailer := &fakeMailer{}
	d := newTestDispatcher(Config{Workers: 2, QueueSize: 10, EnqueueTimeout: time.Second}, metrics.New(), NewEmailChannel(mailer))

	want := make([]string, 0, 5)
	for i := int64(1); i <= 5; i++ {
		to := fmt.Sprintf("parent%d@example.com", i)
		want = append(want, to)
		require.True(t, d.Publish(context.Background(), NoteRecorded([]Recipient{{Email: to}}, i, "Luca Rossi", i, "Talking during the test", time.Now())))
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, d.Run(ctx))

	assert.ElementsMatch(t, want, mailer.sentTo())
	assert.Zero(t, len(d.queue))
}

func TestRunDrainIsBounded(t *testing.T) {
	mailer := &fakeMailer{failures: map[string]int{"down@example.com": 1000}}
	d := NewDispatcher(Config{QueueSize: 4, MaxRetries: 50, DrainTimeout: 50 * time.Millisecond}, metrics.New(), zerolog.Nop(), NewEmailChannel(mailer))
	d.NewBackOff = func() backoff.BackOff { return backoff.NewConstantBackOff(20 * time.Millisecond) }

	for i := int64(1); i <= 3; i++ {
		require.True(t, d.Publish(context.Background(), EnrollmentDecided(Recipient{Email: "down@example.com"}, i, true, "luca.rossi")))
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	require.NoError(t, d.Run(ctx))
	assert.Less(t, time.Since(start), time.Second)
	assert.Empty(t, mailer.sentTo())
}
