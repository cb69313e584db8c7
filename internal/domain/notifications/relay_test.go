package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"telicommunity-go/internal/domain/bookings"
	"telicommunity-go/internal/domain/realtime"
)

type fakeCounter struct {
	mu    sync.Mutex
	count int64
	err   error
}

func (c *fakeCounter) set(count int64, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.count, c.err = count, err
}

func (c *fakeCounter) PendingCount(ctx context.Context) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.count, c.err
}

type signal struct {
	notification *Notification
	badge        int64
}

type recordingNotifier struct {
	signals chan signal
}

func newRecordingNotifier() *recordingNotifier {
	return &recordingNotifier{signals: make(chan signal, 64)}
}

func (n *recordingNotifier) Notify(ctx context.Context, notification Notification) error {
	n.signals <- signal{notification: &notification}
	return nil
}

func (n *recordingNotifier) BadgeChanged(ctx context.Context, pending int64) error {
	n.signals <- signal{badge: pending}
	return nil
}

func (n *recordingNotifier) next(t *testing.T) signal {
	t.Helper()
	select {
	case s := <-n.signals:
		return s
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for relay output")
		return signal{}
	}
}

func (n *recordingNotifier) expectBadge(t *testing.T, want int64) {
	t.Helper()
	s := n.next(t)
	if s.notification != nil {
		t.Fatalf("expected badge %d, got notification %+v", want, *s.notification)
	}
	if s.badge != want {
		t.Fatalf("expected badge %d, got %d", want, s.badge)
	}
}

func (n *recordingNotifier) expectNotification(t *testing.T, want Notification) {
	t.Helper()
	s := n.next(t)
	if s.notification == nil {
		t.Fatalf("expected notification %q, got badge %d", want.Title, s.badge)
	}
	if *s.notification != want {
		t.Fatalf("expected %+v, got %+v", want, *s.notification)
	}
}

func (n *recordingNotifier) expectQuiet(t *testing.T) {
	t.Helper()
	select {
	case s := <-n.signals:
		t.Fatalf("expected no output, got %+v", s)
	case <-time.After(50 * time.Millisecond):
	}
}

func bookingEvent(t *testing.T, eventType realtime.EventType, id, title, status string) realtime.Event {
	t.Helper()
	record, err := json.Marshal(bookingRecord{ID: id, Title: title, Status: status})
	if err != nil {
		t.Fatal(err)
	}
	event := realtime.Event{Table: bookings.Table, Type: eventType, CommitTimestamp: time.Now()}
	if eventType == realtime.EventDelete {
		event.OldRecord = record
	} else {
		event.Record = record
	}
	return event
}

func startRelay(t *testing.T, counter *fakeCounter) (*Relay, *realtime.Hub, *recordingNotifier) {
	t.Helper()
	hub := realtime.NewHub(16, nil)
	notifier := newRecordingNotifier()
	relay := NewRelay(hub, counter, notifier, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = relay.Run(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
		hub.Close()
	})
	return relay, hub, notifier
}

func TestRelayBadgeFollowsPendingCount(t *testing.T) {
	counter := &fakeCounter{count: 2}
	relay, hub, notifier := startRelay(t, counter)

	if err := relay.SetAdmin(context.Background(), true); err != nil {
		t.Fatal(err)
	}
	notifier.expectBadge(t, 2)

	hub.Publish(bookingEvent(t, realtime.EventInsert, "b-3", "Diwali Pooja", bookings.StatusPending))
	notifier.expectNotification(t, BookingRequested("b-3", "Diwali Pooja"))
	notifier.expectBadge(t, 3)

	counter.set(2, nil)
	hub.Publish(bookingEvent(t, realtime.EventDelete, "b-1", "Satsang", bookings.StatusPending))
	notifier.expectBadge(t, 2)

	counter.set(0, errors.New("db down"))
	hub.Publish(bookingEvent(t, realtime.EventDelete, "b-2", "Havan", bookings.StatusPending))
	notifier.expectQuiet(t)
	if relay.Badge() != 2 {
		t.Fatalf("expected badge to keep its value, got %d", relay.Badge())
	}

	counter.set(2, nil)
	hub.Publish(bookingEvent(t, realtime.EventInsert, "b-4", "Bhajan", bookings.StatusPending))
	notifier.expectNotification(t, BookingRequested("b-4", "Bhajan"))
	notifier.expectBadge(t, 3)

	if err := relay.SetAdmin(context.Background(), false); err != nil {
		t.Fatal(err)
	}
	notifier.expectBadge(t, 0)

	hub.Publish(bookingEvent(t, realtime.EventInsert, "b-5", "Katha", bookings.StatusPending))
	notifier.expectQuiet(t)
	if relay.Badge() != 0 {
		t.Fatalf("expected badge 0 after losing admin, got %d", relay.Badge())
	}
}

func TestRelayScriptedSequenceMatchesCounter(t *testing.T) {
	counter := &fakeCounter{}
	relay, hub, notifier := startRelay(t, counter)
	if err := relay.SetAdmin(context.Background(), true); err != nil {
		t.Fatal(err)
	}
	notifier.expectBadge(t, 0)

	pending := int64(0)
	for i := 0; i < 5; i++ {
		id := fmt.Sprintf("b-%d", i)
		pending++
		counter.set(pending, nil)
		hub.Publish(bookingEvent(t, realtime.EventInsert, id, "Puja", bookings.StatusPending))
		notifier.expectNotification(t, BookingRequested(id, "Puja"))
		notifier.expectBadge(t, pending)
	}
	for i := 0; i < 3; i++ {
		pending--
		counter.set(pending, nil)
		hub.Publish(bookingEvent(t, realtime.EventDelete, fmt.Sprintf("b-%d", i), "Puja", bookings.StatusPending))
		notifier.expectBadge(t, pending)
	}
	if relay.Badge() != pending {
		t.Fatalf("expected badge %d, got %d", pending, relay.Badge())
	}
}

func TestRelayConfirmsApprovedUpdates(t *testing.T) {
	_, hub, notifier := startRelay(t, &fakeCounter{})

	// The general subscription is opened by Run; give it a moment.
	deadline := time.Now().Add(time.Second)
	for hub.Subscribers() == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}

	hub.Publish(bookingEvent(t, realtime.EventUpdate, "b-1", "Ganesh Chaturthi", bookings.StatusApproved))
	notifier.expectNotification(t, BookingConfirmed("b-1", "Ganesh Chaturthi"))

	hub.Publish(bookingEvent(t, realtime.EventUpdate, "b-2", "Retitled", bookings.StatusPending))
	hub.Publish(bookingEvent(t, realtime.EventInsert, "b-3", "Not admin", bookings.StatusPending))
	notifier.expectQuiet(t)
}

func TestRelayIgnoresNonPendingInserts(t *testing.T) {
	counter := &fakeCounter{count: 1}
	relay, hub, notifier := startRelay(t, counter)
	if err := relay.SetAdmin(context.Background(), true); err != nil {
		t.Fatal(err)
	}
	notifier.expectBadge(t, 1)

	hub.Publish(bookingEvent(t, realtime.EventInsert, "b-9", "Seeded", bookings.StatusApproved))
	notifier.expectQuiet(t)
	if relay.Badge() != 1 {
		t.Fatalf("expected badge 1, got %d", relay.Badge())
	}
}

func TestMultiJoinsErrors(t *testing.T) {
	boom := errors.New("broker gone")
	first := newRecordingNotifier()
	multi := Multi{first, failingNotifier{err: boom}}

	err := multi.Notify(context.Background(), BookingConfirmed("b-1", "Aarti"))
	if !errors.Is(err, boom) {
		t.Fatalf("expected joined error, got %v", err)
	}
	if s := first.next(t); s.notification == nil {
		t.Fatalf("expected first notifier to receive the notification")
	}
}

type failingNotifier struct {
	err error
}

func (f failingNotifier) Notify(ctx context.Context, n Notification) error      { return f.err }
func (f failingNotifier) BadgeChanged(ctx context.Context, pending int64) error { return f.err }

func TestNotificationTexts(t *testing.T) {
	if got := BookingRequested("b", "Diwali Pooja").Body; got != "Diwali Pooja by a devotee." {
		t.Fatalf("unexpected body %q", got)
	}
	if got := BookingConfirmed("b", "Diwali Pooja").Body; got != "Diwali Pooja has been officially scheduled." {
		t.Fatalf("unexpected body %q", got)
	}
}
