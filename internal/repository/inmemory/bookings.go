package inmemory

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	bookingsdomain "telicommunity-go/internal/domain/bookings"
	profilesdomain "telicommunity-go/internal/domain/profiles"
	realtimedomain "telicommunity-go/internal/domain/realtime"
)

type EventPublisher interface {
	Publish(event realtimedomain.Event)
}

// Bookings keeps bookings in memory with the same uniqueness rule as the
// database and, when a publisher is set, emits the row-change events the
// database trigger would.
type Bookings struct {
	txMu     sync.Mutex
	mu       sync.RWMutex
	items    map[string]bookingsdomain.Booking
	profiles profilesdomain.Repository
	events   EventPublisher
	now      func() time.Time
}

func NewBookings(profiles profilesdomain.Repository, events EventPublisher) *Bookings {
	return &Bookings{
		items:    make(map[string]bookingsdomain.Booking),
		profiles: profiles,
		events:   events,
		now:      time.Now,
	}
}

// Transaction serializes fn against other transactions.
func (b *Bookings) Transaction(ctx context.Context, fn func(bookingsdomain.Repository) error) error {
	b.txMu.Lock()
	defer b.txMu.Unlock()
	return fn(b)
}

func (b *Bookings) Create(ctx context.Context, booking *bookingsdomain.Booking) error {
	b.mu.Lock()
	for _, existing := range b.items {
		if existing.BookingDate.Equal(booking.BookingDate) {
			b.mu.Unlock()
			return bookingsdomain.ErrSlotTaken
		}
	}
	booking.CreatedAt = b.now().UTC()
	stored := *booking
	b.items[stored.ID] = stored
	b.mu.Unlock()

	b.emit(realtimedomain.EventInsert, &stored, nil)
	return nil
}

func (b *Bookings) GetByID(ctx context.Context, id string) (*bookingsdomain.Booking, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	booking, ok := b.items[id]
	if !ok {
		return nil, bookingsdomain.ErrBookingNotFound
	}
	return &booking, nil
}

func (b *Bookings) ListFrom(ctx context.Context, from time.Time) ([]bookingsdomain.BookingWithCreator, error) {
	return b.list(ctx, func(item bookingsdomain.Booking) bool { return !item.BookingDate.Before(from) })
}

func (b *Bookings) ListByStatus(ctx context.Context, status string) ([]bookingsdomain.BookingWithCreator, error) {
	return b.list(ctx, func(item bookingsdomain.Booking) bool { return item.Status == status })
}

func (b *Bookings) list(ctx context.Context, keep func(bookingsdomain.Booking) bool) ([]bookingsdomain.BookingWithCreator, error) {
	b.mu.RLock()
	selected := make([]bookingsdomain.Booking, 0, len(b.items))
	for _, item := range b.items {
		if keep(item) {
			selected = append(selected, item)
		}
	}
	b.mu.RUnlock()

	sort.Slice(selected, func(i, j int) bool {
		return selected[i].BookingDate.Before(selected[j].BookingDate)
	})

	result := make([]bookingsdomain.BookingWithCreator, 0, len(selected))
	for _, item := range selected {
		entry := bookingsdomain.BookingWithCreator{Booking: item}
		if b.profiles != nil {
			if profile, err := b.profiles.GetByID(ctx, item.BookedBy); err == nil {
				entry.Creator = bookingsdomain.Creator{FullName: profile.FullName, Username: profile.Username}
			}
		}
		result = append(result, entry)
	}
	return result, nil
}

func (b *Bookings) UpdateStatus(ctx context.Context, id, status string) error {
	b.mu.Lock()
	booking, ok := b.items[id]
	if !ok {
		b.mu.Unlock()
		return bookingsdomain.ErrBookingNotFound
	}
	old := booking
	booking.Status = status
	b.items[id] = booking
	b.mu.Unlock()

	b.emit(realtimedomain.EventUpdate, &booking, &old)
	return nil
}

func (b *Bookings) Delete(ctx context.Context, id string) error {
	b.mu.Lock()
	booking, ok := b.items[id]
	if !ok {
		b.mu.Unlock()
		return bookingsdomain.ErrBookingNotFound
	}
	delete(b.items, id)
	b.mu.Unlock()

	b.emit(realtimedomain.EventDelete, nil, &booking)
	return nil
}

func (b *Bookings) Count(ctx context.Context) (int64, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return int64(len(b.items)), nil
}

func (b *Bookings) CountByStatus(ctx context.Context, status string) (int64, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	var count int64
	for _, item := range b.items {
		if item.Status == status {
			count++
		}
	}
	return count, nil
}

// bookingRow mirrors the record the notify trigger builds.
type bookingRow struct {
	ID          string `json:"id"`
	BookingDate string `json:"booking_date"`
	Title       string `json:"title"`
	BookedBy    string `json:"booked_by"`
	Status      string `json:"status"`
}

func (b *Bookings) emit(eventType realtimedomain.EventType, record, old *bookingsdomain.Booking) {
	if b.events == nil {
		return
	}
	b.events.Publish(realtimedomain.Event{
		Table:           bookingsdomain.Table,
		Type:            eventType,
		Record:          encodeRow(record),
		OldRecord:       encodeRow(old),
		CommitTimestamp: b.now().UTC(),
	})
}

func encodeRow(booking *bookingsdomain.Booking) json.RawMessage {
	if booking == nil {
		return nil
	}
	raw, err := json.Marshal(bookingRow{
		ID:          booking.ID,
		BookingDate: booking.BookingDate.Format(bookingsdomain.DateLayout),
		Title:       booking.Title,
		BookedBy:    booking.BookedBy,
		Status:      booking.Status,
	})
	if err != nil {
		return nil
	}
	return raw
}
