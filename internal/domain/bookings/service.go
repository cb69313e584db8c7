package bookings

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("telicommunity-go/internal/domain/bookings")

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// ListUpcoming returns bookings dated today (UTC) or later, earliest first.
func (s *Service) ListUpcoming(ctx context.Context) ([]BookingWithCreator, error) {
	ctx, span := tracer.Start(ctx, "bookings.ListUpcoming")
	defer span.End()

	items, err := s.repo.ListFrom(ctx, DateOnly(s.now().UTC()))
	if err != nil {
		return nil, fail(span, err)
	}
	return items, nil
}

func (s *Service) ListPending(ctx context.Context) ([]BookingWithCreator, error) {
	ctx, span := tracer.Start(ctx, "bookings.ListPending")
	defer span.End()

	items, err := s.repo.ListByStatus(ctx, StatusPending)
	if err != nil {
		return nil, fail(span, err)
	}
	return items, nil
}

func (s *Service) RequestBooking(ctx context.Context, input RequestInput) (*Booking, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrTitleRequired
	}
	if utf8.RuneCountInString(title) > MaxTitleLength {
		return nil, ErrTitleTooLong
	}
	description := strings.TrimSpace(input.Description)
	if utf8.RuneCountInString(description) > MaxDescriptionLength {
		return nil, ErrDescriptionTooLong
	}
	if input.Date.IsZero() {
		return nil, ErrDateRequired
	}
	requesterID := strings.TrimSpace(input.RequesterID)
	if requesterID == "" {
		return nil, ErrRequesterRequired
	}

	ctx, span := tracer.Start(ctx, "bookings.RequestBooking")
	defer span.End()

	booking := Booking{
		ID:          uuid.NewString(),
		BookingDate: DateOnly(input.Date),
		Title:       title,
		Description: description,
		BookedBy:    requesterID,
		Status:      StatusPending,
	}
	span.SetAttributes(
		attribute.String("booking.id", booking.ID),
		attribute.String("booking.date", booking.BookingDate.Format(DateLayout)),
	)

	if err := s.repo.Create(ctx, &booking); err != nil {
		return nil, fail(span, err)
	}
	return &booking, nil
}

// Approve moves a pending booking to approved. Approved bookings are
// returned as they are.
func (s *Service) Approve(ctx context.Context, id string) (*Booking, error) {
	ctx, span := tracer.Start(ctx, "bookings.Approve", trace.WithAttributes(attribute.String("booking.id", id)))
	defer span.End()

	var result Booking
	err := s.repo.Transaction(ctx, func(tx Repository) error {
		booking, err := tx.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if booking.Status == StatusApproved {
			result = *booking
			return nil
		}

		if err := tx.UpdateStatus(ctx, id, StatusApproved); err != nil {
			return err
		}
		booking.Status = StatusApproved
		result = *booking
		return nil
	})
	if err != nil {
		return nil, fail(span, err)
	}

	return &result, nil
}

// Reject deletes a pending booking, freeing its date.
func (s *Service) Reject(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "bookings.Reject", trace.WithAttributes(attribute.String("booking.id", id)))
	defer span.End()

	err := s.repo.Transaction(ctx, func(tx Repository) error {
		booking, err := tx.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if booking.Status != StatusPending {
			return ErrBookingNotPending
		}
		return tx.Delete(ctx, id)
	})
	if err != nil {
		return fail(span, err)
	}
	return nil
}

func (s *Service) Stats(ctx context.Context) (Stats, error) {
	ctx, span := tracer.Start(ctx, "bookings.Stats")
	defer span.End()

	total, err := s.repo.Count(ctx)
	if err != nil {
		return Stats{}, fail(span, err)
	}
	pending, err := s.repo.CountByStatus(ctx, StatusPending)
	if err != nil {
		return Stats{}, fail(span, err)
	}
	approved, err := s.repo.CountByStatus(ctx, StatusApproved)
	if err != nil {
		return Stats{}, fail(span, err)
	}

	return Stats{Total: total, Pending: pending, Approved: approved}, nil
}

// PendingCount is the single source for the pending figure shown in stats
// and on the admin badge.
func (s *Service) PendingCount(ctx context.Context) (int64, error) {
	return s.repo.CountByStatus(ctx, StatusPending)
}

// fail records err on span. Business outcomes are added as events and
// leave the span status unset.
func fail(span trace.Span, err error) error {
	if IsBusinessError(err) {
		span.AddEvent("business_error", trace.WithAttributes(attribute.String("error", err.Error())))
		return err
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}
