package apiclient

import (
	"context"
	"net/http"
	"net/url"
	"time"
)

const DateLayout = "2006-01-02"

type Creator struct {
	FullName string `json:"full_name"`
	Username string `json:"username"`
}

type Booking struct {
	ID          string    `json:"id"`
	BookingDate string    `json:"booking_date"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	BookedBy    string    `json:"booked_by"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	Creator     *Creator  `json:"creator,omitempty"`
}

type Stats struct {
	Total    int64 `json:"total"`
	Pending  int64 `json:"pending"`
	Approved int64 `json:"approved"`
}

type listBookings struct {
	Items []Booking `json:"items"`
}

func (c *Client) ListUpcoming(ctx context.Context) ([]Booking, error) {
	var resp listBookings
	if err := c.do(ctx, http.MethodGet, "/api/bookings", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Items, nil
}

func (c *Client) RequestBooking(ctx context.Context, date time.Time, title, description string) (Booking, error) {
	body := map[string]string{
		"booking_date": date.Format(DateLayout),
		"title":        title,
		"description":  description,
	}
	var booking Booking
	err := c.do(ctx, http.MethodPost, "/api/bookings", body, &booking)
	return booking, err
}

func (c *Client) IsAdmin(ctx context.Context) (bool, error) {
	var resp struct {
		IsAdmin bool `json:"is_admin"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/admin/me", nil, &resp); err != nil {
		return false, err
	}
	return resp.IsAdmin, nil
}

func (c *Client) ListPending(ctx context.Context) ([]Booking, error) {
	var resp listBookings
	if err := c.do(ctx, http.MethodGet, "/api/admin/bookings/pending", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Items, nil
}

func (c *Client) Approve(ctx context.Context, id string) (Booking, error) {
	var booking Booking
	err := c.do(ctx, http.MethodPost, "/api/admin/bookings/"+url.PathEscape(id)+"/approve", nil, &booking)
	return booking, err
}

func (c *Client) Reject(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/admin/bookings/"+url.PathEscape(id), nil, nil)
}

func (c *Client) Stats(ctx context.Context) (Stats, error) {
	var stats Stats
	err := c.do(ctx, http.MethodGet, "/api/admin/stats", nil, &stats)
	return stats, err
}

func (c *Client) Badge(ctx context.Context) (int64, error) {
	var resp struct {
		Pending int64 `json:"pending"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/admin/badge", nil, &resp); err != nil {
		return 0, err
	}
	return resp.Pending, nil
}
