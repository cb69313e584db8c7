package bookings

import (
	"time"

	bookingsdomain "telicommunity-go/internal/domain/bookings"
)

type createBookingRequest struct {
	BookingDate string `json:"booking_date"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

type creatorResponse struct {
	FullName string `json:"full_name"`
	Username string `json:"username"`
}

type bookingResponse struct {
	ID          string           `json:"id"`
	BookingDate string           `json:"booking_date"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	BookedBy    string           `json:"booked_by"`
	Status      string           `json:"status"`
	CreatedAt   time.Time        `json:"created_at"`
	Creator     *creatorResponse `json:"creator,omitempty"`
}

type listBookingsResponse struct {
	Items []bookingResponse `json:"items"`
}

type statsResponse struct {
	Total    int64 `json:"total"`
	Pending  int64 `json:"pending"`
	Approved int64 `json:"approved"`
}

type badgeResponse struct {
	Pending int64 `json:"pending"`
}

type adminMeResponse struct {
	IsAdmin bool `json:"is_admin"`
}

func toBookingResponse(b bookingsdomain.Booking) bookingResponse {
	return bookingResponse{
		ID:          b.ID,
		BookingDate: b.BookingDate.Format(bookingsdomain.DateLayout),
		Title:       b.Title,
		Description: b.Description,
		BookedBy:    b.BookedBy,
		Status:      b.Status,
		CreatedAt:   b.CreatedAt,
	}
}

func toListResponse(items []bookingsdomain.BookingWithCreator) listBookingsResponse {
	result := make([]bookingResponse, 0, len(items))
	for _, item := range items {
		resp := toBookingResponse(item.Booking)
		resp.Creator = &creatorResponse{
			FullName: item.Creator.FullName,
			Username: item.Creator.Username,
		}
		result = append(result, resp)
	}
	return listBookingsResponse{Items: result}
}
