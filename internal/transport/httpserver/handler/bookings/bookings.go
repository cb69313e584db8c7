package bookings

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	bookingsdomain "telicommunity-go/internal/domain/bookings"
	"telicommunity-go/internal/transport/httpserver/handler/common"
	"telicommunity-go/internal/transport/httpserver/middleware"
)

func (h *Handlers) ListUpcoming(w http.ResponseWriter, r *http.Request) {
	items, err := h.Bookings.ListUpcoming(r.Context())
	if err != nil {
		h.log.InternalError("bookings.list: fetch failed", err)
		common.WriteError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}
	common.WriteJSON(w, http.StatusOK, toListResponse(items))
}

const maxRequestBody = 32 << 10

func (h *Handlers) RequestBooking(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		common.WriteError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	var req createBookingRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			common.WriteError(w, http.StatusRequestEntityTooLarge, "request_too_large", "request body too large")
			return
		}
		common.WriteError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}

	var date time.Time
	if value := strings.TrimSpace(req.BookingDate); value != "" {
		parsed, err := time.Parse(bookingsdomain.DateLayout, value)
		if err != nil {
			common.WriteError(w, http.StatusBadRequest, "invalid_date", "booking_date must be YYYY-MM-DD")
			return
		}
		date = parsed
	}

	booking, err := h.Bookings.RequestBooking(r.Context(), bookingsdomain.RequestInput{
		Date:        date,
		Title:       req.Title,
		Description: req.Description,
		RequesterID: user.ID,
	})
	if err != nil {
		switch {
		case errors.Is(err, bookingsdomain.ErrTitleRequired):
			h.log.BusinessError("bookings.request: empty title", err, "user_id", user.ID)
			common.WriteError(w, http.StatusBadRequest, "title_required", "Please enter an event title.")
		case errors.Is(err, bookingsdomain.ErrTitleTooLong):
			h.log.BusinessError("bookings.request: title too long", err, "user_id", user.ID)
			common.WriteError(w, http.StatusBadRequest, "title_too_long", fmt.Sprintf("Event title must be at most %d characters.", bookingsdomain.MaxTitleLength))
		case errors.Is(err, bookingsdomain.ErrDescriptionTooLong):
			h.log.BusinessError("bookings.request: description too long", err, "user_id", user.ID)
			common.WriteError(w, http.StatusBadRequest, "description_too_long", fmt.Sprintf("Description must be at most %d characters.", bookingsdomain.MaxDescriptionLength))
		case errors.Is(err, bookingsdomain.ErrDateRequired):
			h.log.BusinessError("bookings.request: missing date", err, "user_id", user.ID)
			common.WriteError(w, http.StatusBadRequest, "date_required", "Please pick a date.")
		case errors.Is(err, bookingsdomain.ErrSlotTaken):
			h.log.BusinessError("bookings.request: slot taken", err, "user_id", user.ID, "date", req.BookingDate)
			common.WriteError(w, http.StatusConflict, "slot_taken", "This date has just been requested/booked by someone else.")
		case errors.Is(err, bookingsdomain.ErrProfileRequired):
			h.log.BusinessError("bookings.request: no profile", err, "user_id", user.ID)
			common.WriteError(w, http.StatusConflict, "profile_required", "Please set up your profile first.")
		default:
			h.log.InternalError("bookings.request: create failed", err, "user_id", user.ID)
			common.WriteError(w, http.StatusInternalServerError, "internal_error", "internal error")
		}
		return
	}

	common.WriteJSON(w, http.StatusCreated, toBookingResponse(*booking))
}
