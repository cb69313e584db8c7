package bookings

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	bookingsdomain "telicommunity-go/internal/domain/bookings"
	"telicommunity-go/internal/transport/httpserver/handler/common"
	"telicommunity-go/internal/transport/httpserver/middleware"
)

func (h *Handlers) AdminMe(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		common.WriteError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}
	common.WriteJSON(w, http.StatusOK, adminMeResponse{IsAdmin: h.Admins.IsAdmin(r.Context(), user.Email)})
}

func (h *Handlers) ListPending(w http.ResponseWriter, r *http.Request) {
	items, err := h.Bookings.ListPending(r.Context())
	if err != nil {
		h.log.InternalError("admin.pending: fetch failed", err)
		common.WriteError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}
	common.WriteJSON(w, http.StatusOK, toListResponse(items))
}

// bookingID reads the {id} path parameter. Malformed ids can never match a
// row, so they are answered as not found without a query.
func (h *Handlers) bookingID(w http.ResponseWriter, r *http.Request, op string) (string, bool) {
	id := chi.URLParam(r, "id")
	if _, err := uuid.Parse(id); err != nil {
		h.log.BusinessError(op+": malformed booking id", err, "booking_id", id)
		common.WriteError(w, http.StatusNotFound, "booking_not_found", "booking not found")
		return "", false
	}
	return id, true
}

func (h *Handlers) Approve(w http.ResponseWriter, r *http.Request) {
	id, ok := h.bookingID(w, r, "admin.approve")
	if !ok {
		return
	}
	booking, err := h.Bookings.Approve(r.Context(), id)
	if err != nil {
		if errors.Is(err, bookingsdomain.ErrBookingNotFound) {
			h.log.BusinessError("admin.approve: booking not found", err, "booking_id", id)
			common.WriteError(w, http.StatusNotFound, "booking_not_found", "booking not found")
			return
		}
		h.log.InternalError("admin.approve: update failed", err, "booking_id", id)
		common.WriteError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}
	common.WriteJSON(w, http.StatusOK, toBookingResponse(*booking))
}

func (h *Handlers) Reject(w http.ResponseWriter, r *http.Request) {
	id, ok := h.bookingID(w, r, "admin.reject")
	if !ok {
		return
	}
	if err := h.Bookings.Reject(r.Context(), id); err != nil {
		switch {
		case errors.Is(err, bookingsdomain.ErrBookingNotFound):
			h.log.BusinessError("admin.reject: booking not found", err, "booking_id", id)
			common.WriteError(w, http.StatusNotFound, "booking_not_found", "booking not found")
		case errors.Is(err, bookingsdomain.ErrBookingNotPending):
			h.log.BusinessError("admin.reject: booking already approved", err, "booking_id", id)
			common.WriteError(w, http.StatusConflict, "booking_not_pending", "only pending bookings can be rejected")
		default:
			h.log.InternalError("admin.reject: delete failed", err, "booking_id", id)
			common.WriteError(w, http.StatusInternalServerError, "internal_error", "internal error")
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Bookings.Stats(r.Context())
	if err != nil {
		h.log.InternalError("admin.stats: count failed", err)
		common.WriteError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}
	common.WriteJSON(w, http.StatusOK, statsResponse{
		Total:    stats.Total,
		Pending:  stats.Pending,
		Approved: stats.Approved,
	})
}

func (h *Handlers) Badge(w http.ResponseWriter, r *http.Request) {
	pending, err := h.Bookings.PendingCount(r.Context())
	if err != nil {
		h.log.InternalError("admin.badge: count failed", err)
		common.WriteError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}
	common.WriteJSON(w, http.StatusOK, badgeResponse{Pending: pending})
}
