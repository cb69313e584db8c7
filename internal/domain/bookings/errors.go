package bookings

import "errors"

var (
	ErrBookingNotFound   = errors.New("booking not found")
	ErrSlotTaken         = errors.New("slot taken")
	ErrTitleRequired     = errors.New("title is required")
	ErrDateRequired      = errors.New("booking date is required")
	ErrRequesterRequired = errors.New("requester is required")
	ErrBookingNotPending = errors.New("booking is not pending")
	ErrProfileRequired   = errors.New("requester has no profile")

	ErrTitleTooLong       = errors.New("title is too long")
	ErrDescriptionTooLong = errors.New("description is too long")
)

// IsBusinessError reports outcomes callers are expected to handle, as
// opposed to storage or transport failures.
func IsBusinessError(err error) bool {
	for _, target := range []error{
		ErrBookingNotFound,
		ErrSlotTaken,
		ErrTitleRequired,
		ErrDateRequired,
		ErrRequesterRequired,
		ErrBookingNotPending,
		ErrProfileRequired,
		ErrTitleTooLong,
		ErrDescriptionTooLong,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
