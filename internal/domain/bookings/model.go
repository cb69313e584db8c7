package bookings

import "time"

const Table = "temple_bookings"

const (
	StatusPending  = "pending"
	StatusApproved = "approved"
)

const DateLayout = "2006-01-02"

// Length limits in characters, matching the table CHECK constraints.
const (
	MaxTitleLength       = 120
	MaxDescriptionLength = 2000
)

type Booking struct {
	ID          string    `gorm:"type:uuid;primaryKey"`
	BookingDate time.Time `gorm:"type:date;not null"`
	Title       string    `gorm:"type:text;not null"`
	Description string    `gorm:"type:text;not null"`
	BookedBy    string    `gorm:"type:uuid;not null"`
	Status      string    `gorm:"type:text;not null"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
}

func (Booking) TableName() string {
	return Table
}

// Creator is the joined slice of the booking author's profile.
type Creator struct {
	FullName string
	Username string
}

type BookingWithCreator struct {
	Booking
	Creator Creator
}

type RequestInput struct {
	Date        time.Time
	Title       string
	Description string
	RequesterID string
}

type Stats struct {
	Total    int64
	Pending  int64
	Approved int64
}

// DateOnly drops the clock part, keeping the calendar date in UTC.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
