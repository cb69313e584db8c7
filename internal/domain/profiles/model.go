package profiles

import "time"

const (
	MinAge            = 13
	MinUsernameLength = 3
	AvatarContentType = "image/jpeg"
)

type Profile struct {
	ID        string    `gorm:"type:uuid;primaryKey"`
	FullName  string    `gorm:"type:text;not null"`
	Username  string    `gorm:"type:text;not null"`
	Age       int       `gorm:"not null"`
	City      string    `gorm:"type:text;not null"`
	AvatarURL *string   `gorm:"type:text"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (Profile) TableName() string {
	return "profiles"
}

type SetupInput struct {
	UserID   string
	FullName string
	Username string
	Age      int
	City     string
	// Avatar carries freshly picked JPEG bytes; when empty AvatarURL is kept as is.
	Avatar    []byte
	AvatarURL string
}
