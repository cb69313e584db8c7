package admins

import "time"

type Admin struct {
	Email     string    `gorm:"type:text;primaryKey"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (Admin) TableName() string {
	return "admins"
}
