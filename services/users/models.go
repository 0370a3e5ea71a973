package users

import "time"

type User struct {
	ID             string    `json:"id" gorm:"primaryKey;size:36"`
	Username       string    `json:"username" gorm:"uniqueIndex;size:100;not null"`
	Email          string    `json:"email" gorm:"uniqueIndex;size:255;not null"`
	PasswordDigest string    `json:"-" gorm:"size:255;not null"`
	ProfileImage   string    `json:"profileImage" gorm:"size:500"`
	Bio            string    `json:"bio" gorm:"size:500"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

func (User) TableName() string {
	return "users"
}
