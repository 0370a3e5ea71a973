package posts

import "time"

type Post struct {
	ID        string    `json:"id" gorm:"primaryKey;size:36"`
	Title     string    `json:"title" gorm:"size:255;not null"`
	SenderID  string    `json:"senderID" gorm:"size:255;not null;index"`
	OwnerID   string    `json:"owner" gorm:"size:36;not null;index"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Post) TableName() string {
	return "posts"
}

type Input struct {
	Title    string `json:"title"`
	SenderID string `json:"senderID"`
}
