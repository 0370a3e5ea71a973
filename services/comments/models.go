package comments

import "time"

type Comment struct {
	ID        string    `json:"id" gorm:"primaryKey;size:36"`
	PostID    string    `json:"postId" gorm:"size:36;not null;index"`
	Content   string    `json:"content" gorm:"type:text;not null"`
	Author    string    `json:"author" gorm:"size:255;not null"`
	OwnerID   string    `json:"owner" gorm:"size:36;not null;index"`
	CreatedAt time.Time `json:"createdAt"`
}

func (Comment) TableName() string {
	return "comments"
}

type Input struct {
	Content string `json:"content"`
	Author  string `json:"author"`
}
