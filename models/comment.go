package models

import (
	"time"

	"gorm.io/gorm"
)

// Comment is a reply left on a post. ParentID points at another comment but
// is not a foreign key: nothing guarantees the parent exists or belongs to
// the same post, and any integer the form carried is kept, negative ones too.
type Comment struct {
	ID       uint      `gorm:"primaryKey" json:"id"`
	PostID   uint      `gorm:"index;not null" json:"post_id"`
	ParentID *int64    `gorm:"index" json:"parent_id"`
	Content  string    `gorm:"type:text;not null" json:"content"`
	Date     time.Time `gorm:"not null" json:"date"`
}

func (Comment) TableName() string { return "comment" }

func (c *Comment) BeforeCreate(tx *gorm.DB) error {
	if c.Date.IsZero() {
		c.Date = time.Now()
	}
	return nil
}
