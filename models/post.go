package models

import (
	"time"

	"gorm.io/gorm"
)

// Post is a published article filed under a free-form category.
type Post struct {
	ID       uint      `gorm:"primaryKey" json:"id"`
	Title    string    `gorm:"size:100;not null" json:"title"`
	Category string    `gorm:"size:50;not null;index" json:"category"`
	Content  string    `gorm:"type:text;not null" json:"content"`
	Date     time.Time `gorm:"not null" json:"date"`
	Comments []Comment `gorm:"foreignKey:PostID" json:"-"`
}

// TableName keeps the table name of existing deployments.
func (Post) TableName() string { return "post" }

// BeforeCreate stamps the creation time when the caller did not provide one.
func (p *Post) BeforeCreate(tx *gorm.DB) error {
	if p.Date.IsZero() {
		p.Date = time.Now()
	}
	return nil
}
