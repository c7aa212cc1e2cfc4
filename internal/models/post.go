package models

import (
	"time"

	"gorm.io/datatypes"
)

// Post is a ledger record keyed by its sequential id
type Post struct {
	PostID       uint64                      `gorm:"primaryKey;autoIncrement:false;column:post_id"`
	PostTitle    string                      `gorm:"type:text;not null;column:post_title"`
	ExternalID   string                      `gorm:"type:varchar(128);not null;column:external_id"`
	Text         string                      `gorm:"type:text;not null;column:text"`
	Tags         datatypes.JSONSlice[string] `gorm:"column:tags"`
	Author       string                      `gorm:"type:varchar(128);not null;index;column:author"`
	CreationDate time.Time                   `gorm:"not null;column:creation_date"`
	LastEditDate *time.Time                  `gorm:"column:last_edit_date"`
	Editor       *string                     `gorm:"type:varchar(128);column:editor"`
	Deleter      *string                     `gorm:"type:varchar(128);column:deleter"`
	DeletionDate *time.Time                  `gorm:"column:deletion_date"`
}

// TableName specifies the table name for Post
func (Post) TableName() string {
	return "ledger_posts"
}
