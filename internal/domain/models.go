// Package domain defines the persistence model for the gateway's send log.
// The type here is mapped with GORM and mirrors the historical `sentdata`
// table: one row per successfully dispatched message.
package domain

import (
	"time"

	"gorm.io/gorm"
)

// SendRecord is the audit row written after a message has been accepted by
// the messaging transport and before the HTTP caller is told "success".
//
// Fields:
//   - ID: stable UUID primary key (char(36)).
//   - FromNumber / ToNumber: bare sender and recipient identifiers as the
//     frontend submitted them (no transport address suffix).
//   - RecipientName: the display name resolved at send time (or the "User"
//     fallback); denormalized on purpose so the row is self-contained.
//   - Message: the final text after placeholder substitution.
//   - AttachmentURL: public URL of the logged attachment, empty for plain
//     text sends. When both an image and a document were sent, this holds
//     the image URL (historical precedence).
//   - SendDate / SendTime: the original schema's split date ("2006-01-02")
//     and time-of-day columns, kept for frontend compatibility.
//   - CreatedAt: insertion timestamp; the recipient-name lookup orders by it.
type SendRecord struct {
	ID            string         `json:"id"             gorm:"type:char(36);primaryKey"`
	FromNumber    string         `json:"from"           gorm:"column:from_number;type:varchar(32);not null;index"`
	ToNumber      string         `json:"to"             gorm:"column:to_number;type:varchar(32);not null;index:idx_recipient,priority:1"`
	RecipientName string         `json:"name"           gorm:"column:name;type:varchar(255);not null"`
	Message       string         `json:"message"        gorm:"type:text;not null"`
	AttachmentURL string         `json:"url,omitempty"  gorm:"column:url;type:varchar(512)"`
	SendDate      string         `json:"date"           gorm:"column:send_date;type:varchar(10);not null"`
	SendTime      string         `json:"time"           gorm:"column:send_time;type:varchar(16);not null"`
	CreatedAt     time.Time      `json:"created_at"     gorm:"index:idx_recipient,priority:2"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `json:"-"              gorm:"index"`
}

// TableName returns the database table name for SendRecord.
func (SendRecord) TableName() string { return "sentdata" }
