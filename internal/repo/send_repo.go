// Package repo implements the data persistence layer for the send log,
// backed by GORM. This file provides repository functions for SendRecord
// rows and the recipient-name projection read from them.
//
// All functions accept a *gorm.DB handle and are context-aware, making them
// safe for use within transactions or connection-scoped operations. They
// follow the "thin repository" approach: no business logic, only CRUD
// persistence and query composition.
//
// Error semantics:
//   - When no row matches a lookup, functions return gorm.ErrRecordNotFound
//     (also exported here as ErrNotFound for convenience).
//   - On DB errors (constraint violations, connectivity issues, etc.),
//     the raw gorm error is propagated.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-wa-gateway/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// CreateSendRecord inserts one audit row for a dispatched message. The row
// ID is a randomly generated UUID and CreatedAt is set to UTC; sentAt also
// feeds the legacy split date/time columns.
func CreateSendRecord(ctx context.Context, db *gorm.DB, from, to, name, message, attachmentURL string, sentAt time.Time) (*domain.SendRecord, error) {
	sentAt = sentAt.UTC()
	rec := &domain.SendRecord{
		ID:            uuid.NewString(),
		FromNumber:    from,
		ToNumber:      to,
		RecipientName: name,
		Message:       message,
		AttachmentURL: attachmentURL,
		SendDate:      sentAt.Format("2006-01-02"),
		SendTime:      sentAt.Format("15:04:05"),
		CreatedAt:     sentAt,
	}
	if err := db.WithContext(ctx).Create(rec).Error; err != nil {
		return nil, err
	}
	return rec, nil
}

// LookupRecipientName returns the display name recorded for toNumber by the
// most recent prior send (CreatedAt DESC, ID DESC as a deterministic
// tie-break). It returns ErrNotFound when the recipient has never been
// written to; the caller decides the fallback.
func LookupRecipientName(ctx context.Context, db *gorm.DB, toNumber string) (string, error) {
	var row struct {
		RecipientName string
	}
	res := db.WithContext(ctx).
		Model(&domain.SendRecord{}).
		Select("name AS recipient_name").
		Where("to_number = ?", toNumber).
		Order("created_at DESC, id DESC").
		Limit(1).
		Scan(&row)
	if res.Error != nil {
		return "", res.Error
	}
	if res.RowsAffected == 0 {
		return "", ErrNotFound
	}
	return row.RecipientName, nil
}

// CountSendRecords returns the total number of rows in the send log.
// A raw COUNT is used so a missing table surfaces as an error.
func CountSendRecords(ctx context.Context, db *gorm.DB) (int64, error) {
	var total int64
	err := db.WithContext(ctx).Raw("SELECT COUNT(*) FROM sentdata WHERE deleted_at IS NULL").Scan(&total).Error
	return total, err
}

// ListSendRecordsPage returns a paginated slice of send records ordered most
// recent first (CreatedAt DESC, ID DESC). The caller computes offset/limit.
func ListSendRecordsPage(ctx context.Context, db *gorm.DB, offset, limit int) ([]domain.SendRecord, error) {
	var out []domain.SendRecord
	err := db.WithContext(ctx).
		Order("created_at DESC, id DESC").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}
