package repo

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite" // pure-Go SQLite
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/go-wa-gateway/internal/domain"
)

func newSendRepoDB(t *testing.T, migrate ...any) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), fmt.Sprintf("send_repo_test_%d.db", time.Now().UnixNano()))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	// Ensure the file handle is released before TempDir cleanup (Windows needs this).
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	if len(migrate) > 0 {
		if err := db.AutoMigrate(migrate...); err != nil {
			t.Fatalf("automigrate: %v", err)
		}
	}
	return db
}

func TestCreateSendRecord_Error_NoTable(t *testing.T) {
	db := newSendRepoDB(t /* no migrations */)
	rec, err := CreateSendRecord(context.Background(), db, "1", "2", "Ana", "hi", "", time.Now())
	if err == nil || rec != nil {
		t.Fatalf("expected error creating without table, got rec=%v err=%v", rec, err)
	}
}

func TestCreateSendRecord_Success_PersistsAndSetsFields(t *testing.T) {
	db := newSendRepoDB(t, &domain.SendRecord{})

	sentAt := time.Date(2024, 6, 1, 14, 30, 45, 0, time.UTC)
	rec, err := CreateSendRecord(context.Background(), db, "1000", "2000", "Ana", "Hi Ana", "http://gw/uploaded-media/a.png", sentAt)
	if err != nil {
		t.Fatalf("CreateSendRecord: %v", err)
	}
	if rec.ID == "" || rec.FromNumber != "1000" || rec.ToNumber != "2000" || rec.RecipientName != "Ana" {
		t.Fatalf("unexpected SendRecord fields: %+v", rec)
	}
	if rec.SendDate != "2024-06-01" || rec.SendTime != "14:30:45" {
		t.Fatalf("split date/time unexpected: %q %q", rec.SendDate, rec.SendTime)
	}

	var got domain.SendRecord
	if err := db.First(&got, "id = ?", rec.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got.Message != "Hi Ana" || got.AttachmentURL != "http://gw/uploaded-media/a.png" {
		t.Fatalf("persisted row mismatch: %+v", got)
	}
}

func TestLookupRecipientName_NotFound(t *testing.T) {
	db := newSendRepoDB(t, &domain.SendRecord{})
	_, err := LookupRecipientName(context.Background(), db, "никогда")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestLookupRecipientName_MostRecentWins(t *testing.T) {
	db := newSendRepoDB(t, &domain.SendRecord{})
	ctx := context.Background()

	older := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	newer := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	if _, err := CreateSendRecord(ctx, db, "1", "555", "Old Name", "m1", "", older); err != nil {
		t.Fatalf("seed old: %v", err)
	}
	if _, err := CreateSendRecord(ctx, db, "1", "555", "New Name", "m2", "", newer); err != nil {
		t.Fatalf("seed new: %v", err)
	}
	// A different recipient must not interfere.
	if _, err := CreateSendRecord(ctx, db, "1", "777", "Other", "m3", "", newer); err != nil {
		t.Fatalf("seed other: %v", err)
	}

	name, err := LookupRecipientName(ctx, db, "555")
	if err != nil {
		t.Fatalf("LookupRecipientName: %v", err)
	}
	if name != "New Name" {
		t.Fatalf("expected most recent name, got %q", name)
	}
}

func TestLookupRecipientName_Error_NoTable(t *testing.T) {
	db := newSendRepoDB(t)
	if _, err := LookupRecipientName(context.Background(), db, "555"); err == nil || errors.Is(err, ErrNotFound) {
		t.Fatalf("expected raw DB error without table, got %v", err)
	}
}

func TestCountAndListSendRecordsPage(t *testing.T) {
	db := newSendRepoDB(t, &domain.SendRecord{})
	ctx := context.Background()

	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		if _, err := CreateSendRecord(ctx, db, "1", "2", "N", fmt.Sprintf("msg-%d", i), "", base.Add(time.Duration(i)*time.Minute)); err != nil {
			t.Fatalf("seed %d: %v", i, err)
		}
	}

	total, err := CountSendRecords(ctx, db)
	if err != nil || total != 5 {
		t.Fatalf("CountSendRecords = %d, %v; want 5", total, err)
	}

	page, err := ListSendRecordsPage(ctx, db, 0, 2)
	if err != nil {
		t.Fatalf("ListSendRecordsPage: %v", err)
	}
	if len(page) != 2 || page[0].Message != "msg-4" || page[1].Message != "msg-3" {
		t.Fatalf("first page unexpected: %+v", page)
	}

	last, err := ListSendRecordsPage(ctx, db, 4, 2)
	if err != nil || len(last) != 1 || last[0].Message != "msg-0" {
		t.Fatalf("last page unexpected: %+v err=%v", last, err)
	}
}

func TestSendRecordStats(t *testing.T) {
	db := newSendRepoDB(t, &domain.SendRecord{})
	ctx := context.Background()

	count, maxAt, err := SendRecordStats(ctx, db)
	if err != nil || count != 0 || maxAt != nil {
		t.Fatalf("empty stats unexpected: %d %v %v", count, maxAt, err)
	}

	newest := time.Date(2024, 7, 1, 12, 0, 0, 0, time.UTC)
	if _, err := CreateSendRecord(ctx, db, "1", "2", "N", "a", "", newest.Add(-time.Hour)); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, err := CreateSendRecord(ctx, db, "1", "2", "N", "b", "", newest); err != nil {
		t.Fatalf("seed: %v", err)
	}

	count, maxAt, err = SendRecordStats(ctx, db)
	if err != nil {
		t.Fatalf("SendRecordStats: %v", err)
	}
	if count != 2 || maxAt == nil || !maxAt.Equal(newest) {
		t.Fatalf("stats unexpected: count=%d maxAt=%v", count, maxAt)
	}
}
