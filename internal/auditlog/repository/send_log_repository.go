package repository

import (
	"time"

	auditdomain "billmailer/internal/auditlog/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// sendLogRepository implements SendLogRepository on Postgres via GORM.
type sendLogRepository struct {
	db *gorm.DB
}

// NewSendLogRepository creates a new instance of sendLogRepository
func NewSendLogRepository(db *gorm.DB) SendLogRepository {
	return &sendLogRepository{
		db: db,
	}
}

func (r *sendLogRepository) Append(entry *auditdomain.SendLogEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.SentAt.IsZero() {
		entry.SentAt = time.Now()
	}
	return r.db.Create(entry).Error
}

// FindByArchiveAndKeys returns every entry matching the exact archive filename
// and any of the given account keys. No ordering is requested; callers must
// not assume store ordering and reduce to most-recent themselves.
func (r *sendLogRepository) FindByArchiveAndKeys(archiveFilename string, accountKeys []string) ([]auditdomain.SendLogEntry, error) {
	if len(accountKeys) == 0 {
		return nil, nil
	}
	var entries []auditdomain.SendLogEntry
	err := r.db.
		Where("archive_filename = ? AND account_key IN ?", archiveFilename, accountKeys).
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *sendLogRepository) FindByArchive(archiveFilename string, limit int) ([]auditdomain.SendLogEntry, error) {
	var entries []auditdomain.SendLogEntry
	q := r.db.Where("archive_filename = ?", archiveFilename).Order("sent_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}
