package usecase

import (
	"log"

	auditdomain "billmailer/internal/auditlog/domain"
	"billmailer/internal/auditlog/repository"
)

// AuditLogUsecase reads and appends the send log.
type AuditLogUsecase interface {
	// LastStatuses returns, per account key, the most recent outcome among
	// entries matching the exact archive filename. Keys with no entry are
	// absent from the map so callers can distinguish "unknown" from any
	// recorded state.
	LastStatuses(archiveFilename string, accountKeys []string) map[string]auditdomain.LastStatus

	// Append records one concluded send attempt. Write failures are logged
	// operationally and swallowed: the email has already been transmitted
	// (or definitively failed) by the time the log write is attempted, so a
	// failed audit write must never change the send outcome.
	Append(entry *auditdomain.SendLogEntry)

	// RecentForArchive lists log entries for the audit screen.
	RecentForArchive(archiveFilename string, limit int) ([]auditdomain.SendLogEntry, error)
}

type auditLogUsecase struct {
	repo repository.SendLogRepository
}

// NewAuditLogUsecase creates a new instance of auditLogUsecase
func NewAuditLogUsecase(repo repository.SendLogRepository) AuditLogUsecase {
	return &auditLogUsecase{
		repo: repo,
	}
}

func (u *auditLogUsecase) LastStatuses(archiveFilename string, accountKeys []string) map[string]auditdomain.LastStatus {
	entries, err := u.repo.FindByArchiveAndKeys(archiveFilename, accountKeys)
	if err != nil {
		log.Printf("[WARN] send log query failed for %s: %v", archiveFilename, err)
		return map[string]auditdomain.LastStatus{}
	}
	return ReduceLatest(entries)
}

// ReduceLatest takes the max-by-timestamp entry per account key. The store's
// result ordering is never trusted.
func ReduceLatest(entries []auditdomain.SendLogEntry) map[string]auditdomain.LastStatus {
	latest := make(map[string]auditdomain.LastStatus, len(entries))
	for _, e := range entries {
		if cur, ok := latest[e.AccountKey]; ok && !e.SentAt.After(cur.SentAt) {
			continue
		}
		latest[e.AccountKey] = auditdomain.LastStatus{Status: e.Status, SentAt: e.SentAt}
	}
	return latest
}

func (u *auditLogUsecase) Append(entry *auditdomain.SendLogEntry) {
	if err := u.repo.Append(entry); err != nil {
		log.Printf("[ERROR] send log append failed for %s/%s: %v",
			entry.ArchiveFilename, entry.AccountKey, err)
	}
}

func (u *auditLogUsecase) RecentForArchive(archiveFilename string, limit int) ([]auditdomain.SendLogEntry, error) {
	return u.repo.FindByArchive(archiveFilename, limit)
}
