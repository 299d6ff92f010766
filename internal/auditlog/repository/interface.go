package repository

import auditdomain "billmailer/internal/auditlog/domain"

// SendLogRepository persists the append-only send log. There are deliberately
// no update or delete operations.
type SendLogRepository interface {
	Append(entry *auditdomain.SendLogEntry) error
	FindByArchiveAndKeys(archiveFilename string, accountKeys []string) ([]auditdomain.SendLogEntry, error)
	FindByArchive(archiveFilename string, limit int) ([]auditdomain.SendLogEntry, error)
}
