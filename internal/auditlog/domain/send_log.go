package domain

import "time"

const (
	StatusSent   = "sent"
	StatusFailed = "failed"
)

// SendLogEntry is one immutable record of a concluded send attempt. The log
// is append-only: entries are never updated or deleted, and it is the sole
// source of truth for "was this account key inside this archive already sent".
type SendLogEntry struct {
	ID              string    `json:"id" gorm:"primaryKey"`
	SentAt          time.Time `json:"sent_at" gorm:"not null"`
	ArchiveFilename string    `json:"archive_filename" gorm:"index:idx_sendlog_archive_key;not null"`
	AccountKey      string    `json:"account_key" gorm:"index:idx_sendlog_archive_key;not null"`
	TradeDate       string    `json:"trade_date,omitempty"`
	ToEmail         string    `json:"to_email" gorm:"not null"`
	ToName          string    `json:"to_name,omitempty"`
	Status          string    `json:"status" gorm:"not null"`
	Error           string    `json:"error,omitempty"`
	MessageID       string    `json:"message_id,omitempty"`
	SenderIdentity  string    `json:"sender_identity" gorm:"not null"`
}

// LastStatus is the most recent known outcome for one (archive, account key)
// pair, used to badge rows as "sent earlier" or "failed earlier".
type LastStatus struct {
	Status string    `json:"status"`
	SentAt time.Time `json:"sent_at"`
}
