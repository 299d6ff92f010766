package domain

import (
	"fmt"
	"strings"

	"billmailer/internal/archive"
	contactdomain "billmailer/internal/contact/domain"
)

// Row sendability, derived purely from contact resolution.
const (
	RowStatusPending = "pending"
	RowStatusBlocked = "blocked"
)

// Per-row send states within one archive session. Valid transitions:
// idle → sending → {sent | failed}; failed → sending on retry. Sent is
// terminal for the session.
const (
	SendStateIdle    = "idle"
	SendStateSending = "sending"
	SendStateSent    = "sent"
	SendStateFailed  = "failed"
)

// RowKey identifies a row across re-renders and send attempts within one
// archive session. Duplicate account keys across file entries stay distinct
// because the entry path is part of the key.
type RowKey struct {
	AccountKey       string
	ArchiveEntryPath string
	PDFFilename      string
}

const rowKeySep = "::"

func (k RowKey) String() string {
	return k.AccountKey + rowKeySep + k.ArchiveEntryPath + rowKeySep + k.PDFFilename
}

// ParseRowKey inverts RowKey.String.
func ParseRowKey(s string) (RowKey, error) {
	parts := strings.SplitN(s, rowKeySep, 3)
	if len(parts) != 3 || parts[0] == "" || parts[2] == "" {
		return RowKey{}, fmt.Errorf("malformed row key %q", s)
	}
	return RowKey{AccountKey: parts[0], ArchiveEntryPath: parts[1], PDFFilename: parts[2]}, nil
}

// ReconciledRow is a billing record joined with at most one contact.
type ReconciledRow struct {
	Record  archive.BillingRecord  `json:"record"`
	Contact *contactdomain.Contact `json:"contact,omitempty"`
	Status  string                 `json:"status"`
}

func (r *ReconciledRow) Key() RowKey {
	return RowKey{
		AccountKey:       r.Record.AccountKey,
		ArchiveEntryPath: r.Record.ArchiveEntryPath,
		PDFFilename:      r.Record.PDFFilename,
	}
}

// Sendable reports whether the row resolved to a contact with an email.
func (r *ReconciledRow) Sendable() bool {
	return r.Status == RowStatusPending && r.Contact != nil && r.Contact.Email != ""
}

// SendState is the transient per-row attempt state. It is reset whenever a
// new archive is parsed and never persisted directly.
type SendState struct {
	State string `json:"state"`
	Error string `json:"error,omitempty"`
}
