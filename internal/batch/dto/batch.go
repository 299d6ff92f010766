package dto

import auditdomain "billmailer/internal/auditlog/domain"

// RowView is one reconciled row as the review screen sees it.
type RowView struct {
	Key              string                  `json:"key"`
	AccountKey       string                  `json:"account_key"`
	PDFFilename      string                  `json:"pdf_filename"`
	ArchiveEntryPath string                  `json:"archive_entry_path"`
	TradeDate        string                  `json:"trade_date,omitempty"`
	ContactName      string                  `json:"contact_name,omitempty"`
	ContactEmail     string                  `json:"contact_email,omitempty"`
	Status           string                  `json:"status"`
	State            string                  `json:"state"`
	Error            string                  `json:"error,omitempty"`
	LastStatus       *auditdomain.LastStatus `json:"last_status,omitempty"`
	Selected         bool                    `json:"selected"`
}

type UploadResponse struct {
	ArchiveFilename string    `json:"archive_filename"`
	Source          string    `json:"source"`
	Diagnostics     []string  `json:"diagnostics,omitempty"`
	Total           int       `json:"total"`
	Pending         int       `json:"pending"`
	Blocked         int       `json:"blocked"`
	Rows            []RowView `json:"rows"`
}

type RowsResponse struct {
	ArchiveFilename string    `json:"archive_filename"`
	Sending         bool      `json:"sending"`
	Rows            []RowView `json:"rows"`
}

type SelectionRequest struct {
	Keys []string `json:"keys"`
}

type FilterRequest struct {
	Status string `json:"status"`
	Search string `json:"search"`
}

type SendRowRequest struct {
	RowKey string `json:"row_key" binding:"required"`
}

type BulkSendRequest struct {
	// SkipAlreadySent defaults to true: the common case is re-uploading the
	// same archive after a partial failure.
	SkipAlreadySent *bool `json:"skip_already_sent"`
}

// SendOutcome reports one row's attempt. Refused is true when the transition
// into sending was refused as a no-op (already sending, sent earlier in the
// session, blocked, or locked by another operator).
type SendOutcome struct {
	RowKey    string `json:"row_key"`
	State     string `json:"state"`
	Error     string `json:"error,omitempty"`
	MessageID string `json:"message_id,omitempty"`
	Refused   bool   `json:"refused,omitempty"`
}

type BulkResult struct {
	Attempted int `json:"attempted"`
	Sent      int `json:"sent"`
	Failed    int `json:"failed"`
	Skipped   int `json:"skipped"`
}
