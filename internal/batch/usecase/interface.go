package usecase

import "context"

// Actor is the authenticated operator driving sends. Its email is recorded
// as the sender identity on every log entry.
type Actor struct {
	ID    string
	Email string
	Admin bool
}

// MailMessage is one logical send request: a plain-text body plus exactly
// one PDF attachment.
type MailMessage struct {
	ToEmail            string
	ToName             string
	Subject            string
	Body               string
	AttachmentFilename string
	Attachment         []byte
}

// Mailer is the transactional mail collaborator. A nil error means the
// provider acknowledged the message; the returned ID is provider-assigned.
type Mailer interface {
	Send(ctx context.Context, msg *MailMessage) (messageID string, err error)
}

// SendLocker guards against two operators sending the same row concurrently
// across sessions. Acquire returns ok=false when another holder has the
// (archive, account key) pair; implementations degrade to ok=true when the
// lock backend is unreachable, since the guard is best-effort.
type SendLocker interface {
	Acquire(ctx context.Context, archiveFilename, accountKey string) (release func(), ok bool)
}
