package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"billmailer/internal/archive"
	auditdomain "billmailer/internal/auditlog/domain"
	audituc "billmailer/internal/auditlog/usecase"
	batchdomain "billmailer/internal/batch/domain"
	batchdto "billmailer/internal/batch/dto"
	contactdomain "billmailer/internal/contact/domain"
	contactuc "billmailer/internal/contact/usecase"
	"billmailer/pkg/mask"

	"golang.org/x/sync/errgroup"
)

var (
	ErrNoSession    = errors.New("no archive uploaded in this session")
	ErrBulkInFlight = errors.New("a bulk send is already in progress")
)

// BatchUsecase drives the archive session: upload/reconcile, the review
// surface's selection and filter state, and the per-row send state machine.
type BatchUsecase interface {
	Upload(ctx context.Context, actor Actor, data []byte, filename string) (*batchdto.UploadResponse, error)
	Rows(actor Actor) (*batchdto.RowsResponse, error)
	SetSelection(actor Actor, keys []string) error
	SetFilter(actor Actor, status, search string) error

	// RefreshContacts re-resolves the given account keys and recomputes only
	// the affected rows. Called after the inline add-contact flow.
	RefreshContacts(actor Actor, accountKeys []string)

	SendRow(ctx context.Context, actor Actor, rowKey string) (*batchdto.SendOutcome, error)
	SendAllPending(ctx context.Context, actor Actor, skipAlreadySent bool) (*batchdto.BulkResult, error)
	SendSelected(ctx context.Context, actor Actor, skipAlreadySent bool) (*batchdto.BulkResult, error)
	RetryFailed(ctx context.Context, actor Actor) (*batchdto.BulkResult, error)

	RowPDF(actor Actor, rowKey string) (filename string, data []byte, err error)

	// SendLog lists recorded send attempts. An empty archiveFilename means
	// the current session's archive.
	SendLog(actor Actor, archiveFilename string, limit int) ([]auditdomain.SendLogEntry, error)
}

type batchUsecase struct {
	contacts contactuc.ContactUsecase
	audit    audituc.AuditLogUsecase
	mailer   Mailer
	locker   SendLocker
	sessions *sessionManager
}

// NewBatchUsecase creates a new instance of batchUsecase
func NewBatchUsecase(contacts contactuc.ContactUsecase, audit audituc.AuditLogUsecase, mailer Mailer, locker SendLocker) BatchUsecase {
	return &batchUsecase{
		contacts: contacts,
		audit:    audit,
		mailer:   mailer,
		locker:   locker,
		sessions: newSessionManager(),
	}
}

func (u *batchUsecase) Upload(ctx context.Context, actor Actor, data []byte, filename string) (*batchdto.UploadResponse, error) {
	reader, err := archive.NewReader(data, filename)
	if err != nil {
		return nil, err
	}
	res := archive.Parse(reader)

	keys := make([]string, 0, len(res.Records))
	for _, rec := range res.Records {
		keys = append(keys, rec.AccountKey)
	}

	// Contact resolution and audit prefetch are independent reads; both
	// degrade to empty results on store errors.
	var (
		contacts map[string]*contactdomain.Contact
		statuses map[string]auditdomain.LastStatus
	)
	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		contacts = u.contacts.Resolve(keys)
		return nil
	})
	g.Go(func() error {
		statuses = u.audit.LastStatuses(filename, keys)
		return nil
	})
	_ = g.Wait()

	rows := Reconcile(res.Records, contacts)
	sess := newSession(reader, res, rows, statuses)

	if !u.sessions.replace(actor.ID, sess) {
		return nil, ErrBulkInFlight
	}

	resp := &batchdto.UploadResponse{
		ArchiveFilename: filename,
		Source:          res.Source,
		Diagnostics:     res.Diagnostics,
		Total:           len(rows),
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	for i := range rows {
		if rows[i].Status == batchdomain.RowStatusPending {
			resp.Pending++
		} else {
			resp.Blocked++
		}
		resp.Rows = append(resp.Rows, rowView(sess, &sess.rows[i]))
	}
	return resp, nil
}

func (u *batchUsecase) Rows(actor Actor) (*batchdto.RowsResponse, error) {
	sess := u.sessions.get(actor.ID)
	if sess == nil {
		return nil, ErrNoSession
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	resp := &batchdto.RowsResponse{
		ArchiveFilename: sess.archive.Filename,
		Sending:         sess.sending,
	}
	search := strings.ToLower(sess.search)
	for i := range sess.rows {
		row := &sess.rows[i]
		if sess.statusFilter != "" && row.Status != sess.statusFilter {
			continue
		}
		if search != "" && !rowMatches(row, search) {
			continue
		}
		resp.Rows = append(resp.Rows, rowView(sess, row))
	}
	return resp, nil
}

func rowMatches(row *batchdomain.ReconciledRow, search string) bool {
	if strings.Contains(strings.ToLower(row.Record.AccountKey), search) ||
		strings.Contains(strings.ToLower(row.Record.PDFFilename), search) {
		return true
	}
	if row.Contact != nil {
		return strings.Contains(strings.ToLower(row.Contact.Name), search) ||
			strings.Contains(row.Contact.Email, search)
	}
	return false
}

func (u *batchUsecase) SetSelection(actor Actor, keys []string) error {
	sess := u.sessions.get(actor.ID)
	if sess == nil {
		return ErrNoSession
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	selected := make(map[batchdomain.RowKey]bool, len(keys))
	for _, raw := range keys {
		key, err := batchdomain.ParseRowKey(raw)
		if err != nil {
			return err
		}
		row := sess.findRow(key)
		if row == nil {
			return fmt.Errorf("unknown row %s", raw)
		}
		if row.Status != batchdomain.RowStatusPending {
			return fmt.Errorf("row %s has no contact email and cannot be selected", row.Record.AccountKey)
		}
		selected[key] = true
	}
	sess.selected = selected
	return nil
}

func (u *batchUsecase) SetFilter(actor Actor, status, search string) error {
	sess := u.sessions.get(actor.ID)
	if sess == nil {
		return ErrNoSession
	}
	if status != "" && status != batchdomain.RowStatusPending && status != batchdomain.RowStatusBlocked {
		return fmt.Errorf("unknown status filter %q", status)
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.statusFilter = status
	sess.search = strings.TrimSpace(search)
	return nil
}

func (u *batchUsecase) RefreshContacts(actor Actor, accountKeys []string) {
	sess := u.sessions.get(actor.ID)
	if sess == nil {
		return
	}
	contacts := u.contacts.Resolve(accountKeys)

	sess.mu.Lock()
	defer sess.mu.Unlock()
	RefreshRows(sess.rows, accountKeys, contacts)
}

func (u *batchUsecase) SendRow(ctx context.Context, actor Actor, rowKey string) (*batchdto.SendOutcome, error) {
	sess := u.sessions.get(actor.ID)
	if sess == nil {
		return nil, ErrNoSession
	}
	key, err := batchdomain.ParseRowKey(rowKey)
	if err != nil {
		return nil, err
	}
	return u.sendOne(ctx, sess, actor, key), nil
}

func (u *batchUsecase) SendAllPending(ctx context.Context, actor Actor, skipAlreadySent bool) (*batchdto.BulkResult, error) {
	return u.runBulk(ctx, actor, skipAlreadySent, func(sess *session, row *batchdomain.ReconciledRow) bool {
		return true
	})
}

func (u *batchUsecase) SendSelected(ctx context.Context, actor Actor, skipAlreadySent bool) (*batchdto.BulkResult, error) {
	return u.runBulk(ctx, actor, skipAlreadySent, func(sess *session, row *batchdomain.ReconciledRow) bool {
		return sess.selected[row.Key()]
	})
}

func (u *batchUsecase) RetryFailed(ctx context.Context, actor Actor) (*batchdto.BulkResult, error) {
	// Restricted to rows whose last audit status is specifically failed,
	// not merely absent. Skip-already-sent is irrelevant here.
	return u.runBulk(ctx, actor, false, func(sess *session, row *batchdomain.ReconciledRow) bool {
		last, ok := sess.audit[row.Record.AccountKey]
		return ok && last.Status == auditdomain.StatusFailed
	})
}

// runBulk snapshots the eligible rows under the session lock, then sends
// them strictly sequentially, awaiting each attempt's full completion
// (including its audit re-query) before starting the next. One row's failure
// never aborts the run.
func (u *batchUsecase) runBulk(ctx context.Context, actor Actor, skipAlreadySent bool,
	include func(*session, *batchdomain.ReconciledRow) bool) (*batchdto.BulkResult, error) {

	sess := u.sessions.get(actor.ID)
	if sess == nil {
		return nil, ErrNoSession
	}

	sess.mu.Lock()
	if sess.sending {
		sess.mu.Unlock()
		return nil, ErrBulkInFlight
	}
	if sess.archive == nil || sess.archive.Filename == "" {
		sess.mu.Unlock()
		return nil, ErrNoSession
	}
	sess.sending = true

	res := &batchdto.BulkResult{}
	var keys []batchdomain.RowKey
	for i := range sess.rows {
		row := &sess.rows[i]
		if row.Status != batchdomain.RowStatusPending {
			continue
		}
		if sess.state(row.Key()).State == batchdomain.SendStateSent {
			continue
		}
		if !include(sess, row) {
			continue
		}
		if skipAlreadySent {
			if last, ok := sess.audit[row.Record.AccountKey]; ok && last.Status == auditdomain.StatusSent {
				res.Skipped++
				continue
			}
		}
		keys = append(keys, row.Key())
	}
	sess.mu.Unlock()

	defer func() {
		sess.mu.Lock()
		sess.sending = false
		sess.mu.Unlock()
	}()

	for _, key := range keys {
		res.Attempted++
		out := u.sendOne(ctx, sess, actor, key)
		switch {
		case out.Refused:
			res.Skipped++
			res.Attempted--
		case out.State == batchdomain.SendStateSent:
			res.Sent++
		default:
			res.Failed++
		}
	}
	return res, nil
}

// sendOne runs the per-row state machine for a single attempt:
// idle|failed → sending → {sent | failed}.
func (u *batchUsecase) sendOne(ctx context.Context, sess *session, actor Actor, key batchdomain.RowKey) *batchdto.SendOutcome {
	refused := func(reason string) *batchdto.SendOutcome {
		return &batchdto.SendOutcome{RowKey: key.String(), Refused: true, Error: reason}
	}

	sess.mu.Lock()
	row := sess.findRow(key)
	if row == nil {
		sess.mu.Unlock()
		return refused("unknown row")
	}
	st := sess.state(key)
	switch {
	case st.State == batchdomain.SendStateSending:
		sess.mu.Unlock()
		return refused("send already in progress for this row")
	case st.State == batchdomain.SendStateSent:
		sess.mu.Unlock()
		return refused("already sent in this session")
	case !row.Sendable():
		sess.mu.Unlock()
		return refused("no contact email for this account key")
	case sess.archive == nil || sess.archive.Filename == "":
		sess.mu.Unlock()
		return refused("archive is no longer available, re-upload it")
	}

	prev := st.State
	st.State = batchdomain.SendStateSending
	st.Error = ""

	archiveName := sess.archive.Filename
	reader := sess.archive
	rec := row.Record
	contact := *row.Contact
	sess.mu.Unlock()

	release, ok := u.locker.Acquire(ctx, archiveName, rec.AccountKey)
	if !ok {
		sess.mu.Lock()
		st.State = prev
		st.Error = "another operator is sending this bill right now"
		sess.mu.Unlock()
		return refused("another operator is sending this bill right now")
	}
	defer release()

	entry := &auditdomain.SendLogEntry{
		SentAt:          time.Now(),
		ArchiveFilename: archiveName,
		AccountKey:      rec.AccountKey,
		TradeDate:       rec.TradeDate,
		ToEmail:         contact.Email,
		ToName:          contact.Name,
		SenderIdentity:  actor.Email,
	}

	data, err := reader.FindPDF(rec.ArchiveEntryPath, rec.PDFFilename)
	switch {
	case err != nil:
		entry.Status = auditdomain.StatusFailed
		entry.Error = fmt.Sprintf("PDF not found in archive: %s", rec.PDFFilename)
	case len(data) == 0:
		entry.Status = auditdomain.StatusFailed
		entry.Error = fmt.Sprintf("PDF is empty: %s", rec.PDFFilename)
	default:
		if _, addrErr := mail.ParseAddress(contact.Email); addrErr != nil {
			entry.Status = auditdomain.StatusFailed
			entry.Error = fmt.Sprintf("invalid recipient address for %s", rec.AccountKey)
			break
		}
		msg := &MailMessage{
			ToEmail:            contact.Email,
			ToName:             contact.Name,
			Subject:            buildSubject(rec.AccountKey, rec.TradeDate),
			Body:               buildBody(contact.Name, rec.AccountKey, rec.TradeDate),
			AttachmentFilename: rec.PDFFilename,
			Attachment:         data,
		}
		messageID, sendErr := u.mailer.Send(ctx, msg)
		if sendErr != nil {
			entry.Status = auditdomain.StatusFailed
			entry.Error = mask.Emails(sendErr.Error())
		} else {
			entry.Status = auditdomain.StatusSent
			entry.MessageID = messageID
		}
	}

	u.audit.Append(entry)

	// Re-query so the "sent earlier" badge reflects the entry just written,
	// and so two operators working the same archive converge.
	fresh := u.audit.LastStatuses(archiveName, []string{rec.AccountKey})

	sess.mu.Lock()
	if entry.Status == auditdomain.StatusSent {
		st.State = batchdomain.SendStateSent
		st.Error = ""
	} else {
		st.State = batchdomain.SendStateFailed
		st.Error = entry.Error
	}
	if last, ok := fresh[rec.AccountKey]; ok {
		sess.audit[rec.AccountKey] = last
	}
	finalState, finalErr := st.State, st.Error
	sess.mu.Unlock()

	return &batchdto.SendOutcome{
		RowKey:    key.String(),
		State:     finalState,
		Error:     finalErr,
		MessageID: entry.MessageID,
	}
}

func (u *batchUsecase) RowPDF(actor Actor, rowKey string) (string, []byte, error) {
	sess := u.sessions.get(actor.ID)
	if sess == nil {
		return "", nil, ErrNoSession
	}
	key, err := batchdomain.ParseRowKey(rowKey)
	if err != nil {
		return "", nil, err
	}

	sess.mu.Lock()
	row := sess.findRow(key)
	reader := sess.archive
	sess.mu.Unlock()

	if row == nil {
		return "", nil, fmt.Errorf("unknown row %s", rowKey)
	}
	data, err := reader.FindPDF(row.Record.ArchiveEntryPath, row.Record.PDFFilename)
	if err != nil {
		return "", nil, err
	}
	return row.Record.PDFFilename, data, nil
}

func (u *batchUsecase) SendLog(actor Actor, archiveFilename string, limit int) ([]auditdomain.SendLogEntry, error) {
	if archiveFilename == "" {
		sess := u.sessions.get(actor.ID)
		if sess == nil {
			return nil, ErrNoSession
		}
		sess.mu.Lock()
		archiveFilename = sess.archive.Filename
		sess.mu.Unlock()
	}
	return u.audit.RecentForArchive(archiveFilename, limit)
}

func buildSubject(accountKey, tradeDate string) string {
	subject := "Bill " + accountKey
	if tradeDate != "" {
		subject += " " + tradeDate
	}
	return subject
}

func buildBody(name, accountKey, tradeDate string) string {
	greeting := name
	if greeting == "" {
		greeting = accountKey
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Dear %s,\n\n", greeting)
	if tradeDate != "" {
		fmt.Fprintf(&b, "Please find attached your bill for %s.\n", tradeDate)
	} else {
		b.WriteString("Please find attached your bill.\n")
	}
	b.WriteString("\nThis message was sent automatically; replies are not monitored.\n")
	return b.String()
}

func rowView(sess *session, row *batchdomain.ReconciledRow) batchdto.RowView {
	key := row.Key()
	st := sess.state(key)
	view := batchdto.RowView{
		Key:              key.String(),
		AccountKey:       row.Record.AccountKey,
		PDFFilename:      row.Record.PDFFilename,
		ArchiveEntryPath: row.Record.ArchiveEntryPath,
		TradeDate:        row.Record.TradeDate,
		Status:           row.Status,
		State:            st.State,
		Error:            st.Error,
		Selected:         sess.selected[key],
	}
	if row.Contact != nil {
		view.ContactName = row.Contact.Name
		view.ContactEmail = row.Contact.Email
	}
	if last, ok := sess.audit[row.Record.AccountKey]; ok {
		view.LastStatus = &last
	}
	return view
}
