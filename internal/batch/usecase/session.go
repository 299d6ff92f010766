package usecase

import (
	"sync"

	"billmailer/internal/archive"
	auditdomain "billmailer/internal/auditlog/domain"
	batchdomain "billmailer/internal/batch/domain"
)

// session holds everything scoped to one uploaded archive for one operator:
// the decoded archive handle, reconciled rows, per-row send states, the
// audit cache and the review surface's selection/filter state. A new upload
// replaces the whole session; nothing carries over.
type session struct {
	mu sync.Mutex

	archive     *archive.Reader
	source      string
	diagnostics []string

	rows     []batchdomain.ReconciledRow
	states   map[batchdomain.RowKey]*batchdomain.SendState
	audit    map[string]auditdomain.LastStatus
	selected map[batchdomain.RowKey]bool

	statusFilter string
	search       string

	// sending blocks re-entrant bulk triggers and new uploads while a bulk
	// run is active.
	sending bool
}

func newSession(reader *archive.Reader, res *archive.ParseResult,
	rows []batchdomain.ReconciledRow, audit map[string]auditdomain.LastStatus) *session {
	s := &session{
		archive:     reader,
		source:      res.Source,
		diagnostics: res.Diagnostics,
		rows:        rows,
		states:      make(map[batchdomain.RowKey]*batchdomain.SendState, len(rows)),
		audit:       audit,
		selected:    make(map[batchdomain.RowKey]bool),
	}
	for i := range rows {
		s.states[rows[i].Key()] = &batchdomain.SendState{State: batchdomain.SendStateIdle}
	}
	return s
}

// state returns the row's send state, which always exists for a known row.
func (s *session) state(key batchdomain.RowKey) *batchdomain.SendState {
	if st, ok := s.states[key]; ok {
		return st
	}
	st := &batchdomain.SendState{State: batchdomain.SendStateIdle}
	s.states[key] = st
	return st
}

func (s *session) findRow(key batchdomain.RowKey) *batchdomain.ReconciledRow {
	for i := range s.rows {
		if s.rows[i].Key() == key {
			return &s.rows[i]
		}
	}
	return nil
}

// sessionManager keeps one session per operator. Replacement is atomic: the
// previous session is dropped in its entirety, so stale row identities can
// never survive across unrelated archives.
type sessionManager struct {
	mu         sync.Mutex
	byOperator map[string]*session
}

func newSessionManager() *sessionManager {
	return &sessionManager{byOperator: make(map[string]*session)}
}

func (m *sessionManager) get(operatorID string) *session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.byOperator[operatorID]
}

// replace installs the new session unless the current one has a bulk run in
// flight, in which case the upload is refused.
func (m *sessionManager) replace(operatorID string, s *session) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if cur := m.byOperator[operatorID]; cur != nil {
		cur.mu.Lock()
		busy := cur.sending
		cur.mu.Unlock()
		if busy {
			return false
		}
	}
	m.byOperator[operatorID] = s
	return true
}
