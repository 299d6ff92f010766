package usecase

import (
	"billmailer/internal/archive"
	batchdomain "billmailer/internal/batch/domain"
	contactdomain "billmailer/internal/contact/domain"
)

// Reconcile joins parsed records with resolved contacts, order-preserving
// relative to records. A row is pending iff a contact with a non-empty email
// was found; otherwise blocked.
func Reconcile(records []archive.BillingRecord, contactsByKey map[string]*contactdomain.Contact) []batchdomain.ReconciledRow {
	rows := make([]batchdomain.ReconciledRow, 0, len(records))
	for _, rec := range records {
		rows = append(rows, reconcileOne(rec, contactsByKey[rec.AccountKey]))
	}
	return rows
}

// RefreshRows recomputes only the rows whose account key is in the refreshed
// set, leaving every other row untouched so its identity and send state
// survive the refresh. Used after adding a contact inline.
func RefreshRows(rows []batchdomain.ReconciledRow, refreshedKeys []string, contactsByKey map[string]*contactdomain.Contact) {
	refreshed := make(map[string]struct{}, len(refreshedKeys))
	for _, k := range refreshedKeys {
		refreshed[k] = struct{}{}
	}
	for i := range rows {
		if _, ok := refreshed[rows[i].Record.AccountKey]; !ok {
			continue
		}
		rows[i] = reconcileOne(rows[i].Record, contactsByKey[rows[i].Record.AccountKey])
	}
}

func reconcileOne(rec archive.BillingRecord, contact *contactdomain.Contact) batchdomain.ReconciledRow {
	status := batchdomain.RowStatusBlocked
	if contact != nil && contact.Email != "" {
		status = batchdomain.RowStatusPending
	}
	return batchdomain.ReconciledRow{Record: rec, Contact: contact, Status: status}
}
