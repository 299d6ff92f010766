package usecase

import (
	"testing"

	"billmailer/internal/archive"
	batchdomain "billmailer/internal/batch/domain"
	contactdomain "billmailer/internal/contact/domain"
)

func TestReconcileStatusAndOrder(t *testing.T) {
	records := []archive.BillingRecord{
		{AccountKey: "PR20", PDFFilename: "Bill_PR20.pdf", ArchiveEntryPath: "Bill_PR20.pdf"},
		{AccountKey: "PR21", PDFFilename: "Bill_PR21.pdf", ArchiveEntryPath: "Bill_PR21.pdf"},
		{AccountKey: "PR22", PDFFilename: "Bill_PR22.pdf", ArchiveEntryPath: "Bill_PR22.pdf"},
	}
	contacts := map[string]*contactdomain.Contact{
		"PR20": {AccountKey: "PR20", Email: "alice@example.com"},
		"PR22": {AccountKey: "PR22"}, // directory entry without an email
	}

	rows := Reconcile(records, contacts)

	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(rows))
	}
	for i, rec := range records {
		if rows[i].Record.AccountKey != rec.AccountKey {
			t.Errorf("row %d out of order: %q", i, rows[i].Record.AccountKey)
		}
	}
	if rows[0].Status != batchdomain.RowStatusPending {
		t.Errorf("PR20 = %q, want pending", rows[0].Status)
	}
	if rows[1].Status != batchdomain.RowStatusBlocked {
		t.Errorf("PR21 (no contact) = %q, want blocked", rows[1].Status)
	}
	if rows[2].Status != batchdomain.RowStatusBlocked {
		t.Errorf("PR22 (empty email) = %q, want blocked", rows[2].Status)
	}
}

func TestRefreshRowsOnlyTouchesRefreshedKeys(t *testing.T) {
	records := []archive.BillingRecord{
		{AccountKey: "PR20", PDFFilename: "a.pdf", ArchiveEntryPath: "a.pdf"},
		{AccountKey: "PR21", PDFFilename: "b.pdf", ArchiveEntryPath: "b.pdf"},
	}
	rows := Reconcile(records, nil)
	if rows[0].Status != batchdomain.RowStatusBlocked || rows[1].Status != batchdomain.RowStatusBlocked {
		t.Fatal("both rows should start blocked")
	}
	before := rows[1]

	RefreshRows(rows, []string{"PR20"}, map[string]*contactdomain.Contact{
		"PR20": {AccountKey: "PR20", Email: "alice@example.com"},
		"PR21": {AccountKey: "PR21", Email: "bob@example.com"}, // not in the refreshed set
	})

	if rows[0].Status != batchdomain.RowStatusPending {
		t.Errorf("PR20 = %q, want pending after refresh", rows[0].Status)
	}
	if rows[1] != before {
		t.Errorf("PR21 changed despite not being refreshed: %+v", rows[1])
	}
}
