package gmail

import (
	"strings"
	"testing"

	batchuc "billmailer/internal/batch/usecase"
)

func TestBuildMessage(t *testing.T) {
	raw := string(buildMessage("Billing", "billing@corp.example", &batchuc.MailMessage{
		ToEmail:            "alice@example.com",
		ToName:             "Alice",
		Subject:            "Bill PR20 2024-01-05",
		Body:               "Dear Alice,\n\nPlease find attached your bill for 2024-01-05.\n",
		AttachmentFilename: "Bill_PR20_2024-01-05.pdf",
		Attachment:         []byte("%PDF-1.4 test"),
	}))

	for _, want := range []string{
		"<billing@corp.example>",
		"<alice@example.com>",
		"MIME-Version: 1.0",
		`Content-Type: multipart/mixed; boundary="bill_mail_boundary"`,
		`Content-Type: text/plain; charset="UTF-8"`,
		`Content-Type: application/pdf; name="Bill_PR20_2024-01-05.pdf"`,
		`Content-Disposition: attachment; filename="Bill_PR20_2024-01-05.pdf"`,
		"Content-Transfer-Encoding: base64",
		"--bill_mail_boundary--",
	} {
		if !strings.Contains(raw, want) {
			t.Errorf("message missing %q", want)
		}
	}
}

func TestBuildMessageBareAddresses(t *testing.T) {
	raw := string(buildMessage("", "billing@corp.example", &batchuc.MailMessage{
		ToEmail:            "alice@example.com",
		Subject:            "Bill PR20",
		Body:               "Dear PR20,\n",
		AttachmentFilename: "Bill_PR20.pdf",
		Attachment:         []byte("%PDF-1.4"),
	}))

	if !strings.Contains(raw, "From: billing@corp.example\r\n") {
		t.Error("expected a bare From header without display name")
	}
	if !strings.Contains(raw, "To: alice@example.com\r\n") {
		t.Error("expected a bare To header without display name")
	}
}
