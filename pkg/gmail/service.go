package gmail

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"

	batchuc "billmailer/internal/batch/usecase"
	"billmailer/pkg/config"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

// Service sends bill emails through the Gmail API under a single sending
// identity whose refresh token comes from configuration.
type Service struct {
	clientID     string
	clientSecret string
	refreshToken string
	senderEmail  string
	senderName   string
}

// NewService creates a new instance of Service
func NewService(cfg *config.Config) *Service {
	return &Service{
		clientID:     cfg.GoogleClientID,
		clientSecret: cfg.GoogleClientSecret,
		refreshToken: cfg.GmailRefreshToken,
		senderEmail:  cfg.SenderEmail,
		senderName:   cfg.SenderName,
	}
}

func (s *Service) gmailService(ctx context.Context) (*gmail.Service, error) {
	oauthCfg := &oauth2.Config{
		ClientID:     s.clientID,
		ClientSecret: s.clientSecret,
		Endpoint:     google.Endpoint,
		Scopes:       []string{gmail.GmailSendScope},
	}

	tokenSource := oauthCfg.TokenSource(ctx, &oauth2.Token{RefreshToken: s.refreshToken})
	srv, err := gmail.NewService(ctx, option.WithTokenSource(tokenSource))
	if err != nil {
		return nil, fmt.Errorf("unable to create Gmail service: %v", err)
	}
	return srv, nil
}

// Send transmits one bill: a multipart message with exactly one plain-text
// part and one PDF attachment part. The returned ID is Gmail's message id.
func (s *Service) Send(ctx context.Context, msg *batchuc.MailMessage) (string, error) {
	srv, err := s.gmailService(ctx)
	if err != nil {
		return "", err
	}

	raw := buildMessage(s.senderName, s.senderEmail, msg)
	resp, err := srv.Users.Messages.Send("me", &gmail.Message{
		Raw: base64.URLEncoding.EncodeToString(raw),
	}).Do()
	if err != nil {
		return "", fmt.Errorf("unable to send message: %v", err)
	}
	return resp.Id, nil
}

func buildMessage(fromName, fromEmail string, msg *batchuc.MailMessage) []byte {
	var emailMsg bytes.Buffer
	boundary := "bill_mail_boundary"

	// Headers
	if fromName != "" {
		encodedName := fmt.Sprintf("=?utf-8?B?%s?=", base64.StdEncoding.EncodeToString([]byte(fromName)))
		emailMsg.WriteString(fmt.Sprintf("From: %s <%s>\r\n", encodedName, fromEmail))
	} else {
		emailMsg.WriteString(fmt.Sprintf("From: %s\r\n", fromEmail))
	}
	if msg.ToName != "" {
		encodedTo := fmt.Sprintf("=?utf-8?B?%s?=", base64.StdEncoding.EncodeToString([]byte(msg.ToName)))
		emailMsg.WriteString(fmt.Sprintf("To: %s <%s>\r\n", encodedTo, msg.ToEmail))
	} else {
		emailMsg.WriteString(fmt.Sprintf("To: %s\r\n", msg.ToEmail))
	}
	// Encode subject to handle non-ASCII characters (RFC 2047)
	encodedSubject := fmt.Sprintf("=?utf-8?B?%s?=", base64.StdEncoding.EncodeToString([]byte(msg.Subject)))
	emailMsg.WriteString(fmt.Sprintf("Subject: %s\r\n", encodedSubject))
	emailMsg.WriteString("MIME-Version: 1.0\r\n")
	emailMsg.WriteString(fmt.Sprintf("Content-Type: multipart/mixed; boundary=\"%s\"\r\n\r\n", boundary))

	// Body
	emailMsg.WriteString(fmt.Sprintf("--%s\r\n", boundary))
	emailMsg.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n\r\n")
	emailMsg.WriteString(msg.Body)
	emailMsg.WriteString("\r\n")

	// Attachment
	encodedContent := base64.StdEncoding.EncodeToString(msg.Attachment)
	emailMsg.WriteString(fmt.Sprintf("--%s\r\n", boundary))
	emailMsg.WriteString(fmt.Sprintf("Content-Type: application/pdf; name=\"%s\"\r\n", msg.AttachmentFilename))
	emailMsg.WriteString("Content-Transfer-Encoding: base64\r\n")
	emailMsg.WriteString(fmt.Sprintf("Content-Disposition: attachment; filename=\"%s\"\r\n\r\n", msg.AttachmentFilename))

	// Split base64 into lines of 76 characters
	for i := 0; i < len(encodedContent); i += 76 {
		end := i + 76
		if end > len(encodedContent) {
			end = len(encodedContent)
		}
		emailMsg.WriteString(encodedContent[i:end] + "\r\n")
	}

	emailMsg.WriteString(fmt.Sprintf("--%s--", boundary))
	return emailMsg.Bytes()
}
