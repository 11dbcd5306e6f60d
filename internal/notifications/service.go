package notifications

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/steelproxy/twitta/internal/config"
	"github.com/steelproxy/twitta/internal/models"
	"gopkg.in/gomail.v2"
)

// Service sends daily digest emails about the agent's activity
type Service struct {
	config *config.Config
}

// Ensure Service implements NotificationInterface
var _ NotificationInterface = (*Service)(nil)

// NewService creates a new notification service
func NewService(cfg *config.Config) *Service {
	return &Service{config: cfg}
}

// IsEnabled reports whether a digest recipient is configured.
func (s *Service) IsEnabled() bool {
	return s.config.NotificationEmail != "" && s.config.SMTPHost != ""
}

// SendSummary emails the current agent summary to the configured
// recipient. A no-op when email is not configured.
func (s *Service) SendSummary(summary *models.Summary) error {
	if !s.IsEnabled() {
		logrus.Debug("Digest email disabled - missing SMTP configuration")
		return nil
	}

	subject := fmt.Sprintf("twitta digest - %d replies posted", summary.ReplyCount)

	htmlBody, err := s.buildEmailHTML(summary)
	if err != nil {
		return fmt.Errorf("failed to build email HTML: %w", err)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.config.SMTPUsername)
	m.SetHeader("To", s.config.NotificationEmail)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", s.buildEmailText(summary))
	m.AddAlternative("text/html", htmlBody)

	d := gomail.NewDialer(s.config.SMTPHost, s.config.SMTPPort, s.config.SMTPUsername, s.config.SMTPPassword)

	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	logrus.Info("Successfully sent digest email")
	return nil
}

func (s *Service) buildEmailHTML(summary *models.Summary) (string, error) {
	tmpl := `
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>twitta digest</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 20px; }
        .header { background-color: #1da1f2; color: white; padding: 20px; border-radius: 5px; }
        .summary { background-color: #f5f5f5; padding: 15px; margin: 20px 0; border-radius: 5px; }
    </style>
</head>
<body>
    <div class="header">
        <h1>twitta digest</h1>
        <p>Generated on {{.GeneratedAt.Format "January 2, 2006 at 3:04 PM UTC"}}</p>
    </div>

    <div class="summary">
        <h2>Summary</h2>
        <p><strong>Replies Posted:</strong> {{.ReplyCount}}</p>
        <p><strong>Errors:</strong> {{.ErrorCount}}</p>
        {{if not .LastReply.IsZero}}<p><strong>Last Reply:</strong> {{.LastReply.Format "2006-01-02 15:04:05 UTC"}}</p>{{end}}
        {{if .StatusMessage}}<p><strong>Status:</strong> {{.StatusMessage}}</p>{{end}}
    </div>

    <hr>
    <p><small>This digest was generated automatically by twitta.</small></p>
</body>
</html>
`

	t, err := template.New("digest").Parse(tmpl)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, summary); err != nil {
		return "", err
	}

	return buf.String(), nil
}

func (s *Service) buildEmailText(summary *models.Summary) string {
	var text strings.Builder

	text.WriteString("twitta digest\n")
	text.WriteString(fmt.Sprintf("Generated: %s\n\n", summary.GeneratedAt.Format("2006-01-02 15:04:05 UTC")))

	text.WriteString("SUMMARY\n")
	text.WriteString("=======\n")
	text.WriteString(fmt.Sprintf("Replies Posted: %d\n", summary.ReplyCount))
	text.WriteString(fmt.Sprintf("Errors: %d\n", summary.ErrorCount))
	if !summary.LastReply.IsZero() {
		text.WriteString(fmt.Sprintf("Last Reply: %s\n", summary.LastReply.Format(time.RFC3339)))
	}
	if summary.StatusMessage != "" {
		text.WriteString(fmt.Sprintf("Status: %s\n", summary.StatusMessage))
	}

	text.WriteString("\n---\nThis digest was generated automatically by twitta.\n")

	return text.String()
}
