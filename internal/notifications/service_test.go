package notifications

import (
	"testing"
	"time"

	"github.com/steelproxy/twitta/internal/config"
	"github.com/steelproxy/twitta/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsEnabled(t *testing.T) {
	tests := []struct {
		name  string
		email string
		host  string
		want  bool
	}{
		{"fully configured", "ops@example.com", "smtp.example.com", true},
		{"missing recipient", "", "smtp.example.com", false},
		{"missing host", "ops@example.com", "", false},
		{"nothing configured", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewService(&config.Config{
				NotificationEmail: tt.email,
				SMTPHost:          tt.host,
			})
			assert.Equal(t, tt.want, svc.IsEnabled())
		})
	}
}

func TestSendSummary_NoOpWhenDisabled(t *testing.T) {
	svc := NewService(&config.Config{})

	err := svc.SendSummary(&models.Summary{ReplyCount: 5})
	assert.NoError(t, err)
}

func TestBuildEmailText(t *testing.T) {
	svc := NewService(&config.Config{})
	summary := &models.Summary{
		GeneratedAt:   time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC),
		ReplyCount:    7,
		ErrorCount:    2,
		LastReply:     time.Date(2024, 6, 1, 8, 30, 0, 0, time.UTC),
		StatusMessage: "Bot is running",
	}

	text := svc.buildEmailText(summary)

	assert.Contains(t, text, "Replies Posted: 7")
	assert.Contains(t, text, "Errors: 2")
	assert.Contains(t, text, "Last Reply: 2024-06-01T08:30:00Z")
	assert.Contains(t, text, "Status: Bot is running")
}

func TestBuildEmailText_OmitsEmptyFields(t *testing.T) {
	svc := NewService(&config.Config{})

	text := svc.buildEmailText(&models.Summary{GeneratedAt: time.Now()})

	assert.NotContains(t, text, "Last Reply")
	assert.NotContains(t, text, "Status:")
}

func TestBuildEmailHTML(t *testing.T) {
	svc := NewService(&config.Config{})
	summary := &models.Summary{
		GeneratedAt: time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC),
		ReplyCount:  7,
		ErrorCount:  2,
	}

	html, err := svc.buildEmailHTML(summary)
	require.NoError(t, err)

	assert.Contains(t, html, "<strong>Replies Posted:</strong> 7")
	assert.Contains(t, html, "<strong>Errors:</strong> 2")
	assert.NotContains(t, html, "Last Reply")
}
