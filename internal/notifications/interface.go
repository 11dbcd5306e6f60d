package notifications

import "github.com/steelproxy/twitta/internal/models"

// NotificationInterface defines the contract for digest notifications
type NotificationInterface interface {
	SendSummary(summary *models.Summary) error
}
