package scheduler

import (
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"github.com/steelproxy/twitta/internal/config"
	"github.com/steelproxy/twitta/internal/models"
	"github.com/steelproxy/twitta/internal/notifications"
	"github.com/steelproxy/twitta/internal/updater"
)

// SummaryFunc supplies the current agent summary for the daily digest.
type SummaryFunc func() *models.Summary

// Service schedules the daemon-mode housekeeping tasks: the daily
// digest email and the daily update check.
type Service struct {
	notifier *notifications.Service
	updater  *updater.Updater
	summary  SummaryFunc
	cron     *cron.Cron
}

// NewService creates a new scheduler service
func NewService(notifier *notifications.Service, upd *updater.Updater, summary SummaryFunc) *Service {
	return &Service{
		notifier: notifier,
		updater:  upd,
		summary:  summary,
		cron:     cron.New(cron.WithSeconds()),
	}
}

// Start begins the scheduled housekeeping
func (s *Service) Start() error {
	// Daily digest at 9 AM UTC
	_, err := s.cron.AddFunc("0 0 9 * * *", func() {
		logrus.Info("Sending scheduled digest email")
		if err := s.notifier.SendSummary(s.summary()); err != nil {
			logrus.Errorf("Scheduled digest email failed: %v", err)
		}
	})
	if err != nil {
		return err
	}

	// Daily update check at 3 AM UTC
	_, err = s.cron.AddFunc("0 0 3 * * *", func() {
		logrus.Info("Checking for updates...")
		s.updater.CheckForUpdate(config.Version)
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	logrus.Info("Scheduler started with daily digest and update checks")
	return nil
}

// Stop stops the scheduler
func (s *Service) Stop() {
	if s.cron != nil {
		s.cron.Stop()
		logrus.Info("Scheduler stopped")
	}
}
