// Package scheduler runs the background jobs: a nightly stats-cache warmup
// and, when mail is configured, a monthly summary email.
package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/noahjmorrison/onnaflips/internal/config"
	"github.com/noahjmorrison/onnaflips/internal/mailer"
	"github.com/noahjmorrison/onnaflips/internal/service"
)

// Scheduler owns the cron runner.
type Scheduler struct {
	cron   *cron.Cron
	svc    *service.Service
	sender *mailer.Sender
	cfg    *config.Config
	log    *logrus.Logger
}

// New builds a scheduler; call Start to register the jobs and run them.
func New(svc *service.Service, sender *mailer.Sender, cfg *config.Config, log *logrus.Logger) *Scheduler {
	return &Scheduler{
		cron:   cron.New(),
		svc:    svc,
		sender: sender,
		cfg:    cfg,
		log:    log,
	}
}

// Start registers the jobs and launches the cron runner.
func (s *Scheduler) Start() error {
	// Warm the stats cache before the morning dashboard check.
	if _, err := s.cron.AddFunc("0 3 * * *", s.warmStats); err != nil {
		return err
	}
	if s.cfg.MailEnabled() {
		if _, err := s.cron.AddFunc("0 8 1 * *", s.sendMonthlySummary); err != nil {
			return err
		}
	}
	s.cron.Start()
	s.log.Info("Scheduler started")
	return nil
}

// Stop halts the cron runner and waits for running jobs.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

func (s *Scheduler) warmStats() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := s.svc.WarmStatsCache(ctx); err != nil {
		s.log.Errorf("Stats warmup failed: %v", err)
		return
	}
	s.log.Debug("Stats cache warmed")
}

func (s *Scheduler) sendMonthlySummary() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	lastMonth := time.Now().AddDate(0, -1, 0).Format("2006-01")
	summary, err := s.svc.MonthSummary(ctx, lastMonth)
	if err != nil {
		s.log.Errorf("Monthly summary failed for %s: %v", lastMonth, err)
		return
	}
	if err := s.sender.SendMonthlySummary(summary); err != nil {
		s.log.Errorf("Monthly summary email failed: %v", err)
	}
}
