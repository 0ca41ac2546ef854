package mailer

import (
	"fmt"
	"net/smtp"

	"github.com/jordan-wright/email"
	"github.com/sirupsen/logrus"

	"github.com/noahjmorrison/onnaflips/internal/config"
	"github.com/noahjmorrison/onnaflips/internal/format"
	"github.com/noahjmorrison/onnaflips/internal/models"
)

// Sender handles sending emails via SMTP
type Sender struct {
	cfg    *config.Config
	logger *logrus.Logger
}

// NewSender creates a new email sender
func NewSender(cfg *config.Config, logger *logrus.Logger) *Sender {
	return &Sender{
		cfg:    cfg,
		logger: logger,
	}
}

// SendMonthlySummary mails the realized totals for one month to the
// configured summary address.
func (s *Sender) SendMonthlySummary(summary *models.MonthSummary) error {
	e := email.NewEmail()
	e.From = s.cfg.SenderEmail
	e.To = []string{s.cfg.SummaryEmail}
	e.Subject = fmt.Sprintf("Onna's Flips - %s Summary", summary.Month)

	body := fmt.Sprintf(
		"Flip results for %s:\n\n"+
			"Items sold: %d\n"+
			"Revenue: %s\n"+
			"Profit: %s\n"+
			"\nKeep flipping,\nOnna's Flips",
		summary.Month,
		summary.SoldCount,
		format.FormatCurrencyCents(&summary.Revenue),
		format.FormatCurrencyCents(&summary.Profit),
	)
	e.Text = []byte(body)

	// Send email
	addr := fmt.Sprintf("%s:%s", s.cfg.SMTPHost, s.cfg.SMTPPort)
	auth := smtp.PlainAuth("", s.cfg.SMTPUsername, s.cfg.SMTPPassword, s.cfg.SMTPHost)
	if err := e.Send(addr, auth); err != nil {
		s.logger.Errorf("Failed to send summary email to %s: %v", s.cfg.SummaryEmail, err)
		return fmt.Errorf("failed to send summary email: %w", err)
	}

	s.logger.Infof("Email sent to %s: %s", s.cfg.SummaryEmail, e.Subject)
	return nil
}
