package mailer

import (
	"context"
	"fmt"
	"net/smtp"

	"github.com/jordan-wright/email"
	log "github.com/sirupsen/logrus"
)

// Config carries SMTP settings. An empty Host disables sending, which
// keeps local development working without a mail account.
type Config struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

type SMTPMailer struct {
	cfg Config
}

func New(cfg Config) *SMTPMailer {
	return &SMTPMailer{cfg: cfg}
}

func (m *SMTPMailer) send(e *email.Email) error {
	if m.cfg.Host == "" {
		log.WithField("to", e.To).Info("smtp not configured, skipping mail")
		return nil
	}

	addr := m.cfg.Host + ":" + m.cfg.Port
	auth := smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	return e.Send(addr, auth)
}

// SendOTP mails a verification code. Codes expire after ten minutes,
// which the body tells the user.
func (m *SMTPMailer) SendOTP(_ context.Context, to, code string) error {
	e := email.NewEmail()
	e.From = m.cfg.From
	e.To = []string{to}
	e.Subject = "Your DealShark verification code"
	e.Text = []byte(fmt.Sprintf(
		"Your DealShark verification code is %s.\n\nIt expires in 10 minutes. If you did not request this, you can ignore this email.",
		code,
	))
	return m.send(e)
}

// SendReferralEarning notifies a referrer that a purchase through
// their link paid out.
func (m *SMTPMailer) SendReferralEarning(_ context.Context, to, dealName string, amount float64) error {
	e := email.NewEmail()
	e.From = m.cfg.From
	e.To = []string{to}
	e.Subject = "You earned a commission on DealShark"
	e.Text = []byte(fmt.Sprintf(
		"Someone completed a purchase through your referral link for %q.\n\nYour commission of $%.2f is on its way to your connected account.",
		dealName, amount,
	))
	return m.send(e)
}
