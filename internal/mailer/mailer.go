package mailer

import (
	"fmt"

	"github.com/propview/realty-service/internal/app/config"
	"gopkg.in/gomail.v2"
)

type SMTPMailer struct {
	cfg config.SMTPConfig
}

func NewSMTPMailer(cfg config.SMTPConfig) *SMTPMailer {
	return &SMTPMailer{cfg: cfg}
}

// SendOTPEmail delivers a password-reset code. The OTP itself expires by TTL
// in the OTP store; the body just tells the user the window.
func (m *SMTPMailer) SendOTPEmail(toEmail, otp string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", fmt.Sprintf("Support Team <%s>", m.cfg.SenderEmail))
	msg.SetHeader("To", toEmail)
	msg.SetHeader("Subject", "Password Reset OTP")
	msg.SetBody("text/html", fmt.Sprintf(
		"<h2>Password Reset Request</h2>"+
			"<p>You requested a password reset. Use the following OTP:</p>"+
			"<h3>%s</h3>"+
			"<p><b>Note:</b> This OTP is valid for <strong>1 hour</strong>.</p>"+
			"<p>If you didn't request this, please ignore this email.</p>", otp))

	d := gomail.NewDialer(m.cfg.Host, m.cfg.Port, m.cfg.Username, m.cfg.Password)
	return d.DialAndSend(msg)
}
