package service

import (
	"crypto/tls"
	"fmt"
	"html"
	"time"

	"github.com/zack12Ali/sb1-a2fvdq/config"
	"github.com/zack12Ali/sb1-a2fvdq/internal/util"
	"go.uber.org/zap"
	"gopkg.in/mail.v2"
)

// Mailer sends the emails the platform produces.
type Mailer interface {
	Enabled() bool
	SendNotificationEmail(to, name, message, link string) error
	SendPasswordResetEmail(to, token string) error
}

type EmailService struct {
	smtpHost    string
	smtpPort    int
	username    string
	password    string
	frontendURL string
}

func NewEmailService() *EmailService {
	return &EmailService{
		smtpHost:    config.AppConfig.SMTPHost,
		smtpPort:    config.AppConfig.SMTPPort,
		username:    config.AppConfig.SMTPUsername,
		password:    config.AppConfig.SMTPPassword,
		frontendURL: config.AppConfig.FrontendURL,
	}
}

var _ Mailer = (*EmailService)(nil)

// Enabled reports whether SMTP credentials are configured.
func (s *EmailService) Enabled() bool {
	return s.smtpHost != "" && s.username != "" && s.password != ""
}

// SendNotificationEmail mirrors an in-app notification to the user's inbox.
func (s *EmailService) SendNotificationEmail(to, name, message, link string) error {
	if name == "" {
		name = "there"
	}
	target := s.frontendURL + link

	subject := "You have a new notification on StartupAI"
	body := fmt.Sprintf(`<p>Hi %s,</p>
<p>%s</p>
<p><a href="%s">Open StartupAI</a></p>
<p style="color:#777;font-size:0.8em">You can turn these emails off in your notification settings.</p>`,
		html.EscapeString(name), html.EscapeString(message), html.EscapeString(target))

	return s.sendEmail(to, subject, body)
}

// SendPasswordResetEmail sends the reset link carrying token.
func (s *EmailService) SendPasswordResetEmail(to, token string) error {
	resetLink := fmt.Sprintf("%s/reset-password?token=%s", s.frontendURL, token)

	subject := "Reset your StartupAI password"
	body := fmt.Sprintf(`<p>We received a request to reset your password.</p>
<p><a href="%s">Reset password</a></p>
<p>Or paste this link into your browser: %s</p>
<p>The link expires in one hour. If you did not ask for a reset you can ignore this email.</p>`,
		html.EscapeString(resetLink), html.EscapeString(resetLink))

	return s.sendEmail(to, subject, body)
}

// SendAsync sends in the background and only logs failures.
func (s *EmailService) SendAsync(send func() error, to string) {
	go func() {
		if err := send(); err != nil {
			util.Logger.Error("failed to send email asynchronously", zap.Error(err), zap.String("to", to))
		}
	}()
}

func (s *EmailService) sendEmail(to, subject, body string) error {
	if !s.Enabled() {
		return fmt.Errorf("smtp is not configured")
	}

	util.Logger.Info("sending email", zap.String("to", to), zap.String("subject", subject))

	m := mail.NewMessage()
	m.SetHeader("From", s.username)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	d := mail.NewDialer(s.smtpHost, s.smtpPort, s.username, s.password)
	d.Timeout = 20 * time.Second
	d.SSL = s.smtpPort == 465
	d.TLSConfig = &tls.Config{ServerName: s.smtpHost}

	if err := d.DialAndSend(m); err != nil {
		util.Logger.Error("failed to send email", zap.Error(err), zap.String("to", to))
		return fmt.Errorf("failed to send email: %w", err)
	}

	util.Logger.Info("email sent", zap.String("to", to))
	return nil
}
