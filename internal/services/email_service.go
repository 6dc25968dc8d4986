package services

import (
	"fmt"
	"html"

	"gopkg.in/gomail.v2"
)

type EmailService interface {
	SendInvitationEmail(to, teamName, inviterName, link string) error
	SendPasswordResetEmail(to, link string) error
}

type emailService struct {
	dialer *gomail.Dialer
	from   string
}

func NewEmailService(smtpHost string, smtpPort int, smtpUser, smtpPassword, fromEmail string) EmailService {
	dialer := gomail.NewDialer(smtpHost, smtpPort, smtpUser, smtpPassword)
	return &emailService{
		dialer: dialer,
		from:   fromEmail,
	}
}

func (s *emailService) SendInvitationEmail(to, teamName, inviterName, link string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", fmt.Sprintf("You are invited to join %s", teamName))

	body := fmt.Sprintf(`
		<h3>%s invited you to the team %s</h3>
		<p>Open the link below to accept or decline the invitation:</p>
		<p><a href="%s">%s</a></p>
		<p>If you were not expecting this email, you can ignore it.</p>
	`, html.EscapeString(inviterName), html.EscapeString(teamName), link, link)
	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send invitation email: %w", err)
	}
	return nil
}

func (s *emailService) SendPasswordResetEmail(to, link string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", "Password reset")
	m.SetBody("text/html", fmt.Sprintf(`
		<p>Someone asked to reset the password of your account.</p>
		<p><a href="%s">Choose a new password</a>. The link is valid for one hour.</p>
		<p>If it was not you, ignore this email.</p>
	`, link))

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send password reset email: %w", err)
	}
	return nil
}
