package notify

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/smtp"
	"strings"
	"time"
)

// ErrNoRecipient is returned when a member notice has no e-mail address.
var ErrNoRecipient = errors.New("notice has no recipient address")

// SendMailFunc matches smtp.SendMail.
type SendMailFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// Mailer sends member notices as plain-text e-mail over SMTP. When AdminTo is
// set it also carries admin notices.
type Mailer struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	AdminTo  string
	SendMail SendMailFunc
	Now      func() time.Time
}

func NewMailer(host string, port int, username, password, from, adminTo string) *Mailer {
	return &Mailer{
		Host:     host,
		Port:     port,
		Username: username,
		Password: password,
		From:     from,
		AdminTo:  adminTo,
		SendMail: smtp.SendMail,
		Now:      time.Now,
	}
}

func (m *Mailer) NotifyMember(ctx context.Context, n MemberNotice) error {
	if n.Email == "" {
		return ErrNoRecipient
	}
	return m.send(ctx, n.Email, n.Subject, n.Body)
}

func (m *Mailer) NotifyAdmin(ctx context.Context, n AdminNotice) error {
	if m.AdminTo == "" {
		return ErrNoRecipient
	}
	body := n.Body
	if n.Link != "" && !strings.Contains(body, n.Link) {
		body += "\n\n" + n.Link
	}
	return m.send(ctx, m.AdminTo, n.Subject, body)
}

func (m *Mailer) send(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	var auth smtp.Auth
	if m.Username != "" {
		auth = smtp.PlainAuth("", m.Username, m.Password, m.Host)
	}
	addr := net.JoinHostPort(m.Host, fmt.Sprint(m.Port))
	if err := m.SendMail(addr, auth, m.From, []string{to}, m.compose(to, subject, body)); err != nil {
		return fmt.Errorf("send mail to %s: %w", to, err)
	}
	return nil
}

func (m *Mailer) compose(to, subject, body string) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", m.From)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", sanitizeHeader(subject))
	fmt.Fprintf(&b, "Date: %s\r\n", m.Now().UTC().Format(time.RFC1123Z))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n\r\n")
	b.WriteString(strings.ReplaceAll(body, "\n", "\r\n"))
	return []byte(b.String())
}

func sanitizeHeader(s string) string {
	return strings.NewReplacer("\r", " ", "\n", " ").Replace(s)
}
