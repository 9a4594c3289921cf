package email

import (
	"fmt"
	"net/smtp"
	"strings"

	"go.uber.org/zap"
)

type Message struct {
	To      string
	Subject string
	Body    string
}

// Sender delivers a single notification.
type Sender interface {
	Send(msg Message) error
}

type SMTPSender struct {
	host     string
	port     string
	user     string
	password string
	from     string
	send     func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewSMTPSender(host, port, user, password, from string) *SMTPSender {
	return &SMTPSender{
		host:     host,
		port:     port,
		user:     user,
		password: password,
		from:     from,
		send:     smtp.SendMail,
	}
}

func (e *SMTPSender) Send(msg Message) error {
	if msg.To == "" {
		return fmt.Errorf("email: no recipient")
	}

	message := fmt.Sprintf("From: %s\r\n"+
		"To: %s\r\n"+
		"Subject: %s\r\n"+
		"\r\n"+
		"%s\r\n", e.from, msg.To, msg.Subject, msg.Body)

	var auth smtp.Auth
	if e.user != "" {
		auth = smtp.PlainAuth("", e.user, e.password, e.host)
	}
	addr := fmt.Sprintf("%s:%s", e.host, e.port)

	if err := e.send(addr, auth, e.from, []string{msg.To}, []byte(message)); err != nil {
		return fmt.Errorf("email: send to %s: %w", msg.To, err)
	}
	return nil
}

// LogSender writes messages to the log instead of delivering them. It is used
// when no SMTP host is configured.
type LogSender struct {
	Log *zap.Logger
}

func (l LogSender) Send(msg Message) error {
	l.Log.Info("email not delivered, no smtp host configured",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject))
	return nil
}

// PostDeleted is the notice sent to an author whose post was removed by a
// moderator.
func PostDeleted(to, blogTitle, postTitle, moderator string) Message {
	var b strings.Builder
	fmt.Fprintf(&b, "Hello,\n\n")
	fmt.Fprintf(&b, "Your post \"%s\" on %s has been deleted by %s.\n\n", postTitle, blogTitle, moderator)
	fmt.Fprintf(&b, "---\n%s\n", blogTitle)

	return Message{
		To:      to,
		Subject: "Your post has been deleted",
		Body:    b.String(),
	}
}
