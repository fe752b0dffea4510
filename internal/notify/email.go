package notify

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/emersion/go-sasl"
	"github.com/emersion/go-smtp"
	"github.com/notexe/reminder-tracker/internal/config"
)

// implicitTLSPort is the SMTPS port; every other port upgrades with STARTTLS.
const implicitTLSPort = 465

type sendMailFunc func(addr string, a sasl.Client, from string, to []string, r io.Reader) error

// Email sends the text digest over SMTP.
type Email struct {
	cfg  config.EmailConfig
	now  func() time.Time
	send sendMailFunc
}

// NewEmail creates an SMTP notifier.
func NewEmail(cfg config.EmailConfig) *Email {
	e := &Email{cfg: cfg, now: time.Now}
	if cfg.Port == implicitTLSPort {
		e.send = smtp.SendMailTLS
	} else {
		e.send = smtp.SendMail
	}
	return e
}

func (e *Email) Name() string { return config.ChannelEmail }

// Send mails msg.Text to every configured recipient.
func (e *Email) Send(ctx context.Context, msg Message) error {
	if !e.cfg.Complete() {
		return fmt.Errorf("email: %w", ErrNotConfigured)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	to := e.cfg.RecipientList()
	addr := net.JoinHostPort(e.cfg.Host, strconv.Itoa(e.cfg.Port))
	auth := sasl.NewPlainClient("", e.cfg.Username, e.cfg.Password)

	body := buildMail(e.cfg.From, to, msg.Subject, msg.Text, e.now())
	if err := e.send(addr, auth, e.cfg.From, to, strings.NewReader(body)); err != nil {
		return fmt.Errorf("failed to send email via %s: %w", addr, err)
	}
	return nil
}

func buildMail(from string, to []string, subject, text string, date time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", strings.Join(to, ", "))
	fmt.Fprintf(&b, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", subject))
	fmt.Fprintf(&b, "Date: %s\r\n", date.Format(time.RFC1123Z))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	b.WriteString("Content-Transfer-Encoding: 8bit\r\n\r\n")
	b.WriteString(strings.ReplaceAll(strings.ReplaceAll(text, "\r\n", "\n"), "\n", "\r\n"))
	return b.String()
}
