// Package mailer delivers rendered email over SMTP.
package mailer

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net"
	"net/mail"
	"net/smtp"
	"net/textproto"
	"strconv"
	"strings"
	"time"

	"github.com/phrazzld/forum-notifier/internal/ace"
	"github.com/phrazzld/forum-notifier/internal/config"
)

// implicitTLSPort is the submission port that expects TLS from the first byte.
const implicitTLSPort = 465

// DefaultDialTimeout bounds connecting to the SMTP server.
const DefaultDialTimeout = 15 * time.Second

// ErrNoRecipient is returned for email without a recipient address.
var ErrNoRecipient = errors.New("email has no recipient address")

// SMTPChannel implements ace.Channel over SMTP.
type SMTPChannel struct {
	host     string
	port     int
	username string
	password string
	from     mail.Address
	logger   *slog.Logger
	now      func() time.Time
}

var _ ace.Channel = (*SMTPChannel)(nil)

// NewSMTPChannel creates a channel sending as senderName <cfg.FromAddress>.
func NewSMTPChannel(cfg config.EmailConfig, senderName string, logger *slog.Logger) *SMTPChannel {
	return &SMTPChannel{
		host:     cfg.Host,
		port:     cfg.Port,
		username: cfg.Username,
		password: cfg.Password,
		from:     mail.Address{Name: senderName, Address: cfg.FromAddress},
		logger:   logger.With("component", "smtp_channel"),
		now:      time.Now,
	}
}

// Deliver sends email to its recipient.
func (c *SMTPChannel) Deliver(ctx context.Context, email *ace.RenderedEmail) error {
	if email.To.Email == "" {
		return ErrNoRecipient
	}

	msg, err := buildMessage(c.from, email, c.now())
	if err != nil {
		return fmt.Errorf("build message: %w", err)
	}

	if err := c.send(ctx, email.To.Email, msg); err != nil {
		return fmt.Errorf("smtp send to %s: %w", email.To.Email, err)
	}

	c.logger.Debug("email delivered",
		"message_id", email.MessageID,
		"recipient", email.To.Username)
	return nil
}

func (c *SMTPChannel) send(ctx context.Context, to string, msg []byte) error {
	addr := net.JoinHostPort(c.host, strconv.Itoa(c.port))
	dialer := &net.Dialer{Timeout: DefaultDialTimeout}
	tlsConfig := &tls.Config{ServerName: c.host, MinVersion: tls.VersionTLS12}

	var conn net.Conn
	var err error
	if c.port == implicitTLSPort {
		conn, err = (&tls.Dialer{NetDialer: dialer, Config: tlsConfig}).DialContext(ctx, "tcp", addr)
	} else {
		conn, err = dialer.DialContext(ctx, "tcp", addr)
	}
	if err != nil {
		return fmt.Errorf("dial %s: %w", addr, err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	client, err := smtp.NewClient(conn, c.host)
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("smtp handshake: %w", err)
	}
	defer func() { _ = client.Close() }()

	if c.port != implicitTLSPort {
		if ok, _ := client.Extension("STARTTLS"); ok {
			if err := client.StartTLS(tlsConfig); err != nil {
				return fmt.Errorf("starttls: %w", err)
			}
		}
	}

	if c.username != "" {
		if err := client.Auth(smtp.PlainAuth("", c.username, c.password, c.host)); err != nil {
			return fmt.Errorf("auth: %w", err)
		}
	}

	if err := client.Mail(c.from.Address); err != nil {
		return err
	}
	if err := client.Rcpt(to); err != nil {
		return err
	}

	w, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(msg); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}

	if err := client.Quit(); err != nil {
		c.logger.Warn("smtp quit failed after delivery", "error", err)
	}
	return nil
}

// buildMessage renders email as a MIME message. Both bodies present yields
// multipart/alternative with the plain text part first.
func buildMessage(from mail.Address, email *ace.RenderedEmail, now time.Time) ([]byte, error) {
	var buf bytes.Buffer

	to := mail.Address{Name: email.To.Username, Address: email.To.Email}
	header := textproto.MIMEHeader{}
	header.Set("From", from.String())
	header.Set("To", to.String())
	header.Set("Subject", mime.QEncoding.Encode("utf-8", email.Subject))
	header.Set("Date", now.UTC().Format(time.RFC1123Z))
	header.Set("Message-ID", fmt.Sprintf("<%s@%s>", email.MessageID, domainOf(from.Address)))
	header.Set("MIME-Version", "1.0")

	switch {
	case email.TextBody != "" && email.HTMLBody != "":
		mw := multipart.NewWriter(&buf)
		header.Set("Content-Type", mime.FormatMediaType("multipart/alternative",
			map[string]string{"boundary": mw.Boundary()}))
		writeHeader(&buf, header)

		if err := writePart(mw, "text/plain", email.TextBody); err != nil {
			return nil, err
		}
		if err := writePart(mw, "text/html", email.HTMLBody); err != nil {
			return nil, err
		}
		if err := mw.Close(); err != nil {
			return nil, err
		}

	case email.HTMLBody != "":
		if err := writeSinglePart(&buf, header, "text/html", email.HTMLBody); err != nil {
			return nil, err
		}

	default:
		if err := writeSinglePart(&buf, header, "text/plain", email.TextBody); err != nil {
			return nil, err
		}
	}

	return buf.Bytes(), nil
}

func writeHeader(buf *bytes.Buffer, header textproto.MIMEHeader) {
	for _, key := range []string{"From", "To", "Subject", "Date", "Message-ID", "MIME-Version", "Content-Type", "Content-Transfer-Encoding"} {
		if v := header.Get(key); v != "" {
			fmt.Fprintf(buf, "%s: %s\r\n", key, v)
		}
	}
	buf.WriteString("\r\n")
}

func writeSinglePart(buf *bytes.Buffer, header textproto.MIMEHeader, contentType, body string) error {
	header.Set("Content-Type", contentType+"; charset=utf-8")
	header.Set("Content-Transfer-Encoding", "quoted-printable")
	writeHeader(buf, header)
	return writeQuotedPrintable(buf, body)
}

func writePart(mw *multipart.Writer, contentType, body string) error {
	part, err := mw.CreatePart(textproto.MIMEHeader{
		"Content-Type":              {contentType + "; charset=utf-8"},
		"Content-Transfer-Encoding": {"quoted-printable"},
	})
	if err != nil {
		return err
	}
	return writeQuotedPrintable(part, body)
}

func writeQuotedPrintable(w io.Writer, body string) error {
	qp := quotedprintable.NewWriter(w)
	if _, err := qp.Write([]byte(body)); err != nil {
		return err
	}
	return qp.Close()
}

func domainOf(address string) string {
	if i := strings.LastIndex(address, "@"); i >= 0 {
		return address[i+1:]
	}
	return "localhost"
}
