package services

import (
	"context"
	"fmt"
	"html"
	"net/smtp"
	"strings"

	"go.uber.org/zap"

	"kalavedi/config"
	"kalavedi/model"
)

// StatusNotifier is told about every admin status change.
type StatusNotifier interface {
	NotifyStatus(ctx context.Context, m *model.Member) error
}

type sendMailFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// Mailer sends status emails through an SMTP relay.
type Mailer struct {
	cfg      config.SMTPConfig
	logger   *zap.Logger
	sendMail sendMailFunc
}

func NewMailer(cfg config.SMTPConfig, logger *zap.Logger) *Mailer {
	return &Mailer{cfg: cfg, logger: logger, sendMail: smtp.SendMail}
}

func (m *Mailer) NotifyStatus(ctx context.Context, member *model.Member) error {
	if member.Email == "" {
		return nil
	}
	subject := fmt.Sprintf("BKV membership %s: registration %s", member.MemberID, member.Status)
	return m.Send(ctx, member.Email, subject, statusEmailContent(member))
}

// Send delivers one HTML message.
func (m *Mailer) Send(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	addr := m.cfg.Host + ":" + m.cfg.Port
	auth := smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)

	from := m.cfg.Username
	mime := "MIME-version: 1.0;\nContent-Type: text/html; charset=\"UTF-8\";\n\n"
	message := "From: " + from + "\n" +
		"To: " + to + "\n" +
		"Subject: " + subject + "\n" +
		mime + "\n" +
		body

	if err := m.sendMail(addr, auth, from, []string{to}, []byte(message)); err != nil {
		return fmt.Errorf("SMTP send error: %w", err)
	}
	m.logger.Info("status email sent", zap.String("to", to), zap.String("subject", subject))
	return nil
}

func statusEmailContent(member *model.Member) string {
	var b strings.Builder
	b.WriteString(`<table width="680px" cellpadding="0" cellspacing="0" border="0"><tbody>`)
	b.WriteString(`<tr><td bgcolor="#eeeeee" align="center"><h1>Bhagath Singh Kalavedi Vazhakkad</h1></td></tr>`)
	b.WriteString(`<tr><td bgcolor="#ffffff" align="center" style="line-height:24px"><font color="#333333" face="Arial">`)
	fmt.Fprintf(&b, `<span style="font-size:20px">Hello %s,</span><br>`, html.EscapeString(member.FullName))
	fmt.Fprintf(&b, `<span style="font-size:16px">%s</span><br>`, html.EscapeString(StatusMessage(member)))
	fmt.Fprintf(&b, `<span style="font-size:16px">Member ID: <strong>%s</strong></span>`, html.EscapeString(member.MemberID))
	b.WriteString(`</font></td></tr></tbody></table>`)
	return b.String()
}
