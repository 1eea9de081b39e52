// Package mail is the outbound email side channel for inbox submissions.
// Delivery is best-effort by contract: callers fire notifications after the
// durable write and must not let a send failure surface to the client.
package mail

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	gomail "github.com/wneessen/go-mail"
)

// Kind distinguishes the two inbox flows.
type Kind string

const (
	KindNewsletter Kind = "newsletter"
	KindContact    Kind = "contact"
)

// Notification carries everything a message template needs.
type Notification struct {
	Kind    Kind
	Name    string
	Email   string
	Message string
}

// Mailer sends the two messages that follow an inbox submission: an alert
// to the site operator and a confirmation to the submitter.
type Mailer interface {
	SendOperatorAlert(ctx context.Context, n Notification) error
	SendConfirmation(ctx context.Context, n Notification) error
}

// Noop is a Mailer that drops everything. Used when SMTP is not configured.
type Noop struct{}

func (Noop) SendOperatorAlert(context.Context, Notification) error { return nil }
func (Noop) SendConfirmation(context.Context, Notification) error  { return nil }

var alertTmpl = template.Must(template.New("alert").Parse(`<h2>{{if eq .Kind "newsletter"}}New newsletter subscriber{{else}}New contact message{{end}}</h2>
<p><strong>Name:</strong> {{.Name}}</p>
<p><strong>Email:</strong> {{.Email}}</p>
{{if .Message}}<p><strong>Message:</strong></p><p>{{.Message}}</p>{{end}}`))

var confirmTmpl = template.Must(template.New("confirm").Parse(`<p>Hi {{.Name}},</p>
{{if eq .Kind "newsletter"}}<p>Thanks for subscribing to the newsletter. You&#39;ll hear from us when new posts go out.</p>
{{else}}<p>Thanks for reaching out. We received your message and will get back to you soon.</p>
{{end}}<p>&mdash; The Inspitech team</p>`))

// SMTPMailer delivers over SMTP using go-mail.
type SMTPMailer struct {
	client   *gomail.Client
	from     string
	operator string
}

// NewSMTPMailer builds a Mailer for the given SMTP endpoint. from is the
// envelope sender, operator receives alert copies.
func NewSMTPMailer(host string, port int, username, password, from, operator string) (*SMTPMailer, error) {
	opts := []gomail.Option{
		gomail.WithPort(port),
		gomail.WithTLSPolicy(gomail.TLSOpportunistic),
	}
	if username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(username),
			gomail.WithPassword(password),
		)
	}
	client, err := gomail.NewClient(host, opts...)
	if err != nil {
		return nil, fmt.Errorf("smtp client: %w", err)
	}
	return &SMTPMailer{client: client, from: from, operator: operator}, nil
}

func (m *SMTPMailer) send(ctx context.Context, to, subject string, tmpl *template.Template, n Notification) error {
	var body bytes.Buffer
	if err := tmpl.Execute(&body, n); err != nil {
		return fmt.Errorf("render mail body: %w", err)
	}

	msg := gomail.NewMsg()
	if err := msg.From(m.from); err != nil {
		return fmt.Errorf("mail from: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("mail to: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextHTML, body.String())

	return m.client.DialAndSendWithContext(ctx, msg)
}

// SendOperatorAlert mails the operator about a new submission.
func (m *SMTPMailer) SendOperatorAlert(ctx context.Context, n Notification) error {
	subject := "New contact message"
	if n.Kind == KindNewsletter {
		subject = "New newsletter subscriber"
	}
	return m.send(ctx, m.operator, subject, alertTmpl, n)
}

// SendConfirmation mails the submitter an acknowledgement.
func (m *SMTPMailer) SendConfirmation(ctx context.Context, n Notification) error {
	subject := "Thanks for getting in touch"
	if n.Kind == KindNewsletter {
		subject = "You're subscribed"
	}
	return m.send(ctx, n.Email, subject, confirmTmpl, n)
}
