package emailsvc

import (
	"net/http"
	"net/mail"

	"github.com/pkg/errors"
	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/Umairism/Teachers-Club/core"
)

const (
	sendgridHost     = "https://api.sendgrid.com"
	sendgridEndpoint = "/v3/mail/send"
)

type sendgridTransport struct {
	key string
}

func (tr sendgridTransport) deliver(env envelope, msg core.EmailMessage) error {
	req := sendgrid.GetRequest(tr.key, sendgridEndpoint, sendgridHost)
	req.Method = http.MethodPost
	req.Body = sgmail.GetRequestBody(buildSGMail(env, msg))

	res, err := sendgrid.API(req)
	if err != nil {
		return errors.Wrap(err, "calling sendgrid")
	}
	if res.StatusCode >= http.StatusBadRequest {
		return errors.Errorf("sendgrid responded %d: %s", res.StatusCode, res.Body)
	}
	return nil
}

func buildSGMail(env envelope, msg core.EmailMessage) *sgmail.SGMailV3 {
	sgEmails := func(addrs []mail.Address) []*sgmail.Email {
		emails := make([]*sgmail.Email, 0, len(addrs))
		for _, a := range addrs {
			emails = append(emails, sgmail.NewEmail(a.Name, a.Address))
		}
		return emails
	}

	p := sgmail.NewPersonalization()
	p.Subject = env.Subject
	p.AddTos(sgEmails(msg.To)...)
	p.AddCCs(sgEmails(msg.Cc)...)
	p.AddBCCs(sgEmails(msg.Bcc)...)

	m := sgmail.NewV3Mail()
	m.SetFrom(sgmail.NewEmail(env.From.Name, env.From.Address))
	m.AddPersonalizations(p)
	if msg.TextContent != "" {
		m.AddContent(sgmail.NewContent("text/plain", msg.TextContent))
	}
	if msg.HTMLContent != "" {
		m.AddContent(sgmail.NewContent("text/html", msg.HTMLContent))
	}
	return m
}

// NewSendgridService sends emails through the SendGrid v3 API.
func NewSendgridService(conf *core.Config, logger core.Logger) *Service {
	return newService(conf, sendgridTransport{key: conf.Email.SendgridAPIKey}, logger)
}
