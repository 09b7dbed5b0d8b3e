package emailsvc

import (
	"fmt"
	"net/mail"
	"strings"
	"sync"

	"github.com/samber/lo"

	"github.com/Umairism/Teachers-Club/core"
)

// transport delivers one rendered message.
type transport interface {
	deliver(env envelope, msg core.EmailMessage) error
}

// envelope holds what the Service adds to every message.
type envelope struct {
	From    mail.Address
	Subject string
}

// Service renders messages and hands them over to a transport, asynchronously unless built by a mock constructor.
type Service struct {
	from            mail.Address
	subjPrefix      string
	frontendBaseURL string
	transport       transport
	logger          core.Logger
	synchronous     bool
	pending         sync.WaitGroup
}

var _ core.EmailService = (*Service)(nil)

func newService(conf *core.Config, tr transport, logger core.Logger) *Service {
	return &Service{
		from:            conf.Email.DefaultFromEmail,
		subjPrefix:      "[" + conf.AppName + "] ",
		frontendBaseURL: conf.Email.FrontendBaseURL,
		transport:       tr,
		logger:          logger,
	}
}

func (svc *Service) SendMessages(messages ...*core.EmailMessage) {
	for _, msg := range messages {
		if svc.synchronous {
			svc.dispatch(msg)
			continue
		}
		svc.pending.Add(1)
		go func(msg *core.EmailMessage) {
			defer svc.pending.Done()
			svc.dispatch(msg)
		}(msg)
	}
}

// Wait blocks until every message sent so far went through the transport.
func (svc *Service) Wait() {
	svc.pending.Wait()
}

func (svc *Service) dispatch(msg *core.EmailMessage) {
	if err := msg.Render(svc.frontendBaseURL); err != nil {
		svc.logger.Error(fmt.Sprintf("rendering email %q: %v", msg.Subject, err), err)
		return
	}
	if !msg.HasRecipients() || !msg.HasContent() {
		svc.logger.Warn(fmt.Sprintf("dropping email %q: no recipients or no content", msg.Subject))
		return
	}

	env := envelope{From: svc.from, Subject: svc.subjPrefix + msg.Subject}
	if err := svc.transport.deliver(env, *msg); err != nil {
		svc.logger.Error(
			fmt.Sprintf("sending email %q: %v", msg.Subject, err),
			err,
			map[string]interface{}{"to": joinAddresses(msg.To)},
		)
	}
}

func joinAddresses(addrs []mail.Address) string {
	return strings.Join(lo.Map(addrs, func(a mail.Address, _ int) string { return a.String() }), ", ")
}
