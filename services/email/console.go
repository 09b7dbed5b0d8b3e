package emailsvc

import (
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/textproto"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/Umairism/Teachers-Club/core"
)

// outbox records the messages delivered by mock services.
var outbox struct {
	sync.Mutex
	messages []core.EmailMessage
}

// LastSentMessage returns the last message delivered by a mock service, if any.
func LastSentMessage() (core.EmailMessage, bool) {
	outbox.Lock()
	defer outbox.Unlock()
	if len(outbox.messages) == 0 {
		return core.EmailMessage{}, false
	}
	return outbox.messages[len(outbox.messages)-1], true
}

// consoleTransport prints messages as MIME documents instead of sending them.
type consoleTransport struct {
	out    *log.Logger
	record bool
}

func (tr consoleTransport) deliver(env envelope, msg core.EmailMessage) error {
	if tr.record {
		outbox.Lock()
		outbox.messages = append(outbox.messages, msg)
		outbox.Unlock()
	}
	if tr.out == nil {
		return nil
	}

	var doc strings.Builder
	if err := writeMIME(&doc, env, msg); err != nil {
		return err
	}
	tr.out.Println(doc.String())
	return nil
}

func writeMIME(w io.Writer, env envelope, msg core.EmailMessage) error {
	parts := multipart.NewWriter(w)
	headers := [][2]string{
		{"From", env.From.String()},
		{"MIME-Version", "1.0"},
		{"Date", time.Now().Format(time.RFC1123Z)},
		{"Subject", env.Subject},
		{"To", joinAddresses(msg.To)},
		{"CC", joinAddresses(msg.Cc)},
		{"BCC", joinAddresses(msg.Bcc)},
		{"Content-Type", "multipart/alternative; boundary=" + parts.Boundary()},
	}
	for _, h := range headers {
		if h[1] == "" {
			continue
		}
		if _, err := fmt.Fprintf(w, "%s: %s\r\n", h[0], h[1]); err != nil {
			return err
		}
	}
	_, _ = io.WriteString(w, "\r\n")

	for _, content := range []struct{ mime, body string }{
		{"text/plain; charset=utf-8", msg.TextContent},
		{"text/html; charset=utf-8", msg.HTMLContent},
	} {
		if content.body == "" {
			continue
		}
		pw, err := parts.CreatePart(textproto.MIMEHeader{"Content-Type": {content.mime}})
		if err != nil {
			return errors.Wrapf(err, "creating %s part", content.mime)
		}
		if _, err = io.WriteString(pw, content.body+"\r\n"); err != nil {
			return err
		}
	}
	return parts.Close()
}

// NewConsoleService prints emails to stdout instead of sending them.
func NewConsoleService(conf *core.Config, logger core.Logger) *Service {
	return newService(conf, consoleTransport{out: log.New(log.Writer(), "EMAIL : ", log.LstdFlags)}, logger)
}

// NewConsoleServiceMock delivers synchronously and silently; see LastSentMessage.
func NewConsoleServiceMock(conf *core.Config, logger core.Logger) *Service {
	svc := newService(conf, consoleTransport{record: true}, logger)
	svc.synchronous = true
	return svc
}
