package emailsend

import (
	"context"
	"errors"
	"testing"
	"time"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	stderrors "rfp-workers/internal/common/errors"
	"rfp-workers/internal/common/logger"
)

func createTestConfig() *Config {
	cfg := DefaultConfig()
	cfg.Timeout = 5 * time.Second
	return cfg
}

func createTestLogger(t *testing.T) logger.Logger {
	return logger.NewZapAdapter(zaptest.NewLogger(t))
}

type fakeSES struct {
	lastInput *ses.SendEmailInput
	err       error
}

func (f *fakeSES) SendEmail(ctx context.Context, input *ses.SendEmailInput) (*ses.SendEmailOutput, error) {
	f.lastInput = input
	if f.err != nil {
		return nil, f.err
	}
	return &ses.SendEmailOutput{MessageId: awssdk.String("ses-msg-001")}, nil
}

func TestServiceSendsViaSES(t *testing.T) {
	fake := &fakeSES{}
	svc := NewService(createTestConfig(), []Mailer{NewSESMailer(fake)}, createTestLogger(t))

	output, err := svc.Execute(context.Background(), &Input{
		RFPID:       "RFP-2024-001",
		To:          "procurement@client.example.com",
		BidDocument: "FINAL COMMERCIAL BID\n...",
	})
	require.NoError(t, err)

	assert.True(t, output.Success)
	assert.Equal(t, "SES", output.Provider)
	assert.Equal(t, "ses-msg-001", output.MessageID)

	require.NotNil(t, fake.lastInput)
	assert.Equal(t, "bids@aparcables.example.com", awssdk.ToString(fake.lastInput.Source))
	assert.Equal(t, []string{"procurement@client.example.com"}, fake.lastInput.Destination.ToAddresses)
	assert.Equal(t, "Commercial Bid - RFP-2024-001", awssdk.ToString(fake.lastInput.Message.Subject.Data))
	assert.NotNil(t, fake.lastInput.Message.Body.Text)
	assert.Nil(t, fake.lastInput.Message.Body.Html)
}

func TestServiceFallsBackToSimulated(t *testing.T) {
	fake := &fakeSES{err: errors.New("ses unavailable")}
	svc := NewService(createTestConfig(), []Mailer{
		NewSESMailer(fake),
		NewSimulatedMailer(createTestLogger(t)),
	}, createTestLogger(t))

	output, err := svc.Execute(context.Background(), &Input{
		To:   "procurement@client.example.com",
		Body: "bid body",
	})
	require.NoError(t, err)

	assert.True(t, output.Success)
	assert.Equal(t, "SIMULATED", output.Provider)
	assert.Contains(t, output.MessageID, "simulated-")
}

func TestServiceAllMailersFail(t *testing.T) {
	fake := &fakeSES{err: errors.New("ses unavailable")}
	svc := NewService(createTestConfig(), []Mailer{NewSESMailer(fake)}, createTestLogger(t))

	output, err := svc.Execute(context.Background(), &Input{
		To:   "procurement@client.example.com",
		Body: "bid body",
	})
	assert.Error(t, err)
	assert.Nil(t, output)

	stdErr, ok := err.(*stderrors.StandardError)
	require.True(t, ok)
	assert.Equal(t, stderrors.ErrCodeEmailSendFailed, stdErr.Code)
	assert.True(t, stdErr.Retryable)
}

func TestServiceValidation(t *testing.T) {
	svc := NewService(createTestConfig(), []Mailer{NewSimulatedMailer(createTestLogger(t))}, createTestLogger(t))

	tests := []struct {
		name  string
		input *Input
	}{
		{name: "missing to", input: &Input{Body: "x"}},
		{name: "malformed to", input: &Input{To: "not-an-email", Body: "x"}},
		{name: "malformed cc", input: &Input{To: "a@b.example.com", CC: "bad", Body: "x"}},
		{name: "malformed replyTo", input: &Input{To: "a@b.example.com", ReplyTo: "bad", Body: "x"}},
		{name: "empty body", input: &Input{To: "a@b.example.com"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output, err := svc.Execute(context.Background(), tt.input)
			assert.Error(t, err)
			assert.Nil(t, output)

			stdErr, ok := err.(*stderrors.StandardError)
			require.True(t, ok)
			assert.Equal(t, stderrors.ErrorCode("VALIDATION_FAILED"), stdErr.Code)
			assert.False(t, stdErr.Retryable)
		})
	}
}

func TestServiceHTMLBody(t *testing.T) {
	fake := &fakeSES{}
	svc := NewService(createTestConfig(), []Mailer{NewSESMailer(fake)}, createTestLogger(t))

	_, err := svc.Execute(context.Background(), &Input{
		To:     "procurement@client.example.com",
		Body:   "<h1>Bid</h1>",
		IsHTML: true,
	})
	require.NoError(t, err)

	assert.NotNil(t, fake.lastInput.Message.Body.Html)
	assert.Nil(t, fake.lastInput.Message.Body.Text)
}

func TestServiceCCRecipients(t *testing.T) {
	fake := &fakeSES{}
	svc := NewService(createTestConfig(), []Mailer{NewSESMailer(fake)}, createTestLogger(t))

	_, err := svc.Execute(context.Background(), &Input{
		To:   "procurement@client.example.com",
		CC:   "sales@apar.example.com, legal@apar.example.com",
		Body: "bid body",
	})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"procurement@client.example.com",
		"sales@apar.example.com",
		"legal@apar.example.com",
	}, fake.lastInput.Destination.ToAddresses)
}

func TestHandlerExecuteWithoutRepo(t *testing.T) {
	svc := NewService(createTestConfig(), []Mailer{NewSimulatedMailer(createTestLogger(t))}, createTestLogger(t))
	handler := NewHandler(createTestConfig(), svc, nil, createTestLogger(t))

	output, err := handler.Execute(context.Background(), &Input{
		RFPID: "RFP-2024-001",
		To:    "procurement@client.example.com",
		Body:  "bid body",
	})
	require.NoError(t, err)
	assert.True(t, output.Success)
}
