package notifystatus

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"rfp-workers/internal/common/logger"
)

func createTestConfig() *Config {
	return &Config{
		SNSEnabled: true,
		TopicARN:   "arn:aws:sns:ap-south-1:000000000000:bid-status",
		AWSRegion:  "ap-south-1",
		Timeout:    5 * time.Second,
	}
}

func createTestLogger(t *testing.T) logger.Logger {
	return logger.NewZapAdapter(zaptest.NewLogger(t))
}

type fakeSNS struct {
	lastInput *sns.PublishInput
	err       error
}

func (f *fakeSNS) Publish(ctx context.Context, input *sns.PublishInput) (*sns.PublishOutput, error) {
	f.lastInput = input
	if f.err != nil {
		return nil, f.err
	}
	return &sns.PublishOutput{MessageId: aws.String("sns-msg-001")}, nil
}

func TestExecutePublishesStatusEvent(t *testing.T) {
	fake := &fakeSNS{}
	handler := NewHandler(createTestConfig(), nil, fake, createTestLogger(t))

	output, err := handler.Execute(context.Background(), &Input{
		RFPID:   "RFP-2024-001",
		Status:  "priced",
		Message: "bid priced at INR 500500.00",
	})
	require.NoError(t, err)

	assert.Equal(t, StatusSent, output.Status)
	assert.NotEmpty(t, output.NotificationID)
	assert.NotEmpty(t, output.SentAt)

	require.NotNil(t, fake.lastInput)
	assert.Equal(t, "arn:aws:sns:ap-south-1:000000000000:bid-status", aws.ToString(fake.lastInput.TopicArn))
	assert.Equal(t, "RFP RFP-2024-001 status: priced", aws.ToString(fake.lastInput.Subject))
	assert.Equal(t, "RFP-2024-001", aws.ToString(fake.lastInput.MessageAttributes["rfpId"].StringValue))
	assert.Equal(t, "priced", aws.ToString(fake.lastInput.MessageAttributes["status"].StringValue))

	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(aws.ToString(fake.lastInput.Message)), &payload))
	assert.Equal(t, "RFP-2024-001", payload["rfpId"])
	assert.Equal(t, "priced", payload["status"])
	assert.Equal(t, "bid priced at INR 500500.00", payload["message"])
}

func TestExecuteDisabledSNS(t *testing.T) {
	config := createTestConfig()
	config.SNSEnabled = false

	handler := NewHandler(config, nil, nil, createTestLogger(t))

	output, err := handler.Execute(context.Background(), &Input{
		RFPID:  "RFP-2024-001",
		Status: "sent",
	})
	require.NoError(t, err)

	assert.Equal(t, StatusDisabled, output.Status)
	assert.NotEmpty(t, output.NotificationID)
}

func TestExecutePublishFailure(t *testing.T) {
	fake := &fakeSNS{err: errors.New("topic unavailable")}
	handler := NewHandler(createTestConfig(), nil, fake, createTestLogger(t))

	output, err := handler.Execute(context.Background(), &Input{
		RFPID:  "RFP-2024-001",
		Status: "drafted",
	})

	assert.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotificationSendFailed))
	assert.Nil(t, output)
}

func TestExecuteValidation(t *testing.T) {
	handler := NewHandler(createTestConfig(), nil, &fakeSNS{}, createTestLogger(t))

	t.Run("missing rfpId", func(t *testing.T) {
		output, err := handler.Execute(context.Background(), &Input{Status: "priced"})
		assert.Error(t, err)
		assert.Nil(t, output)
	})

	t.Run("unknown status", func(t *testing.T) {
		output, err := handler.Execute(context.Background(), &Input{
			RFPID:  "RFP-2024-001",
			Status: "launched",
		})
		assert.Error(t, err)
		assert.True(t, errors.Is(err, ErrInvalidStatus))
		assert.Nil(t, output)
	})

	t.Run("nil input", func(t *testing.T) {
		output, err := handler.Execute(context.Background(), nil)
		assert.Error(t, err)
		assert.Nil(t, output)
	})
}

func TestExecuteAllLifecycleStatuses(t *testing.T) {
	fake := &fakeSNS{}
	handler := NewHandler(createTestConfig(), nil, fake, createTestLogger(t))

	for _, status := range []string{"extracted", "matched", "priced", "drafted", "sent", "rejected"} {
		output, err := handler.Execute(context.Background(), &Input{
			RFPID:  "RFP-2024-001",
			Status: status,
		})
		require.NoError(t, err, "status %s", status)
		assert.Equal(t, StatusSent, output.Status)
	}
}
