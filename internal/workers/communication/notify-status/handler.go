package notifystatus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"

	"rfp-workers/internal/catalog"
	"rfp-workers/internal/common/logger"
	"rfp-workers/internal/models"
)

const (
	TaskType = "notify-status"
)

var (
	ErrNotificationSendFailed = errors.New("NOTIFICATION_SEND_FAILED")
	ErrInvalidStatus          = errors.New("invalid bid status")
)

// SNSService is the publish surface of the SNS wrapper, split out for mocking.
type SNSService interface {
	Publish(ctx context.Context, input *sns.PublishInput) (*sns.PublishOutput, error)
}

var validStatuses = map[models.BidStatus]struct{}{
	models.BidStatusExtracted: {},
	models.BidStatusMatched:   {},
	models.BidStatusPriced:    {},
	models.BidStatusDrafted:   {},
	models.BidStatusSent:      {},
	models.BidStatusRejected:  {},
}

type Handler struct {
	config    *Config
	repo      *catalog.Repository
	snsClient SNSService
	logger    logger.Logger
}

func NewHandler(config *Config, repo *catalog.Repository, snsClient SNSService, log logger.Logger) *Handler {
	return &Handler{
		config:    config,
		repo:      repo,
		snsClient: snsClient,
		logger:    log.WithFields(map[string]interface{}{"taskType": TaskType}),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.failJob(client, job, "PARSE_ERROR", fmt.Sprintf("parse input: %v", err), 0)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		errorCode := "NOTIFICATION_SEND_FAILED"
		retries := int32(0)
		if errors.Is(err, ErrNotificationSendFailed) {
			retries = 3
		}
		h.failJob(client, job, errorCode, err.Error(), retries)
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input == nil {
		return nil, fmt.Errorf("input cannot be nil")
	}
	if input.RFPID == "" {
		return nil, fmt.Errorf("rfpId is required")
	}

	status := models.BidStatus(input.Status)
	if _, ok := validStatuses[status]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrInvalidStatus, input.Status)
	}

	if h.repo != nil {
		if err := h.repo.UpdateBidStatus(ctx, input.RFPID, status); err != nil {
			h.logger.Warn("failed to update bid status", map[string]interface{}{
				"rfpId": input.RFPID,
				"error": err.Error(),
			})
		}
	}

	sentAt := time.Now().UTC().Format(time.RFC3339)
	notificationID := uuid.New().String()

	if !h.config.SNSEnabled || h.snsClient == nil {
		h.logger.Info("status notification skipped, SNS disabled", map[string]interface{}{
			"rfpId":  input.RFPID,
			"status": input.Status,
		})
		return &Output{NotificationID: notificationID, Status: StatusDisabled, SentAt: sentAt}, nil
	}

	message := h.buildMessage(input, notificationID, sentAt)

	_, err := h.snsClient.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(h.config.TopicARN),
		Subject:  aws.String(fmt.Sprintf("RFP %s status: %s", input.RFPID, input.Status)),
		Message:  aws.String(message),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"rfpId": {
				DataType:    aws.String("String"),
				StringValue: aws.String(input.RFPID),
			},
			"status": {
				DataType:    aws.String("String"),
				StringValue: aws.String(input.Status),
			},
		},
	})
	if err != nil {
		h.logger.Error("SNS publish failed", map[string]interface{}{
			"rfpId": input.RFPID,
			"error": err.Error(),
		})
		return nil, fmt.Errorf("%w: %v", ErrNotificationSendFailed, err)
	}

	h.logger.Info("status notification published", map[string]interface{}{
		"rfpId":          input.RFPID,
		"status":         input.Status,
		"notificationId": notificationID,
	})

	return &Output{NotificationID: notificationID, Status: StatusSent, SentAt: sentAt}, nil
}

func (h *Handler) buildMessage(input *Input, notificationID, sentAt string) string {
	payload := map[string]interface{}{
		"notificationId": notificationID,
		"rfpId":          input.RFPID,
		"status":         input.Status,
		"timestamp":      sentAt,
	}
	if input.Message != "" {
		payload["message"] = input.Message
	}
	if input.Metadata != nil {
		payload["metadata"] = input.Metadata
	}
	raw, _ := json.Marshal(payload)
	return string(raw)
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	_, err = cmd.Send(context.Background())
	if err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err,
		})
	}
}

func (h *Handler) failJob(client worker.JobClient, job entities.Job, errorCode, errorMessage string, retries int32) {
	h.logger.Error("job failed", map[string]interface{}{
		"jobKey":       job.Key,
		"errorCode":    errorCode,
		"errorMessage": errorMessage,
		"retries":      retries,
	})

	_, err := client.NewThrowErrorCommand().
		JobKey(job.Key).
		ErrorCode(errorCode).
		ErrorMessage(errorMessage).
		Send(context.Background())
	if err != nil {
		h.logger.Error("failed to throw error", map[string]interface{}{
			"error": err,
		})
	}
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
