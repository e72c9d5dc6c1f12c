// internal/workers/extraction/extract-requirements/handler.go
package extractrequirements

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"rfp-workers/internal/catalog"
	"rfp-workers/internal/common/errors"
	"rfp-workers/internal/common/logger"
	"rfp-workers/internal/common/validation"
	"rfp-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
)

const (
	TaskType = "extract-requirements"
)

type Handler struct {
	config *Config
	llm    *LLMService
	repo   *catalog.Repository
	logger logger.Logger
}

func NewHandler(config *Config, llm *LLMService, repo *catalog.Repository, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		llm:    llm,
		repo:   repo,
		logger: log.WithFields(map[string]interface{}{"taskType": TaskType}),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.failJob(client, job, "PARSE_ERROR", fmt.Sprintf("parse input: %v", err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		code := "EXTRACTION_FAILED"
		if stdErr, ok := err.(*errors.StandardError); ok {
			code = string(stdErr.Code)
		}
		h.failJob(client, job, code, err.Error())
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if strings.TrimSpace(input.RFPDocument) == "" {
		return nil, errors.NewBusinessRuleError("empty RFP document", "rfpDocument variable is empty")
	}

	raw, provider, err := h.llm.ExtractSummary(ctx, input.RFPDocument)
	if err != nil {
		return nil, errors.NewExtractionFailedError(provider, err)
	}

	result, err := validation.ValidateSummary(raw)
	if err != nil {
		return nil, errors.NewExtractionFailedError(provider, err)
	}
	if !result.Valid {
		return nil, errors.NewExtractionSchemaInvalidError(strings.Join(result.GetErrorMessages(), "; "))
	}

	var doc extractedDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, errors.NewExtractionFailedError(provider, err)
	}

	rfpID := input.RFPID
	if rfpID == "" {
		rfpID = doc.Info.RFPID
	}
	if rfpID == "" {
		rfpID = "RFP-" + uuid.NewString()
	}
	doc.Info.RFPID = rfpID

	summary := doc.RFPSummary
	if err := h.repo.SaveSummary(ctx, rfpID, &summary, models.BidStatusExtracted); err != nil {
		return nil, errors.NewDatabaseInsertFailedError(err)
	}

	h.logger.Info("requirements extracted", map[string]interface{}{
		"rfpId":         rfpID,
		"provider":      provider,
		"totalProducts": len(summary.Products),
		"testCount":     len(doc.TestRequirements),
	})

	return &Output{
		RFPID:            rfpID,
		Summary:          &summary,
		TestRequirements: doc.TestRequirements,
		Provider:         provider,
		TotalProducts:    len(summary.Products),
	}, nil
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

func (h *Handler) failJob(client worker.JobClient, job entities.Job, errorCode, errorMessage string) {
	h.logger.Error("job failed", map[string]interface{}{
		"jobKey":       job.Key,
		"errorCode":    errorCode,
		"errorMessage": errorMessage,
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
