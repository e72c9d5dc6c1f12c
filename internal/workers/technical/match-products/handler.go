// internal/workers/technical/match-products/handler.go
package matchproducts

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"rfp-workers/internal/catalog"
	"rfp-workers/internal/common/errors"
	"rfp-workers/internal/common/logger"
	"rfp-workers/internal/common/metrics"
	"rfp-workers/internal/matching"
	"rfp-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "match-products"
)

type Handler struct {
	config *Config
	repo   *catalog.Repository
	logger logger.Logger
}

func NewHandler(config *Config, repo *catalog.Repository, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		repo:   repo,
		logger: log.WithFields(map[string]interface{}{"taskType": TaskType}),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	startTime := time.Now()
	metrics.WorkerJobsActive.WithLabelValues(TaskType).Inc()
	defer metrics.WorkerJobsActive.WithLabelValues(TaskType).Dec()

	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		metrics.WorkerJobsFailed.WithLabelValues(TaskType, "PARSE_ERROR").Inc()
		h.failJob(client, job, "PARSE_ERROR", fmt.Sprintf("parse input: %v", err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		code := "MATCH_FAILED"
		if stdErr, ok := err.(*errors.StandardError); ok {
			code = string(stdErr.Code)
		}
		metrics.WorkerJobsFailed.WithLabelValues(TaskType, code).Inc()
		h.failJob(client, job, code, err.Error())
		return
	}

	h.completeJob(client, job, output)
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(startTime).Seconds())
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	summary := input.Summary
	if summary == nil {
		if input.RFPID == "" {
			return nil, fmt.Errorf("neither rfpSummary nor rfpId provided")
		}
		var err error
		summary, err = h.repo.LoadSummary(ctx, input.RFPID)
		if err != nil {
			return nil, errors.NewQueryExecutionFailedError("load_summary", err)
		}
	}

	rfpID := input.RFPID
	if rfpID == "" {
		rfpID = summary.Info.RFPID
	}

	entries, err := h.repo.Snapshot(ctx)
	if err != nil {
		return nil, errors.NewQueryExecutionFailedError("catalog_snapshot", err)
	}
	if len(entries) == 0 {
		return nil, errors.NewCatalogEmptyError(rfpID)
	}

	recommendations := make(map[string][]models.Recommendation, len(summary.Products))
	matched := 0
	for _, req := range summary.Products {
		recs := matching.Rank(req, entries)
		recommendations[req.ProductName] = recs
		if len(recs) > 0 {
			matched++
		}

		if err := h.repo.SaveRecommendations(ctx, rfpID, req.ProductName, recs); err != nil {
			return nil, errors.NewDatabaseInsertFailedError(err)
		}
	}

	if err := h.repo.UpdateBidStatus(ctx, rfpID, models.BidStatusMatched); err != nil {
		return nil, errors.NewDatabaseInsertFailedError(err)
	}

	h.logger.Info("products matched", map[string]interface{}{
		"rfpId":         rfpID,
		"totalProducts": len(summary.Products),
		"matchedCount":  matched,
		"catalogSize":   len(entries),
	})

	return &Output{
		RFPID:           rfpID,
		Recommendations: recommendations,
		MatchedCount:    matched,
		TotalProducts:   len(summary.Products),
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
