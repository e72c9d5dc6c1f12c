// internal/workers/technical/estimate-win/handler.go
package estimatewin

import (
	"context"
	"encoding/json"
	"fmt"
	"math"

	"rfp-workers/internal/common/logger"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "estimate-win"
)

// Component weights. Coverage and quality reward supplying many requirements
// with close matches; compliance docks 5 points per weak selection (below
// 70%) from a 10 point base.
const (
	coverageWeight     = 40.0
	qualityWeight      = 50.0
	complianceBase     = 10.0
	compliancePenalty  = 5.0
	weakMatchThreshold = 70.0
)

type Handler struct {
	config *Config
	logger logger.Logger
}

func NewHandler(config *Config, log logger.Logger) *Handler {
	return &Handler{
		config: config,
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
		h.failJob(client, job, "MATCH_FAILED", err.Error())
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(_ context.Context, input *Input) (*Output, error) {
	total := input.TotalProducts
	if total == 0 {
		total = len(input.Products)
	}

	factors := WinFactors{}

	// An RFP with no requirements scores zero outright, even if stale
	// selections ride along in the input.
	if total == 0 {
		h.logger.Info("win probability estimated", map[string]interface{}{
			"rfpId":          input.RFPID,
			"totalProducts":  0,
			"selectedCount":  len(input.SelectedProducts),
			"winProbability": 0.0,
		})
		return &Output{RFPID: input.RFPID, WinProbability: 0, Factors: factors}, nil
	}

	factors.Coverage = float64(len(input.SelectedProducts)) / float64(total) * coverageWeight

	if len(input.SelectedProducts) > 0 {
		sum := 0.0
		weak := 0
		for _, sel := range input.SelectedProducts {
			sum += sel.MatchPercentage
			if sel.MatchPercentage < weakMatchThreshold {
				weak++
			}
		}
		avg := sum / float64(len(input.SelectedProducts))
		factors.Quality = avg / 100 * qualityWeight
		factors.Compliance = math.Max(0, complianceBase-compliancePenalty*float64(weak))
	}

	probability := factors.Coverage + factors.Quality + factors.Compliance
	if probability < 0 {
		probability = 0
	}
	if probability > 100 {
		probability = 100
	}
	probability = math.Round(probability*10) / 10

	h.logger.Info("win probability estimated", map[string]interface{}{
		"rfpId":          input.RFPID,
		"totalProducts":  total,
		"selectedCount":  len(input.SelectedProducts),
		"winProbability": probability,
	})

	return &Output{
		RFPID:          input.RFPID,
		WinProbability: probability,
		Factors:        factors,
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
