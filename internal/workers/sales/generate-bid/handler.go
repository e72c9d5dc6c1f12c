package generatebid

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"rfp-workers/internal/catalog"
	"rfp-workers/internal/common/errors"
	"rfp-workers/internal/common/logger"
	"rfp-workers/internal/models"
)

const (
	TaskType = "generate-bid"
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
		errorCode := string(errors.ErrCodeBidGenerationFailed)
		if stdErr, ok := err.(*errors.StandardError); ok {
			errorCode = string(stdErr.Code)
		}
		h.failJob(client, job, errorCode, err.Error(), 0)
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input == nil {
		return nil, fmt.Errorf("input cannot be nil")
	}
	if input.RFPID == "" {
		return nil, errors.NewBidGenerationFailedError("", fmt.Errorf("rfpId is required"))
	}

	summary := input.Summary
	if summary == nil && h.repo != nil {
		loaded, err := h.repo.LoadSummary(ctx, input.RFPID)
		if err != nil {
			h.logger.Warn("no stored summary for bid header", map[string]interface{}{
				"rfpId": input.RFPID,
				"error": err.Error(),
			})
		} else {
			summary = loaded
		}
	}

	document := h.renderBid(input, summary)

	if h.repo != nil {
		if err := h.repo.UpdateBidStatus(ctx, input.RFPID, models.BidStatusDrafted); err != nil {
			h.logger.Warn("failed to update bid status", map[string]interface{}{
				"rfpId": input.RFPID,
				"error": err.Error(),
			})
		}
	}

	h.logger.Info("bid document generated", map[string]interface{}{
		"rfpId":     input.RFPID,
		"lineItems": len(input.SelectedProducts),
	})

	return &Output{
		RFPID:       input.RFPID,
		BidDocument: document,
		LineItems:   len(input.SelectedProducts),
	}, nil
}

// renderBid produces the commercial bid letter. Deterministic except for the
// dateline; every figure comes from the pricing summary as-is.
func (h *Handler) renderBid(input *Input, summary *models.RFPSummary) string {
	var b strings.Builder

	rfpName := input.RFPID
	clientName := "Client"
	dueDate := ""
	if summary != nil {
		if summary.Info.RFPName != "" {
			rfpName = summary.Info.RFPName
		}
		if summary.Info.ClientName != "" {
			clientName = summary.Info.ClientName
		}
		dueDate = summary.Info.DueDate
	}

	b.WriteString("FINAL COMMERCIAL BID\n")
	b.WriteString("====================\n\n")
	fmt.Fprintf(&b, "Date: %s\n", time.Now().UTC().Format("2006-01-02"))
	fmt.Fprintf(&b, "From: %s\n", h.config.CompanyName)
	fmt.Fprintf(&b, "To:   %s\n\n", clientName)
	fmt.Fprintf(&b, "RFP REFERENCE:\n%s (%s)\n", rfpName, input.RFPID)
	if dueDate != "" {
		fmt.Fprintf(&b, "Submission due: %s\n", dueDate)
	}
	b.WriteString("\n")

	b.WriteString("SCOPE OF SUPPLY:\n")
	if len(input.SelectedProducts) == 0 {
		b.WriteString("No catalog products matched the stated requirements.\n")
	}
	for i, sel := range input.SelectedProducts {
		fmt.Fprintf(&b, "%d. %s\n", i+1, sel.RequirementName)
		fmt.Fprintf(&b, "   Offered: %s %s (SKU %s, spec match %.2f%%)\n",
			sel.OEMName, sel.OEMProductName, sel.SKU, sel.MatchPercentage)
		fmt.Fprintf(&b, "   Qty %d x INR %.2f = INR %.2f\n",
			sel.Quantity, sel.UnitPrice, sel.TotalPrice)
	}
	b.WriteString("\n")

	if len(input.Pricing.TestingCosts) > 0 {
		b.WriteString("TESTING & ACCEPTANCE:\n")
		for _, tc := range input.Pricing.TestingCosts {
			fmt.Fprintf(&b, "- %s: %d x INR %.2f = INR %.2f\n",
				tc.TestRequirement, tc.Quantity, tc.PricePerTest, tc.TotalTestCost)
		}
		b.WriteString("\n")
	}

	totals := input.Pricing.Totals
	b.WriteString("COMMERCIAL SUMMARY:\n")
	fmt.Fprintf(&b, "Material cost:      INR %.2f\n", totals.TotalMaterialCost)
	fmt.Fprintf(&b, "Testing cost:       INR %.2f\n", totals.TotalTestingCost)
	fmt.Fprintf(&b, "Subtotal:           INR %.2f\n", totals.Subtotal)
	fmt.Fprintf(&b, "Contingency (10%%):  INR %.2f\n", totals.Contingency)
	fmt.Fprintf(&b, "GRAND TOTAL:        INR %.2f\n\n", totals.GrandTotal)

	fmt.Fprintf(&b, "ESTIMATED WIN PROBABILITY: %.1f%%\n\n", input.WinProbability)

	fmt.Fprintf(&b, "VALIDITY:\n%d days from the date of this bid.\n\n", h.config.ValidityDays)
	b.WriteString("DELIVERY:\nAs per RFP terms.\n\n")
	b.WriteString("PAYMENT TERMS:\nStandard OEM terms.\n\n")
	fmt.Fprintf(&b, "---\nSystem generated. Subject to management approval.\nContact: %s\n", h.config.ContactEmail)

	return b.String()
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
