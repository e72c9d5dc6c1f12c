// internal/workers/pricing/price-bid/handler.go
package pricebid

import (
	"context"
	"encoding/json"
	"fmt"
	"math"

	"rfp-workers/internal/catalog"
	"rfp-workers/internal/common/errors"
	"rfp-workers/internal/common/logger"
	"rfp-workers/internal/common/metrics"
	"rfp-workers/internal/models"
	"rfp-workers/pkg/pricebook"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "price-bid"
)

type Handler struct {
	config *Config
	repo   *catalog.Repository
	book   *pricebook.PriceBook
	logger logger.Logger
}

func NewHandler(config *Config, repo *catalog.Repository, book *pricebook.PriceBook, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		repo:   repo,
		book:   book,
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
		code := "PRICING_FAILED"
		if stdErr, ok := err.(*errors.StandardError); ok {
			code = string(stdErr.Code)
		}
		h.failJob(client, job, code, err.Error())
		return
	}

	h.completeJob(client, job, output)
}

// execute selects the rank-1 candidate per requirement and prices the bid.
// The computation is a pure function of its input: pricing the same RFP twice
// produces identical selections and totals.
func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	selections := make([]models.Selection, 0, len(input.Products))
	materials := make([]models.MaterialCost, 0, len(input.Products))

	for _, req := range input.Products {
		recs := input.Recommendations[req.ProductName]
		if len(recs) == 0 {
			// No candidate at all: the requirement is left out of the bid.
			h.logger.Warn("no candidates for requirement", map[string]interface{}{
				"rfpId":   input.RFPID,
				"product": req.ProductName,
			})
			continue
		}
		top := recs[0]

		quantity := req.Quantity
		if quantity <= 0 {
			quantity = h.config.DefaultQuantity
		}

		unitPrice := top.UnitPrice
		if unitPrice <= 0 {
			unitPrice = h.book.ProductPrice(top.SKU)
		}

		totalPrice := round2(unitPrice * float64(quantity))

		selections = append(selections, models.Selection{
			RequirementID:   req.ProductID,
			RequirementName: req.ProductName,
			OEMName:         top.OEMName,
			OEMProductName:  top.ProductName,
			SKU:             top.SKU,
			MatchPercentage: top.MatchPercentage,
			Quantity:        quantity,
			UnitPrice:       unitPrice,
			TotalPrice:      totalPrice,
		})
		materials = append(materials, models.MaterialCost{
			RequirementName: req.ProductName,
			SKU:             top.SKU,
			ProductName:     top.ProductName,
			Quantity:        quantity,
			Unit:            "meters",
			UnitPrice:       unitPrice,
			TotalPrice:      totalPrice,
		})
	}

	testing := make([]models.TestingCost, 0, len(input.TestRequirements))
	numProducts := len(selections)
	for _, req := range input.TestRequirements {
		name, price := h.book.TestPrice(req)
		testing = append(testing, models.TestingCost{
			TestRequirement: req,
			TestName:        name,
			PricePerTest:    price,
			Quantity:        numProducts,
			TotalTestCost:   round2(price * float64(numProducts)),
		})
	}

	totals := sumTotals(materials, testing, h.config.ContingencyRate)

	if err := h.repo.SaveSelections(ctx, input.RFPID, selections); err != nil {
		return nil, errors.NewDatabaseInsertFailedError(err)
	}
	if err := h.repo.UpdateBidStatus(ctx, input.RFPID, models.BidStatusPriced); err != nil {
		return nil, errors.NewDatabaseInsertFailedError(err)
	}

	metrics.BidsPriced.Inc()
	h.logger.Info("bid priced", map[string]interface{}{
		"rfpId":         input.RFPID,
		"selectedCount": numProducts,
		"grandTotal":    totals.GrandTotal,
	})

	return &Output{
		RFPID:            input.RFPID,
		SelectedProducts: selections,
		Pricing: models.PricingSummary{
			MaterialCosts: materials,
			TestingCosts:  testing,
			Totals:        totals,
		},
	}, nil
}

func sumTotals(materials []models.MaterialCost, testing []models.TestingCost, contingencyRate float64) models.PricingTotals {
	material := 0.0
	for _, m := range materials {
		material += m.TotalPrice
	}
	tests := 0.0
	for _, tc := range testing {
		tests += tc.TotalTestCost
	}

	subtotal := round2(material + tests)
	contingency := round2(subtotal * contingencyRate)
	return models.PricingTotals{
		TotalMaterialCost: round2(material),
		TotalTestingCost:  round2(tests),
		Subtotal:          subtotal,
		Contingency:       contingency,
		GrandTotal:        round2(subtotal + contingency),
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
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
