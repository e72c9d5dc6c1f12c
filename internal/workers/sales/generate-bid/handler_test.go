package generatebid

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"rfp-workers/internal/common/logger"
	"rfp-workers/internal/models"
)

func createTestConfig() *Config {
	return &Config{
		Timeout:      5 * time.Second,
		ValidityDays: 90,
		CompanyName:  "Apar Industries Ltd",
		ContactEmail: "bids@aparcables.example.com",
	}
}

func createTestLogger(t *testing.T) logger.Logger {
	return logger.NewZapAdapter(zaptest.NewLogger(t))
}

func sampleInput() *Input {
	return &Input{
		RFPID: "RFP-2024-001",
		Summary: &models.RFPSummary{
			Info: models.RFPInfo{
				RFPName:    "Metro Rail Cable Supply",
				ClientName: "Mumbai Metro Rail Corp",
				DueDate:    "2024-09-30",
			},
			Products: []models.Requirement{
				{ProductName: "LT Cable 95sqmm"},
			},
		},
		SelectedProducts: []models.Selection{
			{
				RequirementName: "LT Cable 95sqmm",
				OEMName:         "Havells",
				OEMProductName:  "LT Power Cable 95sqmm",
				SKU:             "HAV-LT-95",
				MatchPercentage: 100,
				Quantity:        1000,
				UnitPrice:       450,
				TotalPrice:      450000,
			},
		},
		Pricing: models.PricingSummary{
			TestingCosts: []models.TestingCost{
				{
					TestRequirement: "routine_test_lv",
					TestName:        "routine_test_lv",
					PricePerTest:    5000,
					Quantity:        1,
					TotalTestCost:   5000,
				},
			},
			Totals: models.PricingTotals{
				TotalMaterialCost: 450000,
				TotalTestingCost:  5000,
				Subtotal:          455000,
				Contingency:       45500,
				GrandTotal:        500500,
			},
		},
		WinProbability: 92.5,
	}
}

func TestExecuteGeneratesBidDocument(t *testing.T) {
	handler := NewHandler(createTestConfig(), nil, createTestLogger(t))

	output, err := handler.Execute(context.Background(), sampleInput())
	require.NoError(t, err)

	assert.Equal(t, "RFP-2024-001", output.RFPID)
	assert.Equal(t, 1, output.LineItems)

	doc := output.BidDocument
	assert.Contains(t, doc, "FINAL COMMERCIAL BID")
	assert.Contains(t, doc, "Metro Rail Cable Supply")
	assert.Contains(t, doc, "Mumbai Metro Rail Corp")
	assert.Contains(t, doc, "Submission due: 2024-09-30")
	assert.Contains(t, doc, "Havells LT Power Cable 95sqmm (SKU HAV-LT-95, spec match 100.00%)")
	assert.Contains(t, doc, "Qty 1000 x INR 450.00 = INR 450000.00")
	assert.Contains(t, doc, "routine_test_lv: 1 x INR 5000.00 = INR 5000.00")
	assert.Contains(t, doc, "GRAND TOTAL:        INR 500500.00")
	assert.Contains(t, doc, "ESTIMATED WIN PROBABILITY: 92.5%")
	assert.Contains(t, doc, "90 days from the date of this bid")
	assert.Contains(t, doc, "Subject to management approval")
}

func TestExecuteWithoutSummaryFallsBackToRFPID(t *testing.T) {
	handler := NewHandler(createTestConfig(), nil, createTestLogger(t))

	input := sampleInput()
	input.Summary = nil

	output, err := handler.Execute(context.Background(), input)
	require.NoError(t, err)

	assert.Contains(t, output.BidDocument, "RFP-2024-001 (RFP-2024-001)")
	assert.Contains(t, output.BidDocument, "To:   Client")
	assert.NotContains(t, output.BidDocument, "Submission due:")
}

func TestExecuteEmptySelections(t *testing.T) {
	handler := NewHandler(createTestConfig(), nil, createTestLogger(t))

	input := sampleInput()
	input.SelectedProducts = nil
	input.Pricing = models.PricingSummary{}
	input.WinProbability = 0

	output, err := handler.Execute(context.Background(), input)
	require.NoError(t, err)

	assert.Equal(t, 0, output.LineItems)
	assert.Contains(t, output.BidDocument, "No catalog products matched the stated requirements.")
	assert.Contains(t, output.BidDocument, "GRAND TOTAL:        INR 0.00")
	assert.Contains(t, output.BidDocument, "ESTIMATED WIN PROBABILITY: 0.0%")
	assert.NotContains(t, output.BidDocument, "TESTING & ACCEPTANCE")
}

func TestExecuteMissingRFPID(t *testing.T) {
	handler := NewHandler(createTestConfig(), nil, createTestLogger(t))

	input := sampleInput()
	input.RFPID = ""

	output, err := handler.Execute(context.Background(), input)
	assert.Error(t, err)
	assert.Nil(t, output)
	assert.Contains(t, err.Error(), "BID_GENERATION_FAILED")
}

func TestExecuteDeterministicBody(t *testing.T) {
	handler := NewHandler(createTestConfig(), nil, createTestLogger(t))

	first, err := handler.Execute(context.Background(), sampleInput())
	require.NoError(t, err)
	second, err := handler.Execute(context.Background(), sampleInput())
	require.NoError(t, err)

	// the dateline is the only time-dependent line
	assert.Equal(t, first.BidDocument, second.BidDocument)
}
