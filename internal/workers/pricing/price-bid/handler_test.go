// internal/workers/pricing/price-bid/handler_test.go
package pricebid

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rfp-workers/internal/catalog"
	"rfp-workers/internal/common/database"
	"rfp-workers/internal/common/logger"
	"rfp-workers/internal/models"
	"rfp-workers/pkg/pricebook"
)

func newTestHandler(t *testing.T) (*Handler, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	mock.MatchExpectationsInOrder(false)

	repo := catalog.NewRepository(
		&database.PostgresClient{DB: db},
		nil,
		time.Minute,
		logger.NewTestLogger(t),
	)
	book := pricebook.NewStandard(1000.00, 10000.00)
	return NewHandler(LoadConfig(), repo, book, logger.NewTestLogger(t)), mock
}

func expectPersist(mock sqlmock.Sqlmock, selections int) {
	for i := 0; i < selections; i++ {
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO selected_products")).
			WillReturnResult(sqlmock.NewResult(int64(i+1), 1))
	}
	mock.ExpectExec(regexp.QuoteMeta("UPDATE rfp_summaries SET bid_status")).
		WillReturnResult(sqlmock.NewResult(0, 1))
}

func baseInput() *Input {
	return &Input{
		RFPID: "RFP-001",
		Products: []models.Requirement{{
			ProductID:   11,
			ProductName: "LT Power Cable",
			Quantity:    1000,
		}},
		Recommendations: map[string][]models.Recommendation{
			"LT Power Cable": {
				{OEMProductID: 1, OEMName: "OEM Cables Ltd", ProductName: "LT Power Cable 95sqmm", SKU: "LT-95", MatchPercentage: 100.0, UnitPrice: 100.0},
				{OEMProductID: 2, OEMName: "OEM Cables Ltd", ProductName: "LT Power Cable 120sqmm", SKU: "LT-120", MatchPercentage: 50.0, UnitPrice: 130.0},
			},
		},
	}
}

func TestExecutePricesTopRecommendation(t *testing.T) {
	handler, mock := newTestHandler(t)
	expectPersist(mock, 1)

	output, err := handler.Execute(context.Background(), baseInput())
	require.NoError(t, err)

	require.Len(t, output.SelectedProducts, 1)
	sel := output.SelectedProducts[0]
	assert.Equal(t, "LT-95", sel.SKU)
	assert.Equal(t, 1000, sel.Quantity)
	assert.Equal(t, 100.0, sel.UnitPrice)
	assert.Equal(t, 100000.0, sel.TotalPrice)

	totals := output.Pricing.Totals
	assert.Equal(t, 100000.0, totals.TotalMaterialCost)
	assert.Equal(t, 100000.0, totals.Subtotal)
	assert.Equal(t, 10000.0, totals.Contingency)
	assert.Equal(t, 110000.0, totals.GrandTotal)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecuteDefaultsMissingQuantity(t *testing.T) {
	handler, mock := newTestHandler(t)
	expectPersist(mock, 1)

	input := baseInput()
	input.Products[0].Quantity = 0

	output, err := handler.Execute(context.Background(), input)
	require.NoError(t, err)

	assert.Equal(t, 1000, output.SelectedProducts[0].Quantity)
}

func TestExecuteFallsBackToPriceBook(t *testing.T) {
	handler, mock := newTestHandler(t)
	expectPersist(mock, 1)

	input := baseInput()
	input.Recommendations["LT Power Cable"][0].UnitPrice = 0

	output, err := handler.Execute(context.Background(), input)
	require.NoError(t, err)

	// Unknown SKU resolves to the book's default list price.
	assert.Equal(t, 1000.0, output.SelectedProducts[0].UnitPrice)
}

func TestExecuteSkipsUnmatchedRequirements(t *testing.T) {
	handler, mock := newTestHandler(t)
	expectPersist(mock, 1)

	input := baseInput()
	input.Products = append(input.Products, models.Requirement{
		ProductName: "Fiber Optic Cable",
		Quantity:    200,
	})

	output, err := handler.Execute(context.Background(), input)
	require.NoError(t, err)

	// The unmatched requirement yields no selection and no cost line.
	require.Len(t, output.SelectedProducts, 1)
	require.Len(t, output.Pricing.MaterialCosts, 1)
}

func TestExecutePricesTestRequirements(t *testing.T) {
	handler, mock := newTestHandler(t)
	expectPersist(mock, 2)

	input := baseInput()
	input.Products = append(input.Products, models.Requirement{
		ProductName: "Control Cable",
		Quantity:    300,
	})
	input.Recommendations["Control Cable"] = []models.Recommendation{
		{OEMProductID: 3, OEMName: "OEM Cables Ltd", ProductName: "Control Cable 2.5sqmm", SKU: "CTRL-2.5", MatchPercentage: 80.0, UnitPrice: 50.0},
	}
	input.TestRequirements = []string{"routine_test_mv", "seismic_qualification"}

	output, err := handler.Execute(context.Background(), input)
	require.NoError(t, err)

	require.Len(t, output.Pricing.TestingCosts, 2)

	known := output.Pricing.TestingCosts[0]
	assert.Equal(t, "routine_test_mv", known.TestName)
	assert.Equal(t, 8000.0, known.PricePerTest)
	assert.Equal(t, 2, known.Quantity)
	assert.Equal(t, 16000.0, known.TotalTestCost)

	unknown := output.Pricing.TestingCosts[1]
	assert.Equal(t, 10000.0, unknown.PricePerTest)
	assert.Equal(t, 20000.0, unknown.TotalTestCost)

	assert.Equal(t, 36000.0, output.Pricing.Totals.TotalTestingCost)
}

func TestExecuteIsIdempotent(t *testing.T) {
	handler, mock := newTestHandler(t)
	expectPersist(mock, 1)
	expectPersist(mock, 1)

	first, err := handler.Execute(context.Background(), baseInput())
	require.NoError(t, err)
	second, err := handler.Execute(context.Background(), baseInput())
	require.NoError(t, err)

	assert.Equal(t, first.SelectedProducts, second.SelectedProducts)
	assert.Equal(t, first.Pricing, second.Pricing)
}

func TestExecuteEmptyBid(t *testing.T) {
	handler, mock := newTestHandler(t)
	expectPersist(mock, 0)

	output, err := handler.Execute(context.Background(), &Input{RFPID: "RFP-002"})
	require.NoError(t, err)

	assert.Empty(t, output.SelectedProducts)
	assert.Equal(t, 0.0, output.Pricing.Totals.GrandTotal)
}
