// internal/workers/technical/match-products/handler_test.go
package matchproducts

import (
	"context"
	"encoding/json"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rfp-workers/internal/catalog"
	"rfp-workers/internal/common/database"
	"rfp-workers/internal/common/logger"
	"rfp-workers/internal/models"
)

func newTestHandler(t *testing.T) (*Handler, sqlmock.Sqlmock, *miniredis.Miniredis) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	mock.MatchExpectationsInOrder(false)

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	repo := catalog.NewRepository(
		&database.PostgresClient{DB: db},
		&database.RedisClient{Client: rdb},
		time.Minute,
		logger.NewTestLogger(t),
	)
	return NewHandler(LoadConfig(), repo, logger.NewTestLogger(t)), mock, mr
}

func seedCatalog(t *testing.T, mr *miniredis.Miniredis, entries []models.CatalogEntry) {
	t.Helper()
	payload, err := json.Marshal(entries)
	require.NoError(t, err)
	require.NoError(t, mr.Set("catalog:oem_products:snapshot", string(payload)))
}

func TestExecuteRanksAndPersists(t *testing.T) {
	handler, mock, mr := newTestHandler(t)

	seedCatalog(t, mr, []models.CatalogEntry{
		{
			OEMProductID: 1, OEMName: "OEM Cables Ltd", ProductName: "LT Power Cable 95sqmm",
			SKU: "LT-95", Category: "power_cable", UnitPrice: 850.0,
			Specs: models.Specifications{"size": 95.0, "voltage": "1.1kV"},
		},
		{
			OEMProductID: 2, OEMName: "OEM Cables Ltd", ProductName: "HT Power Cable 300sqmm",
			SKU: "HT-300", Category: "power_cable", UnitPrice: 2100.0,
			Specs: models.Specifications{"size": 300.0, "voltage": "33kV"},
		},
	})

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO product_recommendations")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO product_recommendations")).
		WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE rfp_summaries SET bid_status")).
		WithArgs("matched", "RFP-001").
		WillReturnResult(sqlmock.NewResult(0, 1))

	input := &Input{
		RFPID: "RFP-001",
		Summary: &models.RFPSummary{
			Info: models.RFPInfo{RFPID: "RFP-001", RFPName: "Substation Cabling", ClientName: "Metro Power"},
			Products: []models.Requirement{{
				ProductName: "LT Power Cable",
				Category:    "power_cable",
				Quantity:    500,
				Specs:       models.Specifications{"size": "95sqmm", "voltage": "1.1kV"},
			}},
		},
	}

	output, err := handler.Execute(context.Background(), input)
	require.NoError(t, err)

	assert.Equal(t, "RFP-001", output.RFPID)
	assert.Equal(t, 1, output.TotalProducts)
	assert.Equal(t, 1, output.MatchedCount)

	recs := output.Recommendations["LT Power Cable"]
	require.Len(t, recs, 2)
	assert.Equal(t, "LT-95", recs[0].SKU)
	assert.Equal(t, 100.0, recs[0].MatchPercentage)
	assert.Equal(t, "HT-300", recs[1].SKU)
	assert.Equal(t, 0.0, recs[1].MatchPercentage)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecuteEmptyCatalog(t *testing.T) {
	handler, mock, _ := newTestHandler(t)

	mock.ExpectQuery("SELECT (.+) FROM oem_products").
		WillReturnRows(sqlmock.NewRows([]string{"id", "oem_name", "product_name", "sku", "category", "unit_price", "specifications"}))

	input := &Input{
		RFPID: "RFP-002",
		Summary: &models.RFPSummary{
			Products: []models.Requirement{{ProductName: "LT Power Cable"}},
		},
	}

	_, err := handler.Execute(context.Background(), input)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CATALOG_EMPTY")
}

func TestExecuteRequiresSummaryOrID(t *testing.T) {
	handler, _, _ := newTestHandler(t)

	_, err := handler.Execute(context.Background(), &Input{})
	assert.Error(t, err)
}
