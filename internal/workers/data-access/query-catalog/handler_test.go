package querycatalog

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zaptest"

	"rfp-workers/internal/common/logger"
	"rfp-workers/internal/models"
	"rfp-workers/internal/workers/data-access/query-catalog/queries"
)

func createTestConfig() *Config {
	return &Config{
		Timeout: 5 * time.Second,
	}
}

func createTestLogger(t *testing.T) logger.Logger {
	return logger.NewZapAdapter(zaptest.NewLogger(t))
}

func catalogRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "oem_name", "product_name", "sku", "category", "unit_price", "specifications",
	}).AddRow(
		int64(1), "Havells", "LT Power Cable 95sqmm", "HAV-LT-95", "LT Power Cables",
		450.00, []byte(`{"voltage": "1.1kV", "conductor": "aluminium"}`),
	).AddRow(
		int64(2), "Polycab", "HT Cable 300sqmm", "POL-HT-300", "HT Power Cables",
		1200.00, []byte(`{"voltage": "11kV"}`),
	)
}

func TestHandler_Execute_Success(t *testing.T) {
	tests := []struct {
		name           string
		input          *Input
		mockQuery      func(mock sqlmock.Sqlmock)
		validateOutput func(t *testing.T, output *Output)
	}{
		{
			name:  "list catalog",
			input: &Input{QueryType: string(models.QueryTypeListCatalog)},
			mockQuery: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT id, oem_name, product_name, sku, COALESCE\(category, ''\), unit_price, specifications\s+FROM oem_products\s+ORDER BY id\s+LIMIT \$1`).
					WithArgs(500).
					WillReturnRows(catalogRows())
			},
			validateOutput: func(t *testing.T, output *Output) {
				assert.Equal(t, 2, output.RowCount)
				assert.GreaterOrEqual(t, output.QueryExecutionTime, int64(0))

				data := output.Data.([]map[string]interface{})
				assert.Equal(t, "HAV-LT-95", data[0]["sku"])
				assert.Equal(t, "Polycab", data[1]["oem_name"])

				specs := data[0]["specifications"].(map[string]interface{})
				assert.Equal(t, "1.1kV", specs["voltage"])
			},
		},
		{
			name: "list catalog with explicit limit",
			input: &Input{
				QueryType: string(models.QueryTypeListCatalog),
				Limit:     10,
			},
			mockQuery: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT (.+) FROM oem_products\s+ORDER BY id\s+LIMIT \$1`).
					WithArgs(10).
					WillReturnRows(catalogRows())
			},
			validateOutput: func(t *testing.T, output *Output) {
				assert.Equal(t, 2, output.RowCount)
			},
		},
		{
			name: "catalog by category",
			input: &Input{
				QueryType: string(models.QueryTypeCatalogByCategory),
				Category:  "LT Power Cables",
			},
			mockQuery: func(mock sqlmock.Sqlmock) {
				rows := sqlmock.NewRows([]string{
					"id", "oem_name", "product_name", "sku", "category", "unit_price", "specifications",
				}).AddRow(
					int64(1), "Havells", "LT Power Cable 95sqmm", "HAV-LT-95", "LT Power Cables",
					450.00, []byte(`{"voltage": "1.1kV"}`),
				)
				mock.ExpectQuery(`SELECT (.+) FROM oem_products\s+WHERE category = \$1`).
					WithArgs("LT Power Cables").
					WillReturnRows(rows)
			},
			validateOutput: func(t *testing.T, output *Output) {
				assert.Equal(t, 1, output.RowCount)

				data := output.Data.([]map[string]interface{})
				assert.Equal(t, "LT Power Cables", data[0]["category"])
			},
		},
		{
			name: "catalog by sku",
			input: &Input{
				QueryType: string(models.QueryTypeCatalogBySKU),
				SKU:       "HAV-LT-95",
			},
			mockQuery: func(mock sqlmock.Sqlmock) {
				rows := sqlmock.NewRows([]string{
					"id", "oem_name", "product_name", "sku", "category", "unit_price", "specifications",
				}).AddRow(
					int64(1), "Havells", "LT Power Cable 95sqmm", "HAV-LT-95", "LT Power Cables",
					450.00, []byte(`{"voltage": "1.1kV"}`),
				)
				mock.ExpectQuery(`SELECT (.+) FROM oem_products\s+WHERE sku = \$1`).
					WithArgs("HAV-LT-95").
					WillReturnRows(rows)
			},
			validateOutput: func(t *testing.T, output *Output) {
				assert.Equal(t, 1, output.RowCount)

				data := output.Data.(map[string]interface{})
				assert.Equal(t, "HAV-LT-95", data["sku"])
				assert.Equal(t, 450.00, data["unit_price"])
			},
		},
		{
			name: "recommendations by rfp",
			input: &Input{
				QueryType: string(models.QueryTypeRecommendationsByRFP),
				RFPID:     "RFP-2024-001",
			},
			mockQuery: func(mock sqlmock.Sqlmock) {
				rows := sqlmock.NewRows([]string{
					"rfp_product_name", "rank", "spec_match_percentage", "comparison",
					"oem_name", "product_name", "sku",
				}).AddRow(
					"LT Cable 95sqmm", 1, 100.0, []byte(`{}`),
					"Havells", "LT Power Cable 95sqmm", "HAV-LT-95",
				).AddRow(
					"LT Cable 95sqmm", 2, 66.67, []byte(`{}`),
					"Polycab", "LT Cable 90sqmm", "POL-LT-90",
				)
				mock.ExpectQuery(`SELECT (.+) FROM product_recommendations r\s+JOIN oem_products p ON p.id = r.oem_product_id\s+WHERE r.rfp_id = \$1`).
					WithArgs("RFP-2024-001").
					WillReturnRows(rows)
			},
			validateOutput: func(t *testing.T, output *Output) {
				assert.Equal(t, 2, output.RowCount)

				data := output.Data.([]map[string]interface{})
				assert.Equal(t, 1, data[0]["rank"])
				assert.Equal(t, 100.0, data[0]["spec_match_percentage"])
				assert.Equal(t, "POL-LT-90", data[1]["sku"])
			},
		},
		{
			name: "selected products by rfp",
			input: &Input{
				QueryType: string(models.QueryTypeSelectedProductsByRFP),
				RFPID:     "RFP-2024-001",
			},
			mockQuery: func(mock sqlmock.Sqlmock) {
				rows := sqlmock.NewRows([]string{
					"product_name", "selected_oem", "selected_product_name", "sku",
					"spec_match_percentage", "quantity", "unit_price", "total_price",
				}).AddRow(
					"LT Cable 95sqmm", "Havells", "LT Power Cable 95sqmm", "HAV-LT-95",
					100.0, 1000, 450.00, 450000.00,
				)
				mock.ExpectQuery(`SELECT (.+) FROM selected_products\s+WHERE rfp_id = \$1`).
					WithArgs("RFP-2024-001").
					WillReturnRows(rows)
			},
			validateOutput: func(t *testing.T, output *Output) {
				assert.Equal(t, 1, output.RowCount)

				data := output.Data.([]map[string]interface{})
				assert.Equal(t, "Havells", data[0]["selected_oem"])
				assert.Equal(t, 450000.00, data[0]["total_price"])
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			if err != nil {
				t.Fatalf("failed to create mock: %v", err)
			}
			defer db.Close()

			tt.mockQuery(mock)

			handler := NewHandler(createTestConfig(), db, createTestLogger(t))
			output, err := handler.execute(context.Background(), tt.input)

			assert.NoError(t, err)
			assert.NotNil(t, output)
			assert.NoError(t, mock.ExpectationsWereMet())

			if tt.validateOutput != nil {
				tt.validateOutput(t, output)
			}
		})
	}
}

func TestHandler_Execute_QueryErrors(t *testing.T) {
	tests := []struct {
		name          string
		input         *Input
		mockQuery     func(mock sqlmock.Sqlmock)
		expectedErr   error
		errorContains string
	}{
		{
			name:          "unknown query type",
			input:         &Input{QueryType: "unknown_query"},
			mockQuery:     func(mock sqlmock.Sqlmock) {},
			expectedErr:   ErrInvalidQueryType,
			errorContains: "INVALID_QUERY_TYPE",
		},
		{
			name:  "database error",
			input: &Input{QueryType: string(models.QueryTypeListCatalog)},
			mockQuery: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT (.+) FROM oem_products`).
					WillReturnError(errors.New("connection refused"))
			},
			expectedErr:   ErrQueryExecutionFailed,
			errorContains: "QUERY_EXECUTION_FAILED",
		},
		{
			name:          "missing rfp id",
			input:         &Input{QueryType: string(models.QueryTypeRecommendationsByRFP)},
			mockQuery:     func(mock sqlmock.Sqlmock) {},
			expectedErr:   queries.ErrMissingParam,
			errorContains: "QUERY_EXECUTION_FAILED",
		},
		{
			name:          "missing sku",
			input:         &Input{QueryType: string(models.QueryTypeCatalogBySKU)},
			mockQuery:     func(mock sqlmock.Sqlmock) {},
			expectedErr:   queries.ErrMissingParam,
			errorContains: "QUERY_EXECUTION_FAILED",
		},
		{
			name: "sku not found",
			input: &Input{
				QueryType: string(models.QueryTypeCatalogBySKU),
				SKU:       "NOPE-123",
			},
			mockQuery: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT (.+) FROM oem_products\s+WHERE sku = \$1`).
					WithArgs("NOPE-123").
					WillReturnError(sql.ErrNoRows)
			},
			expectedErr:   ErrQueryExecutionFailed,
			errorContains: "QUERY_EXECUTION_FAILED",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			if err != nil {
				t.Fatalf("failed to create mock: %v", err)
			}
			defer db.Close()

			tt.mockQuery(mock)

			handler := NewHandler(createTestConfig(), db, createTestLogger(t))
			output, err := handler.execute(context.Background(), tt.input)

			assert.Error(t, err)
			assert.True(t, errors.Is(err, tt.expectedErr) || errors.Is(err, ErrQueryExecutionFailed))
			assert.Contains(t, err.Error(), tt.errorContains)
			assert.Nil(t, output)
		})
	}
}

func TestHandler_Execute_Timeout(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`SELECT (.+) FROM oem_products`).
		WithArgs(500).
		WillDelayFor(200 * time.Millisecond).
		WillReturnRows(catalogRows())

	config := createTestConfig()
	config.Timeout = 50 * time.Millisecond

	handler := NewHandler(config, db, createTestLogger(t))
	input := &Input{QueryType: string(models.QueryTypeListCatalog)}

	ctx, cancel := context.WithTimeout(context.Background(), config.Timeout)
	defer cancel()

	output, err := handler.execute(ctx, input)

	assert.Error(t, err)
	assert.True(t, errors.Is(err, ErrQueryTimeout) || errors.Is(err, ErrQueryExecutionFailed))
	assert.Nil(t, output)
}

func TestHandler_EdgeCases(t *testing.T) {
	handler := NewHandler(createTestConfig(), nil, createTestLogger(t))

	t.Run("nil input", func(t *testing.T) {
		output, err := handler.execute(context.Background(), nil)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "input cannot be nil")
		assert.Nil(t, output)
	})

	t.Run("empty query type", func(t *testing.T) {
		output, err := handler.execute(context.Background(), &Input{})
		assert.Error(t, err)
		assert.Nil(t, output)
	})

	t.Run("malformed specifications decode to empty map", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		if err != nil {
			t.Fatalf("failed to create mock: %v", err)
		}
		defer db.Close()

		rows := sqlmock.NewRows([]string{
			"id", "oem_name", "product_name", "sku", "category", "unit_price", "specifications",
		}).AddRow(
			int64(1), "Havells", "LT Power Cable", "HAV-LT-95", "", 450.00, []byte(`not json`),
		)
		mock.ExpectQuery(`SELECT (.+) FROM oem_products`).
			WithArgs(500).
			WillReturnRows(rows)

		handler := NewHandler(createTestConfig(), db, createTestLogger(t))
		output, err := handler.execute(context.Background(), &Input{
			QueryType: string(models.QueryTypeListCatalog),
		})

		assert.NoError(t, err)
		data := output.Data.([]map[string]interface{})
		assert.Empty(t, data[0]["specifications"])
	})
}
