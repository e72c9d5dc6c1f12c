// internal/workers/data-access/query-catalog/queries/catalog.go
package queries

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"
)

func ListCatalog(ctx context.Context, db *sql.DB, params map[string]interface{}) (interface{}, int, int64, error) {
	limit := intParam(params, "limit", 500)

	start := time.Now()
	rows, err := db.QueryContext(ctx, `
		SELECT id, oem_name, product_name, sku, COALESCE(category, ''), unit_price, specifications
		FROM oem_products
		ORDER BY id
		LIMIT $1`, limit)
	if err != nil {
		return nil, 0, 0, err
	}
	defer rows.Close()

	return collectCatalogRows(rows, start)
}

func CatalogByCategory(ctx context.Context, db *sql.DB, params map[string]interface{}) (interface{}, int, int64, error) {
	category, ok := params["category"].(string)
	if !ok || category == "" {
		return nil, 0, 0, ErrMissingParam
	}

	start := time.Now()
	rows, err := db.QueryContext(ctx, `
		SELECT id, oem_name, product_name, sku, COALESCE(category, ''), unit_price, specifications
		FROM oem_products
		WHERE category = $1
		ORDER BY id`, category)
	if err != nil {
		return nil, 0, 0, err
	}
	defer rows.Close()

	return collectCatalogRows(rows, start)
}

func CatalogBySKU(ctx context.Context, db *sql.DB, params map[string]interface{}) (interface{}, int, int64, error) {
	sku, ok := params["sku"].(string)
	if !ok || sku == "" {
		return nil, 0, 0, ErrMissingParam
	}

	start := time.Now()

	var id int64
	var oemName, productName, skuOut, category string
	var unitPrice float64
	var specsRaw []byte

	err := db.QueryRowContext(ctx, `
		SELECT id, oem_name, product_name, sku, COALESCE(category, ''), unit_price, specifications
		FROM oem_products
		WHERE sku = $1`, sku).Scan(
		&id, &oemName, &productName, &skuOut, &category, &unitPrice, &specsRaw,
	)
	if err != nil {
		return nil, 0, 0, err
	}

	result := map[string]interface{}{
		"oem_product_id": id,
		"oem_name":       oemName,
		"product_name":   productName,
		"sku":            skuOut,
		"category":       category,
		"unit_price":     unitPrice,
		"specifications": decodeSpecs(specsRaw),
	}

	return result, 1, time.Since(start).Milliseconds(), nil
}

func RecommendationsByRFP(ctx context.Context, db *sql.DB, params map[string]interface{}) (interface{}, int, int64, error) {
	rfpID, ok := params["rfpId"].(string)
	if !ok || rfpID == "" {
		return nil, 0, 0, ErrMissingParam
	}

	start := time.Now()
	rows, err := db.QueryContext(ctx, `
		SELECT r.rfp_product_name, r.rank, r.spec_match_percentage, r.comparison,
		       p.oem_name, p.product_name, p.sku
		FROM product_recommendations r
		JOIN oem_products p ON p.id = r.oem_product_id
		WHERE r.rfp_id = $1
		ORDER BY r.rfp_product_name, r.rank`, rfpID)
	if err != nil {
		return nil, 0, 0, err
	}
	defer rows.Close()

	var results []map[string]interface{}
	for rows.Next() {
		var rfpProductName, oemName, productName, sku string
		var rank int
		var matchPct float64
		var comparisonRaw []byte

		if err := rows.Scan(&rfpProductName, &rank, &matchPct, &comparisonRaw, &oemName, &productName, &sku); err != nil {
			return nil, 0, 0, err
		}

		results = append(results, map[string]interface{}{
			"rfp_product_name":      rfpProductName,
			"rank":                  rank,
			"spec_match_percentage": matchPct,
			"comparison":            decodeSpecs(comparisonRaw),
			"oem_name":              oemName,
			"product_name":          productName,
			"sku":                   sku,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, 0, 0, err
	}

	return results, len(results), time.Since(start).Milliseconds(), nil
}

func SelectedProductsByRFP(ctx context.Context, db *sql.DB, params map[string]interface{}) (interface{}, int, int64, error) {
	rfpID, ok := params["rfpId"].(string)
	if !ok || rfpID == "" {
		return nil, 0, 0, ErrMissingParam
	}

	start := time.Now()
	rows, err := db.QueryContext(ctx, `
		SELECT product_name, selected_oem, selected_product_name, sku,
		       spec_match_percentage, quantity, unit_price, total_price
		FROM selected_products
		WHERE rfp_id = $1
		ORDER BY id`, rfpID)
	if err != nil {
		return nil, 0, 0, err
	}
	defer rows.Close()

	var results []map[string]interface{}
	for rows.Next() {
		var productName, selectedOEM, selectedProductName, sku string
		var matchPct, unitPrice, totalPrice float64
		var quantity int

		if err := rows.Scan(&productName, &selectedOEM, &selectedProductName, &sku,
			&matchPct, &quantity, &unitPrice, &totalPrice); err != nil {
			return nil, 0, 0, err
		}

		results = append(results, map[string]interface{}{
			"product_name":          productName,
			"selected_oem":          selectedOEM,
			"selected_product_name": selectedProductName,
			"sku":                   sku,
			"spec_match_percentage": matchPct,
			"quantity":              quantity,
			"unit_price":            unitPrice,
			"total_price":           totalPrice,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, 0, 0, err
	}

	return results, len(results), time.Since(start).Milliseconds(), nil
}

func collectCatalogRows(rows *sql.Rows, start time.Time) (interface{}, int, int64, error) {
	var results []map[string]interface{}
	for rows.Next() {
		var id int64
		var oemName, productName, sku, category string
		var unitPrice float64
		var specsRaw []byte

		if err := rows.Scan(&id, &oemName, &productName, &sku, &category, &unitPrice, &specsRaw); err != nil {
			return nil, 0, 0, err
		}

		results = append(results, map[string]interface{}{
			"oem_product_id": id,
			"oem_name":       oemName,
			"product_name":   productName,
			"sku":            sku,
			"category":       category,
			"unit_price":     unitPrice,
			"specifications": decodeSpecs(specsRaw),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, 0, 0, err
	}

	return results, len(results), time.Since(start).Milliseconds(), nil
}

func decodeSpecs(raw []byte) map[string]interface{} {
	if len(raw) == 0 {
		return map[string]interface{}{}
	}
	var specs map[string]interface{}
	if err := json.Unmarshal(raw, &specs); err != nil {
		return map[string]interface{}{}
	}
	return specs
}

func intParam(params map[string]interface{}, key string, fallback int) int {
	switch v := params[key].(type) {
	case int:
		if v > 0 {
			return v
		}
	case float64:
		if v > 0 {
			return int(v)
		}
	}
	return fallback
}
