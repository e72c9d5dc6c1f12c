// Package catalog owns read access to the OEM product catalog and the
// persistence of matching results. The catalog is reference data: workers read
// a snapshot, they never mutate rows.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"rfp-workers/internal/common/database"
	"rfp-workers/internal/common/logger"
	"rfp-workers/internal/common/metrics"
	"rfp-workers/internal/models"
)

// snapshotKey is the Redis key holding the serialized catalog snapshot.
const snapshotKey = "catalog:oem_products:snapshot"

const (
	selectCatalogSQL = `SELECT id, oem_name, product_name, sku, COALESCE(category, ''), unit_price, specifications
FROM oem_products
ORDER BY id`

	upsertRecommendationSQL = `INSERT INTO product_recommendations
(rfp_id, rfp_product_name, oem_product_id, rank, spec_match_percentage, comparison, created_at)
VALUES ($1, $2, $3, $4, $5, $6, NOW())
ON CONFLICT (rfp_id, rfp_product_name, rank) DO UPDATE SET oem_product_id = EXCLUDED.oem_product_id, spec_match_percentage = EXCLUDED.spec_match_percentage, comparison = EXCLUDED.comparison, created_at = NOW()`

	insertSelectionSQL = `INSERT INTO selected_products
(rfp_id, rfp_product_id, product_name, selected_oem, selected_product_name, sku, spec_match_percentage, quantity, unit_price, total_price, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW())`

	updateBidStatusSQL = `UPDATE rfp_summaries SET bid_status = $1, updated_at = NOW() WHERE rfp_id = $2`

	selectSummarySQL = `SELECT summary FROM rfp_summaries WHERE rfp_id = $1`

	upsertSummarySQL = `INSERT INTO rfp_summaries (rfp_id, rfp_name, client_name, due_date, summary, bid_status, created_at, updated_at)
VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6, NOW(), NOW())
ON CONFLICT (rfp_id) DO UPDATE SET rfp_name = EXCLUDED.rfp_name, client_name = EXCLUDED.client_name, due_date = EXCLUDED.due_date, summary = EXCLUDED.summary, bid_status = EXCLUDED.bid_status, updated_at = NOW()`
)

// Repository loads catalog snapshots and records matching output. The Redis
// cache is best effort: a cold or unreachable cache degrades to Postgres and
// never fails a job.
type Repository struct {
	db     *database.PostgresClient
	cache  *database.RedisClient
	ttl    time.Duration
	logger logger.Logger
}

func NewRepository(db *database.PostgresClient, cache *database.RedisClient, ttl time.Duration, log logger.Logger) *Repository {
	return &Repository{
		db:     db,
		cache:  cache,
		ttl:    ttl,
		logger: log,
	}
}

// Snapshot returns the full catalog, served from Redis when a fresh snapshot
// exists and from Postgres otherwise. Entries keep database order so ranking
// ties resolve the same way on every run.
func (r *Repository) Snapshot(ctx context.Context) ([]models.CatalogEntry, error) {
	if r.cache != nil {
		if cached, err := r.cache.Get(ctx, snapshotKey); err == nil {
			var entries []models.CatalogEntry
			if err := json.Unmarshal([]byte(cached), &entries); err == nil {
				metrics.CatalogCacheHits.WithLabelValues("hit").Inc()
				return entries, nil
			}
			r.logger.Warn("Discarding unreadable catalog snapshot", map[string]interface{}{
				"key": snapshotKey,
			})
		}
	}
	metrics.CatalogCacheHits.WithLabelValues("miss").Inc()

	entries, err := r.loadFromDB(ctx)
	if err != nil {
		return nil, err
	}

	r.storeSnapshot(ctx, entries)
	return entries, nil
}

func (r *Repository) loadFromDB(ctx context.Context) ([]models.CatalogEntry, error) {
	rows, err := r.db.Query(ctx, selectCatalogSQL)
	if err != nil {
		return nil, fmt.Errorf("catalog query failed: %w", err)
	}
	defer rows.Close()

	var entries []models.CatalogEntry
	for rows.Next() {
		var entry models.CatalogEntry
		var specsRaw []byte

		if err := rows.Scan(
			&entry.OEMProductID,
			&entry.OEMName,
			&entry.ProductName,
			&entry.SKU,
			&entry.Category,
			&entry.UnitPrice,
			&specsRaw,
		); err != nil {
			return nil, fmt.Errorf("catalog row scan failed: %w", err)
		}

		if len(specsRaw) > 0 {
			if err := json.Unmarshal(specsRaw, &entry.Specs); err != nil {
				// A malformed specifications blob makes the entry unmatchable
				// but not the whole catalog.
				r.logger.Warn("Skipping catalog entry with malformed specifications", map[string]interface{}{
					"sku":   entry.SKU,
					"error": err.Error(),
				})
				entry.Specs = models.Specifications{}
			}
		}

		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("catalog row iteration failed: %w", err)
	}

	return entries, nil
}

func (r *Repository) storeSnapshot(ctx context.Context, entries []models.CatalogEntry) {
	if r.cache == nil || len(entries) == 0 {
		return
	}

	payload, err := json.Marshal(entries)
	if err != nil {
		return
	}

	if err := r.cache.Set(ctx, snapshotKey, payload, r.ttl); err != nil {
		r.logger.Warn("Failed to cache catalog snapshot", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

// Invalidate drops the cached snapshot. Called after catalog imports.
func (r *Repository) Invalidate(ctx context.Context) error {
	if r.cache == nil {
		return nil
	}
	return r.cache.Del(ctx, snapshotKey)
}

// SaveRecommendations persists the ranked candidates for one requirement.
// Rank is 1-based in storage. Jobs are delivered at-least-once, so the write
// is keyed on (rfp_id, rfp_product_name, rank): a re-run replaces the prior
// candidates instead of duplicating rows.
func (r *Repository) SaveRecommendations(ctx context.Context, rfpID, requirementName string, recs []models.Recommendation) error {
	for i, rec := range recs {
		comparison, err := json.Marshal(rec.Comparison)
		if err != nil {
			return fmt.Errorf("marshal comparison for %s: %w", rec.SKU, err)
		}

		if _, err := r.db.Exec(ctx, upsertRecommendationSQL,
			rfpID,
			requirementName,
			rec.OEMProductID,
			i+1,
			rec.MatchPercentage,
			comparison,
		); err != nil {
			return fmt.Errorf("insert recommendation for %s: %w", rec.SKU, err)
		}
	}
	return nil
}

// SaveSelections persists the rank-1 picks for an RFP.
func (r *Repository) SaveSelections(ctx context.Context, rfpID string, selections []models.Selection) error {
	for _, sel := range selections {
		if _, err := r.db.Exec(ctx, insertSelectionSQL,
			rfpID,
			sel.RequirementID,
			sel.RequirementName,
			sel.OEMName,
			sel.OEMProductName,
			sel.SKU,
			sel.MatchPercentage,
			sel.Quantity,
			sel.UnitPrice,
			sel.TotalPrice,
		); err != nil {
			return fmt.Errorf("insert selection for %s: %w", sel.SKU, err)
		}
	}
	return nil
}

// SaveSummary stores (or refreshes) the extraction result for an RFP.
func (r *Repository) SaveSummary(ctx context.Context, rfpID string, summary *models.RFPSummary, status models.BidStatus) error {
	raw, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("marshal summary for %s: %w", rfpID, err)
	}

	if _, err := r.db.Exec(ctx, upsertSummarySQL,
		rfpID,
		summary.Info.RFPName,
		summary.Info.ClientName,
		summary.Info.DueDate,
		raw,
		string(status),
	); err != nil {
		return fmt.Errorf("upsert summary for %s: %w", rfpID, err)
	}
	return nil
}

// LoadSummary fetches the stored extraction result for an RFP.
func (r *Repository) LoadSummary(ctx context.Context, rfpID string) (*models.RFPSummary, error) {
	var raw []byte
	if err := r.db.QueryRow(ctx, selectSummarySQL, rfpID).Scan(&raw); err != nil {
		return nil, fmt.Errorf("load summary for %s: %w", rfpID, err)
	}

	var summary models.RFPSummary
	if err := json.Unmarshal(raw, &summary); err != nil {
		return nil, fmt.Errorf("decode summary for %s: %w", rfpID, err)
	}
	return &summary, nil
}

// UpdateBidStatus advances the bid_status column on the summary row.
func (r *Repository) UpdateBidStatus(ctx context.Context, rfpID string, status models.BidStatus) error {
	if _, err := r.db.Exec(ctx, updateBidStatusSQL, string(status), rfpID); err != nil {
		return fmt.Errorf("update bid status to %s: %w", status, err)
	}
	return nil
}
