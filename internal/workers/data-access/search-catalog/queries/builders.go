package queries

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

var (
	ErrUnknownQueryType = errors.New("unknown query type")
	ErrMissingIndex     = errors.New("index name is required")
)

// CatalogQuery defines the structure of a search request
type CatalogQuery struct {
	Index      string
	QueryType  string
	Filters    map[string]interface{}
	ProductID  string
	Category   string
	Pagination struct {
		From int
		Size int
	}
}

// BuildQuery builds an Elasticsearch search request based on query type and filters
func BuildQuery(esClient *elasticsearch.Client, cq CatalogQuery) (*esapi.SearchRequest, error) {
	if cq.Index == "" {
		return nil, ErrMissingIndex
	}

	var queryBody map[string]interface{}

	switch cq.QueryType {
	case "product_search":
		queryBody = buildProductSearchQuery(cq)
	case "similar_products":
		queryBody = buildSimilarProductsQuery(cq)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownQueryType, cq.QueryType)
	}

	body, _ := json.Marshal(queryBody)

	req := esapi.SearchRequest{
		Index:  []string{cq.Index},
		Body:   strings.NewReader(string(body)),
		From:   &cq.Pagination.From,
		Size:   &cq.Pagination.Size,
		Pretty: true,
	}

	return &req, nil
}

// buildProductSearchQuery builds the main catalog search query dynamically
func buildProductSearchQuery(cq CatalogQuery) map[string]interface{} {
	boolQuery := make(map[string]interface{})
	mustClauses := []interface{}{}
	filterClauses := []interface{}{}

	// Keyword search across product fields
	if keywords, ok := cq.Filters["keywords"].(string); ok && keywords != "" {
		mustClauses = append(mustClauses, map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":  keywords,
				"fields": []string{"product_name^3", "oem_name^2", "category", "sku"},
				"type":   "best_fields",
			},
		})
	}

	// Category filter
	if category, ok := cq.Filters["category"].(string); ok && category != "" {
		filterClauses = append(filterClauses, map[string]interface{}{
			"term": map[string]interface{}{"category": category},
		})
	} else if cq.Category != "" {
		filterClauses = append(filterClauses, map[string]interface{}{
			"term": map[string]interface{}{"category": cq.Category},
		})
	}

	// OEM filter
	if oem, ok := cq.Filters["oem"].(string); ok && oem != "" {
		filterClauses = append(filterClauses, map[string]interface{}{
			"term": map[string]interface{}{"oem_name": oem},
		})
	}

	// Unit price range filter
	if priceRange, ok := cq.Filters["priceRange"].(map[string]interface{}); ok {
		rangeClause := map[string]interface{}{}
		if min := floatValue(priceRange["min"]); min > 0 {
			rangeClause["gte"] = min
		}
		if max := floatValue(priceRange["max"]); max > 0 {
			rangeClause["lte"] = max
		}
		if len(rangeClause) > 0 {
			filterClauses = append(filterClauses, map[string]interface{}{
				"range": map[string]interface{}{"unit_price": rangeClause},
			})
		}
	}

	// Default match_all if no keyword
	if len(mustClauses) == 0 {
		mustClauses = append(mustClauses, map[string]interface{}{"match_all": map[string]interface{}{}})
	}

	boolQuery["must"] = mustClauses
	if len(filterClauses) > 0 {
		boolQuery["filter"] = filterClauses
	}

	query := map[string]interface{}{
		"query": map[string]interface{}{
			"bool": boolQuery,
		},
	}

	// Sorting logic
	if sortBy, ok := cq.Filters["sortBy"].(string); ok {
		switch sortBy {
		case "unit_price":
			query["sort"] = []map[string]interface{}{{"unit_price": "asc"}}
		case "product_name":
			query["sort"] = []map[string]interface{}{{"product_name": "asc"}}
		}
	}

	return query
}

// buildSimilarProductsQuery builds "similar products" query
func buildSimilarProductsQuery(cq CatalogQuery) map[string]interface{} {
	if cq.ProductID == "" {
		return map[string]interface{}{
			"query": map[string]interface{}{
				"match_none": map[string]interface{}{},
			},
		}
	}

	return map[string]interface{}{
		"query": map[string]interface{}{
			"more_like_this": map[string]interface{}{
				"fields": []string{"product_name", "oem_name", "category"},
				"like": []map[string]interface{}{
					{"_index": cq.Index, "_id": cq.ProductID},
				},
				"min_term_freq":   1,
				"max_query_terms": 12,
				"min_doc_freq":    1,
				"min_word_length": 3,
			},
		},
	}
}

func floatValue(raw interface{}) float64 {
	switch v := raw.(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	}
	return 0
}
