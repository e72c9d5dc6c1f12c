// internal/workers/data-access/query-catalog/models.go
package querycatalog

type Input struct {
	QueryType string `json:"queryType"`
	RFPID     string `json:"rfpId,omitempty"`
	Category  string `json:"category,omitempty"`
	SKU       string `json:"sku,omitempty"`
	Limit     int    `json:"limit,omitempty"`
}

type Output struct {
	Data               interface{} `json:"data"`
	RowCount           int         `json:"rowCount"`
	QueryExecutionTime int64       `json:"queryExecutionTime"`
}
