package models

// CatalogEntry is one OEM product datasheet. Read-only reference data owned
// by the catalog repository. An empty Category acts as a wildcard: the entry
// is considered for every requirement regardless of its category.
type CatalogEntry struct {
	OEMProductID int64          `json:"oem_product_id,omitempty"`
	OEMName      string         `json:"oem_name"`
	ProductName  string         `json:"product_name"`
	SKU          string         `json:"sku"`
	Category     string         `json:"category,omitempty"`
	UnitPrice    float64        `json:"unit_price"`
	Specs        Specifications `json:"specifications"`
}

// CatalogQueryType names the registered catalog queries exposed by the
// query-catalog worker.
type CatalogQueryType string

const (
	QueryTypeListCatalog           CatalogQueryType = "list_catalog"
	QueryTypeCatalogByCategory     CatalogQueryType = "catalog_by_category"
	QueryTypeCatalogBySKU          CatalogQueryType = "catalog_by_sku"
	QueryTypeRecommendationsByRFP  CatalogQueryType = "recommendations_by_rfp"
	QueryTypeSelectedProductsByRFP CatalogQueryType = "selected_products_by_rfp"
)
