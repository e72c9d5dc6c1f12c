package models

// Specifications is the open attribute map attached to both RFP requirements
// and catalog entries. Keys are free-form attribute names ("size", "voltage");
// values are whatever the extraction step produced: strings, JSON numbers, or
// nil. No schema is enforced here — comparison is driven by the requirement's
// key set, never the union.
type Specifications map[string]interface{}

// RFPInfo is the header block extracted from one RFP document.
type RFPInfo struct {
	RFPID      string `json:"rfp_id,omitempty"`
	RFPName    string `json:"rfp_name"`
	ClientName string `json:"client_name"`
	DueDate    string `json:"due_date,omitempty"` // YYYY-MM-DD, empty when absent
}

// Requirement is one product entry extracted from an RFP's scope of supply.
// Immutable after extraction. Quantity may be zero when the document did not
// state one; pricing applies a documented default in that case.
type Requirement struct {
	ProductID   int64          `json:"product_id,omitempty"`
	ProductName string         `json:"product_name"`
	Category    string         `json:"category,omitempty"`
	Quantity    int            `json:"quantity,omitempty"`
	Specs       Specifications `json:"specifications"`
}

// RFPSummary is the full extraction result for one document.
type RFPSummary struct {
	Info     RFPInfo       `json:"rfp_info"`
	Products []Requirement `json:"products"`
}

// BidStatus values carried on rfp_summaries rows and status notifications.
type BidStatus string

const (
	BidStatusExtracted BidStatus = "extracted"
	BidStatusMatched   BidStatus = "matched"
	BidStatusPriced    BidStatus = "priced"
	BidStatusDrafted   BidStatus = "drafted"
	BidStatusSent      BidStatus = "sent"
	BidStatusRejected  BidStatus = "rejected"
)
