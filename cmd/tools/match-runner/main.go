// cmd/tools/match-runner/main.go
//
// match-runner exercises the spec-matching pipeline offline, without Zeebe or
// any database. It reads extracted RFP summaries and an OEM datasheet dump
// from JSON files, ranks candidates per requirement, and writes one detailed
// recommendation file per RFP plus aggregated hand-off files. Missing input
// files are seeded with sample data so the tool runs out of the box.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"rfp-workers/internal/matching"
	"rfp-workers/internal/models"
)

// rfpFile is the on-disk layout of one RFP summary: the rfp_id rides at the
// top level next to the info block.
type rfpFile struct {
	RFPID    string               `json:"rfp_id"`
	Info     models.RFPInfo       `json:"rfp_info"`
	Products []models.Requirement `json:"products"`
}

// productRecommendation pairs one requirement with its ranked candidates and
// the rank-1 selection (nil when nothing matched).
type productRecommendation struct {
	RFPProduct      string                  `json:"rfp_product"`
	Recommendations []models.Recommendation `json:"recommendations"`
	Selected        *models.Selection       `json:"selected"`
}

// rfpResult is the per-RFP output file.
type rfpResult struct {
	RFPID           string                  `json:"rfp_id"`
	Info            models.RFPInfo          `json:"rfp_info"`
	Recommendations []productRecommendation `json:"product_recommendations"`
	FinalSelected   []models.Selection      `json:"final_selected"`
}

func main() {
	rfpsPath := flag.String("rfps", "data/rfp_summaries.json", "Path to extracted RFP summaries")
	datasheetsPath := flag.String("datasheets", "data/datasheets.json", "Path to OEM datasheet dump")
	outDir := flag.String("out", "out", "Output directory for recommendation files")
	flag.Parse()

	if err := run(*rfpsPath, *datasheetsPath, *outDir); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

func run(rfpsPath, datasheetsPath, outDir string) error {
	if err := seedIfMissing(rfpsPath, sampleRFPs); err != nil {
		return err
	}
	if err := seedIfMissing(datasheetsPath, sampleDatasheets); err != nil {
		return err
	}

	var rfps []rfpFile
	if err := loadJSON(rfpsPath, &rfps); err != nil {
		return err
	}
	var catalog []models.CatalogEntry
	if err := loadJSON(datasheetsPath, &catalog); err != nil {
		return err
	}

	if err := os.MkdirAll(outDir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	mainAgentOutputs := make([]map[string]interface{}, 0, len(rfps))
	pricingRows := make([]map[string]interface{}, 0)

	for _, rfp := range rfps {
		fmt.Printf("Processing RFP: %s\n", rfp.Info.RFPName)
		result := processRFP(rfp, catalog)

		mainAgentOutputs = append(mainAgentOutputs, map[string]interface{}{
			"rfp_id":         result.RFPID,
			"rfp_info":       result.Info,
			"final_selected": result.FinalSelected,
		})

		for _, sel := range result.FinalSelected {
			pricingRows = append(pricingRows, map[string]interface{}{
				"rfp_id":       result.RFPID,
				"product_name": sel.RequirementName,
				"sku":          sel.SKU,
				"unit_price":   sel.UnitPrice,
				"quantity":     sel.Quantity,
				"total_price":  sel.TotalPrice,
			})
		}

		path := filepath.Join(outDir, fmt.Sprintf("recommendation_%s.json", result.RFPID))
		if err := saveJSON(path, result); err != nil {
			return err
		}
	}

	if err := saveJSON(filepath.Join(outDir, "to_main_agent.json"), mainAgentOutputs); err != nil {
		return err
	}
	if err := saveJSON(filepath.Join(outDir, "to_pricing_agent.json"), pricingRows); err != nil {
		return err
	}

	fmt.Printf("Run complete. Outputs written to: %s\n", outDir)
	return nil
}

func processRFP(rfp rfpFile, catalog []models.CatalogEntry) rfpResult {
	result := rfpResult{
		RFPID:           rfp.RFPID,
		Info:            rfp.Info,
		Recommendations: make([]productRecommendation, 0, len(rfp.Products)),
		FinalSelected:   []models.Selection{},
	}

	for _, req := range rfp.Products {
		recs := matching.Rank(req, catalog)

		var selected *models.Selection
		if len(recs) > 0 {
			top := recs[0]
			quantity := req.Quantity
			if quantity <= 0 {
				quantity = 1
			}
			selected = &models.Selection{
				RequirementName: req.ProductName,
				OEMName:         top.OEMName,
				OEMProductName:  top.ProductName,
				SKU:             top.SKU,
				MatchPercentage: top.MatchPercentage,
				Quantity:        quantity,
				UnitPrice:       top.UnitPrice,
				TotalPrice:      round2(top.UnitPrice * float64(quantity)),
			}
			result.FinalSelected = append(result.FinalSelected, *selected)
		}

		result.Recommendations = append(result.Recommendations, productRecommendation{
			RFPProduct:      req.ProductName,
			Recommendations: recs,
			Selected:        selected,
		})
	}

	return result
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func loadJSON(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

func saveJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func seedIfMissing(path string, sample interface{}) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("stat %s: %w", path, err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create directory for %s: %w", path, err)
	}
	fmt.Printf("Seeding sample data: %s\n", path)
	return saveJSON(path, sample)
}

var sampleDatasheets = []models.CatalogEntry{
	{
		OEMName:     "Apar Industries",
		ProductName: "XLPE Power Cable 11kV",
		SKU:         "APAR-XLPE-11KV-300",
		Category:    "Power Cable",
		UnitPrice:   450.00,
		Specs: models.Specifications{
			"size":       "300 sqmm",
			"voltage":    "11kV",
			"conductor":  "aluminium",
			"insulation": "XLPE",
		},
	},
	{
		OEMName:     "Apar Industries",
		ProductName: "XLPE Power Cable 33kV",
		SKU:         "APAR-XLPE-33KV-400",
		Category:    "Power Cable",
		UnitPrice:   780.00,
		Specs: models.Specifications{
			"size":       "400 sqmm",
			"voltage":    "33kV",
			"conductor":  "aluminium",
			"insulation": "XLPE",
		},
	},
	{
		OEMName:     "Polycab",
		ProductName: "HT Power Cable 11kV",
		SKU:         "PC-HT-11KV-300",
		Category:    "Power Cable",
		UnitPrice:   465.00,
		Specs: models.Specifications{
			"size":       "300 sqmm",
			"voltage":    "11kV",
			"conductor":  "copper",
			"insulation": "XLPE",
		},
	},
	{
		OEMName:     "Havells",
		ProductName: "Multicore Control Cable",
		SKU:         "HAV-CTRL-12C",
		Category:    "Control Cable",
		UnitPrice:   95.00,
		Specs: models.Specifications{
			"cores":     "12",
			"size":      "2.5 sqmm",
			"conductor": "copper",
			"voltage":   "1.1kV",
		},
	},
	{
		OEMName:     "Finolex",
		ProductName: "Control Cable 19 Core",
		SKU:         "FNX-CTRL-19C",
		Category:    "Control Cable",
		UnitPrice:   140.00,
		Specs: models.Specifications{
			"cores":     "19",
			"size":      "1.5 sqmm",
			"conductor": "copper",
			"voltage":   "1.1kV",
		},
	},
}

var sampleRFPs = []rfpFile{
	{
		RFPID: "RFP-2024-001",
		Info: models.RFPInfo{
			RFPName:    "Metro Rail Cable Supply",
			ClientName: "Mumbai Metro Rail Corp",
			DueDate:    "2026-10-15",
		},
		Products: []models.Requirement{
			{
				ProductName: "11kV Feeder Cable",
				Category:    "Power Cable",
				Quantity:    1000,
				Specs: models.Specifications{
					"size":      "300 sqmm",
					"voltage":   "11kV",
					"conductor": "aluminium",
				},
			},
			{
				ProductName: "Signalling Control Cable",
				Category:    "Control Cable",
				Quantity:    2500,
				Specs: models.Specifications{
					"cores":   "12",
					"size":    "2.5 sqmm",
					"voltage": "1.1kV",
				},
			},
		},
	},
	{
		RFPID: "RFP-2024-002",
		Info: models.RFPInfo{
			RFPName:    "Substation Expansion",
			ClientName: "Gujarat Energy Transmission",
			DueDate:    "2026-11-30",
		},
		Products: []models.Requirement{
			{
				ProductName: "33kV Transmission Cable",
				Category:    "Power Cable",
				Quantity:    500,
				Specs: models.Specifications{
					"size":      "400 sqmm",
					"voltage":   "33kV",
					"conductor": "aluminium",
				},
			},
		},
	},
}
