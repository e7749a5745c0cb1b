// Package report writes run summaries as YAML and image analyses as Parquet.
package report

import (
	"github.com/lehigh-university-libraries/shopik/internal/models"
)

// AnalysisRecord is one image analysis flattened for tabular output.
type AnalysisRecord struct {
	Image       string `yaml:"image" parquet:"image"`
	Status      string `yaml:"status" parquet:"status"`
	Error       string `yaml:"error,omitempty" parquet:"error,optional"`
	Raw         string `yaml:"raw,omitempty" parquet:"raw,optional"`
	Description string `yaml:"description,omitempty" parquet:"description,optional"`
	Brand       string `yaml:"brand,omitempty" parquet:"brand,optional"`
	Category    string `yaml:"category,omitempty" parquet:"category,optional"`
	Length      string `yaml:"length,omitempty" parquet:"length,optional"`
	Height      string `yaml:"height,omitempty" parquet:"height,optional"`
	Width       string `yaml:"width,omitempty" parquet:"width,optional"`
	PriceEBay   string `yaml:"priceebay,omitempty" parquet:"price_ebay,optional"`
	PriceAmazon string `yaml:"priceamazon,omitempty" parquet:"price_amazon,optional"`
}

// Records flattens image results in order.
func Records(results []models.ImageResult) []AnalysisRecord {
	records := make([]AnalysisRecord, 0, len(results))
	for _, r := range results {
		rec := AnalysisRecord{
			Image:  r.Asset,
			Status: string(r.Analysis.Kind),
			Raw:    r.Analysis.Raw,
		}
		if r.Analysis.Err != nil {
			rec.Error = r.Analysis.Err.Error()
		}
		if a := r.Analysis.Analysis; a != nil {
			rec.Description = a.Description
			rec.Brand = a.Brand
			rec.Category = a.Category
			rec.Length = string(a.Dimensions.Length)
			rec.Height = string(a.Dimensions.Height)
			rec.Width = string(a.Dimensions.Width)
			rec.PriceEBay = string(a.Prices.EBay)
			rec.PriceAmazon = string(a.Prices.Amazon)
		}
		records = append(records, rec)
	}
	return records
}
