package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// ResearchPricing is the spot-price payload for research-tier offers; it is
// stored as a jsonb column and populated only when the offer tier is research.
type ResearchPricing struct {
	PriceUSD    float64  `json:"price_usd"`
	SizeMG      float64  `json:"size_mg"`
	ShippingUSD *float64 `json:"shipping_usd,omitempty"`
	PricePerMG  float64  `json:"price_per_mg"`
	LabTestURL  *string  `json:"lab_test_url,omitempty"`
}

// TelehealthPricing is the subscription payload for telehealth-tier offers.
type TelehealthPricing struct {
	MonthlyPriceUSD float64 `json:"monthly_price_usd"`
	MGPerVisit      float64 `json:"mg_per_visit"`
	VisitCount      float64 `json:"visit_count"`
	IncludesConsult bool    `json:"includes_consult"`
	TotalMG         float64 `json:"total_mg"`
}

// BrandPricing is the dose-priced payload for brand-tier offers.
type BrandPricing struct {
	PricePerDoseUSD float64 `json:"price_per_dose_usd"`
	DoseCount       float64 `json:"dose_count"`
	TotalPriceUSD   float64 `json:"total_price_usd"`
}

func (p ResearchPricing) Value() (driver.Value, error)   { return jsonbValue(p) }
func (p *ResearchPricing) Scan(src any) error            { return jsonbScan(src, p) }
func (p TelehealthPricing) Value() (driver.Value, error) { return jsonbValue(p) }
func (p *TelehealthPricing) Scan(src any) error          { return jsonbScan(src, p) }
func (p BrandPricing) Value() (driver.Value, error)      { return jsonbValue(p) }
func (p *BrandPricing) Scan(src any) error               { return jsonbScan(src, p) }

func jsonbValue(v any) (driver.Value, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal jsonb: %w", err)
	}
	return string(raw), nil
}

func jsonbScan(src, dest any) error {
	if src == nil {
		return nil
	}
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, dest)
	case string:
		return json.Unmarshal([]byte(v), dest)
	default:
		return fmt.Errorf("jsonb: unsupported Scan type %T", src)
	}
}
