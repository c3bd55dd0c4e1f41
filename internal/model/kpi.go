package model

import (
	"encoding/json"
	"net/url"
	"strings"
)

// SeriesPoint is one day of the OSA trend as returned by the API.
type SeriesPoint struct {
	Date  string  `json:"date"`
	Value float64 `json:"osa_pct"`
}

// WorstSKU is one row of the "lowest OSA" table.
type WorstSKU struct {
	Barcode string  `json:"barcode"`
	OSAPct  float64 `json:"osa_pct"`
}

// KPISnapshot is the last payload of GET /api/kpis. It is replaced as a whole
// on every successful fetch and never mutated afterwards.
type KPISnapshot struct {
	Total    int64         `json:"total"`
	OSAPct   float64       `json:"osa_pct"`
	OOSPct   float64       `json:"oos_pct"`
	Series   []SeriesPoint `json:"series"`
	WorstSKU []WorstSKU    `json:"worst_sku"`
}

// UnmarshalJSON decodes field by field so that one malformed or missing
// field leaves its zero value instead of failing the whole payload.
func (k *KPISnapshot) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*k = KPISnapshot{}
	decodeField(raw, "total", &k.Total)
	decodeField(raw, "osa_pct", &k.OSAPct)
	decodeField(raw, "oos_pct", &k.OOSPct)

	var series []json.RawMessage
	if decodeField(raw, "series", &series) {
		for _, item := range series {
			var p SeriesPoint
			if err := json.Unmarshal(item, &p); err == nil {
				k.Series = append(k.Series, p)
			}
		}
	}
	decodeField(raw, "worst_sku", &k.WorstSKU)
	return nil
}

func decodeField(raw map[string]json.RawMessage, key string, dst any) bool {
	v, ok := raw[key]
	if !ok {
		return false
	}
	return json.Unmarshal(v, dst) == nil
}

// KPIFilter narrows KPIs and measurements. Blank fields are omitted from
// the query string.
type KPIFilter struct {
	Store    string `json:"store" query:"store"`
	DateFrom string `json:"date_from" query:"date_from"`
	DateTo   string `json:"date_to" query:"date_to"`
}

func (f KPIFilter) Query() url.Values {
	q := url.Values{}
	if v := strings.TrimSpace(f.Store); v != "" {
		q.Set("store", v)
	}
	if v := strings.TrimSpace(f.DateFrom); v != "" {
		q.Set("date_from", v)
	}
	if v := strings.TrimSpace(f.DateTo); v != "" {
		q.Set("date_to", v)
	}
	return q
}
