package model

// Measurement is one audited SKU-store check.
type Measurement struct {
	ID             int64  `json:"id"`
	Fecha          string `json:"fecha"`
	PV             string `json:"pv"`
	CodigoBarra    string `json:"codigo_barra"`
	DescripcionSKU string `json:"descripcion_sku"`
	Estado         string `json:"estado"`
	TipoResultado  string `json:"tipo_resultado"`
	Provincia      string `json:"provincia"`
	OSAFlag        int    `json:"osa_flag"`
	OOSFlag        int    `json:"oos_flag"`
}

type MeasurementList struct {
	Items []Measurement `json:"items"`
}

// ImportResult is the upstream summary of a spreadsheet upload.
type ImportResult struct {
	Inserted  int `json:"inserted"`
	Skipped   int `json:"skipped"`
	TotalRows int `json:"total_rows"`
}
