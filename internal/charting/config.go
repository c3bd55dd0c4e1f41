// Package charting is the declarative chart layer driven by the dashboard.
// Callers describe a chart with a Config and mutate it in place; the
// renderer decides how an update reaches the screen.
package charting

type ChartType string

const (
	TypeLine     ChartType = "line"
	TypeDoughnut ChartType = "doughnut"
)

// Config is a complete chart description.
type Config struct {
	Type        ChartType              `json:"type"`
	Title       string                 `json:"title,omitempty"`
	Labels      []string               `json:"labels"`
	Datasets    []*Dataset             `json:"datasets"`
	Annotations map[string]*Annotation `json:"annotations,omitempty"`
	YMin        *float64               `json:"y_min,omitempty"`
	YMax        *float64               `json:"y_max,omitempty"`
}

type Dataset struct {
	ID          string    `json:"id"`
	Label       string    `json:"label"`
	Data        []float64 `json:"data"`
	Dashed      bool      `json:"dashed,omitempty"`
	Tension     float64   `json:"tension,omitempty"`
	PointRadius int       `json:"point_radius"`
	BorderWidth int       `json:"border_width,omitempty"`
	Color       string    `json:"color,omitempty"`
	Colors      []string  `json:"colors,omitempty"`
}

// Annotation is a horizontal line between YMin and YMax.
type Annotation struct {
	Type  string  `json:"type"`
	YMin  float64 `json:"y_min"`
	YMax  float64 `json:"y_max"`
	Label string  `json:"label,omitempty"`
	Color string  `json:"color,omitempty"`
}

// Dataset returns the dataset with id and its index, or nil and -1.
func (c *Config) Dataset(id string) (*Dataset, int) {
	for i, ds := range c.Datasets {
		if ds.ID == id {
			return ds, i
		}
	}
	return nil, -1
}

// RemoveDataset drops the dataset with id. It reports whether one was removed.
func (c *Config) RemoveDataset(id string) bool {
	_, i := c.Dataset(id)
	if i < 0 {
		return false
	}
	c.Datasets = append(c.Datasets[:i], c.Datasets[i+1:]...)
	return true
}

// Clone returns a deep copy that shares nothing with c.
func (c *Config) Clone() *Config {
	if c == nil {
		return nil
	}
	out := &Config{
		Type:   c.Type,
		Title:  c.Title,
		Labels: append([]string(nil), c.Labels...),
		YMin:   clonePtr(c.YMin),
		YMax:   clonePtr(c.YMax),
	}
	for _, ds := range c.Datasets {
		cp := *ds
		cp.Data = append([]float64(nil), ds.Data...)
		cp.Colors = append([]string(nil), ds.Colors...)
		out.Datasets = append(out.Datasets, &cp)
	}
	if c.Annotations != nil {
		out.Annotations = make(map[string]*Annotation, len(c.Annotations))
		for k, a := range c.Annotations {
			cp := *a
			out.Annotations[k] = &cp
		}
	}
	return out
}

func clonePtr(v *float64) *float64 {
	if v == nil {
		return nil
	}
	cp := *v
	return &cp
}

// Float is a helper for the optional axis bounds.
func Float(v float64) *float64 {
	return &v
}
