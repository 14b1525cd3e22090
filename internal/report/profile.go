package report

import (
	"strings"

	"github.com/ginjaninja78/salesreport/internal/render"
)

// DefaultBrandPriority is the column order of the counter's brand matrix.
var DefaultBrandPriority = []string{"Samsung", "Apple", "Oppo", "Vivo", "Realme", "Xiaomi", "Moto"}

// Profile carries the per-outlet settings of a report run. Profiles are
// loaded from YAML by the config package.
type Profile struct {
	Name   string `yaml:"name"`
	Outlet string `yaml:"outlet"`
	Owner  string `yaml:"owner"`

	// BrandPriority orders brand columns. Empty means DefaultBrandPriority.
	BrandPriority []string `yaml:"brand_priority"`

	// NormalizeOthers lists the variants that collapse brands outside
	// BrandPriority into an "Others" column.
	NormalizeOthers []Variant `yaml:"normalize_others"`

	// Locale tags grouped figures in the brand summary. Defaults to en-IN.
	Locale string `yaml:"locale"`

	// Layout overrides page geometry and fonts; zero fields keep the
	// variant defaults.
	Layout render.Layout `yaml:"layout"`

	// ColumnWidths overrides width units by role: date, qty, val,
	// total_qty, total_val, logs, summary, segment, brand, model, variant,
	// price, total, units, revenue, cell.
	ColumnWidths map[string]int `yaml:"column_widths"`
}

// DefaultProfile is used when no profile is configured.
func DefaultProfile() Profile {
	return Profile{
		Name:            "default",
		BrandPriority:   append([]string(nil), DefaultBrandPriority...),
		NormalizeOthers: []Variant{DailyMatrix},
		Locale:          "en-IN",
	}
}

// Title is "{owner} - {outlet}", either part alone, or fallback.
func (p Profile) Title(fallback string) string {
	parts := make([]string, 0, 2)
	if s := strings.TrimSpace(p.Owner); s != "" {
		parts = append(parts, s)
	}
	if s := strings.TrimSpace(p.Outlet); s != "" {
		parts = append(parts, s)
	}
	if len(parts) == 0 {
		return fallback
	}
	return strings.Join(parts, " - ")
}

func (p Profile) priority() []string {
	if len(p.BrandPriority) == 0 {
		return DefaultBrandPriority
	}
	return p.BrandPriority
}

func (p Profile) normalizes(v Variant) bool {
	for _, n := range p.NormalizeOthers {
		if n == v {
			return true
		}
	}
	return false
}

// width returns the override for role or def.
func (p Profile) width(role string, def int) int {
	if w, ok := p.ColumnWidths[role]; ok && w > 0 {
		return w
	}
	return def
}

// baseLayout is the page setup each variant starts from before profile
// overrides: the matrices are dense, the ledger and summaries are not.
func baseLayout(v Variant) render.Layout {
	l := render.DefaultLayout()
	switch v {
	case SegmentMatrix, BrandSummary, PeriodComparison:
		l.FontSize = 10
		l.MinRowHeight = 30
	case Ledger:
		l.FontSize = 10
		l.MarginLeft = 40
		l.MarginRight = 40
	}
	return l
}
