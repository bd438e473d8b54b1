package selection

import (
	"github.com/wonny/driplog/backend/internal/catalog"
	"github.com/wonny/driplog/backend/internal/contracts"
	"github.com/wonny/driplog/backend/pkg/logger"
)

// Screener narrows the catalog to ranking candidates
// ⭐ SSOT: 후보 필터링은 여기서만
type Screener struct {
	catalog *catalog.Catalog
	logger  *logger.Logger
}

// NewScreener creates a new screener
func NewScreener(cat *catalog.Catalog, log *logger.Logger) *Screener {
	return &Screener{
		catalog: cat,
		logger:  log,
	}
}

// Screen returns candidates in catalog order.
// allowNonDrip=false keeps only drip-family classes (moka/espresso/other 제외).
func (s *Screener) Screen(allowNonDrip bool) []contracts.Device {
	all := s.catalog.Devices()
	if allowNonDrip {
		return all
	}

	passed := make([]contracts.Device, 0, len(all))
	filtered := make(map[string]int) // class -> count

	for _, d := range all {
		if d.Class.IsDrip() {
			passed = append(passed, d)
		} else {
			filtered[string(d.Class)]++
		}
	}

	s.logger.WithFields(map[string]interface{}{
		"total_input":  len(all),
		"passed":       len(passed),
		"filtered_out": len(all) - len(passed),
		"filters":      filtered,
	}).Debug("Screening completed")

	return passed
}

// Fallback returns the primary used when no candidate survives:
// the first unfiltered device, or "" for an empty catalog
func (s *Screener) Fallback() string {
	names := s.catalog.Names()
	if len(names) == 0 {
		return ""
	}
	return names[0]
}
