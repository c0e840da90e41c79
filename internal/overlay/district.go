package overlay

import (
	"strings"

	"github.com/couchcryptid/event-traffic-controller/internal/domain"
)

// NormalizeDistrict folds case and trims surrounding whitespace so upstream
// geometry and overlay keys compare equal.
func NormalizeDistrict(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// normalizeDistricts re-keys a district colour map by normalized name. When
// two raw keys collide the more severe colour wins, keeping the result
// independent of map iteration order.
func normalizeDistricts(m map[string]domain.Color) map[string]domain.Color {
	if len(m) == 0 {
		return nil
	}
	out := make(map[string]domain.Color, len(m))
	for k, c := range m {
		key := NormalizeDistrict(k)
		if key == "" {
			continue
		}
		if prev, ok := out[key]; ok && !moreSevere(c, prev) {
			continue
		}
		out[key] = c
	}
	return out
}

func moreSevere(a, b domain.Color) bool {
	ta, tb := TierOf(a), TierOf(b)
	if ta != tb {
		return severityRank(ta) > severityRank(tb)
	}
	return a < b
}

func severityRank(t Tier) int {
	switch t {
	case TierCritical:
		return 3
	case TierElevated:
		return 2
	case TierNormal, TierLegacyActive:
		return 1
	default:
		return 0
	}
}
