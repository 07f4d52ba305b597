package visibility

import "log"

// QualityMask selects the render quality tiers a mesh is displayed at. It is
// a 5-bit bitmask, bit k = visible at tier k. It is NOT a 0-4 tier enum:
// the common default 31 means "all tiers" and must survive round-trips
// untouched.
type QualityMask uint8

const (
	QualityVeryLow QualityMask = 1 << iota
	QualityLow
	QualityMedium
	QualityHigh
	QualityVeryHigh

	QualityAll = QualityVeryLow | QualityLow | QualityMedium | QualityHigh | QualityVeryHigh
)

const QualityLevelCount = 5

var qualityLevelNames = [QualityLevelCount]string{
	"VeryLow", "Low", "Medium", "High", "VeryHigh",
}

func QualityLevelName(level int) string {
	if level < 0 || level >= QualityLevelCount {
		return "Unknown"
	}
	return qualityLevelNames[level]
}

// NormalizeQualityMask accepts the full stored byte. Values above 31 have no
// documented meaning and behave like "all tiers"; they are clamped with a
// warning, never rejected and never squeezed into a 0-4 range.
func NormalizeQualityMask(v uint8) QualityMask {
	if v > uint8(QualityAll) {
		log.Printf("[visibility] quality mask %d out of range, clamping to %d", v, uint8(QualityAll))
		return QualityAll
	}
	return QualityMask(v)
}

// VisibleAt reports whether the mask keeps the mesh visible at the given
// quality tier (0 = very low .. 4 = very high). A zero mask is treated as
// visible everywhere, matching the permissive behavior of the game runtime.
func (q QualityMask) VisibleAt(level int) bool {
	if level < 0 || level >= QualityLevelCount {
		return false
	}
	if q == 0 || q > QualityAll {
		return true
	}
	return q&(1<<uint(level)) != 0
}
