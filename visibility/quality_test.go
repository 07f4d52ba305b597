package visibility

import "testing"

func TestNormalizeQualityMask(t *testing.T) {
	tests := []struct {
		in   uint8
		want QualityMask
	}{
		{31, QualityAll}, // the common default, must pass untouched
		{4, 4},           // a legitimate bitmask, NOT a tier enum value
		{0, 0},
		{21, 21},
		{32, QualityAll}, // out of range clamps up to "all", never down
		{255, QualityAll},
	}
	for _, tt := range tests {
		if got := NormalizeQualityMask(tt.in); got != tt.want {
			t.Errorf("NormalizeQualityMask(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestQualityVisibleAt(t *testing.T) {
	// bit per tier: 0b00101 = very low and medium only
	q := QualityVeryLow | QualityMedium
	want := []bool{true, false, true, false, false}
	for level, w := range want {
		if got := q.VisibleAt(level); got != w {
			t.Errorf("mask %05b at %s: %v, want %v", uint8(q), QualityLevelName(level), got, w)
		}
	}

	// zero mask is permissive, not invisible
	for level := 0; level < QualityLevelCount; level++ {
		if !QualityMask(0).VisibleAt(level) {
			t.Errorf("zero mask hidden at %s", QualityLevelName(level))
		}
		if !QualityAll.VisibleAt(level) {
			t.Errorf("full mask hidden at %s", QualityLevelName(level))
		}
	}

	if QualityAll.VisibleAt(-1) || QualityAll.VisibleAt(QualityLevelCount) {
		t.Error("out-of-range tier visible")
	}
}
