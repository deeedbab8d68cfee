package shift

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOverlaps(t *testing.T) {
	tests := []struct {
		name                 string
		shiftStart, shiftEnd TimeOfDay
		prefStart, prefEnd   TimeOfDay
		want                 bool
	}{
		{"identical", 1020, 1320, 1020, 1320, true},
		{"shift inside preference", 1080, 1200, 1020, 1320, true},
		{"preference inside shift", 480, 1320, 600, 660, true},
		{"partial at start", 900, 1080, 1020, 1320, true},
		{"partial at end", 1260, 1380, 1020, 1320, true},
		{"touching after", 1020, 1320, 1320, 1380, false},
		{"touching before", 1020, 1320, 960, 1020, false},
		{"disjoint", 480, 600, 1020, 1320, false},
		{"zero-length shift inside", 1100, 1100, 1020, 1320, true},
		{"zero-length shift outside", 1400, 1400, 1020, 1320, false},
		{"zero-length preference on boundary", 1020, 1320, 1020, 1020, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Overlaps(tt.shiftStart, tt.shiftEnd, tt.prefStart, tt.prefEnd))
		})
	}
}

func TestOverlaps_SymmetricAndExcludesSeparatedRanges(t *testing.T) {
	points := []TimeOfDay{0, 30, 479, 480, 720, 1019, 1020, 1320, 1439}
	for _, a := range points {
		for _, b := range points {
			for _, c := range points {
				for _, d := range points {
					got := Overlaps(a, b, c, d)
					assert.Equal(t, got, Overlaps(c, d, a, b), "symmetry %d %d %d %d", a, b, c, d)
					if b <= c || d <= a {
						assert.False(t, got, "separated %d %d %d %d", a, b, c, d)
					}
				}
			}
		}
	}
}
