package palette

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in string
		ok bool
	}{
		{"#ff0000", true},
		{"ff0000", true},
		{"#fff", true},
		{"", false},
		{"not-a-color", false},
		{"#12345", false},
		{"#1234567", false},
		{"#ggg", false},
		{"#12345g", false},
		{"#ABCDEF", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			_, ok := Parse(tt.in)
			assert.Equal(t, tt.ok, ok)
		})
	}
}

func TestLightenDesaturate(t *testing.T) {
	c, _ := Parse("#336699")
	_, _, l := c.Hsl()

	lighter, _ := Parse(Lighten("#336699", 0.2))
	_, _, l2 := lighter.Hsl()
	assert.InDelta(t, l+0.2, l2, 0.01)

	_, s, _ := c.Hsl()
	duller, _ := Parse(Desaturate("#336699", 0.2))
	_, s2, _ := duller.Hsl()
	assert.InDelta(t, s-0.2, s2, 0.01)

	assert.Equal(t, "#ffffff", Lighten("#eeeeee", 0.5), "lightness clamps at 1")
	assert.Equal(t, "bogus", Lighten("bogus", 0.2), "unparseable input is kept")
}

func TestContrast(t *testing.T) {
	assert.InDelta(t, 21.0, Contrast("#000000", "#ffffff"), 0.01)
	assert.InDelta(t, 1.0, Contrast("#777777", "#777777"), 0.001)
	assert.Equal(t, 1.0, Contrast("nope", "#ffffff"))
}

func TestDistanceAndNearest(t *testing.T) {
	d, ok := Distance("#ff0000", "#ff0000")
	assert.True(t, ok)
	assert.InDelta(t, 0, d, 1e-9)

	_, ok = Distance("#ff0000", "x")
	assert.False(t, ok)

	assert.True(t, math.IsInf(Nearest("#ff0000", []string{"x"}), 1))
	assert.Less(t, Nearest("#fe0101", []string{"#0000ff", "#ff0000"}), 0.05)
}

func TestHighestContrast(t *testing.T) {
	assert.Equal(t, "#ffffff", HighestContrast("#101010", []string{"#222222", "#ffffff"}))
	assert.Equal(t, "#000000", HighestContrast("#f0f0f0", nil))
	assert.Equal(t, "#ffffff", HighestContrast("#000000", []string{"nope"}))
}
