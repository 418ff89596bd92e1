package render

import (
	"fmt"

	"epdweather/internal/model"
)

// Display rounding happens here and only here; the underlying Reading keeps
// full precision. Temperatures, humidity and precipitation round to whole
// numbers, wind keeps one decimal.

func formatTemp(v float64, u model.Units) string {
	return fmt.Sprintf("%.0f%s", v, u.Temp)
}

func formatWind(v float64, u model.Units) string {
	return fmt.Sprintf("%.1f %s", v, u.Wind)
}

func formatHumidity(v int) string {
	return fmt.Sprintf("%d%%", v)
}

func formatPercent(v float64) string {
	return fmt.Sprintf("%.0f%%", v)
}
