package model

// Reading is the flat weather record drawn onto the panel. It lives for a
// single run: built by the projector, consumed by the renderer, discarded.
// Values keep full provider precision; rounding happens at draw time.
type Reading struct {
	// TempCurrent is the current temperature in the configured unit system.
	TempCurrent float64
	// FeelsLike is the apparent temperature.
	FeelsLike float64
	// TempMax / TempMin are today's forecast extremes.
	TempMax float64
	TempMin float64

	// Humidity is relative humidity in whole percent.
	Humidity int
	// Wind is the wind speed in the unit system's speed unit.
	Wind float64
	// PrecipPercent is today's precipitation probability, 0–100.
	PrecipPercent float64

	// Report is the title-cased condition text (e.g. "Light Snow").
	Report string
	// IconCode identifies the condition pictogram asset (e.g. "13d").
	IconCode string
}

// Units captures the display suffixes implied by the provider unit system.
type Units struct {
	Temp string // "°C", "°F" or "K"
	Wind string // "m/s" or "mph"
}

// UnitsFor maps an OpenWeather unit system name to display suffixes.
// Unknown names fall back to metric.
func UnitsFor(system string) Units {
	switch system {
	case "imperial":
		return Units{Temp: "°F", Wind: "mph"}
	case "standard":
		return Units{Temp: "K", Wind: "m/s"}
	default:
		return Units{Temp: "°C", Wind: "m/s"}
	}
}
