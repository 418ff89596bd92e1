package owm

// OneCallResponse mirrors the subset of the One Call 3.0 payload this
// application reads. Fields the API sends but the dashboard never shows are
// simply not declared.
type OneCallResponse struct {
	Lat            float64  `json:"lat"`
	Lon            float64  `json:"lon"`
	Timezone       string   `json:"timezone"`
	TimezoneOffset int      `json:"timezone_offset"`
	Current        *Current `json:"current"`
	Daily          []Daily  `json:"daily"`
}

// Current holds the observation block of the One Call response.
type Current struct {
	Dt        int64       `json:"dt"`
	Temp      float64     `json:"temp"`
	FeelsLike float64     `json:"feels_like"`
	Pressure  int         `json:"pressure"`
	Humidity  int         `json:"humidity"`
	WindSpeed float64     `json:"wind_speed"`
	WindDeg   int         `json:"wind_deg"`
	Weather   []Condition `json:"weather"`
}

// Daily holds one day of the forecast block.
type Daily struct {
	Dt      int64       `json:"dt"`
	Temp    DailyTemp   `json:"temp"`
	Pop     float64     `json:"pop"`
	Weather []Condition `json:"weather"`
}

// DailyTemp is the per-day temperature envelope.
type DailyTemp struct {
	Day   float64 `json:"day"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Night float64 `json:"night"`
}

// Condition is one entry of the "weather" array.
type Condition struct {
	ID          int    `json:"id"`
	Main        string `json:"main"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}
