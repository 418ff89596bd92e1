package owm

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	appLog "epdweather/internal/log"
	"epdweather/internal/model"
)

var titleCaser = cases.Title(language.English)

// Project extracts the dashboard fields from a One Call payload.
//
// The mapping is deliberately dumb: values pass through in whatever unit
// system the request asked for. The only transforms are multiplying the
// 0–1 precipitation probability into a percentage and title-casing the
// condition text. A missing block fails the whole projection; there is no
// defaulting and no partial record.
func Project(resp *OneCallResponse) (model.Reading, error) {
	if resp == nil || resp.Current == nil {
		return model.Reading{}, fail("current")
	}
	if len(resp.Current.Weather) == 0 {
		return model.Reading{}, fail("current.weather[0]")
	}
	if len(resp.Daily) == 0 {
		return model.Reading{}, fail("daily[0]")
	}

	cur := resp.Current
	day := resp.Daily[0]

	r := model.Reading{
		TempCurrent:   cur.Temp,
		FeelsLike:     cur.FeelsLike,
		TempMax:       day.Temp.Max,
		TempMin:       day.Temp.Min,
		Humidity:      cur.Humidity,
		Wind:          cur.WindSpeed,
		PrecipPercent: day.Pop * 100,
		Report:        titleCaser.String(cur.Weather[0].Description),
		IconCode:      cur.Weather[0].Icon,
	}

	appLog.Info("weather data projected",
		"temp", r.TempCurrent,
		"report", r.Report,
		"icon", r.IconCode,
	)
	return r, nil
}

func fail(path string) error {
	err := &FieldError{Path: path}
	appLog.Error("weather payload incomplete", err, "field", path)
	return err
}
