package util

import (
	"fmt"
	"io"

	"cycle-server/models/calendar"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

type calendarSeries struct {
	name       string
	category   calendar.Category
	prediction bool
}

var calendarSeriesOrder = []calendarSeries{
	{"Period", calendar.CategoryPeriod, false},
	{"Predicted period", calendar.CategoryPeriod, true},
	{"Ovulation", calendar.CategoryOvulation, false},
	{"Predicted ovulation", calendar.CategoryOvulation, true},
	{"Fertile window", calendar.CategoryFertile, false},
	{"Predicted fertile window", calendar.CategoryFertile, true},
}

// RenderCalendarChart writes an HTML page with one stacked bar per day,
// coloured by what the merged calendar shows on that day.
func RenderCalendarChart(w io.Writer, days []calendar.CalendarDay, title string) error {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: title,
			Width:     "1200px",
			Height:    "400px",
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    title,
			Subtitle: fmt.Sprintf("%d days", len(days)),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Top: "bottom"}),
	)

	xAxis := make([]string, 0, len(days))
	for _, d := range days {
		xAxis = append(xAxis, d.DateString)
	}
	bar.SetXAxis(xAxis)

	for _, s := range calendarSeriesOrder {
		data := make([]opts.BarData, 0, len(days))
		for _, d := range days {
			value := 0
			if d.Category == s.category && d.IsPrediction == s.prediction {
				value = 1
			}
			data = append(data, opts.BarData{Value: value})
		}
		bar.AddSeries(s.name, data, charts.WithBarChartOpts(opts.BarChart{Stack: "day"}))
	}

	if err := bar.Render(w); err != nil {
		return fmt.Errorf("failed to render calendar chart: %w", err)
	}
	return nil
}
