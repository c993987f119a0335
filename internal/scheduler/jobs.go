package scheduler

import (
	"context"

	"github.com/cesargomez89/gtstats/internal/pipeline"
)

// Definitions binds the fixed job roster to the pipeline entry points. The
// reference tables refresh overnight, conversions follow once the raw blobs
// are in, and the record jobs run through the day.
func Definitions(p *pipeline.Pipeline) []Definition {
	return []Definition{
		{Name: "meta", Rule: "10 4 * * *", Enabled: true, Fn: p.GetMeta},
		{Name: "localize", Rule: "15 4 * * *", Enabled: true, Fn: p.GetLocalize},
		{Name: "tags", Rule: "20 4 * * *", Enabled: true, Fn: p.GetTags},
		{Name: "convertCars", Rule: "30 4 * * *", Enabled: true, Fn: noCtx(p.ConvertCars)},
		{Name: "convertCategories", Rule: "32 4 * * *", Enabled: true, Fn: noCtx(p.ConvertCategories)},
		{Name: "convertCourses", Rule: "34 4 * * *", Enabled: true, Fn: noCtx(p.ConvertCourses)},
		{Name: "profiles", Rule: "5 * * * *", Enabled: true, Fn: p.GetProfiles},
		{Name: "dailyRaceEvents", Rule: "45 4 * * *", Enabled: true, Fn: p.GetDailyRaceEvents},
		{Name: "allCourseRecords", Rule: "0 5 * * *", Enabled: true, Fn: p.GetAllCourseRecords},
		{Name: "dailyRaceCourseRecords", Rule: "*/30 * * * *", Enabled: true, Fn: p.GetDailyRaceCourseRecords},
	}
}

func noCtx(fn func() error) JobFunc {
	return func(context.Context) error {
		return fn()
	}
}
