package pipeline

import (
	"encoding/json"
	"strconv"

	"github.com/cesargomez89/gtstats/internal/constants"
	"github.com/cesargomez89/gtstats/internal/models"
	"github.com/cesargomez89/gtstats/internal/storage"
)

// ConvertCars rebuilds the car code → display name table from the cached
// meta and tag tables. A car whose tag has no English name gets a null
// value, never an error.
func (p *Pipeline) ConvertCars() error {
	p.log.Info("converting cars")

	ref, err := p.loadMeta()
	if err != nil {
		return err
	}
	tags, err := p.loadTags()
	if err != nil {
		return err
	}

	carNames := tags[constants.CarNameTable]
	cars := make(map[string]*string, len(ref.meta.Car))
	for _, car := range ref.meta.Car {
		cars[car.Code] = displayName(carNames, car.Tag)
	}

	if err := p.store.WriteJSON(constants.FileCars, cars); err != nil {
		return err
	}
	p.log.Info("converting cars done", "count", len(cars))
	return nil
}

// ConvertCategories rebuilds the category index → display name table.
func (p *Pipeline) ConvertCategories() error {
	p.log.Info("converting categories")

	ref, err := p.loadMeta()
	if err != nil {
		return err
	}
	localize, err := p.loadLocalize()
	if err != nil {
		return err
	}

	categories := make(map[string]*string, len(ref.meta.CarCategory))
	for i, category := range ref.meta.CarCategory {
		categories[strconv.Itoa(i)] = displayName(localize, constants.CarClassNamePrefix+category.Code)
	}

	if err := p.store.WriteJSON(constants.FileCategories, categories); err != nil {
		return err
	}
	p.log.Info("converting categories done", "count", len(categories))
	return nil
}

// ConvertCourses rebuilds the course index → display name table. Courses
// without a numeric index are skipped with a warning.
func (p *Pipeline) ConvertCourses() error {
	p.log.Info("converting courses")

	ref, err := p.loadMeta()
	if err != nil {
		return err
	}
	localize, err := p.loadLocalize()
	if err != nil {
		return err
	}

	courses := make(map[string]*string)
	for _, course := range ref.meta.Course {
		if course.Index == nil {
			p.log.Warn("course index is undefined", "code", course.Code)
			continue
		}
		courses[strconv.FormatInt(*course.Index, 10)] = displayName(localize, constants.CourseNamePrefix+course.Code)
	}

	if err := p.store.WriteJSON(constants.FileCourses, courses); err != nil {
		return err
	}
	p.log.Info("converting courses done", "count", len(courses))
	return nil
}

// convertProfiles joins the raw per-user profile fragments with the roster
// into the profiles output table. A user whose fragment is missing or
// unreadable is excluded with a warning.
func (p *Pipeline) convertProfiles() error {
	p.log.Info("converting profiles")

	profiles := make(map[string]models.ProfileEntry, len(p.roster))
	for userNo, user := range p.roster {
		var raw struct {
			Profile json.RawMessage `json:"profile"`
		}
		if err := p.store.ReadJSON(storage.ProfileFile(userNo), &raw); err != nil {
			p.log.Warn("profile fragment unreadable", "user_no", userNo, "error", err)
			continue
		}
		profiles[userNo] = models.ProfileEntry{
			Profile: raw.Profile,
			User: models.ProfileUser{
				Nick:       user.Nick,
				Controller: user.Controller,
			},
		}
	}

	if err := p.store.WriteJSON(constants.FileProfiles, profiles); err != nil {
		return err
	}
	p.log.Info("converting profiles done", "count", len(profiles))
	return nil
}

// displayName looks up a localization key, returning nil (JSON null) when
// the key is absent.
func displayName(table map[string]string, key string) *string {
	if name, ok := table[key]; ok {
		return &name
	}
	return nil
}
