// Package pipeline fetches raw game metadata, normalizes it into the derived
// lookup tables, and persists both to the file store.
package pipeline

import (
	"context"
	"strconv"

	"github.com/cesargomez89/gtstats/internal/constants"
	"github.com/cesargomez89/gtstats/internal/granturismo"
	"github.com/cesargomez89/gtstats/internal/logger"
	"github.com/cesargomez89/gtstats/internal/metrics"
	"github.com/cesargomez89/gtstats/internal/models"
	"github.com/cesargomez89/gtstats/internal/storage"
)

type Pipeline struct {
	client  *granturismo.Client
	store   *storage.Store
	roster  models.Roster
	log     *logger.Logger
	metrics *metrics.Metrics
}

func New(client *granturismo.Client, store *storage.Store, roster models.Roster, log *logger.Logger, m *metrics.Metrics) *Pipeline {
	return &Pipeline{
		client:  client,
		store:   store,
		roster:  roster,
		log:     log.WithComponent("pipeline"),
		metrics: m,
	}
}

// GetMeta refreshes the raw car/course/category definitions.
func (p *Pipeline) GetMeta(ctx context.Context) error {
	p.log.Info("fetching meta")
	return p.fetchContent(ctx, constants.FileMeta, p.client.GetMeta)
}

// GetLocalize refreshes the raw display-name table.
func (p *Pipeline) GetLocalize(ctx context.Context) error {
	p.log.Info("fetching localize")
	return p.fetchContent(ctx, constants.FileLocalize, p.client.GetLocalize)
}

// GetTags refreshes the raw car tag table.
func (p *Pipeline) GetTags(ctx context.Context) error {
	p.log.Info("fetching tags")
	return p.fetchContent(ctx, constants.FileTags, p.client.GetTags)
}

func (p *Pipeline) fetchContent(ctx context.Context, outputFile string, fetch func(context.Context) (string, error)) error {
	body, err := fetch(ctx)
	if err != nil {
		p.metrics.RemoteFetches.WithLabelValues(outputFile, metrics.StatusError).Inc()
		return err
	}
	p.metrics.RemoteFetches.WithLabelValues(outputFile, metrics.StatusOK).Inc()
	return p.store.Write(outputFile, body)
}

// GetProfiles fetches every roster user's profile and rebuilds the profiles
// output table.
func (p *Pipeline) GetProfiles(ctx context.Context) error {
	p.log.Info("getting profiles")
	p.fetchProfiles(ctx)
	if err := p.convertProfiles(); err != nil {
		return err
	}
	p.log.Info("getting profiles done")
	return nil
}

// GetAllCourseRecords fetches course records for every category and rebuilds
// the unfiltered course ranking.
func (p *Pipeline) GetAllCourseRecords(ctx context.Context) error {
	p.log.Info("fetching all course records")
	categories := allCategories()
	p.fetchCourseRecords(ctx, categories)
	if err := p.buildCourseRanking(categories, nil); err != nil {
		return err
	}
	p.log.Info("fetching all course records done")
	return nil
}

// GetDailyRaceCourseRecords fetches course records for the categories that
// appear in the daily-race aggregate and rebuilds the ranking restricted to
// those (course, category) pairs.
func (p *Pipeline) GetDailyRaceCourseRecords(ctx context.Context) error {
	p.log.Info("fetching daily race course records")
	categories, filter, err := p.dailyRaceFilter()
	if err != nil {
		return err
	}
	p.fetchCourseRecords(ctx, categories)
	if err := p.buildCourseRanking(categories, filter); err != nil {
		return err
	}
	p.log.Info("fetching daily race course records done")
	return nil
}

func allCategories() []string {
	categories := make([]string, 0, constants.CarCategoryMax+1)
	for i := 0; i <= constants.CarCategoryMax; i++ {
		categories = append(categories, strconv.Itoa(i))
	}
	return categories
}

// dailyRaceFilter derives the category list and (course, category) allow-list
// from the persisted daily-race aggregate. Events whose codes could not be
// resolved carry null ids and can never match a record, so they are dropped.
func (p *Pipeline) dailyRaceFilter() ([]string, map[coursePair]struct{}, error) {
	var events map[string]models.DailyRaceEvent
	if err := p.store.ReadJSON(constants.FileDailyRaces, &events); err != nil {
		return nil, nil, err
	}

	var categories []string
	seen := make(map[string]bool)
	filter := make(map[coursePair]struct{})
	for _, event := range events {
		if event.CategoryID == nil {
			continue
		}
		if !seen[*event.CategoryID] {
			seen[*event.CategoryID] = true
			categories = append(categories, *event.CategoryID)
		}
		if event.CourseID != nil {
			filter[coursePair{course: *event.CourseID, category: *event.CategoryID}] = struct{}{}
		}
	}
	return categories, filter, nil
}
