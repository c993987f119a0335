package pipeline

import (
	"context"
	"sync"

	"github.com/cesargomez89/gtstats/internal/metrics"
	"github.com/cesargomez89/gtstats/internal/storage"
)

// fetchProfiles pulls every roster user's raw profile. Requests are issued
// one at a time with the configured delay between issuances (enforced by the
// rate-limited client) while responses are awaited concurrently. A single
// user's failure is logged and leaves that fragment stale or absent.
func (p *Pipeline) fetchProfiles(ctx context.Context) {
	var wg sync.WaitGroup
	for userNo := range p.roster {
		wg.Add(1)
		go func(userNo string) {
			defer wg.Done()
			body, err := p.client.FetchProfile(ctx, userNo)
			if err != nil {
				p.metrics.RemoteFetches.WithLabelValues("profile", metrics.StatusError).Inc()
				p.log.Error("profile fetch failed", "user_no", userNo, "error", err)
				return
			}
			p.metrics.RemoteFetches.WithLabelValues("profile", metrics.StatusOK).Inc()
			if err := p.store.Write(storage.ProfileFile(userNo), body); err != nil {
				p.log.Error("profile write failed", "user_no", userNo, "error", err)
			}
		}(userNo)
	}
	wg.Wait()
}

// fetchCourseRecords pulls the record fragment for every (user, category)
// pair, same issuance policy as fetchProfiles.
func (p *Pipeline) fetchCourseRecords(ctx context.Context, categories []string) {
	var wg sync.WaitGroup
	for userNo := range p.roster {
		for _, categoryID := range categories {
			wg.Add(1)
			go func(userNo, categoryID string) {
				defer wg.Done()
				body, err := p.client.FetchCourseRecord(ctx, userNo, categoryID)
				if err != nil {
					p.metrics.RemoteFetches.WithLabelValues("course_record", metrics.StatusError).Inc()
					p.log.Error("course record fetch failed", "user_no", userNo, "category_id", categoryID, "error", err)
					return
				}
				p.metrics.RemoteFetches.WithLabelValues("course_record", metrics.StatusOK).Inc()
				if err := p.store.Write(storage.CourseRecordFile(userNo, categoryID), body); err != nil {
					p.log.Error("course record write failed", "user_no", userNo, "category_id", categoryID, "error", err)
				}
			}(userNo, categoryID)
		}
	}
	wg.Wait()
}
