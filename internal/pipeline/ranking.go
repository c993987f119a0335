package pipeline

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/cesargomez89/gtstats/internal/constants"
	"github.com/cesargomez89/gtstats/internal/models"
	"github.com/cesargomez89/gtstats/internal/storage"
)

// Records older than this predate meaningful data and are discarded.
var minRecordDate = time.Date(2019, time.January, 1, 0, 0, 0, 0, time.Local)

var updateTimeLayouts = []string{
	"2006-01-02 15:04:05",
	time.RFC3339,
}

type coursePair struct {
	course   string
	category string
}

type courseRecordFragment struct {
	CourseRecord []models.CourseRecord `json:"course_record"`
}

// buildCourseRanking aggregates the persisted (user, category) record
// fragments into the consolidated ranking structure and overwrites the
// output wholesale. Missing or unreadable fragments are skipped with a
// warning. When a filter is supplied, only records whose (course, category)
// pair appears in it survive.
func (p *Pipeline) buildCourseRanking(categories []string, filter map[coursePair]struct{}) error {
	p.log.Info("creating course record ranking")

	updateTime := time.Now()
	ranking := make(map[string]map[string][]models.CourseRecord)
	courseFreshness := make(map[string]time.Time)

	for userNo := range p.roster {
		for _, categoryID := range categories {
			var fragment courseRecordFragment
			if err := p.store.ReadJSON(storage.CourseRecordFile(userNo, categoryID), &fragment); err != nil {
				p.log.Warn("course record fragment unreadable", "user_no", userNo, "category_id", categoryID, "error", err)
				continue
			}

			for _, record := range fragment.CourseRecord {
				recordTime, ok := parseUpdateTime(record.UpdateTime)
				if !ok || recordTime.Before(minRecordDate) {
					continue
				}
				if filter != nil {
					if _, ok := filter[coursePair{course: record.CourseID, category: categoryID}]; !ok {
						continue
					}
				}

				byCategory, ok := ranking[record.CourseID]
				if !ok {
					byCategory = make(map[string][]models.CourseRecord)
					ranking[record.CourseID] = byCategory
				}
				byCategory[categoryID] = append(byCategory[categoryID], record)

				if last, ok := courseFreshness[record.CourseID]; !ok || recordTime.After(last) {
					courseFreshness[record.CourseID] = recordTime
				}
			}
		}
	}

	for _, byCategory := range ranking {
		for _, records := range byCategory {
			sortRecordsByResult(records)
		}
	}

	out := models.CourseRanking{
		UpdateTime: updateTime,
		CourseIDs:  sortCourseIDsByFreshness(courseFreshness),
		Ranking:    ranking,
	}
	if err := p.store.WriteJSON(constants.FileCourseRanking, out); err != nil {
		return err
	}
	p.log.Info("creating course record ranking done", "courses", len(out.CourseIDs))
	return nil
}

// sortCourseIDsByFreshness orders course ids by day-truncated freshness
// descending. Ties on the same day are broken by descending course id so the
// ordering is deterministic regardless of map iteration.
func sortCourseIDsByFreshness(freshness map[string]time.Time) []string {
	courseIDs := make([]string, 0, len(freshness))
	for courseID := range freshness {
		courseIDs = append(courseIDs, courseID)
	}

	sort.SliceStable(courseIDs, func(i, j int) bool {
		dayI := dayStart(freshness[courseIDs[i]])
		dayJ := dayStart(freshness[courseIDs[j]])
		if !dayI.Equal(dayJ) {
			return dayI.After(dayJ)
		}
		return courseIDs[i] > courseIDs[j]
	})

	return courseIDs
}

// sortRecordsByResult orders records ascending by numeric result. Results
// that fail to parse sort after every numeric result and tie with each other.
func sortRecordsByResult(records []models.CourseRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		a, aErr := strconv.ParseFloat(strings.TrimSpace(records[i].Result), 64)
		b, bErr := strconv.ParseFloat(strings.TrimSpace(records[j].Result), 64)
		if aErr != nil {
			return false
		}
		if bErr != nil {
			return true
		}
		return a < b
	})
}

func parseUpdateTime(s string) (time.Time, bool) {
	for _, layout := range updateTimeLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// dayStart truncates a time to 00:00:00 of its day.
func dayStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
