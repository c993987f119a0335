package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"

	"github.com/cesargomez89/gtstats/internal/constants"
	"github.com/cesargomez89/gtstats/internal/metrics"
	"github.com/cesargomez89/gtstats/internal/models"
)

// Remote event document shapes. Every nested list is nominally one-or-more;
// the first element is canonical and extras only warrant a warning, since
// the remote data shape is not under our control.
type eventCalendarDoc struct {
	EventCalendar []struct {
		EventID int64 `json:"event_id"`
	} `json:"event_calendar"`
}

type eventDoc struct {
	Event []remoteEvent `json:"event"`
}

type remoteEvent struct {
	EventID int64 `json:"event_id"`
	Value   []struct {
		GameParameter gameParameter `json:"GameParameter"`
	} `json:"value"`
}

type gameParameter struct {
	Events []struct {
		GameMode   json.RawMessage `json:"game_mode"`
		EventType  json.RawMessage `json:"event_type"`
		SportsMode json.RawMessage `json:"sports_mode"`
		Ranking    struct {
			BoardID json.RawMessage `json:"board_id"`
		} `json:"ranking"`
		Regulation struct {
			CarCategoryTypes []string `json:"car_category_types"`
		} `json:"regulation"`
	} `json:"events"`
	Tracks []struct {
		CourseCode string `json:"course_code"`
	} `json:"tracks"`
}

// GetDailyRaceEvents fetches the event calendar, then each event's detail
// concurrently, and overwrites the daily-race aggregate. A single event's
// failure is logged and drops only that event.
func (p *Pipeline) GetDailyRaceEvents(ctx context.Context) error {
	p.log.Info("getting daily race events")

	body, err := p.client.FetchEventCalendar(ctx)
	if err != nil {
		p.metrics.RemoteFetches.WithLabelValues("event", metrics.StatusError).Inc()
		return err
	}
	p.metrics.RemoteFetches.WithLabelValues("event", metrics.StatusOK).Inc()
	if err := p.store.Write(constants.FileEventCalendar, body); err != nil {
		return err
	}

	var calendar eventCalendarDoc
	if err := p.store.ReadJSON(constants.FileEventCalendar, &calendar); err != nil {
		return err
	}

	ref, err := p.loadMeta()
	if err != nil {
		return err
	}

	var (
		mu     sync.Mutex
		wg     sync.WaitGroup
		events = make(map[string]models.DailyRaceEvent)
	)
	for _, entry := range calendar.EventCalendar {
		wg.Add(1)
		go func(eventID int64) {
			defer wg.Done()
			event, err := p.fetchDailyRaceEvent(ctx, ref, eventID)
			if err != nil {
				p.log.Error("event fetch failed", "event_id", eventID, "error", err)
				return
			}
			mu.Lock()
			events[strconv.FormatInt(eventID, 10)] = *event
			mu.Unlock()
		}(entry.EventID)
	}
	wg.Wait()

	if err := p.store.WriteJSON(constants.FileDailyRaces, events); err != nil {
		return err
	}
	p.log.Info("getting daily race events done", "count", len(events))
	return nil
}

func (p *Pipeline) fetchDailyRaceEvent(ctx context.Context, ref *refTables, eventID int64) (*models.DailyRaceEvent, error) {
	body, err := p.client.FetchEvent(ctx, strconv.FormatInt(eventID, 10))
	if err != nil {
		p.metrics.RemoteFetches.WithLabelValues("event", metrics.StatusError).Inc()
		return nil, err
	}
	p.metrics.RemoteFetches.WithLabelValues("event", metrics.StatusOK).Inc()

	var doc eventDoc
	if err := json.Unmarshal([]byte(body), &doc); err != nil {
		return nil, fmt.Errorf("event %d: failed to parse response: %w", eventID, err)
	}

	if len(doc.Event) == 0 {
		return nil, fmt.Errorf("no events for event %d", eventID)
	}
	if len(doc.Event) > 1 {
		p.log.Warn("multiple events in response, using first", "event_id", eventID, "count", len(doc.Event))
	}

	return p.decodeDailyRaceEvent(ref, doc.Event[0])
}

// decodeDailyRaceEvent flattens the nested remote structure into the local
// projection. An empty required list fails the event; extra elements are
// discarded with a warning. Category and course codes are resolved against
// the cached reference tables; a code without a match yields a null id.
func (p *Pipeline) decodeDailyRaceEvent(ref *refTables, event remoteEvent) (*models.DailyRaceEvent, error) {
	if len(event.Value) == 0 {
		return nil, fmt.Errorf("no values for event %d", event.EventID)
	}
	if len(event.Value) > 2 {
		p.log.Warn("unexpected value count, using first", "event_id", event.EventID, "count", len(event.Value))
	}
	gp := event.Value[0].GameParameter

	if len(gp.Events) == 0 {
		return nil, fmt.Errorf("no game parameter events for event %d", event.EventID)
	}
	if len(gp.Events) > 1 {
		p.log.Warn("multiple game parameter events, using first", "event_id", event.EventID, "count", len(gp.Events))
	}
	gpEvent := gp.Events[0]

	if len(gp.Tracks) == 0 {
		return nil, fmt.Errorf("no game parameter tracks for event %d", event.EventID)
	}
	if len(gp.Tracks) > 1 {
		p.log.Warn("multiple game parameter tracks, using first", "event_id", event.EventID, "count", len(gp.Tracks))
	}
	track := gp.Tracks[0]

	if len(gpEvent.Regulation.CarCategoryTypes) == 0 {
		return nil, fmt.Errorf("no car category types for event %d", event.EventID)
	}
	if len(gpEvent.Regulation.CarCategoryTypes) > 1 {
		p.log.Warn("multiple car category types, using first", "event_id", event.EventID, "count", len(gpEvent.Regulation.CarCategoryTypes))
	}

	return &models.DailyRaceEvent{
		EventID:    event.EventID,
		GameMode:   gpEvent.GameMode,
		EventType:  gpEvent.EventType,
		SportsMode: gpEvent.SportsMode,
		BoardID:    gpEvent.Ranking.BoardID,
		CategoryID: ref.categoryID(gpEvent.Regulation.CarCategoryTypes[0]),
		CourseID:   ref.courseID(track.CourseCode),
	}, nil
}
