package pipeline

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/cesargomez89/gtstats/internal/constants"
	"github.com/cesargomez89/gtstats/internal/models"
	"github.com/cesargomez89/gtstats/internal/storage"
)

func loadTestRef(t *testing.T, p *Pipeline, st *storage.Store) *refTables {
	t.Helper()
	if err := st.Write(constants.FileMeta, metaFixture); err != nil {
		t.Fatalf("meta fixture write failed: %v", err)
	}
	ref, err := p.loadMeta()
	if err != nil {
		t.Fatalf("loadMeta failed: %v", err)
	}
	return ref
}

func testRemoteEvent(eventID int64, categoryType, courseCode string) remoteEvent {
	var event remoteEvent
	if err := json.Unmarshal([]byte(remoteEventJSON(eventID, categoryType, courseCode)), &event); err != nil {
		panic(err)
	}
	return event
}

func jsonInt(v int64) string {
	b, _ := json.Marshal(v)
	return string(b)
}

func TestDecodeDailyRaceEvent(t *testing.T) {
	p, st := newTestPipeline(t, nil, "")
	ref := loadTestRef(t, p, st)

	event, err := p.decodeDailyRaceEvent(ref, testRemoteEvent(101, "GR3", "monza"))
	if err != nil {
		t.Fatalf("decodeDailyRaceEvent failed: %v", err)
	}

	if event.EventID != 101 {
		t.Errorf("Expected event id 101, got %d", event.EventID)
	}
	if event.CategoryID == nil || *event.CategoryID != "0" {
		t.Errorf("Expected category id 0, got %v", event.CategoryID)
	}
	if event.CourseID == nil || *event.CourseID != "10" {
		t.Errorf("Expected course id 10, got %v", event.CourseID)
	}
	if string(event.GameMode) != `"RACE"` {
		t.Errorf("Expected game mode to pass through verbatim, got %s", event.GameMode)
	}
	if string(event.BoardID) != "9000" {
		t.Errorf("Expected board id to pass through verbatim, got %s", event.BoardID)
	}
}

func TestDecodeDailyRaceEventUnknownCodes(t *testing.T) {
	p, st := newTestPipeline(t, nil, "")
	ref := loadTestRef(t, p, st)

	event, err := p.decodeDailyRaceEvent(ref, testRemoteEvent(102, "GR_UNKNOWN", "nowhere"))
	if err != nil {
		t.Fatalf("decodeDailyRaceEvent failed: %v", err)
	}

	// Unresolvable codes become null ids, never errors.
	if event.CategoryID != nil {
		t.Errorf("Expected null category id, got %q", *event.CategoryID)
	}
	if event.CourseID != nil {
		t.Errorf("Expected null course id, got %q", *event.CourseID)
	}
}

func TestDecodeDailyRaceEventEmptyLists(t *testing.T) {
	p, st := newTestPipeline(t, nil, "")
	ref := loadTestRef(t, p, st)

	tests := []struct {
		name   string
		mutate func(e *remoteEvent)
	}{
		{"no values", func(e *remoteEvent) { e.Value = nil }},
		{"no events", func(e *remoteEvent) { e.Value[0].GameParameter.Events = nil }},
		{"no tracks", func(e *remoteEvent) { e.Value[0].GameParameter.Tracks = nil }},
		{"no car category types", func(e *remoteEvent) {
			e.Value[0].GameParameter.Events[0].Regulation.CarCategoryTypes = nil
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event := testRemoteEvent(103, "GR3", "monza")
			tt.mutate(&event)
			_, err := p.decodeDailyRaceEvent(ref, event)
			if err == nil {
				t.Fatal("Expected error, got nil")
			}
			if !strings.Contains(err.Error(), "103") {
				t.Errorf("Expected error to identify the event, got %v", err)
			}
		})
	}
}

func TestDecodeDailyRaceEventExtraElementsUseFirst(t *testing.T) {
	p, st := newTestPipeline(t, nil, "")
	ref := loadTestRef(t, p, st)

	event := testRemoteEvent(104, "GR3", "monza")
	event.Value[0].GameParameter.Tracks = append(event.Value[0].GameParameter.Tracks,
		struct {
			CourseCode string `json:"course_code"`
		}{CourseCode: "spa"})
	event.Value[0].GameParameter.Events[0].Regulation.CarCategoryTypes = []string{"GR3", "GR4"}

	decoded, err := p.decodeDailyRaceEvent(ref, event)
	if err != nil {
		t.Fatalf("decodeDailyRaceEvent failed: %v", err)
	}
	if decoded.CourseID == nil || *decoded.CourseID != "10" {
		t.Errorf("Expected first track to win, got %v", decoded.CourseID)
	}
	if decoded.CategoryID == nil || *decoded.CategoryID != "0" {
		t.Errorf("Expected first category type to win, got %v", decoded.CategoryID)
	}
}

func TestGetDailyRaceEvents(t *testing.T) {
	calendar := `{"event_calendar": [{"event_id": 101}, {"event_id": 102}]}`
	details := map[string]string{
		"101": `{"event": [` + remoteEventJSON(101, "GR3", "monza") + `]}`,
		"102": `{"event": [` + remoteEventJSON(102, "GR4", "spa") + `]}`,
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != constants.PathEvent {
			http.NotFound(w, r)
			return
		}
		q := r.URL.Query()
		switch q.Get("job") {
		case "3":
			_, _ = w.Write([]byte(calendar))
		case "1":
			body, ok := details[q.Get("event_id_csv")]
			if !ok {
				http.NotFound(w, r)
				return
			}
			_, _ = w.Write([]byte(body))
		default:
			http.Error(w, "unknown job", http.StatusBadRequest)
		}
	}))
	defer srv.Close()

	p, st := newTestPipeline(t, nil, srv.URL)
	if err := st.Write(constants.FileMeta, metaFixture); err != nil {
		t.Fatalf("meta fixture write failed: %v", err)
	}

	if err := p.GetDailyRaceEvents(context.Background()); err != nil {
		t.Fatalf("GetDailyRaceEvents failed: %v", err)
	}

	// The raw calendar must be persisted as received.
	raw, err := st.ReadRaw(constants.FileEventCalendar)
	if err != nil {
		t.Fatalf("reading raw calendar failed: %v", err)
	}
	if string(raw) != calendar {
		t.Errorf("Raw calendar altered: got %q", string(raw))
	}

	var events map[string]models.DailyRaceEvent
	if err := st.ReadJSON(constants.FileDailyRaces, &events); err != nil {
		t.Fatalf("reading daily races output failed: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("Expected 2 events, got %d", len(events))
	}
	if e := events["101"]; e.CategoryID == nil || *e.CategoryID != "0" || e.CourseID == nil || *e.CourseID != "10" {
		t.Errorf("Unexpected event 101: %+v", e)
	}
	if e := events["102"]; e.CategoryID == nil || *e.CategoryID != "1" || e.CourseID == nil || *e.CourseID != "3" {
		t.Errorf("Unexpected event 102: %+v", e)
	}
}

func TestGetDailyRaceEventsDropsFailingEvent(t *testing.T) {
	calendar := `{"event_calendar": [{"event_id": 101}, {"event_id": 102}]}`

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		switch {
		case q.Get("job") == "3":
			_, _ = w.Write([]byte(calendar))
		case q.Get("event_id_csv") == "101":
			_, _ = w.Write([]byte(`{"event": [` + remoteEventJSON(101, "GR3", "monza") + `]}`))
		default:
			// Event 102 has no detail document at all.
			_, _ = w.Write([]byte(`{"event": []}`))
		}
	}))
	defer srv.Close()

	p, st := newTestPipeline(t, nil, srv.URL)
	if err := st.Write(constants.FileMeta, metaFixture); err != nil {
		t.Fatalf("meta fixture write failed: %v", err)
	}

	if err := p.GetDailyRaceEvents(context.Background()); err != nil {
		t.Fatalf("GetDailyRaceEvents failed: %v", err)
	}

	var events map[string]models.DailyRaceEvent
	if err := st.ReadJSON(constants.FileDailyRaces, &events); err != nil {
		t.Fatalf("reading daily races output failed: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("Expected only the healthy event, got %d", len(events))
	}
	if _, ok := events["101"]; !ok {
		t.Error("Expected event 101 to survive")
	}
}

func remoteEventJSON(eventID int64, categoryType, courseCode string) string {
	return `{
		"event_id": ` + jsonInt(eventID) + `,
		"value": [{
			"GameParameter": {
				"events": [{
					"game_mode": "RACE",
					"event_type": 1,
					"sports_mode": "enable",
					"ranking": {"board_id": 9000},
					"regulation": {"car_category_types": ["` + categoryType + `"]}
				}],
				"tracks": [{"course_code": "` + courseCode + `"}]
			}
		}]
	}`
}
