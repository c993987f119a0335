package granturismo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/cesargomez89/gtstats/internal/constants"
	"github.com/cesargomez89/gtstats/internal/httpclient"
)

func newTestClient(serverURL string) *Client {
	hc := httpclient.NewClient(&http.Client{Timeout: 5 * time.Second}, 0)
	return NewClient(serverURL, serverURL, hc)
}

func TestGetMeta(t *testing.T) {
	body := `{"car": [],   "course": []}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != constants.PathMeta {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(body))
	}))
	defer srv.Close()

	got, err := newTestClient(srv.URL).GetMeta(context.Background())
	if err != nil {
		t.Fatalf("GetMeta failed: %v", err)
	}
	if got != body {
		t.Errorf("Response body altered: want %q, got %q", body, got)
	}
}

func TestFetchCourseRecordParams(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != constants.PathCourseRecord {
			http.NotFound(w, r)
			return
		}
		q := r.URL.Query()
		if q.Get("user_no") != "12345" || q.Get("category_id") != "7" {
			t.Errorf("Unexpected query params: %v", q)
		}
		if q.Get("is_category") != "1" || q.Get("job") != "1" {
			t.Errorf("Unexpected dispatch params: %v", q)
		}
		_, _ = w.Write([]byte(`{"course_record": []}`))
	}))
	defer srv.Close()

	if _, err := newTestClient(srv.URL).FetchCourseRecord(context.Background(), "12345", "7"); err != nil {
		t.Fatalf("FetchCourseRecord failed: %v", err)
	}
}

func TestErrorIdentifiesEndpoint(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)

	_, err := c.GetLocalize(context.Background())
	if err == nil {
		t.Fatal("Expected error for status 500, got nil")
	}
	if !strings.Contains(err.Error(), "localize") {
		t.Errorf("Expected error to name the endpoint, got %v", err)
	}

	_, err = c.FetchProfile(context.Background(), "12345")
	if err == nil {
		t.Fatal("Expected error for status 500, got nil")
	}
	if !strings.Contains(err.Error(), "profile") {
		t.Errorf("Expected error to name the endpoint, got %v", err)
	}
}
