package willo

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/queriumcorp/rover-gradesync/internal/logger"
)

func newTestClient(t *testing.T) Client {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return NewClient(log)
}

func TestPostGrade_Accepted(t *testing.T) {
	var gotAuth, gotContentType, gotPath string
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotContentType = r.Header.Get("Content-Type")
		gotPath = r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	c := newTestClient(t)
	when := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)
	disp, err := c.PostGrade(context.Background(), srv.URL+"/outcomes/ctx-1", "key-1", Grade{
		ResultID:       "ctx-1:42",
		ActivityID:     "homework1",
		UserID:         "42",
		ResultDate:     when,
		Score:          4,
		PointsPossible: 5,
	})
	if err != nil {
		t.Fatalf("PostGrade: %v", err)
	}
	if disp != DispositionAccepted {
		t.Fatalf("disposition = %s", disp)
	}
	if gotAuth != "Token key-1" {
		t.Fatalf("Authorization = %q", gotAuth)
	}
	if gotContentType != "application/vnd.willolabs.outcome.result+json" {
		t.Fatalf("Content-Type = %q", gotContentType)
	}
	if gotPath != "/outcomes/ctx-1/" {
		t.Fatalf("trailing slash not appended, path = %q", gotPath)
	}
	if gotBody["type"] != "result" || gotBody["id"] != "ctx-1:42" || gotBody["activity_id"] != "homework1" || gotBody["user_id"] != "42" {
		t.Fatalf("unexpected body %v", gotBody)
	}
	if gotBody["score"].(float64) != 4 || gotBody["points_possible"].(float64) != 5 {
		t.Fatalf("unexpected score fields %v", gotBody)
	}
	if gotBody["result_date"] != "2026-03-04T05:06:07Z" {
		t.Fatalf("result_date = %v", gotBody["result_date"])
	}
}

func TestPostColumn_Accepted(t *testing.T) {
	var gotContentType string
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := newTestClient(t)
	due := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	disp, err := c.PostColumn(context.Background(), srv.URL+"/outcomes/ctx-1/", "key-1", Column{
		ActivityID:     "homework1",
		Title:          "Homework 1",
		Description:    "Homework 1",
		DueDate:        &due,
		PointsPossible: 5,
	})
	if err != nil {
		t.Fatalf("PostColumn: %v", err)
	}
	if disp != DispositionAccepted {
		t.Fatalf("disposition = %s", disp)
	}
	if gotContentType != "application/vnd.willolabs.outcome.activity+json" {
		t.Fatalf("Content-Type = %q", gotContentType)
	}
	if gotBody["type"] != "activity" || gotBody["id"] != "homework1" || gotBody["title"] != "Homework 1" {
		t.Fatalf("unexpected body %v", gotBody)
	}
	if gotBody["due_date"] != "2026-05-01T00:00:00Z" {
		t.Fatalf("due_date = %v", gotBody["due_date"])
	}
}

func TestPost_Dispositions(t *testing.T) {
	cases := []struct {
		status int
		want   Disposition
	}{
		{200, DispositionAccepted},
		{201, DispositionAccepted},
		{408, DispositionTransient},
		{429, DispositionTransient},
		{500, DispositionTransient},
		{503, DispositionTransient},
		{400, DispositionPermanent},
		{401, DispositionPermanent},
		{404, DispositionPermanent},
		{422, DispositionPermanent},
	}
	for _, c := range cases {
		status := c.status
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		}))
		got, err := newTestClient(t).PostGrade(context.Background(), srv.URL, "k", Grade{UserID: "1", ActivityID: "a", ResultDate: time.Now()})
		srv.Close()
		if got != c.want {
			t.Fatalf("status %d: disposition = %s, want %s", c.status, got, c.want)
		}
		if c.want == DispositionAccepted && err != nil {
			t.Fatalf("status %d: unexpected error %v", c.status, err)
		}
		if c.want != DispositionAccepted && err == nil {
			t.Fatalf("status %d: expected an error", c.status)
		}
	}
}

func TestPost_ConnectionRefusedIsTransient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // nothing listens anymore

	disp, err := newTestClient(t).PostGrade(context.Background(), srv.URL, "k", Grade{UserID: "1", ActivityID: "a", ResultDate: time.Now()})
	if err == nil {
		t.Fatalf("expected a transport error")
	}
	if disp != DispositionTransient {
		t.Fatalf("disposition = %s", disp)
	}
}

func TestNormalizeURL(t *testing.T) {
	if got := NormalizeURL("https://app.willolabs.com/api/outcomes/ctx-1"); got != "https://app.willolabs.com/api/outcomes/ctx-1/" {
		t.Fatalf("got %q", got)
	}
	if got := NormalizeURL("https://app.willolabs.com/api/outcomes/ctx-1/"); got != "https://app.willolabs.com/api/outcomes/ctx-1/" {
		t.Fatalf("got %q", got)
	}
	if got := NormalizeURL(""); got != "" {
		t.Fatalf("got %q", got)
	}
}

func TestIDFromURL(t *testing.T) {
	cases := map[string]string{
		"https://app.willolabs.com/api/v1/users/1234/": "1234",
		"https://app.willolabs.com/api/v1/users/1234":  "1234",
		"block-v1:OR+C1+2026+type@sequential+block@e1fa": "e1fa",
		"1234": "1234",
	}
	for in, want := range cases {
		if got := IDFromURL(in); got != want {
			t.Fatalf("IDFromURL(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestActivityID(t *testing.T) {
	if got := ActivityID("Homework 1: Linear Equations"); got != "homework1linearequations" {
		t.Fatalf("got %q", got)
	}
	if got := ActivityID("HW_2-b"); got != "hw2b" {
		t.Fatalf("got %q", got)
	}
}
