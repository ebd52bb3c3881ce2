package store

import (
	"testing"
	"time"

	"visit-planner/pkg/models"
)

func viewsDoc() models.Document {
	return models.Document{
		Visits: []models.Visit{
			{VisitID: "past-old", VisitDate: "2025-01-01", Status: models.StatusConfirmed},
			{VisitID: "past-recent", VisitDate: "2025-05-20", Status: models.StatusConfirmed},
			{VisitID: "past-cancelled", VisitDate: "2025-05-25", Status: models.StatusCancelled},
			{VisitID: "today", VisitDate: "2025-06-01", Status: models.StatusPending},
			{VisitID: "future", VisitDate: "2025-07-15", Status: models.StatusPending},
			{VisitID: "bad-date", VisitDate: "soon"},
		},
	}
}

func june1() time.Time {
	return time.Date(2025, 6, 1, 10, 30, 0, 0, time.UTC)
}

func TestUpcomingVisits(t *testing.T) {
	visits := UpcomingVisits(viewsDoc(), june1())

	if len(visits) != 2 {
		t.Fatalf("Expected 2 upcoming visits, got %d", len(visits))
	}
	if visits[0].VisitID != "today" || visits[1].VisitID != "future" {
		t.Errorf("Expected ascending [today, future], got [%s, %s]", visits[0].VisitID, visits[1].VisitID)
	}
}

func TestPastUnarchivedVisits(t *testing.T) {
	visits := PastUnarchivedVisits(viewsDoc(), june1())

	// past-old is outside the 90-day window, past-cancelled is excluded
	if len(visits) != 1 {
		t.Fatalf("Expected 1 past unarchived visit, got %d", len(visits))
	}
	if visits[0].VisitID != "past-recent" {
		t.Errorf("Expected past-recent, got %s", visits[0].VisitID)
	}
}

func TestPastUnarchivedVisitsDescending(t *testing.T) {
	doc := viewsDoc()
	doc.Visits = append(doc.Visits, models.Visit{
		VisitID: "past-earlier", VisitDate: "2025-04-10", Status: models.StatusPending,
	})

	visits := PastUnarchivedVisits(doc, june1())
	if len(visits) != 2 {
		t.Fatalf("Expected 2 visits, got %d", len(visits))
	}
	if visits[0].VisitID != "past-recent" || visits[1].VisitID != "past-earlier" {
		t.Errorf("Expected descending order, got [%s, %s]", visits[0].VisitID, visits[1].VisitID)
	}
}

func TestVisitsOnDateExcludesSelf(t *testing.T) {
	doc := viewsDoc()
	doc.Visits = append(doc.Visits, models.Visit{VisitID: "clash", VisitDate: "2025-07-15"})

	conflicts := VisitsOnDate(doc, "2025-07-15", "clash")
	if len(conflicts) != 1 || conflicts[0].VisitID != "future" {
		t.Errorf("Expected only the other visit on the date, got %+v", conflicts)
	}

	if got := VisitsOnDate(doc, "2030-01-01", ""); len(got) != 0 {
		t.Errorf("Expected no conflicts on a free date, got %d", len(got))
	}
}

func TestHostAvailableOnInclusiveEndpoints(t *testing.T) {
	host := models.Host{
		Nom: "Jean",
		Unavailabilities: []models.Unavailability{
			{Start: "2025-06-10", End: "2025-06-20"},
		},
	}

	cases := []struct {
		date      string
		available bool
	}{
		{"2025-06-09", true},
		{"2025-06-10", false}, // start endpoint inclusive
		{"2025-06-15", false},
		{"2025-06-20", false}, // end endpoint inclusive
		{"2025-06-21", true},
	}
	for _, c := range cases {
		if got := HostAvailableOn(host, c.date); got != c.available {
			t.Errorf("HostAvailableOn(%s) = %v, expected %v", c.date, got, c.available)
		}
	}
}

func TestDuplicateSpeakerGroups(t *testing.T) {
	doc := models.Document{
		Speakers: []models.Speaker{
			{ID: "a", Nom: "Alice Martin"},
			{ID: "b", Nom: " alice martin "},
			{ID: "c", Nom: "Bob Dupont"},
		},
	}

	groups := DuplicateSpeakerGroups(doc)
	if len(groups) != 1 {
		t.Fatalf("Expected 1 duplicate group, got %d", len(groups))
	}
	if len(groups[0]) != 2 {
		t.Errorf("Expected group of 2, got %d", len(groups[0]))
	}
}
