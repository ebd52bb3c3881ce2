package store

import (
	"sort"
	"strings"
	"time"

	"visit-planner/pkg/models"
)

const dateLayout = "2006-01-02"

// pastWindowDays bounds how far back PastUnarchivedVisits looks.
const pastWindowDays = 90

func parseDay(s string) (time.Time, bool) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// UpcomingVisits returns active visits dated today or later, ascending.
// Computed fresh on every call; never cached in the document.
func UpcomingVisits(doc models.Document, now time.Time) []models.Visit {
	today := truncateDay(now)
	var out []models.Visit
	for _, v := range doc.Visits {
		d, ok := parseDay(v.VisitDate)
		if !ok {
			continue
		}
		if !d.Before(today) {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].VisitDate < out[j].VisitDate })
	return out
}

// PastUnarchivedVisits returns active visits dated within the trailing
// window, strictly before today and not yet completed or cancelled,
// descending. These are candidates for archiving.
func PastUnarchivedVisits(doc models.Document, now time.Time) []models.Visit {
	today := truncateDay(now)
	floor := today.AddDate(0, 0, -pastWindowDays)
	var out []models.Visit
	for _, v := range doc.Visits {
		if v.Status == models.StatusCompleted || v.Status == models.StatusCancelled {
			continue
		}
		d, ok := parseDay(v.VisitDate)
		if !ok {
			continue
		}
		if d.Before(today) && !d.Before(floor) {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].VisitDate > out[j].VisitDate })
	return out
}

// VisitsOnDate finds active visits sharing the exact date, excluding the
// visit being edited. Advisory conflict detection; never blocks a save.
func VisitsOnDate(doc models.Document, date, excludeVisitID string) []models.Visit {
	var out []models.Visit
	for _, v := range doc.Visits {
		if v.VisitDate == date && v.VisitID != excludeVisitID {
			out = append(out, v)
		}
	}
	return out
}

// HostAvailableOn reports whether the host can receive on the given date.
// Unavailability ranges are inclusive of both endpoints, date-only.
func HostAvailableOn(h models.Host, date string) bool {
	d, ok := parseDay(date)
	if !ok {
		return true
	}
	for _, u := range h.Unavailabilities {
		start, okStart := parseDay(u.Start)
		end, okEnd := parseDay(u.End)
		if !okStart || !okEnd {
			continue
		}
		if !d.Before(start) && !d.After(end) {
			return false
		}
	}
	return true
}

// DuplicateSpeakerGroups returns groups of speakers sharing a trimmed,
// case-insensitive name, feeding the merge workflow. Groups of one are
// omitted.
func DuplicateSpeakerGroups(doc models.Document) [][]models.Speaker {
	byName := make(map[string][]models.Speaker)
	var order []string
	for _, s := range doc.Speakers {
		key := strings.ToLower(strings.TrimSpace(s.Nom))
		if key == "" {
			continue
		}
		if _, seen := byName[key]; !seen {
			order = append(order, key)
		}
		byName[key] = append(byName[key], s)
	}
	var out [][]models.Speaker
	for _, key := range order {
		if len(byName[key]) > 1 {
			out = append(out, byName[key])
		}
	}
	return out
}

// DuplicateHostGroups is the host counterpart of DuplicateSpeakerGroups.
func DuplicateHostGroups(doc models.Document) [][]models.Host {
	byName := make(map[string][]models.Host)
	var order []string
	for _, h := range doc.Hosts {
		key := strings.ToLower(strings.TrimSpace(h.Nom))
		if key == "" {
			continue
		}
		if _, seen := byName[key]; !seen {
			order = append(order, key)
		}
		byName[key] = append(byName[key], h)
	}
	var out [][]models.Host
	for _, key := range order {
		if len(byName[key]) > 1 {
			out = append(out, byName[key])
		}
	}
	return out
}
