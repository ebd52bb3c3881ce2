package store

import (
	"strings"

	"github.com/google/uuid"

	"visit-planner/pkg/models"
)

// SheetRow is one row pulled from the public spreadsheet feed. The network
// and parsing side lives outside the core; rows arrive pre-split.
type SheetRow struct {
	Date         string         `json:"date"`
	SpeakerName  string         `json:"speakerName"`
	Congregation string         `json:"congregation"`
	TalkNoOrType *models.TalkNo `json:"talkNoOrType,omitempty"`
	TalkTheme    string         `json:"talkTheme,omitempty"`
}

// SyncStats reports what a sheet sync did, for UI display.
type SyncStats struct {
	Added   int `json:"added"`
	Updated int `json:"updated"`
	Skipped int `json:"skipped"`
}

// ApplySheetRows folds spreadsheet rows into the document. A row either
// creates a speaker and visit (no speaker matches the name) or updates the
// existing speaker's congregation and the visit matched by speaker name and
// exact date. Rows without a parseable date or a speaker name are skipped
// and counted.
func ApplySheetRows(doc models.Document, rows []SheetRow) (models.Document, SyncStats) {
	out := doc.Clone()
	var stats SyncStats

	for _, row := range rows {
		name := strings.TrimSpace(row.SpeakerName)
		if _, ok := parseDay(row.Date); !ok || name == "" {
			stats.Skipped++
			continue
		}

		idx := -1
		for i := range out.Speakers {
			if sameName(out.Speakers[i].Nom, name) {
				idx = i
				break
			}
		}

		if idx < 0 {
			speaker := models.Speaker{
				ID:           uuid.NewString(),
				Nom:          name,
				Congregation: strings.TrimSpace(row.Congregation),
			}
			out.Speakers = append(out.Speakers, speaker)
			out.Visits = append(out.Visits, models.Visit{
				ID:           speaker.ID,
				Nom:          speaker.Nom,
				Congregation: speaker.Congregation,
				VisitID:      uuid.NewString(),
				VisitDate:    strings.TrimSpace(row.Date),
				VisitTime:    out.CongregationProfile.DefaultTime,
				Host:         models.HostUnassigned,
				Status:       models.StatusPending,
				TalkNoOrType: row.TalkNoOrType,
				TalkTheme:    row.TalkTheme,
			})
			stats.Added++
			continue
		}

		if c := strings.TrimSpace(row.Congregation); c != "" {
			out.Speakers[idx].Congregation = c
		}
		speaker := out.Speakers[idx]

		visitIdx := -1
		for i := range out.Visits {
			if out.Visits[i].ID == speaker.ID && out.Visits[i].VisitDate == strings.TrimSpace(row.Date) {
				visitIdx = i
				break
			}
		}

		if visitIdx < 0 {
			out.Visits = append(out.Visits, models.Visit{
				ID:           speaker.ID,
				Nom:          speaker.Nom,
				Congregation: speaker.Congregation,
				Telephone:    speaker.Telephone,
				Photo:        speaker.Photo,
				VisitID:      uuid.NewString(),
				VisitDate:    strings.TrimSpace(row.Date),
				VisitTime:    out.CongregationProfile.DefaultTime,
				Host:         models.HostUnassigned,
				Status:       models.StatusPending,
				TalkNoOrType: row.TalkNoOrType,
				TalkTheme:    row.TalkTheme,
			})
			stats.Added++
			continue
		}

		visit := &out.Visits[visitIdx]
		visit.Congregation = speaker.Congregation
		if row.TalkNoOrType != nil {
			visit.TalkNoOrType = row.TalkNoOrType
		}
		if row.TalkTheme != "" {
			visit.TalkTheme = row.TalkTheme
		}
		stats.Updated++
	}

	return out, stats
}
