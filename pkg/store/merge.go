package store

import (
	"encoding/json"
	"errors"
	"strings"

	"visit-planner/pkg/models"
)

// ErrMalformedImport is returned when an import payload is structurally
// invalid. No merge is attempted in that case.
var ErrMalformedImport = errors.New("import file is missing speakers, visits or hosts")

// importEnvelope distinguishes absent arrays from empty ones.
type importEnvelope struct {
	Speakers *json.RawMessage `json:"speakers"`
	Visits   *json.RawMessage `json:"visits"`
	Hosts    *json.RawMessage `json:"hosts"`
}

// ParseImport validates and decodes a foreign document. The payload must
// carry speakers, visits and hosts arrays; everything else is optional and
// falls back to the current document during the merge.
func ParseImport(data []byte) (models.Document, error) {
	var envelope importEnvelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		return models.Document{}, ErrMalformedImport
	}
	if envelope.Speakers == nil || envelope.Visits == nil || envelope.Hosts == nil {
		return models.Document{}, ErrMalformedImport
	}

	var doc models.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return models.Document{}, ErrMalformedImport
	}
	return doc, nil
}

type mergedVisit struct {
	visit    models.Visit
	archived bool
}

// MergeDocuments reconciles a foreign document into the current one with
// last-writer-wins overlays by natural key: speaker and host name
// (case-insensitive, trimmed), visit date, talk number. The result is one
// fully-formed document that replaces the current one wholesale.
//
// Keying visits by calendar date alone conflates unrelated visits that
// happen to share a date. That matches the historical merge behavior this
// tool's backups rely on; see DESIGN.md before changing it.
func MergeDocuments(current, foreign models.Document) models.Document {
	out := current.Clone()
	fc := foreign.Clone()

	// 1. Speakers and hosts unified by name, foreign wins on collision.
	speakerIdx := make(map[string]int, len(out.Speakers))
	for i, s := range out.Speakers {
		speakerIdx[nameKey(s.Nom)] = i
	}
	for _, s := range fc.Speakers {
		if i, ok := speakerIdx[nameKey(s.Nom)]; ok {
			out.Speakers[i] = s
		} else {
			speakerIdx[nameKey(s.Nom)] = len(out.Speakers)
			out.Speakers = append(out.Speakers, s)
		}
	}

	hostIdx := make(map[string]int, len(out.Hosts))
	for i, h := range out.Hosts {
		hostIdx[nameKey(h.Nom)] = i
	}
	for _, h := range fc.Hosts {
		if i, ok := hostIdx[nameKey(h.Nom)]; ok {
			out.Hosts[i] = h
		} else {
			hostIdx[nameKey(h.Nom)] = len(out.Hosts)
			out.Hosts = append(out.Hosts, h)
		}
	}

	// 2. Name lookup over the unified speaker list.
	speakerByName := make(map[string]models.Speaker, len(out.Speakers))
	for _, s := range out.Speakers {
		speakerByName[nameKey(s.Nom)] = s
	}

	// 3. Visits from both sides, active and archived, keyed by date only.
	//    Later writes at a date overwrite earlier ones; the first write
	//    fixes the position.
	order := make([]string, 0, len(out.Visits)+len(out.ArchivedVisits))
	byDate := make(map[string]mergedVisit)
	add := func(v models.Visit, archived bool) {
		if _, seen := byDate[v.VisitDate]; !seen {
			order = append(order, v.VisitDate)
		}
		byDate[v.VisitDate] = mergedVisit{visit: v, archived: archived}
	}
	for _, v := range out.Visits {
		add(v, false)
	}
	for _, v := range out.ArchivedVisits {
		add(v, true)
	}
	for _, v := range fc.Visits {
		add(v, false)
	}
	for _, v := range fc.ArchivedVisits {
		add(v, true)
	}

	out.Visits = make([]models.Visit, 0, len(order))
	out.ArchivedVisits = make([]models.Visit, 0)
	for _, date := range order {
		m := byDate[date]
		if s, ok := speakerByName[nameKey(m.visit.Nom)]; ok {
			m.visit.ID = s.ID
			m.visit.Nom = s.Nom
			m.visit.Congregation = s.Congregation
			m.visit.Telephone = s.Telephone
			m.visit.Photo = s.Photo
		}
		if m.archived {
			out.ArchivedVisits = append(out.ArchivedVisits, m.visit)
		} else {
			out.Visits = append(out.Visits, m.visit)
		}
	}

	// 4. Talks by number, same overlay strategy.
	talkIdx := make(map[string]int, len(out.PublicTalks))
	for i, t := range out.PublicTalks {
		talkIdx[t.Number.String()] = i
	}
	for _, t := range fc.PublicTalks {
		if i, ok := talkIdx[t.Number.String()]; ok {
			out.PublicTalks[i] = t
		} else {
			talkIdx[t.Number.String()] = len(out.PublicTalks)
			out.PublicTalks = append(out.PublicTalks, t)
		}
	}

	// 5. Profile and template overrides replace wholesale when present.
	if fc.CongregationProfile != (models.Profile{}) {
		out.CongregationProfile = fc.CongregationProfile
	}
	if fc.CustomTemplates != nil {
		out.CustomTemplates = fc.CustomTemplates
	}
	if fc.CustomHostRequestTemplates != nil {
		out.CustomHostRequestTemplates = fc.CustomHostRequestTemplates
	}

	return out
}

func nameKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
