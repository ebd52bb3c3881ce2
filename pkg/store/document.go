// Package store holds the canonical document and its mutation operations.
// Every operation takes the current document and returns a fresh one; invalid
// input is reported through a named error and leaves the input untouched.
package store

import (
	"errors"
	"sort"
	"strings"

	"visit-planner/pkg/models"
)

// MaxAttachmentSize caps a single inline-encoded attachment (bytes of the
// data URL, i.e. after base64 expansion).
const MaxAttachmentSize = 1024 * 1024

var (
	ErrNotFound           = errors.New("entity not found")
	ErrDuplicate          = errors.New("entity already exists")
	ErrUnknownSpeaker     = errors.New("visit references unknown speaker")
	ErrTalkReferenced     = errors.New("talk is referenced by a visit")
	ErrAttachmentTooLarge = errors.New("attachment exceeds size limit")
)

func sameName(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

// AddSpeaker appends a new speaker record.
func AddSpeaker(doc models.Document, s models.Speaker) (models.Document, error) {
	if s.ID == "" || strings.TrimSpace(s.Nom) == "" {
		return doc, ErrNotFound
	}
	for _, other := range doc.Speakers {
		if other.ID == s.ID {
			return doc, ErrDuplicate
		}
	}
	out := doc.Clone()
	out.Speakers = append(out.Speakers, s)
	return out, nil
}

// UpdateSpeaker replaces the speaker with the same ID and cascades the
// display fields (name, congregation, phone, photo) into its active visits.
// Archived visits keep their historical snapshot.
func UpdateSpeaker(doc models.Document, s models.Speaker) (models.Document, error) {
	out := doc.Clone()
	found := false
	for i := range out.Speakers {
		if out.Speakers[i].ID == s.ID {
			out.Speakers[i] = s
			found = true
			break
		}
	}
	if !found {
		return doc, ErrNotFound
	}
	for i := range out.Visits {
		if out.Visits[i].ID == s.ID {
			out.Visits[i].Nom = s.Nom
			out.Visits[i].Congregation = s.Congregation
			out.Visits[i].Telephone = s.Telephone
			out.Visits[i].Photo = s.Photo
		}
	}
	return out, nil
}

// DeleteSpeaker removes the speaker and every active visit assigned to it.
func DeleteSpeaker(doc models.Document, id string) (models.Document, error) {
	out := doc.Clone()
	kept := out.Speakers[:0]
	found := false
	for _, s := range out.Speakers {
		if s.ID == id {
			found = true
			continue
		}
		kept = append(kept, s)
	}
	if !found {
		return doc, ErrNotFound
	}
	out.Speakers = kept

	visits := out.Visits[:0]
	for _, v := range out.Visits {
		if v.ID != id {
			visits = append(visits, v)
		}
	}
	out.Visits = visits
	return out, nil
}

// MergeSpeakers repoints visits and archived visits owned by any duplicate
// onto the primary speaker, folds the duplicates' talk history into the
// primary, then drops the duplicate records.
func MergeSpeakers(doc models.Document, primaryID string, duplicateIDs []string) (models.Document, error) {
	out := doc.Clone()
	var primary *models.Speaker
	for i := range out.Speakers {
		if out.Speakers[i].ID == primaryID {
			primary = &out.Speakers[i]
			break
		}
	}
	if primary == nil {
		return doc, ErrNotFound
	}

	target := *primary
	dup := make(map[string]bool, len(duplicateIDs))
	for _, id := range duplicateIDs {
		if id != primaryID {
			dup[id] = true
		}
	}

	repoint := func(visits []models.Visit) {
		for i := range visits {
			if dup[visits[i].ID] {
				visits[i].ID = target.ID
				visits[i].Nom = target.Nom
				visits[i].Congregation = target.Congregation
				visits[i].Telephone = target.Telephone
				visits[i].Photo = target.Photo
			}
		}
	}
	repoint(out.Visits)
	repoint(out.ArchivedVisits)

	kept := make([]models.Speaker, 0, len(out.Speakers))
	for _, s := range out.Speakers {
		if dup[s.ID] {
			target.TalkHistory = appendTalkHistory(target.TalkHistory, s.TalkHistory...)
			continue
		}
		kept = append(kept, s)
	}
	for i := range kept {
		if kept[i].ID == target.ID {
			kept[i] = target
			break
		}
	}
	out.Speakers = kept
	return out, nil
}

func validateAttachments(v models.Visit) error {
	for _, a := range v.Attachments {
		if len(a.DataURL) > MaxAttachmentSize {
			return ErrAttachmentTooLarge
		}
	}
	return nil
}

// AddVisit creates a new visit. The speaker referenced by v.ID must exist;
// the denormalized snapshot is taken from the speaker record at this point.
func AddVisit(doc models.Document, v models.Visit) (models.Document, error) {
	var speaker *models.Speaker
	for i := range doc.Speakers {
		if doc.Speakers[i].ID == v.ID {
			speaker = &doc.Speakers[i]
			break
		}
	}
	if speaker == nil {
		return doc, ErrUnknownSpeaker
	}
	if v.VisitID == "" || v.VisitDate == "" {
		return doc, ErrNotFound
	}
	if err := validateAttachments(v); err != nil {
		return doc, err
	}

	v.Nom = speaker.Nom
	v.Congregation = speaker.Congregation
	v.Telephone = speaker.Telephone
	v.Photo = speaker.Photo
	if v.Status == "" {
		v.Status = models.StatusPending
	}
	if v.Host == "" {
		v.Host = models.HostUnassigned
	}

	out := doc.Clone()
	out.Visits = append(out.Visits, v)
	return out, nil
}

// UpdateVisit replaces the active visit with the same visitId.
func UpdateVisit(doc models.Document, v models.Visit) (models.Document, error) {
	if err := validateAttachments(v); err != nil {
		return doc, err
	}
	out := doc.Clone()
	for i := range out.Visits {
		if out.Visits[i].VisitID == v.VisitID {
			out.Visits[i] = v
			return out, nil
		}
	}
	return doc, ErrNotFound
}

// DeleteVisit removes an active visit.
func DeleteVisit(doc models.Document, visitID string) (models.Document, error) {
	out := doc.Clone()
	kept := out.Visits[:0]
	found := false
	for _, v := range out.Visits {
		if v.VisitID == visitID {
			found = true
			continue
		}
		kept = append(kept, v)
	}
	if !found {
		return doc, ErrNotFound
	}
	out.Visits = kept
	return out, nil
}

// CompleteVisit moves an active visit to the archive and appends a talk
// history entry to the owning speaker, deduplicated by date. This is the
// only operation that touches speakers, visits and archivedVisits at once.
func CompleteVisit(doc models.Document, visitID string) (models.Document, error) {
	out := doc.Clone()
	idx := -1
	for i := range out.Visits {
		if out.Visits[i].VisitID == visitID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return doc, ErrNotFound
	}

	visit := out.Visits[idx]
	visit.Status = models.StatusCompleted
	out.Visits = append(out.Visits[:idx], out.Visits[idx+1:]...)
	out.ArchivedVisits = append(out.ArchivedVisits, visit)

	for i := range out.Speakers {
		if out.Speakers[i].ID == visit.ID {
			out.Speakers[i].TalkHistory = appendTalkHistory(out.Speakers[i].TalkHistory, models.TalkHistoryEntry{
				Date:         visit.VisitDate,
				TalkNoOrType: visit.TalkNoOrType,
				Theme:        visit.TalkTheme,
			})
			break
		}
	}
	return out, nil
}

// DeleteArchivedVisit permanently removes a visit from the archive.
func DeleteArchivedVisit(doc models.Document, visitID string) (models.Document, error) {
	out := doc.Clone()
	kept := out.ArchivedVisits[:0]
	found := false
	for _, v := range out.ArchivedVisits {
		if v.VisitID == visitID {
			found = true
			continue
		}
		kept = append(kept, v)
	}
	if !found {
		return doc, ErrNotFound
	}
	out.ArchivedVisits = kept
	return out, nil
}

// appendTalkHistory merges entries into a history, keeping one entry per
// date (new entries win) and the whole list sorted newest first.
func appendTalkHistory(history []models.TalkHistoryEntry, entries ...models.TalkHistoryEntry) []models.TalkHistoryEntry {
	byDate := make(map[string]models.TalkHistoryEntry, len(history)+len(entries))
	for _, e := range history {
		byDate[e.Date] = e
	}
	for _, e := range entries {
		if e.Date == "" {
			continue
		}
		byDate[e.Date] = e
	}
	out := make([]models.TalkHistoryEntry, 0, len(byDate))
	for _, e := range byDate {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	return out
}

// UpdateProfile replaces the congregation profile record.
func UpdateProfile(doc models.Document, p models.Profile) (models.Document, error) {
	if strings.TrimSpace(p.Name) == "" {
		return doc, ErrNotFound
	}
	out := doc.Clone()
	out.CongregationProfile = p
	return out, nil
}

// AddHost appends a host. It fails when the name already exists
// case-insensitively; the name is the host's identity key.
func AddHost(doc models.Document, h models.Host) (models.Document, error) {
	if strings.TrimSpace(h.Nom) == "" {
		return doc, ErrNotFound
	}
	for _, other := range doc.Hosts {
		if sameName(other.Nom, h.Nom) {
			return doc, ErrDuplicate
		}
	}
	out := doc.Clone()
	out.Hosts = append(out.Hosts, h)
	return out, nil
}

// UpdateHost replaces the host known as oldName. A rename cascades the new
// name to every visit and archived visit that referenced the old one.
func UpdateHost(doc models.Document, oldName string, h models.Host) (models.Document, error) {
	out := doc.Clone()
	idx := -1
	for i := range out.Hosts {
		if sameName(out.Hosts[i].Nom, oldName) {
			idx = i
			continue
		}
		if sameName(out.Hosts[i].Nom, h.Nom) {
			return doc, ErrDuplicate
		}
	}
	if idx < 0 {
		return doc, ErrNotFound
	}
	out.Hosts[idx] = h

	if oldName != h.Nom {
		for i := range out.Visits {
			if strings.EqualFold(out.Visits[i].Host, oldName) {
				out.Visits[i].Host = h.Nom
			}
		}
		for i := range out.ArchivedVisits {
			if strings.EqualFold(out.ArchivedVisits[i].Host, oldName) {
				out.ArchivedVisits[i].Host = h.Nom
			}
		}
	}
	return out, nil
}

// DeleteHost removes the host and resets the host field of active,
// non-cancelled visits that referenced it to the unassigned sentinel.
// Cancelled visits keep the stale name.
func DeleteHost(doc models.Document, name string) (models.Document, error) {
	out := doc.Clone()
	kept := out.Hosts[:0]
	found := false
	for _, h := range out.Hosts {
		if sameName(h.Nom, name) {
			found = true
			continue
		}
		kept = append(kept, h)
	}
	if !found {
		return doc, ErrNotFound
	}
	out.Hosts = kept

	for i := range out.Visits {
		if strings.EqualFold(out.Visits[i].Host, name) && out.Visits[i].Status != models.StatusCancelled {
			out.Visits[i].Host = models.HostUnassigned
		}
	}
	return out, nil
}

// MergeHosts rewrites visits referencing any duplicate name onto the
// primary host, then drops the duplicate records.
func MergeHosts(doc models.Document, primaryName string, duplicateNames []string) (models.Document, error) {
	out := doc.Clone()
	target := ""
	for i := range out.Hosts {
		if sameName(out.Hosts[i].Nom, primaryName) {
			target = out.Hosts[i].Nom
			break
		}
	}
	if target == "" {
		return doc, ErrNotFound
	}

	// Duplicate host records are case variants of the primary, so they are
	// identified by their exact stored name, never by folded comparison.
	dup := make(map[string]bool, len(duplicateNames))
	for _, d := range duplicateNames {
		if d != target {
			dup[d] = true
		}
	}
	isDup := func(name string) bool { return dup[name] }

	for i := range out.Visits {
		if isDup(out.Visits[i].Host) {
			out.Visits[i].Host = target
		}
	}
	for i := range out.ArchivedVisits {
		if isDup(out.ArchivedVisits[i].Host) {
			out.ArchivedVisits[i].Host = target
		}
	}

	kept := out.Hosts[:0]
	for _, h := range out.Hosts {
		if isDup(h.Nom) {
			continue
		}
		kept = append(kept, h)
	}
	out.Hosts = kept
	return out, nil
}

// talkReferenced reports whether any visit, active or archived, carries the
// given talk number.
func talkReferenced(doc models.Document, number *models.TalkNo) bool {
	for _, v := range doc.Visits {
		if v.TalkNoOrType.Equal(number) {
			return true
		}
	}
	for _, v := range doc.ArchivedVisits {
		if v.TalkNoOrType.Equal(number) {
			return true
		}
	}
	return false
}

// AddTalk appends a public talk, rejecting duplicate numbers.
func AddTalk(doc models.Document, t models.Talk) (models.Document, error) {
	if t.Number == nil {
		return doc, ErrNotFound
	}
	for _, other := range doc.PublicTalks {
		if other.Number.Equal(t.Number) {
			return doc, ErrDuplicate
		}
	}
	out := doc.Clone()
	out.PublicTalks = append(out.PublicTalks, t)
	sort.Slice(out.PublicTalks, func(i, j int) bool {
		return out.PublicTalks[i].Number.Less(out.PublicTalks[j].Number)
	})
	return out, nil
}

// UpdateTalk replaces the talk identified by oldNumber. A renumber to an
// already existing number is rejected.
func UpdateTalk(doc models.Document, oldNumber *models.TalkNo, t models.Talk) (models.Document, error) {
	if t.Number == nil {
		return doc, ErrNotFound
	}
	out := doc.Clone()
	idx := -1
	for i := range out.PublicTalks {
		if out.PublicTalks[i].Number.Equal(oldNumber) {
			idx = i
			continue
		}
		if out.PublicTalks[i].Number.Equal(t.Number) {
			return doc, ErrDuplicate
		}
	}
	if idx < 0 {
		return doc, ErrNotFound
	}
	out.PublicTalks[idx] = t
	sort.Slice(out.PublicTalks, func(i, j int) bool {
		return out.PublicTalks[i].Number.Less(out.PublicTalks[j].Number)
	})
	return out, nil
}

// DeleteTalk removes a talk unless some visit still references its number.
func DeleteTalk(doc models.Document, number *models.TalkNo) (models.Document, error) {
	if talkReferenced(doc, number) {
		return doc, ErrTalkReferenced
	}
	out := doc.Clone()
	kept := out.PublicTalks[:0]
	found := false
	for _, t := range out.PublicTalks {
		if t.Number.Equal(number) {
			found = true
			continue
		}
		kept = append(kept, t)
	}
	if !found {
		return doc, ErrNotFound
	}
	out.PublicTalks = kept
	return out, nil
}
