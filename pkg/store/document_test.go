package store

import (
	"strings"
	"testing"

	"visit-planner/pkg/models"
)

func testDoc() models.Document {
	return models.Document{
		Speakers: []models.Speaker{
			{ID: "s1", Nom: "Alice Martin", Congregation: "Nord"},
			{ID: "s2", Nom: "Bob Dupont", Congregation: "Sud"},
		},
		Hosts: []models.Host{
			{Nom: "Jean", Telephone: "0600000001"},
			{Nom: "Claire", Telephone: "0600000002"},
		},
		Visits: []models.Visit{
			{ID: "s1", Nom: "Alice Martin", Congregation: "Nord", VisitID: "v1", VisitDate: "2025-06-01", Host: "Jean", Status: models.StatusConfirmed, TalkTheme: "X"},
			{ID: "s2", Nom: "Bob Dupont", Congregation: "Sud", VisitID: "v2", VisitDate: "2025-07-01", Host: "Claire", Status: models.StatusPending},
		},
		ArchivedVisits: []models.Visit{},
		PublicTalks: []models.Talk{
			{Number: models.NumericTalkNo(12), Theme: "Theme 12"},
		},
	}
}

func TestAddHostRejectsDuplicateCaseInsensitive(t *testing.T) {
	doc := testDoc()

	next, err := AddHost(doc, models.Host{Nom: "jean"})
	if err != ErrDuplicate {
		t.Fatalf("Expected ErrDuplicate, got %v", err)
	}

	count := 0
	for _, h := range next.Hosts {
		if strings.EqualFold(h.Nom, "jean") {
			count++
		}
	}
	if count != 1 {
		t.Errorf("Expected exactly one host named Jean, got %d", count)
	}
}

func TestUpdateHostRenameCascades(t *testing.T) {
	doc := testDoc()

	next, err := UpdateHost(doc, "Jean", models.Host{Nom: "Jean-Pierre", Telephone: "0600000001"})
	if err != nil {
		t.Fatalf("UpdateHost failed: %v", err)
	}

	for _, v := range next.Visits {
		switch v.VisitID {
		case "v1":
			if v.Host != "Jean-Pierre" {
				t.Errorf("Expected v1 host renamed to Jean-Pierre, got %q", v.Host)
			}
		case "v2":
			if v.Host != "Claire" {
				t.Errorf("Expected v2 host unchanged, got %q", v.Host)
			}
		}
	}

	// The input document must not have been touched
	if doc.Visits[0].Host != "Jean" {
		t.Errorf("UpdateHost mutated its input, host is %q", doc.Visits[0].Host)
	}
}

func TestDeleteHostResetsActiveVisits(t *testing.T) {
	doc := testDoc()
	doc.Visits = append(doc.Visits, models.Visit{
		ID: "s2", Nom: "Bob Dupont", VisitID: "v3", VisitDate: "2025-08-01",
		Host: "Jean", Status: models.StatusCancelled,
	})

	next, err := DeleteHost(doc, "Jean")
	if err != nil {
		t.Fatalf("DeleteHost failed: %v", err)
	}

	if len(next.Hosts) != 1 {
		t.Fatalf("Expected 1 remaining host, got %d", len(next.Hosts))
	}
	for _, v := range next.Visits {
		switch v.VisitID {
		case "v1":
			if v.Host != models.HostUnassigned {
				t.Errorf("Expected v1 reset to unassigned sentinel, got %q", v.Host)
			}
		case "v3":
			// Cancelled visits keep the stale host name
			if v.Host != "Jean" {
				t.Errorf("Expected cancelled v3 untouched, got %q", v.Host)
			}
		}
	}
}

func TestCompleteVisit(t *testing.T) {
	doc := testDoc()

	next, err := CompleteVisit(doc, "v1")
	if err != nil {
		t.Fatalf("CompleteVisit failed: %v", err)
	}

	for _, v := range next.Visits {
		if v.VisitID == "v1" {
			t.Error("Expected v1 removed from active visits")
		}
	}
	found := false
	for _, v := range next.ArchivedVisits {
		if v.VisitID == "v1" {
			found = true
			if v.Status != models.StatusCompleted {
				t.Errorf("Expected archived visit status completed, got %q", v.Status)
			}
		}
	}
	if !found {
		t.Fatal("Expected v1 present in archive")
	}

	var speaker models.Speaker
	for _, s := range next.Speakers {
		if s.ID == "s1" {
			speaker = s
		}
	}
	if len(speaker.TalkHistory) != 1 {
		t.Fatalf("Expected exactly 1 talk history entry, got %d", len(speaker.TalkHistory))
	}
	if speaker.TalkHistory[0].Date != "2025-06-01" || speaker.TalkHistory[0].Theme != "X" {
		t.Errorf("Unexpected history entry: %+v", speaker.TalkHistory[0])
	}
}

func TestCompleteVisitDeduplicatesHistoryByDate(t *testing.T) {
	doc := testDoc()
	doc.Speakers[0].TalkHistory = []models.TalkHistoryEntry{
		{Date: "2025-06-01", Theme: "old theme"},
		{Date: "2025-01-15", Theme: "earlier"},
	}

	next, err := CompleteVisit(doc, "v1")
	if err != nil {
		t.Fatalf("CompleteVisit failed: %v", err)
	}

	history := next.Speakers[0].TalkHistory
	if len(history) != 2 {
		t.Fatalf("Expected 2 deduplicated entries, got %d", len(history))
	}
	// Newest first, and the June entry replaced by the visit's theme
	if history[0].Date != "2025-06-01" || history[0].Theme != "X" {
		t.Errorf("Unexpected first entry: %+v", history[0])
	}
	if history[1].Date != "2025-01-15" {
		t.Errorf("Expected earlier entry kept, got %+v", history[1])
	}
}

func TestArchiveInvariant(t *testing.T) {
	doc := testDoc()
	next, err := CompleteVisit(doc, "v1")
	if err != nil {
		t.Fatalf("CompleteVisit failed: %v", err)
	}

	seen := make(map[string]int)
	for _, v := range next.Visits {
		seen[v.VisitID]++
	}
	for _, v := range next.ArchivedVisits {
		seen[v.VisitID]++
	}
	for id, n := range seen {
		if n != 1 {
			t.Errorf("Visit %s appears %d times across visits and archive", id, n)
		}
	}
	if seen["v1"] != 1 || seen["v2"] != 1 {
		t.Errorf("Expected both visits to survive exactly once, got %v", seen)
	}
}

func TestUpdateSpeakerCascadesDisplayFields(t *testing.T) {
	doc := testDoc()

	next, err := UpdateSpeaker(doc, models.Speaker{
		ID: "s1", Nom: "Alice Bernard", Congregation: "Est", Telephone: "0700000000",
	})
	if err != nil {
		t.Fatalf("UpdateSpeaker failed: %v", err)
	}

	for _, v := range next.Visits {
		if v.ID != "s1" {
			continue
		}
		if v.Nom != "Alice Bernard" || v.Congregation != "Est" || v.Telephone != "0700000000" {
			t.Errorf("Expected visit snapshot cascaded, got %+v", v)
		}
	}
}

func TestDeleteSpeakerCascadesVisits(t *testing.T) {
	doc := testDoc()

	next, err := DeleteSpeaker(doc, "s1")
	if err != nil {
		t.Fatalf("DeleteSpeaker failed: %v", err)
	}

	for _, v := range next.Visits {
		if v.ID == "s1" {
			t.Errorf("Expected visits of s1 deleted, found %s", v.VisitID)
		}
	}
	if len(next.Visits) != 1 {
		t.Errorf("Expected 1 remaining visit, got %d", len(next.Visits))
	}
}

func TestAddVisitRequiresKnownSpeaker(t *testing.T) {
	doc := testDoc()

	_, err := AddVisit(doc, models.Visit{ID: "nobody", VisitID: "vx", VisitDate: "2025-09-01"})
	if err != ErrUnknownSpeaker {
		t.Errorf("Expected ErrUnknownSpeaker, got %v", err)
	}
}

func TestAddVisitSnapshotsSpeakerAndDefaults(t *testing.T) {
	doc := testDoc()

	next, err := AddVisit(doc, models.Visit{ID: "s2", VisitID: "vx", VisitDate: "2025-09-01"})
	if err != nil {
		t.Fatalf("AddVisit failed: %v", err)
	}

	var visit models.Visit
	for _, v := range next.Visits {
		if v.VisitID == "vx" {
			visit = v
		}
	}
	if visit.Nom != "Bob Dupont" || visit.Congregation != "Sud" {
		t.Errorf("Expected speaker snapshot taken, got %+v", visit)
	}
	if visit.Status != models.StatusPending {
		t.Errorf("Expected default status pending, got %q", visit.Status)
	}
	if visit.Host != models.HostUnassigned {
		t.Errorf("Expected unassigned host sentinel, got %q", visit.Host)
	}
}

func TestAddVisitRejectsOversizedAttachment(t *testing.T) {
	doc := testDoc()

	_, err := AddVisit(doc, models.Visit{
		ID: "s1", VisitID: "vx", VisitDate: "2025-09-01",
		Attachments: []models.Attachment{{Name: "big.pdf", DataURL: strings.Repeat("a", MaxAttachmentSize+1)}},
	})
	if err != ErrAttachmentTooLarge {
		t.Errorf("Expected ErrAttachmentTooLarge, got %v", err)
	}
}

func TestDeleteTalkGuard(t *testing.T) {
	doc := testDoc()
	doc.Visits[0].TalkNoOrType = models.NumericTalkNo(12)

	if _, err := DeleteTalk(doc, models.NumericTalkNo(12)); err != ErrTalkReferenced {
		t.Fatalf("Expected ErrTalkReferenced, got %v", err)
	}

	// Archived references guard the talk too
	doc.Visits[0].TalkNoOrType = nil
	doc.ArchivedVisits = append(doc.ArchivedVisits, models.Visit{
		VisitID: "va", VisitDate: "2024-01-01", TalkNoOrType: models.NumericTalkNo(12),
	})
	if _, err := DeleteTalk(doc, models.NumericTalkNo(12)); err != ErrTalkReferenced {
		t.Fatalf("Expected ErrTalkReferenced for archived reference, got %v", err)
	}

	doc.ArchivedVisits = nil
	next, err := DeleteTalk(doc, models.NumericTalkNo(12))
	if err != nil {
		t.Fatalf("DeleteTalk failed: %v", err)
	}
	if len(next.PublicTalks) != 0 {
		t.Errorf("Expected talk deleted, %d remain", len(next.PublicTalks))
	}
}

func TestAddTalkRejectsDuplicateNumber(t *testing.T) {
	doc := testDoc()

	if _, err := AddTalk(doc, models.Talk{Number: models.NumericTalkNo(12), Theme: "again"}); err != ErrDuplicate {
		t.Errorf("Expected ErrDuplicate, got %v", err)
	}
}

func TestAddTalkKeepsSortOrder(t *testing.T) {
	doc := testDoc()

	next, err := AddTalk(doc, models.Talk{Number: models.CodedTalkNo("CO"), Theme: "circuit"})
	if err != nil {
		t.Fatalf("AddTalk failed: %v", err)
	}
	next, err = AddTalk(next, models.Talk{Number: models.NumericTalkNo(3), Theme: "three"})
	if err != nil {
		t.Fatalf("AddTalk failed: %v", err)
	}

	got := make([]string, 0, len(next.PublicTalks))
	for _, talk := range next.PublicTalks {
		got = append(got, talk.Number.String())
	}
	want := []string{"3", "12", "CO"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Expected talk order %v, got %v", want, got)
		}
	}
}

func TestMergeSpeakersRepointsVisits(t *testing.T) {
	doc := testDoc()
	doc.Speakers = append(doc.Speakers, models.Speaker{ID: "s3", Nom: "alice martin", Congregation: "Nord"})
	doc.Visits = append(doc.Visits, models.Visit{ID: "s3", Nom: "alice martin", VisitID: "v9", VisitDate: "2025-10-01"})

	next, err := MergeSpeakers(doc, "s1", []string{"s3"})
	if err != nil {
		t.Fatalf("MergeSpeakers failed: %v", err)
	}

	for _, s := range next.Speakers {
		if s.ID == "s3" {
			t.Error("Expected duplicate speaker removed")
		}
	}
	for _, v := range next.Visits {
		if v.VisitID == "v9" && (v.ID != "s1" || v.Nom != "Alice Martin") {
			t.Errorf("Expected v9 repointed to primary, got %+v", v)
		}
	}
}

func TestMergeHostsRewritesVisits(t *testing.T) {
	doc := testDoc()
	doc.Hosts = append(doc.Hosts, models.Host{Nom: "jean "})
	doc.Visits[1].Host = "jean "

	next, err := MergeHosts(doc, "Jean", []string{"jean "})
	if err != nil {
		t.Fatalf("MergeHosts failed: %v", err)
	}

	if len(next.Hosts) != 2 {
		t.Errorf("Expected 2 hosts after merge, got %d", len(next.Hosts))
	}
	for _, v := range next.Visits {
		if v.VisitID == "v2" && v.Host != "Jean" {
			t.Errorf("Expected v2 rewritten to Jean, got %q", v.Host)
		}
	}
}

func TestTemplateOverrideAndFallback(t *testing.T) {
	doc := testDoc()
	key := TemplateKey("fr", MessageConfirmation, RoleSpeaker)

	builtin, ok := TemplateFor(doc, "fr", MessageConfirmation, RoleSpeaker)
	if !ok || builtin == "" {
		t.Fatal("Expected a built-in default template")
	}

	next, err := SetTemplate(doc, key, "custom text")
	if err != nil {
		t.Fatalf("SetTemplate failed: %v", err)
	}
	if text, _ := TemplateFor(next, "fr", MessageConfirmation, RoleSpeaker); text != "custom text" {
		t.Errorf("Expected override to win, got %q", text)
	}

	next, err = DeleteTemplate(next, key)
	if err != nil {
		t.Fatalf("DeleteTemplate failed: %v", err)
	}
	if text, _ := TemplateFor(next, "fr", MessageConfirmation, RoleSpeaker); text != builtin {
		t.Errorf("Expected fallback to built-in after delete, got %q", text)
	}
}

func TestUpdateProfile(t *testing.T) {
	doc := testDoc()

	next, err := UpdateProfile(doc, models.Profile{Name: "Congrégation Nord", DefaultTime: "15:00"})
	if err != nil {
		t.Fatalf("UpdateProfile failed: %v", err)
	}
	if next.CongregationProfile.Name != "Congrégation Nord" || next.CongregationProfile.DefaultTime != "15:00" {
		t.Errorf("Unexpected profile: %+v", next.CongregationProfile)
	}

	if _, err := UpdateProfile(doc, models.Profile{Name: "  "}); err != ErrNotFound {
		t.Errorf("Expected ErrNotFound for a blank name, got %v", err)
	}
}
