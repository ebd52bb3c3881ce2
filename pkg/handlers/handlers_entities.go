package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"visit-planner/pkg/models"
	"visit-planner/pkg/store"
)

// parseTalkNo interprets a path or query parameter as a talk identifier.
func parseTalkNo(raw string) *models.TalkNo {
	raw = strings.TrimSpace(raw)
	if n, err := strconv.Atoi(raw); err == nil {
		return models.NumericTalkNo(n)
	}
	return models.CodedTalkNo(raw)
}

// AddSpeaker creates a speaker with a server-generated id.
func (h *Handler) AddSpeaker(c *gin.Context) {
	var speaker models.Speaker
	if err := c.ShouldBindJSON(&speaker); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	speaker.ID = uuid.NewString()

	if err := h.Store.Apply(func(d models.Document) (models.Document, error) {
		return store.AddSpeaker(d, speaker)
	}); err != nil {
		fail(c, err)
		return
	}
	h.ok(c, gin.H{"speaker": speaker})
}

// UpdateSpeaker replaces a speaker and cascades its display fields into
// active visits.
func (h *Handler) UpdateSpeaker(c *gin.Context) {
	var speaker models.Speaker
	if err := c.ShouldBindJSON(&speaker); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	speaker.ID = c.Param("id")

	if err := h.Store.Apply(func(d models.Document) (models.Document, error) {
		return store.UpdateSpeaker(d, speaker)
	}); err != nil {
		fail(c, err)
		return
	}
	h.ok(c, gin.H{"speaker": speaker})
}

// DeleteSpeaker removes a speaker and all its active visits.
func (h *Handler) DeleteSpeaker(c *gin.Context) {
	id := c.Param("id")
	if err := h.Store.Apply(func(d models.Document) (models.Document, error) {
		return store.DeleteSpeaker(d, id)
	}); err != nil {
		fail(c, err)
		return
	}
	h.ok(c, gin.H{"deleted": id})
}

// MergeSpeakers folds duplicate speaker records into a primary one.
func (h *Handler) MergeSpeakers(c *gin.Context) {
	var req struct {
		PrimaryID    string   `json:"primaryId"`
		DuplicateIDs []string `json:"duplicateIds"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.Store.Apply(func(d models.Document) (models.Document, error) {
		return store.MergeSpeakers(d, req.PrimaryID, req.DuplicateIDs)
	}); err != nil {
		fail(c, err)
		return
	}
	h.ok(c, gin.H{"merged": len(req.DuplicateIDs)})
}

// SpeakerDuplicates lists groups of speakers sharing a name.
func (h *Handler) SpeakerDuplicates(c *gin.Context) {
	groups := store.DuplicateSpeakerGroups(h.Store.Document())
	h.ok(c, gin.H{"groups": groups})
}

// AddVisit schedules a visit for an existing speaker.
func (h *Handler) AddVisit(c *gin.Context) {
	var visit models.Visit
	if err := c.ShouldBindJSON(&visit); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	visit.VisitID = uuid.NewString()

	if err := h.Store.Apply(func(d models.Document) (models.Document, error) {
		return store.AddVisit(d, visit)
	}); err != nil {
		fail(c, err)
		return
	}
	h.ok(c, gin.H{"visitId": visit.VisitID})
}

// UpdateVisit replaces an active visit.
func (h *Handler) UpdateVisit(c *gin.Context) {
	var visit models.Visit
	if err := c.ShouldBindJSON(&visit); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	visit.VisitID = c.Param("visitId")

	if err := h.Store.Apply(func(d models.Document) (models.Document, error) {
		return store.UpdateVisit(d, visit)
	}); err != nil {
		fail(c, err)
		return
	}
	h.ok(c, gin.H{"visitId": visit.VisitID})
}

// DeleteVisit removes an active visit.
func (h *Handler) DeleteVisit(c *gin.Context) {
	visitID := c.Param("visitId")
	if err := h.Store.Apply(func(d models.Document) (models.Document, error) {
		return store.DeleteVisit(d, visitID)
	}); err != nil {
		fail(c, err)
		return
	}
	h.ok(c, gin.H{"deleted": visitID})
}

// CompleteVisit archives a visit and records it in the speaker's history.
func (h *Handler) CompleteVisit(c *gin.Context) {
	visitID := c.Param("visitId")
	if err := h.Store.Apply(func(d models.Document) (models.Document, error) {
		return store.CompleteVisit(d, visitID)
	}); err != nil {
		fail(c, err)
		return
	}
	h.ok(c, gin.H{"archived": visitID})
}

// ListArchive returns the archived visits.
func (h *Handler) ListArchive(c *gin.Context) {
	h.ok(c, gin.H{"archivedVisits": h.Store.Document().ArchivedVisits})
}

// DeleteArchivedVisit permanently removes a visit from the archive.
func (h *Handler) DeleteArchivedVisit(c *gin.Context) {
	visitID := c.Param("visitId")
	if err := h.Store.Apply(func(d models.Document) (models.Document, error) {
		return store.DeleteArchivedVisit(d, visitID)
	}); err != nil {
		fail(c, err)
		return
	}
	h.ok(c, gin.H{"deleted": visitID})
}

// UpcomingVisits returns active visits from today on, ascending.
func (h *Handler) UpcomingVisits(c *gin.Context) {
	visits := store.UpcomingVisits(h.Store.Document(), h.Store.Now())
	h.ok(c, gin.H{"visits": visits})
}

// PastUnarchivedVisits returns recent past visits awaiting archival.
func (h *Handler) PastUnarchivedVisits(c *gin.Context) {
	visits := store.PastUnarchivedVisits(h.Store.Document(), h.Store.Now())
	h.ok(c, gin.H{"visits": visits})
}

// DateConflicts lists other visits on a candidate date. Advisory only.
func (h *Handler) DateConflicts(c *gin.Context) {
	date := c.Query("date")
	if date == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date is required"})
		return
	}
	conflicts := store.VisitsOnDate(h.Store.Document(), date, c.Query("exclude"))
	h.ok(c, gin.H{"conflicts": conflicts})
}

// AddHost creates a host; the name is its identity and must be free.
func (h *Handler) AddHost(c *gin.Context) {
	var host models.Host
	if err := c.ShouldBindJSON(&host); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.Store.Apply(func(d models.Document) (models.Document, error) {
		return store.AddHost(d, host)
	}); err != nil {
		fail(c, err)
		return
	}
	h.ok(c, gin.H{"host": host})
}

// UpdateHost replaces a host; a rename cascades to all its visits.
func (h *Handler) UpdateHost(c *gin.Context) {
	var host models.Host
	if err := c.ShouldBindJSON(&host); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	oldName := c.Param("nom")

	if err := h.Store.Apply(func(d models.Document) (models.Document, error) {
		return store.UpdateHost(d, oldName, host)
	}); err != nil {
		fail(c, err)
		return
	}
	h.ok(c, gin.H{"host": host})
}

// DeleteHost removes a host, unassigning its active visits.
func (h *Handler) DeleteHost(c *gin.Context) {
	name := c.Param("nom")
	if err := h.Store.Apply(func(d models.Document) (models.Document, error) {
		return store.DeleteHost(d, name)
	}); err != nil {
		fail(c, err)
		return
	}
	h.ok(c, gin.H{"deleted": name})
}

// MergeHosts folds duplicate host records into a primary one.
func (h *Handler) MergeHosts(c *gin.Context) {
	var req struct {
		PrimaryName    string   `json:"primaryName"`
		DuplicateNames []string `json:"duplicateNames"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.Store.Apply(func(d models.Document) (models.Document, error) {
		return store.MergeHosts(d, req.PrimaryName, req.DuplicateNames)
	}); err != nil {
		fail(c, err)
		return
	}
	h.ok(c, gin.H{"merged": len(req.DuplicateNames)})
}

// HostDuplicates lists groups of hosts sharing a name.
func (h *Handler) HostDuplicates(c *gin.Context) {
	groups := store.DuplicateHostGroups(h.Store.Document())
	h.ok(c, gin.H{"groups": groups})
}

// HostAvailability checks a host against its unavailability ranges for a
// date. Advisory only; saves are never blocked on it.
func (h *Handler) HostAvailability(c *gin.Context) {
	name := c.Query("nom")
	date := c.Query("date")
	if name == "" || date == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "nom and date are required"})
		return
	}

	doc := h.Store.Document()
	for _, host := range doc.Hosts {
		if strings.EqualFold(strings.TrimSpace(host.Nom), strings.TrimSpace(name)) {
			h.ok(c, gin.H{"available": store.HostAvailableOn(host, date)})
			return
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"error": "host not found"})
}

// UpdateProfile replaces the congregation profile.
func (h *Handler) UpdateProfile(c *gin.Context) {
	var profile models.Profile
	if err := c.ShouldBindJSON(&profile); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.Store.Apply(func(d models.Document) (models.Document, error) {
		return store.UpdateProfile(d, profile)
	}); err != nil {
		fail(c, err)
		return
	}
	h.ok(c, gin.H{"profile": profile})
}

// AddTalk adds an entry to the public talk list.
func (h *Handler) AddTalk(c *gin.Context) {
	var talk models.Talk
	if err := c.ShouldBindJSON(&talk); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.Store.Apply(func(d models.Document) (models.Document, error) {
		return store.AddTalk(d, talk)
	}); err != nil {
		fail(c, err)
		return
	}
	h.ok(c, gin.H{"talk": talk})
}

// UpdateTalk replaces the talk identified by the path number.
func (h *Handler) UpdateTalk(c *gin.Context) {
	var talk models.Talk
	if err := c.ShouldBindJSON(&talk); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	oldNumber := parseTalkNo(c.Param("number"))

	if err := h.Store.Apply(func(d models.Document) (models.Document, error) {
		return store.UpdateTalk(d, oldNumber, talk)
	}); err != nil {
		fail(c, err)
		return
	}
	h.ok(c, gin.H{"talk": talk})
}

// DeleteTalk removes a talk unless a visit still references it.
func (h *Handler) DeleteTalk(c *gin.Context) {
	number := parseTalkNo(c.Param("number"))
	if err := h.Store.Apply(func(d models.Document) (models.Document, error) {
		return store.DeleteTalk(d, number)
	}); err != nil {
		fail(c, err)
		return
	}
	h.ok(c, gin.H{"deleted": number.String()})
}

// SetTemplate stores a message template override.
func (h *Handler) SetTemplate(c *gin.Context) {
	var req struct {
		Lang        string `json:"lang"`
		MessageType string `json:"messageType"`
		Role        string `json:"role"`
		Text        string `json:"text"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	key := store.TemplateKey(req.Lang, req.MessageType, req.Role)

	if err := h.Store.Apply(func(d models.Document) (models.Document, error) {
		return store.SetTemplate(d, key, req.Text)
	}); err != nil {
		fail(c, err)
		return
	}
	h.ok(c, gin.H{"key": key})
}

// DeleteTemplate drops an override so the built-in default applies again.
func (h *Handler) DeleteTemplate(c *gin.Context) {
	key := store.TemplateKey(c.Query("lang"), c.Query("messageType"), c.Query("role"))
	if err := h.Store.Apply(func(d models.Document) (models.Document, error) {
		return store.DeleteTemplate(d, key)
	}); err != nil {
		fail(c, err)
		return
	}
	h.ok(c, gin.H{"deleted": key})
}

// GetTemplate resolves the effective template text for a key.
func (h *Handler) GetTemplate(c *gin.Context) {
	text, found := store.TemplateFor(h.Store.Document(), c.Query("lang"), c.Query("messageType"), c.Query("role"))
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "no template for key"})
		return
	}
	h.ok(c, gin.H{"text": text})
}

// SetHostRequestTemplate stores the host-request override for a language.
func (h *Handler) SetHostRequestTemplate(c *gin.Context) {
	var req struct {
		Lang string `json:"lang"`
		Text string `json:"text"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.Store.Apply(func(d models.Document) (models.Document, error) {
		return store.SetHostRequestTemplate(d, req.Lang, req.Text)
	}); err != nil {
		fail(c, err)
		return
	}
	h.ok(c, gin.H{"lang": req.Lang})
}

// DeleteHostRequestTemplate drops a host-request override.
func (h *Handler) DeleteHostRequestTemplate(c *gin.Context) {
	lang := c.Query("lang")
	if err := h.Store.Apply(func(d models.Document) (models.Document, error) {
		return store.DeleteHostRequestTemplate(d, lang)
	}); err != nil {
		fail(c, err)
		return
	}
	h.ok(c, gin.H{"deleted": lang})
}

// GetHostRequestTemplate resolves the effective host-request template.
func (h *Handler) GetHostRequestTemplate(c *gin.Context) {
	text, found := store.HostRequestTemplateFor(h.Store.Document(), c.Query("lang"))
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "no template for language"})
		return
	}
	h.ok(c, gin.H{"text": text})
}
