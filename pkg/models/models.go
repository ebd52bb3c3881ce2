package models

// Host sentinel values used in Visit.Host when no real host applies.
const (
	HostUnassigned = "unassigned"
	HostNotNeeded  = "not_needed"
)

// Visit status values
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
	StatusCompleted = "completed"
)

// Visit location types
const (
	LocationPhysical     = "physical"
	LocationRemoteVideo  = "remote-video"
	LocationRemoteStream = "remote-stream"
)

// TalkHistoryEntry records one past presentation by a speaker
type TalkHistoryEntry struct {
	Date         string  `json:"date"`
	TalkNoOrType *TalkNo `json:"talkNoOrType,omitempty"`
	Theme        string  `json:"theme,omitempty"`
}

// Speaker represents a visiting public speaker
type Speaker struct {
	ID            string             `json:"id"`
	Nom           string             `json:"nom"`
	Congregation  string             `json:"congregation"`
	Telephone     string             `json:"telephone,omitempty"`
	Notes         string             `json:"notes,omitempty"`
	Photo         string             `json:"photo,omitempty"`
	Gender        string             `json:"gender,omitempty"`
	MaritalStatus string             `json:"maritalStatus,omitempty"`
	HasVehicle    bool               `json:"hasVehicle,omitempty"`
	Tags          []string           `json:"tags,omitempty"`
	TalkHistory   []TalkHistoryEntry `json:"talkHistory,omitempty"`
}

// Unavailability is a date range during which a host cannot receive
type Unavailability struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// Host represents a person or household offering hospitality, identified by name
type Host struct {
	Nom              string           `json:"nom"`
	Telephone        string           `json:"telephone,omitempty"`
	Gender           string           `json:"gender,omitempty"` // male, female or couple
	Address          string           `json:"address,omitempty"`
	Notes            string           `json:"notes,omitempty"`
	Tags             []string         `json:"tags,omitempty"`
	Unavailabilities []Unavailability `json:"unavailabilities,omitempty"`
}

// Attachment is an inline-encoded file attached to a visit
type Attachment struct {
	Name    string `json:"name"`
	Type    string `json:"type,omitempty"`
	Size    int    `json:"size"`
	DataURL string `json:"dataUrl"`
}

// ChecklistItem is one entry of a visit preparation checklist
type ChecklistItem struct {
	Text string `json:"text"`
	Done bool   `json:"done"`
}

// Visit combines a denormalized speaker snapshot with scheduling fields.
// The snapshot (ID, Nom, Congregation, Telephone, Photo) is taken at
// assignment time and cascaded on speaker edits, so archived visits keep
// historical display data even if the speaker record later changes.
type Visit struct {
	ID           string `json:"id"`
	Nom          string `json:"nom"`
	Congregation string `json:"congregation,omitempty"`
	Telephone    string `json:"telephone,omitempty"`
	Photo        string `json:"photo,omitempty"`

	VisitID       string `json:"visitId"`
	VisitDate     string `json:"visitDate"` // YYYY-MM-DD
	VisitTime     string `json:"visitTime,omitempty"`
	ArrivalDate   string `json:"arrivalDate,omitempty"`
	DepartureDate string `json:"departureDate,omitempty"`

	Host          string `json:"host"`
	Accommodation string `json:"accommodation,omitempty"`
	Meals         string `json:"meals,omitempty"`
	Status        string `json:"status"`
	LocationType  string `json:"locationType,omitempty"`

	TalkNoOrType *TalkNo `json:"talkNoOrType,omitempty"`
	TalkTheme    string  `json:"talkTheme,omitempty"`

	Attachments         []Attachment      `json:"attachments,omitempty"`
	Checklist           []ChecklistItem   `json:"checklist,omitempty"`
	CommunicationStatus map[string]string `json:"communicationStatus,omitempty"`
}

// Talk is one entry of the public talk list
type Talk struct {
	Number *TalkNo `json:"number"`
	Theme  string  `json:"theme"`
}

// Profile holds the congregation configuration record
type Profile struct {
	Name            string `json:"name"`
	DefaultTime     string `json:"defaultTime,omitempty"`
	OverseerName    string `json:"overseerName,omitempty"`
	OverseerPhone   string `json:"overseerPhone,omitempty"`
	OverseerAddress string `json:"overseerAddress,omitempty"`
}

// Document is the single root object holding all persisted application state.
// It is always replaced wholesale; mutations clone it first.
type Document struct {
	Speakers                   []Speaker         `json:"speakers"`
	Hosts                      []Host            `json:"hosts"`
	Visits                     []Visit           `json:"visits"`
	ArchivedVisits             []Visit           `json:"archivedVisits"`
	PublicTalks                []Talk            `json:"publicTalks"`
	CustomTemplates            map[string]string `json:"customTemplates,omitempty"`
	CustomHostRequestTemplates map[string]string `json:"customHostRequestTemplates,omitempty"`
	CongregationProfile        Profile           `json:"congregationProfile"`
}

// Clone returns a deep copy of the document. Mutation operations work on a
// clone so that readers holding the previous snapshot are never affected.
func (d Document) Clone() Document {
	out := d
	out.Speakers = make([]Speaker, len(d.Speakers))
	for i, s := range d.Speakers {
		out.Speakers[i] = s.clone()
	}
	out.Hosts = make([]Host, len(d.Hosts))
	for i, h := range d.Hosts {
		out.Hosts[i] = h.clone()
	}
	out.Visits = cloneVisits(d.Visits)
	out.ArchivedVisits = cloneVisits(d.ArchivedVisits)
	out.PublicTalks = make([]Talk, len(d.PublicTalks))
	copy(out.PublicTalks, d.PublicTalks)
	out.CustomTemplates = cloneStringMap(d.CustomTemplates)
	out.CustomHostRequestTemplates = cloneStringMap(d.CustomHostRequestTemplates)
	return out
}

func (s Speaker) clone() Speaker {
	out := s
	out.Tags = append([]string(nil), s.Tags...)
	out.TalkHistory = append([]TalkHistoryEntry(nil), s.TalkHistory...)
	return out
}

func (h Host) clone() Host {
	out := h
	out.Tags = append([]string(nil), h.Tags...)
	out.Unavailabilities = append([]Unavailability(nil), h.Unavailabilities...)
	return out
}

func (v Visit) clone() Visit {
	out := v
	out.Attachments = append([]Attachment(nil), v.Attachments...)
	out.Checklist = append([]ChecklistItem(nil), v.Checklist...)
	out.CommunicationStatus = cloneStringMap(v.CommunicationStatus)
	return out
}

func cloneVisits(visits []Visit) []Visit {
	out := make([]Visit, len(visits))
	for i, v := range visits {
		out[i] = v.clone()
	}
	return out
}

func cloneStringMap(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
