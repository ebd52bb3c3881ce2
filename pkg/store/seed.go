package store

import "visit-planner/pkg/models"

// Seed returns the first-launch document: empty collections, the default
// congregation profile and a starter slice of the public talk list.
// resetData reinstalls exactly this document.
func Seed() models.Document {
	return models.Document{
		Speakers:       []models.Speaker{},
		Hosts:          []models.Host{},
		Visits:         []models.Visit{},
		ArchivedVisits: []models.Visit{},
		PublicTalks: []models.Talk{
			{Number: models.NumericTalkNo(1), Theme: "Connaissez-vous bien la Bible ?"},
			{Number: models.NumericTalkNo(2), Theme: "Les derniers jours : qui survivra ?"},
			{Number: models.NumericTalkNo(3), Theme: "Suivez le guide fiable vers le paradis"},
			{Number: models.NumericTalkNo(4), Theme: "Quelles preuves montrent que Dieu existe ?"},
			{Number: models.NumericTalkNo(5), Theme: "Peut-on trouver le bonheur en famille ?"},
			{Number: models.CodedTalkNo("CO"), Theme: "Visite du responsable de circonscription"},
		},
		CongregationProfile: models.Profile{
			Name:        "Congrégation locale",
			DefaultTime: "14:30",
		},
	}
}
