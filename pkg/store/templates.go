package store

import (
	"strings"

	"visit-planner/pkg/models"
)

// Message types and roles addressable by templates.
const (
	MessageConfirmation = "confirmation"
	MessageReminder7    = "reminder-7"
	MessageReminder2    = "reminder-2"
	MessageThanks       = "thanks"

	RoleSpeaker = "speaker"
	RoleHost    = "host"
)

// TemplateKey builds the composite key of a message template override.
func TemplateKey(lang, messageType, role string) string {
	return lang + "|" + messageType + "|" + role
}

// defaultTemplates are the built-in message texts. Overrides in the
// document shadow them per key; the defaults themselves are never stored
// and never deleted.
var defaultTemplates = map[string]string{
	TemplateKey("fr", MessageConfirmation, RoleSpeaker): "Bonjour {nom}, votre visite du {date} à {heure} est confirmée. Discours : {theme}.",
	TemplateKey("fr", MessageConfirmation, RoleHost):    "Bonjour {host}, vous accueillez {nom} ({congregation}) le {date}.",
	TemplateKey("fr", MessageReminder7, RoleSpeaker):    "Bonjour {nom}, petit rappel : votre visite a lieu dans une semaine, le {date}.",
	TemplateKey("fr", MessageReminder2, RoleSpeaker):    "Bonjour {nom}, votre visite a lieu après-demain, le {date} à {heure}.",
	TemplateKey("fr", MessageThanks, RoleSpeaker):       "Bonjour {nom}, merci pour votre visite et votre discours « {theme} ».",
	TemplateKey("en", MessageConfirmation, RoleSpeaker): "Hello {nom}, your visit on {date} at {heure} is confirmed. Talk: {theme}.",
	TemplateKey("en", MessageConfirmation, RoleHost):    "Hello {host}, you are hosting {nom} ({congregation}) on {date}.",
	TemplateKey("en", MessageReminder7, RoleSpeaker):    "Hello {nom}, a reminder: your visit is one week away, on {date}.",
	TemplateKey("en", MessageReminder2, RoleSpeaker):    "Hello {nom}, your visit is the day after tomorrow, {date} at {heure}.",
	TemplateKey("en", MessageThanks, RoleSpeaker):       "Hello {nom}, thank you for your visit and your talk \"{theme}\".",
}

var defaultHostRequestTemplates = map[string]string{
	"fr": "Bonjour {host}, seriez-vous disposés à accueillir {nom} ({congregation}) le {date} ?",
	"en": "Hello {host}, would you be willing to host {nom} ({congregation}) on {date}?",
}

// SetTemplate stores or replaces a template override.
func SetTemplate(doc models.Document, key, text string) (models.Document, error) {
	if strings.TrimSpace(key) == "" {
		return doc, ErrNotFound
	}
	out := doc.Clone()
	if out.CustomTemplates == nil {
		out.CustomTemplates = make(map[string]string)
	}
	out.CustomTemplates[key] = text
	return out, nil
}

// DeleteTemplate removes an override; the built-in default applies again.
func DeleteTemplate(doc models.Document, key string) (models.Document, error) {
	if _, ok := doc.CustomTemplates[key]; !ok {
		return doc, ErrNotFound
	}
	out := doc.Clone()
	delete(out.CustomTemplates, key)
	return out, nil
}

// SetHostRequestTemplate stores the host-request override for a language.
func SetHostRequestTemplate(doc models.Document, lang, text string) (models.Document, error) {
	if strings.TrimSpace(lang) == "" {
		return doc, ErrNotFound
	}
	out := doc.Clone()
	if out.CustomHostRequestTemplates == nil {
		out.CustomHostRequestTemplates = make(map[string]string)
	}
	out.CustomHostRequestTemplates[lang] = text
	return out, nil
}

// DeleteHostRequestTemplate removes a host-request override.
func DeleteHostRequestTemplate(doc models.Document, lang string) (models.Document, error) {
	if _, ok := doc.CustomHostRequestTemplates[lang]; !ok {
		return doc, ErrNotFound
	}
	out := doc.Clone()
	delete(out.CustomHostRequestTemplates, lang)
	return out, nil
}

// TemplateFor resolves the effective template text: the document override
// when set, otherwise the built-in default. The second return reports
// whether any template exists for the key.
func TemplateFor(doc models.Document, lang, messageType, role string) (string, bool) {
	key := TemplateKey(lang, messageType, role)
	if text, ok := doc.CustomTemplates[key]; ok {
		return text, true
	}
	text, ok := defaultTemplates[key]
	return text, ok
}

// HostRequestTemplateFor resolves the effective host-request template.
func HostRequestTemplateFor(doc models.Document, lang string) (string, bool) {
	if text, ok := doc.CustomHostRequestTemplates[lang]; ok {
		return text, true
	}
	text, ok := defaultHostRequestTemplates[lang]
	return text, ok
}
