package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"visit-planner/pkg/models"
	"visit-planner/pkg/session"
	"visit-planner/pkg/storage"
	"visit-planner/pkg/store"
	"visit-planner/pkg/vault"
)

// Handler contains dependencies for the route handlers
type Handler struct {
	Store    *store.Store
	Storage  *storage.Adapter
	Sessions *session.Controller

	warnMu  sync.Mutex
	warning string
}

// NewHandler wires the store's change hook into the persistence adapter.
// Writes happen after the in-memory document has already moved on; a write
// failure is remembered and surfaced as a warning, never rolled back.
func NewHandler(st *store.Store, adapter *storage.Adapter) *Handler {
	h := &Handler{
		Store:    st,
		Storage:  adapter,
		Sessions: &session.Controller{},
	}
	st.OnChange = h.persist
	return h
}

func (h *Handler) persist(doc models.Document) {
	if h.Storage.Encrypted() && !h.Storage.Unlocked() {
		return
	}
	if err := h.Storage.Save(doc); err != nil {
		log.Printf("persist failed: %v", err)
		h.warnMu.Lock()
		if errors.Is(err, storage.ErrStorageFull) {
			h.warning = "device storage is full; your last change may not survive a reload"
		} else {
			h.warning = "saving failed; your last change may not survive a reload"
		}
		h.warnMu.Unlock()
	}
}

// takeWarning returns and clears the pending persistence warning.
func (h *Handler) takeWarning() string {
	h.warnMu.Lock()
	defer h.warnMu.Unlock()
	w := h.warning
	h.warning = ""
	return w
}

// ok renders a success response, attaching any pending persistence warning.
func (h *Handler) ok(c *gin.Context, payload gin.H) {
	if payload == nil {
		payload = gin.H{}
	}
	if w := h.takeWarning(); w != "" {
		payload["warning"] = w
	}
	c.JSON(http.StatusOK, payload)
}

// fail maps store errors onto HTTP statuses.
func fail(c *gin.Context, err error) {
	status := http.StatusBadRequest
	switch {
	case errors.Is(err, store.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, store.ErrDuplicate), errors.Is(err, store.ErrTalkReferenced):
		status = http.StatusConflict
	case errors.Is(err, store.ErrAttachmentTooLarge):
		status = http.StatusRequestEntityTooLarge
	case errors.Is(err, store.ErrUnknownSpeaker):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, vault.ErrInvalidPassword):
		status = http.StatusUnauthorized
	case errors.Is(err, session.ErrBusy):
		status = http.StatusConflict
	case errors.Is(err, storage.ErrStorageFull):
		status = http.StatusInsufficientStorage
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// locked reports whether encryption is on with no session password held.
func (h *Handler) locked() bool {
	return h.Storage.Encrypted() && !h.Storage.Unlocked()
}

// SessionMiddleware requires a valid unlock token while encryption is
// enabled. Plaintext mode passes through untouched.
func (h *Handler) SessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !h.Storage.Encrypted() {
			c.Next()
			return
		}

		token := c.GetHeader("Authorization")
		if len(token) > 7 && token[:7] == "Bearer " {
			token = token[7:]
		}
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			c.Abort()
			return
		}

		if _, err := session.VerifyToken(token); err != nil || h.locked() {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid session"})
			c.Abort()
			return
		}

		c.Next()
	}
}

// GetData returns the full document plus storage settings, or 423 while
// the store is locked behind the password prompt.
func (h *Handler) GetData(c *gin.Context) {
	if h.locked() {
		c.JSON(http.StatusLocked, gin.H{"locked": true})
		return
	}

	lastSync, _ := h.Storage.LastSheetSync()
	h.ok(c, gin.H{
		"data":                h.Store.Document(),
		"dataIsEncrypted":     h.Storage.Encrypted(),
		"lastGoogleSheetSync": lastSync,
	})
}

// Unlock decrypts the stored document with the supplied password and
// issues a session token. Attempts are serialized; a wrong password leaves
// every piece of state unchanged.
func (h *Handler) Unlock(c *gin.Context) {
	var req struct {
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.Sessions.Begin(); err != nil {
		fail(c, err)
		return
	}
	defer h.Sessions.End()

	doc, err := h.Storage.Unlock(req.Password)
	if err != nil {
		fail(c, err)
		return
	}
	h.Store.Replace(*doc)

	token, err := session.CreateToken()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not create token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"access_token": token, "token_type": "bearer"})
}

// Lock drops the session password and the in-memory document.
func (h *Handler) Lock(c *gin.Context) {
	h.Storage.Lock()
	h.Store.Replace(models.Document{})
	c.JSON(http.StatusOK, gin.H{"locked": true})
}

// EnableEncryption turns encryption on under a newly chosen password.
func (h *Handler) EnableEncryption(c *gin.Context) {
	var req struct {
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if len(req.Password) < vault.MinPasswordLen {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("password must be at least %d characters", vault.MinPasswordLen)})
		return
	}
	if h.Storage.Encrypted() {
		c.JSON(http.StatusConflict, gin.H{"error": "encryption is already enabled"})
		return
	}

	if err := h.Storage.EnableEncryption(h.Store.Document(), req.Password); err != nil {
		fail(c, err)
		return
	}

	token, err := session.CreateToken()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not create token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"access_token": token, "token_type": "bearer"})
}

// DisableEncryption requires the current password, verifies it by
// decrypting, then goes back to plaintext storage.
func (h *Handler) DisableEncryption(c *gin.Context) {
	var req struct {
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if _, err := h.Storage.DisableEncryption(req.Password); err != nil {
		fail(c, err)
		return
	}
	// The in-memory document is authoritative; rewrite it now that storage
	// is plaintext, in case the last encrypted save lagged behind.
	if err := h.Storage.Save(h.Store.Document()); err != nil {
		log.Printf("plaintext rewrite failed: %v", err)
	}
	h.ok(c, gin.H{"dataIsEncrypted": false})
}

// Reset replaces the document with the bundled seed dataset.
func (h *Handler) Reset(c *gin.Context) {
	h.Store.Reset()
	h.ok(c, gin.H{"reset": true})
}

// Export streams the full document as a pretty-printed JSON backup file.
func (h *Handler) Export(c *gin.Context) {
	raw, err := json.MarshalIndent(h.Store.Document(), "", "  ")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	filename := fmt.Sprintf("backup_%s.json", h.Store.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/json", raw)
}

// touchSheetSync stamps the advisory sync marker.
func (h *Handler) touchSheetSync() {
	h.Storage.TouchSheetSync(time.Now())
}
