// Package storage persists the document to the device-local key-value
// store, transparently encrypting when the user has enabled a password.
package storage

import (
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"visit-planner/pkg/database"
	"visit-planner/pkg/models"
	"visit-planner/pkg/vault"
)

// Storage keys, one app_state row each.
const (
	KeyDataIsEncrypted  = "dataIsEncrypted"
	KeyAppData          = "appData"
	KeyEncryptedAppData = "encryptedAppData"
	KeyLastSheetSync    = "lastGoogleSheetSync"
)

var (
	// ErrStorageFull is reported when a write fails for lack of space. The
	// in-memory document stays authoritative; only the persisted copy lags.
	ErrStorageFull = errors.New("device storage is full")

	// ErrLocked is returned when an operation needs the session password
	// and none is held.
	ErrLocked = errors.New("storage is locked")

	// ErrNotEncrypted is returned when disabling encryption that is off.
	ErrNotEncrypted = errors.New("encryption is not enabled")
)

// Adapter reads and writes the document through the app_state table. It
// holds the session password in memory only; nothing secret is persisted.
type Adapter struct {
	db *gorm.DB

	mu       sync.Mutex
	password string
}

// NewAdapter wraps a database handle.
func NewAdapter(db *gorm.DB) *Adapter {
	return &Adapter{db: db}
}

func (a *Adapter) get(key string) (string, bool) {
	var row database.AppState
	if err := a.db.Where("key = ?", key).First(&row).Error; err != nil {
		return "", false
	}
	return row.Value, true
}

func (a *Adapter) put(key, value string) error {
	err := a.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&database.AppState{Key: key, Value: value, UpdatedAt: time.Now()}).Error
	if isStorageFull(err) {
		return ErrStorageFull
	}
	return err
}

func (a *Adapter) remove(key string) {
	a.db.Where("key = ?", key).Delete(&database.AppState{})
}

// Encrypted reports whether the encryption flag is set.
func (a *Adapter) Encrypted() bool {
	v, ok := a.get(KeyDataIsEncrypted)
	return ok && v == "true"
}

// Unlocked reports whether a session password is held.
func (a *Adapter) Unlocked() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.password != ""
}

// Load reads the persisted document. When encryption is enabled it does not
// touch the ciphertext: it returns locked=true and waits for Unlock. A nil
// document with locked=false means first launch (nothing persisted yet).
func (a *Adapter) Load() (*models.Document, bool, error) {
	if a.Encrypted() {
		return nil, true, nil
	}
	raw, ok := a.get(KeyAppData)
	if !ok {
		return nil, false, nil
	}
	var doc models.Document
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return nil, false, err
	}
	return &doc, false, nil
}

// Unlock decrypts the stored ciphertext with the supplied password. On
// success the password is kept in memory for the session and the document
// is returned; on failure nothing changes.
func (a *Adapter) Unlock(password string) (*models.Document, error) {
	encoded, ok := a.get(KeyEncryptedAppData)
	if !ok {
		return nil, vault.ErrInvalidPassword
	}
	plaintext, err := vault.Decrypt(encoded, password)
	if err != nil {
		return nil, err
	}
	var doc models.Document
	if err := json.Unmarshal(plaintext, &doc); err != nil {
		return nil, vault.ErrInvalidPassword
	}

	a.mu.Lock()
	a.password = password
	a.mu.Unlock()
	return &doc, nil
}

// Lock drops the in-memory session password.
func (a *Adapter) Lock() {
	a.mu.Lock()
	a.password = ""
	a.mu.Unlock()
}

// Save persists a document snapshot: ciphertext when encryption is enabled,
// plaintext JSON otherwise. The stale counterpart key is always removed so
// no plaintext copy survives next to a ciphertext and vice versa.
func (a *Adapter) Save(doc models.Document) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return err
	}

	if a.Encrypted() {
		a.mu.Lock()
		password := a.password
		a.mu.Unlock()
		if password == "" {
			return ErrLocked
		}
		encoded, err := vault.Encrypt(raw, password)
		if err != nil {
			return err
		}
		if err := a.put(KeyEncryptedAppData, encoded); err != nil {
			return err
		}
		a.remove(KeyAppData)
		return nil
	}

	if err := a.put(KeyAppData, string(raw)); err != nil {
		return err
	}
	a.remove(KeyEncryptedAppData)
	return nil
}

// EnableEncryption encrypts the current document under a newly chosen
// password, sets the flag, removes the plaintext copy and keeps the
// password for the session.
func (a *Adapter) EnableEncryption(doc models.Document, password string) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	encoded, err := vault.Encrypt(raw, password)
	if err != nil {
		return err
	}
	if err := a.put(KeyEncryptedAppData, encoded); err != nil {
		return err
	}
	if err := a.put(KeyDataIsEncrypted, "true"); err != nil {
		return err
	}
	a.remove(KeyAppData)

	a.mu.Lock()
	a.password = password
	a.mu.Unlock()
	return nil
}

// DisableEncryption verifies the password by decrypting the stored
// ciphertext, then writes the plaintext back, clears the flag, removes the
// ciphertext and drops the session password.
func (a *Adapter) DisableEncryption(password string) (*models.Document, error) {
	if !a.Encrypted() {
		return nil, ErrNotEncrypted
	}
	encoded, ok := a.get(KeyEncryptedAppData)
	if !ok {
		return nil, vault.ErrInvalidPassword
	}
	plaintext, err := vault.Decrypt(encoded, password)
	if err != nil {
		return nil, err
	}
	var doc models.Document
	if err := json.Unmarshal(plaintext, &doc); err != nil {
		return nil, vault.ErrInvalidPassword
	}

	if err := a.put(KeyAppData, string(plaintext)); err != nil {
		return nil, err
	}
	a.remove(KeyDataIsEncrypted)
	a.remove(KeyEncryptedAppData)

	a.mu.Lock()
	a.password = ""
	a.mu.Unlock()
	return &doc, nil
}

// LastSheetSync returns the advisory spreadsheet sync timestamp, if any.
func (a *Adapter) LastSheetSync() (string, bool) {
	return a.get(KeyLastSheetSync)
}

// TouchSheetSync records the time of a spreadsheet sync.
func (a *Adapter) TouchSheetSync(t time.Time) {
	_ = a.put(KeyLastSheetSync, t.UTC().Format(time.RFC3339))
}

// isStorageFull detects quota-style write failures across drivers.
func isStorageFull(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "database or disk is full") ||
		strings.Contains(msg, "disk full") ||
		strings.Contains(msg, "no space left on device") ||
		strings.Contains(msg, "sqlstate 53100")
}
