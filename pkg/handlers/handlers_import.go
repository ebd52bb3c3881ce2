package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"visit-planner/pkg/store"
)

// maxImportSize bounds an uploaded backup file.
const maxImportSize = 20 * 1024 * 1024

// Import merges an uploaded backup file into the current document. The
// file is validated before any merge runs; a malformed file leaves the
// document untouched. Imports are serialized against unlock attempts.
func (h *Handler) Import(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}
	if file.Size > maxImportSize {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "import file too large"})
		return
	}

	f, err := file.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to open import file"})
		return
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxImportSize+1))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read import file"})
		return
	}

	foreign, err := store.ParseImport(data)
	if err != nil {
		fail(c, err)
		return
	}

	if err := h.Sessions.Begin(); err != nil {
		fail(c, err)
		return
	}
	defer h.Sessions.End()

	merged := store.MergeDocuments(h.Store.Document(), foreign)
	h.Store.Replace(merged)

	h.ok(c, gin.H{
		"speakers": len(merged.Speakers),
		"hosts":    len(merged.Hosts),
		"visits":   len(merged.Visits),
	})
}

// SheetSync folds rows pulled from the public spreadsheet feed into the
// document and stamps the advisory sync marker.
func (h *Handler) SheetSync(c *gin.Context) {
	var req struct {
		Rows []store.SheetRow `json:"rows"`
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

	next, stats := store.ApplySheetRows(h.Store.Document(), req.Rows)
	h.Store.Replace(next)
	h.touchSheetSync()

	h.ok(c, gin.H{
		"added":   stats.Added,
		"updated": stats.Updated,
		"skipped": stats.Skipped,
	})
}
