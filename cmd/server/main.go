package main

import (
	"log"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"visit-planner/pkg/database"
	"visit-planner/pkg/handlers"
	"visit-planner/pkg/models"
	"visit-planner/pkg/storage"
	"visit-planner/pkg/store"
)

func main() {
	// Load .env if it exists
	// Try root and parent directories for flexibility
	envPaths := []string{".env", "../.env", "../../.env"}
	for _, p := range envPaths {
		if _, err := os.Stat(p); err == nil {
			_ = godotenv.Load(p)
			break
		}
	}

	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	db := database.InitDB()
	adapter := storage.NewAdapter(db)

	doc, locked, err := adapter.Load()
	if err != nil {
		log.Fatalf("could not load document: %v", err)
	}

	var st *store.Store
	switch {
	case locked:
		log.Printf("encryption enabled, waiting for unlock")
		st = store.New(models.Document{})
	case doc != nil:
		st = store.New(*doc)
	default:
		st = store.New(store.Seed())
	}

	h := handlers.NewHandler(st, adapter)
	if doc == nil && !locked {
		// First launch: persist the seed dataset
		st.Replace(store.Seed())
	}

	r := gin.Default()

	// Routes
	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "Visit Planner API",
			"version": "1.0.0",
		})
	})

	r.POST("/api/unlock", h.Unlock)

	api := r.Group("/api")
	api.Use(h.SessionMiddleware())
	{
		api.GET("/data", h.GetData)
		api.POST("/lock", h.Lock)
		api.POST("/security/enable", h.EnableEncryption)
		api.POST("/security/disable", h.DisableEncryption)
		api.POST("/reset", h.Reset)

		api.POST("/speakers", h.AddSpeaker)
		api.PUT("/speakers/:id", h.UpdateSpeaker)
		api.DELETE("/speakers/:id", h.DeleteSpeaker)
		api.POST("/speakers/merge", h.MergeSpeakers)
		api.GET("/speakers/duplicates", h.SpeakerDuplicates)

		api.POST("/visits", h.AddVisit)
		api.GET("/visits/upcoming", h.UpcomingVisits)
		api.GET("/visits/past-unarchived", h.PastUnarchivedVisits)
		api.PUT("/visits/:visitId", h.UpdateVisit)
		api.DELETE("/visits/:visitId", h.DeleteVisit)
		api.POST("/visits/:visitId/complete", h.CompleteVisit)
		api.GET("/archive", h.ListArchive)
		api.DELETE("/archive/:visitId", h.DeleteArchivedVisit)
		api.GET("/conflicts", h.DateConflicts)

		api.POST("/hosts", h.AddHost)
		api.PUT("/hosts/:nom", h.UpdateHost)
		api.DELETE("/hosts/:nom", h.DeleteHost)
		api.POST("/hosts/merge", h.MergeHosts)
		api.GET("/hosts/duplicates", h.HostDuplicates)
		api.GET("/hosts/availability", h.HostAvailability)

		api.PUT("/profile", h.UpdateProfile)

		api.POST("/talks", h.AddTalk)
		api.PUT("/talks/:number", h.UpdateTalk)
		api.DELETE("/talks/:number", h.DeleteTalk)

		api.GET("/templates", h.GetTemplate)
		api.PUT("/templates", h.SetTemplate)
		api.DELETE("/templates", h.DeleteTemplate)
		api.GET("/templates/host-request", h.GetHostRequestTemplate)
		api.PUT("/templates/host-request", h.SetHostRequestTemplate)
		api.DELETE("/templates/host-request", h.DeleteHostRequestTemplate)

		api.POST("/import", h.Import)
		api.GET("/export", h.Export)
		api.POST("/sync/sheet", h.SheetSync)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8000"
	}

	log.Printf("Server starting on port %s", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("could not run server: %v", err)
	}
}
