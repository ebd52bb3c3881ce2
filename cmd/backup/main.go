package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"visit-planner/pkg/database"
	"visit-planner/pkg/storage"
)

// Writes a backup of the stored document as pretty-printed JSON. For an
// encrypted store, VAULT_PASSWORD must be set in the environment.
func main() {
	// Load .env from project root
	_ = godotenv.Load(".env")
	_ = godotenv.Load("../.env")

	db := database.InitDB()
	adapter := storage.NewAdapter(db)

	doc, locked, err := adapter.Load()
	if err != nil {
		fmt.Printf("Error: could not read stored data: %v\n", err)
		os.Exit(1)
	}

	if locked {
		password := os.Getenv("VAULT_PASSWORD")
		if password == "" {
			fmt.Println("Error: data is encrypted; set VAULT_PASSWORD in .env")
			os.Exit(1)
		}
		doc, err = adapter.Unlock(password)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
	}

	if doc == nil {
		fmt.Println("Nothing stored yet; no backup written")
		os.Exit(0)
	}

	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		fmt.Printf("Error: could not serialize document: %v\n", err)
		os.Exit(1)
	}

	filename := fmt.Sprintf("backup_%s.json", time.Now().Format("2006-01-02"))
	if len(os.Args) > 1 {
		filename = os.Args[1]
	}

	if err := os.WriteFile(filename, raw, 0644); err != nil {
		fmt.Printf("Error: could not write %s: %v\n", filename, err)
		os.Exit(1)
	}

	fmt.Printf("Backup written to %s\n", filename)
}
