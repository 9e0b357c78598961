// Command migrate-store copies a JSON record file into the database record store.
// cmd/migrate-store/main.go
package main

import (
	"context"
	"flag"
	"log"

	"web-requests/config"
	"web-requests/services"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	var (
		source string
		force  bool
	)
	flag.StringVar(&source, "from", "data.json", "JSON record file to import")
	flag.BoolVar(&force, "force", false, "replace an existing non-empty collection")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	if cfg.Store.Driver == config.StoreDriverFile {
		log.Fatal("STORE_DRIVER must be mysql, postgres or sqlite to migrate into a database")
	}

	ctx := context.Background()
	db, err := config.OpenDB(cfg)
	if err != nil {
		log.Fatal(err)
	}
	target := services.NewDBRecordStore(db, cfg.Store.Name, cfg.Store.Branch)
	if err := target.Migrate(); err != nil {
		log.Fatal("Failed to migrate record store tables:", err)
	}

	snapshot, err := services.NewFileRecordStore(source).Load(ctx)
	if err != nil {
		log.Fatal("Failed to read source records:", err)
	}

	current, err := target.Load(ctx)
	if err != nil {
		log.Fatal("Failed to read target records:", err)
	}
	if len(current.Records) > 0 && !force {
		log.Fatalf("Target %s already holds %d records, use -force to replace them", cfg.Store.Name, len(current.Records))
	}

	if _, err := target.Save(ctx, snapshot.Records, current.Version, "Import records from "+source); err != nil {
		log.Fatal("Failed to save records:", err)
	}

	revisions, err := target.Revisions(ctx, 1)
	if err != nil {
		log.Printf("Warning: failed to read revision log: %v", err)
	} else if len(revisions) > 0 {
		log.Printf("Revision %d: %s", revisions[0].RevisionID, revisions[0].Message)
	}
	log.Printf("Migrated %d records into %s", len(snapshot.Records), cfg.Store.Name)
}
