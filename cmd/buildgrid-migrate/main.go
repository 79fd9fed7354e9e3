// Command buildgrid-migrate copies every persisted job Record from one
// pkg/datastore.Store backend to another, e.g. moving a deployment from
// its initial embedded bbolt store onto Postgres without losing queued or
// in-flight work. Grounded on the teacher's cmd/warren-migrate (flag-based
// CLI, dry-run support; it makes no backup of either store), but
// copying between Store backends rather than rewriting bbolt bucket
// layouts in place, since BuildGrid's datastore schema (a single
// Record-per-job keyed by name) has not changed shape the way Warren's
// task-to-container migration needed to.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/buildgrid/buildgrid-go/pkg/datastore"
)

var (
	fromKind = flag.String("from", "", "Source backend kind: bolt, sql")
	fromDSN  = flag.String("from-dsn", "", "Source data directory (bolt) or DSN (sql, driver assumed postgres unless -from-driver is set)")
	fromDrv  = flag.String("from-driver", "postgres", "Source SQL driver name, when -from=sql")

	toKind = flag.String("to", "", "Destination backend kind: bolt, sql")
	toDSN  = flag.String("to-dsn", "", "Destination data directory (bolt) or DSN (sql, driver assumed postgres unless -to-driver is set)")
	toDrv  = flag.String("to-driver", "postgres", "Destination SQL driver name, when -to=sql")

	dryRun = flag.Bool("dry-run", false, "Report what would be copied without writing to the destination")
)

func main() {
	flag.Parse()
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("BuildGrid Datastore Migration Tool")
	log.Println("===================================")

	if err := run(); err != nil {
		log.Fatalf("migration failed: %v", err)
	}
}

func run() error {
	if *fromKind == "" || *toKind == "" {
		return fmt.Errorf("both -from and -to are required")
	}

	source, err := openStore(*fromKind, *fromDSN, *fromDrv)
	if err != nil {
		return fmt.Errorf("failed to open source (%s): %w", *fromKind, err)
	}
	defer source.Close()

	ctx := context.Background()
	records, err := source.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to list source records: %w", err)
	}
	log.Printf("found %d job records in source", len(records))

	if *dryRun {
		for _, rec := range records {
			log.Printf("would copy %s (stage=%v)", rec.Name, rec.Stage)
		}
		log.Println("dry run complete, no changes made")
		return nil
	}

	dest, err := openStore(*toKind, *toDSN, *toDrv)
	if err != nil {
		return fmt.Errorf("failed to open destination (%s): %w", *toKind, err)
	}
	defer dest.Close()

	var copied int
	for _, rec := range records {
		if err := dest.PutJob(ctx, rec); err != nil {
			return fmt.Errorf("failed to copy record %s: %w", rec.Name, err)
		}
		copied++
	}
	log.Printf("copied %d of %d records successfully", copied, len(records))
	return nil
}

func openStore(kind, dsn, driver string) (datastore.Store, error) {
	switch kind {
	case "bolt":
		if dsn == "" {
			return nil, fmt.Errorf("bolt backend requires a data directory (-from-dsn/-to-dsn)")
		}
		if err := os.MkdirAll(filepath.Clean(dsn), 0o755); err != nil {
			return nil, err
		}
		return datastore.NewBoltStore(dsn)
	case "sql":
		if dsn == "" {
			return nil, fmt.Errorf("sql backend requires a DSN (-from-dsn/-to-dsn)")
		}
		return datastore.NewSQLStore(driver, dsn)
	default:
		return nil, fmt.Errorf("unknown backend kind %q, expected bolt or sql", kind)
	}
}
