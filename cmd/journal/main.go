package main

import (
	"clinic-desk/repositories"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/mama165/sdk-go/database"
	"github.com/olekukonko/tablewriter"
)

// journal prints the visits recorded by the desk, oldest discharge first.
func main() {
	dbPath := flag.String("db", database.DefaultPath, "Path to badger DB")
	department := flag.String("department", "CT", "Department to list")
	limit := flag.Int("limit", 0, "Maximum number of visits, 0 for all")
	flag.Parse()

	db, err := openDB(*dbPath)
	if err != nil {
		log.Fatal("Error while opening Badger: ", err)
	}
	defer db.Close()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	visits, err := repositories.NewVisitRepository(db, logger).GetVisits(*department, *limit)
	if err != nil {
		log.Fatal(err)
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Patient", "Room", "Admitted", "Discharged", "Treatment"})
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")

	for _, visit := range visits {
		table.Append([]string{
			visit.Patient.Name,
			visit.Room,
			visit.AdmittedAt.Local().Format("15:04:05"),
			visit.DischargedAt.Local().Format("15:04:05"),
			visit.Duration().String(),
		})
	}
	table.Render()

	latest, ok, err := repositories.NewSnapshotRepository(db, logger).Latest(*department)
	if err != nil {
		log.Fatal(err)
	}
	if ok {
		fmt.Printf("\nLast screen at %s: %d/%d in treatment, %d waiting\n",
			latest.At.Local().Format("15:04:05"), latest.Occupancy(), latest.Capacity(), len(latest.Waiting))
	}
}

func openDB(path string) (*badger.DB, error) {
	opts := badger.DefaultOptions(path).
		WithReadOnly(true).
		WithLogger(nil).
		WithBypassLockGuard(true)

	db, err := badger.Open(opts)
	if err != nil {
		if strings.Contains(err.Error(), "Log truncate required") {
			return nil, fmt.Errorf("journal was not closed cleanly, open it once with the desk: %w", err)
		}
		return nil, err
	}
	return db, nil
}
