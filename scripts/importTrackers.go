package main

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/alecthomas/kong"
	"gorm.io/gorm"

	"studytrack/config"
	"studytrack/database"
	"studytrack/logger"
	"studytrack/repository"
	"studytrack/services"
)

var CLI struct {
	File string `help:"CSV file with the columns email,title,totalUnits." type:"existingfile" default:"trackers.csv"`
}

// Bulk-creates manual trackers from a CSV with the columns email,title,totalUnits.
func main() {
	kong.Parse(&CLI,
		kong.Name("import-trackers"),
		kong.Description("Create manual trackers for existing users from a CSV file"),
		kong.UsageOnError(),
	)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	appLog, err := logger.New(cfg.AppEnv)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer appLog.Sync()

	db, err := database.ConnectDb(cfg, appLog)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	file, err := os.Open(CLI.File)
	if err != nil {
		log.Fatalf("Failed to open CSV file: %v", err)
	}
	defer file.Close()

	users := repository.NewUserRepository(db.Db)
	sources := services.NewSourceService(
		repository.NewSourceRepository(db.Db),
		repository.NewPlanRepository(db.Db),
		nil, time.Now, appLog,
	)

	result, err := importTrackers(context.Background(), file, users, sources, appLog)
	if err != nil {
		log.Fatalf("import failed: %v", err)
	}

	appLog.Info("=== Import Complete ===",
		"inserted", result.Inserted,
		"skipped", result.Skipped,
		"failed", result.Failed,
	)
}

type importResult struct {
	Inserted int
	Skipped  int
	Failed   int
}

// importTrackers creates one manual tracker per row. Rows for unknown users or with a title
// the user already has are skipped; rejected totals count as failed.
func importTrackers(ctx context.Context, r io.Reader, users *repository.UserRepository, sources *services.SourceService, log *logger.Logger) (importResult, error) {
	var result importResult

	records, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return result, fmt.Errorf("read csv: %w", err)
	}
	if len(records) < 2 {
		return result, errors.New("CSV file is empty or has only headers")
	}

	// Map header indices
	headerIndex := make(map[string]int)
	for i, h := range records[0] {
		headerIndex[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, col := range []string{"email", "title", "totalunits"} {
		if _, ok := headerIndex[col]; !ok {
			return result, fmt.Errorf("missing column %q", col)
		}
	}

	existing := map[uint]map[string]bool{}
	for i, row := range records[1:] {
		email := strings.ToLower(getField(row, headerIndex, "email"))
		title := getField(row, headerIndex, "title")
		total := parseInt(getField(row, headerIndex, "totalunits"))

		user, err := users.FindByEmail(ctx, email)
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return result, err
			}
			log.Warn("unknown user, row skipped", "row", i+2, "email", email)
			result.Skipped++
			continue
		}

		titles, ok := existing[user.ID]
		if !ok {
			titles = map[string]bool{}
			list, err := sources.List(ctx, user.ID)
			if err != nil {
				return result, err
			}
			for _, s := range list {
				titles[strings.ToLower(s.Title)] = true
			}
			existing[user.ID] = titles
		}
		if titles[strings.ToLower(title)] {
			result.Skipped++
			continue
		}

		if _, err := sources.CreateManual(ctx, user.ID, title, total); err != nil {
			log.Warn("row rejected", "row", i+2, "title", title, "error", err)
			result.Failed++
			continue
		}
		titles[strings.ToLower(title)] = true
		result.Inserted++
	}

	return result, nil
}

// getField safely gets a field from the row by header name
func getField(row []string, headerIndex map[string]int, field string) string {
	if idx, ok := headerIndex[field]; ok && idx < len(row) {
		return strings.TrimSpace(row[idx])
	}
	return ""
}

// parseInt converts string to int, 0 when unparsable
func parseInt(s string) int {
	val, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return val
}
