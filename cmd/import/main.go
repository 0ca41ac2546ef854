// Command import loads the legacy "Onna Business" xlsx workbook into the
// database, replacing whatever items are already there.
package main

import (
	"context"
	"database/sql"
	"flag"
	"os"

	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"

	"github.com/noahjmorrison/onnaflips/internal/cache"
	"github.com/noahjmorrison/onnaflips/internal/config"
	"github.com/noahjmorrison/onnaflips/internal/importer"
	"github.com/noahjmorrison/onnaflips/internal/models"
	"github.com/noahjmorrison/onnaflips/internal/repository"
	"github.com/noahjmorrison/onnaflips/internal/service"
)

func main() {
	workbook := flag.String("workbook", "Onna Business .xlsx", "path to the xlsx workbook")
	flag.Parse()

	logger := logrus.New()
	logLevel, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	cfg, err := config.NewConfig()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	if _, err := os.Stat(*workbook); err != nil {
		logger.Fatalf("Could not find workbook %s: %v", *workbook, err)
	}

	db, err := sql.Open(cfg.DBDriver, cfg.DBConn)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	repo := repository.NewRepository(db, cfg.DBDriver)
	if err := repo.Migrate(); err != nil {
		logger.Fatalf("Failed to migrate database: %v", err)
	}

	svc, err := service.NewService(repo, cache.NewNoopCache(), logger, cfg)
	if err != nil {
		logger.Fatalf("Failed to initialize service: %v", err)
	}

	items, err := importer.ReadWorkbook(*workbook)
	if err != nil {
		logger.Fatalf("Failed to read workbook: %v", err)
	}
	logger.Infof("Parsed %d items from %s", len(items), *workbook)

	cleared, err := svc.ImportItems(context.Background(), items)
	if err != nil {
		logger.Fatalf("Import failed: %v", err)
	}
	if cleared > 0 {
		logger.Infof("Cleared %d existing items", cleared)
	}

	var sold, listed int
	var totalProfit float64
	for _, item := range items {
		switch item.Status {
		case models.StatusSold:
			sold++
			if p := item.ActualProfit(); p != nil {
				totalProfit += *p
			}
		case models.StatusListed:
			listed++
		}
	}
	logger.Infof("Imported %d items successfully (sold: %d, listed: %d, total profit: %.0f)",
		len(items), sold, listed, totalProfit)
}
