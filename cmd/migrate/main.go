package main

import (
	"context"
	"flag"
	"time"

	equipmentrepo "vistoria/internal/equipment/repository"
	mongoMigration "vistoria/internal/migrations/mongo"
	"vistoria/pkg/config"
)

const JobName = "mongo-migration"

func main() {
	dryRun := flag.Bool("dry-run", false, "report legacy equipment documents without rewriting them")
	skipRewrite := flag.Bool("skip-rewrite", false, "only install validators and indexes")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	cfg := config.Load(JobName)
	cfg.SetMongo()
	defer cfg.GracefulShutdown()
	cfg.Log.Info("Starting Mongo migration job", "dry_run", *dryRun, "skip_rewrite", *skipRewrite)

	// Legacy documents are rewritten before the validators go in.
	if !*skipRewrite {
		repo := equipmentrepo.NewMongoEquipmentRepository(cfg)
		report, err := mongoMigration.RewriteLegacy(ctx, repo, *dryRun, cfg.Log)
		if err != nil {
			cfg.Log.Fatal("Legacy rewrite failed", "error", err)
		}
		if report.Failed > 0 {
			cfg.Log.Fatal("Legacy rewrite left documents behind", "failed", report.Failed)
		}
	}

	if *dryRun {
		cfg.Log.Info("Dry run finished, validators and indexes not installed")
		return
	}

	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	if err := mongoMigration.RunMigration(ctx, db, cfg.Log); err != nil {
		cfg.Log.Fatal("Migration failed", "error", err)
	}
	cfg.Log.Info("Migration completed successfully")
}
