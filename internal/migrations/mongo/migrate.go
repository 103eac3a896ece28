package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	calendarrepo "vistoria/internal/calendar/repository"
	equipmentrepo "vistoria/internal/equipment/repository"
	"vistoria/internal/migrations/mongo/validators"
	"vistoria/pkg/logger"
	"vistoria/pkg/model"
)

var (
	EquipmentIndexes = []mongo.IndexModel{
		{Keys: bson.D{{Key: "nomeEquipamento", Value: 1}}},
	}

	BookingsIndexes = []mongo.IndexModel{
		{Keys: bson.D{{Key: "start", Value: 1}}},
		{Keys: bson.D{
			{Key: "serviceId", Value: 1},
			{Key: "start", Value: 1},
		}},
	}

	TransitionsIndexes = []mongo.IndexModel{
		{Keys: bson.D{
			{Key: "status", Value: 1},
			{Key: "createdAt", Value: 1},
		}},
	}
)

type CollectionDefinition struct {
	Name      string
	Indexes   []mongo.IndexModel
	Validator bson.M
}

// Collections lists what RunMigration installs, in order.
func Collections() []CollectionDefinition {
	return []CollectionDefinition{
		{Name: equipmentrepo.CollectionName, Indexes: EquipmentIndexes, Validator: validators.EquipmentValidator},
		{Name: calendarrepo.BookingCollectionName, Indexes: BookingsIndexes, Validator: validators.BookingValidator},
		{Name: calendarrepo.TransitionCollectionName, Indexes: TransitionsIndexes, Validator: validators.TransitionValidator},
	}
}

// RunMigration installs validators and indexes. Validation is moderate so
// documents that predate the schema are only checked once they are rewritten.
func RunMigration(ctx context.Context, db *mongo.Database, log *logger.Logger) error {
	log.Info("Running Mongo migrations", "database", db.Name())

	for _, def := range Collections() {
		if err := ensureCollection(ctx, db, def.Name, def.Validator, log); err != nil {
			return fmt.Errorf("failed to ensure collection %s: %w", def.Name, err)
		}
		if err := ensureIndexes(ctx, db, def.Name, def.Indexes, log); err != nil {
			return fmt.Errorf("failed to ensure indexes for %s: %w", def.Name, err)
		}
	}

	log.Info("All migrations applied successfully")
	return nil
}

func ensureCollection(ctx context.Context, db *mongo.Database, name string, validator bson.M, log *logger.Logger) error {
	existing, err := db.ListCollectionNames(ctx, bson.D{{Key: "name", Value: name}})
	if err != nil {
		return err
	}

	if len(existing) == 0 {
		log.Info("Creating collection", "collection", name)
		opts := options.CreateCollection().
			SetValidator(validator).
			SetValidationLevel("moderate")
		if err := db.CreateCollection(ctx, name, opts); err != nil {
			return fmt.Errorf("failed creating %s: %w", name, err)
		}
		return nil
	}

	log.Info("Collection already exists, updating validator", "collection", name)
	command := bson.D{
		{Key: "collMod", Value: name},
		{Key: "validator", Value: validator},
		{Key: "validationLevel", Value: "moderate"},
	}
	if err := db.RunCommand(ctx, command).Err(); err != nil {
		log.Warn("Failed updating validator", "collection", name, "error", err)
	}
	return nil
}

func ensureIndexes(ctx context.Context, db *mongo.Database, name string, models []mongo.IndexModel, log *logger.Logger) error {
	coll := db.Collection(name)
	if _, err := coll.Indexes().CreateMany(ctx, models); err != nil {
		return err
	}
	log.Info("Ensured indexes", "collection", name, "indexes", len(models))
	return nil
}

// LegacyStore is the part of the equipment repository the rewrite needs.
type LegacyStore interface {
	Scan(ctx context.Context) ([]equipmentrepo.Normalized, error)
	Rewrite(ctx context.Context, equipment *model.Equipment) error
}

type RewriteReport struct {
	Scanned   int
	Legacy    int
	Rewritten int
	Failed    int
}

// RewriteLegacy stores every equipment document that needed normalization
// back in canonical shape. With dryRun nothing is written.
func RewriteLegacy(ctx context.Context, store LegacyStore, dryRun bool, log *logger.Logger) (RewriteReport, error) {
	scanned, err := store.Scan(ctx)
	if err != nil {
		return RewriteReport{}, fmt.Errorf("failed to scan equipment: %w", err)
	}

	report := RewriteReport{Scanned: len(scanned)}
	for _, n := range scanned {
		if len(n.Anomalies) == 0 {
			continue
		}
		report.Legacy++

		fields := make([]string, 0, len(n.Anomalies))
		for _, a := range n.Anomalies {
			fields = append(fields, a.String())
		}
		log.Info("Legacy equipment document found",
			"equipment_id", n.Equipment.ID,
			"anomalies", fields,
			"dry_run", dryRun,
		)
		if dryRun {
			continue
		}

		if err := store.Rewrite(ctx, n.Equipment); err != nil {
			report.Failed++
			log.Error("Failed to rewrite equipment", "equipment_id", n.Equipment.ID, "error", err)
			continue
		}
		report.Rewritten++
	}

	log.Info("Legacy rewrite finished",
		"scanned", report.Scanned,
		"legacy", report.Legacy,
		"rewritten", report.Rewritten,
		"failed", report.Failed,
	)
	return report, nil
}
