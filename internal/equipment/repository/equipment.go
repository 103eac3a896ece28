package repository

import (
	"context"
	"errors"
	"fmt"

	equipmenterrors "vistoria/internal/equipment/errors"
	"vistoria/pkg/config"
	mongodb "vistoria/pkg/db/mongo"
	"vistoria/pkg/duration"
	"vistoria/pkg/logger"
	"vistoria/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "equipamentos"
)

type EquipmentRepository interface {
	Create(ctx context.Context, equipment *model.Equipment) error
	FindByID(ctx context.Context, id string) (*model.Equipment, error)
	FindAll(ctx context.Context) ([]*model.Equipment, error)
	UpdateRemaining(ctx context.Context, id string, remainingSeconds int64) error
	UpdateChecklist(ctx context.Context, id string, checklist []model.ChecklistGroup) error
}

// Normalized pairs a decoded record with the deviations found in its stored form.
type Normalized struct {
	Equipment *model.Equipment
	Anomalies []Anomaly
}

type MongoEquipmentRepository struct {
	cfg        *config.Config
	log        *logger.Logger
	collection *mongo.Collection
}

func NewMongoEquipmentRepository(cfg *config.Config) *MongoEquipmentRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &MongoEquipmentRepository{
		cfg:        cfg,
		log:        cfg.Log,
		collection: db.Collection(CollectionName),
	}
}

func (r *MongoEquipmentRepository) Create(ctx context.Context, equipment *model.Equipment) error {
	ctx, cancel := mongodb.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	result, err := r.collection.InsertOne(ctx, toDocument(equipment))
	if err != nil {
		return fmt.Errorf("failed to create equipment: %w", err)
	}

	equipment.ID = mongodb.HexID(result.InsertedID)
	return nil
}

func (r *MongoEquipmentRepository) FindByID(ctx context.Context, id string) (*model.Equipment, error) {
	ctx, cancel := mongodb.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := mongodb.ObjectID(id, equipmenterrors.ErrInvalidID)
	if err != nil {
		return nil, err
	}

	raw, err := r.collection.FindOne(ctx, bson.M{"_id": objectID}).Raw()
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, equipmenterrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find equipment: %w", err)
	}

	equipment, anomalies, err := Normalize(raw, r.cfg.Location)
	if err != nil {
		return nil, err
	}
	r.warn(equipment, anomalies)
	return equipment, nil
}

func (r *MongoEquipmentRepository) FindAll(ctx context.Context) ([]*model.Equipment, error) {
	scanned, err := r.Scan(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]*model.Equipment, 0, len(scanned))
	for _, n := range scanned {
		r.warn(n.Equipment, n.Anomalies)
		out = append(out, n.Equipment)
	}
	return out, nil
}

// Scan decodes every document and keeps the anomalies, for the migration tool.
func (r *MongoEquipmentRepository) Scan(ctx context.Context) ([]Normalized, error) {
	ctx, cancel := mongodb.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: fieldName, Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find equipment: %w", err)
	}
	defer cursor.Close(ctx)

	var out []Normalized
	for cursor.Next(ctx) {
		equipment, anomalies, err := Normalize(cursor.Current, r.cfg.Location)
		if err != nil {
			r.log.Warn("Skipping unreadable equipment document", "error", err)
			continue
		}
		out = append(out, Normalized{Equipment: equipment, Anomalies: anomalies})
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("failed to decode equipment: %w", err)
	}
	return out, nil
}

func (r *MongoEquipmentRepository) UpdateRemaining(ctx context.Context, id string, remainingSeconds int64) error {
	return r.set(ctx, id, bson.M{fieldRemaining: duration.Encode(remainingSeconds)})
}

func (r *MongoEquipmentRepository) UpdateChecklist(ctx context.Context, id string, checklist []model.ChecklistGroup) error {
	doc := toDocument(&model.Equipment{Checklist: checklist})
	return r.set(ctx, id, bson.M{fieldChecklist: doc.Checklist})
}

// Rewrite stores equipment in canonical shape, replacing whatever was there.
func (r *MongoEquipmentRepository) Rewrite(ctx context.Context, equipment *model.Equipment) error {
	ctx, cancel := mongodb.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := mongodb.ObjectID(equipment.ID, equipmenterrors.ErrInvalidID)
	if err != nil {
		return err
	}

	result, err := r.collection.ReplaceOne(ctx, bson.M{"_id": objectID}, toDocument(equipment))
	if err != nil {
		return fmt.Errorf("failed to rewrite equipment: %w", err)
	}
	if result.MatchedCount == 0 {
		return equipmenterrors.ErrNotFound
	}
	return nil
}

func (r *MongoEquipmentRepository) set(ctx context.Context, id string, fields bson.M) error {
	ctx, cancel := mongodb.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := mongodb.ObjectID(id, equipmenterrors.ErrInvalidID)
	if err != nil {
		return err
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, bson.M{"$set": fields})
	if err != nil {
		return fmt.Errorf("failed to update equipment: %w", err)
	}
	if result.MatchedCount == 0 {
		return equipmenterrors.ErrNotFound
	}
	return nil
}

func (r *MongoEquipmentRepository) warn(e *model.Equipment, anomalies []Anomaly) {
	for _, a := range anomalies {
		r.log.Warn("Equipment document normalized on read",
			"equipment_id", e.ID,
			"field", a.Field,
			"reason", a.Reason,
		)
	}
}
