package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	calendarerrors "vistoria/internal/calendar/errors"
	"vistoria/pkg/config"
	mongodb "vistoria/pkg/db/mongo"
	"vistoria/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	TransitionCollectionName = "transicoesPendentes"
)

// TransitionRepository is the journal of paired ledger and booking writes.
type TransitionRepository interface {
	Create(ctx context.Context, transition *model.Transition) error
	FindByID(ctx context.Context, id string) (*model.Transition, error)
	FindUnresolved(ctx context.Context) ([]*model.Transition, error)
	MarkStatus(ctx context.Context, id string, status model.TransitionStatus, bookingID string, cause string) error
}

type mongoTransitionRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoTransitionRepository(cfg *config.Config) TransitionRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoTransitionRepository{
		cfg:        cfg,
		collection: db.Collection(TransitionCollectionName),
	}
}

func (r *mongoTransitionRepository) Create(ctx context.Context, transition *model.Transition) error {
	ctx, cancel := mongodb.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	if _, err := r.collection.InsertOne(ctx, transition); err != nil {
		return fmt.Errorf("failed to create transition: %w", err)
	}
	return nil
}

func (r *mongoTransitionRepository) FindByID(ctx context.Context, id string) (*model.Transition, error) {
	ctx, cancel := mongodb.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var transition model.Transition
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&transition)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, calendarerrors.ErrTransitionNotFound
		}
		return nil, fmt.Errorf("failed to find transition: %w", err)
	}
	return &transition, nil
}

func (r *mongoTransitionRepository) FindUnresolved(ctx context.Context) ([]*model.Transition, error) {
	ctx, cancel := mongodb.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{"status": bson.M{"$in": bson.A{model.TransitionPending, model.TransitionStranded}}}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find transitions: %w", err)
	}
	defer cursor.Close(ctx)

	var transitions []*model.Transition
	if err = cursor.All(ctx, &transitions); err != nil {
		return nil, fmt.Errorf("failed to decode transitions: %w", err)
	}
	return transitions, nil
}

// MarkStatus moves an entry out of pending. bookingID is recorded when the
// booking id only became known during the transition; cause is the failure text.
func (r *mongoTransitionRepository) MarkStatus(ctx context.Context, id string, status model.TransitionStatus, bookingID string, cause string) error {
	ctx, cancel := mongodb.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	set := bson.M{"status": status}
	if status == model.TransitionResolved || status == model.TransitionAborted {
		set["resolvedAt"] = time.Now().UTC().Truncate(time.Millisecond)
	}
	if bookingID != "" {
		set["bookingId"] = bookingID
	}
	if cause != "" {
		set["error"] = cause
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("failed to update transition: %w", err)
	}
	if result.MatchedCount == 0 {
		return calendarerrors.ErrTransitionNotFound
	}
	return nil
}
