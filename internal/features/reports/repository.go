package reports

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/xyz-asif/mangrovewatch/internal/pkg/pagination"
	apperrors "github.com/xyz-asif/mangrovewatch/pkg/errors"
)

// Repository stores reports in the reports collection
type Repository struct {
	collection *mongo.Collection
}

// NewRepository initializes the repository and creates necessary indexes
func NewRepository(db *mongo.Database) *Repository {
	collection := db.Collection("reports")

	_, _ = collection.Indexes().CreateMany(context.Background(), []mongo.IndexModel{
		{Keys: bson.D{{Key: "authorId", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "submittedAt", Value: -1}}},
	})

	return &Repository{collection: collection}
}

func (r *Repository) Create(ctx context.Context, report *Report) error {
	if _, err := r.collection.InsertOne(ctx, report); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("report %s: %w", report.ID, apperrors.ErrDuplicate)
		}
		return err
	}
	return nil
}

func (r *Repository) Get(ctx context.Context, id string) (*Report, error) {
	var report Report
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&report)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("report %s: %w", id, apperrors.ErrNotFound)
		}
		return nil, err
	}
	return &report, nil
}

// List returns the newest reports first.
func (r *Repository) List(ctx context.Context, filter ListFilter) ([]Report, int64, error) {
	query := bson.M{}
	if filter.Status != "" {
		query["status"] = filter.Status
	}
	if filter.Severity != "" {
		query["severity"] = filter.Severity
	}
	if filter.AuthorID != "" {
		query["authorId"] = filter.AuthorID
	}

	total, err := r.collection.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, err
	}

	page := pagination.New(filter.Page, filter.Limit, total)
	opts := options.Find().
		SetSort(bson.D{{Key: "submittedAt", Value: -1}, {Key: "_id", Value: 1}}).
		SetSkip(int64(page.Offset)).
		SetLimit(int64(page.Limit))

	reports, err := r.find(ctx, query, opts)
	if err != nil {
		return nil, 0, err
	}
	return reports, total, nil
}

func (r *Repository) All(ctx context.Context) ([]Report, error) {
	return r.find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "submittedAt", Value: 1}}))
}

// Save is a compare-and-swap on version.
func (r *Repository) Save(ctx context.Context, report *Report, expectedVersion int64) error {
	result, err := r.collection.ReplaceOne(ctx, bson.M{"_id": report.ID, "version": expectedVersion}, report)
	if err != nil {
		return err
	}
	if result.MatchedCount == 1 {
		return nil
	}

	count, err := r.collection.CountDocuments(ctx, bson.M{"_id": report.ID})
	if err != nil {
		return err
	}
	if count == 0 {
		return fmt.Errorf("report %s: %w", report.ID, apperrors.ErrNotFound)
	}
	return fmt.Errorf("report %s at version %d: %w", report.ID, expectedVersion, apperrors.ErrConflict)
}

func (r *Repository) find(ctx context.Context, query bson.M, opts *options.FindOptions) ([]Report, error) {
	cursor, err := r.collection.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	reports := []Report{}
	if err := cursor.All(ctx, &reports); err != nil {
		return nil, err
	}
	return reports, nil
}
