package services

import (
	"context"
	"errors"

	"github.com/AnshRaj112/journal-backend/internal/apperrors"
	"github.com/AnshRaj112/journal-backend/internal/database"
	"github.com/AnshRaj112/journal-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const journalCollection = "journals"

// MongoJournalStore is the MongoDB-backed JournalStore used in production.
type MongoJournalStore struct{}

var _ JournalStore = MongoJournalStore{}

func journals() *mongo.Collection {
	return database.DB.Collection(journalCollection)
}

func (MongoJournalStore) Find(ctx context.Context, query bson.M, sort bson.D) ([]models.JournalEntry, error) {
	findOptions := options.Find()
	findOptions.SetSort(sort)

	cursor, err := journals().Find(ctx, query, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	// Non-nil so an empty result serializes as [] rather than null.
	entries := make([]models.JournalEntry, 0)
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (MongoJournalStore) FindByID(ctx context.Context, id string) (*models.JournalEntry, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		// An id that can't be an ObjectID can't name an entry.
		return nil, apperrors.ErrNotFound
	}

	var entry models.JournalEntry
	err = journals().FindOne(ctx, bson.M{"_id": objectID}).Decode(&entry)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (MongoJournalStore) Insert(ctx context.Context, entry *models.JournalEntry) error {
	_, err := journals().InsertOne(ctx, entry)
	return err
}

func (MongoJournalStore) Update(ctx context.Context, id string, set bson.M) (*models.JournalEntry, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperrors.ErrNotFound
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var entry models.JournalEntry
	err = journals().FindOneAndUpdate(ctx, bson.M{"_id": objectID}, bson.M{"$set": set}, opts).Decode(&entry)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (MongoJournalStore) Delete(ctx context.Context, id string) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return apperrors.ErrNotFound
	}

	res, err := journals().DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// EnsureJournalIndexes configures indexes for the journals collection.
// Called on startup from main after Mongo has connected.
func EnsureJournalIndexes(ctx context.Context) error {
	// Compound index on (user_id, created_at) to back the owner-scoped
	// list query and its default sort.
	model := mongo.IndexModel{
		Keys: bson.D{
			{Key: "user_id", Value: 1},
			{Key: "created_at", Value: -1},
		},
		Options: options.Index().SetName("idx_user_created"),
	}

	_, err := journals().Indexes().CreateOne(ctx, model)
	return err
}
