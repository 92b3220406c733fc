package mongostore

import (
	"context"

	"notes-admin/internal/shared/model"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// ============================================================================
// NoteStore
// ============================================================================

func (s *Store) CreateNote(ctx context.Context, note *model.Note) error {
	return insertOne(ctx, s.col(ColNotes), note)
}

func (s *Store) ListNotesByUser(ctx context.Context, userID string) ([]*model.Note, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	return findMany[model.Note](ctx, s.col(ColNotes), bson.D{{Key: "user", Value: userID}}, opts)
}

func (s *Store) UserHasNotes(ctx context.Context, userID string) (bool, error) {
	return exists(ctx, s.col(ColNotes), bson.D{{Key: "user", Value: userID}})
}
