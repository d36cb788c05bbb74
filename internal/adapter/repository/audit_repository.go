package repository

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/johnquangdev/talk-tracer/internal/domain/entities"
	"github.com/johnquangdev/talk-tracer/internal/domain/repositories"
)

// AuditRepository appends execution records to a Mongo collection
type AuditRepository struct {
	coll *mongo.Collection
}

// NewAuditRepository creates a repository over the audit collection
func NewAuditRepository(db *mongo.Database, collection string) *AuditRepository {
	return &AuditRepository{coll: db.Collection(collection)}
}

var _ repositories.AuditRepository = (*AuditRepository)(nil)

// Append inserts one record
func (r *AuditRepository) Append(ctx context.Context, record entities.AuditRecord) error {
	if _, err := r.coll.InsertOne(ctx, record); err != nil {
		return fmt.Errorf("failed to insert audit record: %w", err)
	}
	return nil
}
