package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/johnquangdev/talk-tracer/internal/domain/entities"
	"github.com/johnquangdev/talk-tracer/internal/domain/repositories"
)

// MeetingRepository stores meeting documents in a Mongo collection
type MeetingRepository struct {
	coll *mongo.Collection
	now  func() time.Time
}

// NewMeetingRepository creates a repository over the meetings collection
func NewMeetingRepository(db *mongo.Database, collection string) *MeetingRepository {
	return &MeetingRepository{
		coll: db.Collection(collection),
		now:  func() time.Time { return time.Now().UTC() },
	}
}

var _ repositories.MeetingRepository = (*MeetingRepository)(nil)

// Create inserts a new meeting
func (r *MeetingRepository) Create(ctx context.Context, meeting *entities.Meeting) error {
	if meeting == nil {
		return errors.New("meeting cannot be nil")
	}
	if meeting.ID.IsZero() {
		meeting.ID = primitive.NewObjectID()
	}
	if _, err := r.coll.InsertOne(ctx, meeting); err != nil {
		return fmt.Errorf("failed to insert meeting: %w", err)
	}
	return nil
}

// FindByID retrieves a meeting by its hex id
func (r *MeetingRepository) FindByID(ctx context.Context, id string) (*entities.Meeting, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", entities.ErrInvalidMeetingID, id)
	}

	var meeting entities.Meeting
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&meeting); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find meeting %s: %w", id, err)
	}
	return &meeting, nil
}

// FindByIDs retrieves meetings in the order of ids; unknown ids are skipped
func (r *MeetingRepository) FindByIDs(ctx context.Context, ids []string) ([]*entities.Meeting, error) {
	oids := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		oid, err := primitive.ObjectIDFromHex(id)
		if err != nil {
			continue
		}
		oids = append(oids, oid)
	}
	if len(oids) == 0 {
		return []*entities.Meeting{}, nil
	}

	cur, err := r.coll.Find(ctx, bson.M{"_id": bson.M{"$in": oids}})
	if err != nil {
		return nil, fmt.Errorf("failed to find meetings: %w", err)
	}
	defer cur.Close(ctx)

	byID := make(map[string]*entities.Meeting, len(oids))
	for cur.Next(ctx) {
		var m entities.Meeting
		if err := cur.Decode(&m); err != nil {
			return nil, fmt.Errorf("failed to decode meeting: %w", err)
		}
		byID[m.ID.Hex()] = &m
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate meetings: %w", err)
	}

	out := make([]*entities.Meeting, 0, len(byID))
	for _, id := range ids {
		if m, ok := byID[id]; ok {
			out = append(out, m)
		}
	}
	return out, nil
}

// UpdateFields applies a single $set on the meeting; updated_at is always refreshed
func (r *MeetingRepository) UpdateFields(ctx context.Context, id string, fields map[string]interface{}) (repositories.UpdateResult, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return repositories.UpdateResult{}, fmt.Errorf("%w: %s", entities.ErrInvalidMeetingID, id)
	}

	set := bson.M{entities.FieldUpdatedAt: r.now()}
	for k, v := range fields {
		set[k] = v
	}

	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": set})
	if err != nil {
		return repositories.UpdateResult{}, fmt.Errorf("failed to update meeting %s: %w", id, err)
	}
	return repositories.UpdateResult{Matched: res.MatchedCount, Modified: res.ModifiedCount}, nil
}
