package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/akkm9120/sctp02-crud-mongo/internal/metrics"
	"github.com/akkm9120/sctp02-crud-mongo/internal/mongodb"
	"github.com/akkm9120/sctp02-crud-mongo/internal/store"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type userDocument struct {
	ID       primitive.ObjectID `bson:"_id,omitempty"`
	Email    string             `bson:"email"`
	Password string             `bson:"password"`
}

type mongoRepository struct {
	coll    *mongo.Collection
	metrics *metrics.Metrics
}

func NewMongoRepository(db *mongo.Database, m *metrics.Metrics) UserRepository {
	return &mongoRepository{
		coll:    db.Collection(mongodb.UsersCollection),
		metrics: m,
	}
}

func (r *mongoRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	start := time.Now()
	var doc userDocument
	err := r.coll.FindOne(ctx, bson.M{"email": email}).Decode(&doc)

	if errors.Is(err, mongo.ErrNoDocuments) {
		r.metrics.Database.RecordQuery(ctx, "find_one", collection, time.Since(start), nil)
		return nil, ErrUserNotFound
	}

	r.metrics.Database.RecordQuery(ctx, "find_one", collection, time.Since(start), err)

	if err != nil {
		return nil, err
	}
	return &User{ID: doc.ID.Hex(), Email: doc.Email, PasswordHash: doc.Password}, nil
}

func (r *mongoRepository) Insert(ctx context.Context, user *User) (store.InsertResult, error) {
	start := time.Now()
	res, err := r.coll.InsertOne(ctx, userDocument{Email: user.Email, Password: user.PasswordHash})

	r.metrics.Database.RecordQuery(ctx, "insert", collection, time.Since(start), err)

	if err != nil {
		return store.InsertResult{}, err
	}

	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return store.InsertResult{}, fmt.Errorf("unexpected inserted id type %T", res.InsertedID)
	}
	user.ID = oid.Hex()
	return store.InsertResult{Acknowledged: true, InsertedID: user.ID}, nil
}
