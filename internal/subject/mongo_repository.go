package subject

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

type subjectDocument struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	SubjectName string             `bson:"subjectName"`
}

func (d subjectDocument) toSubject() Subject {
	return Subject{ID: d.ID.Hex(), SubjectName: d.SubjectName}
}

type mongoRepository struct {
	coll    *mongo.Collection
	metrics *metrics.Metrics
}

func NewMongoRepository(db *mongo.Database, m *metrics.Metrics) Repository {
	return &mongoRepository{
		coll:    db.Collection(mongodb.SubjectsCollection),
		metrics: m,
	}
}

func (r *mongoRepository) Find(ctx context.Context) ([]Subject, error) {
	start := time.Now()
	subjects, err := r.find(ctx)

	r.metrics.Database.RecordQuery(ctx, "find", collection, time.Since(start), err)

	return subjects, err
}

func (r *mongoRepository) find(ctx context.Context) ([]Subject, error) {
	cursor, err := r.coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []subjectDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	subjects := make([]Subject, 0, len(docs))
	for _, doc := range docs {
		subjects = append(subjects, doc.toSubject())
	}
	return subjects, nil
}

func (r *mongoRepository) FindByName(ctx context.Context, name string) (*Subject, error) {
	start := time.Now()
	var doc subjectDocument
	err := r.coll.FindOne(ctx, bson.M{"subjectName": name}).Decode(&doc)

	if errors.Is(err, mongo.ErrNoDocuments) {
		r.metrics.Database.RecordQuery(ctx, "find_one", collection, time.Since(start), nil)
		return nil, ErrSubjectNotFound
	}

	r.metrics.Database.RecordQuery(ctx, "find_one", collection, time.Since(start), err)

	if err != nil {
		return nil, err
	}
	subject := doc.toSubject()
	return &subject, nil
}

func (r *mongoRepository) Insert(ctx context.Context, subject *Subject) (store.InsertResult, error) {
	start := time.Now()
	res, err := r.coll.InsertOne(ctx, subjectDocument{SubjectName: subject.SubjectName})

	r.metrics.Database.RecordQuery(ctx, "insert", collection, time.Since(start), err)

	if err != nil {
		return store.InsertResult{}, err
	}

	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return store.InsertResult{}, fmt.Errorf("unexpected inserted id type %T", res.InsertedID)
	}
	subject.ID = oid.Hex()
	return store.InsertResult{Acknowledged: true, InsertedID: subject.ID}, nil
}

func (r *mongoRepository) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil
	}

	start := time.Now()
	_, err = r.coll.DeleteOne(ctx, bson.M{"_id": oid})

	r.metrics.Database.RecordQuery(ctx, "delete", collection, time.Since(start), err)

	return err
}
