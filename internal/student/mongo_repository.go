package student

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/akkm9120/sctp02-crud-mongo/internal/metrics"
	"github.com/akkm9120/sctp02-crud-mongo/internal/mongodb"
	"github.com/akkm9120/sctp02-crud-mongo/internal/store"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type studentDocument struct {
	ID           primitive.ObjectID     `bson:"_id,omitempty"`
	Name         string                 `bson:"name"`
	Age          int                    `bson:"age"`
	Subjects     []subjectEntryDocument `bson:"subjects"`
	DateEnrolled time.Time              `bson:"dateEnrolled"`
}

type subjectEntryDocument struct {
	ID   string `bson:"_id"`
	Name string `bson:"name"`
}

type mongoRepository struct {
	coll    *mongo.Collection
	metrics *metrics.Metrics
}

// NewMongoRepository returns the repository backed by the students
// collection of db.
func NewMongoRepository(db *mongo.Database, m *metrics.Metrics) Repository {
	return &mongoRepository{
		coll:    db.Collection(mongodb.StudentsCollection),
		metrics: m,
	}
}

func (r *mongoRepository) Find(ctx context.Context, filter Filter) ([]Student, error) {
	start := time.Now()
	students, err := r.find(ctx, mongoFilter(filter))

	r.metrics.Database.RecordQuery(ctx, "find", collection, time.Since(start), err)

	return students, err
}

func (r *mongoRepository) find(ctx context.Context, filter bson.M) ([]Student, error) {
	cursor, err := r.coll.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []studentDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	students := make([]Student, 0, len(docs))
	for _, doc := range docs {
		students = append(students, doc.toStudent())
	}
	return students, nil
}

func (r *mongoRepository) Insert(ctx context.Context, student *Student) (store.InsertResult, error) {
	start := time.Now()
	res, err := r.coll.InsertOne(ctx, newStudentDocument(student))

	r.metrics.Database.RecordQuery(ctx, "insert", collection, time.Since(start), err)

	if err != nil {
		return store.InsertResult{}, err
	}

	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return store.InsertResult{}, fmt.Errorf("unexpected inserted id type %T", res.InsertedID)
	}
	student.ID = oid.Hex()
	return store.InsertResult{Acknowledged: true, InsertedID: student.ID}, nil
}

func (r *mongoRepository) Replace(ctx context.Context, id string, student *Student) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil
	}

	start := time.Now()
	doc := newStudentDocument(student)
	_, err = r.coll.UpdateOne(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": bson.M{
			"name":         doc.Name,
			"age":          doc.Age,
			"subjects":     doc.Subjects,
			"dateEnrolled": doc.DateEnrolled,
		}},
	)

	r.metrics.Database.RecordQuery(ctx, "update", collection, time.Since(start), err)

	if err != nil {
		return err
	}
	student.ID = id
	return nil
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

func mongoFilter(filter Filter) bson.M {
	criteria := bson.M{}
	if filter.Name != "" {
		criteria["name"] = primitive.Regex{Pattern: regexp.QuoteMeta(filter.Name), Options: "i"}
	}
	if filter.Subject != "" {
		criteria["subjects.name"] = filter.Subject
	}
	return criteria
}

func newStudentDocument(s *Student) studentDocument {
	subjects := make([]subjectEntryDocument, 0, len(s.Subjects))
	for _, sub := range s.Subjects {
		subjects = append(subjects, subjectEntryDocument{ID: sub.ID, Name: sub.Name})
	}
	return studentDocument{
		Name:         s.Name,
		Age:          s.Age,
		Subjects:     subjects,
		DateEnrolled: s.DateEnrolled,
	}
}

func (d studentDocument) toStudent() Student {
	subjects := make([]SubjectEntry, 0, len(d.Subjects))
	for _, sub := range d.Subjects {
		subjects = append(subjects, SubjectEntry{ID: sub.ID, Name: sub.Name})
	}
	return Student{
		ID:           d.ID.Hex(),
		Name:         d.Name,
		Age:          d.Age,
		Subjects:     subjects,
		DateEnrolled: d.DateEnrolled,
	}
}
