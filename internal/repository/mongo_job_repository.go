package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/justsurfingit/jobboard/internal/database"
	apperrors "github.com/justsurfingit/jobboard/internal/errors"
	"github.com/justsurfingit/jobboard/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

const jobsCollection = "jobs"

type organizationDocument struct {
	Name string `bson:"name"`
}

type posterDocument struct {
	Name  string `bson:"name"`
	Email string `bson:"email"`
}

type jobDocument struct {
	ID             primitive.ObjectID   `bson:"_id,omitempty"`
	JobTitle       string               `bson:"jobTitle"`
	JobDescription string               `bson:"jobDescription"`
	Location       string               `bson:"location"`
	JobType        string               `bson:"jobType,omitempty"`
	Salary         string               `bson:"salary"`
	Organization   organizationDocument `bson:"organization"`
	Poster         posterDocument       `bson:"poster"`
	Requirements   []string             `bson:"requirements,omitempty"`
	Benefits       []string             `bson:"benefits,omitempty"`
	CreatedAt      time.Time            `bson:"createdAt"`
}

func (d *jobDocument) toModel() models.Job {
	return models.Job{
		ID:             d.ID.Hex(),
		JobTitle:       d.JobTitle,
		JobDescription: d.JobDescription,
		Location:       d.Location,
		JobType:        models.JobType(d.JobType),
		Salary:         d.Salary,
		Organization:   models.Organization{Name: d.Organization.Name},
		Poster:         models.Poster{Name: d.Poster.Name, Email: d.Poster.Email},
		Requirements:   d.Requirements,
		Benefits:       d.Benefits,
		CreatedAt:      d.CreatedAt.UTC(),
	}
}

type MongoJobRepository struct {
	conn   *database.Connector[*mongo.Database]
	logger *zap.Logger
}

func NewMongoJobRepository(conn *database.Connector[*mongo.Database], logger *zap.Logger) *MongoJobRepository {
	return &MongoJobRepository{conn: conn, logger: logger}
}

func (r *MongoJobRepository) collection(ctx context.Context) (*mongo.Collection, error) {
	db, err := r.conn.Connect(ctx)
	if err != nil {
		return nil, apperrors.Unavailable("connecting to mongo", err)
	}
	return db.Collection(jobsCollection), nil
}

func (r *MongoJobRepository) Create(ctx context.Context, job *models.Job) error {
	if err := prepare(job); err != nil {
		return err
	}

	coll, err := r.collection(ctx)
	if err != nil {
		return err
	}

	doc := jobDocument{
		ID:             primitive.NewObjectID(),
		JobTitle:       job.JobTitle,
		JobDescription: job.JobDescription,
		Location:       job.Location,
		JobType:        string(job.JobType),
		Salary:         job.Salary,
		Organization:   organizationDocument{Name: job.Organization.Name},
		Poster:         posterDocument{Name: job.Poster.Name, Email: job.Poster.Email},
		Requirements:   job.Requirements,
		Benefits:       job.Benefits,
		// mongo keeps millisecond precision
		CreatedAt: time.Now().UTC().Truncate(time.Millisecond),
	}

	if _, err := coll.InsertOne(ctx, doc); err != nil {
		return apperrors.Internal("inserting job", err)
	}

	job.ID = doc.ID.Hex()
	job.CreatedAt = doc.CreatedAt
	return nil
}

func (r *MongoJobRepository) FindByID(ctx context.Context, id string) (*models.Job, error) {
	oid, err := primitive.ObjectIDFromHex(strings.TrimSpace(id))
	if err != nil {
		return nil, notFound()
	}

	coll, err := r.collection(ctx)
	if err != nil {
		return nil, err
	}

	var doc jobDocument
	if err := coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, notFound()
		}
		return nil, apperrors.Internal("finding job", err)
	}

	job := doc.toModel()
	return &job, nil
}

func (r *MongoJobRepository) FindAll(ctx context.Context) ([]models.Job, error) {
	coll, err := r.collection(ctx)
	if err != nil {
		return nil, err
	}

	cursor, err := coll.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, apperrors.Internal("listing jobs", err)
	}

	var docs []jobDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, apperrors.Internal("decoding jobs", err)
	}

	jobs := make([]models.Job, 0, len(docs))
	for i := range docs {
		jobs = append(jobs, docs[i].toModel())
	}
	return jobs, nil
}

func (r *MongoJobRepository) Ping(ctx context.Context) error {
	db, err := r.conn.Connect(ctx)
	if err != nil {
		return err
	}
	return db.Client().Ping(ctx, readpref.Primary())
}

func (r *MongoJobRepository) Close(ctx context.Context) error {
	return r.conn.Close(ctx)
}

var _ JobRepository = (*MongoJobRepository)(nil)
