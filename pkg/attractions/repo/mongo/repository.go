// Package mongo stores attractions as documents in a MongoDB collection.
package mongo

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/tendant/simple-attractions/pkg/attractions"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection is the name of the attractions collection.
const Collection = "attractions"

const (
	idKey    = "_id"
	orderKey = "order"
)

// projection limits reads to the public attraction fields.
var projection = bson.M{
	idKey:                            1,
	attractions.FieldName:            1,
	attractions.FieldLocation:        1,
	attractions.FieldAttractionImage: 1,
}

// document is the stored shape of an attraction.
type document struct {
	ID              string    `bson:"_id"`
	Name            string    `bson:"name"`
	Location        string    `bson:"location"`
	AttractionImage string    `bson:"attractionImage,omitempty"`
	CreatedAt       time.Time `bson:"createdAt"`

	// Order increases within a process and breaks createdAt ties.
	Order primitive.ObjectID `bson:"order"`
}

func (d document) attraction() *attractions.Attraction {
	return &attractions.Attraction{
		ID:              d.ID,
		Name:            d.Name,
		Location:        d.Location,
		AttractionImage: d.AttractionImage,
	}
}

// Repository implements attractions.Repository on a MongoDB collection.
type Repository struct {
	collection *mongo.Collection
}

// New creates a repository over the attractions collection of db.
func New(db *mongo.Database) *Repository {
	return &Repository{collection: db.Collection(Collection)}
}

// Connect dials uri, verifies the connection and returns a repository on
// database dbName together with the client for disconnecting.
func Connect(ctx context.Context, uri, dbName string) (*Repository, *mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri).SetConnectTimeout(5*time.Second))
	if err != nil {
		return nil, nil, errors.Wrap(err, "connecting to mongo")
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, nil, errors.Wrap(err, "pinging mongo")
	}
	return New(client.Database(dbName)), client, nil
}

func (r *Repository) ListAttractions(ctx context.Context) ([]*attractions.Attraction, error) {
	opts := options.Find().
		SetProjection(projection).
		SetSort(bson.D{{Key: orderKey, Value: 1}})

	cur, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, errors.Wrap(err, "finding attractions")
	}

	var docs []document
	if err := cur.All(ctx, &docs); err != nil {
		return nil, errors.Wrap(err, "reading attractions")
	}

	result := make([]*attractions.Attraction, 0, len(docs))
	for _, d := range docs {
		result = append(result, d.attraction())
	}
	return result, nil
}

func (r *Repository) GetAttraction(ctx context.Context, id string) (*attractions.Attraction, error) {
	var d document
	err := r.collection.FindOne(ctx, bson.M{idKey: id}, options.FindOne().SetProjection(projection)).Decode(&d)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, attractions.ErrAttractionNotFound
		}
		return nil, errors.Wrapf(err, "finding attraction '%s'", id)
	}
	return d.attraction(), nil
}

func (r *Repository) CreateAttraction(ctx context.Context, attraction *attractions.Attraction) error {
	d := document{
		ID:              attraction.ID,
		Name:            attraction.Name,
		Location:        attraction.Location,
		AttractionImage: attraction.AttractionImage,
		CreatedAt:       time.Now().UTC(),
		Order:           primitive.NewObjectID(),
	}
	if _, err := r.collection.InsertOne(ctx, d); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return attractions.ErrDuplicateID
		}
		return errors.Wrapf(err, "inserting attraction '%s'", attraction.ID)
	}
	return nil
}

func (r *Repository) UpdateAttraction(ctx context.Context, id string, patch attractions.AttractionPatch) (bool, error) {
	set := bson.M{}
	for field, value := range patch.Fields() {
		set[field] = value
	}
	if len(set) == 0 {
		n, err := r.collection.CountDocuments(ctx, bson.M{idKey: id})
		if err != nil {
			return false, errors.Wrapf(err, "counting attraction '%s'", id)
		}
		return n > 0, nil
	}

	res, err := r.collection.UpdateOne(ctx, bson.M{idKey: id}, bson.M{"$set": set})
	if err != nil {
		return false, errors.Wrapf(err, "updating attraction '%s'", id)
	}
	return res.MatchedCount > 0, nil
}

func (r *Repository) DeleteAttraction(ctx context.Context, id string) (bool, error) {
	res, err := r.collection.DeleteOne(ctx, bson.M{idKey: id})
	if err != nil {
		return false, errors.Wrapf(err, "deleting attraction '%s'", id)
	}
	return res.DeletedCount > 0, nil
}
