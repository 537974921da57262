package databases

// go generate: mockery --name PostDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/neuroconnect/neuro-connect-api/models"
)

const postName = "posts"

// PostDatabase contains the methods to use with the post database
type PostDatabase interface {
	FindOne(ctx context.Context, filter interface{}) (*models.Post, error)
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Post, error)
	FindPage(ctx context.Context, filter interface{}, limit, page int) ([]models.Post, error)
	InsertOne(ctx context.Context, post models.Post) (interface{}, error)
	UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error)
}

type postDatabase struct {
	db DatabaseHelper
}

// NewPostDatabase initializes a new instance of post database with the provided db connection
func NewPostDatabase(db DatabaseHelper) PostDatabase {
	return &postDatabase{
		db: db,
	}
}

func (p *postDatabase) FindOne(ctx context.Context, filter interface{}) (*models.Post, error) {
	post := &models.Post{}
	err := p.db.Collection(postName).FindOne(ctx, filter).Decode(&post)
	if err != nil {
		return nil, err
	}
	return post, nil
}

func (p *postDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Post, error) {
	var posts []models.Post
	cursor, err := p.db.Collection(postName).Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	if err := cursor.Decode(&posts); err != nil {
		return nil, err
	}
	return posts, nil
}

func (p *postDatabase) FindPage(ctx context.Context, filter interface{}, limit, page int) ([]models.Post, error) {
	opts := newMongoPaginate(limit, page).getPaginatedOpts().SetSort(bson.M{"createdAt": -1})
	return p.Find(ctx, filter, opts)
}

func (p *postDatabase) InsertOne(ctx context.Context, post models.Post) (interface{}, error) {
	res, err := p.db.Collection(postName).InsertOne(ctx, post)
	if err != nil {
		return nil, err
	}
	return res.Decode(), nil
}

func (p *postDatabase) UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error) {
	return p.db.Collection(postName).UpdateOne(ctx, filter, update, opts...)
}
