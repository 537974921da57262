package databases

// go generate: mockery --name StatsSnapshotDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/neuroconnect/neuro-connect-api/models"
)

const snapshotName = "statsSnapshots"

// StatsSnapshotDatabase contains the methods to use with the stats snapshot database
type StatsSnapshotDatabase interface {
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.StatsSnapshot, error)
	InsertOne(ctx context.Context, snapshot models.StatsSnapshot) (interface{}, error)
}

type statsSnapshotDatabase struct {
	db DatabaseHelper
}

// NewStatsSnapshotDatabase initializes a new instance of stats snapshot database with the provided db connection
func NewStatsSnapshotDatabase(db DatabaseHelper) StatsSnapshotDatabase {
	return &statsSnapshotDatabase{
		db: db,
	}
}

func (s *statsSnapshotDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.StatsSnapshot, error) {
	var snapshots []models.StatsSnapshot
	cursor, err := s.db.Collection(snapshotName).Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	if err := cursor.Decode(&snapshots); err != nil {
		return nil, err
	}
	return snapshots, nil
}

func (s *statsSnapshotDatabase) InsertOne(ctx context.Context, snapshot models.StatsSnapshot) (interface{}, error) {
	res, err := s.db.Collection(snapshotName).InsertOne(ctx, snapshot)
	if err != nil {
		return nil, err
	}
	return res.Decode(), nil
}
