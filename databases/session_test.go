package databases_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/neuroconnect/neuro-connect-api/config"
	"github.com/neuroconnect/neuro-connect-api/databases"
	"github.com/neuroconnect/neuro-connect-api/databases/mocks"
	"github.com/neuroconnect/neuro-connect-api/models"
)

func TestNewSessionDatabase(t *testing.T) {
	os.Setenv("DB_URI", "mongodb://127.0.0.1:27017")
	os.Setenv("DB_NAME", "test")
	conf := config.New()

	dbClient, err := databases.NewClient(conf)
	assert.NoError(t, err)

	db := databases.NewDatabase(conf, dbClient)

	sessionDB := databases.NewSessionDatabase(db)

	assert.NotEmpty(t, sessionDB)
}

func TestSessionDatabase_FindOne(t *testing.T) {
	sessionID := primitive.NewObjectID()

	// define variables for interfaces
	var dbHelper databases.DatabaseHelper
	var collectionHelper databases.CollectionHelper
	var srHelperErr databases.SingleResultHelper
	var srHelperCorrect databases.SingleResultHelper

	// set interfaces implementation to mocked structures
	dbHelper = &mocks.DatabaseHelper{}
	collectionHelper = &mocks.CollectionHelper{}
	srHelperErr = &mocks.SingleResultHelper{}
	srHelperCorrect = &mocks.SingleResultHelper{}

	srHelperErr.(*mocks.SingleResultHelper).
		On("Decode", mock.Anything).
		Return(errors.New("mocked-error"))

	srHelperCorrect.(*mocks.SingleResultHelper).
		On("Decode", mock.Anything).
		Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(**models.Session)
		(*arg).ID = sessionID
		(*arg).Status = models.SessionPending
	})

	collectionHelper.(*mocks.CollectionHelper).
		On("FindOne", context.Background(), bson.M{"error": true}).
		Return(srHelperErr)

	collectionHelper.(*mocks.CollectionHelper).
		On("FindOne", context.Background(), bson.M{"_id": sessionID}).
		Return(srHelperCorrect)

	dbHelper.(*mocks.DatabaseHelper).
		On("Collection", "sessions").
		Return(collectionHelper)

	sessionDB := databases.NewSessionDatabase(dbHelper)

	session, err := sessionDB.FindOne(context.Background(), bson.M{"error": true})
	assert.Empty(t, session)
	assert.EqualError(t, err, "mocked-error")

	session, err = sessionDB.FindOne(context.Background(), bson.M{"_id": sessionID})
	assert.NoError(t, err)
	assert.Equal(t, sessionID, session.ID)
	assert.Equal(t, models.SessionPending, session.Status)
}

func TestSessionDatabase_Find(t *testing.T) {
	var dbHelper databases.DatabaseHelper
	var collectionHelper databases.CollectionHelper
	var cursorHelperErr databases.CursorHelper
	var cursorHelperCorrect databases.CursorHelper

	dbHelper = &mocks.DatabaseHelper{}
	collectionHelper = &mocks.CollectionHelper{}
	cursorHelperErr = &mocks.CursorHelper{}
	cursorHelperCorrect = &mocks.CursorHelper{}

	cursorHelperErr.(*mocks.CursorHelper).
		On("Decode", mock.Anything).
		Return(errors.New("mocked-error"))

	cursorHelperCorrect.(*mocks.CursorHelper).
		On("Decode", mock.Anything).
		Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(*[]models.Session)
		*arg = []models.Session{{Status: models.SessionApproved}}
	})

	collectionHelper.(*mocks.CollectionHelper).
		On("Find", context.Background(), bson.M{"error": true}).
		Return(cursorHelperErr, nil)

	collectionHelper.(*mocks.CollectionHelper).
		On("Find", context.Background(), bson.M{"status": models.SessionApproved}).
		Return(cursorHelperCorrect, nil)

	dbHelper.(*mocks.DatabaseHelper).
		On("Collection", "sessions").
		Return(collectionHelper)

	sessionDB := databases.NewSessionDatabase(dbHelper)

	sessions, err := sessionDB.Find(context.Background(), bson.M{"error": true})
	assert.Empty(t, sessions)
	assert.EqualError(t, err, "mocked-error")

	sessions, err = sessionDB.Find(context.Background(), bson.M{"status": models.SessionApproved})
	assert.NoError(t, err)
	assert.Len(t, sessions, 1)
	assert.Equal(t, models.SessionApproved, sessions[0].Status)
}

func TestSessionDatabase_CountDocuments(t *testing.T) {
	var dbHelper databases.DatabaseHelper
	var collectionHelper databases.CollectionHelper

	dbHelper = &mocks.DatabaseHelper{}
	collectionHelper = &mocks.CollectionHelper{}

	collectionHelper.(*mocks.CollectionHelper).
		On("CountDocuments", context.Background(), bson.M{}).
		Return(int64(4), nil)

	dbHelper.(*mocks.DatabaseHelper).
		On("Collection", "sessions").
		Return(collectionHelper)

	sessionDB := databases.NewSessionDatabase(dbHelper)

	n, err := sessionDB.CountDocuments(context.Background(), bson.M{})
	assert.NoError(t, err)
	assert.Equal(t, int64(4), n)
}
