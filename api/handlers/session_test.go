package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/neuroconnect/neuro-connect-api/api"
	"github.com/neuroconnect/neuro-connect-api/api/handlers"
	"github.com/neuroconnect/neuro-connect-api/databases"
	mocksdb "github.com/neuroconnect/neuro-connect-api/databases/mocks"
	"github.com/neuroconnect/neuro-connect-api/models"
)

func withPrincipal(req *http.Request, p *api.Principal) *http.Request {
	return req.WithContext(api.WithPrincipal(req.Context(), p))
}

func TestSession_CreateSessionHandlerForbiddenForDoctors(t *testing.T) {
	body := bytes.NewBufferString(`{"doctorId": "608cafd695eb9dc05379b7f3", "title": "t", "description": "d", "preferredDateTime": "2026-09-01T10:00:00Z"}`)
	req, err := http.NewRequest("POST", "/api/v1/sessions", body)
	if err != nil {
		t.Fatal(err)
	}
	req = withPrincipal(req, &api.Principal{ID: primitive.NewObjectID(), Role: models.RoleDoctor})

	s := handlers.Session{Validate: validator.New()}

	rr := httptest.NewRecorder()
	http.HandlerFunc(s.CreateSessionHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestSession_CreateSessionHandlerInactiveDoctor(t *testing.T) {
	doctorID := primitive.NewObjectID()
	body := bytes.NewBufferString(`{"doctorId": "` + doctorID.Hex() + `", "title": "t", "description": "d", "preferredDateTime": "2026-09-01T10:00:00Z"}`)
	req, err := http.NewRequest("POST", "/api/v1/sessions", body)
	if err != nil {
		t.Fatal(err)
	}
	req = withPrincipal(req, &api.Principal{ID: primitive.NewObjectID(), Role: models.RoleStudent})

	db := &mocksdb.DatabaseHelper{}
	conn := &mocksdb.CollectionHelper{}
	singleResultHelper := &mocksdb.SingleResultHelper{}

	singleResultHelper.On("Decode", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(**models.User)
		(*arg).ID = doctorID
		(*arg).Role = models.RoleDoctor
		(*arg).IsActive = false
	})
	conn.On("FindOne", mock.Anything, mock.Anything).Return(singleResultHelper)
	db.On("Collection", "users").Return(conn)

	s := handlers.Session{
		DB:       databases.NewSessionDatabase(db),
		UDB:      databases.NewUserDatabase(db),
		Validate: validator.New(),
	}

	rr := httptest.NewRecorder()
	http.HandlerFunc(s.CreateSessionHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "not accepting sessions")
}

func TestSession_UpdateSessionStatusHandlerRejectsWrongDoctor(t *testing.T) {
	sessionID := primitive.NewObjectID()
	body := bytes.NewBufferString(`{"status": "approved"}`)
	req, err := http.NewRequest("PATCH", "/api/v1/sessions/"+sessionID.Hex()+"/status", body)
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"session_id": sessionID.Hex()})
	req = withPrincipal(req, &api.Principal{ID: primitive.NewObjectID(), Role: models.RoleDoctor})

	db := &mocksdb.DatabaseHelper{}
	conn := &mocksdb.CollectionHelper{}
	singleResultHelper := &mocksdb.SingleResultHelper{}

	singleResultHelper.On("Decode", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(**models.Session)
		(*arg).ID = sessionID
		(*arg).Doctor = primitive.NewObjectID() // assigned to someone else
		(*arg).Status = models.SessionPending
	})
	conn.On("FindOne", mock.Anything, mock.Anything).Return(singleResultHelper)
	db.On("Collection", "sessions").Return(conn)

	s := handlers.Session{
		DB:       databases.NewSessionDatabase(db),
		UDB:      databases.NewUserDatabase(db),
		Validate: validator.New(),
	}

	rr := httptest.NewRecorder()
	http.HandlerFunc(s.UpdateSessionStatusHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestSession_UpdateSessionStatusHandlerInvalidTransition(t *testing.T) {
	sessionID := primitive.NewObjectID()
	doctorID := primitive.NewObjectID()
	body := bytes.NewBufferString(`{"status": "approved"}`)
	req, err := http.NewRequest("PATCH", "/api/v1/sessions/"+sessionID.Hex()+"/status", body)
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"session_id": sessionID.Hex()})
	req = withPrincipal(req, &api.Principal{ID: doctorID, Role: models.RoleDoctor})

	db := &mocksdb.DatabaseHelper{}
	conn := &mocksdb.CollectionHelper{}
	singleResultHelper := &mocksdb.SingleResultHelper{}

	// already approved; approving again is not a legal transition
	singleResultHelper.On("Decode", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(**models.Session)
		(*arg).ID = sessionID
		(*arg).Doctor = doctorID
		(*arg).Status = models.SessionApproved
	})
	conn.On("FindOne", mock.Anything, mock.Anything).Return(singleResultHelper)
	db.On("Collection", "sessions").Return(conn)

	s := handlers.Session{
		DB:       databases.NewSessionDatabase(db),
		UDB:      databases.NewUserDatabase(db),
		Validate: validator.New(),
	}

	rr := httptest.NewRecorder()
	http.HandlerFunc(s.UpdateSessionStatusHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)

	var errResp models.ErrorMessageResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &errResp); err != nil {
		t.Fatal(err)
	}
	assert.Contains(t, errResp.Response, "invalid status transition")
}

func TestSession_UpdateSessionStatusHandlerAssignsChatRoomOnApproval(t *testing.T) {
	sessionID := primitive.NewObjectID()
	doctorID := primitive.NewObjectID()
	body := bytes.NewBufferString(`{"status": "approved", "doctorResponse": "See you then"}`)
	req, err := http.NewRequest("PATCH", "/api/v1/sessions/"+sessionID.Hex()+"/status", body)
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"session_id": sessionID.Hex()})
	req = withPrincipal(req, &api.Principal{ID: doctorID, Role: models.RoleDoctor})

	db := &mocksdb.DatabaseHelper{}
	conn := &mocksdb.CollectionHelper{}
	singleResultHelper := &mocksdb.SingleResultHelper{}

	singleResultHelper.On("Decode", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(**models.Session)
		(*arg).ID = sessionID
		(*arg).Doctor = doctorID
		(*arg).Status = models.SessionPending
	})
	conn.On("FindOne", mock.Anything, mock.Anything).Return(singleResultHelper)

	var capturedUpdate bson.M
	conn.On("UpdateOne", mock.Anything, mock.Anything, mock.Anything).
		Return(&mongo.UpdateResult{MatchedCount: 1}, nil).
		Run(func(args mock.Arguments) {
			capturedUpdate = args.Get(2).(bson.M)
		})
	db.On("Collection", "sessions").Return(conn)

	s := handlers.Session{
		DB:       databases.NewSessionDatabase(db),
		UDB:      databases.NewUserDatabase(db),
		Validate: validator.New(),
	}

	rr := httptest.NewRecorder()
	http.HandlerFunc(s.UpdateSessionStatusHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	set := capturedUpdate["$set"].(bson.M)
	assert.Equal(t, models.SessionApproved, set["status"])
	assert.Equal(t, "See you then", set["doctorResponse"])
	chatRoom, ok := set["chatRoom"].(string)
	assert.True(t, ok, "chatRoom must be assigned on first approval")
	assert.True(t, strings.HasPrefix(chatRoom, "chat_"+sessionID.Hex()+"_"))
	assert.NotNil(t, set["responseDate"])
}

func TestSession_MySessionsHandlerDoctorHidesAnonymousStudents(t *testing.T) {
	doctorID := primitive.NewObjectID()
	studentID := primitive.NewObjectID()
	req, err := http.NewRequest("GET", "/api/v1/sessions/my-sessions", nil)
	if err != nil {
		t.Fatal(err)
	}
	req = withPrincipal(req, &api.Principal{ID: doctorID, Role: models.RoleDoctor})

	db := &mocksdb.DatabaseHelper{}
	conn := &mocksdb.CollectionHelper{}
	cursor := &mocksdb.CursorHelper{}

	cursor.On("Decode", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(*[]models.Session)
		*arg = []models.Session{
			{ID: primitive.NewObjectID(), Student: studentID, Doctor: doctorID, IsAnonymous: true, AnonymousName: "Quiet Fox"},
			{ID: primitive.NewObjectID(), Student: studentID, Doctor: doctorID},
		}
	})
	conn.On("Find", mock.Anything, mock.Anything, mock.Anything).Return(cursor, nil)
	db.On("Collection", "sessions").Return(conn)

	s := handlers.Session{
		DB:       databases.NewSessionDatabase(db),
		UDB:      databases.NewUserDatabase(db),
		Validate: validator.New(),
	}

	rr := httptest.NewRecorder()
	http.HandlerFunc(s.MySessionsHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var sessions []models.Session
	if err := json.Unmarshal(rr.Body.Bytes(), &sessions); err != nil {
		t.Fatal(err)
	}
	assert.Len(t, sessions, 2)
	assert.Equal(t, primitive.NilObjectID, sessions[0].Student)
	assert.Equal(t, studentID, sessions[1].Student)
}

func TestSession_MySessionsHandlerSortsNewestFirst(t *testing.T) {
	studentID := primitive.NewObjectID()
	req, err := http.NewRequest("GET", "/api/v1/sessions/my-sessions", nil)
	if err != nil {
		t.Fatal(err)
	}
	req = withPrincipal(req, &api.Principal{ID: studentID, Role: models.RoleStudent})

	db := &mocksdb.DatabaseHelper{}
	conn := &mocksdb.CollectionHelper{}
	cursor := &mocksdb.CursorHelper{}

	cursor.On("Decode", mock.Anything).Return(nil)

	var capturedOpts *options.FindOptions
	conn.On("Find", mock.Anything, mock.Anything, mock.Anything).
		Return(cursor, nil).
		Run(func(args mock.Arguments) {
			capturedOpts = args.Get(2).(*options.FindOptions)
		})
	db.On("Collection", "sessions").Return(conn)

	s := handlers.Session{
		DB:       databases.NewSessionDatabase(db),
		UDB:      databases.NewUserDatabase(db),
		Validate: validator.New(),
	}

	rr := httptest.NewRecorder()
	http.HandlerFunc(s.MySessionsHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	if assert.NotNil(t, capturedOpts) {
		assert.Equal(t, bson.M{"createdAt": -1}, capturedOpts.Sort)
	}
}
