package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/neuroconnect/neuro-connect-api/api"
	"github.com/neuroconnect/neuro-connect-api/config"
	"github.com/neuroconnect/neuro-connect-api/databases"
	"github.com/neuroconnect/neuro-connect-api/models"
)

// Session exposes the booking workflow endpoints
type Session struct {
	DB       databases.SessionDatabase
	UDB      databases.UserDatabase
	Validate *validator.Validate
}

// CreateSessionHandler books a new session with a doctor. Only students may
// book, the target must be an active verified doctor, and the session starts
// in the pending state with no chat room.
func (s Session) CreateSessionHandler(w http.ResponseWriter, r *http.Request) {
	p, err := api.RequireRole(r, models.RoleStudent)
	if err != nil {
		config.ErrorStatus("only students can book sessions", http.StatusForbidden, w, err)
		return
	}

	var req models.CreateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	if err := s.Validate.Struct(req); err != nil {
		config.ErrorStatus("invalid session payload", http.StatusBadRequest, w, err)
		return
	}

	doctorID, err := primitive.ObjectIDFromHex(req.DoctorID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from hex", http.StatusBadRequest, w, err)
		return
	}

	preferred, err := time.Parse(time.RFC3339, req.PreferredDateTime)
	if err != nil {
		config.ErrorStatus("invalid preferred date time", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	doctor, err := s.UDB.FindOne(ctx, bson.M{"_id": doctorID, "role": models.RoleDoctor})
	if err != nil {
		config.ErrorStatus("failed to get doctor by ID", http.StatusNotFound, w, err)
		return
	}
	if !doctor.IsActive {
		http.Error(w, `{"success": false, "message": "Doctor is not accepting sessions"}`, http.StatusBadRequest)
		return
	}

	now := primitive.NewDateTimeFromTime(time.Now())
	session := models.Session{
		ID:                primitive.NewObjectID(),
		Student:           p.ID,
		Doctor:            doctorID,
		Title:             req.Title,
		Description:       req.Description,
		IsAnonymous:       req.IsAnonymous,
		AnonymousName:     req.AnonymousName,
		PreferredDateTime: primitive.NewDateTimeFromTime(preferred),
		Status:            models.SessionPending,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if _, err := s.DB.InsertOne(ctx, session); err != nil {
		config.ErrorStatus("failed to create session", http.StatusInternalServerError, w, err)
		return
	}

	sendNotificationToUser(doctorID.Hex(), map[string]interface{}{
		"type":      "session-requested",
		"sessionId": session.ID.Hex(),
		"title":     session.Title,
	})

	b, err := json.Marshal(session)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	w.Write(b)
}

// MySessionsHandler lists the caller's sessions, newest first. Students see
// sessions they booked; doctors see sessions assigned to them.
func (s Session) MySessionsHandler(w http.ResponseWriter, r *http.Request) {
	p, err := api.RequireRole(r, models.RoleStudent, models.RoleDoctor)
	if err != nil {
		config.ErrorStatus("not permitted", http.StatusForbidden, w, err)
		return
	}

	filter := bson.M{"student": p.ID}
	if p.Role == models.RoleDoctor {
		filter = bson.M{"doctor": p.ID}
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	sessions, err := s.DB.Find(ctx, filter, options.Find().SetSort(bson.M{"createdAt": -1}))
	if err != nil {
		config.ErrorStatus("failed to get sessions", http.StatusNotFound, w, err)
		return
	}
	if sessions == nil {
		sessions = []models.Session{}
	}

	// hide the student's real identity from anonymous bookings
	if p.Role == models.RoleDoctor {
		for i := range sessions {
			if sessions[i].IsAnonymous {
				sessions[i].Student = primitive.NilObjectID
			}
		}
	}

	b, err := json.Marshal(sessions)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// SessionByIDHandler returns a single session. Only the two parties may read
// it.
func (s Session) SessionByIDHandler(w http.ResponseWriter, r *http.Request) {
	p, err := api.PrincipalFrom(r)
	if err != nil {
		config.ErrorStatus("not permitted", http.StatusForbidden, w, err)
		return
	}

	sID, err := primitive.ObjectIDFromHex(mux.Vars(r)["session_id"])
	if err != nil {
		config.ErrorStatus("failed to get objectID from hex", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	session, err := s.DB.FindOne(ctx, bson.M{"_id": sID})
	if err != nil {
		config.ErrorStatus("failed to get session by ID", http.StatusNotFound, w, err)
		return
	}
	if !session.IsParty(p.ID) {
		config.ErrorStatus("not a session participant", http.StatusForbidden, w, fmt.Errorf("user %s is not part of session %s", p.ID.Hex(), sID.Hex()))
		return
	}

	b, err := json.Marshal(session)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// UpdateSessionStatusHandler moves a session through the booking workflow.
// Only the assigned doctor may respond, transitions are restricted to the
// workflow graph, and the chat room identifier is assigned exactly once on
// the first approval.
func (s Session) UpdateSessionStatusHandler(w http.ResponseWriter, r *http.Request) {
	p, err := api.RequireRole(r, models.RoleDoctor)
	if err != nil {
		config.ErrorStatus("only doctors can respond to sessions", http.StatusForbidden, w, err)
		return
	}

	sID, err := primitive.ObjectIDFromHex(mux.Vars(r)["session_id"])
	if err != nil {
		config.ErrorStatus("failed to get objectID from hex", http.StatusBadRequest, w, err)
		return
	}

	var req models.UpdateSessionStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	if err := s.Validate.Struct(req); err != nil {
		config.ErrorStatus("invalid status payload", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	session, err := s.DB.FindOne(ctx, bson.M{"_id": sID})
	if err != nil {
		config.ErrorStatus("failed to get session by ID", http.StatusNotFound, w, err)
		return
	}
	if session.Doctor != p.ID {
		config.ErrorStatus("not the assigned doctor", http.StatusForbidden, w, fmt.Errorf("doctor %s is not assigned to session %s", p.ID.Hex(), sID.Hex()))
		return
	}
	if !session.Status.CanTransitionTo(req.Status) {
		config.ErrorStatus("invalid status transition", http.StatusBadRequest, w, fmt.Errorf("cannot move session from %s to %s", session.Status, req.Status))
		return
	}

	now := time.Now()
	set := bson.M{
		"status":       req.Status,
		"responseDate": primitive.NewDateTimeFromTime(now),
		"updatedAt":    primitive.NewDateTimeFromTime(now),
	}
	if req.DoctorResponse != "" {
		set["doctorResponse"] = req.DoctorResponse
	}
	// the chat room is created on the first approval and never regenerated
	if req.Status == models.SessionApproved && session.ChatRoom == "" {
		set["chatRoom"] = fmt.Sprintf("chat_%s_%d", session.ID.Hex(), now.UnixMilli())
	}

	if _, err := s.DB.UpdateOne(ctx, bson.M{"_id": sID}, bson.M{"$set": set}); err != nil {
		config.ErrorStatus("failed to update session", http.StatusInternalServerError, w, err)
		return
	}

	updated, err := s.DB.FindOne(ctx, bson.M{"_id": sID})
	if err != nil {
		config.ErrorStatus("failed to get updated session", http.StatusInternalServerError, w, err)
		return
	}

	sendNotificationToUser(updated.Student.Hex(), map[string]interface{}{
		"type":      "session-updated",
		"sessionId": updated.ID.Hex(),
		"status":    updated.Status,
	})

	b, err := json.Marshal(updated)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}
