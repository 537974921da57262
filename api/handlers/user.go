package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"github.com/neuroconnect/neuro-connect-api/api"
	"github.com/neuroconnect/neuro-connect-api/config"
	"github.com/neuroconnect/neuro-connect-api/databases"
	"github.com/neuroconnect/neuro-connect-api/models"
)

// User exposes the account endpoints
type User struct {
	DB       databases.UserDatabase
	Validate *validator.Validate
}

// RegisterHandler creates a student or doctor account. Students are active
// immediately; doctors start inactive with a pending verification status and
// cannot take sessions until an admin approves them.
func (u User) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	if err := u.Validate.Struct(req); err != nil {
		config.ErrorStatus("invalid registration payload", http.StatusBadRequest, w, err)
		return
	}
	if req.Role == models.RoleDoctor {
		if req.Specialization == "" || req.Qualifications == "" || req.LicenseNumber == "" {
			http.Error(w, `{"success": false, "message": "Doctors must provide specialization, qualifications and license number"}`, http.StatusBadRequest)
			return
		}
	}

	req.Email = strings.TrimSpace(strings.ToLower(req.Email))

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	if _, err := u.DB.FindOne(ctx, bson.M{"email": req.Email}); err == nil {
		http.Error(w, `{"success": false, "message": "Email already exists"}`, http.StatusBadRequest)
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		config.ErrorStatus("failed to hash password", http.StatusInternalServerError, w, err)
		return
	}

	now := primitive.NewDateTimeFromTime(time.Now())
	newUser := models.User{
		ID:        primitive.NewObjectID(),
		Name:      req.Name,
		Email:     req.Email,
		Password:  string(hashed),
		Role:      req.Role,
		IsActive:  req.Role == models.RoleStudent,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if req.Role == models.RoleDoctor {
		newUser.VerificationStatus = models.VerificationPending
		newUser.Specialization = req.Specialization
		newUser.Qualifications = req.Qualifications
		newUser.Experience = req.Experience
		newUser.LicenseNumber = req.LicenseNumber
		newUser.Documents = req.Documents
	}

	if _, err := u.DB.InsertOne(ctx, newUser); err != nil {
		config.ErrorStatus("failed to create user", http.StatusInternalServerError, w, err)
		return
	}

	b, err := json.Marshal(newUser)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	w.Write(b)
}

// ActiveDoctorsHandler lists verified, active doctors for the booking page
func (u User) ActiveDoctorsHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	doctors, err := u.DB.Find(ctx, bson.M{
		"role":     models.RoleDoctor,
		"isActive": true,
	})
	if err != nil {
		config.ErrorStatus("failed to get doctors", http.StatusNotFound, w, err)
		return
	}
	// mongo returns null if no results are found, this will set it to
	// an empty array if no results are found
	if doctors == nil {
		doctors = []models.User{}
	}

	b, err := json.Marshal(doctors)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// UpdateProfileHandler lets the caller edit their own profile fields. Role,
// activation and verification state never move through this endpoint.
func (u User) UpdateProfileHandler(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["user_id"]

	uID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from hex", http.StatusBadRequest, w, err)
		return
	}

	p, err := api.PrincipalFrom(r)
	if err != nil {
		config.ErrorStatus("failed to resolve caller", http.StatusUnauthorized, w, err)
		return
	}
	if p.ID != uID {
		http.Error(w, `{"success": false, "message": "You can only update your own profile"}`, http.StatusForbidden)
		return
	}

	var req models.UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	set := bson.M{"updatedAt": primitive.NewDateTimeFromTime(time.Now())}
	if req.Name != "" {
		set["name"] = req.Name
	}
	if req.ProfileImage != "" {
		set["profileImage"] = req.ProfileImage
	}
	if req.Specialization != "" {
		set["specialization"] = req.Specialization
	}
	if req.Qualifications != "" {
		set["qualifications"] = req.Qualifications
	}
	if req.Experience != "" {
		set["experience"] = req.Experience
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	if _, err := u.DB.UpdateOne(ctx, bson.M{"_id": uID}, bson.M{"$set": set}); err != nil {
		config.ErrorStatus("failed to update profile", http.StatusInternalServerError, w, err)
		return
	}

	dbResp, err := u.DB.FindOne(ctx, bson.M{"_id": uID})
	if err != nil {
		config.ErrorStatus("failed to get user by ID", http.StatusNotFound, w, err)
		return
	}

	b, err := json.Marshal(dbResp)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// UserHandler returns a user by ID
func (u User) UserHandler(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["user_id"]

	uID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from hex", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	dbResp, err := u.DB.FindOne(ctx, bson.M{"_id": uID})
	if err != nil {
		config.ErrorStatus("failed to get user by ID", http.StatusNotFound, w, err)
		return
	}

	b, err := json.Marshal(dbResp)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}
