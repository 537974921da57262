package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/mux"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/neuroconnect/neuro-connect-api/api"
	"github.com/neuroconnect/neuro-connect-api/api/scheduler"
	"github.com/neuroconnect/neuro-connect-api/config"
	"github.com/neuroconnect/neuro-connect-api/databases"
	"github.com/neuroconnect/neuro-connect-api/models"
	templates "github.com/neuroconnect/neuro-connect-api/templates/html"
)

// Admin exposes the admin dashboard endpoints. Admin accounts live in their
// own collection and authenticate with short-lived JWTs instead of the
// bearer token store.
type Admin struct {
	ADB      databases.AdminDatabase
	UDB      databases.UserDatabase
	SDB      databases.SessionDatabase
	SnapDB   databases.StatsSnapshotDatabase
	Validate *validator.Validate
}

// statsHistoryLimit caps how many daily snapshots the dashboard chart loads
const statsHistoryLimit = int64(90)

// LoginHandler authenticates an admin and issues a signed JWT with the admin
// scope, valid for 24 hours
func (a Admin) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	admin, err := a.ADB.FindOne(ctx, bson.M{"email": req.Email, "active": true})
	if err != nil {
		config.ErrorStatus("invalid credentials", http.StatusUnauthorized, w, err)
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(admin.Password), []byte(req.Password)); err != nil {
		config.ErrorStatus("invalid credentials", http.StatusUnauthorized, w, err)
		return
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   admin.ID.Hex(),
		"email": admin.Email,
		"roles": admin.Roles,
		"scope": "admin",
		"typ":   "access",
		"iat":   now.Unix(),
		"exp":   now.Add(24 * time.Hour).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(os.Getenv("JWT_SECRET")))
	if err != nil {
		config.ErrorStatus("failed to sign token", http.StatusInternalServerError, w, err)
		return
	}

	b, err := json.Marshal(map[string]interface{}{
		"token": signed,
		"_id":   admin.ID.Hex(),
		"email": admin.Email,
	})
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// PendingDoctorsHandler lists doctors awaiting a verification decision
func (a Admin) PendingDoctorsHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	doctors, err := a.UDB.Find(ctx, bson.M{
		"role":               models.RoleDoctor,
		"verificationStatus": models.VerificationPending,
	})
	if err != nil {
		config.ErrorStatus("failed to get pending doctors", http.StatusNotFound, w, err)
		return
	}
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

// DoctorsHandler lists all doctor accounts regardless of status
func (a Admin) DoctorsHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	doctors, err := a.UDB.Find(ctx, bson.M{"role": models.RoleDoctor})
	if err != nil {
		config.ErrorStatus("failed to get doctors", http.StatusNotFound, w, err)
		return
	}
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

// UsersHandler lists every user account for the dashboard
func (a Admin) UsersHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	users, err := a.UDB.Find(ctx, bson.M{})
	if err != nil {
		config.ErrorStatus("failed to get users", http.StatusNotFound, w, err)
		return
	}
	if users == nil {
		users = []models.User{}
	}

	b, err := json.Marshal(users)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// VerifyDoctorHandler records the admin decision on a pending doctor. The
// decision is terminal; approval also activates the account so the doctor
// appears in the booking list. The doctor is notified by email in the
// background.
func (a Admin) VerifyDoctorHandler(w http.ResponseWriter, r *http.Request) {
	p, err := api.PrincipalFrom(r)
	if err != nil {
		config.ErrorStatus("not permitted", http.StatusForbidden, w, err)
		return
	}

	dID, err := primitive.ObjectIDFromHex(mux.Vars(r)["doctor_id"])
	if err != nil {
		config.ErrorStatus("failed to get objectID from hex", http.StatusBadRequest, w, err)
		return
	}

	var req models.VerifyDoctorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	if err := a.Validate.Struct(req); err != nil {
		config.ErrorStatus("invalid verification payload", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	doctor, err := a.UDB.FindOne(ctx, bson.M{"_id": dID, "role": models.RoleDoctor})
	if err != nil {
		config.ErrorStatus("failed to get doctor by ID", http.StatusNotFound, w, err)
		return
	}
	if doctor.VerificationStatus != models.VerificationPending {
		config.ErrorStatus("doctor has already been reviewed", http.StatusBadRequest, w, fmt.Errorf("doctor %s is %s", dID.Hex(), doctor.VerificationStatus))
		return
	}

	now := primitive.NewDateTimeFromTime(time.Now())
	set := bson.M{
		"verificationStatus": req.Status,
		"verificationDate":   now,
		"verifiedBy":         p.ID,
		"isActive":           req.Status == models.VerificationApproved,
		"updatedAt":          now,
	}

	if _, err := a.UDB.UpdateOne(ctx, bson.M{"_id": dID}, bson.M{"$set": set}); err != nil {
		config.ErrorStatus("failed to update doctor", http.StatusInternalServerError, w, err)
		return
	}

	// notify the doctor in the background; the decision stands even if the
	// email fails
	go sendVerificationDecisionEmail(doctor.Email, doctor.Name, req.Status)

	w.WriteHeader(http.StatusOK)
	w.Write([]byte(fmt.Sprintf(`{"success": true, "status": "%s"}`, req.Status)))
}

func sendVerificationDecisionEmail(email, name string, status models.VerificationStatus) {
	defer func() {
		if r := recover(); r != nil {
			zap.S().Errorw("panic in sendVerificationDecisionEmail", "email", email, "panic", r)
		}
	}()

	sendgridAPIKey := os.Getenv("SENDGRID_API_KEY")
	if sendgridAPIKey == "" {
		zap.S().Warnw("SENDGRID_API_KEY not set, skipping verification email", "email", email)
		return
	}

	subject := "Your Neuro-Connect verification was approved"
	body := fmt.Sprintf("Hi %s,\n\nYour doctor verification request has been approved. You can now accept session bookings from students.", name)
	if status == models.VerificationRejected {
		subject = "Your Neuro-Connect verification was not approved"
		body = fmt.Sprintf("Hi %s,\n\nYour doctor verification request was not approved. Please contact support if you believe this is a mistake.", name)
	}

	from := mail.NewEmail("Neuro-Connect", "no-reply@neuro-connect.app")
	to := mail.NewEmail(name, email)
	htmlContent := templates.RenderVerificationDecision(subject, body)
	message := mail.NewSingleEmail(from, subject, to, body, htmlContent)

	client := sendgrid.NewSendClient(sendgridAPIKey)
	response, err := client.Send(message)
	if err != nil {
		zap.S().Errorw("failed to send verification email", "email", email, "error", err)
		return
	}
	if response.StatusCode >= 200 && response.StatusCode < 300 {
		zap.S().Infow("verification email sent", "email", email, "statusCode", response.StatusCode)
	} else {
		zap.S().Warnw("verification email sent with non-2xx status", "email", email, "statusCode", response.StatusCode, "body", response.Body)
	}
}

// StatsHandler returns the live platform counters for the dashboard
func (a Admin) StatsHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	stats, err := scheduler.CollectStats(ctx, a.UDB, a.SDB)
	if err != nil {
		config.ErrorStatus("failed to collect stats", http.StatusInternalServerError, w, err)
		return
	}

	b, err := json.Marshal(stats)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// StatsHistoryHandler returns the persisted daily snapshots, newest first,
// for the dashboard history chart
func (a Admin) StatsHistoryHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	limit := statsHistoryLimit
	snapshots, err := a.SnapDB.Find(ctx, bson.M{}, &options.FindOptions{
		Sort:  bson.M{"createdAt": -1},
		Limit: &limit,
	})
	if err != nil {
		config.ErrorStatus("failed to get stats history", http.StatusInternalServerError, w, err)
		return
	}
	if snapshots == nil {
		snapshots = []models.StatsSnapshot{}
	}

	b, err := json.Marshal(snapshots)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}
