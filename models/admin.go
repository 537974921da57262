package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Admin holds the structure for the admins collection in mongo. Admin
// accounts are provisioned out of band and never self-register.
type Admin struct {
	ID        primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	Email     string             `json:"email" bson:"email"`
	Password  string             `json:"-" bson:"password"`
	Roles     []string           `json:"roles" bson:"roles"`
	Active    bool               `json:"active" bson:"active"`
	CreatedAt primitive.DateTime `json:"createdAt" bson:"createdAt"`
}

// VerifyDoctorRequest is the admin decision payload for a pending doctor
type VerifyDoctorRequest struct {
	Status VerificationStatus `json:"status" validate:"required,oneof=approved rejected"`
}

// PlatformStats are the live counters shown on the admin dashboard
type PlatformStats struct {
	TotalUsers       int64 `json:"totalUsers" bson:"totalUsers"`
	TotalStudents    int64 `json:"totalStudents" bson:"totalStudents"`
	TotalDoctors     int64 `json:"totalDoctors" bson:"totalDoctors"`
	ActiveDoctors    int64 `json:"activeDoctors" bson:"activeDoctors"`
	PendingDoctors   int64 `json:"pendingDoctors" bson:"pendingDoctors"`
	TotalSessions    int64 `json:"totalSessions" bson:"totalSessions"`
	PendingSessions  int64 `json:"pendingSessions" bson:"pendingSessions"`
	ApprovedSessions int64 `json:"approvedSessions" bson:"approvedSessions"`
}

// StatsSnapshot is a persisted daily copy of the platform counters, used by
// the dashboard history view
type StatsSnapshot struct {
	ID        primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	Stats     PlatformStats      `json:"stats" bson:"stats"`
	CreatedAt primitive.DateTime `json:"createdAt" bson:"createdAt"`
}
