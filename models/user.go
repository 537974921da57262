package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Role identifies what a user is allowed to do on the platform
type Role string

// All roles a user account can hold
const (
	RoleStudent Role = "student"
	RoleDoctor  Role = "doctor"
	RoleAdmin   Role = "admin"
)

// VerificationStatus tracks the admin decision on a doctor account
type VerificationStatus string

// Verification states; pending is the only non-terminal state
const (
	VerificationPending  VerificationStatus = "pending"
	VerificationApproved VerificationStatus = "approved"
	VerificationRejected VerificationStatus = "rejected"
)

// User holds the structure for the users collection in mongo. Doctors carry
// the professional fields; students and admins leave them empty.
type User struct {
	ID                 primitive.ObjectID  `json:"_id" bson:"_id,omitempty"`
	Name               string              `json:"name" bson:"name"`
	Email              string              `json:"email" bson:"email"`
	Password           string              `json:"-" bson:"password"`
	Role               Role                `json:"role" bson:"role"`
	IsActive           bool                `json:"isActive" bson:"isActive"`
	VerificationStatus VerificationStatus  `json:"verificationStatus,omitempty" bson:"verificationStatus,omitempty"`
	VerificationDate   *primitive.DateTime `json:"verificationDate,omitempty" bson:"verificationDate,omitempty"`
	VerifiedBy         primitive.ObjectID  `json:"verifiedBy,omitempty" bson:"verifiedBy,omitempty"`
	Specialization     string              `json:"specialization,omitempty" bson:"specialization,omitempty"`
	Qualifications     string              `json:"qualifications,omitempty" bson:"qualifications,omitempty"`
	Experience         string              `json:"experience,omitempty" bson:"experience,omitempty"`
	LicenseNumber      string              `json:"licenseNumber,omitempty" bson:"licenseNumber,omitempty"`
	Documents          []string            `json:"documents,omitempty" bson:"documents,omitempty"`
	ProfileImage       string              `json:"profileImage,omitempty" bson:"profileImage,omitempty"`
	CreatedAt          primitive.DateTime  `json:"createdAt" bson:"createdAt"`
	UpdatedAt          primitive.DateTime  `json:"updatedAt" bson:"updatedAt"`
}

// RegisterUserRequest is the payload for account creation. Doctor-specific
// fields are validated conditionally in the handler.
type RegisterUserRequest struct {
	Name           string   `json:"name" validate:"required"`
	Email          string   `json:"email" validate:"required,email"`
	Password       string   `json:"password" validate:"required,min=6"`
	Role           Role     `json:"role" validate:"required,oneof=student doctor"`
	Specialization string   `json:"specialization"`
	Qualifications string   `json:"qualifications"`
	Experience     string   `json:"experience"`
	LicenseNumber  string   `json:"licenseNumber"`
	Documents      []string `json:"documents"`
}

// UpdateProfileRequest carries the self-service editable profile fields.
// Role, activation and verification state only move through their own flows.
type UpdateProfileRequest struct {
	Name           string `json:"name"`
	ProfileImage   string `json:"profileImage"`
	Specialization string `json:"specialization"`
	Qualifications string `json:"qualifications"`
	Experience     string `json:"experience"`
}
