package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// SessionStatus is the booking workflow state of a session
type SessionStatus string

// Session workflow states
const (
	SessionPending   SessionStatus = "pending"
	SessionApproved  SessionStatus = "approved"
	SessionRejected  SessionStatus = "rejected"
	SessionCompleted SessionStatus = "completed"
	SessionCancelled SessionStatus = "cancelled"
)

// CanTransitionTo reports whether the workflow allows moving from s to next.
// pending moves to approved or rejected; approved moves to completed or
// cancelled; rejected, completed and cancelled are terminal.
func (s SessionStatus) CanTransitionTo(next SessionStatus) bool {
	switch s {
	case SessionPending:
		return next == SessionApproved || next == SessionRejected
	case SessionApproved:
		return next == SessionCompleted || next == SessionCancelled
	default:
		return false
	}
}

// Session holds the structure for the sessions collection in mongo. ChatRoom
// is assigned exactly once, on the first transition into approved, and is
// never regenerated.
type Session struct {
	ID                primitive.ObjectID  `json:"_id" bson:"_id,omitempty"`
	Student           primitive.ObjectID  `json:"student" bson:"student"`
	Doctor            primitive.ObjectID  `json:"doctor" bson:"doctor"`
	Title             string              `json:"title" bson:"title"`
	Description       string              `json:"description" bson:"description"`
	IsAnonymous       bool                `json:"isAnonymous" bson:"isAnonymous"`
	AnonymousName     string              `json:"anonymousName,omitempty" bson:"anonymousName,omitempty"`
	PreferredDateTime primitive.DateTime  `json:"preferredDateTime" bson:"preferredDateTime"`
	Status            SessionStatus       `json:"status" bson:"status"`
	ChatRoom          string              `json:"chatRoom,omitempty" bson:"chatRoom,omitempty"`
	Notes             string              `json:"notes" bson:"notes"`
	DoctorResponse    string              `json:"doctorResponse" bson:"doctorResponse"`
	ResponseDate      *primitive.DateTime `json:"responseDate,omitempty" bson:"responseDate,omitempty"`
	CreatedAt         primitive.DateTime  `json:"createdAt" bson:"createdAt"`
	UpdatedAt         primitive.DateTime  `json:"updatedAt" bson:"updatedAt"`
}

// IsParty reports whether userID is the student or the doctor of the session
func (s *Session) IsParty(userID primitive.ObjectID) bool {
	return s.Student == userID || s.Doctor == userID
}

// StudentDisplayName is the student name shown to the doctor, honoring the
// anonymity flag
func (s *Session) StudentDisplayName(realName string) string {
	if !s.IsAnonymous {
		return realName
	}
	if s.AnonymousName != "" {
		return s.AnonymousName
	}
	return "Anonymous Student"
}

// CreateSessionRequest is the payload students submit to book a session
type CreateSessionRequest struct {
	DoctorID          string `json:"doctorId" validate:"required"`
	Title             string `json:"title" validate:"required"`
	Description       string `json:"description" validate:"required"`
	IsAnonymous       bool   `json:"isAnonymous"`
	AnonymousName     string `json:"anonymousName"`
	PreferredDateTime string `json:"preferredDateTime" validate:"required"`
}

// UpdateSessionStatusRequest is the payload the assigned doctor submits to
// move a session through the workflow
type UpdateSessionStatusRequest struct {
	Status         SessionStatus `json:"status" validate:"required,oneof=approved rejected completed cancelled"`
	DoctorResponse string        `json:"doctorResponse"`
}
