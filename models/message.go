package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// MessageType distinguishes plain text from attachment messages
type MessageType string

// Supported message types
const (
	MessageText  MessageType = "text"
	MessageImage MessageType = "image"
	MessageFile  MessageType = "file"
)

// Message holds the structure for the messages collection in mongo. The
// sender name is denormalized so chat history renders without a second
// lookup. Attachment fields are set only for image and file messages; the
// file path is relative and resolved against the serving origin.
type Message struct {
	ID         primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	Session    primitive.ObjectID `json:"session" bson:"session"`
	Sender     primitive.ObjectID `json:"sender" bson:"sender"`
	SenderName string             `json:"senderName" bson:"senderName"`
	Content    string             `json:"content" bson:"content"`
	Type       MessageType        `json:"type" bson:"type"`
	FilePath   string             `json:"filePath,omitempty" bson:"filePath,omitempty"`
	FileName   string             `json:"fileName,omitempty" bson:"fileName,omitempty"`
	FileSize   int64              `json:"fileSize,omitempty" bson:"fileSize,omitempty"`
	CreatedAt  primitive.DateTime `json:"createdAt" bson:"createdAt"`
}
