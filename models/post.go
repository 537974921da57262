package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Like records one user liking a post
type Like struct {
	User      primitive.ObjectID `json:"user" bson:"user"`
	Timestamp primitive.DateTime `json:"timestamp" bson:"timestamp"`
}

// Comment is an inline comment on a post
type Comment struct {
	ID        primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	User      primitive.ObjectID `json:"user" bson:"user"`
	UserName  string             `json:"userName" bson:"userName"`
	Content   string             `json:"content" bson:"content"`
	Timestamp primitive.DateTime `json:"timestamp" bson:"timestamp"`
}

// Post holds the structure for the posts collection in mongo
type Post struct {
	ID          primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	Author      primitive.ObjectID `json:"author" bson:"author"`
	AuthorName  string             `json:"authorName" bson:"authorName"`
	IsAnonymous bool               `json:"isAnonymous" bson:"isAnonymous"`
	Content     string             `json:"content" bson:"content"`
	Likes       []Like             `json:"likes" bson:"likes"`
	Comments    []Comment          `json:"comments" bson:"comments"`
	CreatedAt   primitive.DateTime `json:"createdAt" bson:"createdAt"`
	UpdatedAt   primitive.DateTime `json:"updatedAt" bson:"updatedAt"`
}

// CreatePostRequest is the payload for creating a feed post
type CreatePostRequest struct {
	Content     string `json:"content" validate:"required"`
	IsAnonymous bool   `json:"isAnonymous"`
}

// CreateCommentRequest is the payload for commenting on a post
type CreateCommentRequest struct {
	Content string `json:"content" validate:"required"`
}
