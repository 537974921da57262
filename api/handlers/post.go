package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/neuroconnect/neuro-connect-api/api"
	"github.com/neuroconnect/neuro-connect-api/config"
	"github.com/neuroconnect/neuro-connect-api/databases"
	"github.com/neuroconnect/neuro-connect-api/models"
)

// Post exposes the community feed endpoints
type Post struct {
	DB       databases.PostDatabase
	UDB      databases.UserDatabase
	Validate *validator.Validate
}

// Limit for the community feed page size
const postPageLimit = 20

// PostsHandler lists feed posts newest first with limit/page pagination.
// Anonymous posts keep their stored display name; the author id is cleared
// so the identity never reaches the client.
func (p Post) PostsHandler(w http.ResponseWriter, r *http.Request) {
	page := getPage(r)

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	posts, err := p.DB.FindPage(ctx, bson.M{}, postPageLimit, page)
	if err != nil {
		config.ErrorStatus("failed to get posts", http.StatusNotFound, w, err)
		return
	}
	if posts == nil {
		posts = []models.Post{}
	}

	for i := range posts {
		if posts[i].IsAnonymous {
			posts[i].Author = primitive.NilObjectID
		}
	}

	b, err := json.Marshal(posts)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// CreatePostHandler creates a feed post. Any active account may post;
// anonymous posts store a fixed display name.
func (p Post) CreatePostHandler(w http.ResponseWriter, r *http.Request) {
	principal, err := api.PrincipalFrom(r)
	if err != nil {
		config.ErrorStatus("not permitted", http.StatusForbidden, w, err)
		return
	}

	var req models.CreatePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	if err := p.Validate.Struct(req); err != nil {
		config.ErrorStatus("invalid post payload", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	author, err := p.UDB.FindOne(ctx, bson.M{"_id": principal.ID})
	if err != nil {
		config.ErrorStatus("failed to get user by ID", http.StatusNotFound, w, err)
		return
	}
	if !author.IsActive {
		http.Error(w, `{"success": false, "message": "Account is not active"}`, http.StatusForbidden)
		return
	}

	authorName := author.Name
	if req.IsAnonymous {
		authorName = "Anonymous"
	}

	now := primitive.NewDateTimeFromTime(time.Now())
	post := models.Post{
		ID:          primitive.NewObjectID(),
		Author:      principal.ID,
		AuthorName:  authorName,
		IsAnonymous: req.IsAnonymous,
		Content:     req.Content,
		Likes:       []models.Like{},
		Comments:    []models.Comment{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if _, err := p.DB.InsertOne(ctx, post); err != nil {
		config.ErrorStatus("failed to create post", http.StatusInternalServerError, w, err)
		return
	}

	b, err := json.Marshal(post)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	w.Write(b)
}

// ToggleLikeHandler likes a post, or removes the caller's like if it already
// exists
func (p Post) ToggleLikeHandler(w http.ResponseWriter, r *http.Request) {
	principal, err := api.PrincipalFrom(r)
	if err != nil {
		config.ErrorStatus("not permitted", http.StatusForbidden, w, err)
		return
	}

	pID, err := primitive.ObjectIDFromHex(mux.Vars(r)["post_id"])
	if err != nil {
		config.ErrorStatus("failed to get objectID from hex", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	post, err := p.DB.FindOne(ctx, bson.M{"_id": pID})
	if err != nil {
		config.ErrorStatus("failed to get post by ID", http.StatusNotFound, w, err)
		return
	}

	liked := false
	for _, like := range post.Likes {
		if like.User == principal.ID {
			liked = true
			break
		}
	}

	update := bson.M{
		"$push": bson.M{"likes": models.Like{
			User:      principal.ID,
			Timestamp: primitive.NewDateTimeFromTime(time.Now()),
		}},
	}
	if liked {
		update = bson.M{
			"$pull": bson.M{"likes": bson.M{"user": principal.ID}},
		}
	}

	if _, err := p.DB.UpdateOne(ctx, bson.M{"_id": pID}, update); err != nil {
		config.ErrorStatus("failed to update post likes", http.StatusInternalServerError, w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"success": true}`))
}

// AddCommentHandler appends a comment to a post
func (p Post) AddCommentHandler(w http.ResponseWriter, r *http.Request) {
	principal, err := api.PrincipalFrom(r)
	if err != nil {
		config.ErrorStatus("not permitted", http.StatusForbidden, w, err)
		return
	}

	pID, err := primitive.ObjectIDFromHex(mux.Vars(r)["post_id"])
	if err != nil {
		config.ErrorStatus("failed to get objectID from hex", http.StatusBadRequest, w, err)
		return
	}

	var req models.CreateCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	if err := p.Validate.Struct(req); err != nil {
		config.ErrorStatus("invalid comment payload", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	user, err := p.UDB.FindOne(ctx, bson.M{"_id": principal.ID})
	if err != nil {
		config.ErrorStatus("failed to get user by ID", http.StatusNotFound, w, err)
		return
	}

	comment := models.Comment{
		ID:        primitive.NewObjectID(),
		User:      principal.ID,
		UserName:  user.Name,
		Content:   req.Content,
		Timestamp: primitive.NewDateTimeFromTime(time.Now()),
	}

	res, err := p.DB.UpdateOne(ctx, bson.M{"_id": pID}, bson.M{
		"$push": bson.M{"comments": comment},
		"$set":  bson.M{"updatedAt": primitive.NewDateTimeFromTime(time.Now())},
	})
	if err != nil {
		config.ErrorStatus("failed to add comment", http.StatusInternalServerError, w, err)
		return
	}
	if res.MatchedCount == 0 {
		config.ErrorStatus("failed to get post by ID", http.StatusNotFound, w, err)
		return
	}

	b, err := json.Marshal(comment)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	w.Write(b)
}

// getPage reads the 1-based page query parameter
func getPage(r *http.Request) int {
	v, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || v < 1 {
		return 1
	}
	return v
}
