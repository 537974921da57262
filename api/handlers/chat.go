package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/neuroconnect/neuro-connect-api/api"
	"github.com/neuroconnect/neuro-connect-api/config"
	"github.com/neuroconnect/neuro-connect-api/databases"
	"github.com/neuroconnect/neuro-connect-api/models"
)

// maxAttachmentSize caps uploaded chat attachments at 10MB
const maxAttachmentSize = 10 << 20

// Chat exposes the message history and attachment upload endpoints. Text
// messages normally travel over the Socket.IO relay; this HTTP surface exists
// for history reads and multipart uploads.
type Chat struct {
	SDB       databases.SessionDatabase
	MDB       databases.MessageDatabase
	Relay     *ChatRelay
	UploadDir string
}

// HistoryHandler returns the full message history for a session in ascending
// creation order. Only the two session parties may read it.
func (c Chat) HistoryHandler(w http.ResponseWriter, r *http.Request) {
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

	session, err := c.SDB.FindOne(ctx, bson.M{"_id": sID})
	if err != nil {
		config.ErrorStatus("failed to get session by ID", http.StatusNotFound, w, err)
		return
	}
	if !session.IsParty(p.ID) {
		config.ErrorStatus("not a session participant", http.StatusForbidden, w, fmt.Errorf("user %s is not part of session %s", p.ID.Hex(), sID.Hex()))
		return
	}

	messages, err := c.MDB.Find(ctx, bson.M{"session": sID},
		options.Find().SetSort(bson.M{"createdAt": 1}))
	if err != nil {
		config.ErrorStatus("failed to get messages", http.StatusNotFound, w, err)
		return
	}
	if messages == nil {
		messages = []models.Message{}
	}

	b, err := json.Marshal(messages)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// SendMessageHandler accepts a multipart message with an optional file
// attachment, stores the file on local disk under a generated name, persists
// the message and broadcasts it to the session chat room.
func (c Chat) SendMessageHandler(w http.ResponseWriter, r *http.Request) {
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

	if err := r.ParseMultipartForm(maxAttachmentSize); err != nil {
		config.ErrorStatus("failed to parse multipart form", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	session, err := c.SDB.FindOne(ctx, bson.M{"_id": sID})
	if err != nil {
		config.ErrorStatus("failed to get session by ID", http.StatusNotFound, w, err)
		return
	}
	if !session.IsParty(p.ID) {
		config.ErrorStatus("not a session participant", http.StatusForbidden, w, fmt.Errorf("user %s is not part of session %s", p.ID.Hex(), sID.Hex()))
		return
	}
	if session.Status != models.SessionApproved || session.ChatRoom == "" {
		config.ErrorStatus("session is not open for chat", http.StatusBadRequest, w, fmt.Errorf("session %s is %s", sID.Hex(), session.Status))
		return
	}

	message := models.Message{
		ID:        primitive.NewObjectID(),
		Session:   session.ID,
		Sender:    p.ID,
		Content:   r.FormValue("content"),
		Type:      models.MessageText,
		CreatedAt: primitive.NewDateTimeFromTime(time.Now()),
	}
	message.SenderName = c.Relay.senderName(ctx, session, p.ID)

	file, header, err := r.FormFile("file")
	if err == nil {
		defer file.Close()

		storedName := uuid.New().String() + filepath.Ext(header.Filename)
		dst, err := os.Create(filepath.Join(c.UploadDir, storedName))
		if err != nil {
			config.ErrorStatus("failed to store attachment", http.StatusInternalServerError, w, err)
			return
		}
		defer dst.Close()
		size, err := io.Copy(dst, file)
		if err != nil {
			config.ErrorStatus("failed to store attachment", http.StatusInternalServerError, w, err)
			return
		}

		message.Type = attachmentType(header.Filename)
		message.FilePath = "/uploads/" + storedName
		message.FileName = header.Filename
		message.FileSize = size
	}

	if message.Content == "" && message.Type == models.MessageText {
		config.ErrorStatus("message content is required", http.StatusBadRequest, w, fmt.Errorf("empty message"))
		return
	}

	if _, err := c.MDB.InsertOne(ctx, message); err != nil {
		config.ErrorStatus("failed to create message", http.StatusInternalServerError, w, err)
		return
	}

	c.Relay.EmitNewMessage(session.ChatRoom, message)

	b, err := json.Marshal(message)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	w.Write(b)
}

func attachmentType(filename string) models.MessageType {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".png", ".jpg", ".jpeg", ".gif", ".webp":
		return models.MessageImage
	default:
		return models.MessageFile
	}
}
