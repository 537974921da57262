package handlers

import (
	"context"
	"fmt"
	"strings"
	"time"

	socketio "github.com/googollee/go-socket.io"
	"github.com/googollee/go-socket.io/engineio"
	"github.com/googollee/go-socket.io/engineio/transport"
	"github.com/googollee/go-socket.io/engineio/transport/polling"
	"github.com/googollee/go-socket.io/engineio/transport/websocket"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/neuroconnect/neuro-connect-api/api"
	"github.com/neuroconnect/neuro-connect-api/databases"
	"github.com/neuroconnect/neuro-connect-api/models"
)

// ChatRelay owns the Socket.IO server that carries session chat. Connections
// authenticate with the same bearer tokens as the HTTP routes, rooms are
// keyed by the session chat room identifier, and every delivered message is
// persisted before it is broadcast.
type ChatRelay struct {
	SDB databases.SessionDatabase
	MDB databases.MessageDatabase
	UDB databases.UserDatabase

	server *socketio.Server
}

// NewChatRelay builds the relay and registers all chat events
func NewChatRelay(sdb databases.SessionDatabase, mdb databases.MessageDatabase, udb databases.UserDatabase) *ChatRelay {
	cr := &ChatRelay{SDB: sdb, MDB: mdb, UDB: udb}

	cr.server = socketio.NewServer(&engineio.Options{
		Transports: []transport.Transport{
			polling.Default,
			websocket.Default,
		},
	})

	cr.server.OnConnect("/", cr.onConnect)
	cr.server.OnEvent("/", "join-session", cr.onJoinSession)
	cr.server.OnEvent("/", "send-message", cr.onSendMessage)
	cr.server.OnEvent("/", "typing", cr.onTyping)
	cr.server.OnEvent("/", "stop-typing", cr.onStopTyping)

	cr.server.OnError("/", func(s socketio.Conn, e error) {
		zap.S().Errorw("socket.io error", "error", e)
	})

	cr.server.OnDisconnect("/", func(s socketio.Conn, reason string) {
		zap.S().Debugw("socket.io client disconnected", "id", s.ID(), "reason", reason)
	})

	return cr
}

// Server returns the underlying Socket.IO server for mounting on the router
func (cr *ChatRelay) Server() *socketio.Server {
	return cr.server
}

// onConnect authenticates the handshake with the bearer token store the HTTP
// routes use. Unauthenticated connections are rejected before any event can
// fire.
func (cr *ChatRelay) onConnect(s socketio.Conn) error {
	token := connToken(s)
	p, err := api.AuthenticateToken(token)
	if err != nil {
		zap.S().Warnw("socket.io handshake rejected", "id", s.ID(), "error", err)
		return fmt.Errorf("unauthorized")
	}
	s.SetContext(p)
	zap.S().Debugw("socket.io client connected", "id", s.ID(), "user", p.ID.Hex())
	return nil
}

func connToken(s socketio.Conn) string {
	header := s.RemoteHeader().Get("Authorization")
	if after, found := strings.CutPrefix(header, "Bearer "); found {
		return after
	}
	u := s.URL()
	return u.Query().Get("token")
}

func connPrincipal(s socketio.Conn) (*api.Principal, bool) {
	p, ok := s.Context().(*api.Principal)
	return p, ok
}

// onJoinSession puts the connection into the session's chat room. The caller
// must be one of the two session parties and the session must be approved;
// anything else gets an error event on this connection only.
func (cr *ChatRelay) onJoinSession(s socketio.Conn, msg map[string]interface{}) {
	p, ok := connPrincipal(s)
	if !ok {
		s.Emit("error", map[string]interface{}{"message": "unauthorized"})
		return
	}
	sessionID, _ := msg["sessionId"].(string)
	session, err := cr.loadSession(sessionID)
	if err != nil {
		s.Emit("error", map[string]interface{}{"message": "session not found"})
		return
	}
	if !session.IsParty(p.ID) {
		zap.S().Warnw("join-session rejected, not a participant", "user", p.ID.Hex(), "session", sessionID)
		s.Emit("error", map[string]interface{}{"message": "not a session participant"})
		return
	}
	if session.Status != models.SessionApproved || session.ChatRoom == "" {
		s.Emit("error", map[string]interface{}{"message": "session is not open for chat"})
		return
	}

	s.Join(session.ChatRoom)
	s.Emit("joined-session", map[string]interface{}{
		"sessionId": session.ID.Hex(),
		"chatRoom":  session.ChatRoom,
	})
}

// onSendMessage persists a text message and broadcasts it to the session
// room. The room check relies on join-session having verified membership.
func (cr *ChatRelay) onSendMessage(s socketio.Conn, msg map[string]interface{}) {
	p, ok := connPrincipal(s)
	if !ok {
		s.Emit("error", map[string]interface{}{"message": "unauthorized"})
		return
	}
	sessionID, _ := msg["sessionId"].(string)
	content, _ := msg["content"].(string)
	if content == "" {
		s.Emit("error", map[string]interface{}{"message": "message content is required"})
		return
	}

	session, err := cr.loadSession(sessionID)
	if err != nil {
		s.Emit("error", map[string]interface{}{"message": "session not found"})
		return
	}
	if !session.IsParty(p.ID) || session.ChatRoom == "" {
		s.Emit("error", map[string]interface{}{"message": "not a session participant"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), api.QueryTimeout)
	defer cancel()

	message := models.Message{
		ID:         primitive.NewObjectID(),
		Session:    session.ID,
		Sender:     p.ID,
		SenderName: cr.senderName(ctx, session, p.ID),
		Content:    content,
		Type:       models.MessageText,
		CreatedAt:  primitive.NewDateTimeFromTime(time.Now()),
	}
	if _, err := cr.MDB.InsertOne(ctx, message); err != nil {
		zap.S().Errorw("failed to persist chat message", "session", sessionID, "error", err)
		s.Emit("error", map[string]interface{}{"message": "failed to send message"})
		return
	}

	cr.server.BroadcastToRoom("/", session.ChatRoom, "new-message", message)
}

func (cr *ChatRelay) onTyping(s socketio.Conn, msg map[string]interface{}) {
	cr.relayTyping(s, msg, "user-typing")
}

func (cr *ChatRelay) onStopTyping(s socketio.Conn, msg map[string]interface{}) {
	cr.relayTyping(s, msg, "user-stop-typing")
}

// relayTyping forwards a typing indicator to the other party in the session
// room without persisting anything. The sender never gets its own indicator
// echoed back.
func (cr *ChatRelay) relayTyping(s socketio.Conn, msg map[string]interface{}, event string) {
	p, ok := connPrincipal(s)
	if !ok {
		return
	}
	sessionID, _ := msg["sessionId"].(string)
	session, err := cr.loadSession(sessionID)
	if err != nil || !session.IsParty(p.ID) || session.ChatRoom == "" {
		return
	}
	payload := map[string]interface{}{
		"sessionId": session.ID.Hex(),
		"userId":    p.ID.Hex(),
	}
	cr.server.ForEach("/", session.ChatRoom, func(c socketio.Conn) {
		if c.ID() == s.ID() {
			return
		}
		c.Emit(event, payload)
	})
}

// EmitNewMessage broadcasts a message that was persisted outside the relay,
// such as an attachment uploaded over HTTP
func (cr *ChatRelay) EmitNewMessage(chatRoom string, message models.Message) {
	cr.server.BroadcastToRoom("/", chatRoom, "new-message", message)
}

func (cr *ChatRelay) loadSession(sessionID string) (*models.Session, error) {
	sID, err := primitive.ObjectIDFromHex(sessionID)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), api.QueryTimeout)
	defer cancel()
	return cr.SDB.FindOne(ctx, bson.M{"_id": sID})
}

// senderName resolves the display name stored on the message. Students in
// anonymous sessions appear under the session's anonymous name.
func (cr *ChatRelay) senderName(ctx context.Context, session *models.Session, sender primitive.ObjectID) string {
	user, err := cr.UDB.FindOne(ctx, bson.M{"_id": sender})
	if err != nil {
		return "Unknown"
	}
	if sender == session.Student && session.IsAnonymous {
		return session.StudentDisplayName(user.Name)
	}
	return user.Name
}
