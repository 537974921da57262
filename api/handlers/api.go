package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	socketio "github.com/googollee/go-socket.io"
	"go.uber.org/zap"

	"github.com/neuroconnect/neuro-connect-api/api"
	"github.com/neuroconnect/neuro-connect-api/api/scheduler"
	"github.com/neuroconnect/neuro-connect-api/config"
	"github.com/neuroconnect/neuro-connect-api/databases"
	"github.com/neuroconnect/neuro-connect-api/intent"
	"github.com/neuroconnect/neuro-connect-api/llm"
	"github.com/neuroconnect/neuro-connect-api/models"
)

// App stores the router and db connection, so it can be reused
type App struct {
	Router    *mux.Router
	Config    config.Config
	Socket    *socketio.Server
	Scheduler *scheduler.Scheduler
	dbHelper  databases.DatabaseHelper
}

// New creates a new mux router and all the routes
func (a *App) New() *mux.Router {
	// setup go-guardian for middleware
	m := api.MiddlewareDB{DB: databases.NewUserDatabase(a.dbHelper)}
	m.SetupGoGuardian()

	r := mux.NewRouter()

	validate := validator.New()

	u := User{DB: databases.NewUserDatabase(a.dbHelper), Validate: validate}
	s := Session{DB: databases.NewSessionDatabase(a.dbHelper), UDB: databases.NewUserDatabase(a.dbHelper), Validate: validate}
	relay := NewChatRelay(
		databases.NewSessionDatabase(a.dbHelper),
		databases.NewMessageDatabase(a.dbHelper),
		databases.NewUserDatabase(a.dbHelper),
	)
	c := Chat{
		SDB:       databases.NewSessionDatabase(a.dbHelper),
		MDB:       databases.NewMessageDatabase(a.dbHelper),
		Relay:     relay,
		UploadDir: a.Config.UploadDir,
	}
	p := Post{DB: databases.NewPostDatabase(a.dbHelper), UDB: databases.NewUserDatabase(a.dbHelper), Validate: validate}
	ai := AIChat{LLM: llm.NewOpenAIClient(), Classifier: intent.Default()}
	admin := Admin{
		ADB:      databases.NewAdminDatabase(a.dbHelper),
		UDB:      databases.NewUserDatabase(a.dbHelper),
		SDB:      databases.NewSessionDatabase(a.dbHelper),
		SnapDB:   databases.NewStatsSnapshotDatabase(a.dbHelper),
		Validate: validate,
	}

	// healthchex
	r.HandleFunc("/health", healthCheckHandler)

	// real-time chat relay
	a.Socket = relay.Server()
	r.Handle("/socket.io/", a.Socket)

	// booking notifications over raw websocket
	r.HandleFunc("/ws/notifications", HandleNotificationsWebSocket)

	// uploaded attachments are served from local disk
	r.PathPrefix("/uploads/").Handler(http.StripPrefix("/uploads/", http.FileServer(http.Dir(a.Config.UploadDir))))

	apiCreate := r.PathPrefix("/api/v1").Subrouter()

	apiCreate.Handle("/auth/register", http.HandlerFunc(u.RegisterHandler)).Methods("POST")
	apiCreate.Handle("/auth/token", api.Middleware(http.HandlerFunc(m.CreateToken))).Methods("POST")
	apiCreate.Handle("/auth/logout", api.Middleware(http.HandlerFunc(api.RevokeToken))).Methods("DELETE")

	apiCreate.Handle("/doctors", api.Middleware(http.HandlerFunc(u.ActiveDoctorsHandler))).Methods("GET")
	apiCreate.Handle("/users/{user_id}", api.Middleware(http.HandlerFunc(u.UserHandler))).Methods("GET")
	apiCreate.Handle("/users/{user_id}", api.Middleware(http.HandlerFunc(u.UpdateProfileHandler))).Methods("PATCH")

	apiCreate.Handle("/sessions", api.Middleware(http.HandlerFunc(s.CreateSessionHandler))).Methods("POST")
	apiCreate.Handle("/sessions/my-sessions", api.Middleware(http.HandlerFunc(s.MySessionsHandler))).Methods("GET")
	apiCreate.Handle("/sessions/{session_id}", api.Middleware(http.HandlerFunc(s.SessionByIDHandler))).Methods("GET")
	apiCreate.Handle("/sessions/{session_id}/status", api.Middleware(http.HandlerFunc(s.UpdateSessionStatusHandler))).Methods("PATCH")

	apiCreate.Handle("/chat/{session_id}", api.Middleware(http.HandlerFunc(c.HistoryHandler))).Methods("GET")
	apiCreate.Handle("/chat/{session_id}/message", api.Middleware(http.HandlerFunc(c.SendMessageHandler))).Methods("POST")

	apiCreate.Handle("/posts", api.Middleware(http.HandlerFunc(p.PostsHandler))).Methods("GET")
	apiCreate.Handle("/posts", api.Middleware(http.HandlerFunc(p.CreatePostHandler))).Methods("POST")
	apiCreate.Handle("/posts/{post_id}/like", api.Middleware(http.HandlerFunc(p.ToggleLikeHandler))).Methods("POST")
	apiCreate.Handle("/posts/{post_id}/comment", api.Middleware(http.HandlerFunc(p.AddCommentHandler))).Methods("POST")

	apiCreate.Handle("/ai-chat", api.Middleware(http.HandlerFunc(ai.ChatHandler))).Methods("POST")

	apiCreate.Handle("/admin/login", http.HandlerFunc(admin.LoginHandler)).Methods("POST")
	apiCreate.Handle("/admin/doctors/pending", api.AdminMiddleware(http.HandlerFunc(admin.PendingDoctorsHandler))).Methods("GET")
	apiCreate.Handle("/admin/doctors", api.AdminMiddleware(http.HandlerFunc(admin.DoctorsHandler))).Methods("GET")
	apiCreate.Handle("/admin/doctors/{doctor_id}/verify", api.AdminMiddleware(http.HandlerFunc(admin.VerifyDoctorHandler))).Methods("PATCH")
	apiCreate.Handle("/admin/users", api.AdminMiddleware(http.HandlerFunc(admin.UsersHandler))).Methods("GET")
	apiCreate.Handle("/admin/stats", api.AdminMiddleware(http.HandlerFunc(admin.StatsHandler))).Methods("GET")
	apiCreate.Handle("/admin/stats/history", api.AdminMiddleware(http.HandlerFunc(admin.StatsHistoryHandler))).Methods("GET")

	return r
}

// Initialize is invoked by main to connect with the database and create a router
func (a *App) Initialize() error {

	client, err := databases.NewClient(&a.Config)
	if err != nil {
		// if we fail to create a new database client, then kill the pod
		zap.S().With(err).Error("failed to create new client")
		return err
	}

	a.dbHelper = databases.NewDatabase(&a.Config, client)
	err = client.Connect()
	if err != nil {
		// if we fail to connect to the database, then kill the pod
		zap.S().With(err).Error("failed to connect to database")
		return err
	}
	zap.S().Info("neuro-connect-api has connected to the database")

	if err := os.MkdirAll(a.Config.UploadDir, 0o755); err != nil {
		zap.S().With(err).Error("failed to create upload directory")
		return err
	}

	// initialize api router
	a.initializeRoutes()

	go func() {
		if err := a.Socket.Serve(); err != nil {
			zap.S().Errorw("socket.io server stopped", "error", err)
		}
	}()

	a.Scheduler = scheduler.NewScheduler(
		databases.NewUserDatabase(a.dbHelper),
		databases.NewSessionDatabase(a.dbHelper),
		databases.NewStatsSnapshotDatabase(a.dbHelper),
	)
	a.Scheduler.Start()

	return nil
}

func (a *App) initializeRoutes() {
	a.Router = a.New()
}

func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	b, _ := json.Marshal(models.HealthCheckResponse{
		Alive: true,
	})
	_, _ = io.WriteString(w, string(b))
}
