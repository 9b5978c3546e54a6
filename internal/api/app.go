package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/handlers"

	"github.com/minchat/minchat/internal/chat"
	"github.com/minchat/minchat/internal/config"
	"github.com/minchat/minchat/internal/database"
)

type App struct {
	log            *log.Logger
	db             database.ChatRepository
	engine         *chat.Engine
	gateway        *chat.Gateway
	oracle         chat.MembershipOracle
	reporter       chat.ErrorReporter
	validate       *validator.Validate
	srv            *http.Server
	signingKey     []byte
	allowedOrigins []string
	uploadDir      string
}

func NewApp(
	mux *http.ServeMux,
	logger *log.Logger,
	db database.ChatRepository,
	engine *chat.Engine,
	gateway *chat.Gateway,
	oracle chat.MembershipOracle,
	reporter chat.ErrorReporter,
	cfg *config.Config,
) *App {
	s := &App{
		log:            logger,
		db:             db,
		engine:         engine,
		gateway:        gateway,
		oracle:         oracle,
		reporter:       reporter,
		validate:       validator.New(),
		signingKey:     cfg.SigningKey,
		allowedOrigins: cfg.AllowedOrigins,
		uploadDir:      cfg.UploadDir,
	}

	mux.HandleFunc("POST /api/auth/register", s.createAccount)
	mux.HandleFunc("POST /api/auth/login", s.login)
	mux.Handle("GET /api/auth/session", s.authMiddleware(s.session))
	mux.Handle("GET /api/auth/logout", s.authMiddleware(s.logout))
	mux.Handle("GET /api/users", s.authMiddleware(s.listUsers))
	mux.Handle("POST /api/messages", s.authMiddleware(s.sendMessage))
	mux.Handle("PUT /api/messages/{id}", s.authMiddleware(s.editMessage))
	mux.Handle("DELETE /api/messages/{id}", s.authMiddleware(s.deleteMessage))
	mux.Handle("GET /api/conversations/{userId}", s.authMiddleware(s.getConversation))
	mux.Handle("POST /api/groups", s.authMiddleware(s.createGroup))
	mux.Handle("GET /api/groups", s.authMiddleware(s.listGroups))
	mux.Handle("PUT /api/groups/{id}", s.authMiddleware(s.renameGroup))
	mux.Handle("DELETE /api/groups/{id}", s.authMiddleware(s.deleteGroup))
	mux.Handle("POST /api/groups/{id}/members", s.authMiddleware(s.addMember))
	mux.Handle("DELETE /api/groups/{id}/members/{userId}", s.authMiddleware(s.removeMember))
	mux.Handle("PUT /api/groups/{id}/members/{userId}", s.authMiddleware(s.updateMemberAccess))
	mux.Handle("POST /api/groups/{id}/messages", s.authMiddleware(s.sendGroupMessage))
	mux.Handle("GET /api/groups/{id}/messages", s.authMiddleware(s.getGroupMessages))
	mux.Handle("GET /api/logs", s.authMiddleware(s.listLogs))
	mux.Handle("GET /ws", s.authMiddleware(s.serveWs))
	mux.Handle("GET /uploads/", http.StripPrefix("/uploads/", http.FileServer(http.Dir(cfg.UploadDir))))

	h := handlers.CORS(
		handlers.MaxAge(3600),
		handlers.AllowedOrigins(cfg.AllowedOrigins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Origin", "Content-Type", "Accept", "Authorization"}),
		handlers.AllowCredentials(),
	)(mux)

	h = s.errorHandler(h)

	s.srv = &http.Server{
		Addr:    cfg.ServerAddr,
		Handler: h,
	}

	return s
}

func (s *App) Start() error {
	s.log.Printf("starting server on %s\n", s.srv.Addr)
	return s.srv.ListenAndServe()
}

func (s *App) Shutdown(ctx context.Context) error {
	s.log.Println("shutting down HTTP server...")
	if err := s.srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	return nil
}

func (s *App) writeJson(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if v == nil {
		return
	}

	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Printf("json encode: %v", err)
	}
}
