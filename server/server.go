package server

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"stockrag/internal/types"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Be careful with this in production
	},
}

// IngestRunner triggers one fetch-and-ingest pass over the news feed.
type IngestRunner interface {
	RunOnce(ctx context.Context) (processed, failed int, err error)
}

type Config struct {
	Port string
}

// Server exposes the answering pipeline over HTTP and WebSocket.
type Server struct {
	config Config
	engine types.Answerer
	runner IngestRunner
	log    *log.Logger
}

func New(config Config, engine types.Answerer, runner IngestRunner, logger *log.Logger) *Server {
	if config.Port == "" {
		config.Port = "8080"
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Server{config: config, engine: engine, runner: runner, log: logger}
}

type chatRequest struct {
	Query  string `json:"query"`
	Symbol string `json:"symbol,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/chat", s.handleChat)
	mux.HandleFunc("/api/v1/ingest/news", s.handleIngest)
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	return mux
}

func (s *Server) ListenAndServe() error {
	s.log.Info("starting server", "port", s.config.Port)
	return http.ListenAndServe(":"+s.config.Port, s.Handler())
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
		return
	}

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if req.Query == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "query is required"})
		return
	}

	result, err := s.engine.Answer(r.Context(), req.Query, req.Symbol)
	if err != nil {
		s.log.Error("answer failed", "query", req.Query, "err", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to generate answer"})
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// handleIngest kicks off an ingestion run in the background and returns
// immediately; run results land in the log.
func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
		return
	}

	go func() {
		processed, failed, err := s.runner.RunOnce(context.Background())
		if err != nil {
			s.log.Error("triggered ingestion failed", "err", err)
			return
		}
		s.log.Info("triggered ingestion finished", "processed", processed, "failed", failed)
	}()

	writeJSON(w, http.StatusAccepted, map[string]string{"status": "ingestion_started"})
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Error("websocket upgrade failed", "err", err)
		return
	}
	defer conn.Close()

	for {
		var req chatRequest
		if err := conn.ReadJSON(&req); err != nil {
			break
		}
		if req.Query == "" {
			conn.WriteJSON(errorResponse{Error: "query is required"})
			continue
		}

		result, err := s.engine.Answer(r.Context(), req.Query, req.Symbol)
		if err != nil {
			s.log.Error("answer failed", "query", req.Query, "err", err)
			conn.WriteJSON(errorResponse{Error: "failed to generate answer"})
			continue
		}
		if err := conn.WriteJSON(result); err != nil {
			break
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
