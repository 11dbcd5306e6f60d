package web

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"github.com/steelproxy/twitta/internal/bot"
	"github.com/steelproxy/twitta/internal/config"
	"github.com/steelproxy/twitta/internal/models"
	"github.com/steelproxy/twitta/internal/storage"
)

// BotFactory builds a fresh agent run. Each start gets a new bot so the
// dedup set and run start time reset, matching a process restart.
type BotFactory func() *bot.Bot

// Server is the administrative console: it starts and stops the agent,
// serves status, manages the watched-account list, and tails the log.
// The agent always runs headless under the console; there is no
// operator terminal to prompt.
type Server struct {
	cfg     *config.Config
	factory BotFactory
	archive storage.ArchiveInterface
	logPath string

	mu            sync.Mutex
	current       *bot.Bot
	running       bool
	startedAt     time.Time
	tweetCount    int
	lastReply     time.Time
	errorCount    int
	statusMessage string
}

// NewServer creates the console. archive may be nil; the report
// endpoints then report that archiving is not configured.
func NewServer(cfg *config.Config, factory BotFactory, archive storage.ArchiveInterface, logPath string) *Server {
	return &Server{
		cfg:     cfg,
		factory: factory,
		archive: archive,
		logPath: logPath,
	}
}

// Router builds the console's route table.
func (s *Server) Router() *mux.Router {
	router := mux.NewRouter()

	router.HandleFunc("/", s.handleDashboard).Methods("GET")
	router.HandleFunc("/health", s.handleHealth).Methods("GET")

	router.HandleFunc("/api/start", s.handleStart).Methods("POST")
	router.HandleFunc("/api/stop", s.handleStop).Methods("POST")
	router.HandleFunc("/api/status", s.handleStatus).Methods("GET")

	router.HandleFunc("/api/accounts", s.handleListAccounts).Methods("GET")
	router.HandleFunc("/api/accounts", s.handleAddAccount).Methods("POST")
	router.HandleFunc("/api/accounts/{username}", s.handleRemoveAccount).Methods("DELETE")

	router.HandleFunc("/api/logs", s.handleLogs).Methods("GET")
	router.HandleFunc("/api/reports", s.handleListReports).Methods("GET")
	router.HandleFunc("/api/reports/{name}", s.handleGetReport).Methods("GET")

	return router
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy","timestamp":"` + time.Now().Format(time.RFC3339) + `"}`))
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		writeJSON(w, http.StatusBadRequest, map[string]string{"status": "error", "message": "Bot is already running"})
		return
	}

	b := s.factory()
	b.SetHooks(bot.Hooks{
		OnStatus: s.observeStatus,
		OnCount:  s.observeCount,
		OnError:  s.observeError,
	})

	s.current = b
	s.running = true
	s.startedAt = time.Now()
	s.statusMessage = "Bot is running"

	// The agent worker owns its blocking sleeps; it must never run on a
	// request-handling goroutine.
	go b.Run(context.Background(), s.cfg.Snapshot, false)

	writeJSON(w, http.StatusOK, map[string]string{"status": "success", "message": "Bot started successfully"})
}

func (s *Server) handleStop(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		writeJSON(w, http.StatusBadRequest, map[string]string{"status": "error", "message": "Bot is not running"})
		return
	}

	// Honored at the top of the next cycle; the in-progress cycle runs
	// to completion.
	s.current.RequestStop()
	s.running = false
	s.statusMessage = "Bot is stopped"

	writeJSON(w, http.StatusOK, map[string]string{"status": "success", "message": "Bot stopped successfully"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	uptime := "Not started"
	if !s.startedAt.IsZero() && s.running {
		uptime = time.Since(s.startedAt).Round(time.Second).String()
	}

	lastReplyAgo := "Never"
	if !s.lastReply.IsZero() {
		lastReplyAgo = time.Since(s.lastReply).Round(time.Second).String()
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"running":        s.running,
		"uptime":         uptime,
		"tweet_count":    s.tweetCount,
		"last_tweet":     lastReplyAgo,
		"error_count":    s.errorCount,
		"status_message": s.statusMessage,
	})
}

func (s *Server) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.cfg.Snapshot())
}

func (s *Server) handleAddAccount(w http.ResponseWriter, r *http.Request) {
	var account models.Account
	if err := json.NewDecoder(r.Body).Decode(&account); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"status": "error", "message": "invalid account payload"})
		return
	}

	if err := s.cfg.AddAccount(account); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"status": "error", "message": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "success", "message": fmt.Sprintf("Added @%s", account.Username)})
}

func (s *Server) handleRemoveAccount(w http.ResponseWriter, r *http.Request) {
	username := mux.Vars(r)["username"]

	if err := s.cfg.RemoveAccount(username); err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"status": "error", "message": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "success", "message": fmt.Sprintf("Removed @%s", username)})
}

func (s *Server) handleLogs(w http.ResponseWriter, r *http.Request) {
	lines := 100
	if v := r.URL.Query().Get("lines"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			lines = parsed
		}
	}

	data, err := os.ReadFile(s.logPath)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"status": "error", "message": "failed to read log file"})
		return
	}

	all := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(all) > lines {
		all = all[len(all)-lines:]
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"lines": all})
}

func (s *Server) handleListReports(w http.ResponseWriter, r *http.Request) {
	if s.archive == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"status": "error", "message": "report archive is not configured"})
		return
	}

	names, err := s.archive.List("report-")
	if err != nil {
		logrus.Errorf("Failed to list archived reports: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"status": "error", "message": "failed to list reports"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"reports": names})
}

func (s *Server) handleGetReport(w http.ResponseWriter, r *http.Request) {
	if s.archive == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"status": "error", "message": "report archive is not configured"})
		return
	}

	data, err := s.archive.Retrieve(mux.Vars(r)["name"])
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"status": "error", "message": "report not found"})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// Observer hooks registered on the running bot. They mirror dispatch
// events into the dashboard fields; best-effort snapshots are fine.
func (s *Server) observeStatus(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statusMessage = message
}

func (s *Server) observeCount(handled int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tweetCount = handled
	s.lastReply = time.Now()
}

func (s *Server) observeError(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errorCount++
	s.statusMessage = message
}

// Summary builds the monitoring view used by the daily digest email.
func (s *Server) Summary() *models.Summary {
	s.mu.Lock()
	defer s.mu.Unlock()

	uptime := "Not started"
	if !s.startedAt.IsZero() && s.running {
		uptime = time.Since(s.startedAt).Round(time.Second).String()
	}

	return &models.Summary{
		GeneratedAt:   time.Now(),
		Running:       s.running,
		Uptime:        uptime,
		ReplyCount:    s.tweetCount,
		LastReply:     s.lastReply,
		ErrorCount:    s.errorCount,
		StatusMessage: s.statusMessage,
	}
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logrus.Errorf("Failed to encode response: %v", err)
	}
}
