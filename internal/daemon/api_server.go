package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"marquee/internal/config"
	"marquee/internal/curator"
	"marquee/internal/logging"
	"marquee/internal/mood"
	"marquee/internal/persona"
	"marquee/internal/services"
	"marquee/internal/services/tmdb"
)

// recommender runs one curator session. The curator orchestrator satisfies
// it; tests substitute stubs.
type recommender interface {
	Run(ctx context.Context, input curator.SessionInput) (*curator.Response, error)
}

// metadataClient is the passthrough surface of the TMDB client used by the
// search, trending, and watch-provider endpoints.
type metadataClient interface {
	SearchMovie(ctx context.Context, query string, opts tmdb.SearchOptions) (*tmdb.SearchResponse, error)
	Trending(ctx context.Context, window string) (*tmdb.SearchResponse, error)
	WatchProviders(ctx context.Context, movieID int64) (*tmdb.WatchProvidersResponse, error)
	Region() string
}

type historyStore interface {
	RecentTitles(ctx context.Context, sessionKey string, limit int) ([]string, error)
	RecordLineup(ctx context.Context, sessionID, sessionKey, curatorID string, titles []string) error
}

type apiServer struct {
	bind        string
	logger      *slog.Logger
	rec         recommender
	metadata    metadataClient
	history     historyStore
	recentLimit int
	llmReady    bool

	listener net.Listener
	server   *http.Server
}

func newAPIServer(bind string, rec recommender, metadata metadataClient, store historyStore, cfg *config.Config, logger *slog.Logger) *apiServer {
	if logger == nil {
		logger = logging.NewNop()
	}
	srv := &apiServer{
		bind:        strings.TrimSpace(bind),
		logger:      logger,
		rec:         rec,
		metadata:    metadata,
		history:     store,
		recentLimit: cfg.History.RecentLimit,
		llmReady:    cfg.LLMConfigured(),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/health", srv.handleHealth)
	mux.HandleFunc("/api/curators", srv.handleCurators)
	mux.HandleFunc("/api/curators/", srv.handleRecommend)
	mux.HandleFunc("/api/search", srv.handleSearch)
	mux.HandleFunc("/api/trending", srv.handleTrending)
	mux.HandleFunc("/api/movies/", srv.handleWatchProviders)

	srv.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return srv
}

func (s *apiServer) start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("api server error", logging.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	s.logger.Info("api server listening", logging.String("address", listener.Addr().String()))
	return nil
}

func (s *apiServer) stop() {
	if s.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}
	if s.listener != nil {
		_ = s.listener.Close()
		s.listener = nil
	}
}

func (s *apiServer) addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

type healthResponse struct {
	Status         string `json:"status"`
	LLMConfigured  bool   `json:"llm_configured"`
	TMDBConfigured bool   `json:"tmdb_configured"`
	HistoryEnabled bool   `json:"history_enabled"`
	Curators       int    `json:"curators"`
}

func (s *apiServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	s.writeJSON(w, http.StatusOK, healthResponse{
		Status:         "ok",
		LLMConfigured:  s.llmReady,
		TMDBConfigured: s.metadata != nil,
		HistoryEnabled: s.history != nil,
		Curators:       len(persona.All()),
	})
}

type curatorInfo struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Emoji     string `json:"emoji"`
	TasteBand string `json:"taste_band"`
	MinYear   int    `json:"min_year"`
	MaxYear   int    `json:"max_year,omitempty"`
	Bias      string `json:"bias"`
}

type curatorsResponse struct {
	Curators []curatorInfo `json:"curators"`
	MoodKeys []string      `json:"mood_keys"`
}

func (s *apiServer) handleCurators(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	all := persona.All()
	infos := make([]curatorInfo, 0, len(all))
	for _, p := range all {
		infos = append(infos, curatorInfo{
			ID:        p.ID,
			Name:      p.Name,
			Emoji:     p.Emoji,
			TasteBand: string(p.Band),
			MinYear:   p.MinYear,
			MaxYear:   p.MaxYear,
			Bias:      p.Bias,
		})
	}
	s.writeJSON(w, http.StatusOK, curatorsResponse{Curators: infos, MoodKeys: mood.Keys()})
}

type recommendRequest struct {
	Selected       []curator.ContextSelection `json:"selected"`
	PreviousTitles []string                   `json:"previous_titles"`
	RefinePreset   string                     `json:"refine_preset"`
	MinYear        int                        `json:"min_year"`
	SessionKey     string                     `json:"session_key"`
}

func (s *apiServer) handleRecommend(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	rest := strings.TrimPrefix(r.URL.Path, "/api/curators/")
	curatorID, ok := strings.CutSuffix(rest, "/recommend")
	if !ok || curatorID == "" || strings.Contains(curatorID, "/") {
		s.writeError(w, http.StatusNotFound, "not found")
		return
	}

	var req recommendRequest
	if r.Body != nil {
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			s.writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	requestID := uuid.NewString()
	ctx := services.WithRequestID(r.Context(), requestID)
	w.Header().Set("X-Request-ID", requestID)

	sessionKey := strings.TrimSpace(req.SessionKey)
	if sessionKey == "" {
		sessionKey = strings.TrimSpace(r.Header.Get("X-Session-Key"))
	}
	previous := req.PreviousTitles
	if s.history != nil && sessionKey != "" {
		recorded, err := s.history.RecentTitles(ctx, sessionKey, s.recentLimit)
		if err != nil {
			s.logger.Warn("history lookup failed", logging.Error(err))
		} else {
			previous = append(previous, recorded...)
		}
	}

	resp, err := s.rec.Run(ctx, curator.SessionInput{
		CuratorID:      curatorID,
		Selected:       req.Selected,
		PreviousTitles: previous,
		RefinePreset:   req.RefinePreset,
		MinYear:        req.MinYear,
	})
	if err != nil {
		status := services.HTTPStatus(err)
		s.logger.Error("curator session failed",
			logging.String(logging.FieldCurator, curatorID),
			logging.String("request_id", requestID),
			logging.Int("status", status),
			logging.Error(err),
		)
		s.writeError(w, status, err.Error())
		return
	}

	if s.history != nil && sessionKey != "" {
		if err := s.history.RecordLineup(ctx, resp.SessionID, sessionKey, resp.Curator.ID, resp.Titles()); err != nil {
			s.logger.Warn("history record failed", logging.Error(err))
		}
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *apiServer) handleSearch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if s.metadata == nil {
		s.writeError(w, http.StatusInternalServerError, "metadata provider not configured")
		return
	}
	query := strings.TrimSpace(r.URL.Query().Get("query"))
	if query == "" {
		s.writeError(w, http.StatusBadRequest, "query parameter required")
		return
	}
	year, _ := strconv.Atoi(r.URL.Query().Get("year"))

	resp, err := s.metadata.SearchMovie(r.Context(), query, tmdb.SearchOptions{Year: year})
	if err != nil {
		s.writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *apiServer) handleTrending(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if s.metadata == nil {
		s.writeError(w, http.StatusInternalServerError, "metadata provider not configured")
		return
	}
	resp, err := s.metadata.Trending(r.Context(), r.URL.Query().Get("window"))
	if err != nil {
		s.writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *apiServer) handleWatchProviders(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if s.metadata == nil {
		s.writeError(w, http.StatusInternalServerError, "metadata provider not configured")
		return
	}
	rest := strings.TrimPrefix(r.URL.Path, "/api/movies/")
	idStr, ok := strings.CutSuffix(rest, "/watch-providers")
	if !ok || idStr == "" || strings.Contains(idStr, "/") {
		s.writeError(w, http.StatusNotFound, "not found")
		return
	}
	movieID, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || movieID <= 0 {
		s.writeError(w, http.StatusBadRequest, "invalid movie id")
		return
	}

	resp, err := s.metadata.WatchProviders(r.Context(), movieID)
	if err != nil {
		s.writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *apiServer) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Warn("api response encode failed", logging.Error(err))
	}
}

func (s *apiServer) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}
