package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"smena/internal/config"
	"smena/internal/database"
	"smena/internal/metrics"
	"smena/internal/models"
	"smena/internal/worktime"
)

// HTTPServer — служебный HTTP API для операторов: health-check, метрики
// и read-only выборки по работникам и сменам.
type HTTPServer struct {
	cfg    config.APIConfig
	db     *database.DB
	server *http.Server
	auth   *HTTPAuth
	logger *zerolog.Logger
}

func NewHTTPServer(cfg config.APIConfig, db *database.DB, logger *zerolog.Logger) *HTTPServer {
	mux := http.NewServeMux()
	srv := &HTTPServer{cfg: cfg, db: db, logger: logger}
	srv.auth = NewHTTPAuth(cfg)

	mux.HandleFunc("/healthz", srv.handleHealthz)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/api/v1/workers", srv.handleWorkers)
	mux.HandleFunc("/api/v1/sessions", srv.handleSessions)
	mux.HandleFunc("/api/v1/sessions/", srv.handleSessionByID)

	handler := srv.loggingMiddleware(srv.auth.Wrap(mux))

	srv.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
	}

	return srv
}

func (s *HTTPServer) Start() error {
	if s.server == nil {
		return fmt.Errorf("http server is not initialized")
	}
	s.logger.Info().Str("addr", s.server.Addr).Msg("HTTP API запущен")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *HTTPServer) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Handler возвращает корневой обработчик сервера. Используется в тестах.
func (s *HTTPServer) Handler() http.Handler {
	return s.server.Handler
}

func (s *HTTPServer) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if err := s.db.PingContext(r.Context()); err != nil {
		writeError(w, http.StatusServiceUnavailable, "database unavailable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *HTTPServer) handleWorkers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	page, perPage, err := pageParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	workers, err := s.db.ListWorkers(r.Context(), page, perPage)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list workers")
		return
	}
	total, err := s.db.CountWorkers(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to count workers")
		return
	}

	items := make([]map[string]any, 0, len(workers))
	for _, worker := range workers {
		count, err := s.db.CountSessionsForWorker(r.Context(), worker.ID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to count sessions")
			return
		}
		items = append(items, map[string]any{
			"id":          worker.ID,
			"telegram_id": worker.TelegramID,
			"created_at":  worker.CreatedAt.UTC(),
			"sessions":    count,
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"workers": items,
		"total":   total,
		"page":    page,
	})
}

func (s *HTTPServer) handleSessions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	page, perPage, err := pageParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var (
		sessions []*models.WorkSession
		total    int
	)

	if rawWorker := strings.TrimSpace(r.URL.Query().Get("worker_id")); rawWorker != "" {
		workerID, err := strconv.ParseInt(rawWorker, 10, 64)
		if err != nil || workerID <= 0 {
			writeError(w, http.StatusBadRequest, "invalid worker_id")
			return
		}
		sessions, err = s.db.ListSessionsForWorker(r.Context(), workerID, page, perPage)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to list sessions")
			return
		}
		total, err = s.db.CountSessionsForWorker(r.Context(), workerID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to count sessions")
			return
		}
	} else {
		sessions, err = s.db.ListAllSessions(r.Context(), page, perPage)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to list sessions")
			return
		}
		total, err = s.db.CountAllSessions(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to count sessions")
			return
		}
	}

	items := make([]map[string]any, 0, len(sessions))
	for _, session := range sessions {
		items = append(items, sessionPayload(session))
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"sessions": items,
		"total":    total,
		"page":     page,
	})
}

func (s *HTTPServer) handleSessionByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	const prefix = "/api/v1/sessions/"
	rawID := strings.TrimPrefix(r.URL.Path, prefix)
	id, err := strconv.ParseInt(strings.TrimSpace(rawID), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid session id")
		return
	}

	session, err := s.db.GetSessionByID(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}

	writeJSON(w, http.StatusOK, sessionPayload(session))
}

// sessionPayload собирает JSON-представление сессии: сырые UTC-времена
// плюс локальные строки и расчётные поля для удобства операторов.
func sessionPayload(session *models.WorkSession) map[string]any {
	now := time.Now().UTC()
	payload := map[string]any{
		"id":                 session.ID,
		"worker_id":          session.WorkerID,
		"worker_telegram_id": session.WorkerTelegramID,
		"position":           session.Position,
		"latitude":           session.Latitude,
		"longitude":          session.Longitude,
		"started_at":         session.CreatedAt.UTC(),
		"started_at_local":   worktime.FormatLocalSeconds(session.CreatedAt),
		"ended":              session.IsEnded(),
		"elapsed_seconds":    int64(worktime.Elapsed(session, now).Seconds()),
	}
	if session.EndedAt != nil {
		payload["ended_at"] = session.EndedAt.UTC()
		payload["ended_at_local"] = worktime.FormatLocalSeconds(*session.EndedAt)
	}
	if session.HourRateKopecks != nil {
		payload["hour_rate_kopecks"] = *session.HourRateKopecks
		payload["payment_kopecks"] = worktime.PaymentKopecks(session, now)
	}
	return payload
}

func pageParams(r *http.Request) (page, perPage int, err error) {
	page = 1
	perPage = models.DefaultPaginationSize

	if raw := strings.TrimSpace(r.URL.Query().Get("page")); raw != "" {
		page, err = strconv.Atoi(raw)
		if err != nil || page <= 0 {
			return 0, 0, fmt.Errorf("invalid page")
		}
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("per_page")); raw != "" {
		perPage, err = strconv.Atoi(raw)
		if err != nil || perPage <= 0 || perPage > 500 {
			return 0, 0, fmt.Errorf("invalid per_page")
		}
	}
	return page, perPage, nil
}

func (s *HTTPServer) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)

		metrics.IncHTTP(endpointLabel(r.URL.Path))
		s.logger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", recorder.status).
			Dur("duration", time.Since(start)).
			Msg("http запрос")
	})
}

// endpointLabel сворачивает пути с идентификаторами в одну метку,
// чтобы не раздувать кардинальность метрики.
func endpointLabel(path string) string {
	if strings.HasPrefix(path, "/api/v1/sessions/") {
		return "/api/v1/sessions/{id}"
	}
	return path
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{"error": message})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
