package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"callcenter-insights-go/internal/dataset"
	"callcenter-insights-go/internal/logger"
	"callcenter-insights-go/internal/metrics"
	"callcenter-insights-go/internal/processor"
)

// ServiceName is reported by the health endpoint.
const ServiceName = "callcenter-insights"

const maxBodySize = 1 << 20

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Server exposes the assembler over HTTP.
type Server struct {
	assembler      *processor.Assembler
	metrics        *metrics.Metrics
	log            *logger.Logger
	allowedOrigins []string
}

func New(a *processor.Assembler, m *metrics.Metrics, log *logger.Logger, allowedOrigins []string) *Server {
	return &Server{
		assembler:      a,
		metrics:        m,
		log:            log.WithComponent("http"),
		allowedOrigins: allowedOrigins,
	}
}

// Routes builds the router with all middleware attached.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(RequestLogger(s.log))
	r.Use(Instrument(s.metrics))
	r.Use(chimiddleware.Recoverer)
	r.Use(CORS(s.allowedOrigins))

	r.Get("/health", healthHandler)
	r.Method(http.MethodGet, "/metrics", s.metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Post("/analytics", s.handleAnalytics)
		r.Get("/analytics/snapshot", s.handleSnapshot)
		r.Get("/analytics/history", s.handleHistory)
		r.Get("/analytics/history/{id}", s.handleHistoryEntry)
		r.Get("/analytics/export", s.handleExport)
		r.Post("/chat/stream", s.handleStream)
		r.Get("/calls", s.handleCalls)
	})

	return r
}

// healthHandler handles health check requests
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, `{"status":"ok","service":%q}`, ServiceName)
}

func (s *Server) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeRequest(w, r)
	if !ok {
		return
	}

	env, err := s.assembler.Handle(r.Context(), req)
	if errors.Is(err, processor.ErrInvalidRequest) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		s.log.WithRequest(r).WithField("error", err.Error()).Error("analytics request failed")
		writeError(w, http.StatusInternalServerError, "failed to process analytics request")
		return
	}
	writeJSON(w, http.StatusOK, env)
}

// handleStream answers over server-sent events: one data event per text
// fragment, then a [DONE] sentinel.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeRequest(w, r)
	if !ok {
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		writeError(w, http.StatusBadRequest, "query is required")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	_, err := s.assembler.HandleStream(r.Context(), req, func(fragment string) error {
		return sendEvent(w, flusher, fragment)
	})
	if err != nil {
		s.log.WithRequest(r).WithField("error", err.Error()).Debug("stream ended early")
		return
	}
	fmt.Fprint(w, "data: [DONE]\n\n")
	flusher.Flush()
}

func sendEvent(w http.ResponseWriter, flusher http.Flusher, content string) error {
	payload, err := json.Marshal(map[string]string{"content": content})
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "data: %s\n\n", payload); err != nil {
		return err
	}
	flusher.Flush()
	return nil
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.assembler.Snapshot())
}

func (s *Server) handleCalls(w http.ResponseWriter, r *http.Request) {
	body := map[string]any{"calls": s.assembler.Records()}
	if r.URL.Query().Get("analytics") == "true" {
		body["analytics"] = s.assembler.Snapshot()
	}
	writeJSON(w, http.StatusOK, body)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.assembler.History().List())
}

func (s *Server) handleHistoryEntry(w http.ResponseWriter, r *http.Request) {
	entry, ok := s.assembler.History().Get(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "history entry not found")
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("query"))
	if query == "" {
		writeError(w, http.StatusBadRequest, "query is required")
		return
	}

	in, resp := s.assembler.Structured(query)
	if resp.TableData == nil {
		writeError(w, http.StatusNotFound, "no table for this query")
		return
	}

	var buf bytes.Buffer
	if err := dataset.WriteTable(&buf, *resp.TableData); err != nil {
		s.log.WithRequest(r).WithField("error", err.Error()).Error("export failed")
		writeError(w, http.StatusInternalServerError, "failed to build workbook")
		return
	}
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.xlsx"`, in))
	w.WriteHeader(http.StatusOK)
	buf.WriteTo(w)
}

func (s *Server) decodeRequest(w http.ResponseWriter, r *http.Request) (processor.Request, bool) {
	var req processor.Request
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return req, false
	}
	return req, true
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
