package httpapi

import (
	_ "embed"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"framecast/internal/composition"
	"framecast/internal/config"
	"framecast/internal/jobstore"
	"framecast/internal/logging"
	"framecast/internal/pipeline"
)

//go:embed index.html
var indexHTML []byte

// maxRequestBytes bounds how much of a submission body is read. Composition
// documents are small; anything larger is not a valid request.
const maxRequestBytes = 8 << 20

// Submitter accepts jobs for asynchronous processing.
type Submitter interface {
	Submit(job *pipeline.Job) error
}

// Server holds the handler dependencies. Submission returns as soon as the
// job is queued; clients observe everything else by polling.
type Server struct {
	cfg    *config.Config
	store  jobstore.Store
	pool   Submitter
	logger *slog.Logger
}

// NewServer wires the HTTP layer.
func NewServer(cfg *config.Config, store jobstore.Store, pool Submitter, logger *slog.Logger) *Server {
	return &Server{
		cfg:    cfg,
		store:  store,
		pool:   pool,
		logger: logging.NewComponentLogger(logger, "httpapi"),
	}
}

// Router builds the route table.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(s.logRequests)

	r.Get("/", s.handleIndex)
	r.Post("/render", s.handleRender)
	r.Get("/status/{jobID}", s.handleStatus)
	r.Get("/jobs", s.handleJobs)
	r.Get("/result/{fileName}", s.handleResult)

	return r
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(indexHTML)
}

type renderAccepted struct {
	JobID    string `json:"job_id"`
	Status   string `json:"status"`
	VideoURL string `json:"video_url"`
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	req, err := composition.Decode(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	job, err := pipeline.NewJob(ctx, s.cfg, s.store, req, body)
	if err != nil {
		s.logger.Error("create job", logging.Error(err))
		writeError(w, http.StatusInternalServerError, "job creation failed")
		return
	}

	if err := s.pool.Submit(job); err != nil {
		// The job was accepted as queued before submission, so it must end
		// in a terminal status the client can observe.
		s.markRejected(r, job, err)
		if errors.Is(err, pipeline.ErrQueueFull) {
			writeError(w, http.StatusServiceUnavailable, "render queue is full")
			return
		}
		writeError(w, http.StatusInternalServerError, "job submission failed")
		return
	}

	writeJSON(w, http.StatusOK, renderAccepted{
		JobID:    job.ID,
		Status:   "processing",
		VideoURL: job.ResultPath(),
	})
}

func (s *Server) markRejected(r *http.Request, job *pipeline.Job, cause error) {
	doc := jobstore.Document{
		JobID:    job.ID,
		Status:   jobstore.StatusFailed,
		Progress: jobstore.Progress(0),
		Error:    cause.Error(),
	}
	if err := s.store.Put(r.Context(), doc); err != nil {
		s.logger.Error("persist rejected job", logging.String(logging.FieldJobID, job.ID), logging.Error(err))
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")

	doc, ok, err := s.store.Get(r.Context(), jobID)
	if err != nil {
		// Malformed ids and store misses both read as unknown jobs.
		s.logger.Warn("status lookup", logging.String(logging.FieldJobID, jobID), logging.Error(err))
		writeJSON(w, http.StatusNotFound, jobstore.NotFound(jobID))
		return
	}
	if !ok {
		writeJSON(w, http.StatusNotFound, jobstore.NotFound(jobID))
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

type jobList struct {
	Jobs []jobstore.Document `json:"jobs"`
}

func (s *Server) handleJobs(w http.ResponseWriter, r *http.Request) {
	docs, err := s.store.List(r.Context())
	if err != nil {
		s.logger.Error("list jobs", logging.Error(err))
		writeError(w, http.StatusInternalServerError, "job listing failed")
		return
	}
	if docs == nil {
		docs = []jobstore.Document{}
	}
	writeJSON(w, http.StatusOK, jobList{Jobs: docs})
}

func (s *Server) handleResult(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "fileName")
	if name == "" || strings.ContainsAny(name, "/\\") || strings.Contains(name, "..") {
		writeError(w, http.StatusNotFound, "not_ready")
		return
	}

	f, err := os.Open(filepath.Join(s.cfg.Paths.PublicDir, name))
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.logger.Error("open artifact", logging.String("file", name), logging.Error(err))
		}
		writeError(w, http.StatusNotFound, "not_ready")
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil || info.IsDir() {
		writeError(w, http.StatusNotFound, "not_ready")
		return
	}

	w.Header().Set("Content-Type", "video/mp4")
	http.ServeContent(w, r, name, info.ModTime(), f)
}

// statusRecorder captures the response code for request logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(status int) {
	rec.status = status
	rec.ResponseWriter.WriteHeader(status)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Info("request",
			logging.String("method", r.Method),
			logging.String("path", r.URL.Path),
			logging.Int("status", rec.status),
			logging.Duration("elapsed", time.Since(start)),
		)
	})
}
