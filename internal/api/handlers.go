// SPDX-License-Identifier: MIT

package api

import (
	"context"
	"errors"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/adrkit/adrkit/internal/adr"
	"github.com/adrkit/adrkit/internal/api/middleware"
	"github.com/adrkit/adrkit/internal/fsutil"
	"github.com/adrkit/adrkit/internal/jobs"
	"github.com/adrkit/adrkit/internal/library"
	"github.com/adrkit/adrkit/internal/lint"
	"github.com/adrkit/adrkit/internal/log"
	"github.com/adrkit/adrkit/internal/ratelimit"
	"github.com/adrkit/adrkit/internal/resilience"
)

// scanTimeout bounds a triggered scan independently of the client
// connection.
const scanTimeout = 5 * time.Minute

// statusResponse is the payload of GET /api/status.
type statusResponse struct {
	jobs.Status
	Running bool   `json:"running"`
	Version string `json:"version,omitempty"`
}

// recordsResponse is the payload of GET /api/records.
type recordsResponse struct {
	Records []library.IndexedRecord `json:"records"`
	Count   int                     `json:"count"`
}

// recordResponse is the payload of GET /api/records/{number}: the index row
// plus the freshly parsed document model.
type recordResponse struct {
	Index      library.IndexedRecord `json:"index"`
	Record     *adr.Record           `json:"record,omitempty"`
	ParseError string                `json:"parse_error,omitempty"`
}

// lintResponse is the payload of GET /api/lint.
type lintResponse struct {
	Results  []lint.Result `json:"results"`
	Findings int           `json:"findings"`
	Errors   int           `json:"errors"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	resp := statusResponse{
		Running: s.runner.Running(),
		Version: s.cfg().Version,
	}
	if last, ok := s.runner.Last(); ok {
		resp.Status = last
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListRecords(w http.ResponseWriter, r *http.Request) {
	logger := log.WithComponentFromContext(r.Context(), "api")

	filter := library.ListFilter{
		Status:  r.URL.Query().Get("status"),
		Decider: r.URL.Query().Get("decider"),
	}
	records, err := s.store.ListRecords(r.Context(), jobs.RootID, filter)
	if err != nil {
		logger.Error().Err(err).Str("event", "records.list_failed").Msg("index query failed")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if records == nil {
		records = []library.IndexedRecord{}
	}
	writeJSON(w, http.StatusOK, recordsResponse{Records: records, Count: len(records)})
}

// lookupRecord resolves the {number} route parameter to an index row.
// It writes the error response itself and returns nil when the request is
// already answered.
func (s *Server) lookupRecord(w http.ResponseWriter, r *http.Request) *library.IndexedRecord {
	logger := log.WithComponentFromContext(r.Context(), "api")

	number, err := strconv.Atoi(chi.URLParam(r, "number"))
	if err != nil || number <= 0 {
		writeError(w, errors.New("record number must be a positive integer"))
		return nil
	}

	row, err := s.store.GetRecord(r.Context(), jobs.RootID, number)
	if err != nil {
		logger.Error().Err(err).Str("event", "records.get_failed").Int(log.FieldRecord, number).Msg("index query failed")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return nil
	}
	if row == nil {
		writeNotFound(w)
		return nil
	}
	return row
}

// recordFile confines the index row's relative path to the docs root and
// returns the resolved absolute path.
func (s *Server) recordFile(row *library.IndexedRecord) (string, error) {
	return fsutil.ConfineRelPath(s.cfg().DocsDir, row.RelPath)
}

func (s *Server) handleGetRecord(w http.ResponseWriter, r *http.Request) {
	logger := log.WithComponentFromContext(r.Context(), "api")

	row := s.lookupRecord(w, r)
	if row == nil {
		return
	}

	resp := recordResponse{Index: *row}

	// Parse the document fresh so the response reflects the file on disk,
	// not the last scan.
	abs, err := s.recordFile(row)
	if err != nil {
		logger.Warn().Err(err).Str("event", "records.path_escape").Str(log.FieldPath, row.RelPath).Msg("indexed path escapes docs root")
		writeNotFound(w)
		return
	}
	rec, err := adr.ParseFile(abs)
	if err != nil {
		if os.IsNotExist(err) {
			// The file vanished since the last scan; the row is stale.
			writeNotFound(w)
			return
		}
		resp.ParseError = err.Error()
	} else {
		resp.Record = rec
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetRecordRaw(w http.ResponseWriter, r *http.Request) {
	logger := log.WithComponentFromContext(r.Context(), "api")

	row := s.lookupRecord(w, r)
	if row == nil {
		return
	}

	abs, err := s.recordFile(row)
	if err != nil {
		logger.Warn().Err(err).Str("event", "records.path_escape").Str(log.FieldPath, row.RelPath).Msg("indexed path escapes docs root")
		writeNotFound(w)
		return
	}

	info, err := os.Stat(abs)
	if err != nil {
		if os.IsNotExist(err) {
			writeNotFound(w)
			return
		}
		logger.Error().Err(err).Str("event", "records.raw_failed").Str(log.FieldPath, row.RelPath).Msg("stat failed")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if info.Size() > adr.MaxDocumentSize {
		http.Error(w, "Document too large", http.StatusRequestEntityTooLarge)
		return
	}

	// #nosec G304 -- abs is confined to the docs root by recordFile
	data, err := os.ReadFile(abs)
	if err != nil {
		logger.Error().Err(err).Str("event", "records.raw_failed").Str(log.FieldPath, row.RelPath).Msg("read failed")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (s *Server) handleLint(w http.ResponseWriter, r *http.Request) {
	logger := log.WithComponentFromContext(r.Context(), "api")

	cfg := scanConfig(s.cfg())
	if strict := r.URL.Query().Get("strict"); strict != "" {
		v, err := strconv.ParseBool(strict)
		if err != nil {
			writeError(w, errors.New("strict must be a boolean"))
			return
		}
		cfg.Strict = v
	}

	results, err := jobs.LintDocs(r.Context(), cfg)
	if err != nil {
		logger.Error().Err(err).Str("event", "lint.failed").Msg("on-demand lint failed")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if results == nil {
		results = []lint.Result{}
	}

	resp := lintResponse{Results: results}
	for i := range results {
		resp.Findings += len(results[i].Findings)
		resp.Errors += len(results[i].Errors())
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	logger := log.WithComponentFromContext(r.Context(), "api")

	clientIP := ratelimit.GetClientIP(r)
	if !s.scanLimiter.Allow(clientIP) {
		logger.Warn().
			Str("event", "scan.rate_limited").
			Str("client_ip", clientIP).
			Msg("scan trigger rate limited")
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Retry-After", "10")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":"rate_limit_exceeded","detail":"Too many scan requests. Please try again later."}`))
		return
	}

	// The scan runs on its own context so a dropped client does not abort
	// the pipeline mid-write.
	jobCtx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), scanTimeout)
	defer cancel()

	start := time.Now()
	var st *jobs.Status
	err := s.cb.Execute(func() error {
		var err error
		st, err = s.runner.Run(jobCtx, scanConfig(s.cfg()))
		return err
	})
	duration := time.Since(start)

	if err != nil {
		switch {
		case errors.Is(err, jobs.ErrScanInFlight):
			logger.Warn().
				Str("event", "scan.conflict").
				Msg("scan already in progress")
			writeConflict(w, "A scan is already in progress")
		case errors.Is(err, resilience.ErrCircuitOpen):
			logger.Warn().
				Str("event", "scan.circuit_open").
				Int64("duration_ms", duration.Milliseconds()).
				Msg("circuit breaker open for scans; rejecting request")
			writeUnavailable(w, "Scans temporarily disabled due to repeated failures")
		default:
			logger.Error().
				Err(err).
				Str("event", "scan.failed").
				Int64("duration_ms", duration.Milliseconds()).
				Msg("scan failed")
			// Never expose internal error details to the client.
			http.Error(w, "Internal server error", http.StatusInternalServerError)
		}
		return
	}

	evt := logger.Info().
		Str("event", "scan.triggered").
		Int("records", st.Records).
		Int("findings", st.Findings).
		Int64("duration_ms", duration.Milliseconds())
	// Correlate the scan with the request trace when one is active.
	if traceID, spanID := middleware.ExtractTraceContext(r); traceID != "" {
		evt = evt.Str("trace_id", traceID).Str("span_id", spanID)
	}
	evt.Msg("scan completed")

	writeJSON(w, http.StatusOK, st)
}

func (s *Server) handleOpenAPI(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(openAPISpec)
}
