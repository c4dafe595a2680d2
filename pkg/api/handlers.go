package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/ssargent/blmreader/pkg/blm"
	"github.com/ssargent/blmreader/pkg/query"
)

// Server holds the API server state
type Server struct {
	sessions *SessionRegistry
	engine   query.QueryEngine
	config   ServerConfig
	metrics  *Metrics
	logger   log.Logger
}

// NewServer creates a new API server
func NewServer(sessions *SessionRegistry, config ServerConfig, metrics *Metrics) *Server {
	logger := config.Logger
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &Server{
		sessions: sessions,
		engine:   query.NewScanEngine(logger),
		config:   config,
		metrics:  metrics,
		logger:   logger,
	}
}

// handleHealth godoc
//
//	@Summary		Health check
//	@Description	Get the health status of the API
//	@Tags			health
//	@Accept			json
//	@Produce		json
//	@Success		200	{object}	map[string]interface{}
//	@Router			/health [get]
//	@Security		ApiKeyAuth
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	sendSuccess(w, map[string]interface{}{
		"status":   "healthy",
		"sessions": s.sessions.Len(),
	})
}

// handleOpenFile godoc
//
//	@Summary		Open a BLM file
//	@Description	Open a BLM file on the server host, index its records and return a session id
//	@Tags			files
//	@Accept			json
//	@Produce		json
//	@Param			request	body		OpenFileRequest	true	"File to open"
//	@Success		200		{object}	SessionSummary
//	@Failure		400		{object}	map[string]string
//	@Failure		404		{object}	map[string]string
//	@Failure		422		{object}	map[string]string
//	@Router			/files [post]
//	@Security		ApiKeyAuth
func (s *Server) handleOpenFile(w http.ResponseWriter, r *http.Request) {
	var req OpenFileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(w, "Invalid JSON request", http.StatusBadRequest)
		return
	}
	if req.Path == "" {
		sendError(w, "path is required", http.StatusBadRequest)
		return
	}

	start := time.Now()
	sess, err := s.sessions.Open(r.Context(), req.Path, req.Preview)
	if err != nil {
		s.metrics.RecordIndex(req.Preview, 0, false, time.Since(start))
		level.Warn(s.logger).Log("msg", "failed to open file", "path", req.Path, "err", err)
		sendReaderError(w, err)
		return
	}

	summary := sess.Summary()
	s.metrics.RecordIndex(req.Preview, summary.Records, true, time.Since(start))
	s.metrics.SetOpenSessions(s.sessions.Len())
	level.Info(s.logger).Log("msg", "opened file", "id", summary.ID, "path", req.Path,
		"records", summary.Records, "complete", summary.Complete, "duration", time.Since(start))
	sendSuccess(w, summary)
}

// handleListFiles godoc
//
//	@Summary		List open files
//	@Description	List every file opened through the API
//	@Tags			files
//	@Produce		json
//	@Success		200	{array}	SessionSummary
//	@Router			/files [get]
//	@Security		ApiKeyAuth
func (s *Server) handleListFiles(w http.ResponseWriter, r *http.Request) {
	list := s.sessions.List()
	summaries := make([]SessionSummary, 0, len(list))
	for _, sess := range list {
		summaries = append(summaries, sess.Summary())
	}
	sendSuccess(w, summaries)
}

// handleCloseFile godoc
//
//	@Summary		Close a file
//	@Description	Close an open file and forget its session
//	@Tags			files
//	@Produce		json
//	@Param			id	path		string	true	"Session id"
//	@Success		200	{object}	map[string]string
//	@Failure		404	{object}	map[string]string
//	@Router			/files/{id} [delete]
//	@Security		ApiKeyAuth
func (s *Server) handleCloseFile(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	found, err := s.sessions.Close(id)
	if !found {
		sendError(w, "Session not found", http.StatusNotFound)
		return
	}
	s.metrics.SetOpenSessions(s.sessions.Len())
	if err != nil {
		sendError(w, fmt.Sprintf("Failed to close file: %v", err), http.StatusInternalServerError)
		return
	}
	sendSuccess(w, map[string]string{"message": "File closed successfully"})
}

// handleFileInfo godoc
//
//	@Summary		File metadata
//	@Description	Get the header, column names, section offsets and record count of an open file
//	@Tags			files
//	@Produce		json
//	@Param			id	path		string	true	"Session id"
//	@Success		200	{object}	FileInfoResponse
//	@Failure		404	{object}	map[string]string
//	@Router			/files/{id} [get]
//	@Security		ApiKeyAuth
func (s *Server) handleFileInfo(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	summary := sess.Summary()

	sess.mu.Lock()
	h := sess.file.Header()
	sections := sess.file.Sections()
	sess.mu.Unlock()

	info := FileInfoResponse{
		SessionSummary: summary,
		Header: HeaderInfo{
			Version:       h.Version,
			EOF:           delimiterString(h.EOF),
			EOR:           delimiterString(h.EOR),
			PropertyCount: h.PropertyCount,
			GeneratedDate: h.GeneratedDate,
		},
		Fields: h.Fields,
	}
	for _, sec := range sections {
		info.Sections = append(info.Sections, SectionInfo{
			Name:      sec.Name.String(),
			TagOffset: sec.TagOffset,
			Start:     sec.StartOffset,
			Length:    sec.Length,
		})
	}
	sendSuccess(w, info)
}

// handleGetRecord godoc
//
//	@Summary		Get a record
//	@Description	Get record n of an open file, split into fields
//	@Tags			records
//	@Produce		json
//	@Param			id	path		string	true	"Session id"
//	@Param			n	path		int		true	"Record index"
//	@Success		200	{object}	RecordResponse
//	@Failure		400	{object}	map[string]string
//	@Failure		404	{object}	map[string]string
//	@Router			/files/{id}/records/{n} [get]
//	@Security		ApiKeyAuth
func (s *Server) handleGetRecord(w http.ResponseWriter, r *http.Request) {
	sess, n, ok := s.sessionRecord(w, r)
	if !ok {
		return
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if err := sess.parser.LoadRecord(n); err != nil {
		sendReaderError(w, err)
		return
	}
	sendSuccess(w, RecordResponse{
		Index:  n,
		Row:    sess.parser.Record(),
		Fields: sess.parser.Fields(),
	})
}

// handleGetField godoc
//
//	@Summary		Get a field
//	@Description	Get one named field of record n
//	@Tags			records
//	@Produce		json
//	@Param			id		path		string	true	"Session id"
//	@Param			n		path		int		true	"Record index"
//	@Param			name	path		string	true	"Column name"
//	@Success		200		{object}	FieldResponse
//	@Failure		400		{object}	map[string]string
//	@Failure		404		{object}	map[string]string
//	@Router			/files/{id}/records/{n}/fields/{name} [get]
//	@Security		ApiKeyAuth
func (s *Server) handleGetField(w http.ResponseWriter, r *http.Request) {
	sess, n, ok := s.sessionRecord(w, r)
	if !ok {
		return
	}
	name := chi.URLParam(r, "name")

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if err := sess.parser.LoadRecord(n); err != nil {
		sendReaderError(w, err)
		return
	}
	value, err := sess.parser.Lookup(name)
	if err != nil {
		sendReaderError(w, err)
		return
	}
	sendSuccess(w, FieldResponse{Index: n, Field: name, Value: value})
}

// handleGetAttachment godoc
//
//	@Summary		Download an attachment
//	@Description	Stream a media file from the zip archive shipped alongside an open file
//	@Tags			files
//	@Produce		octet-stream
//	@Param			id		path		string	true	"Session id"
//	@Param			name	path		string	true	"Archive entry name"
//	@Success		200		{file}		binary
//	@Failure		404		{object}	map[string]string
//	@Router			/files/{id}/attachments/{name} [get]
//	@Security		ApiKeyAuth
func (s *Server) handleGetAttachment(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	name := chi.URLParam(r, "*")
	if name == "" {
		sendError(w, "attachment name is required", http.StatusBadRequest)
		return
	}

	att, err := blm.OpenAttachment(blm.CompanionZipPath(sess.path), name)
	if err != nil {
		sendReaderError(w, err)
		return
	}
	defer att.Close()

	contentType := mime.TypeByExtension(path.Ext(att.Name))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.FormatInt(att.Size, 10))
	if _, err := io.Copy(w, att); err != nil {
		level.Warn(s.logger).Log("msg", "failed to stream attachment", "id", sess.id, "name", name, "err", err)
	}
}

// handleSearch godoc
//
//	@Summary		Search records
//	@Description	Find the records whose field satisfies a condition. Operators are =, !=, >, <, >=, <= and ~ (contains).
//	@Tags			records
//	@Produce		json
//	@Param			id		path		string	true	"Session id"
//	@Param			field	query		string	true	"Column name"
//	@Param			op		query		string	false	"Operator (default =)"
//	@Param			value	query		string	false	"Value to compare against"
//	@Param			limit	query		int		false	"Maximum number of matches"
//	@Success		200		{object}	SearchResponse
//	@Failure		400		{object}	map[string]string
//	@Failure		404		{object}	map[string]string
//	@Router			/files/{id}/search [get]
//	@Security		ApiKeyAuth
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	params := r.URL.Query()
	q := query.FieldQuery{
		Field:    params.Get("field"),
		Operator: params.Get("op"),
		Value:    params.Get("value"),
	}
	if q.Operator == "" {
		q.Operator = "="
	}
	if err := q.Validate(); err != nil {
		sendError(w, err.Error(), http.StatusBadRequest)
		return
	}
	limit := 0
	if raw := params.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			sendError(w, "limit must be a non-negative integer", http.StatusBadRequest)
			return
		}
		limit = n
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	matches, err := s.search(r.Context(), sess.parser, q, limit)
	if err != nil {
		sendReaderError(w, err)
		return
	}
	sendSuccess(w, SearchResponse{Query: q.String(), Matches: matches, Count: len(matches)})
}

func (s *Server) search(ctx context.Context, parser *blm.Parser, q query.FieldQuery, limit int) ([]int, error) {
	it, err := s.engine.Execute(ctx, parser, q)
	if err != nil {
		return nil, err
	}
	defer it.Close()

	matches := []int{}
	for it.Next() {
		matches = append(matches, it.Result().Index)
		if limit > 0 && len(matches) >= limit {
			break
		}
	}
	return matches, it.Err()
}

// session resolves the {id} URL parameter, writing a 404 when it is unknown
func (s *Server) session(w http.ResponseWriter, r *http.Request) (*Session, bool) {
	sess, ok := s.sessions.Get(chi.URLParam(r, "id"))
	if !ok {
		sendError(w, "Session not found", http.StatusNotFound)
		return nil, false
	}
	return sess, true
}

// sessionRecord resolves {id} and the {n} record index
func (s *Server) sessionRecord(w http.ResponseWriter, r *http.Request) (*Session, int, bool) {
	sess, ok := s.session(w, r)
	if !ok {
		return nil, 0, false
	}
	n, err := strconv.Atoi(chi.URLParam(r, "n"))
	if err != nil {
		sendError(w, "Record index must be an integer", http.StatusBadRequest)
		return nil, 0, false
	}
	return sess, n, true
}

func delimiterString(b byte) string {
	if b == 0 {
		return ""
	}
	return string([]byte{b})
}
