package api

import (
	"time"

	"github.com/go-kit/log"

	"github.com/ssargent/blmreader/pkg/blm"
)

// APIResponse represents a standard API response
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// OpenFileRequest opens a BLM file as a session
type OpenFileRequest struct {
	Path    string `json:"path"`
	Preview bool   `json:"preview"`
}

// SessionSummary describes one open file
type SessionSummary struct {
	ID       string    `json:"id"`
	Path     string    `json:"path"`
	Preview  bool      `json:"preview"`
	Records  int       `json:"records"`
	Complete bool      `json:"complete"`
	OpenedAt time.Time `json:"opened_at"`
}

// HeaderInfo is the parsed HEADER section
type HeaderInfo struct {
	Version       string `json:"version"`
	EOF           string `json:"eof"`
	EOR           string `json:"eor"`
	PropertyCount int    `json:"property_count"`
	GeneratedDate string `json:"generated_date"`
}

// SectionInfo is the byte range of one section
type SectionInfo struct {
	Name      string `json:"name"`
	TagOffset int64  `json:"tag_offset"`
	Start     int64  `json:"start"`
	Length    int64  `json:"length"`
}

// FileInfoResponse is the metadata of an open file
type FileInfoResponse struct {
	SessionSummary
	Header   HeaderInfo    `json:"header"`
	Fields   []string      `json:"fields"`
	Sections []SectionInfo `json:"sections"`
}

// RecordResponse is one parsed record
type RecordResponse struct {
	Index  int               `json:"index"`
	Row    []string          `json:"row"`
	Fields map[string]string `json:"fields"`
}

// FieldResponse is one field of a record
type FieldResponse struct {
	Index int    `json:"index"`
	Field string `json:"field"`
	Value string `json:"value"`
}

// SearchResponse lists the records matching a field query
type SearchResponse struct {
	Query   string `json:"query"`
	Matches []int  `json:"matches"`
	Count   int    `json:"count"`
}

// FileOpener opens the BLM file at path in full or preview mode
type FileOpener func(path string, preview bool) (*blm.File, error)

// ServerConfig holds configuration for the API server
type ServerConfig struct {
	Port   int
	Bind   string
	APIKey string
	Logger log.Logger
}
