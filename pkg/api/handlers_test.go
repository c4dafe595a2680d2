package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/klauspost/compress/zip"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssargent/blmreader/pkg/blm"
)

func TestServer_handleOpenFile(t *testing.T) {
	ts, path := setupTestServer(t)

	malformed := filepath.Join(filepath.Dir(path), "broken.blm")
	require.NoError(t, os.WriteFile(malformed, []byte("#HEADER#\nEOF : '^'\n"), 0600))

	tests := []struct {
		name           string
		body           interface{}
		expectedStatus int
	}{
		{"valid file", OpenFileRequest{Path: path}, http.StatusOK},
		{"preview", OpenFileRequest{Path: path, Preview: true}, http.StatusOK},
		{"empty path", OpenFileRequest{}, http.StatusBadRequest},
		{"missing file", OpenFileRequest{Path: path + ".missing"}, http.StatusNotFound},
		{"malformed file", OpenFileRequest{Path: malformed}, http.StatusUnprocessableEntity},
		{"invalid json", "not an object", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, response := ts.do("POST", "/api/v1/files", tt.body)
			assert.Equal(t, tt.expectedStatus, w.Code, w.Body.String())
			assert.Equal(t, tt.expectedStatus == http.StatusOK, response.Success)
		})
	}
}

func TestServer_handleListAndCloseFiles(t *testing.T) {
	ts, path := setupTestServer(t)
	id := ts.open(path, false)

	w, response := ts.do("GET", "/api/v1/files", nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := response.Data.([]interface{})
	require.Len(t, list, 1)
	entry := list[0].(map[string]interface{})
	assert.Equal(t, id, entry["id"])
	assert.Equal(t, path, entry["path"])
	assert.Equal(t, float64(3), entry["records"])

	w, _ = ts.do("DELETE", "/api/v1/files/"+id, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = ts.do("DELETE", "/api/v1/files/"+id, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = ts.do("GET", "/api/v1/files/"+id, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestServer_handleFileInfo(t *testing.T) {
	ts, path := setupTestServer(t)
	id := ts.open(path, false)

	w, response := ts.do("GET", "/api/v1/files/"+id, nil)
	require.Equal(t, http.StatusOK, w.Code)

	data := response.Data.(map[string]interface{})
	assert.Equal(t, float64(3), data["records"])
	assert.Equal(t, true, data["complete"])
	assert.Equal(t, []interface{}{"AGENT_REF", "ADDRESS_1", "PRICE"}, data["fields"])

	header := data["header"].(map[string]interface{})
	assert.Equal(t, "3", header["version"])
	assert.Equal(t, "^", header["eof"])
	assert.Equal(t, "~", header["eor"])
	assert.Equal(t, float64(3), header["property_count"])
	assert.Equal(t, "13-Jan-2024 15:12", header["generated_date"])

	sections := data["sections"].([]interface{})
	require.Len(t, sections, 4)
	assert.Equal(t, "HEADER", sections[0].(map[string]interface{})["name"])
	assert.Equal(t, float64(0), sections[0].(map[string]interface{})["tag_offset"])
	assert.Equal(t, "END", sections[3].(map[string]interface{})["name"])
}

func TestServer_handleGetRecord(t *testing.T) {
	ts, path := setupTestServer(t)
	id := ts.open(path, false)

	tests := []struct {
		name           string
		n              string
		expectedStatus int
		expectedRef    string
	}{
		{"first record", "0", http.StatusOK, "1_001"},
		{"last record", "2", http.StatusOK, "1_003"},
		{"out of range", "3", http.StatusNotFound, ""},
		{"negative", "-1", http.StatusNotFound, ""},
		{"not a number", "abc", http.StatusBadRequest, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, response := ts.do("GET", "/api/v1/files/"+id+"/records/"+tt.n, nil)
			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedStatus != http.StatusOK {
				assert.NotEmpty(t, response.Error)
				return
			}
			data := response.Data.(map[string]interface{})
			fields := data["fields"].(map[string]interface{})
			assert.Equal(t, tt.expectedRef, fields["AGENT_REF"])
			row := data["row"].([]interface{})
			assert.Equal(t, tt.expectedRef, row[0])
		})
	}
}

func TestServer_handleGetField(t *testing.T) {
	ts, path := setupTestServer(t)
	id := ts.open(path, false)

	w, response := ts.do("GET", "/api/v1/files/"+id+"/records/1/fields/ADDRESS_1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	data := response.Data.(map[string]interface{})
	assert.Equal(t, "Mill House", data["value"])
	assert.Equal(t, "ADDRESS_1", data["field"])
	assert.Equal(t, float64(1), data["index"])

	w, _ = ts.do("GET", "/api/v1/files/"+id+"/records/1/fields/POSTCODE", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = ts.do("GET", "/api/v1/files/"+id+"/records/9/fields/ADDRESS_1", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestServer_handleSearch(t *testing.T) {
	ts, path := setupTestServer(t)
	id := ts.open(path, false)

	tests := []struct {
		name           string
		query          string
		expectedStatus int
		expected       []interface{}
	}{
		{"contains", "field=ADDRESS_1&op=~&value=Cottage", http.StatusOK, []interface{}{float64(0), float64(2)}},
		{"greater than", "field=PRICE&op=%3E&value=200000", http.StatusOK, []interface{}{float64(0), float64(1)}},
		{"default operator", "field=AGENT_REF&value=1_002", http.StatusOK, []interface{}{float64(1)}},
		{"limit", "field=PRICE&op=%3E&value=0&limit=1", http.StatusOK, []interface{}{float64(0)}},
		{"no matches", "field=PRICE&value=1", http.StatusOK, []interface{}{}},
		{"unknown field", "field=POSTCODE&value=x", http.StatusNotFound, nil},
		{"missing field", "value=x", http.StatusBadRequest, nil},
		{"bad operator", "field=PRICE&op=%3D%3D&value=1", http.StatusBadRequest, nil},
		{"bad limit", "field=PRICE&value=1&limit=many", http.StatusBadRequest, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, response := ts.do("GET", "/api/v1/files/"+id+"/search?"+tt.query, nil)
			assert.Equal(t, tt.expectedStatus, w.Code, w.Body.String())
			if tt.expectedStatus != http.StatusOK {
				return
			}
			data := response.Data.(map[string]interface{})
			assert.Equal(t, tt.expected, data["matches"])
			assert.Equal(t, float64(len(tt.expected)), data["count"])
		})
	}
}

func TestServer_handleGetAttachment(t *testing.T) {
	ts, path := setupTestServer(t)
	id := ts.open(path, false)

	zf, err := os.Create(blm.CompanionZipPath(path))
	require.NoError(t, err)
	zw := zip.NewWriter(zf)
	fw, err := zw.Create("photos/1_001_IMG_00.jpg")
	require.NoError(t, err)
	_, err = fw.Write([]byte("jpeg bytes"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, zf.Close())

	tests := []struct {
		name           string
		target         string
		expectedStatus int
	}{
		{"nested entry", "/api/v1/files/" + id + "/attachments/photos/1_001_IMG_00.jpg", http.StatusOK},
		{"missing entry", "/api/v1/files/" + id + "/attachments/photos/none.jpg", http.StatusNotFound},
		{"unknown session", "/api/v1/files/unknown/attachments/photos/1_001_IMG_00.jpg", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, _ := ts.do("GET", tt.target, nil)
			assert.Equal(t, tt.expectedStatus, w.Code, w.Body.String())
			if tt.expectedStatus == http.StatusOK {
				assert.Equal(t, "image/jpeg", w.Header().Get("Content-Type"))
				assert.Equal(t, "jpeg bytes", w.Body.String())
			}
		})
	}
}

func TestServer_handleGetAttachment_NoArchive(t *testing.T) {
	ts, path := setupTestServer(t)
	id := ts.open(path, false)

	w, response := ts.do("GET", "/api/v1/files/"+id+"/attachments/a.jpg", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.False(t, response.Success)
}

func TestServer_handleCloseFile_DirectCall(t *testing.T) {
	ts, _ := setupTestServer(t)
	server := NewServer(ts.sessions, ServerConfig{}, NewMetrics(prometheus.NewRegistry()))

	// Handlers resolve {id} from the chi route context
	req := httptest.NewRequest("DELETE", "/files/unknown", nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", "unknown")
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

	w := httptest.NewRecorder()
	server.handleCloseFile(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
