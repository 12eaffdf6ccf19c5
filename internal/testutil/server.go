package testutil

import (
	"encoding/json"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"essaylens/internal/scoring"
)

// RecordedRequest captures one call made against a ScoringServer.
type RecordedRequest struct {
	Path        string
	ContentType string
	JSON        map[string]any
	Fields      map[string]string
	FileName    string
	FileData    []byte
}

type failure struct {
	status int
	detail string
}

// ScoringServer is an in-memory stand-in for the external scoring service.
//
// Analyze endpoints echo every requested criterion as a full-score match
// unless SetMatches installed a fixed response.
type ScoringServer struct {
	BaseURL string

	server *httptest.Server

	mu       sync.Mutex
	sections []scoring.Section
	matches  []scoring.Match
	rubricID string
	failures map[string]failure
	gates    map[string]chan struct{}
	requests []RecordedRequest
}

// StartScoringServer launches a fake scoring service closed with the test.
func StartScoringServer(t testing.TB) *ScoringServer {
	t.Helper()
	s := &ScoringServer{
		sections: []scoring.Section{{Name: "Body", Text: "essay"}},
		rubricID: "rubric-1",
		failures: map[string]failure{},
		gates:    map[string]chan struct{}{},
	}
	s.server = httptest.NewServer(http.HandlerFunc(s.handle))
	s.BaseURL = s.server.URL
	t.Cleanup(s.Close)
	return s
}

// Close shuts the server down, releasing any blocked handlers first.
func (s *ScoringServer) Close() {
	s.mu.Lock()
	for path, gate := range s.gates {
		close(gate)
		delete(s.gates, path)
	}
	s.mu.Unlock()
	s.server.Close()
}

// SetSections fixes the /structure response.
func (s *ScoringServer) SetSections(sections []scoring.Section) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sections = sections
}

// SetMatches fixes the response of every analyze and score endpoint.
func (s *ScoringServer) SetMatches(matches []scoring.Match) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.matches = matches
}

// SetRubricID fixes the id returned by rubric registration.
func (s *ScoringServer) SetRubricID(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rubricID = id
}

// Fail makes path answer with status and a FastAPI style detail body.
func (s *ScoringServer) Fail(path string, status int, detail string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[path] = failure{status: status, detail: detail}
}

// Block holds requests to path until the returned func is called or the
// client gives up.
func (s *ScoringServer) Block(path string) func() {
	gate := make(chan struct{})
	s.mu.Lock()
	s.gates[path] = gate
	s.mu.Unlock()
	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			if s.gates[path] == gate {
				delete(s.gates, path)
				close(gate)
			}
			s.mu.Unlock()
		})
	}
}

// Requests returns a copy of the recorded requests in arrival order.
func (s *ScoringServer) Requests() []RecordedRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]RecordedRequest(nil), s.requests...)
}

// Paths returns the recorded request paths in arrival order.
func (s *ScoringServer) Paths() []string {
	requests := s.Requests()
	paths := make([]string, 0, len(requests))
	for _, req := range requests {
		paths = append(paths, req.Path)
	}
	return paths
}

func (s *ScoringServer) handle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	recorded, err := record(r)
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"detail": err.Error()})
		return
	}

	s.mu.Lock()
	s.requests = append(s.requests, recorded)
	gate := s.gates[r.URL.Path]
	fail, failing := s.failures[r.URL.Path]
	sections := s.sections
	matches := s.matches
	rubricID := s.rubricID
	s.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-r.Context().Done():
			return
		}
	}
	if failing {
		writeJSON(w, fail.status, map[string]string{"detail": fail.detail})
		return
	}

	switch r.URL.Path {
	case scoring.PathStructure, scoring.PathStructurePDF:
		writeJSON(w, http.StatusOK, sections)
	case scoring.PathParseRubric, scoring.PathParseRubricPDF:
		writeJSON(w, http.StatusOK, map[string]string{"rubric_id": rubricID})
	case scoring.PathAnalyze, scoring.PathAnalyzePDF, scoring.PathScoreEssay, scoring.PathScoreEssayPDF:
		if matches == nil {
			matches = echoMatches(recorded)
		}
		writeJSON(w, http.StatusOK, matches)
	default:
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Not Found"})
	}
}

func record(r *http.Request) (RecordedRequest, error) {
	recorded := RecordedRequest{Path: r.URL.Path, ContentType: r.Header.Get("Content-Type")}
	mediaType, _, _ := mime.ParseMediaType(recorded.ContentType)
	if strings.HasPrefix(mediaType, "multipart/") {
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			return recorded, err
		}
		recorded.Fields = map[string]string{}
		for key, values := range r.MultipartForm.Value {
			if len(values) > 0 {
				recorded.Fields[key] = values[0]
			}
		}
		if files := r.MultipartForm.File[scoring.FieldFile]; len(files) > 0 {
			recorded.FileName = files[0].Filename
			data, err := readPart(files[0])
			if err != nil {
				return recorded, err
			}
			recorded.FileData = data
		}
		return recorded, nil
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return recorded, err
	}
	if len(body) > 0 {
		if err := json.Unmarshal(body, &recorded.JSON); err != nil {
			return recorded, err
		}
	}
	return recorded, nil
}

func readPart(header *multipart.FileHeader) ([]byte, error) {
	file, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return io.ReadAll(file)
}

func echoMatches(req RecordedRequest) []scoring.Match {
	var criteria []string
	if raw, ok := req.JSON["rubric"].([]any); ok {
		for _, item := range raw {
			if text, ok := item.(string); ok {
				criteria = append(criteria, text)
			}
		}
	}
	if field, ok := req.Fields[scoring.FieldRubric]; ok {
		_ = json.Unmarshal([]byte(field), &criteria)
	}
	matches := make([]scoring.Match, 0, len(criteria))
	for _, criterion := range criteria {
		matches = append(matches, scoring.Match{
			Criterion: criterion,
			Score:     1,
			MaxScore:  1,
			Section:   "Body",
			Snippet:   "essay",
		})
	}
	return matches
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
