package testutil

import (
	"io"
	"mime"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"time"
)

// SuccessBody is a typical processing API response.
const SuccessBody = `{
  "output_video_url": "https://api.example.com/results/out.mp4",
  "detection_count": 42,
  "processing_time": 12.5,
  "confidence_score": 0.93,
  "frames_analyzed": 300,
  "tracker": "bytetrack"
}`

// RecordedFile is one file part of a multipart request.
type RecordedFile struct {
	FileName    string
	ContentType string
	Data        []byte
}

// RecordedRequest is what the fake processing API received.
type RecordedRequest struct {
	Method        string
	Path          string
	Authorization string
	ContentType   string
	Body          []byte
	Fields        url.Values
	Files         map[string]*RecordedFile
	PartNames     []string
}

// APIServer is a scriptable stand-in for the video processing API.
// It records every request and answers with the configured status
// and body, after an optional delay.
type APIServer struct {
	server   *httptest.Server
	URL      string
	mutex    sync.Mutex
	status   int
	body     string
	delay    time.Duration
	requests []*RecordedRequest
}

func NewAPIServer() *APIServer {
	s := &APIServer{
		status:   http.StatusOK,
		body:     SuccessBody,
		requests: make([]*RecordedRequest, 0),
	}
	s.server = httptest.NewServer(http.HandlerFunc(s.handle))
	s.URL = s.server.URL + "/process"
	return s
}

// Respond sets the status and body of subsequent responses.
func (s *APIServer) Respond(status int, body string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.status = status
	s.body = body
}

// Delay makes subsequent responses wait d before answering.
func (s *APIServer) Delay(d time.Duration) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.delay = d
}

func (s *APIServer) Requests() []*RecordedRequest {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return append([]*RecordedRequest{}, s.requests...)
}

func (s *APIServer) RequestCount() int {
	return len(s.Requests())
}

// LastRequest returns the most recent request, or nil.
func (s *APIServer) LastRequest() *RecordedRequest {
	requests := s.Requests()
	if len(requests) == 0 {
		return nil
	}
	return requests[len(requests)-1]
}

// Reset clears recorded requests and restores the default response.
func (s *APIServer) Reset() {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.status = http.StatusOK
	s.body = SuccessBody
	s.delay = 0
	s.requests = make([]*RecordedRequest, 0)
}

func (s *APIServer) Close() {
	s.server.CloseClientConnections()
	s.server.Close()
}

func (s *APIServer) handle(w http.ResponseWriter, r *http.Request) {
	recorded := record(r)
	s.mutex.Lock()
	s.requests = append(s.requests, recorded)
	status, body, delay := s.status, s.body, s.delay
	s.mutex.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-r.Context().Done():
			return
		}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	io.WriteString(w, body)
}

func record(r *http.Request) *RecordedRequest {
	recorded := &RecordedRequest{
		Method:        r.Method,
		Path:          r.URL.Path,
		Authorization: r.Header.Get("Authorization"),
		ContentType:   r.Header.Get("Content-Type"),
		Fields:        url.Values{},
		Files:         make(map[string]*RecordedFile),
		PartNames:     make([]string, 0),
	}
	mediaType, _, _ := mime.ParseMediaType(recorded.ContentType)
	switch {
	case mediaType == "multipart/form-data":
		recordParts(r, recorded)
	case mediaType == "application/x-www-form-urlencoded":
		recorded.Body, _ = io.ReadAll(r.Body)
		recorded.Fields, _ = url.ParseQuery(string(recorded.Body))
	default:
		recorded.Body, _ = io.ReadAll(r.Body)
	}
	return recorded
}

func recordParts(r *http.Request, recorded *RecordedRequest) {
	reader, err := r.MultipartReader()
	if err != nil {
		return
	}
	for {
		part, err := reader.NextPart()
		if err != nil {
			return
		}
		data, _ := io.ReadAll(part)
		name := part.FormName()
		recorded.PartNames = append(recorded.PartNames, name)
		if part.FileName() != "" {
			recorded.Files[name] = &RecordedFile{
				FileName:    part.FileName(),
				ContentType: part.Header.Get("Content-Type"),
				Data:        data,
			}
		} else {
			recorded.Fields.Add(name, strings.TrimSpace(string(data)))
		}
	}
}
