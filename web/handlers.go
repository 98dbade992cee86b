package web

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/brandpulse/brandpulse-demo/constants"
	"github.com/brandpulse/brandpulse-demo/models/common"
	"github.com/brandpulse/brandpulse-demo/models/service"
	"github.com/brandpulse/brandpulse-demo/util"
)

// indexPage is the data behind the upload form.
type indexPage struct {
	ConfigError     string
	ImageAccept     string
	ImageExtensions string
	MaxImageSize    string
	MaxJerseyImages int
	MaxPlayerImages int
	MaxPlayerNumber int
	MaxVideoSize    string
	MinPlayerNumber int
	Mode            string
	VideoAccept     string
	VideoExtensions string
}

type metric struct {
	Label string
	Value interface{}
}

// resultPage is the data behind the result page.
type resultPage struct {
	ErrorMessage   string
	ErrorTitle     string
	JSON           string
	Metrics        []metric
	OutputVideoURL string
	References     []*service.StorageReference
	Succeeded      bool
	Tips           []string
}

// apiError is the JSON API's answer when the form can't be read.
type apiError struct {
	ErrorKind    string `json:"error_kind"`
	ErrorMessage string `json:"error_message"`
}

func (s *Server) makeIndexHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		if !allowMethod(w, r, http.MethodGet) {
			return
		}
		config := s.Context.Config
		page := &indexPage{
			ImageAccept:     strings.Join(constants.ImageExtensions, ","),
			ImageExtensions: strings.Join(constants.ImageExtensions, ", "),
			MaxImageSize:    util.HumanSize(config.MaxImageSize),
			MaxJerseyImages: constants.MaxJerseyImages,
			MaxPlayerImages: constants.MaxPlayerImages,
			MaxPlayerNumber: constants.MaxPlayerNumber,
			MaxVideoSize:    util.HumanSize(config.MaxVideoSize),
			MinPlayerNumber: constants.MinPlayerNumber,
			Mode:            config.WireMode,
			VideoAccept:     strings.Join(constants.VideoExtensions, ","),
			VideoExtensions: strings.Join(constants.VideoExtensions, ", "),
		}
		if err := s.Context.ConfigError(); err != nil {
			page.ConfigError = err.Error()
		}
		s.render(w, http.StatusOK, "index.html", page)
	}
}

func (s *Server) makeSubmitHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !allowMethod(w, r, http.MethodPost) {
			return
		}
		r.Body = http.MaxBytesReader(w, r.Body, s.maxBodySize())
		req, err := ParseUploadRequest(r)
		if err != nil {
			kind := common.KindOf(err)
			s.render(w, StatusFor(kind), "result.html", &resultPage{
				ErrorMessage: err.Error(),
				ErrorTitle:   errorTitles[kind],
				Tips:         TipsFor(kind),
			})
			return
		}
		sub := s.Controller.Submit(r.Context(), req)
		kind := common.ErrorKind(sub.ErrorKind)
		s.render(w, StatusFor(kind), "result.html", newResultPage(sub))
	}
}

func newResultPage(sub *service.Submission) *resultPage {
	kind := common.ErrorKind(sub.ErrorKind)
	page := &resultPage{
		References: sub.References,
		Succeeded:  sub.Succeeded(),
	}
	if !page.Succeeded {
		page.ErrorMessage = sub.ErrorMessage
		page.ErrorTitle = errorTitles[kind]
		page.Tips = TipsFor(kind)
		return page
	}
	page.OutputVideoURL = sub.Result.OutputVideoURL
	metrics := sub.Result.Metrics()
	names := make([]string, 0, len(metrics))
	for name := range metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		page.Metrics = append(page.Metrics, metric{Label: metricLabel(name), Value: metrics[name]})
	}
	page.JSON, _ = sub.Result.ToPrettyJSON()
	return page
}

// metricLabel turns detection_count into Detection Count.
func metricLabel(name string) string {
	words := strings.Split(name, "_")
	for i, word := range words {
		if word != "" {
			words[i] = strings.ToUpper(word[:1]) + word[1:]
		}
	}
	return strings.Join(words, " ")
}

func (s *Server) makeAPISubmitHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !allowMethod(w, r, http.MethodPost) {
			return
		}
		r.Body = http.MaxBytesReader(w, r.Body, s.maxBodySize())
		req, err := ParseUploadRequest(r)
		if err != nil {
			kind := common.KindOf(err)
			writeJSON(w, StatusFor(kind), &apiError{
				ErrorKind:    string(kind),
				ErrorMessage: err.Error(),
			})
			return
		}
		sub := s.Controller.Submit(r.Context(), req)
		writeJSON(w, StatusFor(common.ErrorKind(sub.ErrorKind)), sub)
	}
}

// healthReport is the body of GET /health.
type healthReport struct {
	Configuration string `json:"configuration"`
	Mode          string `json:"mode"`
	Status        string `json:"status"`
	Storage       string `json:"storage"`
}

func (s *Server) makeHealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !allowMethod(w, r, http.MethodGet) {
			return
		}
		report := &healthReport{
			Configuration: "ok",
			Mode:          s.Context.Config.WireMode,
			Status:        "ok",
			Storage:       "not used",
		}
		if err := s.Context.ConfigError(); err != nil {
			report.Configuration = err.Error()
			report.Status = "unavailable"
		}
		if s.Uploader != nil {
			if err := s.Uploader.Diagnose(r.Context()); err != nil {
				report.Storage = err.Error()
				report.Status = "unavailable"
			} else {
				report.Storage = "ok"
			}
		}
		status := http.StatusOK
		if report.Status != "ok" {
			status = http.StatusServiceUnavailable
		}
		writeJSON(w, status, report)
	}
}

func (s *Server) render(w http.ResponseWriter, status int, name string, data interface{}) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := s.templates.ExecuteTemplate(w, name, data); err != nil {
		s.Context.Logger.Errorf("Rendering %s: %s", name, err.Error())
	}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	jsonResponse, err := json.Marshal(data)
	if err != nil {
		status = http.StatusInternalServerError
		jsonResponse = []byte(fmt.Sprintf(`{"error_message": %q}`, err.Error()))
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	w.Write(jsonResponse)
}

func allowMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method == method {
		return true
	}
	w.Header().Set("Allow", method)
	http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	return false
}
