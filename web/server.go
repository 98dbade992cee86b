package web

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"net/http"
	"time"

	"github.com/brandpulse/brandpulse-demo/constants"
	"github.com/brandpulse/brandpulse-demo/models/common"
	"github.com/brandpulse/brandpulse-demo/submission"
)

//go:embed templates/*.html
var templateFS embed.FS

// ShutdownTimeout is how long Run waits for in-flight submissions
// to finish after its context is cancelled.
var ShutdownTimeout = 30 * time.Second

// Server is the demo's web front end: an HTML form, a JSON API, and a
// health check, all running submissions through one Controller.
type Server struct {
	Context    *common.Context
	Controller *submission.Controller

	// Uploader is used only by the health check. It's nil in
	// multipart mode.
	Uploader *submission.StorageUploader

	httpServer *http.Server
	templates  *template.Template
}

// NewServer returns a server wired to the clients in context.
func NewServer(context *common.Context) *Server {
	server := &Server{
		Context:    context,
		Controller: submission.NewController(context),
		templates:  template.Must(template.ParseFS(templateFS, "templates/*.html")),
	}
	if context.Config.UsesStorage() {
		server.Uploader = submission.NewStorageUploader(context)
	}
	server.httpServer = &http.Server{
		Addr:              context.Config.HTTPAddr,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 30 * time.Second,
		// Writes wait on the processing API.
		WriteTimeout: context.Config.RequestTimeout + time.Minute,
		IdleTimeout:  2 * time.Minute,
	}
	return server
}

// Handler returns the routes wrapped in the logging middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.makeIndexHandler())
	mux.HandleFunc("/submit", s.makeSubmitHandler())
	mux.HandleFunc("/api/v1/submissions", s.makeAPISubmitHandler())
	mux.HandleFunc("/health", s.makeHealthHandler())
	return LoggingMiddleware(s.Context.Logger, mux)
}

// Run serves HTTP on Config.HTTPAddr until ctx is cancelled, then
// shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errChan := make(chan error, 1)
	go func() {
		s.Context.Logger.Infof("Listening on %s in %s mode", s.httpServer.Addr, s.Context.Config.WireMode)
		errChan <- s.httpServer.ListenAndServe()
	}()
	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
	}
	s.Context.Logger.Info("Shutdown signal received")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errChan; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	s.Context.Logger.Info("Server stopped")
	return nil
}

// maxBodySize caps request bodies at one video plus every image,
// with room for the text fields.
func (s *Server) maxBodySize() int64 {
	config := s.Context.Config
	return config.MaxVideoSize +
		int64(constants.MaxPlayerImages+constants.MaxJerseyImages)*config.MaxImageSize + (1 << 20)
}
