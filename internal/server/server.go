package server

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gorilla/websocket"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"gridlink/internal/anchor"
	"gridlink/internal/config"
	"gridlink/internal/constants"
	"gridlink/internal/export"
	"gridlink/internal/job"
	"gridlink/internal/security"
	"gridlink/internal/session"
	"gridlink/internal/source"
	"gridlink/internal/storage"
)

type Server struct {
	Config    *config.Config
	Sessions  *session.Manager
	Jobs      *job.Store
	Pipeline  *export.Pipeline
	Source    source.Source
	Store     storage.ObjectStore // nil when S3 is not configured
	Anchorer  anchor.Anchorer
	Protector *security.BruteForceProtector

	upgrader websocket.Upgrader
}

func New(cfg *config.Config) (*Server, error) {
	sessions := session.NewManager(session.NewStore(cfg.Redis), cfg.SessionPin, cfg.SessionTTL)
	jobs := job.NewStore()

	var src source.Source
	influx, err := source.NewInfluxSource(cfg.Influx)
	switch err {
	case nil:
		src = influx
	case source.ErrNotConfigured:
		log.Println("⚠️  InfluxDB not configured; exports will fail until it is")
		src = source.Unavailable{}
	default:
		return nil, err
	}

	var store storage.ObjectStore
	s3Store, err := storage.NewS3Store(context.Background(), cfg.S3)
	switch err {
	case nil:
		store = s3Store
	case storage.ErrNotConfigured:
		log.Println("⚠️  S3 not configured; storage endpoints disabled")
	default:
		return nil, err
	}

	s := &Server{
		Config:    cfg,
		Sessions:  sessions,
		Jobs:      jobs,
		Pipeline:  export.NewPipeline(jobs, src, cfg.ExportWorkers),
		Source:    src,
		Store:     store,
		Anchorer:  anchor.StubAnchorer{},
		Protector: security.NewBruteForceProtector(constants.MaxAuthAttempts, constants.BlockDuration),
	}

	s.upgrader = websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			return security.ValidateOrigin(r, cfg.AllowedOrigins)
		},
	}

	return s, nil
}

// Handler builds the routing table and middleware chain.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.HandleHealth)
	mux.HandleFunc("POST /session/open", s.HandleSessionOpen)
	mux.HandleFunc("POST /session/revoke", s.HandleSessionRevoke)

	// Everything below requires a live bearer session.
	protected := func(h http.HandlerFunc) http.Handler {
		return s.RequireAuth(h)
	}

	mux.Handle("POST /bulk/export", protected(s.HandleExport))
	mux.Handle("GET /bulk/status/{jobId}", protected(s.HandleStatus))
	mux.Handle("GET /bulk/download/{jobId}", protected(s.HandleDownload))
	mux.Handle("GET /bulk/watch/{jobId}", protected(s.HandleWatch))
	mux.Handle("GET /bulk/jobs", protected(s.HandleJobs))
	mux.Handle("POST /anchor", protected(s.HandleAnchor))
	mux.Handle("POST /storage/upload", protected(s.HandleStorageUpload))
	mux.Handle("GET /storage/presigned-url/{fileHash}", protected(s.HandlePresignedURL))
	mux.Handle("GET /storage/download", protected(s.HandleStorageDownload))
	mux.Handle("GET /api/config", protected(s.HandleConfigGet))
	mux.Handle("POST /api/config", protected(s.HandleConfigUpdate))

	var handler http.Handler = mux
	handler = security.MaxBodySize(constants.MaxBodySize)(handler)
	handler = security.SecurityHeaders(handler)
	handler = CorsMiddleware(s.Config.AllowedOrigins)(handler)
	handler = RecoveryMiddleware(handler)

	return handler
}

// Run serves until SIGINT/SIGTERM, then shuts down gracefully.
func (s *Server) Run() {
	server := &http.Server{
		Addr:              ":" + s.Config.Port,
		Handler:           h2c.NewHandler(s.Handler(), &http2.Server{}),
		IdleTimeout:       constants.IdleTimeout,
		ReadHeaderTimeout: constants.ReadHeaderTimeout,
		MaxHeaderBytes:    1 << 20,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server error: %v", err)
		}
	}()

	log.Printf("🚀 Connector listening on port %s", s.Config.Port)

	<-sigChan
	log.Println("🛑 Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	s.Cleanup()
	log.Println("✅ Server stopped")
}

func (s *Server) Cleanup() {
	if err := s.Sessions.Close(); err != nil {
		log.Printf("Failed to close session store: %v", err)
	}
	s.Protector.Close()
	if closer, ok := s.Source.(interface{ Close() }); ok {
		closer.Close()
	}
}
