package server

import (
	"context"
	"errors"
	"net/http"
	"os"

	"github.com/akolanti/PDFChat/internal/adapter/utils"
	"github.com/akolanti/PDFChat/internal/config"
	"github.com/akolanti/PDFChat/internal/handlers"
	"github.com/akolanti/PDFChat/internal/middleware"
	"github.com/akolanti/PDFChat/pkg/logger_i"
	"github.com/go-chi/chi/v5"
)

var (
	server  *http.Server
	_logger = logger_i.NewLogger("Server")
)

// WorkerStopper is satisfied by *worker.Pool.
type WorkerStopper interface {
	Stop()
}

type ShutdownParams struct {
	GracefulShutdown chan os.Signal
	StopExecution    chan bool
	Workers          WorkerStopper
	CloseServices    context.CancelFunc
}

// NewRouter wires every route behind the tracing middleware.
func NewRouter(h *handlers.RequestHandler, mcpHandler http.Handler) chi.Router {
	r := utils.NewRouter(middleware.Wrap)

	r.Get("/", h.IndexHandler)
	r.Get("/chat", h.ChatPageHandler)
	r.Handle("/static/*", handlers.StaticHandler())

	r.Route("/api", func(api chi.Router) {
		api.Post("/chat", h.ChatHandler)
		api.Post("/chat/reset", h.ResetChatHandler)
		api.Get("/get/file_names", h.FileNamesHandler)
		api.Post("/delete/file", h.DeleteFileHandler)
		api.Post("/upload/pdf", h.UploadPDFHandler)
		api.Get("/jobs/{id}", h.GetJobStatusHandler)
	})

	if mcpHandler != nil {
		r.Handle("/mcp", mcpHandler)
		r.Handle("/mcp/*", mcpHandler)
	}
	return r
}

func CreateServer(listenAddr string, handler http.Handler) {
	server = &http.Server{
		Addr:         listenAddr,
		Handler:      handler,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
		IdleTimeout:  config.IdleTimeout,
	}

	_logger.Info("Server is listening at", "address", listenAddr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		_logger.Error("Server crashed", "error", err.Error(), "addr", listenAddr)
	}
}

func ShutDownHandler(shutdownParams ShutdownParams) {
	state := <-shutdownParams.GracefulShutdown
	_logger.Info("Server is shutting down", "signal", state.String())

	ctx, cancel := context.WithTimeout(context.Background(), config.ShutdownContextTimeout)
	defer cancel()

	done := make(chan struct{})

	go func() {
		if server != nil {
			server.SetKeepAlivesEnabled(false)
			if err := server.Shutdown(ctx); err != nil {
				_logger.Error("Could not shutdown gracefully", "error", err)
			}
		}

		shutdownParams.Workers.Stop()
		shutdownParams.CloseServices()
		close(done)
	}()

	select {
	case <-done:
		_logger.Info("Gracefully shut down")
	case <-ctx.Done():
		_logger.Error("Force shut down")
		os.Exit(1)
	}
	close(shutdownParams.StopExecution)
}
