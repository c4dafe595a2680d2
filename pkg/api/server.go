// Package api BLM Reader REST API
//
// @title           BLM Reader REST API
// @version         1.0.0
// @description     Random access to the records of BLM property feed files.
// @host            localhost:8080
// @BasePath        /api/v1
//
// @securityDefinitions.apikey ApiKeyAuth
// @in              header
// @name            X-API-Key
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-kit/log/level"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/swaggo/swag"
)

const swaggerUI = `<!DOCTYPE html>
<html>
<head>
	 <title>BLM Reader API Documentation</title>
	 <link rel="stylesheet" type="text/css" href="https://unpkg.com/swagger-ui-dist@3.25.0/swagger-ui.css" />
</head>
<body>
	 <div id="swagger-ui"></div>
	 <script src="https://unpkg.com/swagger-ui-dist@3.25.0/swagger-ui-bundle.js"></script>
	 <script>
	   window.onload = function() {
	     SwaggerUIBundle({
	       url: '/swagger/swagger.json',
	       dom_id: '#swagger-ui',
	       presets: [
	         SwaggerUIBundle.presets.apis,
	         SwaggerUIBundle.presets.standalone
	       ]
	     });
	   };
	 </script>
</body>
</html>`

// NewRouter wires every route of server. Metrics are served from gatherer.
func NewRouter(server *Server, gatherer prometheus.Gatherer) chi.Router {
	metrics := server.metrics

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(requestLogger(server.logger))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Prometheus metrics endpoint (unprotected for scraping)
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(metrics.InstrumentAuthMiddleware(apiKeyMiddleware(server.config.APIKey)))

		r.Get("/health", metrics.InstrumentHandler("GET", "/api/v1/health", server.handleHealth))

		r.Post("/files", metrics.InstrumentHandler("POST", "/api/v1/files", server.handleOpenFile))
		r.Get("/files", metrics.InstrumentHandler("GET", "/api/v1/files", server.handleListFiles))
		r.Get("/files/{id}", metrics.InstrumentHandler("GET", "/api/v1/files/{id}", server.handleFileInfo))
		r.Delete("/files/{id}", metrics.InstrumentHandler("DELETE", "/api/v1/files/{id}", server.handleCloseFile))

		r.Get("/files/{id}/records/{n}", metrics.InstrumentHandler("GET", "/api/v1/files/{id}/records/{n}", server.handleGetRecord))
		r.Get("/files/{id}/records/{n}/fields/{name}", metrics.InstrumentHandler("GET", "/api/v1/files/{id}/records/{n}/fields/{name}", server.handleGetField))
		r.Get("/files/{id}/attachments/*", metrics.InstrumentHandler("GET", "/api/v1/files/{id}/attachments/*", server.handleGetAttachment))
		r.Get("/files/{id}/search", metrics.InstrumentHandler("GET", "/api/v1/files/{id}/search", server.handleSearch))
	})

	// Swagger documentation (unprotected)
	r.Get("/swagger/*", func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/swagger/", "/swagger/index.html":
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte(swaggerUI))
		case "/swagger/swagger.json":
			doc, err := swag.ReadDoc("swagger")
			if err != nil {
				level.Error(server.logger).Log("msg", "failed to generate swagger doc", "err", err)
				http.Error(w, "Failed to generate Swagger documentation", http.StatusInternalServerError)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(doc))
		default:
			http.NotFound(w, r)
		}
	})

	return r
}

// StartServer serves the API until ctx is canceled, then closes every open file
func StartServer(ctx context.Context, sessions *SessionRegistry, config ServerConfig) error {
	SwaggerInfo.Host = fmt.Sprintf("localhost:%d", config.Port)

	metrics := NewMetrics(prometheus.DefaultRegisterer)
	server := NewServer(sessions, config, metrics)
	router := NewRouter(server, prometheus.DefaultGatherer)

	bind := config.Bind
	if bind == "" {
		bind = "127.0.0.1"
	}
	httpServer := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", bind, config.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		level.Info(server.logger).Log("msg", "starting BLM reader REST API server", "addr", httpServer.Addr)
		level.Info(server.logger).Log("msg", "metrics available", "url", fmt.Sprintf("http://%s/metrics", httpServer.Addr))
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		sessions.CloseAll()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	level.Info(server.logger).Log("msg", "shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	err := httpServer.Shutdown(shutdownCtx)
	if cerr := sessions.CloseAll(); err == nil {
		err = cerr
	}
	return err
}
