// cmd/api/main.go
package main

import (
	"net/http"
	"net/http/httputil"
	"net/url"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"gamershop/internal/telemetry"
)

// The gateway fronts a split deployment: the catalog service and a
// storefront started with a catalog URL.
func main() {
	log := telemetry.NewLogger(getEnv("GAMERSHOP_LOG_LEVEL", "info"), getEnv("GAMERSHOP_LOG_FORMAT", "console")).
		With().Str("service", "gateway").Logger()

	catalogServiceURL, err := url.Parse(getEnv("CATALOG_SERVICE_URL", "http://localhost:8081"))
	if err != nil {
		log.Fatal().Err(err).Msg("invalid CATALOG_SERVICE_URL")
	}
	storefrontServiceURL, err := url.Parse(getEnv("STOREFRONT_SERVICE_URL", "http://localhost:8082"))
	if err != nil {
		log.Fatal().Err(err).Msg("invalid STOREFRONT_SERVICE_URL")
	}

	catalogProxy := httputil.NewSingleHostReverseProxy(catalogServiceURL)
	storefrontProxy := httputil.NewSingleHostReverseProxy(storefrontServiceURL)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Handle("/api/games", catalogProxy)
	router.Handle("/api/games/*", catalogProxy)
	router.Handle("/*", storefrontProxy)

	port := getEnv("PORT", "8080")
	log.Info().Str("port", port).Msg("API gateway listening")
	srv := &http.Server{Addr: ":" + port, Handler: router, ReadHeaderTimeout: 10 * time.Second}
	if err := srv.ListenAndServe(); err != nil {
		log.Fatal().Err(err).Msg("gateway stopped")
	}
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
