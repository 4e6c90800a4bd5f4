package server

import (
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"trip-booking/internal/catalog"
	"trip-booking/internal/database"
	"trip-booking/internal/resolver"
	"trip-booking/pkg/logger"
	"trip-booking/pkg/metrics"

	// Environment variables
	_ "github.com/joho/godotenv/autoload"
)

const defaultCatalogURL = "https://api.spacexdata.com/v3"

type Server struct {
	port     int
	db       database.Service
	resolver *resolver.Resolver
	log      logger.Logger
	metrics  *metrics.Metrics
}

// NewServer wires the booking store, the launch catalog client and the
// GraphQL resolver into an http.Server. Schema migrations run before the
// server is returned.
func NewServer(log logger.Logger) *http.Server {
	port, _ := strconv.Atoi(os.Getenv("PORT"))
	if port == 0 {
		port = 8080
	}

	db := database.New(log)
	if err := db.Migrate(); err != nil {
		log.Fatal("applying migrations", "error", err)
	}

	catalogURL := os.Getenv("SPACEXAPIURL")
	if catalogURL == "" {
		catalogURL = defaultCatalogURL
	}

	m := metrics.New("trip_booking")
	res, err := resolver.New(db, catalog.New(catalogURL, log), log, m)
	if err != nil {
		log.Fatal("building resolver", "error", err)
	}

	s := &Server{
		port:     port,
		db:       db,
		resolver: res,
		log:      log,
		metrics:  m,
	}

	return &http.Server{
		Addr:         fmt.Sprintf(":%d", s.port),
		Handler:      s.RegisterRoutes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
}
