package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"trip-booking/internal/models"
	"trip-booking/pkg/logger"

	// PostgreSQL driver
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	// Migration libraries
	"github.com/golang-migrate/migrate/v4"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	// Environment variables
	_ "github.com/joho/godotenv/autoload"
)

// ErrStoreUnavailable wraps storage-layer failures of the booking store.
var ErrStoreUnavailable = errors.New("booking store unavailable")

// defaultUserEmail identifies the single demo user used when a request
// carries no identity token.
const defaultUserEmail = "demo@launchpad.local"

const queryTimeout = 5 * time.Second

// Service is the per-user booking store. Booked-launch sets change only
// through BookTrips and CancelTrip; reads never mutate.
type Service interface {
	// Health returns a map of health status information.
	Health() map[string]string

	// Close terminates the database connection.
	Close() error

	// Migrate applies pending schema migrations.
	Migrate() error

	// FindOrCreateUser looks a user up by email, creating one if needed.
	// An empty email resolves to the default demo user. At most one user
	// row exists per email, including under concurrent first-time logins.
	FindOrCreateUser(email string) (*models.User, error)

	GetBookedLaunchIDs(userID int) ([]string, error)
	IsBooked(userID int, launchID string) (bool, error)

	// BookTrips returns the subset of launchIDs that were successfully
	// booked. Re-booking an already-booked launch is idempotent and
	// counts as success.
	BookTrips(userID int, launchIDs []string) ([]string, error)

	// CancelTrip reports true if the launch was booked and is now
	// removed; false means it was not booked, which is not an error.
	CancelTrip(userID int, launchID string) (bool, error)
}

type service struct {
	db  *sql.DB
	log logger.Logger
}

var (
	database   = os.Getenv("DB_DATABASE")
	password   = os.Getenv("DB_PASSWORD")
	username   = os.Getenv("DB_USERNAME")
	port       = os.Getenv("DB_PORT")
	host       = os.Getenv("DB_HOST")
	schema     = os.Getenv("DB_SCHEMA")
	migrations = os.Getenv("DB_MIGRATIONS")
	dbInstance *service
)

func New(log logger.Logger) Service {
	// Reuse Connection
	if dbInstance != nil {
		return dbInstance
	}
	connStr := fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable&search_path=%s",
		username, password, host, port, database, schema,
	)
	db, err := sql.Open("pgx", connStr)
	if err != nil {
		log.Fatal("opening database connection", "error", err)
	}

	dbInstance = &service{
		db:  db,
		log: log,
	}
	return dbInstance
}

// Health checks the health of the database connection by pinging the
// database and reporting pool statistics.
func (s *service) Health() map[string]string {
	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
	defer cancel()

	stats := make(map[string]string)

	if err := s.db.PingContext(ctx); err != nil {
		stats["status"] = "down"
		stats["error"] = fmt.Sprintf("db down: %v", err)
		s.log.Error("database ping failed", "error", err)
		return stats
	}

	stats["status"] = "up"
	stats["message"] = "It's healthy"

	dbStats := s.db.Stats()
	stats["open_connections"] = strconv.Itoa(dbStats.OpenConnections)
	stats["in_use"] = strconv.Itoa(dbStats.InUse)
	stats["idle"] = strconv.Itoa(dbStats.Idle)
	stats["wait_count"] = strconv.FormatInt(dbStats.WaitCount, 10)
	stats["wait_duration"] = dbStats.WaitDuration.String()

	if dbStats.OpenConnections > 100 {
		stats["message"] = "The database is experiencing heavy load."
	}
	if dbStats.WaitCount > 1000 {
		stats["message"] = "The database has a high number of wait events, indicating potential bottlenecks."
	}

	return stats
}

// Close closes the database connection.
func (s *service) Close() error {
	s.log.Info("disconnected from database", "database", database)
	return s.db.Close()
}

// Migrate applies the SQL migrations from DB_MIGRATIONS (default
// "migrations") against the open connection.
func (s *service) Migrate() error {
	driver, err := migratepg.WithInstance(s.db, &migratepg.Config{})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	dir := migrations
	if dir == "" {
		dir = "migrations"
	}
	m, err := migrate.NewWithDatabaseInstance("file://"+dir, database, driver)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

func (s *service) FindOrCreateUser(email string) (*models.User, error) {
	if email == "" {
		email = defaultUserEmail
	}

	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	// The no-op DO UPDATE makes RETURNING yield the row whether it was
	// inserted or already present, so concurrent first logins with the
	// same email resolve to one user.
	query := `
		INSERT INTO users (email)
		VALUES ($1)
		ON CONFLICT (email) DO UPDATE SET email = EXCLUDED.email
		RETURNING id, email
	`
	var user models.User
	if err := s.db.QueryRowContext(ctx, query, email).Scan(&user.ID, &user.Email); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return &user, nil
}

func (s *service) GetBookedLaunchIDs(userID int) ([]string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	rows, err := s.db.QueryContext(ctx,
		`SELECT launch_id FROM trips WHERE user_id = $1 ORDER BY id`, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return ids, nil
}

func (s *service) IsBooked(userID int, launchID string) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	var booked bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM trips WHERE user_id = $1 AND launch_id = $2)`,
		userID, launchID).Scan(&booked)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return booked, nil
}

func (s *service) BookTrips(userID int, launchIDs []string) ([]string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	// ON CONFLICT DO NOTHING keeps re-booking idempotent. A launch id the
	// store rejects (constraint violation) fails alone without aborting
	// the rest of the batch; any other error means the store itself is
	// unhealthy and aborts the whole call.
	query := `
		INSERT INTO trips (user_id, launch_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, launch_id) DO NOTHING
	`
	booked := make([]string, 0, len(launchIDs))
	for _, id := range launchIDs {
		if _, err := s.db.ExecContext(ctx, query, userID, id); err != nil {
			if isRowRejection(err) {
				s.log.Warn("booking rejected", "user_id", userID, "launch_id", id, "error", err)
				continue
			}
			return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		}
		booked = append(booked, id)
	}
	return booked, nil
}

// isRowRejection reports whether the error condemns only the row being
// inserted (SQLSTATE class 23, integrity constraint violations) rather
// than the connection or the store as a whole.
func isRowRejection(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && strings.HasPrefix(pgErr.Code, "23")
}

func (s *service) CancelTrip(userID int, launchID string) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	res, err := s.db.ExecContext(ctx,
		`DELETE FROM trips WHERE user_id = $1 AND launch_id = $2`, userID, launchID)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return affected > 0, nil
}
