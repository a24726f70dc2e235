package helper

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

// DatabaseConfiguration holds the connection settings for PostgreSQL
type DatabaseConfiguration struct {
	Host     string
	Port     string
	Database string
	Username string
	Password string
	Schema   string
	SSLMode  string
}

// Database wraps a sql connection together with its logger
type Database struct {
	Name     string
	Instance *sql.DB
	Logger   *slog.Logger
}

// NewDatabaseConfiguration reads the database configuration from the environment.
// A .env file in the working directory is loaded first if it exists.
func NewDatabaseConfiguration() (*DatabaseConfiguration, error) {
	_ = godotenv.Load()

	config := &DatabaseConfiguration{
		Host:     os.Getenv("GROUNDER_DB_HOST"),
		Port:     os.Getenv("GROUNDER_DB_PORT"),
		Database: os.Getenv("GROUNDER_DB_DATABASE"),
		Username: os.Getenv("GROUNDER_DB_USERNAME"),
		Password: os.Getenv("GROUNDER_DB_PASSWORD"),
		Schema:   os.Getenv("GROUNDER_DB_SCHEMA"),
		SSLMode:  os.Getenv("GROUNDER_DB_SSLMODE"),
	}

	if config.Host == "" || config.Port == "" || config.Database == "" || config.Username == "" {
		return nil, NewError("database configuration", fmt.Errorf("GROUNDER_DB_HOST, GROUNDER_DB_PORT, GROUNDER_DB_DATABASE and GROUNDER_DB_USERNAME must be set"))
	}
	if config.Schema == "" {
		config.Schema = "public"
	}
	if config.SSLMode == "" {
		config.SSLMode = "disable"
	}

	return config, nil
}

// DSN returns the lib/pq connection string
func (c *DatabaseConfiguration) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s search_path=%s",
		c.Host, c.Port, c.Username, c.Password, c.Database, c.SSLMode, c.Schema,
	)
}

// NewDatabase opens and pings a PostgreSQL connection.
// It exits the process if the database is unreachable.
func NewDatabase(name string, config *DatabaseConfiguration, logger *slog.Logger) *Database {
	instance, err := connect(config)
	if err != nil {
		log.Fatalf("error connecting to database %s: %v", name, err)
	}

	logger.Info("Connected to database", slog.String("name", name), slog.String("host", config.Host))

	return &Database{
		Name:     name,
		Instance: instance,
		Logger:   logger,
	}
}

// Close closes the underlying connection pool
func (d *Database) Close() error {
	return d.Instance.Close()
}

// NewTestDatabase opens a database connection with a discarding logger
func NewTestDatabase(config *DatabaseConfiguration) *Database {
	return NewDatabase("test", config, slog.New(slog.DiscardHandler))
}

func connect(config *DatabaseConfiguration) (*sql.DB, error) {
	instance, err := sql.Open("postgres", config.DSN())
	if err != nil {
		return nil, NewError("open", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := instance.PingContext(ctx); err != nil {
		_ = instance.Close()
		return nil, NewError("ping", err)
	}

	return instance, nil
}

// SetTestDatabaseConfigEnvs sets the database environment for the test container on the given port
func SetTestDatabaseConfigEnvs(t *testing.T, port string) {
	t.Setenv("GROUNDER_DB_HOST", "localhost")
	t.Setenv("GROUNDER_DB_PORT", port)
	t.Setenv("GROUNDER_DB_DATABASE", "database")
	t.Setenv("GROUNDER_DB_USERNAME", "user")
	t.Setenv("GROUNDER_DB_PASSWORD", "password")
	t.Setenv("GROUNDER_DB_SCHEMA", "public")
	t.Setenv("GROUNDER_DB_SSLMODE", "disable")
}

// MustStartPostgresContainer starts a pgvector enabled PostgreSQL container.
// It returns the teardown function and the mapped host port.
func MustStartPostgresContainer() (func(ctx context.Context, opts ...testcontainers.TerminateOption) error, string, error) {
	ctx := context.Background()

	container, err := postgres.Run(
		ctx,
		"pgvector/pgvector:pg17",
		postgres.WithDatabase("database"),
		postgres.WithUsername("user"),
		postgres.WithPassword("password"),
		postgres.BasicWaitStrategies(),
	)
	if err != nil {
		return nil, "", NewError("start postgres container", err)
	}

	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		return container.Terminate, "", NewError("get mapped port", err)
	}

	return container.Terminate, port.Port(), nil
}
