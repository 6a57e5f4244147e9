package common

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/modules/rabbitmq"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	postgresImage = "docker.io/postgres:16-alpine"
	rabbitMQImage = "rabbitmq:3.12.11-management-alpine"

	containerStartTimeout = 60 * time.Second
)

// TestRabbitMQ starts a broker container for the duration of t and returns its AMQP URL.
func TestRabbitMQ(t *testing.T) string {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), containerStartTimeout)
	defer cancel()

	container, err := rabbitmq.Run(ctx, rabbitMQImage, rabbitmq.WithAdminUsername("guest"), rabbitmq.WithAdminPassword("guest"))
	if err != nil {
		t.Fatalf("could not start rabbitmq container: %v", err)
	}

	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("could not terminate rabbitmq container: %v", err)
		}
	})

	connURL, err := container.AmqpURL(ctx)
	if err != nil {
		t.Fatalf("could not get rabbitmq connection URL: %v", err)
	}

	return connURL
}

// TestDB starts a postgres container and applies the migrations found at source.
// source is relative to the calling package, e.g. "file://../../migrations".
func TestDB(source string, t *testing.T) *sql.DB {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), containerStartTimeout)
	defer cancel()

	c, err := postgres.Run(ctx,
		postgresImage,
		postgres.WithDatabase("bloghub_test"),
		postgres.WithUsername("bloghub"),
		postgres.WithPassword("bloghub"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").WithOccurrence(2).WithStartupTimeout(containerStartTimeout)))
	if err != nil {
		t.Fatalf("could not start postgres container: %v", err)
	}

	t.Cleanup(func() {
		if err := c.Terminate(context.Background()); err != nil {
			t.Logf("could not terminate postgres container: %v", err)
		}
	})

	connURL, err := c.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("could not get postgres connection string: %v", err)
	}

	if _, err := Migrate(source, connURL); err != nil {
		t.Fatalf("could not run migrations from %s: %v", source, err)
	}

	db, err := sql.Open("postgres", connURL)
	if err != nil {
		t.Fatalf("could not open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return db
}
