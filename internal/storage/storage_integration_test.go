// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/canonical/device-audit/internal/db"
	"github.com/canonical/device-audit/internal/logging"
	"github.com/canonical/device-audit/internal/monitoring"
	"github.com/canonical/device-audit/internal/tracing"
	"github.com/canonical/device-audit/internal/types"
	"github.com/canonical/device-audit/migrations"
)

func sanitizeName(name string) string {
	return strings.ToLower(strings.NewReplacer("/", "-", " ", "-", "_", "-").Replace(name))
}

func setupTestPostgres(t *testing.T) (string, *postgres.PostgresContainer) {
	t.Helper()
	ctx := context.Background()

	containerName := fmt.Sprintf("device-audit-%s", sanitizeName(t.Name()))

	var pgContainer *postgres.PostgresContainer
	func() {
		defer func() {
			if r := recover(); r != nil {
				t.Skipf("Skipping: Docker not available (%v)", r)
			}
		}()
		var err error
		pgContainer, err = postgres.Run(ctx,
			"postgres:16-alpine",
			postgres.WithDatabase("testdb"),
			postgres.WithUsername("testuser"),
			postgres.WithPassword("testpass"),
			testcontainers.CustomizeRequest(testcontainers.GenericContainerRequest{
				ContainerRequest: testcontainers.ContainerRequest{
					Name: containerName,
				},
			}),
		)
		if err != nil {
			t.Skipf("Skipping: failed to start PostgreSQL container: %v", err)
		}
	}()

	if pgContainer == nil {
		return "", nil
	}

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("Failed to get connection string: %v", err)
	}

	// Wait for PostgreSQL to be ready
	maxRetries := 10
	for i := 0; i < maxRetries; i++ {
		config, err := pgx.ParseConfig(connStr)
		if err != nil {
			t.Fatalf("Failed to parse config: %v", err)
		}
		sqlDB := stdlib.OpenDB(*config)
		if err := sqlDB.Ping(); err == nil {
			sqlDB.Close()
			break
		}
		sqlDB.Close()
		if i < maxRetries-1 {
			time.Sleep(time.Second)
		}
	}

	return connStr, pgContainer
}

func runMigrations(t *testing.T, connStr string) {
	t.Helper()
	config, err := pgx.ParseConfig(connStr)
	if err != nil {
		t.Fatalf("Failed to parse DSN: %v", err)
	}

	sqlDB := stdlib.OpenDB(*config)
	defer sqlDB.Close()

	goose.SetBaseFS(migrations.EmbedMigrations)
	if err := goose.SetDialect("postgres"); err != nil {
		t.Fatalf("Failed to set dialect: %v", err)
	}

	if err := goose.Up(sqlDB, "."); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}
}

func TestStorageIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	connStr, container := setupTestPostgres(t)
	if container == nil {
		return
	}
	defer func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("Failed to terminate container: %v", err)
		}
	}()

	runMigrations(t, connStr)

	tracer := tracing.NewNoopTracer()
	monitor := monitoring.NewNoopMonitor("device-audit")
	logger := logging.NewNoopLogger()

	dbClient, err := db.NewDBClient(db.Config{DSN: connStr, MinConns: 1, MaxConns: 4}, tracer, monitor, logger)
	if err != nil {
		t.Fatalf("Failed to create DB client: %v", err)
	}
	defer dbClient.Close()

	ctx := context.Background()
	if err := dbClient.Ping(ctx); err != nil {
		t.Fatalf("Failed to ping database: %v", err)
	}

	s := NewStorage(dbClient, tracer, monitor, logger)

	first := testRun()
	matches := []types.AuditMatch{
		{UserPrincipalName: "b@x.com", DisplayName: "Bob", Status: types.StatusActive},
		{UserPrincipalName: "a@x.com", DisplayName: "Ann", Status: types.StatusActive},
	}
	if err := s.SaveRun(ctx, first, matches); err != nil {
		t.Fatalf("Failed to save run: %v", err)
	}

	second := testRun()
	second.ID = "run-2"
	second.StartedAt = first.StartedAt.Add(time.Hour)
	second.FinishedAt = second.StartedAt.Add(time.Minute)
	second.Matched = 0
	if err := s.SaveRun(ctx, second, nil); err != nil {
		t.Fatalf("Failed to save second run: %v", err)
	}

	// a duplicate must leave no partial rows behind
	if err := s.SaveRun(ctx, first, matches[:1]); !errors.Is(err, ErrDuplicateKey) {
		t.Fatalf("Expected ErrDuplicateKey, got %v", err)
	}

	got, err := s.GetRun(ctx, "run-1")
	if err != nil {
		t.Fatalf("Failed to get run: %v", err)
	}
	if got.Input != "users.csv" || got.Matched != 2 || got.Source != types.InputSourceFile {
		t.Errorf("Unexpected run %+v", got)
	}
	if got.CreatedAt.IsZero() {
		t.Error("Expected created_at to be set")
	}

	if _, err := s.GetRun(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}

	runs, err := s.ListRuns(ctx, 1, 10)
	if err != nil {
		t.Fatalf("Failed to list runs: %v", err)
	}
	if len(runs) != 2 || runs[0].ID != "run-2" || runs[1].ID != "run-1" {
		t.Fatalf("Expected runs most recent first, got %v", runs)
	}

	page2, err := s.ListRuns(ctx, 2, 1)
	if err != nil {
		t.Fatalf("Failed to list second page: %v", err)
	}
	if len(page2) != 1 || page2[0].ID != "run-1" {
		t.Errorf("Expected run-1 on second page, got %v", page2)
	}

	stored, err := s.ListRunMatches(ctx, "run-1")
	if err != nil {
		t.Fatalf("Failed to list matches: %v", err)
	}
	if len(stored) != 2 || stored[0] != matches[0] || stored[1] != matches[1] {
		t.Errorf("Expected matches in report order, got %v", stored)
	}
}
