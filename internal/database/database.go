// Package database wraps the pgx connection pool behind a small Service
// interface so handlers can be constructed against an abstraction.
package database

import (
	"context"
	"log"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"sweepos-backend/internal/config"
)

// Service exposes the database pool and health reporting.
type Service interface {
	// GetPool returns the underlying pgx pool for query execution.
	GetPool() *pgxpool.Pool

	// Health reports connectivity and pool statistics.
	Health() map[string]string

	// Close releases all pool connections.
	Close()
}

type service struct {
	pool *pgxpool.Pool
}

// New connects to PostgreSQL and returns a Service.
// Exits the process on failure — the server cannot run without a database.
func New(cfg *config.DBConfig) Service {
	poolCfg, err := pgxpool.ParseConfig(cfg.URL())
	if err != nil {
		log.Fatalf("Invalid database config: %v", err)
	}
	poolCfg.MaxConns = 10
	poolCfg.MaxConnLifetime = time.Hour

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		log.Fatalf("Failed to create connection pool: %v", err)
	}

	if err := pool.Ping(ctx); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	log.Printf("Connected to database %s at %s:%s", cfg.Name, cfg.Host, cfg.Port)
	return &service{pool: pool}
}

func (s *service) GetPool() *pgxpool.Pool {
	return s.pool
}

func (s *service) Health() map[string]string {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	status := map[string]string{"status": "up"}
	if err := s.pool.Ping(ctx); err != nil {
		status["status"] = "down"
		status["error"] = err.Error()
		return status
	}

	stat := s.pool.Stat()
	status["total_conns"] = strconv.Itoa(int(stat.TotalConns()))
	status["idle_conns"] = strconv.Itoa(int(stat.IdleConns()))
	return status
}

func (s *service) Close() {
	s.pool.Close()
}
