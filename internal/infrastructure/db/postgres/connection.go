package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/KretovDmitry/order-management-service/internal/config"
	"github.com/KretovDmitry/order-management-service/pkg/logger"
	_ "github.com/jackc/pgx/v5/stdlib"
	sqldblogger "github.com/simukti/sqldb-logger"
)

// Orders are stored as JSONB documents, the columns next to the document
// back filtering and ordering of the listing.
const schema = `
	CREATE TABLE IF NOT EXISTS orders (
		id          uuid        PRIMARY KEY,
		customer_id text        NOT NULL,
		status      text        NOT NULL,
		document    jsonb       NOT NULL,
		created_at  timestamptz NOT NULL,
		updated_at  timestamptz NOT NULL
	);
	CREATE INDEX IF NOT EXISTS orders_created_at_idx ON orders (created_at DESC, id DESC);
	CREATE INDEX IF NOT EXISTS orders_customer_id_idx ON orders (customer_id, created_at DESC, id DESC);
	CREATE INDEX IF NOT EXISTS orders_status_idx ON orders (status, created_at DESC, id DESC);
`

func Connect(ctx context.Context, cfg *config.Config, logger logger.Logger) (*sql.DB, error) {
	db, err := sql.Open("pgx", cfg.Storage.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open the database: %w", err)
	}

	// Log every query to the database.
	db = sqldblogger.OpenDriver(cfg.Storage.DSN, db.Driver(), logger)

	pingCtx, cancel := context.WithTimeout(ctx, cfg.Storage.ConnectTimeout)
	defer cancel()

	// Check connectivity and DSN correctness.
	if err = db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to the database: %w", err)
	}

	return db, nil
}

// EnsureSchema creates the orders table and its indexes if they are missing.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}
