package credentials

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore keeps server records in the servers table. Used when a
// database URL is configured; deployments without Postgres fall back to the
// file store.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) GetAPIKey(ctx context.Context, serverID string) (string, error) {
	var apiKey string
	err := s.pool.QueryRow(ctx,
		`SELECT api_key FROM servers WHERE id = $1`, serverID).Scan(&apiKey)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrServerNotConfigured
		}
		return "", fmt.Errorf("failed to query api key: %w", err)
	}
	if apiKey == "" {
		return "", ErrServerNotConfigured
	}
	return apiKey, nil
}

func (s *PostgresStore) GetServer(ctx context.Context, serverID string) (*Server, error) {
	var server Server
	err := s.pool.QueryRow(ctx,
		`SELECT id, name, address, port, online_mode, api_key, created_at
		 FROM servers WHERE id = $1`, serverID).
		Scan(&server.ID, &server.Name, &server.Address, &server.Port,
			&server.OnlineMode, &server.APIKey, &server.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrServerNotConfigured
		}
		return nil, fmt.Errorf("failed to query server: %w", err)
	}
	return &server, nil
}

func (s *PostgresStore) ListServers(ctx context.Context) ([]Server, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, address, port, online_mode, api_key, created_at
		 FROM servers ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("failed to list servers: %w", err)
	}
	defer rows.Close()

	var servers []Server
	for rows.Next() {
		var server Server
		if err := rows.Scan(&server.ID, &server.Name, &server.Address, &server.Port,
			&server.OnlineMode, &server.APIKey, &server.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan server: %w", err)
		}
		servers = append(servers, server)
	}
	return servers, rows.Err()
}

func (s *PostgresStore) UpsertServer(ctx context.Context, server *Server) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO servers (id, name, address, port, online_mode, api_key, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (id) DO UPDATE SET
		   name = EXCLUDED.name,
		   address = EXCLUDED.address,
		   port = EXCLUDED.port,
		   online_mode = EXCLUDED.online_mode,
		   api_key = EXCLUDED.api_key`,
		server.ID, server.Name, server.Address, server.Port,
		server.OnlineMode, server.APIKey, server.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert server: %w", err)
	}
	return nil
}

func (s *PostgresStore) DeleteServer(ctx context.Context, serverID string) (bool, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM servers WHERE id = $1`, serverID)
	if err != nil {
		return false, fmt.Errorf("failed to delete server: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}
