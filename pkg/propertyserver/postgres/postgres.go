// Package postgres is a property server stored in PostgreSQL. Assets and
// collection elements are kept as JSONB documents.
package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/ajitpratap0/ocf/pkg/beans"
	"github.com/ajitpratap0/ocf/pkg/config"
	"github.com/ajitpratap0/ocf/pkg/json"
	"github.com/ajitpratap0/ocf/pkg/ocferrors"
	"github.com/ajitpratap0/ocf/pkg/propertyserver"
)

// Name is the registered backend name.
const Name = "postgres"

func init() {
	propertyserver.Register(propertyserver.Info{
		Name:         Name,
		Description:  "PostgreSQL property server with JSONB documents and connection pooling",
		Capabilities: []string{"read", "write", "connection_pooling"},
	}, func(ctx context.Context, cfg *config.Config, log *zap.Logger) (propertyserver.PropertyServer, error) {
		return New(ctx, cfg.PropertyServer, log)
	})
}

const schema = `
CREATE TABLE IF NOT EXISTS ocf_assets (
	guid TEXT PRIMARY KEY,
	body JSONB NOT NULL
);
CREATE TABLE IF NOT EXISTS ocf_elements (
	owner_guid TEXT NOT NULL,
	kind       TEXT NOT NULL,
	ordinal    BIGINT NOT NULL,
	body       JSONB NOT NULL,
	PRIMARY KEY (owner_guid, kind, ordinal)
);`

// Server reads metadata from PostgreSQL.
type Server struct {
	pool    *pgxpool.Pool
	timeout time.Duration
	logger  *zap.Logger
}

var _ propertyserver.ReadWriter = (*Server)(nil)

// New connects to the database named by cfg.DSN and creates the tables if they
// do not exist.
func New(ctx context.Context, cfg config.PropertyServerConfig, log *zap.Logger) (*Server, error) {
	if cfg.DSN == "" {
		return nil, ocferrors.New(ocferrors.ErrorTypeConfig, "dsn is required").WithDetail("backend", Name)
	}
	if log == nil {
		log = zap.NewNop()
	}

	poolConfig, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, ocferrors.Wrap(err, ocferrors.ErrorTypeConfig, "failed to parse connection string")
	}
	if poolConfig.MaxConns <= 0 {
		poolConfig.MaxConns = 10
	}
	poolConfig.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, ocferrors.Wrap(err, ocferrors.ErrorTypeConnection, "failed to create connection pool")
	}

	s := &Server{
		pool:    pool,
		timeout: cfg.Timeout,
		logger:  log.With(zap.String("component", "postgres_property_server")),
	}
	if err := s.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	s.logger.Info("PostgreSQL property server connected",
		zap.Int32("max_connections", poolConfig.MaxConns))
	return s, nil
}

func (s *Server) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.timeout)
}

// EnsureSchema creates the tables used by the server.
func (s *Server) EnsureSchema(ctx context.Context) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return ocferrors.Wrap(err, ocferrors.ErrorTypeConnection, "failed to create tables")
	}
	return nil
}

// Truncate removes every asset and element.
func (s *Server) Truncate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, "TRUNCATE ocf_assets, ocf_elements"); err != nil {
		return ocferrors.Wrap(err, ocferrors.ErrorTypeConnection, "failed to truncate tables")
	}
	return nil
}

// PutAsset implements propertyserver.Store.
func (s *Server) PutAsset(ctx context.Context, asset *beans.Asset) error {
	if asset == nil {
		return ocferrors.New(ocferrors.ErrorTypeValidation, "asset is required")
	}
	if err := propertyserver.ValidateGUID("asset_guid", asset.GUID); err != nil {
		return err
	}
	body, err := json.Marshal(asset)
	if err != nil {
		return ocferrors.Wrap(err, ocferrors.ErrorTypeData, "failed to encode asset")
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	_, err = s.pool.Exec(ctx,
		`INSERT INTO ocf_assets (guid, body) VALUES ($1, $2::jsonb)
		 ON CONFLICT (guid) DO UPDATE SET body = EXCLUDED.body`,
		asset.GUID, string(body))
	if err != nil {
		return classify(err, "failed to store asset")
	}
	return nil
}

// AddElement implements propertyserver.Store. The ordinal is assigned inside the
// insert so concurrent writers to one collection need a serializable transaction.
func (s *Server) AddElement(ctx context.Context, ownerGUID string, kind beans.Kind, element propertyserver.RawElement) error {
	if err := propertyserver.ValidateCollection(ownerGUID, kind); err != nil {
		return err
	}
	if !json.Valid(element) {
		return ocferrors.New(ocferrors.ErrorTypeValidation, "element is not valid JSON")
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	_, err := s.pool.Exec(ctx,
		`INSERT INTO ocf_elements (owner_guid, kind, ordinal, body)
		 SELECT $1::text, $2::text, COALESCE(MAX(ordinal) + 1, 0), $3::jsonb
		 FROM ocf_elements WHERE owner_guid = $1 AND kind = $2`,
		ownerGUID, string(kind), string(element))
	if err != nil {
		return classify(err, "failed to store element")
	}
	return nil
}

// GetAsset implements propertyserver.PropertyServer.
func (s *Server) GetAsset(ctx context.Context, assetGUID string) (*beans.Asset, error) {
	if err := propertyserver.ValidateGUID("asset_guid", assetGUID); err != nil {
		return nil, err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var body []byte
	err := s.pool.QueryRow(ctx, "SELECT body FROM ocf_assets WHERE guid = $1", assetGUID).Scan(&body)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, propertyserver.AssetNotFound(assetGUID)
	}
	if err != nil {
		return nil, classify(err, "failed to read asset")
	}

	var asset beans.Asset
	if err := json.Unmarshal(body, &asset); err != nil {
		return nil, ocferrors.Wrap(err, ocferrors.ErrorTypeData, "failed to decode asset").
			WithDetail("asset_guid", assetGUID)
	}
	return &asset, nil
}

// CountElements implements propertyserver.PropertyServer.
func (s *Server) CountElements(ctx context.Context, ownerGUID string, kind beans.Kind) (int, error) {
	if err := propertyserver.ValidateCollection(ownerGUID, kind); err != nil {
		return 0, err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var count int64
	err := s.pool.QueryRow(ctx,
		"SELECT COUNT(*) FROM ocf_elements WHERE owner_guid = $1 AND kind = $2",
		ownerGUID, string(kind)).Scan(&count)
	if err != nil {
		return 0, classify(err, "failed to count elements")
	}
	return int(count), nil
}

// FetchElements implements propertyserver.PropertyServer.
func (s *Server) FetchElements(ctx context.Context, ownerGUID string, kind beans.Kind, startFrom, pageSize int) ([]propertyserver.RawElement, error) {
	if err := propertyserver.ValidatePage(ownerGUID, kind, startFrom, pageSize); err != nil {
		return nil, err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	rows, err := s.pool.Query(ctx,
		`SELECT body FROM ocf_elements WHERE owner_guid = $1 AND kind = $2
		 ORDER BY ordinal LIMIT $3 OFFSET $4`,
		ownerGUID, string(kind), pageSize, startFrom)
	if err != nil {
		return nil, classify(err, "failed to query elements")
	}
	defer rows.Close()

	page := make([]propertyserver.RawElement, 0, pageSize)
	for rows.Next() {
		var body []byte
		if err := rows.Scan(&body); err != nil {
			return nil, ocferrors.Wrap(err, ocferrors.ErrorTypeData, "failed to scan element")
		}
		page = append(page, propertyserver.RawElement(body))
	}
	if err := rows.Err(); err != nil {
		return nil, classify(err, "failed to read elements")
	}
	return page, nil
}

// Health implements propertyserver.PropertyServer.
func (s *Server) Health(ctx context.Context) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if err := s.pool.Ping(ctx); err != nil {
		return ocferrors.Wrap(err, ocferrors.ErrorTypeConnection, "postgres ping failed")
	}
	return nil
}

// Close implements propertyserver.PropertyServer.
func (s *Server) Close(context.Context) error {
	s.pool.Close()
	return nil
}

func classify(err error, msg string) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return ocferrors.Wrap(err, ocferrors.ErrorTypeTimeout, msg)
	}
	return ocferrors.Wrap(err, ocferrors.ErrorTypeConnection, msg)
}
