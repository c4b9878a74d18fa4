// Package mysql is a property server stored in MySQL JSON columns.
package mysql

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-sql-driver/mysql"
	"go.uber.org/zap"

	"github.com/ajitpratap0/ocf/pkg/beans"
	"github.com/ajitpratap0/ocf/pkg/config"
	"github.com/ajitpratap0/ocf/pkg/json"
	"github.com/ajitpratap0/ocf/pkg/ocferrors"
	"github.com/ajitpratap0/ocf/pkg/propertyserver"
)

// Name is the registered backend name.
const Name = "mysql"

func init() {
	propertyserver.Register(propertyserver.Info{
		Name:         Name,
		Description:  "MySQL property server with JSON documents",
		Capabilities: []string{"read", "write", "connection_pooling"},
	}, func(ctx context.Context, cfg *config.Config, log *zap.Logger) (propertyserver.PropertyServer, error) {
		return New(ctx, cfg.PropertyServer, log)
	})
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS ocf_assets (
		guid VARCHAR(128) NOT NULL PRIMARY KEY,
		body JSON NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS ocf_elements (
		owner_guid VARCHAR(128) NOT NULL,
		kind       VARCHAR(64) NOT NULL,
		ordinal    BIGINT NOT NULL,
		body       JSON NOT NULL,
		PRIMARY KEY (owner_guid, kind, ordinal)
	)`,
}

// Server reads metadata from MySQL.
type Server struct {
	db      *sql.DB
	timeout time.Duration
	logger  *zap.Logger
}

var _ propertyserver.ReadWriter = (*Server)(nil)

// New opens the database named by cfg.DSN, in go-sql-driver format, and creates
// the tables if they do not exist.
func New(ctx context.Context, cfg config.PropertyServerConfig, log *zap.Logger) (*Server, error) {
	if cfg.DSN == "" {
		return nil, ocferrors.New(ocferrors.ErrorTypeConfig, "dsn is required").WithDetail("backend", Name)
	}
	if log == nil {
		log = zap.NewNop()
	}

	driverCfg, err := mysql.ParseDSN(cfg.DSN)
	if err != nil {
		return nil, ocferrors.Wrap(err, ocferrors.ErrorTypeConfig, "failed to parse dsn")
	}
	driverCfg.ParseTime = true
	if cfg.Timeout > 0 {
		driverCfg.Timeout = cfg.Timeout
	}

	connector, err := mysql.NewConnector(driverCfg)
	if err != nil {
		return nil, ocferrors.Wrap(err, ocferrors.ErrorTypeConfig, "failed to create connector")
	}
	db := sql.OpenDB(connector)
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	s := &Server{
		db:      db,
		timeout: cfg.Timeout,
		logger:  log.With(zap.String("component", "mysql_property_server")),
	}
	if err := s.Health(ctx); err != nil {
		_ = db.Close() // Ignore close error when connection already failed
		return nil, err
	}
	if err := s.EnsureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	s.logger.Info("MySQL property server connected", zap.String("addr", driverCfg.Addr))
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

	for _, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return classify(err, "failed to create tables")
		}
	}
	return nil
}

// Truncate removes every asset and element.
func (s *Server) Truncate(ctx context.Context) error {
	for _, table := range []string{"ocf_assets", "ocf_elements"} {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return classify(err, "failed to truncate tables")
		}
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

	_, err = s.db.ExecContext(ctx,
		"INSERT INTO ocf_assets (guid, body) VALUES (?, ?) ON DUPLICATE KEY UPDATE body = VALUES(body)",
		asset.GUID, string(body))
	if err != nil {
		return classify(err, "failed to store asset")
	}
	return nil
}

// AddElement implements propertyserver.Store.
func (s *Server) AddElement(ctx context.Context, ownerGUID string, kind beans.Kind, element propertyserver.RawElement) error {
	if err := propertyserver.ValidateCollection(ownerGUID, kind); err != nil {
		return err
	}
	if !json.Valid(element) {
		return ocferrors.New(ocferrors.ErrorTypeValidation, "element is not valid JSON")
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO ocf_elements (owner_guid, kind, ordinal, body)
		 SELECT ?, ?, COALESCE(MAX(ordinal) + 1, 0), ?
		 FROM ocf_elements WHERE owner_guid = ? AND kind = ?`,
		ownerGUID, string(kind), string(element), ownerGUID, string(kind))
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
	err := s.db.QueryRowContext(ctx, "SELECT body FROM ocf_assets WHERE guid = ?", assetGUID).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
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

	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM ocf_elements WHERE owner_guid = ? AND kind = ?",
		ownerGUID, string(kind)).Scan(&count)
	if err != nil {
		return 0, classify(err, "failed to count elements")
	}
	return count, nil
}

// FetchElements implements propertyserver.PropertyServer.
func (s *Server) FetchElements(ctx context.Context, ownerGUID string, kind beans.Kind, startFrom, pageSize int) ([]propertyserver.RawElement, error) {
	if err := propertyserver.ValidatePage(ownerGUID, kind, startFrom, pageSize); err != nil {
		return nil, err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	rows, err := s.db.QueryContext(ctx,
		`SELECT body FROM ocf_elements WHERE owner_guid = ? AND kind = ?
		 ORDER BY ordinal LIMIT ? OFFSET ?`,
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

	if err := s.db.PingContext(ctx); err != nil {
		return classify(err, "mysql ping failed")
	}
	return nil
}

// Close implements propertyserver.PropertyServer.
func (s *Server) Close(context.Context) error {
	if err := s.db.Close(); err != nil {
		return ocferrors.Wrap(err, ocferrors.ErrorTypeConnection, "failed to close database")
	}
	return nil
}

func classify(err error, msg string) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return ocferrors.Wrap(err, ocferrors.ErrorTypeTimeout, msg)
	}
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		// server-side errors are not retryable
		return ocferrors.Wrap(err, ocferrors.ErrorTypeData, msg).
			WithDetail("mysql_error", mysqlErr.Number)
	}
	return ocferrors.Wrap(err, ocferrors.ErrorTypeConnection, msg)
}
