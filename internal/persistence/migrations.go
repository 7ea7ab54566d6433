package persistence

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"github.com/swiftlogistics/driver-service/migrations"
)

// RunMigrations applies the embedded SQL migrations to the database at dsn.
func RunMigrations(dsn string, logger *zap.Logger) error {
	if dsn == "" {
		logger.Warn("no postgres dsn available; skipping migrations")
		return nil
	}

	src, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return fmt.Errorf("open embedded migrations: %w", err)
	}

	databaseURL, err := migrationURL(dsn)
	if err != nil {
		return err
	}

	m, err := migrate.NewWithSourceInstance("iofs", src, databaseURL)
	if err != nil {
		return fmt.Errorf("init migrate: %w", err)
	}
	defer func() {
		srcErr, dbErr := m.Close()
		if srcErr != nil || dbErr != nil {
			logger.Warn("close migrate", zap.NamedError("source", srcErr), zap.NamedError("database", dbErr))
		}
	}()

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			logger.Info("no migrations to apply")
			return nil
		}
		return fmt.Errorf("apply migrations: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil {
		return fmt.Errorf("read migration version: %w", err)
	}
	logger.Info("migrations applied", zap.Uint("version", version), zap.Bool("dirty", dirty))
	return nil
}

// migrationURL returns dsn in the URL form the migrate postgres driver
// requires. Keyword/value DSNs accepted by pgxpool are rebuilt from their
// parsed form; TLS certificate file options only survive in URL form.
func migrationURL(dsn string) (string, error) {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		return dsn, nil
	}

	cfg, err := pgconn.ParseConfig(dsn)
	if err != nil {
		return "", fmt.Errorf("parse postgres dsn: %w", err)
	}

	u := url.URL{Scheme: "postgres", Path: "/" + cfg.Database}
	query := url.Values{}
	if strings.HasPrefix(cfg.Host, "/") {
		query.Set("host", cfg.Host)
		query.Set("port", strconv.Itoa(int(cfg.Port)))
	} else {
		u.Host = net.JoinHostPort(cfg.Host, strconv.Itoa(int(cfg.Port)))
	}
	switch {
	case cfg.User != "" && cfg.Password != "":
		u.User = url.UserPassword(cfg.User, cfg.Password)
	case cfg.User != "":
		u.User = url.User(cfg.User)
	}
	query.Set("sslmode", sslMode(cfg))
	u.RawQuery = query.Encode()
	return u.String(), nil
}

func sslMode(cfg *pgconn.Config) string {
	tlsConfig := cfg.TLSConfig
	switch {
	case tlsConfig == nil:
		return "disable"
	case len(cfg.Fallbacks) > 0:
		// prefer: plaintext is acceptable to the caller.
		return "disable"
	case tlsConfig.InsecureSkipVerify && tlsConfig.VerifyPeerCertificate == nil:
		return "require"
	case tlsConfig.InsecureSkipVerify:
		return "verify-ca"
	default:
		return "verify-full"
	}
}
