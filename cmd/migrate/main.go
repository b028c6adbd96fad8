package main

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"staylink-admin/config"
	"staylink-admin/db/migrations"
	appfx "staylink-admin/internal/app/fx"

	"github.com/jmoiron/sqlx"
	"github.com/pressly/goose/v3"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/tursodatabase/libsql-client-go/libsql"
)

// Usage: migrate [postgres|sqlite] [up|down|status|...]
type MigrateTarget string
type MigrateCmd string

func main() {
	target := "postgres"
	cmd := "up"
	if len(os.Args) > 1 {
		target = os.Args[1]
	}
	if len(os.Args) > 2 {
		cmd = os.Args[2]
	}

	app := fx.New(
		fx.WithLogger(func(logger *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: logger}
		}),
		appfx.CoreAppOptions,
		fx.Supply(MigrateTarget(target), MigrateCmd(cmd)),
		fx.Invoke(registerMigrateHook),
	)

	startCtx, startCancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer startCancel()
	if err := app.Start(startCtx); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer stopCancel()
	if err := app.Stop(stopCtx); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

type migrateHookParams struct {
	fx.In

	Lc     fx.Lifecycle
	Cfg    *config.Config
	Logger *zap.SugaredLogger

	Target MigrateTarget
	Cmd    MigrateCmd
}

func registerMigrateHook(p migrateHookParams) {
	p.Lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			switch p.Target {
			case "postgres":
				return runPostgres(ctx, p)
			case "sqlite":
				return runSQLite(ctx, p)
			default:
				return fmt.Errorf("unknown migrate target %q (want postgres or sqlite)", p.Target)
			}
		},
	})
}

func runPostgres(ctx context.Context, p migrateHookParams) error {
	if strings.TrimSpace(p.Cfg.DBHost) == "" || strings.TrimSpace(p.Cfg.DBName) == "" {
		return errors.New("postgres disabled: set DB_HOST and DB_NAME")
	}

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	goose.SetBaseFS(migrations.PostgresFS)

	dsn := postgresDSN(p.Cfg)
	db, err := sqlx.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("open postgres: %w", err)
	}
	defer func() { _ = db.Close() }()

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		return fmt.Errorf("ping postgres: %w", err)
	}

	p.Logger.Infow("goose_run_start", "target", "postgres", "cmd", string(p.Cmd))
	if err := goose.RunContext(ctx, string(p.Cmd), db.DB, "postgres"); err != nil {
		return fmt.Errorf("goose run %q: %w", p.Cmd, err)
	}
	p.Logger.Infow("goose_run_done", "target", "postgres", "cmd", string(p.Cmd))
	return nil
}

func runSQLite(ctx context.Context, p migrateHookParams) error {
	dsn := strings.TrimSpace(p.Cfg.Turso.DSN)
	if dsn == "" {
		return errors.New("sqlite disabled: set TURSO_SQLITE_DSN (and TURSO_SQLITE_TOKEN)")
	}
	dsn = ensureAuthTokenQuery(dsn, strings.TrimSpace(p.Cfg.Turso.Token))

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	goose.SetBaseFS(migrations.SQLiteFS)

	db, err := sqlx.Open("libsql", dsn)
	if err != nil {
		return fmt.Errorf("open sqlite: %w", err)
	}
	defer func() { _ = db.Close() }()

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		return fmt.Errorf("ping sqlite: %w", err)
	}

	p.Logger.Infow("goose_run_start", "target", "sqlite", "cmd", string(p.Cmd))
	if err := goose.RunContext(ctx, string(p.Cmd), db.DB, "sqlite"); err != nil {
		return fmt.Errorf("goose run %q: %w", p.Cmd, err)
	}
	p.Logger.Infow("goose_run_done", "target", "sqlite", "cmd", string(p.Cmd))
	return nil
}

func postgresDSN(cfg *config.Config) string {
	u := &url.URL{
		Scheme: "postgres",
		Host:   fmt.Sprintf("%s:%d", cfg.DBHost, cfg.DBPort),
		Path:   cfg.DBName,
	}
	if strings.TrimSpace(cfg.DBUser) != "" {
		if cfg.DBPassword == "" {
			u.User = url.User(cfg.DBUser)
		} else {
			u.User = url.UserPassword(cfg.DBUser, cfg.DBPassword)
		}
	}
	return u.String()
}

func ensureAuthTokenQuery(dsn, token string) string {
	if token == "" {
		return dsn
	}

	u, err := url.Parse(dsn)
	if err != nil || u.Scheme == "" {
		return dsn
	}

	if strings.EqualFold(u.Scheme, "file") || strings.EqualFold(u.Scheme, "sqlite") {
		return dsn
	}

	q := u.Query()
	if q.Get("authToken") != "" {
		return dsn
	}

	q.Set("authToken", token)
	u.RawQuery = q.Encode()
	return u.String()
}
