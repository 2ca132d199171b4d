// cmd/web/main.go
//
// mana – HTTP entry point.
//
// Boot sequence
// -------------
//
//  1. Start the rotating logger (tees to console when running in a TTY).
//
//  2. Connect to Vault when VAULT_ADDR is set, so `vault:` config values
//     can be resolved.
//
//  3. Load, resolve, and validate configuration.
//
//  4. Open MySQL (bootstrap retries) and, when database.migrate is set,
//     apply every component's DDL.
//
//  5. Open the optional GeoLite2 database.
//
//  6. Build the root router (components register themselves via init)
//     and serve until SIGINT/SIGTERM.  SIGHUP reloads configuration.
//
// Large comment blocks are framed by blank “//” lines; inline comments use
// a single “//”.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/manawiki/mana/internal/auth"
	"github.com/manawiki/mana/internal/component"
	"github.com/manawiki/mana/internal/config"
	"github.com/manawiki/mana/internal/database"
	"github.com/manawiki/mana/internal/logger"
	"github.com/manawiki/mana/internal/requestinfo"
	"github.com/manawiki/mana/internal/router"
	"github.com/manawiki/mana/internal/server"
	"github.com/manawiki/mana/internal/vault"

	_ "github.com/manawiki/mana/components/debug"
	_ "github.com/manawiki/mana/components/notes"
	_ "github.com/manawiki/mana/components/settings"
	_ "github.com/manawiki/mana/components/sites"
)

const sessionTTL = 30 * 24 * time.Hour

// runningInTTY returns true when stdout is a character device.
func runningInTTY() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootDir := os.Getenv("MANA_ROOT")
	if rootDir == "" {
		rootDir, _ = os.Getwd()
	}
	logOut, err := logger.New(rootDir, runningInTTY(), os.Getenv("MANA_DEBUG") != "")
	if err != nil {
		log.Fatalf("start logger: %v", err)
	}
	defer func() { _ = logOut.Sync() }()

	//
	// ── 1.  Vault (optional) and configuration ─────────────────────────
	//
	var secrets config.SecretResolver
	if os.Getenv("VAULT_ADDR") != "" {
		vc, err := vault.New(ctx)
		if err != nil {
			logOut.Fatalw("vault client", "err", err)
		}
		secrets = vc
	}

	cfg, err := config.Load(ctx, secrets)
	if err != nil {
		logOut.Fatalw("load config", "err", err)
	}
	logOut.Infow("config loaded",
		"environment", cfg.Site.Environment,
		"domain", cfg.Site.Domain,
		"dedupe_follow", cfg.Membership.DedupeFollow)

	// SIGHUP re-reads config; handlers that read Env.Config() per request
	// pick it up.  Listener and DB settings need a restart.
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)
	go config.ReloadOn(ctx, hup, secrets)

	//
	// ── 2.  Database ───────────────────────────────────────────────────
	//
	db, err := database.Open(ctx, cfg.DSN())
	if err != nil {
		logOut.Fatalw("connect database", "err", err)
	}
	defer db.Close()

	if cfg.Database.Migrate {
		if err := database.Migrate(ctx, db, component.Migrations()); err != nil {
			logOut.Fatalw("migrate", "err", err)
		}
		logOut.Info("migrations applied")
	}

	//
	// ── 3.  Geo lookups ────────────────────────────────────────────────
	//
	if err := requestinfo.InitGeo(cfg.Geo.DBPath); err != nil {
		// Geo is enrichment only; keep serving without it.
		logOut.Warnw("geoip disabled", "path", cfg.Geo.DBPath, "err", err)
	}

	//
	// ── 4.  Router and server ──────────────────────────────────────────
	//
	env, err := component.NewEnv(db, cfg)
	if err != nil {
		logOut.Fatalw("environment", "err", err)
	}
	handler, err := router.New(env, component.All(), router.Options{
		ForceHTTPS: cfg.HTTP.ForceHTTPS,
		Sessions:   auth.NewSessions(cfg.Session.Secret, cfg.Session.Cookie, sessionTTL),
	})
	if err != nil {
		logOut.Fatalw("build router", "err", err)
	}

	if err := server.Run(ctx, server.New(cfg.HTTP.ListenAddr, handler)); err != nil {
		zap.L().Fatal("http server", zap.Error(err))
	}
	logOut.Info("bye")
}
