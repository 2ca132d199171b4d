package component

import (
	"github.com/jmoiron/sqlx"

	"github.com/manawiki/mana/internal/config"
	"github.com/manawiki/mana/internal/tenant"
)

// Env exposes process-wide resources to Components during Init.
type Env interface {
	DB() *sqlx.DB
	Config() *config.Config
	Environment() tenant.Environment
	Domains() tenant.Domains
}

// StaticEnv is the Env built by cmd/web from the loaded config.
type StaticEnv struct {
	db  *sqlx.DB
	cfg *config.Config
	env tenant.Environment
}

// NewEnv validates the configured environment tag and binds db.
func NewEnv(db *sqlx.DB, cfg *config.Config) (*StaticEnv, error) {
	env, err := tenant.ParseEnvironment(cfg.Site.Environment)
	if err != nil {
		return nil, err
	}
	return &StaticEnv{db: db, cfg: cfg, env: env}, nil
}

func (e *StaticEnv) DB() *sqlx.DB                    { return e.db }
func (e *StaticEnv) Environment() tenant.Environment { return e.env }

// Config returns the most recently loaded config, so values read per
// request follow a reload.  Environment and Domains stay fixed at boot.
func (e *StaticEnv) Config() *config.Config {
	if live := config.Get(); live != nil {
		return live
	}
	return e.cfg
}

func (e *StaticEnv) Domains() tenant.Domains {
	return tenant.Domains{Production: e.cfg.Site.Domain, DevServer: e.cfg.Site.DevDomain}
}
