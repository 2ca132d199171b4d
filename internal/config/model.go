// internal/config/model.go
//
// Typed configuration model for mana.
//
// Context
// -------
// These structs define the shape of the configuration tree that
// `internal/config/loader.go` builds from three overlay layers:
//
//   • optional `.env`                        – dotenv values,
//   • `conf/global.yaml`                     – primary static file,
//   • `MANA_`-prefixed environment overrides – highest precedence.
//
// Any value whose string begins with the prefix `vault:` is resolved
// through the Vault client before validation, so the model never hands
// Vault URIs to the rest of the app.
//
// Notes
// -----
//   • Struct tags use `koanf:"…"`, not `yaml:"…"`.
//   • The `Paths` block is filled at runtime; YAML must not try to set it.
//   • Oxford commas, two spaces after periods.  No em-dash.

package config

//
// HTTP section
//

// HTTP holds web-server tunables.
type HTTP struct {
	ListenAddr string `koanf:"listen_addr" validate:"required,hostname_port"`
	ForceHTTPS bool   `koanf:"force_https"`
}

//
// Database section
//

// Database holds the control-plane DSN template and its secret.  The DSN
// may contain one `%s` verb which is replaced by Password at open time.
type Database struct {
	DSN      string `koanf:"dsn"      validate:"required"`
	Password string `koanf:"password"`
	Migrate  bool   `koanf:"migrate"`
}

//
// Site section
//

// Site controls canonical-host resolution.  Environment is the deployment
// tag (`local`, `dev-server`, `production`); Domain and DevDomain are the
// apex domains used when building canonical URLs.
type Site struct {
	Environment string `koanf:"environment" validate:"required,oneof=local dev-server production"`
	Domain      string `koanf:"domain"      validate:"required,fqdn"`
	DevDomain   string `koanf:"dev_domain"  validate:"required,fqdn"`
}

//
// Membership section
//

// Membership toggles follow-list behaviour.  DedupeFollow makes a repeated
// follow a no-op instead of appending a second reference.
type Membership struct {
	DedupeFollow bool `koanf:"dedupe_follow"`
}

//
// Session section
//

// Session configures the signed session cookie.
type Session struct {
	Secret string `koanf:"secret" validate:"required,min=16"`
	Cookie string `koanf:"cookie" validate:"required"`
}

//
// Geo section
//

// Geo points at an optional GeoLite2-City database.  Empty disables lookups.
type Geo struct {
	DBPath string `koanf:"db_path"`
}

//
// Paths section (runtime only)
//

// Paths is resolved at runtime, never set in YAML or env.
type Paths struct {
	Root string // MANA_ROOT or discovered parent
}

//
// Root aggregate
//

// Config is the immutable aggregate returned by Load() and cached in an
// atomic.Pointer for lock-free reads throughout the app lifetime.
type Config struct {
	HTTP       HTTP       `koanf:"http"`
	Database   Database   `koanf:"database"`
	Site       Site       `koanf:"site"`
	Membership Membership `koanf:"membership"`
	Session    Session    `koanf:"session"`
	Geo        Geo        `koanf:"geo"`
	Paths      Paths      `koanf:"-"` // not loaded from config files
}
