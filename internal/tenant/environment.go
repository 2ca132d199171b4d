package tenant

import "fmt"

// Environment is the deployment tag the process runs under.
type Environment string

const (
	EnvLocal      Environment = "local"
	EnvDevServer  Environment = "dev-server"
	EnvProduction Environment = "production"
)

// ParseEnvironment accepts only the known tags.
func ParseEnvironment(s string) (Environment, error) {
	switch e := Environment(s); e {
	case EnvLocal, EnvDevServer, EnvProduction:
		return e, nil
	}
	return "", fmt.Errorf("tenant: unknown environment %q", s)
}

// Domains maps environments onto apex domains.  DevServer is used for
// dev-server; Production for everything else.
type Domains struct {
	Production string
	DevServer  string
}

// For returns the apex domain for env.
func (d Domains) For(env Environment) string {
	if env == EnvDevServer {
		return d.DevServer
	}
	return d.Production
}
