// Package config resolves runtime settings from the environment, letting
// CI and container deployments pin a policy or log verbosity without CLI
// flags.
package config

import (
	"github.com/xyproto/env/v2"

	"github.com/0xPolygonHermez/zisk-sub000/internal/asmgen"
)

const (
	envPolicy    = "ZISKASM_POLICY"
	envLogOutput = "ZISKASM_LOG_OUTPUT"
	envVerbose   = "ZISKASM_VERBOSE"
)

// Config is the fully-resolved set of environment-overridable settings. CLI
// flags take precedence over these when both are given; callers apply that
// precedence themselves after calling FromEnvironment.
type Config struct {
	Policy    asmgen.Policy
	LogOutput string
	Verbose   bool
}

// FromEnvironment reads ZISKASM_POLICY, ZISKASM_LOG_OUTPUT and
// ZISKASM_VERBOSE, falling back to the given defaults when a variable is
// unset.
func FromEnvironment(defaultPolicy asmgen.Policy) (Config, error) {
	cfg := Config{
		Policy:    defaultPolicy,
		LogOutput: env.Str(envLogOutput, "stderr"),
		Verbose:   env.Bool(envVerbose),
	}

	if raw := env.Str(envPolicy, ""); raw != "" {
		p, err := asmgen.ParsePolicy(raw)
		if err != nil {
			return Config{}, err
		}
		cfg.Policy = p
	}

	return cfg, nil
}
