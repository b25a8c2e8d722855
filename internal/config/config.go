package config

import (
	"fmt"
	"strconv"
)

// Environment variables honored as fallbacks for command-line flags.
// CLOUDFLARE_ACCOUNT and CLOUDFLARE_TOKEN are shared by every command that
// talks to the API; the CF_PAGES_* variables each back one specific flag.
const (
	EnvAccount     = "CLOUDFLARE_ACCOUNT"
	EnvToken       = "CLOUDFLARE_TOKEN"
	EnvProject     = "CF_PAGES_PROJECT"
	EnvDeployment  = "CF_PAGES_DEPLOYMENT"
	EnvOutput      = "CF_PAGES_OUTPUT"
	EnvFile        = "CF_PAGES_FILE"
	EnvEnvironment = "CF_PAGES_ENVIRONMENT"
	EnvEmpty       = "CF_PAGES_EMPTY"
)

// Lookup reads one variable from an environment. Commands pass os.LookupEnv;
// tests pass closures over plain maps so resolution stays deterministic.
type Lookup func(key string) (string, bool)

// MissingConfigurationError reports a required field that was provided
// neither as a flag nor through its fallback environment variable.
type MissingConfigurationError struct {
	Field  string
	EnvKey string
}

func (e *MissingConfigurationError) Error() string {
	if e.EnvKey == "" {
		return "missing configuration: " + e.Field
	}
	return fmt.Sprintf("missing configuration: %s (set --%s or %s)", e.Field, e.Field, e.EnvKey)
}

// Resolve returns the flag value when set, otherwise the value of the
// fallback environment variable. Empty values count as unset.
func Resolve(flagValue, envKey string, lookup Lookup) string {
	if flagValue != "" {
		return flagValue
	}
	if v, ok := lookup(envKey); ok && v != "" {
		return v
	}
	return ""
}

// Require resolves like Resolve but fails when neither source is set.
func Require(field, flagValue, envKey string, lookup Lookup) (string, error) {
	if v := Resolve(flagValue, envKey, lookup); v != "" {
		return v, nil
	}
	return "", &MissingConfigurationError{Field: field, EnvKey: envKey}
}

// ResolveBool returns the flag value when the flag was set explicitly (so a
// literal --flag=false overrides the environment), otherwise the parsed
// value of the fallback environment variable.
func ResolveBool(flagValue, flagSet bool, envKey string, lookup Lookup) (bool, error) {
	if flagSet {
		return flagValue, nil
	}
	v, ok := lookup(envKey)
	if !ok || v == "" {
		return false, nil
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid value for %s: %q", envKey, v)
	}
	return parsed, nil
}

// Credentials carries the Cloudflare account ID and API token every remote
// command needs.
type Credentials struct {
	Account string
	Token   string
}

// ResolveCredentials builds Credentials from flag values with environment
// fallbacks. It fails before any network activity when either is missing.
func ResolveCredentials(account, token string, lookup Lookup) (Credentials, error) {
	acct, err := Require("account", account, EnvAccount, lookup)
	if err != nil {
		return Credentials{}, err
	}
	tok, err := Require("token", token, EnvToken, lookup)
	if err != nil {
		return Credentials{}, err
	}
	return Credentials{Account: acct, Token: tok}, nil
}
