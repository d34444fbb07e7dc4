// Package config handles YAML configuration loading with environment
// variable substitution.
//
// Configuration files support ${VAR} syntax for environment variable
// interpolation; database credentials are expected to come from the
// environment (optionally via a .env file loaded by the binaries).
package config
