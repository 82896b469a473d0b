// Package config holds the runtime configuration: crawl limits, Tor
// settings, collaborator endpoints, and credentials. Non-secret settings
// come from CLI flags and an optional YAML file; credentials come from
// environment variables only, so they never land in a config file or
// shell history.
package config
