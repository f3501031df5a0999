// Package config provides configuration loading, merging, and validation
// facilities for the application.
//
// Configuration is assembled from multiple sources. Earlier sources take
// precedence over later ones for every non-zero field:
//  1. Environment variables
//  2. Command-line flags
//  3. JSON or TOML config file
//  4. Built-in defaults
//
// The main entry points are [GetServerConfig] for the reference server and
// [GetClientConfig] for the sync client.
package config
