// Package config manages loading and validation of application configuration
// from environment variables and an optional config file. It provides typed
// access to the settings each component needs while keeping configuration
// details out of the business logic.
package config
