// Package config holds client options, defaults, and the server alias store.
//
// Options carries the knobs shared across packages (logger, timeouts, client
// identity). The alias store maps short server names to command lines in a
// TOML file so invocations like "mcpcli tools myserver" work without typing
// the full spawn command.
package config
