// Package config loads and validates the TOML configuration for itcx.
//
// Configuration is optional: every field has a usable default, so the tool
// runs without a config file. Lookup order is an explicit --config path, then
// ~/.config/itcx/config.toml, then a project-local itcx.toml.
package config
