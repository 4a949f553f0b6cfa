// Package configs embeds the shipped configuration documents.
//
// Configuration layers (see internal/config LoadLayers):
//  1. Shipped defaults (defaults.yaml, or --defaults)
//  2. Operator overrides (/etc/opscode/chef-server.yaml, or --config)
//
// To change the shipped defaults, edit defaults.yaml and rebuild.
package configs

import _ "embed"

// ShippedDefaults is the default layer used when no --defaults file is given.
//
//go:embed defaults.yaml
var ShippedDefaults string

// UserConfigTemplate is an annotated example of operator overrides.
// Printed by: `server-preflight config --example`
//
//go:embed chef-server.example.yaml
var UserConfigTemplate string
