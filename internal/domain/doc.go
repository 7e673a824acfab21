// Package domain contains the core inventory model for stockyard.
//
// The domain is persistence-agnostic: it does not know about backup formats,
// YAML or the filesystem. Codecs and adapters map into/from these types.
package domain
