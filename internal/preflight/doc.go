// Package preflight verifies directory access and external API
// configuration before the daemon begins processing projects.
package preflight
