// Package constants centralizes defaults shared across the CLI.
//
// Vendor endpoints, the polling cadence, and process exit codes live here so
// cmd/ and internal/ packages agree on them without import cycles.
package constants
