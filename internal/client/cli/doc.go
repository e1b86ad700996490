// Package cli implements the interactive CyberMorph client: a REPL over the
// session manager, the scan workflow, and the reporting services.
package cli
