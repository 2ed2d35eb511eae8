// Package cli provides the interactive GeoTrack command-line client.
//
// It wires configuration, the HTTP API client and an interactive REPL.
// A background watcher probes the server health endpoint and shows the
// connectivity mode in the prompt.
//
// Commands:
//   - signup / login / logout / whoami
//   - locate <lat> <lon>: report the current position
//   - upload <path>: send a JPEG image
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
