// Package log provides the logging abstraction used by wxnotify components.
//
// Library code never talks to a concrete logging library. It logs through
// the [Logger] interface, and callers decide where the output goes:
//
//	logger := log.NewZerologAdapterWithLogger(zerolog.New(os.Stderr))
//	client := wxwork.NewClient(wxwork.WithLogger(logger))
//
// Without a logger a client stays silent ([NoopLogger]).
//
// Values that grant access to the platform (corp secrets, access tokens)
// must never be passed as field values.
//
// # Version
//
// Current version: 1.0.0
// Minimum compatible version: 1.0.0
package log
