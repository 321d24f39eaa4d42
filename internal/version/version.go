// Package version holds the application version reported by the system endpoints.
package version

// Version is the application version, overridable at build time via -ldflags.
var Version = "1.2.0"
