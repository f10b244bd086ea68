// Package version resolves the server build identifier.
package version

// buildVersion is stamped with -ldflags "-X .../pkg/version.buildVersion=...";
// plain local builds keep "dev".
var buildVersion = "dev"

// Version returns the build identifier reported at startup and over MCP.
func Version() string {
	return buildVersion
}
