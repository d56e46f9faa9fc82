// Package version holds the build version, overridable at link time:
//
//	go build -ldflags "-X github.com/Shimizu-Technology/pdf2json/internal/version.Version=1.2.3"
package version

// Version is reported by /api/v1/health and `pdf2json version`.
var Version = "1.0.0"
