//go:build !windows && !linux && !darwin

package platform

// The platform package supports Windows, Linux and macOS only.
// Building for anything else fails on the line below.

const platformUnsupported = "platform package requires Windows, Linux, or macOS - see platform/unsupported.go"

var _ int = platformUnsupported
