//go:build !windows

// Package main provides stubs for service functions on non-Windows platforms.
package main

// HandleServiceCommand is a no-op on non-Windows platforms.
// Returns false to indicate no service command was handled.
func HandleServiceCommand(args []string) bool {
	return false
}
