// Package cli wires dob's cobra command tree. One file per top-level
// command; commands register themselves on rootCmd from init().
package cli
