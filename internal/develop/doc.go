// Package develop wires the enabled entries of the editables file into a
// multi-project Go workspace. Every go.work mutation goes through the go
// toolchain, which owns path resolution, validation, and conflict errors;
// this package only decides which `go work` invocations to make and keeps
// a small state file so entries disabled later can be dropped again.
package develop
