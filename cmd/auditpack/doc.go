// Package auditpack provides the command-line interface for the auditpack
// bundler. The root command builds one bundle; subcommands inspect the
// target table and module registry.
//
// Typical usage from a main package:
//
//	package main
//	import "github.com/auditpack/auditpack/cmd/auditpack"
//	func main() { auditpack.Execute() }
package auditpack
