// Package config loads auditpack project configuration from local and global
// YAML files and resolves it, together with built-in defaults, into a Layout
// describing where the application's modules live on disk.
package config
