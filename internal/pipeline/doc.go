// Package pipeline drives one build: it resolves the module registry for a
// target, assembles the bundle and minifies it in place. This package is
// internal; external consumers should use the stable facade in pkg/core.
package pipeline
