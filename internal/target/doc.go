// Package target decides, per deployment target, which modules a bundle
// must leave out and which optional plugin modules it must add. The rules
// live in a table keyed by Kind so each target's composition can be read and
// tested on its own.
package target
