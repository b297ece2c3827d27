// Package engine defines the contract of the external disk proposal engine.
//
// The engine decides how space is allocated on disk. This module only builds
// its input (Settings), invokes it through the Backend interface and reads its
// Result. Fixture is a Backend driven by a YAML document, used by the CLI and
// by tests in place of a real probing and partitioning stack.
package engine
