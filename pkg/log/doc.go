// Package log wraps zerolog with the structured fields the storage-node
// write path attaches to log lines: component, space, partition. See
// log.go for Init, the package-level helpers, and the With* child-logger
// constructors.
package log
