// Package model holds the format-agnostic task records consumed by the
// scheduling engine. Records are plain values supplied by a caller (a plan
// file, a database row, a test fixture); the engine treats them as read-only
// input for one scheduling pass and never writes derived state back into them.
package model
