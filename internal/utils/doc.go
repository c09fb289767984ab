// Package utils provides small helpers shared across the application:
// filename sanitizing and numbering, jittered pauses, content type checks
// and generic slice helpers.
package utils
