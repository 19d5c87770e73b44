// Package format renders the human-readable pieces of progress output:
// byte sizes, progress bars and title-cased recording types.
package format
