// Package ui provides theme and color support for the CLI and the TUI.
// It is a shared dependency for presentation packages so that they agree on
// colors and honor NO_COLOR in one place.
package ui
