// Package tui implements the interactive dashboard. Key presses trigger chain
// runs and prime tasks on the UI loop; results, busy state and system stats
// arrive as bubbletea messages.
package tui
