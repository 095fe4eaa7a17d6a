// Package rate throttles login and refresh attempts with fixed-window
// Redis counters.
package rate
