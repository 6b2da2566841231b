//go:build race

package contract

// sync.Pool drops items at random under the race detector.
const raceEnabled = true
