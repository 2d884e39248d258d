package domain

import "github.com/jonboulle/clockwork"

// clock stamps ProcessedAt on station categories. Decoding never reads it.
var clock = clockwork.NewRealClock()

// SetClock swaps the time source. Pass nil to reset to real time.
func SetClock(c clockwork.Clock) {
	if c == nil {
		clock = clockwork.NewRealClock()
		return
	}
	clock = c
}
