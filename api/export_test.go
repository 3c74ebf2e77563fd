package api

import "time"

// SetNow replaces the clock used by the poll handlers and returns a restore func.
func SetNow(f func() time.Time) func() {
	prev := timeNow
	timeNow = f
	return func() { timeNow = prev }
}

var SafeNext = safeNext
