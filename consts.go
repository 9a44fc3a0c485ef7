package esp8266at

import "time"

// Default timeouts and read maxima, centralized here rather than scattered
// as literals through driver.go. Callers may override the two Driver fields
// at runtime; the rest are fixed implementation constants.
const (
	// DefaultShortTimeout bounds quick query/response commands.
	DefaultShortTimeout = 200 * time.Millisecond
	// DefaultLongTimeout bounds scans, restart and join.
	DefaultLongTimeout = 4000 * time.Millisecond
	// connectTimeout bounds the wait for an inbound +IPD frame in Receive.
	// It is not configurable.
	connectTimeout = 10000 * time.Millisecond

	maxFirmwareLine = 30
	maxModeLine     = 1
	maxSetModeLine  = 20
	maxIPLine       = 20
	maxScanLine     = 100
	maxLengthDigits = 10
)
