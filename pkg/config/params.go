package config

// Params is the subset of a process's configuration that is adjustable via a JSON file and
// does not depend on key material or committee membership.
type Params struct {
	// MaxParents is how many parents a created unit should try to acquire.
	MaxParents int

	// LegacyParentSelection switches unit creation from the default one-parent-per-process
	// strategy to the exhaustive scan that maximizes prime-unit coverage.
	LegacyParentSelection bool

	// CreateDelay is the minimum delay, in seconds, between successive creation attempts.
	CreateDelay float64

	// StepSize controls how aggressively CreateDelay is adjusted in response to how quickly
	// created units reach quorum visibility. Zero disables adjustment.
	StepSize float64

	// NInSync is the number of concurrently accepted incoming syncs.
	NInSync int

	// NOutSync is the number of concurrently initiated outgoing syncs.
	NOutSync int

	// Timeout is the sync connection timeout, in seconds.
	Timeout float64

	// LevelLimit shuts the process down once a unit of this level is added to the dag. Zero
	// disables the limit.
	LevelLimit int

	// OrderStartLevel is the level from which ordering starts extracting timing units.
	OrderStartLevel int

	// CRPFixedPrefix is the number of pseudo-random pids tried before the coin-derived
	// candidate order in the common random permutation. Valid only checks that it does not
	// exceed NProc: pkg/linear does not read it and always uses a fixed prefix of 4.
	CRPFixedPrefix uint16

	// LogLevel: 0-debug 1-info 2-warn 3-error 4-fatal 5-panic.
	LogLevel int

	// LogBuffer is the size, in bytes, of the log's lossy diode buffer. 0 disables it.
	LogBuffer int

	// LogMemInterval is how often, in seconds, memory usage is logged. 0 disables it.
	LogMemInterval int

	// LogHuman selects human-readable console logging over structured JSON.
	LogHuman bool
}

// Default returns a set of parameters reasonable for a small local committee.
func Default() Params {
	return Params{
		MaxParents:            10,
		LegacyParentSelection: false,
		CreateDelay:           1,
		StepSize:              0,
		NInSync:               10,
		NOutSync:              10,
		Timeout:               2,
		LevelLimit:            0,
		OrderStartLevel:       0,
		CRPFixedPrefix:        4,
		LogLevel:              1,
		LogBuffer:             100000,
		LogMemInterval:        10,
		LogHuman:              false,
	}
}
