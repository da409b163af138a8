package constants

import "time"

// Timeout constants used throughout the application
const (
	// InputTimeout is the main loop input wait per tick
	InputTimeout = 100 * time.Millisecond

	// FileStatPeriod is the interval between on-disk re-stat sweeps
	FileStatPeriod = 5 * time.Second

	// ZombiePollPeriod is the interval between child liveness checks
	ZombiePollPeriod = 1 * time.Second

	// ZombieDelay is how many consecutive empty PTY reads trigger a
	// child liveness check
	ZombieDelay = 10

	// ResizeDebounce is how long resize events are coalesced
	ResizeDebounce = 3 * InputTimeout

	// ChildWaitTimeout is the grace period before a child is killed
	ChildWaitTimeout = 2 * time.Second

	// SSHDialTimeout is the timeout for remote pipe dial operations
	SSHDialTimeout = 2 * time.Second
)
