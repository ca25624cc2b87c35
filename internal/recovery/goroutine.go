// Package recovery provides panic-safe goroutine launchers so a panic in
// a background pump (such as the PTY output reader) cannot bring down the
// process.
package recovery

import (
	"runtime/debug"

	"github.com/vanpelt/sareterm/internal/logger"
)

// SafeGo runs fn in a goroutine, recovering any panic and logging it
// instead of letting it crash the process.
func SafeGo(name string, fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				logger.Logger.Error().
					Str("goroutine", name).
					Interface("panic", r).
					Str("stack", string(debug.Stack())).
					Msg("recovered panic in goroutine")
			}
		}()
		fn()
	}()
}

// SafeGoWithCleanup runs fn in a goroutine with panic recovery, always
// invoking cleanup on the way out (including after a recovered panic).
func SafeGoWithCleanup(name string, fn func(), cleanup func()) {
	go func() {
		defer func() {
			if cleanup != nil {
				cleanup()
			}
			if r := recover(); r != nil {
				logger.Logger.Error().
					Str("goroutine", name).
					Interface("panic", r).
					Str("stack", string(debug.Stack())).
					Msg("recovered panic in goroutine")
			}
		}()
		fn()
	}()
}
