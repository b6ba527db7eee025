// Package goroutine launches background work that must never take the process
// down with it.
package goroutine

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/postforge/postforge/internal/shared/logger"
)

// SafeGo runs fn in a goroutine and logs, instead of propagating, any panic.
func SafeGo(log logger.Interface, name string, fn func()) {
	go func() {
		defer recoverAndLog(log, name)
		fn()
	}()
}

// SafeGoWithTimeout runs fn detached from the caller's lifetime with its own
// deadline. Used for fire-and-forget side effects of a request.
func SafeGoWithTimeout(log logger.Interface, name string, timeout time.Duration, fn func(ctx context.Context)) {
	go func() {
		defer recoverAndLog(log, name)
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		fn(ctx)
	}()
}

func recoverAndLog(log logger.Interface, name string) {
	if r := recover(); r != nil {
		log.Errorw("goroutine panicked",
			"goroutine", name,
			"panic", fmt.Sprintf("%v", r),
			"stack", string(debug.Stack()),
		)
	}
}
