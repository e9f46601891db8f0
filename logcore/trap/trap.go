// Package trap defines the secondary-error sink used throughout the
// logging core whenever a failure cannot be returned to the original
// caller (errors raised inside appenders, the async worker, or Drop/Close
// paths).
package trap

import (
	"fmt"
	"os"
	"sync"

	"github.com/sirupsen/logrus"
)

// Trap is invoked for secondary failures. Implementations MUST NOT panic
// and MUST NOT recursively log through the logger that owns them, to
// avoid emit storms.
type Trap func(err error)

// Stderr returns the reference trap: one line per error written directly
// to the process stderr, bypassing any structured logger so that a
// logging-core failure can never recurse into the thing it's reporting on.
func Stderr() Trap {
	var mu sync.Mutex
	return func(err error) {
		if err == nil {
			return
		}
		mu.Lock()
		defer mu.Unlock()
		fmt.Fprintf(os.Stderr, "logbroker: %s\n", err)
	}
}

// Logrus adapts an existing *logrus.Logger into a Trap for the library's
// own internal diagnostics. It is distinct from Stderr: Stderr is the
// contract's default error sink for the embedding application, while this
// routes secondary failures through a caller-supplied logrus logger. The
// rolling file writer and the async appender take a Trap (defaulting to
// Stderr) and use this one only when a caller passes it to them.
func Logrus(log *logrus.Logger) Trap {
	if log == nil {
		return Stderr()
	}
	return func(err error) {
		if err == nil {
			return
		}
		log.WithError(err).Error("logbroker: trapped error")
	}
}

// Noop discards every error. Useful in tests that assert on other
// observable effects and don't want trap output polluting them.
func Noop() Trap {
	return func(error) {}
}
