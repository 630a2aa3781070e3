// Package lifecycle holds shared start/stop constants for fx hooks.
package lifecycle

import "time"

// DefaultTimeout bounds every start or stop hook of the application.
const DefaultTimeout = 10 * time.Second
