// Package delivery holds the long-running entry points of the service.
package delivery

import "context"

// Delivery is a server or worker started by the application and stopped through its lifecycle hooks.
type Delivery interface {
	Serve(ctx context.Context) error
}
