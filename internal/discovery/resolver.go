package discovery

import (
	"context"
	"net"
)

// Resolver abstracts DNS A-record lookup so the discovery engine can be
// tested without a real resolver. spec.md §9 notes SRV records were
// used historically but A is the current default; this client only
// implements A-record discovery (see DESIGN.md for the Open Question
// decision).
type Resolver interface {
	LookupHost(ctx context.Context, host string) ([]string, error)
}

// netResolver adapts *net.Resolver to the Resolver interface.
type netResolver struct {
	res *net.Resolver
}

// DefaultResolver uses the standard library's resolver.
func DefaultResolver() Resolver {
	return netResolver{res: net.DefaultResolver}
}

func (r netResolver) LookupHost(ctx context.Context, host string) ([]string, error) {
	return r.res.LookupHost(ctx, host)
}
