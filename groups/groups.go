// Package groups defines the collaborator interface the bus uses to expand
// "group:<name>" recipients into member addresses. The bus works without a
// resolver; group messages then resolve to nobody, and a real membership
// provider can be plugged in later without touching the router.
package groups

import "context"

// Resolver looks up the member addresses of a named group.
type Resolver interface {
	Members(ctx context.Context, name string) ([]string, error)
}

// ResolverFunc adapts a function to the Resolver interface.
type ResolverFunc func(ctx context.Context, name string) ([]string, error)

// Members implements Resolver.
func (f ResolverFunc) Members(ctx context.Context, name string) ([]string, error) {
	return f(ctx, name)
}

// Static is a fixed, in-memory group membership table.
type Static map[string][]string

// Members implements Resolver. Unknown groups resolve to no members.
func (s Static) Members(_ context.Context, name string) ([]string, error) {
	members := s[name]
	out := make([]string, len(members))
	copy(out, members)
	return out, nil
}
