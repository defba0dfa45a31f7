package hoot

import (
	"context"
	"log/slog"
	"slices"
	"sort"

	"github.com/casualjim/hoot/messages"
	"github.com/casualjim/hoot/pkg/slogx"
)

// resolve turns a message's recipient address into the concrete set of
// subscribed addresses to deliver to. It only reads registry state and never
// has side effects, so routing the same message twice against the same
// registry yields the same set.
func (b *Bus) resolve(ctx context.Context, msg messages.Message) []string {
	switch {
	case msg.IsBroadcast():
		addresses := b.registry.Addresses()
		out := addresses[:0]
		for _, address := range addresses {
			if address != msg.Sender {
				out = append(out, address)
			}
		}
		return out

	default:
		if name, ok := msg.GroupName(); ok {
			return b.resolveGroup(ctx, msg, name)
		}
		if _, ok := b.registry.Get(msg.Recipient); ok {
			return []string{msg.Recipient}
		}
		return nil
	}
}

// resolveGroup expands a group through the optional resolver, keeping only
// members that are actually subscribed. Without a resolver, groups resolve
// to nobody.
func (b *Bus) resolveGroup(ctx context.Context, msg messages.Message, name string) []string {
	if b.groups == nil {
		return nil
	}

	members, err := b.groups.Members(ctx, name)
	if err != nil {
		slog.Warn("group resolution failed",
			slog.String("group", name),
			slogx.Error(err),
			slogx.LoggerName(b.name))
		return nil
	}

	out := members[:0]
	for _, member := range members {
		if _, ok := b.registry.Get(member); ok && !slices.Contains(out, member) {
			out = append(out, member)
		}
	}
	sort.Strings(out)
	return out
}
