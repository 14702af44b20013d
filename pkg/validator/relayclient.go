package validator

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nbd-wtf/go-nostr"

	"github.com/nostrtools/eventdeleter/pkg/model"
)

// RelayClient is the small collaborator the reference policy fetches through,
// so Validator itself stays a pure classifier over whatever the client
// returns (§4.2).
type RelayClient interface {
	// FetchEvent fetches a single event by id, or returns nil, nil if the
	// relay has no such event.
	FetchEvent(ctx context.Context, id model.EventID) (*model.Event, error)

	// FetchLatestMetadata fetches the most recent kind-0 metadata event
	// authored by pubkey, or returns nil, nil if there is none.
	FetchLatestMetadata(ctx context.Context, pubkey model.PublicKey) (*model.Metadata, error)
}

// NostrRelayClient is the default RelayClient, backed by nostr.RelayConnect
// against a single relay (§6).
type NostrRelayClient struct {
	relay *nostr.Relay
}

// DialRelayClient connects to the relay at url and returns a ready
// NostrRelayClient.
func DialRelayClient(ctx context.Context, url string) (*NostrRelayClient, error) {
	relay, err := nostr.RelayConnect(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("connect to relay %s: %w", url, err)
	}
	return &NostrRelayClient{relay: relay}, nil
}

// FetchEvent queries the relay for a single event by id.
func (c *NostrRelayClient) FetchEvent(ctx context.Context, id model.EventID) (*model.Event, error) {
	events, err := c.relay.QuerySync(ctx, nostr.Filter{IDs: []string{id}, Limit: 1})
	if err != nil {
		return nil, fmt.Errorf("query event %s: %w", id, err)
	}
	if len(events) == 0 {
		return nil, nil
	}
	return events[0], nil
}

// FetchLatestMetadata queries the relay for the author's most recent
// kind-0 event and decodes its content into a Metadata.
func (c *NostrRelayClient) FetchLatestMetadata(ctx context.Context, pubkey model.PublicKey) (*model.Metadata, error) {
	events, err := c.relay.QuerySync(ctx, nostr.Filter{
		Authors: []string{pubkey},
		Kinds:   []int{model.KindMetadata},
		Limit:   1,
	})
	if err != nil {
		return nil, fmt.Errorf("query metadata for %s: %w", pubkey, err)
	}
	if len(events) == 0 {
		return nil, nil
	}

	var meta model.Metadata
	if err := json.Unmarshal([]byte(events[0].Content), &meta); err != nil {
		return nil, fmt.Errorf("decode metadata content for %s: %w", pubkey, err)
	}
	return &meta, nil
}
