// Package model defines the wire-level types shared by every stage of the
// deletion pipeline: the Nostr event the validator inspects, the deletion
// requests it emits, and the filters the relay commander issues.
package model

import "github.com/nbd-wtf/go-nostr"

// Event is the opaque record validators classify. It is a NIP-01 Nostr
// event: author public key, kind, content, and a list of tags, some of
// which reference other events by id. Reusing nostr.Event avoids
// re-deriving the id/signature rules every relay and client already agree
// on.
type Event = nostr.Event

// EventID is a lowercase-hex event id, as produced by nostr.Event.GetID().
type EventID = string

// PublicKey is a lowercase-hex Nostr public key.
type PublicKey = string

// ReferencedEventIDs returns the event ids referenced by the event's "e"
// tags, in tag order. These are the ids the reply-copy heuristic (§4.2)
// fetches and compares content against.
func ReferencedEventIDs(e *Event) []EventID {
	var ids []EventID
	for _, tag := range e.Tags {
		if len(tag) >= 2 && tag[0] == "e" {
			ids = append(ids, tag[1])
		}
	}
	return ids
}

// KindMetadata is the Nostr event kind (0) carrying a profile's JSON
// metadata (name, display_name, nip05, ...).
const KindMetadata = 0

// KindVanishRequest is the Nostr event kind (62) NIP-62 vanish requests are
// stamped with on the stream; entries carrying any other kind are rejected
// by the stream-entry parser (§4.6.3).
const KindVanishRequest = 62

// Metadata is the subset of a kind-0 event's content the forbidden-name
// check inspects.
type Metadata struct {
	NIP05       string `json:"nip05"`
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
}
