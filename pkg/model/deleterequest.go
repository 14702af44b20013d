package model

// DeleteRequestKind identifies which of the three DeleteRequest shapes a
// value holds.
type DeleteRequestKind uint8

const (
	// KindReplyCopy deletes exactly one event by id.
	KindReplyCopy DeleteRequestKind = iota
	// KindForbiddenName deletes every event authored by a public key.
	KindForbiddenName
	// KindVanish deletes every event authored by a public key, in response
	// to a user-initiated vanish request read from the external stream.
	KindVanish
)

func (k DeleteRequestKind) String() string {
	switch k {
	case KindReplyCopy:
		return "reply-copy"
	case KindForbiddenName:
		return "forbidden-name"
	case KindVanish:
		return "vanish"
	default:
		return "unknown"
	}
}

// DeleteRequest is the tagged variant produced by validation (C2/C4) and by
// the vanish stream consumer (C6), and consumed by the deletion aggregator
// (C5). Only the fields relevant to Kind are populated; the rest are zero.
type DeleteRequest struct {
	Kind DeleteRequestKind

	// EventID is set for KindReplyCopy.
	EventID EventID

	// PublicKey is set for KindForbiddenName and KindVanish.
	PublicKey PublicKey

	// StreamEntryID is set for KindVanish: the id of the stream entry this
	// request was read from, used by C6 as the resumption cursor.
	StreamEntryID string

	// Reason is an optional free-text reason, set for KindVanish when the
	// stream entry carried one.
	Reason *string
}

// ReplyCopy builds a DeleteRequest deleting exactly one event by id.
func ReplyCopy(eventID EventID) DeleteRequest {
	return DeleteRequest{Kind: KindReplyCopy, EventID: eventID}
}

// ForbiddenName builds a DeleteRequest deleting every event authored by pubkey.
func ForbiddenName(pubkey PublicKey) DeleteRequest {
	return DeleteRequest{Kind: KindForbiddenName, PublicKey: pubkey}
}

// Vanish builds a DeleteRequest deleting every event authored by pubkey, in
// response to a vanish request read from streamEntryID. reason may be nil.
func Vanish(streamEntryID string, pubkey PublicKey, reason *string) DeleteRequest {
	return DeleteRequest{
		Kind:          KindVanish,
		PublicKey:     pubkey,
		StreamEntryID: streamEntryID,
		Reason:        reason,
	}
}

// key returns a string that uniquely identifies this request for equality,
// ordering, and set-deduplication purposes.
func (d DeleteRequest) key() string {
	switch d.Kind {
	case KindReplyCopy:
		return "0|" + d.EventID
	case KindForbiddenName:
		return "1|" + d.PublicKey
	case KindVanish:
		return "2|" + d.StreamEntryID + "|" + d.PublicKey
	default:
		return "9|"
	}
}

// Equal reports whether d and other represent the same deletion, including
// the optional Reason field (which Vanish carries but does not key on).
func (d DeleteRequest) Equal(other DeleteRequest) bool {
	if d.key() != other.key() {
		return false
	}
	if (d.Reason == nil) != (other.Reason == nil) {
		return false
	}
	if d.Reason != nil && *d.Reason != *other.Reason {
		return false
	}
	return true
}

// Less defines the total order over DeleteRequest used by tests and by any
// code that wants deterministic output (e.g. golden-file comparisons).
// Requests are ordered first by Kind, then by their variant-specific key.
// Less does not consider Reason, so two Vanish requests differing only in
// Reason compare equal under Less while being unequal under Equal; callers
// using Less for deduplication rather than display ordering should be aware
// of this.
func (d DeleteRequest) Less(other DeleteRequest) bool {
	return d.key() < other.key()
}
