package validator

import (
	"context"
	"regexp"
	"sync"

	"github.com/nostrtools/eventdeleter/internal/logger"
	"github.com/nostrtools/eventdeleter/pkg/model"
)

// DefaultForbiddenNameRegex is the pattern applied to an author's nip05,
// name, and display_name when no custom pattern is configured.
func DefaultForbiddenNameRegex() *regexp.Regexp {
	return regexp.MustCompile(`.*Reply.*(Guy|Girl|Gal).*`)
}

// PolicyValidator is the reference Validator (§4.2): it runs a reply-copy
// check and a forbidden-name check concurrently and rejects on either hit.
// It holds only a RelayClient and a compiled regex, both immutable after
// construction, so one instance is safe to share across every worker.
type PolicyValidator struct {
	client             RelayClient
	forbiddenNameRegex *regexp.Regexp
}

// NewPolicyValidator builds a PolicyValidator. A nil regex falls back to
// DefaultForbiddenNameRegex.
func NewPolicyValidator(client RelayClient, forbiddenNameRegex *regexp.Regexp) *PolicyValidator {
	if forbiddenNameRegex == nil {
		forbiddenNameRegex = DefaultForbiddenNameRegex()
	}
	return &PolicyValidator{client: client, forbiddenNameRegex: forbiddenNameRegex}
}

// Validate runs both checks concurrently. A reply-copy hit takes precedence
// over a forbidden-name hit when both fire for the same event; a transient
// error on the reply-copy path propagates, one on the forbidden-name path
// degrades to "not forbidden" (§4.2).
func (v *PolicyValidator) Validate(ctx context.Context, event *model.Event) (Verdict, error) {
	var wg sync.WaitGroup
	wg.Add(2)

	var replyVerdict Verdict
	var replyErr error
	go func() {
		defer wg.Done()
		replyVerdict, replyErr = v.checkReplyCopy(ctx, event)
	}()

	var forbiddenVerdict Verdict
	go func() {
		defer wg.Done()
		forbiddenVerdict = v.checkForbiddenName(ctx, event)
	}()

	wg.Wait()

	if replyErr != nil {
		return Verdict{}, replyErr
	}
	if replyVerdict.Rejected {
		return replyVerdict, nil
	}
	if forbiddenVerdict.Rejected {
		return forbiddenVerdict, nil
	}
	return Accept, nil
}

// checkReplyCopy fetches each referenced event in turn and rejects on the
// first byte-for-byte content match authored by someone else. Same-author
// reposts of one's own content are not spam.
func (v *PolicyValidator) checkReplyCopy(ctx context.Context, event *model.Event) (Verdict, error) {
	for _, refID := range model.ReferencedEventIDs(event) {
		referenced, err := v.client.FetchEvent(ctx, refID)
		if err != nil {
			return Verdict{}, err
		}
		if referenced == nil {
			continue
		}
		if referenced.Content == event.Content && referenced.PubKey != event.PubKey {
			return Reject(model.ReplyCopy(event.ID)), nil
		}
	}
	return Accept, nil
}

// checkForbiddenName fetches the author's latest metadata and matches the
// configured regex against nip05, name, and display_name. Fetch failures and
// an absent metadata event both degrade to "not forbidden".
func (v *PolicyValidator) checkForbiddenName(ctx context.Context, event *model.Event) Verdict {
	meta, err := v.client.FetchLatestMetadata(ctx, event.PubKey)
	if err != nil {
		logger.Debug("forbidden-name check: metadata fetch failed, treating as not-forbidden", "pubkey", event.PubKey, "error", err)
		return Accept
	}
	if meta == nil {
		return Accept
	}

	if v.forbiddenNameRegex.MatchString(meta.NIP05) ||
		v.forbiddenNameRegex.MatchString(meta.Name) ||
		v.forbiddenNameRegex.MatchString(meta.DisplayName) {
		return Reject(model.ForbiddenName(event.PubKey))
	}
	return Accept
}
