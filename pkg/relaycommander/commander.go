// Package relaycommander implements the relay commander (C1): it partitions
// a batch of delete requests into at most two single-shape filters and
// drives the low-level deleter once per non-empty shape.
package relaycommander

import (
	"context"

	"github.com/nostrtools/eventdeleter/internal/logger"
	"github.com/nostrtools/eventdeleter/pkg/model"
)

// Deleter is the low-level capability the commander drives: given a filter's
// JSON and a dry-run flag, delete every event the filter matches.
type Deleter interface {
	DeleteFromFilter(ctx context.Context, filterJSON []byte, dryRun bool) error
}

// Commander partitions DeleteRequests by variant and issues one deletion per
// non-empty shape. It never terminates the pipeline: callers log its errors
// and move on (§4.1, §7).
type Commander struct {
	deleter Deleter
}

// New builds a Commander around the given low-level Deleter.
func New(deleter Deleter) *Commander {
	return &Commander{deleter: deleter}
}

// ExecuteDelete partitions requests into an ids-set (from ReplyCopy) and an
// authors-set (from ForbiddenName and Vanish), issuing one call to the
// Deleter per non-empty set. Duplicates within a set collapse. A failure
// deleting one shape does not prevent attempting the other, but the first
// error encountered is returned to the caller.
func (c *Commander) ExecuteDelete(ctx context.Context, requests []model.DeleteRequest, dryRun bool) error {
	if len(requests) == 0 {
		return nil
	}

	ids := make(map[model.EventID]struct{})
	authors := make(map[model.PublicKey]struct{})

	for _, r := range requests {
		switch r.Kind {
		case model.KindReplyCopy:
			ids[r.EventID] = struct{}{}
		case model.KindForbiddenName, model.KindVanish:
			authors[r.PublicKey] = struct{}{}
		}
	}

	var firstErr error

	if len(ids) > 0 {
		if err := c.deleteFilter(ctx, model.NewIDsFilter(ids), dryRun); err != nil {
			firstErr = err
		}
	}

	if len(authors) > 0 {
		if err := c.deleteFilter(ctx, model.NewAuthorsFilter(authors), dryRun); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	return firstErr
}

func (c *Commander) deleteFilter(ctx context.Context, filter model.Filter, dryRun bool) error {
	raw, err := filter.JSON()
	if err != nil {
		logger.Error("failed to marshal filter", "error", err)
		return err
	}

	if err := c.deleter.DeleteFromFilter(ctx, raw, dryRun); err != nil {
		logger.Error("delete_from_filter failed", "filter", string(raw), "dry_run", dryRun, "error", err)
		return err
	}

	logger.Info("deletion issued", "filter", string(raw), "dry_run", dryRun)
	return nil
}
