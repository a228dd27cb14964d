// ABOUTME: Deletes rows that failed lead saves left on the backend
// ABOUTME: Leads go first so their contact and address are no longer referenced
package pages

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"

	"go.uber.org/zap"

	"github.com/harperreed/zala/api"
	"github.com/harperreed/zala/db"
)

// OrphanStore remembers rows that could not be deleted when a lead save failed.
type OrphanStore interface {
	ListOrphans(ctx context.Context) ([]db.Orphan, error)
	ResolveOrphan(ctx context.Context, kind string, id int) error
	OrphanFailed(ctx context.Context, kind string, id int, cause error) error
}

type CleanupResult struct {
	Deleted int
	Failed  int
}

var orphanOrder = map[string]int{"lead": 0, "contact": 1, "address": 2}

// CleanupOrphans deletes every remembered orphan. A row the backend no
// longer has counts as deleted. Failures are recorded and retried next time.
func CleanupOrphans(ctx context.Context, d Deps, store OrphanStore) (CleanupResult, error) {
	d = d.withDefaults()
	orphans, err := store.ListOrphans(ctx)
	if err != nil {
		return CleanupResult{}, err
	}
	slices.SortStableFunc(orphans, func(a, b db.Orphan) int {
		return cmp.Compare(orphanOrder[a.Kind], orphanOrder[b.Kind])
	})

	var res CleanupResult
	for _, o := range orphans {
		if ctx.Err() != nil {
			return res, ctx.Err()
		}
		err := deleteRemote(ctx, d.API, o.Kind, o.RemoteID)
		var apiErr *api.Error
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound {
			err = nil
		}
		if err != nil {
			res.Failed++
			d.Logger.Warn("orphan cleanup failed",
				zap.String("kind", o.Kind),
				zap.Int("id", o.RemoteID),
				zap.Error(err))
			if err := store.OrphanFailed(ctx, o.Kind, o.RemoteID, err); err != nil {
				return res, err
			}
			continue
		}
		if err := store.ResolveOrphan(ctx, o.Kind, o.RemoteID); err != nil {
			return res, err
		}
		res.Deleted++
	}
	return res, nil
}

func deleteRemote(ctx context.Context, c *api.Client, kind string, id int) error {
	switch kind {
	case "lead":
		return c.DeleteLead(ctx, id)
	case "contact":
		return c.DeleteContact(ctx, id)
	case "address":
		return c.DeleteAddress(ctx, id)
	}
	return fmt.Errorf("unknown orphan kind %q", kind)
}
