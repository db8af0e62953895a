package metacache

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"idlectl/api"
)

// batchSize bounds one catalog request; the daemon's proxy rejects
// oversized id lists.
const batchSize = 20

// Fetcher is the catalog lookup the store hydrates through. *api.Client
// satisfies it.
type Fetcher interface {
	AppMeta(ctx context.Context, ids []string) (map[string]api.AppMeta, error)
}

// Hydrate fetches metadata for every uncached id, fanning batches out
// concurrently, and writes results through the store. The combined fetch
// result is returned so callers can render without re-reading the cache.
func (s *Store) Hydrate(ctx context.Context, f Fetcher, ids []string) (map[string]api.AppMeta, error) {
	missing := s.Missing(ids)
	if len(missing) == 0 {
		return nil, nil
	}

	var mu sync.Mutex
	fetched := make(map[string]api.AppMeta)

	g, ctx := errgroup.WithContext(ctx)
	for start := 0; start < len(missing); start += batchSize {
		end := start + batchSize
		if end > len(missing) {
			end = len(missing)
		}
		chunk := missing[start:end]
		g.Go(func() error {
			apps, err := f.AppMeta(ctx, chunk)
			if err != nil {
				return err
			}
			for id, meta := range apps {
				if err := s.Put(id, meta); err != nil {
					return err
				}
				mu.Lock()
				fetched[id] = meta
				mu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fetched, err
	}
	return fetched, nil
}
