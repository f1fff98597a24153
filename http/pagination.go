package http

import "context"

// PageFetcher fetches one page of items. It returns the items, whether more
// pages remain, and any error.
type PageFetcher[T any] func(ctx context.Context, page int) (items []T, hasMore bool, err error)

// CollectPages drains a paginated API into a single slice, stopping at limit
// items (0 = no limit).
func CollectPages[T any](ctx context.Context, limit int, fetch PageFetcher[T]) ([]T, error) {
	var all []T
	for page := 0; ; page++ {
		items, hasMore, err := fetch(ctx, page)
		if err != nil {
			return all, err
		}
		all = append(all, items...)
		if limit > 0 && len(all) >= limit {
			return all[:limit], nil
		}
		if !hasMore {
			return all, nil
		}
	}
}
