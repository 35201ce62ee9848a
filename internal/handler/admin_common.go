package handler

import (
    "context"

    "github.com/parliamentplating/reservations-web/internal/apiclient"
    "github.com/parliamentplating/reservations-web/internal/listing"
)

// listResult is what an admin list returns after a mutation.  Provisional
// is set when the re-fetch failed and Items is the locally edited list.
type listResult[T any] struct {
    Items       []T  `json:"items"`
    Provisional bool `json:"provisional"`
    Diverged    bool `json:"diverged"`
}

// deleteAndReconcile removes id from the current list locally, asks the API
// to delete it and reconciles with a fresh fetch.  The server list wins
// whenever it can be fetched.  mutErr is the delete error, if any.
func deleteAndReconcile[T any](
    ctx context.Context,
    load func(context.Context) (apiclient.List[T], error),
    key func(T) uint64,
    id uint64,
    del func(context.Context, uint64) error,
) (res listResult[T], mutErr error, loadErr error) {
    current, err := load(ctx)
    if err != nil {
        return res, nil, err
    }
    list := listing.NewOptimistic(current.Items, key)
    list.Remove(id)
    mutErr = del(ctx, id)

    if fresh, err := load(ctx); err == nil {
        res.Diverged = list.Reconcile(fresh.Items)
    }
    res.Items = list.Items()
    res.Provisional = list.Provisional()
    return res, mutErr, nil
}
