package apiclient

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/parliamentplating/reservations-web/internal/model"
)

// EventFilter narrows the event listing on the server side.  Free-text
// search is applied locally by the listing package.
type EventFilter struct {
	Location  string
	StartDate string // yyyy-mm-dd
}

func (f EventFilter) query() url.Values {
	q := url.Values{}
	if f.Location != "" {
		q.Set("location", f.Location)
	}
	if f.StartDate != "" {
		q.Set("start_date", f.StartDate)
	}
	return q
}

// Events lists events.
func (a *API) Events(ctx context.Context, f EventFilter) (List[model.Event], error) {
	return getList[model.Event](ctx, a, "/events/events/", f.query())
}

// Event fetches one event by slug, including ticket types and sub-events.
func (a *API) Event(ctx context.Context, slug string) (model.Event, error) {
	var e model.Event
	err := a.getJSON(ctx, "/events/events/"+url.PathEscape(slug)+"/", nil, &e)
	return e, err
}

// Resource is one of the admin-editable event collections.
type Resource string

const (
	ResourceEvents      Resource = "events"
	ResourceSubEvents   Resource = "sub-events"
	ResourceTicketTypes Resource = "ticket-types"
)

// ParseResource validates a resource name taken from a URL.
func ParseResource(s string) (Resource, bool) {
	switch r := Resource(s); r {
	case ResourceEvents, ResourceSubEvents, ResourceTicketTypes:
		return r, true
	}
	return "", false
}

func (r Resource) path() string { return "/events/" + string(r) + "/" }

// itemPath addresses an item: events by slug, the others by primary key.
func (r Resource) itemPath(key string) string {
	return r.path() + url.PathEscape(key) + "/"
}

// SubEvents lists all sub-events.
func (a *API) SubEvents(ctx context.Context) (List[model.SubEvent], error) {
	return getList[model.SubEvent](ctx, a, ResourceSubEvents.path(), nil)
}

// TicketTypes lists all ticket types.
func (a *API) TicketTypes(ctx context.Context) (List[model.TicketType], error) {
	return getList[model.TicketType](ctx, a, ResourceTicketTypes.path(), nil)
}

// CreateResource posts a new item to an event collection.
func (a *API) CreateResource(ctx context.Context, r Resource, payload map[string]any) (map[string]any, error) {
	var out map[string]any
	err := a.sendJSON(ctx, http.MethodPost, r.path(), payload, &out)
	return out, err
}

// UpdateResource patches an item of an event collection.
func (a *API) UpdateResource(ctx context.Context, r Resource, key string, payload map[string]any) (map[string]any, error) {
	if key == "" {
		return nil, fmt.Errorf("update %s: empty key", r)
	}
	var out map[string]any
	err := a.sendJSON(ctx, http.MethodPatch, r.itemPath(key), payload, &out)
	return out, err
}

// DeleteResource deletes an item of an event collection.
func (a *API) DeleteResource(ctx context.Context, r Resource, key string) error {
	if key == "" {
		return fmt.Errorf("delete %s: empty key", r)
	}
	return a.do(ctx, call{method: http.MethodDelete, path: r.itemPath(key)}, nil)
}
