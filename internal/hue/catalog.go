package hue

import (
	"context"
	"sort"
	"strconv"

	"golang.org/x/sync/errgroup"
)

// Resource is a named light or group on the bridge.
type Resource struct {
	Ref  Ref
	Name string
}

// Catalog lists lights and groups of the paired bridge.
type Catalog struct {
	client *Client
}

// NewCatalog creates a new catalog backed by the client's session
func NewCatalog(client *Client) *Catalog {
	return &Catalog{client: client}
}

// LightsAndGroups fetches lights and groups concurrently, bounded by the client timeout.
// ok is false when the session is not paired.
func (c *Catalog) LightsAndGroups(ctx context.Context) (lights, groups []Resource, ok bool, err error) {
	creds, ok := c.client.session.Credentials()
	if !ok {
		return nil, nil, false, nil
	}
	bridge := creds.Bridge()

	// huego sends through its own http.Client, so the client timeout is applied here
	if timeout := c.client.httpClient.Timeout; timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := c.client.limiter.Wait(gctx); err != nil {
			return err
		}
		found, err := bridge.GetLightsContext(gctx)
		if err != nil {
			return err
		}
		lights = make([]Resource, 0, len(found))
		for _, l := range found {
			lights = append(lights, resource(KindLight, l.ID, l.Name))
		}
		return nil
	})
	g.Go(func() error {
		if err := c.client.limiter.Wait(gctx); err != nil {
			return err
		}
		found, err := bridge.GetGroupsContext(gctx)
		if err != nil {
			return err
		}
		groups = make([]Resource, 0, len(found))
		for _, gr := range found {
			groups = append(groups, resource(KindGroup, gr.ID, gr.Name))
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, nil, true, err
	}

	sortResources(lights)
	sortResources(groups)
	return lights, groups, true, nil
}

func resource(kind Kind, id int, name string) Resource {
	return Resource{Ref: Ref{Kind: kind, ID: strconv.Itoa(id)}, Name: name}
}

// sortResources orders by numeric id; the bridge returns objects keyed by id.
func sortResources(rs []Resource) {
	sort.Slice(rs, func(i, j int) bool {
		a, _ := strconv.Atoi(rs[i].Ref.ID)
		b, _ := strconv.Atoi(rs[j].Ref.ID)
		return a < b
	})
}

