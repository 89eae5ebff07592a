package plugin

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/dokzlo13/espresso-hue/internal/host"
	"github.com/dokzlo13/espresso-hue/internal/hue"
)

const lightsAndGroupsSlug = "hue:lights-and-groups"

// lightsAndGroups lists every light and group of the bridge as kind:id options.
type lightsAndGroups struct {
	catalog *hue.Catalog
}

func (o *lightsAndGroups) Slug() string {
	return lightsAndGroupsSlug
}

// Options never fails; any error yields an empty list.
func (o *lightsAndGroups) Options(ctx context.Context) []host.Option {
	lights, groups, ok, err := o.catalog.LightsAndGroups(ctx)
	if !ok {
		return []host.Option{}
	}
	if err != nil {
		log.Warn().Err(err).Msg("Failed to list lights and groups")
		return []host.Option{}
	}

	options := make([]host.Option, 0, len(lights)+len(groups))
	for _, l := range lights {
		options = append(options, host.Option{Text: l.Name, Value: l.Ref.String(), Category: "Lights"})
	}
	for _, g := range groups {
		options = append(options, host.Option{Text: g.Name, Value: g.Ref.String(), Category: "Groups"})
	}
	return options
}
