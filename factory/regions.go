package factory

import (
	"math/rand"

	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/ecosys/config"
	"github.com/pthm-cable/ecosys/systems"
)

type dynamicRegionData struct {
	Food   *float64 `yaml:"food"`
	Factor *float64 `yaml:"factor"`
}

// NewRegionFactory returns a factory for the default and dynamic regions.
// Dynamic regions draw from rng.
func NewRegionFactory(rng *rand.Rand) *Factory[systems.Region] {
	food := config.Cfg().Food

	return New[systems.Region](
		builder[systems.Region]{
			tag:     systems.DefaultRegionType,
			desc:    "Infinite food supply",
			example: map[string]any{},
			create: func(*yaml.Node) (systems.Region, error) {
				return systems.NewDefaultRegion(), nil
			},
		},
		builder[systems.Region]{
			tag:  systems.DynamicRegionType,
			desc: "Dynamic food supply",
			example: map[string]any{
				"food":   food.DynamicFood,
				"factor": food.DynamicFactor,
			},
			create: func(data *yaml.Node) (systems.Region, error) {
				var d dynamicRegionData
				if err := decode(data, &d); err != nil {
					return nil, err
				}
				stock, factor := food.DynamicFood, food.DynamicFactor
				if d.Food != nil {
					stock = *d.Food
				}
				if d.Factor != nil {
					factor = *d.Factor
				}
				r, err := systems.NewDynamicRegion(stock, factor, rng)
				if err != nil {
					return nil, err
				}
				return r, nil
			},
		},
	)
}
