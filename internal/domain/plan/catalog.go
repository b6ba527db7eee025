package plan

import (
	"fmt"
	"sort"
)

// StaticCatalog is an immutable in-memory Catalog.
type StaticCatalog struct {
	defaultTier Tier
	defs        map[Tier]*Definition
	order       []Tier
}

// NewStaticCatalog validates defs and requires defaultTier among them.
func NewStaticCatalog(defaultTier Tier, defs ...Definition) (*StaticCatalog, error) {
	c := &StaticCatalog{
		defaultTier: Normalize(string(defaultTier)),
		defs:        make(map[Tier]*Definition, len(defs)),
	}
	for i := range defs {
		d := defs[i]
		d.Tier = Normalize(string(d.Tier))
		if d.Tier == "" {
			return nil, fmt.Errorf("plan %d: tier is required", i)
		}
		if _, dup := c.defs[d.Tier]; dup {
			return nil, fmt.Errorf("plan %s: defined twice", d.Tier)
		}
		for interval, price := range d.Prices {
			if !interval.IsValid() {
				return nil, fmt.Errorf("plan %s: %w: %q", d.Tier, ErrInvalidInterval, interval)
			}
			if price.Amount <= 0 {
				return nil, fmt.Errorf("plan %s: %s price must be positive", d.Tier, interval)
			}
		}
		c.defs[d.Tier] = &d
		c.order = append(c.order, d.Tier)
	}
	if _, ok := c.defs[c.defaultTier]; !ok {
		return nil, fmt.Errorf("%w: default tier %q is not defined", ErrUnknownTier, defaultTier)
	}
	if c.defs[c.defaultTier].IsPaid() {
		return nil, fmt.Errorf("default tier %q cannot have prices", c.defaultTier)
	}
	sort.SliceStable(c.order, func(i, j int) bool {
		return c.defs[c.order[i]].Limits.PostsPerMonth < c.defs[c.order[j]].Limits.PostsPerMonth
	})
	return c, nil
}

func (c *StaticCatalog) Get(tier Tier) (*Definition, error) {
	d, ok := c.defs[Normalize(string(tier))]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTier, tier)
	}
	return d, nil
}

func (c *StaticCatalog) LimitsFor(tier Tier) (Limits, error) {
	d, err := c.Get(tier)
	if err != nil {
		return Limits{}, err
	}
	return d.Limits, nil
}

func (c *StaticCatalog) DefaultTier() Tier {
	return c.defaultTier
}

// List returns definitions ordered by post allowance.
func (c *StaticCatalog) List() []*Definition {
	out := make([]*Definition, 0, len(c.order))
	for _, t := range c.order {
		out = append(out, c.defs[t])
	}
	return out
}
