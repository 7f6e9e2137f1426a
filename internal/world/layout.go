package world

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/gravitas-games/signshop/internal/inventory"
)

// Layout is the static world description loaded at start-up.
type Layout struct {
	Items  []inventory.ItemDetails `yaml:"items"`
	Signs  []SignLayout            `yaml:"signs"`
	Chests []ChestLayout           `yaml:"chests"`
	Frames []FrameLayout           `yaml:"frames"`
}

// SignLayout places one sign.
type SignLayout struct {
	Pos   BlockPos `yaml:"pos"`
	Lines []string `yaml:"lines"`
}

// ChestLayout places one container with optional contents.
type ChestLayout struct {
	Pos      BlockPos          `yaml:"pos"`
	Size     int               `yaml:"size"`
	Limit    int               `yaml:"limit"`
	Contents []inventory.Stack `yaml:"contents"`
}

// FrameLayout hangs one fixture. An empty ID gets a random one.
type FrameLayout struct {
	ID   string           `yaml:"id"`
	Pos  Vec3             `yaml:"pos"`
	Item *inventory.Stack `yaml:"item"`
}

// LoadLayout reads a world layout from a YAML file
func LoadLayout(path string) (*Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read world layout: %w", err)
	}
	var l Layout
	if err := yaml.Unmarshal(data, &l); err != nil {
		return nil, fmt.Errorf("failed to parse world layout: %w", err)
	}
	return &l, nil
}

// Apply registers the layout's items in catalog and builds its blocks in m.
func (l *Layout) Apply(m *Memory, catalog *inventory.Catalog) error {
	for _, d := range l.Items {
		if err := catalog.Register(d); err != nil {
			return fmt.Errorf("item %q: %w", d.ID, err)
		}
	}
	for _, s := range l.Signs {
		m.PlaceSign(s.Pos, s.Lines...)
	}
	for _, c := range l.Chests {
		if c.Size <= 0 {
			c.Size = 27
		}
		chest := m.PlaceChest(c.Pos, c.Size, c.Limit)
		for _, st := range c.Contents {
			st = withCatalogMax(catalog, st)
			if !inventory.Push(chest, st) {
				return fmt.Errorf("chest %s: contents do not fit", c.Pos)
			}
		}
	}
	for _, f := range l.Frames {
		id := uuid.New()
		if f.ID != "" {
			parsed, err := uuid.Parse(f.ID)
			if err != nil {
				return fmt.Errorf("frame id %q: %w", f.ID, err)
			}
			id = parsed
		}
		var item *inventory.Stack
		if f.Item != nil {
			st := withCatalogMax(catalog, *f.Item)
			item = &st
		}
		m.placeFrame(id, f.Pos, item)
	}
	return nil
}

func withCatalogMax(catalog *inventory.Catalog, st inventory.Stack) inventory.Stack {
	if st.StackMax == 0 {
		if d, ok := catalog.Lookup(st.Item); ok {
			st.StackMax = d.MaxStack
		}
	}
	return st
}
