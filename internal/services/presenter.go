package services

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strconv"

	"github.com/aisle-md/aislemd/internal/database"
	"github.com/aisle-md/aislemd/internal/lookup"
)

var numberedAisle = regexp.MustCompile(`^Aisle (\d+)$`)

// Group is one display bucket of the shopping list.
type Group struct {
	Aisle string
	Items []database.ItemRecord
}

// Presenter reads the mirror and groups it by aisle.
type Presenter struct {
	store ItemStore
}

func NewPresenter(store ItemStore) *Presenter {
	return &Presenter{store: store}
}

// Load returns every stored item grouped with GroupItems.
func (p *Presenter) Load(ctx context.Context) ([]Group, error) {
	items, err := p.store.ListItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("load items: %w", err)
	}
	return GroupItems(items), nil
}

// GroupItems buckets items by aisle. Named locations come first in
// lexicographic order, then "Aisle <n>" buckets in numeric order, then the
// Unknown bucket. Items keep their input order within a bucket.
func GroupItems(items []database.ItemRecord) []Group {
	named := map[string][]database.ItemRecord{}
	numbered := map[int][]database.ItemRecord{}

	for _, item := range items {
		if n, ok := aisleNumber(item.Aisle); ok {
			numbered[n] = append(numbered[n], item)
			continue
		}
		key := lookup.UnknownAisle
		if item.Aisle != nil {
			key = *item.Aisle
		}
		named[key] = append(named[key], item)
	}

	names := make([]string, 0, len(named))
	for name := range named {
		if name != lookup.UnknownAisle {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	numbers := make([]int, 0, len(numbered))
	for n := range numbered {
		numbers = append(numbers, n)
	}
	sort.Ints(numbers)

	groups := make([]Group, 0, len(named)+len(numbered))
	for _, name := range names {
		groups = append(groups, Group{Aisle: name, Items: named[name]})
	}
	for _, n := range numbers {
		groups = append(groups, Group{Aisle: fmt.Sprintf("Aisle %d", n), Items: numbered[n]})
	}
	if unknown, ok := named[lookup.UnknownAisle]; ok {
		groups = append(groups, Group{Aisle: lookup.UnknownAisle, Items: unknown})
	}
	return groups
}

func aisleNumber(aisle *string) (int, bool) {
	if aisle == nil {
		return 0, false
	}
	match := numberedAisle.FindStringSubmatch(*aisle)
	if match == nil {
		return 0, false
	}
	n, err := strconv.Atoi(match[1])
	if err != nil {
		return 0, false
	}
	return n, true
}
