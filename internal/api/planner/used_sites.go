package planner

import "github.com/FACorreiaa/go-itinerary-builder/internal/types"

// UsedSites is the set of site names already scheduled in one trip build.
// Names are only ever added. It is not safe for concurrent use; a trip build
// owns its instance.
type UsedSites struct {
	names map[string]struct{}
	order []string
}

func NewUsedSites() *UsedSites {
	return &UsedSites{names: make(map[string]struct{})}
}

func (u *UsedSites) Has(name string) bool {
	if u == nil {
		return false
	}
	_, ok := u.names[name]
	return ok
}

// Add marks every site name as used.
func (u *UsedSites) Add(sites ...types.Site) {
	for _, site := range sites {
		if u.Has(site.Name) {
			continue
		}
		u.names[site.Name] = struct{}{}
		u.order = append(u.order, site.Name)
	}
}

// Names returns the used names in the order they were added.
func (u *UsedSites) Names() []string {
	out := make([]string, len(u.order))
	copy(out, u.order)
	return out
}

func (u *UsedSites) Len() int {
	return len(u.order)
}
