package dashboard

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// ChartInstance is the live chart currently attached to a mount.
type ChartInstance struct {
	ID        string
	MountID   string
	Kind      ChartKind
	Theme     string
	CreatedAt time.Time
}

// ChartInstances tracks at most one live chart per mount. Attaching a chart to
// a mount destroys whatever was there before.
type ChartInstances struct {
	mu        sync.Mutex
	byMount   map[string]ChartInstance
	destroyed int
}

// NewChartInstances returns an empty registry.
func NewChartInstances() *ChartInstances {
	return &ChartInstances{byMount: map[string]ChartInstance{}}
}

// Attach records a new instance for mountID and returns it along with the
// instance it replaced, if any.
func (c *ChartInstances) Attach(mountID string, kind ChartKind, theme string) (ChartInstance, *ChartInstance) {
	inst := ChartInstance{
		ID:        uuid.NewString(),
		MountID:   mountID,
		Kind:      kind,
		Theme:     theme,
		CreatedAt: time.Now(),
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	var prev *ChartInstance
	if old, ok := c.byMount[mountID]; ok {
		prev = &old
		c.destroyed++
	}
	c.byMount[mountID] = inst
	return inst, prev
}

// Get returns the live instance on mountID.
func (c *ChartInstances) Get(mountID string) (ChartInstance, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	inst, ok := c.byMount[mountID]
	return inst, ok
}

// Len returns the number of live instances.
func (c *ChartInstances) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.byMount)
}

// Destroyed returns how many instances were torn down so far.
func (c *ChartInstances) Destroyed() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.destroyed
}

// DestroyAll tears down every live instance.
func (c *ChartInstances) DestroyAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.destroyed += len(c.byMount)
	c.byMount = map[string]ChartInstance{}
}
