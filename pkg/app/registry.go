package app

import (
	"time"

	"github.com/leakwatch/leakwatch/pkg/utils/metrics"
	"github.com/patrickmn/go-cache"
)

// DefaultInstanceTTL is how long an idle instance is kept
const DefaultInstanceTTL = 30 * time.Minute

// Registry holds the live dashboard instances keyed by session ID. Idle instances expire.
type Registry struct {
	instances *cache.Cache
	ttl       time.Duration
	factory   func(id string) *Instance
}

func newRegistry(ttl time.Duration, factory func(id string) *Instance) *Registry {
	if ttl <= 0 {
		ttl = DefaultInstanceTTL
	}
	c := cache.New(ttl, ttl/2)
	c.OnEvicted(func(string, any) {
		metrics.Instances.Dec()
	})
	return &Registry{instances: c, ttl: ttl, factory: factory}
}

// Get returns the instance for id and extends its lifetime. Replace fails once the
// instance was deleted, so a concurrent Reload is never undone.
func (r *Registry) Get(id string) (*Instance, bool) {
	if id == "" {
		return nil, false
	}
	v, ok := r.instances.Get(id)
	if !ok {
		return nil, false
	}
	inst := v.(*Instance)
	if err := r.instances.Replace(id, inst, r.ttl); err != nil {
		return nil, false
	}
	return inst, true
}

// Create makes a new instance with a fresh ID
func (r *Registry) Create() *Instance {
	inst := r.factory("")
	r.instances.Set(inst.ID, inst, r.ttl)
	metrics.Instances.Inc()
	return inst
}

// GetOrCreate returns the instance for id, creating a new one when it is unknown or expired
func (r *Registry) GetOrCreate(id string) (*Instance, bool) {
	if inst, ok := r.Get(id); ok {
		return inst, false
	}
	return r.Create(), true
}

// Reload discards the instance for id and returns a brand new one. All of its boundary,
// viewer and toast state is gone.
func (r *Registry) Reload(id string) *Instance {
	if id != "" {
		r.instances.Delete(id)
	}
	return r.Create()
}

// Len returns the number of live instances
func (r *Registry) Len() int {
	return r.instances.ItemCount()
}
