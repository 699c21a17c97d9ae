package exercise

import (
	"sort"
	"sync"

	"github.com/pkg/errors"
)

// ErrUnknownExercise is returned when an identifier has no registered profile.
var ErrUnknownExercise = errors.New("unknown exercise")

// Registry maps exercise identifiers to profiles. Lookups return copies, so a
// profile handed to a session never changes underneath it.
type Registry struct {
	mu       sync.RWMutex
	profiles map[string]Profile
	defaults map[string]Profile
}

// NewRegistry creates a registry holding the built-in profiles.
func NewRegistry() *Registry {
	r := &Registry{
		profiles: make(map[string]Profile),
		defaults: make(map[string]Profile),
	}
	for _, p := range Defaults() {
		r.profiles[p.ID] = p.clone()
		r.defaults[p.ID] = p.clone()
	}
	return r
}

// Lookup returns the effective profile for id.
func (r *Registry) Lookup(id string) (Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.profiles[id]
	if !ok {
		return Profile{}, errors.Wrapf(ErrUnknownExercise, "%q", id)
	}
	return p.clone(), nil
}

// IDs returns every registered identifier in sorted order.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.profiles))
	for id := range r.profiles {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Profiles returns every effective profile in identifier order.
func (r *Registry) Profiles() []Profile {
	ids := r.IDs()

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Profile, 0, len(ids))
	for _, id := range ids {
		out = append(out, r.profiles[id].clone())
	}
	return out
}

// Override merges o over the built-in profile for id. The merged profile is
// validated before it replaces the current one. Overrides do not stack: each
// call starts from the default.
func (r *Registry) Override(id string, o Override) (Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	merged, err := r.merge(id, o)
	if err != nil {
		return Profile{}, err
	}
	r.profiles[id] = merged
	return merged.clone(), nil
}

// merge validates o over the default for id. r.mu must be held.
func (r *Registry) merge(id string, o Override) (Profile, error) {
	base, ok := r.defaults[id]
	if !ok {
		return Profile{}, errors.Wrapf(ErrUnknownExercise, "%q", id)
	}

	merged := o.Apply(base.clone())
	if err := merged.Validate(); err != nil {
		return Profile{}, err
	}
	return merged, nil
}

// Restore drops any override for id.
func (r *Registry) Restore(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	base, ok := r.defaults[id]
	if !ok {
		return errors.Wrapf(ErrUnknownExercise, "%q", id)
	}
	r.profiles[id] = base.clone()
	return nil
}

// ApplyOverrides applies a set of overrides as one unit: if any of them is
// invalid, none is applied. Like Override, each entry starts from the
// default, so applying a second set replaces an exercise's earlier override
// as a whole rather than layering on it. Callers that load several sources
// apply them in increasing priority (config file, then stored overrides).
func (r *Registry) ApplyOverrides(overrides map[string]Override) error {
	ids := make([]string, 0, len(overrides))
	for id := range overrides {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	r.mu.Lock()
	defer r.mu.Unlock()

	merged := make(map[string]Profile, len(ids))
	for _, id := range ids {
		p, err := r.merge(id, overrides[id])
		if err != nil {
			return errors.Wrapf(err, "Can't apply override for %s", id)
		}
		merged[id] = p
	}
	for id, p := range merged {
		r.profiles[id] = p
	}
	return nil
}
