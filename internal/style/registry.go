package style

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrNotFound is matched by every NotFoundError.
var ErrNotFound = errors.New("style not found")

// NotFoundError reports a lookup of an unregistered profile name.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("style %s is not found", e.Name)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// Registry maps profile names to profiles.
type Registry struct {
	mu       sync.RWMutex
	profiles map[string]Profile
}

// NewRegistry returns a registry holding the builtin profiles.
func NewRegistry() *Registry {
	return &Registry{profiles: builtins()}
}

func builtins() map[string]Profile {
	return map[string]Profile{DefaultName: defaultProfile{}}
}

// Register adds profiles. A name that is empty or already registered is
// an error and leaves the registry unchanged.
func (r *Registry) Register(profiles ...Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := checkNames(r.profiles, profiles); err != nil {
		return err
	}
	for _, p := range profiles {
		r.profiles[p.Name()] = p
	}
	return nil
}

// Replace swaps every non-builtin profile for profiles in one step. On
// error the registry is unchanged.
func (r *Registry) Replace(profiles ...Profile) error {
	next := builtins()
	if err := checkNames(next, profiles); err != nil {
		return err
	}
	for _, p := range profiles {
		next[p.Name()] = p
	}

	r.mu.Lock()
	r.profiles = next
	r.mu.Unlock()
	return nil
}

func checkNames(existing map[string]Profile, profiles []Profile) error {
	seen := make(map[string]bool, len(profiles))
	for _, p := range profiles {
		name := p.Name()
		if name == "" {
			return fmt.Errorf("register style: empty name")
		}
		if _, ok := existing[name]; ok || seen[name] {
			return fmt.Errorf("register style %s: already registered", name)
		}
		seen[name] = true
	}
	return nil
}

// Lookup returns the profile registered under name. The empty name selects
// a profile that keeps the template formatting.
func (r *Registry) Lookup(name string) (Profile, error) {
	if name == "" {
		return bareProfile{}, nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.profiles[name]
	if !ok {
		return nil, &NotFoundError{Name: name}
	}
	return p, nil
}

// Names returns the registered profile names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.profiles))
	for name := range r.profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
