package artifact

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"splicer/internal/metrics"
	"splicer/internal/services"
)

// Role describes why an artifact exists.
type Role string

const (
	RoleInput        Role = "input"
	RoleIntermediate Role = "intermediate"
	RoleOutput       Role = "output"
)

// Namespace is the engine capability the store is backed by.
type Namespace interface {
	WriteArtifact(ctx context.Context, name string, data []byte) error
	ReadArtifact(ctx context.Context, name string) ([]byte, error)
	DeleteArtifact(ctx context.Context, name string) error
}

// Artifact describes one entry in the store.
type Artifact struct {
	Name string `json:"name"`
	Role Role   `json:"role"`
	Size int64  `json:"size"`
}

type entry struct {
	artifact Artifact
	cached   []byte
}

// Store is safe for concurrent use.
type Store struct {
	ns Namespace

	mu      sync.Mutex
	entries map[string]*entry
}

// NewStore returns an empty store over ns.
func NewStore(ns Namespace) *Store {
	return &Store{ns: ns, entries: make(map[string]*entry)}
}

// Register writes data into the namespace under name.
func (s *Store) Register(ctx context.Context, name string, data []byte, role Role) error {
	if name == "" {
		return services.Wrap(services.ErrInvalidInput, "artifact", "register", "artifact name is required", nil)
	}
	s.mu.Lock()
	if _, exists := s.entries[name]; exists {
		s.mu.Unlock()
		return duplicate("register", name)
	}
	// Reserve the name so a concurrent Register cannot race the write.
	placeholder := &entry{artifact: Artifact{Name: name, Role: role, Size: -1}}
	s.entries[name] = placeholder
	s.mu.Unlock()

	if err := s.ns.WriteArtifact(ctx, name, data); err != nil {
		s.mu.Lock()
		if s.entries[name] == placeholder {
			delete(s.entries, name)
		}
		s.mu.Unlock()
		return fmt.Errorf("write artifact %s: %w", name, err)
	}

	s.mu.Lock()
	if s.entries[name] != placeholder {
		// Released while the write was in flight; the bytes landed after
		// the release deleted the name.
		s.mu.Unlock()
		if err := s.ns.DeleteArtifact(context.WithoutCancel(ctx), name); err != nil {
			return fmt.Errorf("delete released artifact %s: %w", name, err)
		}
		return services.Wrap(services.ErrNotFound, "artifact", "register",
			fmt.Sprintf("artifact %q was released while it was being written", name), nil)
	}
	placeholder.artifact.Size = int64(len(data))
	s.mu.Unlock()
	metrics.ArtifactBytes.WithLabelValues(string(role)).Add(float64(len(data)))
	return nil
}

// Adopt records an artifact a completed step produced inside the namespace.
func (s *Store) Adopt(name string, role Role, size int64) error {
	if name == "" {
		return services.Wrap(services.ErrInvalidInput, "artifact", "adopt", "artifact name is required", nil)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.entries[name]; exists {
		return duplicate("adopt", name)
	}
	s.entries[name] = &entry{artifact: Artifact{Name: name, Role: role, Size: size}}
	if size > 0 {
		metrics.ArtifactBytes.WithLabelValues(string(role)).Add(float64(size))
	}
	return nil
}

// Resolve returns the bytes stored under name. Output artifacts are cached
// after the first read.
func (s *Store) Resolve(ctx context.Context, name string) ([]byte, error) {
	s.mu.Lock()
	e, ok := s.entries[name]
	if !ok || e.artifact.Size < 0 {
		s.mu.Unlock()
		return nil, notFound("resolve", name)
	}
	if e.cached != nil {
		data := e.cached
		s.mu.Unlock()
		return data, nil
	}
	role := e.artifact.Role
	s.mu.Unlock()

	data, err := s.ns.ReadArtifact(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("read artifact %s: %w", name, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// The entry may have been released while reading.
	if current, ok := s.entries[name]; ok && current == e {
		e.artifact.Size = int64(len(data))
		if role == RoleOutput {
			e.cached = data
		}
	}
	return data, nil
}

// Ready reports whether name is registered and fully written.
func (s *Store) Ready(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[name]
	return ok && e.artifact.Size >= 0
}

// Has reports whether name is taken, including in-flight registrations.
func (s *Store) Has(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.entries[name]
	return ok
}

// Get returns the metadata for name.
func (s *Store) Get(name string) (Artifact, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[name]
	if !ok {
		return Artifact{}, false
	}
	return e.artifact, true
}

// List returns the ready artifacts sorted by name.
func (s *Store) List() []Artifact {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Artifact, 0, len(s.entries))
	for _, e := range s.entries {
		if e.artifact.Size < 0 {
			continue
		}
		out = append(out, e.artifact)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Release deletes name from the namespace and forgets it. Releasing an
// unknown name is not an error.
func (s *Store) Release(ctx context.Context, name string) error {
	s.mu.Lock()
	_, ok := s.entries[name]
	delete(s.entries, name)
	s.mu.Unlock()
	if !ok {
		return nil
	}
	if err := s.ns.DeleteArtifact(ctx, name); err != nil {
		return fmt.Errorf("delete artifact %s: %w", name, err)
	}
	metrics.ArtifactsReleased.Inc()
	return nil
}

// ReleaseAll releases every artifact.
func (s *Store) ReleaseAll(ctx context.Context) error {
	return s.ReleaseExcept(ctx)
}

// ReleaseExcept releases every artifact not named in keep. All deletions are
// attempted; the errors are joined.
func (s *Store) ReleaseExcept(ctx context.Context, keep ...string) error {
	kept := make(map[string]struct{}, len(keep))
	for _, name := range keep {
		kept[name] = struct{}{}
	}
	s.mu.Lock()
	var names []string
	for name := range s.entries {
		if _, ok := kept[name]; ok {
			continue
		}
		names = append(names, name)
	}
	s.mu.Unlock()
	sort.Strings(names)

	var errs []error
	for _, name := range names {
		if err := s.Release(ctx, name); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func duplicate(operation, name string) error {
	return services.Wrap(services.ErrDuplicateName, "artifact", operation, fmt.Sprintf("artifact %q already exists", name), nil)
}

func notFound(operation, name string) error {
	return services.Wrap(services.ErrNotFound, "artifact", operation, fmt.Sprintf("artifact %q not found", name), nil)
}
