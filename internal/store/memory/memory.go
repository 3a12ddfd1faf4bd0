package memory

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"sync"

	"brokemate/internal/core"
	"brokemate/internal/store"
)

// Store keeps partitions in process memory. States are cloned on the way in
// and out so callers never share slices with the store.
type Store struct {
	mu         sync.Mutex
	categories []string
	states     map[string]core.State
	profiles   []core.Profile
}

var _ store.Store = (*Store)(nil)

// New creates an empty store. Fresh partitions start with categories, or the
// built-in defaults when categories is empty.
func New(categories []string) *Store {
	cats := dedupe(categories)
	if len(cats) == 0 {
		cats = slices.Clone(core.DefaultCategories)
	}
	return &Store{categories: cats, states: make(map[string]core.State)}
}

// NewFromFiles seeds the category registry from base/seed_categories.txt.
func NewFromFiles(base string) *Store {
	return New(SeedCategories(base))
}

// SeedCategories reads base/seed_categories.txt, one label per line. Blank
// lines and # comments are skipped. A missing file yields nil.
func SeedCategories(base string) []string {
	return dedupe(readLines(filepath.Join(base, "seed_categories.txt")))
}

func (s *Store) Load(_ context.Context, userID string) (core.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.states[userID]
	if !ok {
		st = core.DefaultState()
		st.Categories = slices.Clone(s.categories)
		return st, nil
	}
	return st.Clone(), nil
}

func (s *Store) Save(_ context.Context, userID string, st core.State) error {
	if userID == "" {
		return fmt.Errorf("save state: empty user id")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	st.Normalize()
	s.states[userID] = st.Clone()
	return nil
}

func (s *Store) Users(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	users := make([]string, 0, len(s.states))
	for id := range s.states {
		users = append(users, id)
	}
	sort.Strings(users)
	return users, nil
}

func (s *Store) ListProfiles(_ context.Context) ([]core.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.profiles), nil
}

func (s *Store) GetProfile(_ context.Context, id string) (core.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.profiles {
		if p.ID == id {
			return p, nil
		}
	}
	return core.Profile{}, fmt.Errorf("profile %s: %w", id, store.ErrNotFound)
}

func (s *Store) SaveProfile(_ context.Context, p core.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.profiles {
		if existing.ID == p.ID || strings.EqualFold(existing.Username, p.Username) {
			return fmt.Errorf("profile %q: %w", p.Username, store.ErrDuplicate)
		}
	}
	s.profiles = append(s.profiles, p)
	return nil
}

func (s *Store) Close() error { return nil }

func readLines(path string) []string {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()
	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	return out
}

// dedupe drops blanks and exact duplicates, preserving input order.
func dedupe(in []string) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(in))
	for _, v := range in {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
