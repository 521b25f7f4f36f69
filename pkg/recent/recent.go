package recent

import (
	"log/slog"
	"strings"
	"sync"
)

// DefaultMaxSize is the number of paths kept
const DefaultMaxSize = 10

// Store persists the list
type Store interface {
	RecentFiles() []string
	SaveRecentFiles(files []string) error
}

// List tracks recently opened files, most recent first
type List struct {
	mu      sync.RWMutex
	store   Store
	files   []string
	maxSize int
	logger  *slog.Logger
}

// New loads the list from store. store may be nil for an in-memory list.
func New(store Store, maxSize int, logger *slog.Logger) *List {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	if logger == nil {
		logger = slog.Default()
	}
	l := &List{
		store:   store,
		files:   make([]string, 0),
		maxSize: maxSize,
		logger:  logger,
	}
	if store != nil {
		for _, f := range store.RecentFiles() {
			if f = strings.TrimSpace(f); f != "" && len(l.files) < maxSize {
				l.files = append(l.files, f)
			}
		}
	}
	return l
}

// Add moves path to the front of the list and persists it.
// Failures to persist are logged, not returned.
func (l *List) Add(path string) {
	path = strings.TrimSpace(path)
	if path == "" {
		return
	}

	l.mu.Lock()
	next := make([]string, 0, len(l.files)+1)
	next = append(next, path)
	for _, f := range l.files {
		if f != path {
			next = append(next, f)
		}
	}
	if len(next) > l.maxSize {
		next = next[:l.maxSize]
	}
	l.files = next
	snapshot := append([]string(nil), next...)
	l.mu.Unlock()

	l.persist(snapshot)
}

// All returns the list, most recent first
func (l *List) All() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	result := make([]string, len(l.files))
	copy(result, l.files)
	return result
}

// Clear empties the list and persists it
func (l *List) Clear() {
	l.mu.Lock()
	l.files = make([]string, 0)
	l.mu.Unlock()

	l.persist([]string{})
}

// Size returns the number of entries
func (l *List) Size() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.files)
}

func (l *List) persist(files []string) {
	if l.store == nil {
		return
	}
	if err := l.store.SaveRecentFiles(files); err != nil {
		l.logger.Warn("Failed to save recent files", "error", err)
	}
}
