package conversation

import (
	"sort"
	"sync"
	"time"
)

// Registry owns the in-memory record set and one mutex per conversation,
// so turns on the same conversation serialize while distinct conversations
// proceed fully in parallel.
type Registry struct {
	mu      sync.Mutex
	records map[string]*Record
	locks   map[string]*sync.Mutex
}

func NewRegistry() *Registry {
	return &Registry{
		records: make(map[string]*Record),
		locks:   make(map[string]*sync.Mutex),
	}
}

// With runs fn while holding the conversation's lock, creating the record
// on first use. fn receives the live record; the return value is a snapshot
// taken after fn completes, safe to persist or publish without the lock.
func (g *Registry) With(id string, fn func(*Record)) *Record {
	lock := g.lockFor(id)
	lock.Lock()
	defer lock.Unlock()

	g.mu.Lock()
	rec, ok := g.records[id]
	if !ok {
		rec = NewRecord(id, time.Now().UTC())
		g.records[id] = rec
	}
	g.mu.Unlock()

	fn(rec)
	return rec.Clone()
}

// Get returns a snapshot of the record, or false when the id is unknown.
// Unlike With it never creates the record.
func (g *Registry) Get(id string) (*Record, bool) {
	g.mu.Lock()
	rec, ok := g.records[id]
	lock := g.locks[id]
	g.mu.Unlock()
	if !ok {
		return nil, false
	}

	lock.Lock()
	defer lock.Unlock()
	return rec.Clone(), true
}

// Seed installs a persisted record, used when reloading state at boot.
// An id already present in memory is left untouched.
func (g *Registry) Seed(rec *Record) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.records[rec.ID]; ok {
		return
	}
	g.records[rec.ID] = rec
	if _, ok := g.locks[rec.ID]; !ok {
		g.locks[rec.ID] = &sync.Mutex{}
	}
}

// Snapshots returns a point-in-time copy of every record, oldest first.
func (g *Registry) Snapshots() []*Record {
	g.mu.Lock()
	ids := make([]string, 0, len(g.records))
	for id := range g.records {
		ids = append(ids, id)
	}
	g.mu.Unlock()

	out := make([]*Record, 0, len(ids))
	for _, id := range ids {
		if rec, ok := g.Get(id); ok {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].StartTime.Equal(out[j].StartTime) {
			return out[i].ID < out[j].ID
		}
		return out[i].StartTime.Before(out[j].StartTime)
	})
	return out
}

// Len reports how many conversations the registry holds.
func (g *Registry) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.records)
}

func (g *Registry) lockFor(id string) *sync.Mutex {
	g.mu.Lock()
	defer g.mu.Unlock()
	l, ok := g.locks[id]
	if !ok {
		l = &sync.Mutex{}
		g.locks[id] = l
	}
	return l
}
