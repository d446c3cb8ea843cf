package telemetry

import "github.com/pthm-cable/ecosys/traits"

// LifetimeStats tracks per-animal statistics over its lifetime.
type LifetimeStats struct {
	BirthTick int32
	BirthTime float64
	Kind      traits.Kind
	ParentID  uint32 // zero for animals placed by a scenario

	Kills       int
	Conceptions int
	Children    int
	PeakEnergy  float64
}

// LifetimeTracker manages per-animal lifetime statistics.
type LifetimeTracker struct {
	stats map[uint32]*LifetimeStats
}

// NewLifetimeTracker creates a new lifetime tracker.
func NewLifetimeTracker() *LifetimeTracker {
	return &LifetimeTracker{
		stats: make(map[uint32]*LifetimeStats),
	}
}

// Register creates lifetime stats for a new animal.
func (lt *LifetimeTracker) Register(id uint32, tick int32, now float64, kind traits.Kind, parentID uint32) {
	lt.stats[id] = &LifetimeStats{
		BirthTick: tick,
		BirthTime: now,
		Kind:      kind,
		ParentID:  parentID,
	}
}

// Get returns the lifetime stats for an animal, or nil if not found.
func (lt *LifetimeTracker) Get(id uint32) *LifetimeStats {
	return lt.stats[id]
}

// Remove removes an animal's stats and returns them.
func (lt *LifetimeTracker) Remove(id uint32) *LifetimeStats {
	stats := lt.stats[id]
	delete(lt.stats, id)
	return stats
}

// RecordKill increments kill count.
func (lt *LifetimeTracker) RecordKill(id uint32) {
	if s := lt.stats[id]; s != nil {
		s.Kills++
	}
}

// RecordConception increments conception count.
func (lt *LifetimeTracker) RecordConception(id uint32) {
	if s := lt.stats[id]; s != nil {
		s.Conceptions++
	}
}

// RecordChild increments children count.
func (lt *LifetimeTracker) RecordChild(parentID uint32) {
	if s := lt.stats[parentID]; s != nil {
		s.Children++
	}
}

// UpdateEnergy tracks peak energy.
func (lt *LifetimeTracker) UpdateEnergy(id uint32, energy float64) {
	if s := lt.stats[id]; s != nil && energy > s.PeakEnergy {
		s.PeakEnergy = energy
	}
}

// Count returns the number of tracked animals.
func (lt *LifetimeTracker) Count() int {
	return len(lt.stats)
}

// Lineages returns the number of distinct founders among tracked animals,
// following parent links through animals that are still tracked.
func (lt *LifetimeTracker) Lineages() int {
	seen := make(map[uint32]struct{})
	for id := range lt.stats {
		seen[lt.founder(id)] = struct{}{}
	}
	return len(seen)
}

func (lt *LifetimeTracker) founder(id uint32) uint32 {
	for {
		s := lt.stats[id]
		if s == nil || s.ParentID == 0 || lt.stats[s.ParentID] == nil {
			return id
		}
		id = s.ParentID
	}
}
