package ecs

import (
	"cmp"
	"slices"
	"strings"
)

// StorageStats is a snapshot of storage occupancy.
type StorageStats struct {
	ArchetypeCount     int
	TotalEntityCount   int
	SingletonCount     int
	ArchetypeBreakdown []ArchetypeStats
	SingletonTypes     []string
}

// ArchetypeStats describes one archetype.
type ArchetypeStats struct {
	Id          uint32
	Components  string
	EntityCount int
}

// CollectStats walks the storage and reports archetype and singleton usage.
// Archetypes that have been emptied by moves or deletes are still counted.
func (s *Storage) CollectStats() *StorageStats {
	stats := &StorageStats{
		ArchetypeCount: len(s.archetypes),
		SingletonCount: len(s.singletons),
	}

	for id, archetype := range s.archetypes {
		names := make([]string, len(archetype.types))
		for i, typ := range archetype.types {
			names[i] = typ.String()
		}

		count := archetype.Len()
		stats.TotalEntityCount += count
		stats.ArchetypeBreakdown = append(stats.ArchetypeBreakdown, ArchetypeStats{
			Id:          id,
			Components:  strings.Join(names, ", "),
			EntityCount: count,
		})
	}
	slices.SortFunc(stats.ArchetypeBreakdown, func(a, b ArchetypeStats) int {
		return cmp.Compare(a.Components, b.Components)
	})

	for typ := range s.singletons {
		stats.SingletonTypes = append(stats.SingletonTypes, typ.String())
	}
	slices.Sort(stats.SingletonTypes)

	return stats
}
