package marks

import "sort"

// Normalize applies the list invariants in order: dedup by address
// (the newer recordedAt wins, later input wins a tie), sort by
// recordedAt descending, truncate to capacity by dropping the oldest.
func Normalize(list []Mark, capacity int) []Mark {
	if capacity < 1 {
		capacity = 1
	}

	byAddress := make(map[string]int, len(list))
	deduped := make([]Mark, 0, len(list))
	for _, m := range list {
		if idx, seen := byAddress[m.Address]; seen {
			if !m.RecordedAt.Before(deduped[idx].RecordedAt) {
				deduped[idx] = m
			}
			continue
		}
		byAddress[m.Address] = len(deduped)
		deduped = append(deduped, m)
	}

	sort.SliceStable(deduped, func(i, j int) bool {
		return deduped[i].RecordedAt.After(deduped[j].RecordedAt)
	})

	if len(deduped) > capacity {
		deduped = deduped[:capacity]
	}
	return deduped
}

// DedupByEntityAddress collapses a batch to one mark per
// (entityID, address) pair. The last occurrence wins, mirroring the
// store where a same-address insert replaces its predecessor.
func DedupByEntityAddress(list []Mark) []Mark {
	type key struct{ entity, address string }
	index := make(map[key]int, len(list))
	out := make([]Mark, 0, len(list))
	for _, m := range list {
		k := key{m.EntityID, m.Address}
		if i, dup := index[k]; dup {
			out[i] = m
			continue
		}
		index[k] = len(out)
		out = append(out, m)
	}
	return out
}
