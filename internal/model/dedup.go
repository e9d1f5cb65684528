// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

// connection is the unordered pair of rooms a door joins, stored with the
// lexicographically smaller name first.
type connection struct {
	a, b string
}

func connectionOf(d DoorLayout) connection {
	if d.ToRoom < d.FromRoom {
		return connection{a: d.ToRoom, b: d.FromRoom}
	}
	return connection{a: d.FromRoom, b: d.ToRoom}
}

// DedupDoors keeps the first door for every unordered {FromRoom, ToRoom}
// pair and drops the rest. Surviving doors keep their relative order. The
// geometry of dropped doors is ignored.
//
// The input slice is not modified. The returned count is the number of doors
// removed.
func DedupDoors(doors []DoorLayout) ([]DoorLayout, int) {
	if doors == nil {
		return nil, 0
	}

	seen := make(map[connection]struct{}, len(doors))
	kept := make([]DoorLayout, 0, len(doors))

	for _, d := range doors {
		key := connectionOf(d)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		kept = append(kept, d)
	}

	return kept, len(doors) - len(kept)
}
