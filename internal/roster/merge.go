// Package roster implements the player-share merge: applying one player's
// partial edit to the team's player list, addressed by a share token's slot.
package roster

import (
	"fmt"

	"github.com/rosterup/platform/internal/domain"
)

// Slot identifies the target entry of a merge. PlayerID takes precedence
// over Index when both are present.
type Slot struct {
	PlayerID string
	Index    *int
}

// SlotFromToken builds a Slot from a share token.
func SlotFromToken(t *domain.PlayerShareToken) Slot {
	var s Slot
	if t.PlayerID != nil {
		s.PlayerID = *t.PlayerID
	}
	if t.PlayerIndex != nil {
		idx := *t.PlayerIndex
		s.Index = &idx
	}
	return s
}

// Resolve returns the position the slot currently addresses in players, or
// -1 when the slot would append a new entry. It mirrors the resolution order
// of Merge and exists so read endpoints can report the target without
// mutating anything.
func Resolve(players []domain.PlayerRecord, slot Slot) int {
	if slot.PlayerID != "" {
		for i, p := range players {
			if p.ID() == slot.PlayerID {
				return i
			}
		}
		if slot.Index != nil && *slot.Index >= 0 {
			return *slot.Index
		}
		return -1
	}
	if slot.Index != nil && *slot.Index >= 0 {
		return *slot.Index
	}
	return -1
}

// Merge applies payload to the slot's entry of players and returns the
// updated list. The input slice is never mutated. Order is preserved; only
// the target entry changes, plus any placeholder entries appended to reach
// an index beyond the current length.
//
// Resolution, first match wins:
//  1. slot.PlayerID matches an entry's id: merge there, identity forced back
//     to the token's player id so a payload can never rewrite it.
//  2. slot.PlayerID set but unmatched, slot.Index within range: merge at
//     that index, identity forced to the token's player id.
//  3. slot.PlayerID set, index absent or out of range: pad with placeholders
//     up to the index if one was given, else append; entry is payload plus
//     the token's player id.
//  4. Index only: negative fails InvalidSlot; otherwise pad with
//     placeholders up to the index and merge there. No identity is forced
//     since the token carries none.
//  5. Neither: CannotResolveSlot.
func Merge(players []domain.PlayerRecord, slot Slot, payload map[string]any) ([]domain.PlayerRecord, error) {
	switch {
	case slot.PlayerID != "":
		return mergeByID(players, slot, payload)
	case slot.Index != nil:
		if *slot.Index < 0 {
			return nil, domain.ErrInvalidSlot(fmt.Sprintf("player index %d is negative", *slot.Index))
		}
		out := padTo(players, *slot.Index)
		out[*slot.Index] = overlay(out[*slot.Index], payload)
		return out, nil
	default:
		return nil, domain.ErrCannotResolveSlot()
	}
}

func mergeByID(players []domain.PlayerRecord, slot Slot, payload map[string]any) ([]domain.PlayerRecord, error) {
	for i, p := range players {
		if p.ID() == slot.PlayerID {
			out := clone(players)
			merged := overlay(out[i], payload)
			merged["id"] = slot.PlayerID
			out[i] = merged
			return out, nil
		}
	}

	if slot.Index != nil && *slot.Index >= 0 && *slot.Index < len(players) {
		out := clone(players)
		merged := overlay(out[*slot.Index], payload)
		merged["id"] = slot.PlayerID
		out[*slot.Index] = merged
		return out, nil
	}

	if slot.Index != nil && *slot.Index >= len(players) {
		out := padTo(players, *slot.Index)
		entry := overlay(nil, payload)
		entry["id"] = slot.PlayerID
		out[*slot.Index] = entry
		return out, nil
	}

	// No usable index: the player is new, append.
	out := clone(players)
	entry := overlay(nil, payload)
	entry["id"] = slot.PlayerID
	return append(out, entry), nil
}

// padTo clones players and extends it with placeholder entries so that index
// is addressable. Placeholder ids are synthetic and positional, so they can
// never collide with real player ids.
func padTo(players []domain.PlayerRecord, index int) []domain.PlayerRecord {
	out := clone(players)
	for len(out) <= index {
		out = append(out, domain.PlayerRecord{"id": fmt.Sprintf("placeholder-%d", len(out))})
	}
	return out
}

// overlay shallow-merges payload over base: incoming keys overwrite.
func overlay(base domain.PlayerRecord, payload map[string]any) domain.PlayerRecord {
	merged := make(domain.PlayerRecord, len(base)+len(payload))
	for k, v := range base {
		merged[k] = v
	}
	for k, v := range payload {
		merged[k] = v
	}
	return merged
}

func clone(players []domain.PlayerRecord) []domain.PlayerRecord {
	out := make([]domain.PlayerRecord, len(players))
	copy(out, players)
	return out
}
