// Package account holds the canonical local copy of a user's moderation and
// preference state: one named map per category, each stamped with a schema
// version so that sync can detect representation changes per field instead
// of discarding the whole account.
package account

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Field names one category of user state.
type Field string

const (
	FieldFollowing    Field = "following"    // pubKey -> display name
	FieldWatching     Field = "watching"     // thread id -> reply counts
	FieldBlockedUsers Field = "blockedUsers" // pubKey -> display name
	FieldBlockedPosts Field = "blockedPosts" // post path -> yyyymm date stamp
	FieldDelegated    Field = "delegated"    // "name:pubKey:tag" -> tag
	FieldPinnedPosts  Field = "pinnedPosts"  // post path -> tag
)

// allFields is the declaration order used wherever deterministic iteration
// matters (snapshot assembly, sync logging).
var allFields = []Field{
	FieldFollowing,
	FieldWatching,
	FieldBlockedUsers,
	FieldBlockedPosts,
	FieldDelegated,
	FieldPinnedPosts,
}

// Fields returns every declared field, in declaration order.
func Fields() []Field {
	out := make([]Field, len(allFields))
	copy(out, allFields)
	return out
}

// VersionVector maps each field to its schema version. A divergence between
// a snapshot's vector and CurrentVersions means the field's representation
// changed and its contents cannot be merged.
type VersionVector map[Field]int

// currentVersions is bumped whenever a field's representation changes.
// Bumping one entry wipes only that field on older clients; the rest of the
// accumulated state survives.
var currentVersions = VersionVector{
	FieldFollowing:    1,
	FieldWatching:     2,
	FieldBlockedUsers: 1,
	FieldBlockedPosts: 3,
	FieldDelegated:    2,
	FieldPinnedPosts:  1,
}

// CurrentVersions returns a copy of the schema versions this build writes.
func CurrentVersions() VersionVector {
	out := make(VersionVector, len(currentVersions))
	for f, v := range currentVersions {
		out[f] = v
	}
	return out
}

// ErrUnknownField marks an operation against a field that is not declared in
// the version vector. This is a programmer error and unreachable in a
// correct build.
var ErrUnknownField = errors.New("unknown field")

// WatchCounts tracks reply counts for a watched thread: the total at the
// last refresh and the total when the user last viewed the thread. The
// difference is the unread count.
type WatchCounts struct {
	Total int
	Seen  int
}

// Unread returns how many replies arrived since the thread was last viewed.
func (w WatchCounts) Unread() int {
	if w.Total < w.Seen {
		return 0
	}
	return w.Total - w.Seen
}

// MarshalJSON keeps the wire form a two-element array, [total, seen],
// matching the stored snapshot layout.
func (w WatchCounts) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]int{w.Total, w.Seen})
}

func (w *WatchCounts) UnmarshalJSON(data []byte) error {
	var pair [2]int
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("watch counts: %w", err)
	}
	w.Total, w.Seen = pair[0], pair[1]
	return nil
}
