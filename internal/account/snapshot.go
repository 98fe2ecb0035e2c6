package account

import (
	"encoding/json"
	"fmt"
)

// Snapshot is the full serialized copy of one account's state as held by the
// remote store. It is replaced wholesale on every push; there is no partial
// or delta write. Scalar fields are pointers so that absence in an older
// snapshot can be told apart from a zero value.
type Snapshot struct {
	Versions VersionVector `json:"versions,omitempty"`

	Following    map[string]string      `json:"following"`
	Watching     map[string]WatchCounts `json:"watching"`
	BlockedUsers map[string]string      `json:"blockedUsers"`
	BlockedPosts map[string]string      `json:"blockedPosts"`
	Delegated    map[string]string      `json:"delegated"`
	PinnedPosts  map[string]string      `json:"pinnedPosts"`

	LastCheckedNotifications *int64  `json:"lastCheckedNotifications,omitempty"`
	BlockedContentSetting    *string `json:"blockedContentSetting,omitempty"`
	UnsignedPostsIsSpam      *bool   `json:"unsignedPostsIsSpam,omitempty"`
}

// FieldEntries returns the snapshot's contents for one field, typed the same
// way Store.Replace expects them. Nil maps come back as empty maps so the
// engine can replace unconditionally.
func (s *Snapshot) FieldEntries(field Field) (any, error) {
	switch field {
	case FieldWatching:
		if s.Watching == nil {
			return map[string]WatchCounts{}, nil
		}
		return s.Watching, nil
	case FieldFollowing:
		return orEmpty(s.Following), nil
	case FieldBlockedUsers:
		return orEmpty(s.BlockedUsers), nil
	case FieldBlockedPosts:
		return orEmpty(s.BlockedPosts), nil
	case FieldDelegated:
		return orEmpty(s.Delegated), nil
	case FieldPinnedPosts:
		return orEmpty(s.PinnedPosts), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownField, field)
	}
}

func orEmpty(m map[string]string) map[string]string {
	if m == nil {
		return map[string]string{}
	}
	return m
}

// Snapshot assembles the full serialized copy of the store's current state,
// stamped with this build's version vector. The result shares no memory
// with the store.
func (s *Store) Snapshot() *Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	watching := make(map[string]WatchCounts, len(s.watching))
	for k, v := range s.watching {
		watching[k] = v
	}

	ts := s.lastCheckedNotifications
	setting := string(s.blockedContentSetting)
	spam := s.unsignedPostsIsSpam

	return &Snapshot{
		Versions:                 CurrentVersions(),
		Following:                copyStringMap(s.following),
		Watching:                 watching,
		BlockedUsers:             copyStringMap(s.blockedUsers),
		BlockedPosts:             copyStringMap(s.blockedPosts),
		Delegated:                copyStringMap(s.delegated),
		PinnedPosts:              copyStringMap(s.pinnedPosts),
		LastCheckedNotifications: &ts,
		BlockedContentSetting:    &setting,
		UnsignedPostsIsSpam:      &spam,
	}
}

// EncodeSnapshot renders a snapshot as the canonical JSON document stored
// remotely. Map keys are emitted sorted, so equal snapshots encode to equal
// bytes.
func EncodeSnapshot(s *Snapshot) ([]byte, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return data, nil
}

// DecodeSnapshot parses the stored JSON document.
func DecodeSnapshot(data []byte) (*Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return &s, nil
}
