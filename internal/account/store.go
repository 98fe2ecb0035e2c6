package account

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

// BlockedContentSetting controls how blocked content is displayed.
type BlockedContentSetting string

const (
	BlockedHidden    BlockedContentSetting = "hidden"
	BlockedCollapsed BlockedContentSetting = "collapsed"
)

// MaxWatchedThreads caps how many threads one user can watch at once.
const MaxWatchedThreads = 5

// ErrWatchLimit is returned when the user tries to watch more than
// MaxWatchedThreads threads.
var ErrWatchLimit = errors.New("watched thread limit reached")

// nowFunc is a test seam for time.Now.
var nowFunc = time.Now

// Store is the session-scoped owner of every field map and scalar setting.
// All mutation goes through its methods; external code never writes a map
// directly. Methods are synchronous, so a change is visible to any
// subsequent read the moment the call returns.
//
// Named mutators (the Toggle*/Set* family) report the change through the
// onChange hook, which the session uses to schedule a push to the remote
// store. Replace and Clear are reconciliation primitives and deliberately
// do not fire the hook: adopting remote state must not echo a push.
type Store struct {
	mu sync.Mutex

	following    map[string]string
	watching     map[string]WatchCounts
	blockedUsers map[string]string
	blockedPosts map[string]string
	delegated    map[string]string
	pinnedPosts  map[string]string

	lastCheckedNotifications int64
	blockedContentSetting    BlockedContentSetting
	unsignedPostsIsSpam      bool

	onChange func()
}

func NewStore() *Store {
	return &Store{
		following:             map[string]string{},
		watching:              map[string]WatchCounts{},
		blockedUsers:          map[string]string{},
		blockedPosts:          map[string]string{},
		delegated:             map[string]string{},
		pinnedPosts:           map[string]string{},
		blockedContentSetting: BlockedHidden,
		unsignedPostsIsSpam:   true,
	}
}

// SetOnChange registers the hook fired synchronously after each named
// mutation. Passing nil disables it.
func (s *Store) SetOnChange(fn func()) {
	s.mu.Lock()
	s.onChange = fn
	s.mu.Unlock()
}

// notify must be called without the lock held.
func (s *Store) notify() {
	s.mu.Lock()
	fn := s.onChange
	s.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// ---- named mutators ----

// ToggleFollow follows the user when not yet followed and unfollows
// otherwise. Returns true when the user is followed after the call.
func (s *Store) ToggleFollow(pubKey, displayName string) bool {
	s.mu.Lock()
	_, has := s.following[pubKey]
	if has {
		delete(s.following, pubKey)
	} else {
		s.following[pubKey] = displayName
	}
	s.mu.Unlock()
	s.notify()
	return !has
}

func (s *Store) IsFollowing(pubKey string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.following[pubKey]
	return ok
}

// ToggleWatch starts watching thread id (seeding both counts with the
// current reply count) or stops watching it. Watching a sixth thread fails
// with ErrWatchLimit.
func (s *Store) ToggleWatch(id string, replyCount int) (bool, error) {
	s.mu.Lock()
	if _, has := s.watching[id]; has {
		delete(s.watching, id)
		s.mu.Unlock()
		s.notify()
		return false, nil
	}
	if len(s.watching) >= MaxWatchedThreads {
		s.mu.Unlock()
		return false, ErrWatchLimit
	}
	s.watching[id] = WatchCounts{Total: replyCount, Seen: replyCount}
	s.mu.Unlock()
	s.notify()
	return true, nil
}

func (s *Store) IsWatching(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.watching[id]
	return ok
}

// UpdateWatchCount refreshes the total reply count of a watched thread,
// preserving the last-seen count. Unknown ids are ignored.
func (s *Store) UpdateWatchCount(id string, total int) {
	s.mu.Lock()
	c, ok := s.watching[id]
	if ok {
		c.Total = total
		s.watching[id] = c
	}
	s.mu.Unlock()
	if ok {
		s.notify()
	}
}

// MarkWatchedRead clears the unread counters of every watched thread.
func (s *Store) MarkWatchedRead() {
	s.mu.Lock()
	for id, c := range s.watching {
		c.Seen = c.Total
		s.watching[id] = c
	}
	s.mu.Unlock()
	s.notify()
}

// WatchUnread returns the unread reply count for a watched thread, zero for
// unknown ids.
func (s *Store) WatchUnread(id string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.watching[id].Unread()
}

// ToggleBlockUser blocks or unblocks a user. Returns true when the user is
// blocked after the call.
func (s *Store) ToggleBlockUser(displayName, pubKey string) bool {
	s.mu.Lock()
	_, has := s.blockedUsers[pubKey]
	if has {
		delete(s.blockedUsers, pubKey)
	} else {
		s.blockedUsers[pubKey] = displayName
	}
	s.mu.Unlock()
	s.notify()
	return !has
}

func (s *Store) IsUserBlocked(pubKey string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.blockedUsers[pubKey]
	return ok
}

// ToggleBlockPost blocks or unblocks a post path. The stored value is a
// yyyymm stamp of when the block was made, which lets old blocks be aged
// out later.
func (s *Store) ToggleBlockPost(path string) bool {
	s.mu.Lock()
	_, has := s.blockedPosts[path]
	if has {
		delete(s.blockedPosts, path)
	} else {
		now := nowFunc()
		s.blockedPosts[path] = fmt.Sprintf("%d%02d", now.Year(), int(now.Month()))
	}
	s.mu.Unlock()
	s.notify()
	return !has
}

func (s *Store) IsPostBlocked(path string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.blockedPosts[path]
	return ok
}

// ToggleDelegatedMember grants or revokes moderation for an
// "accountName:pubKey" pair on the given tag. The toggling key is
// "accountName:pubKey:tag".
func (s *Store) ToggleDelegatedMember(accountNameWithPubKey, tag string) bool {
	merged := accountNameWithPubKey + ":" + tag
	s.mu.Lock()
	existing, has := s.delegated[merged]
	if has && existing == tag {
		delete(s.delegated, merged)
	} else {
		s.delegated[merged] = tag
	}
	s.mu.Unlock()
	s.notify()
	return !(has && existing == tag)
}

// DelegatedMembersForTag lists the "accountName:pubKey:tag" keys delegated
// for one tag.
func (s *Store) DelegatedMembersForTag(tag string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []string
	for key, t := range s.delegated {
		if t == tag {
			out = append(out, key)
		}
	}
	return out
}

// TogglePinPost pins or unpins a post path under a tag.
func (s *Store) TogglePinPost(path, tag string) bool {
	s.mu.Lock()
	_, has := s.pinnedPosts[path]
	if has {
		delete(s.pinnedPosts, path)
	} else {
		s.pinnedPosts[path] = tag
	}
	s.mu.Unlock()
	s.notify()
	return !has
}

// ---- scalar settings ----

func (s *Store) LastCheckedNotifications() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastCheckedNotifications
}

func (s *Store) SetLastCheckedNotifications(ts int64) {
	s.mu.Lock()
	s.lastCheckedNotifications = ts
	s.mu.Unlock()
	s.notify()
}

func (s *Store) BlockedContentSetting() BlockedContentSetting {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.blockedContentSetting
}

func (s *Store) SetBlockedContentSetting(v BlockedContentSetting) {
	s.mu.Lock()
	s.blockedContentSetting = v
	s.mu.Unlock()
	s.notify()
}

func (s *Store) UnsignedPostsIsSpam() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.unsignedPostsIsSpam
}

func (s *Store) SetUnsignedPostsIsSpam(v bool) {
	s.mu.Lock()
	s.unsignedPostsIsSpam = v
	s.mu.Unlock()
	s.notify()
}

// ---- reconciliation primitives ----

// AdoptScalars overwrites the scalar settings from a remote snapshot. Nil
// arguments are skipped (absent in the snapshot). Like Replace and Clear,
// this does not fire the change hook.
func (s *Store) AdoptScalars(lastChecked *int64, setting *BlockedContentSetting, unsignedIsSpam *bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if lastChecked != nil {
		s.lastCheckedNotifications = *lastChecked
	}
	if setting != nil {
		s.blockedContentSetting = *setting
	}
	if unsignedIsSpam != nil {
		s.unsignedPostsIsSpam = *unsignedIsSpam
	}
}

// Replace atomically discards the prior contents of field and installs
// entries. The accepted entry type is map[string]string, or
// map[string]WatchCounts for the watching field. Replace never partially
// applies and does not fire the change hook.
func (s *Store) Replace(field Field, entries any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch field {
	case FieldWatching:
		m, ok := entries.(map[string]WatchCounts)
		if !ok {
			return fmt.Errorf("replace %s: want map[string]WatchCounts, got %T", field, entries)
		}
		replaced := make(map[string]WatchCounts, len(m))
		for k, v := range m {
			replaced[k] = v
		}
		s.watching = replaced
		return nil
	case FieldFollowing, FieldBlockedUsers, FieldBlockedPosts, FieldDelegated, FieldPinnedPosts:
		m, ok := entries.(map[string]string)
		if !ok {
			return fmt.Errorf("replace %s: want map[string]string, got %T", field, entries)
		}
		replaced := make(map[string]string, len(m))
		for k, v := range m {
			replaced[k] = v
		}
		switch field {
		case FieldFollowing:
			s.following = replaced
		case FieldBlockedUsers:
			s.blockedUsers = replaced
		case FieldBlockedPosts:
			s.blockedPosts = replaced
		case FieldDelegated:
			s.delegated = replaced
		case FieldPinnedPosts:
			s.pinnedPosts = replaced
		}
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrUnknownField, field)
	}
}

// Clear empties a field without touching its version stamp or firing the
// change hook.
func (s *Store) Clear(field Field) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch field {
	case FieldFollowing:
		s.following = map[string]string{}
	case FieldWatching:
		s.watching = map[string]WatchCounts{}
	case FieldBlockedUsers:
		s.blockedUsers = map[string]string{}
	case FieldBlockedPosts:
		s.blockedPosts = map[string]string{}
	case FieldDelegated:
		s.delegated = map[string]string{}
	case FieldPinnedPosts:
		s.pinnedPosts = map[string]string{}
	default:
		return fmt.Errorf("%w: %s", ErrUnknownField, field)
	}
	return nil
}

// Len returns the number of entries in a field.
func (s *Store) Len(field Field) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch field {
	case FieldFollowing:
		return len(s.following), nil
	case FieldWatching:
		return len(s.watching), nil
	case FieldBlockedUsers:
		return len(s.blockedUsers), nil
	case FieldBlockedPosts:
		return len(s.blockedPosts), nil
	case FieldDelegated:
		return len(s.delegated), nil
	case FieldPinnedPosts:
		return len(s.pinnedPosts), nil
	default:
		return 0, fmt.Errorf("%w: %s", ErrUnknownField, field)
	}
}

// Entries returns a copy of a field's contents, typed as in Replace.
func (s *Store) Entries(field Field) (any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch field {
	case FieldWatching:
		out := make(map[string]WatchCounts, len(s.watching))
		for k, v := range s.watching {
			out[k] = v
		}
		return out, nil
	case FieldFollowing:
		return copyStringMap(s.following), nil
	case FieldBlockedUsers:
		return copyStringMap(s.blockedUsers), nil
	case FieldBlockedPosts:
		return copyStringMap(s.blockedPosts), nil
	case FieldDelegated:
		return copyStringMap(s.delegated), nil
	case FieldPinnedPosts:
		return copyStringMap(s.pinnedPosts), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownField, field)
	}
}

func copyStringMap(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
