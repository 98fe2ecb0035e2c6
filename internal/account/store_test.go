package account

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToggleFollow(t *testing.T) {
	s := NewStore()

	assert.True(t, s.ToggleFollow("pub1", "alice"))
	assert.True(t, s.IsFollowing("pub1"))

	assert.False(t, s.ToggleFollow("pub1", "alice"))
	assert.False(t, s.IsFollowing("pub1"))
}

func TestToggleWatch_Limit(t *testing.T) {
	s := NewStore()

	for i := 0; i < MaxWatchedThreads; i++ {
		watching, err := s.ToggleWatch(string(rune('a'+i)), 3)
		require.NoError(t, err)
		require.True(t, watching)
	}

	_, err := s.ToggleWatch("one-too-many", 0)
	require.ErrorIs(t, err, ErrWatchLimit)

	// unwatching frees a slot
	watching, err := s.ToggleWatch("a", 0)
	require.NoError(t, err)
	require.False(t, watching)

	_, err = s.ToggleWatch("one-too-many", 0)
	require.NoError(t, err)
}

func TestWatchCounts_UnreadFlow(t *testing.T) {
	s := NewStore()

	_, err := s.ToggleWatch("t1", 4)
	require.NoError(t, err)
	assert.Equal(t, 0, s.WatchUnread("t1"))

	s.UpdateWatchCount("t1", 7)
	assert.Equal(t, 3, s.WatchUnread("t1"))

	s.MarkWatchedRead()
	assert.Equal(t, 0, s.WatchUnread("t1"))

	// unknown ids are ignored
	s.UpdateWatchCount("nope", 100)
	assert.Equal(t, 0, s.WatchUnread("nope"))
}

func TestToggleBlockPost_DateStamp(t *testing.T) {
	s := NewStore()

	orig := nowFunc
	nowFunc = func() time.Time { return time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC) }
	defer func() { nowFunc = orig }()

	require.True(t, s.ToggleBlockPost("/tag/x/1/y"))

	entries, err := s.Entries(FieldBlockedPosts)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"/tag/x/1/y": "202401"}, entries)

	require.False(t, s.ToggleBlockPost("/tag/x/1/y"))
	assert.False(t, s.IsPostBlocked("/tag/x/1/y"))
}

func TestToggleDelegatedMember(t *testing.T) {
	s := NewStore()

	require.True(t, s.ToggleDelegatedMember("alice:pub1", "faq"))
	require.True(t, s.ToggleDelegatedMember("bob:pub2", "faq"))
	require.True(t, s.ToggleDelegatedMember("carol:pub3", "meta"))

	members := s.DelegatedMembersForTag("faq")
	assert.ElementsMatch(t, []string{"alice:pub1:faq", "bob:pub2:faq"}, members)

	// toggling the same member again revokes
	require.False(t, s.ToggleDelegatedMember("alice:pub1", "faq"))
	assert.ElementsMatch(t, []string{"bob:pub2:faq"}, s.DelegatedMembersForTag("faq"))
}

func TestReplace_AtomicAndTyped(t *testing.T) {
	s := NewStore()
	s.ToggleFollow("old", "old")

	require.NoError(t, s.Replace(FieldFollowing, map[string]string{"new": "n"}))
	assert.False(t, s.IsFollowing("old"))
	assert.True(t, s.IsFollowing("new"))

	err := s.Replace(FieldWatching, map[string]string{"bad": "type"})
	require.Error(t, err)

	require.NoError(t, s.Replace(FieldWatching, map[string]WatchCounts{"t": {Total: 2, Seen: 1}}))
	assert.Equal(t, 1, s.WatchUnread("t"))
}

func TestReplace_UnknownField(t *testing.T) {
	s := NewStore()
	err := s.Replace(Field("bogus"), map[string]string{})
	require.ErrorIs(t, err, ErrUnknownField)

	require.ErrorIs(t, s.Clear(Field("bogus")), ErrUnknownField)

	_, err = s.Len(Field("bogus"))
	require.ErrorIs(t, err, ErrUnknownField)

	_, err = s.Entries(Field("bogus"))
	require.ErrorIs(t, err, ErrUnknownField)
}

func TestClear_KeepsOtherFields(t *testing.T) {
	s := NewStore()
	s.ToggleFollow("p", "alice")
	s.ToggleBlockUser("bob", "p2")

	require.NoError(t, s.Clear(FieldFollowing))

	n, err := s.Len(FieldFollowing)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.True(t, s.IsUserBlocked("p2"))
}

func TestOnChange_FiredByMutatorsOnly(t *testing.T) {
	s := NewStore()
	var fired int
	s.SetOnChange(func() { fired++ })

	s.ToggleFollow("p", "alice")
	s.SetUnsignedPostsIsSpam(false)
	require.Equal(t, 2, fired)

	// reconciliation primitives stay silent
	require.NoError(t, s.Replace(FieldFollowing, map[string]string{}))
	require.NoError(t, s.Clear(FieldBlockedUsers))
	require.Equal(t, 2, fired)
}

func TestSnapshot_Detached(t *testing.T) {
	s := NewStore()
	s.ToggleFollow("p", "alice")

	snap := s.Snapshot()
	require.Equal(t, map[string]string{"p": "alice"}, snap.Following)
	require.Equal(t, CurrentVersions(), snap.Versions)

	// mutating the snapshot must not leak into the store
	snap.Following["q"] = "bob"
	assert.False(t, s.IsFollowing("q"))
}

func TestSnapshot_EncodeDecodeRoundTrip(t *testing.T) {
	s := NewStore()
	s.ToggleFollow("p", "alice")
	_, err := s.ToggleWatch("t1", 4)
	require.NoError(t, err)
	s.SetLastCheckedNotifications(1700000000)

	data, err := EncodeSnapshot(s.Snapshot())
	require.NoError(t, err)

	got, err := DecodeSnapshot(data)
	require.NoError(t, err)

	assert.Equal(t, map[string]string{"p": "alice"}, got.Following)
	assert.Equal(t, WatchCounts{Total: 4, Seen: 4}, got.Watching["t1"])
	require.NotNil(t, got.LastCheckedNotifications)
	assert.EqualValues(t, 1700000000, *got.LastCheckedNotifications)
	assert.Equal(t, CurrentVersions(), got.Versions)
}

func TestDecodeSnapshot_LegacyWithoutVersions(t *testing.T) {
	legacy := []byte(`{"following":{"p":"alice"},"watching":{"t":[3,1]}}`)

	got, err := DecodeSnapshot(legacy)
	require.NoError(t, err)
	assert.Nil(t, got.Versions)
	assert.Equal(t, WatchCounts{Total: 3, Seen: 1}, got.Watching["t"])
	assert.Nil(t, got.UnsignedPostsIsSpam)
}
