package social

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/content-agent/internal/provider"
)

const addEntriesPayload = `{
	"result": {"timeline": {"instructions": [
		{"type": "TimelineAddEntries", "entries": [
			{"content": {"itemContent": {"tweet_results": {"result": {
				"__typename": "Tweet",
				"legacy": {
					"id_str": "111",
					"full_text": "note apps are chaos",
					"created_at": "Wed Oct 10 20:19:24 +0000 2018",
					"favorite_count": 5,
					"quote_count": 1,
					"reply_count": 2,
					"retweet_count": 3
				},
				"core": {"user_results": {"result": {
					"__typename": "User",
					"legacy": {"screen_name": "alice", "followers_count": 900}
				}}}
			}}}}},
			{"content": {"cursorType": "Bottom"}}
		]}
	]}}
}`

func TestNormalize_AddEntriesInstruction(t *testing.T) {
	records, err := Normalize([]byte(addEntriesPayload))
	require.NoError(t, err)
	require.Len(t, records, 1)

	rec := records[0]
	assert.Equal(t, "https://twitter.com/alice/status/111", rec.URL)
	assert.Equal(t, "note apps are chaos", rec.Snippet)
	assert.Equal(t, "alice", rec.ScreenName)
	assert.Equal(t, 900, rec.FollowersCount)
	assert.Equal(t, 5, rec.FavoriteCount)
	assert.Equal(t, 1, rec.QuoteCount)
	assert.Equal(t, 2, rec.ReplyCount)
	assert.Equal(t, 3, rec.RetweetCount)
	assert.Equal(t, "Wed Oct 10 20:19:24 +0000 2018", rec.PostedAt)
}

func TestNormalize_TimelineModuleItems(t *testing.T) {
	raw := `{
		"result": {"timeline": {"instructions": [
			{"type": "TimelineModule", "items": [
				{"item": {"itemContent": {"tweet_results": {"result": {
					"__typename": "Tweet",
					"legacy": {"id_str": "222", "full_text": "module tweet"},
					"core": {"user_results": {"result": {"legacy": {"screen_name": "bob"}}}}
				}}}}}
			]}
		]}}
	}`

	records, err := Normalize([]byte(raw))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "https://twitter.com/bob/status/222", records[0].URL)
}

func TestNormalize_NestedTweetPath(t *testing.T) {
	raw := `{
		"result": {"timeline": {"instructions": [
			{"type": "TimelineAddEntries", "entries": [
				{"content": {"tweet": {"tweet_results": {"result": {
					"__typename": "Tweet",
					"legacy": {"id_str": "333", "full_text": "deeply nested"},
					"user": {"result": {"legacy": {"screen_name": "carol", "followers_count": 12}}}
				}}}}}
			]}
		]}}
	}`

	records, err := Normalize([]byte(raw))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "https://twitter.com/carol/status/333", records[0].URL)
	assert.Equal(t, 12, records[0].FollowersCount)
}

func TestNormalize_GlobalObjectsFallback(t *testing.T) {
	raw := `{
		"globalObjects": {
			"tweets": {
				"444": {"user_id_str": "u1", "full_text": "global tweet", "favorite_count": 9},
				"555": {"user_id_str": "missing", "text": "orphan tweet"}
			},
			"users": {
				"u1": {"screen_name": "dave", "followers_count": 77}
			}
		}
	}`

	records, err := Normalize([]byte(raw))
	require.NoError(t, err)
	// The orphan tweet has no resolvable author and is dropped.
	require.Len(t, records, 1)
	assert.Equal(t, "https://twitter.com/dave/status/444", records[0].URL)
	assert.Equal(t, "global tweet", records[0].Snippet)
	assert.Equal(t, 77, records[0].FollowersCount)
	assert.Equal(t, 9, records[0].FavoriteCount)
}

func TestNormalize_DropsCandidatesWithoutIDOrHandle(t *testing.T) {
	raw := `{
		"result": {"timeline": {"instructions": [
			{"type": "TimelineAddEntries", "entries": [
				{"content": {"itemContent": {"tweet_results": {"result": {
					"__typename": "Tweet",
					"legacy": {"full_text": "no id"},
					"core": {"user_results": {"result": {"legacy": {"screen_name": "eve"}}}}
				}}}}},
				{"content": {"itemContent": {"tweet_results": {"result": {
					"__typename": "Tweet",
					"legacy": {"id_str": "666", "full_text": "no author"}
				}}}}}
			]}
		]}}
	}`

	records, err := Normalize([]byte(raw))
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestNormalize_NonTweetTypenameSkipped(t *testing.T) {
	raw := `{
		"result": {"timeline": {"instructions": [
			{"type": "TimelineAddEntries", "entries": [
				{"content": {"itemContent": {"tweet_results": {"result": {
					"__typename": "TweetTombstone"
				}}}}}
			]}
		]}}
	}`

	records, err := Normalize([]byte(raw))
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestNormalize_EveryRecordHasHandleAndNumericID(t *testing.T) {
	records, err := Normalize([]byte(addEntriesPayload))
	require.NoError(t, err)
	for _, rec := range records {
		assert.True(t, strings.HasPrefix(rec.URL, "https://twitter.com/"))
		parts := strings.Split(strings.TrimPrefix(rec.URL, "https://twitter.com/"), "/status/")
		require.Len(t, parts, 2)
		assert.NotEmpty(t, parts[0])
		assert.Regexp(t, `^\d+$`, parts[1])
	}
}

func TestNormalize_EmptyAndUnknownShapes(t *testing.T) {
	for _, raw := range []string{`{}`, `{"result": {}}`, `{"result": {"timeline": {"instructions": []}}}`} {
		records, err := Normalize([]byte(raw))
		require.NoError(t, err, raw)
		assert.Empty(t, records, raw)
	}
}

func TestNormalize_NonJSONIsMalformed(t *testing.T) {
	_, err := Normalize([]byte("rate limit exceeded"))
	require.Error(t, err)
	assert.Equal(t, provider.KindMalformed, provider.KindOf(err))
}
