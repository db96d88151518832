package social

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/jonathan/content-agent/internal/provider"
	"github.com/jonathan/content-agent/internal/types"
)

// The provider's schema is not contractually stable across query types: the
// same endpoint may answer with a timeline-instruction tree, a module-item
// tree, or a flat global-objects map. The normalizer therefore tries a fixed
// sequence of extraction shapes and skips any single candidate that matches
// none, instead of asserting one schema for the whole payload.

type payload struct {
	Result *struct {
		Timeline struct {
			Instructions []instruction `json:"instructions"`
		} `json:"timeline"`
	} `json:"result"`
	GlobalObjects *globalObjects `json:"globalObjects"`
}

type instruction struct {
	Type    string       `json:"type"`
	Entries []candidate  `json:"entries"`
	Items   []moduleItem `json:"items"`
}

type moduleItem struct {
	Item *candidate `json:"item"`
}

// candidate is one potential post wrapper collected from the instruction
// walk. Module items carry itemContent directly; add-entries entries wrap it
// under content.
type candidate struct {
	ItemContent *itemContent  `json:"itemContent"`
	Content     *entryContent `json:"content"`
}

type entryContent struct {
	ItemContent  *itemContent  `json:"itemContent"`
	TweetResults *tweetResults `json:"tweet_results"`
	Tweet        *struct {
		TweetResults *tweetResults `json:"tweet_results"`
	} `json:"tweet"`
}

type itemContent struct {
	TweetResults *tweetResults `json:"tweet_results"`
}

type tweetResults struct {
	Result *tweetResult `json:"result"`
}

type tweetResult struct {
	TypeName string       `json:"__typename"`
	Legacy   *tweetLegacy `json:"legacy"`
	Core     *struct {
		UserResults *userResults `json:"user_results"`
	} `json:"core"`
	User *userResults `json:"user"`
}

type userResults struct {
	Result *struct {
		TypeName string      `json:"__typename"`
		Legacy   *userLegacy `json:"legacy"`
	} `json:"result"`
}

type tweetLegacy struct {
	IDStr         string `json:"id_str"`
	FullText      string `json:"full_text"`
	CreatedAt     string `json:"created_at"`
	FavoriteCount int    `json:"favorite_count"`
	QuoteCount    int    `json:"quote_count"`
	ReplyCount    int    `json:"reply_count"`
	RetweetCount  int    `json:"retweet_count"`
}

type userLegacy struct {
	ScreenName     string `json:"screen_name"`
	FollowersCount int    `json:"followers_count"`
}

type globalObjects struct {
	Tweets map[string]globalTweet `json:"tweets"`
	Users  map[string]userLegacy  `json:"users"`
}

type globalTweet struct {
	UserIDStr     string `json:"user_id_str"`
	FullText      string `json:"full_text"`
	Text          string `json:"text"`
	CreatedAt     string `json:"created_at"`
	FavoriteCount int    `json:"favorite_count"`
	QuoteCount    int    `json:"quote_count"`
	ReplyCount    int    `json:"reply_count"`
	RetweetCount  int    `json:"retweet_count"`
}

// tweetPath is one nested-path extraction attempt for a candidate.
type tweetPath func(c *candidate) *tweetResult

// tweetPaths are tried per candidate in fixed priority order; the first path
// yielding a typed Tweet result wins.
var tweetPaths = []tweetPath{
	func(c *candidate) *tweetResult { // module item: itemContent.tweet_results
		if c.ItemContent != nil && c.ItemContent.TweetResults != nil {
			return c.ItemContent.TweetResults.Result
		}
		return nil
	},
	func(c *candidate) *tweetResult { // entry: content.itemContent.tweet_results
		if c.Content != nil && c.Content.ItemContent != nil && c.Content.ItemContent.TweetResults != nil {
			return c.Content.ItemContent.TweetResults.Result
		}
		return nil
	},
	func(c *candidate) *tweetResult { // entry: content.tweet_results
		if c.Content != nil && c.Content.TweetResults != nil {
			return c.Content.TweetResults.Result
		}
		return nil
	},
	func(c *candidate) *tweetResult { // entry: content.tweet.tweet_results
		if c.Content != nil && c.Content.Tweet != nil && c.Content.Tweet.TweetResults != nil {
			return c.Content.Tweet.TweetResults.Result
		}
		return nil
	},
}

// Normalize converts a raw provider payload into flat social records. The
// instruction tree is preferred; the flat global-objects map is the fallback.
// Candidates lacking a resolvable post id or author handle are dropped, never
// emitted with empty fields. A payload that is not JSON is a
// malformed-response failure; a JSON payload yielding nothing is an empty
// slice and no error.
func Normalize(raw []byte) ([]types.SocialRecord, error) {
	var p payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, provider.NewMalformed(providerName, "response is not valid JSON", err)
	}

	candidates := collectCandidates(&p)
	if len(candidates) > 0 {
		return fromTimeline(candidates), nil
	}
	return fromGlobalObjects(p.GlobalObjects), nil
}

// collectCandidates flattens the instruction list: add-entries instructions
// contribute their entries, module instructions contribute their items.
func collectCandidates(p *payload) []candidate {
	if p.Result == nil {
		return nil
	}

	var candidates []candidate
	for _, instr := range p.Result.Timeline.Instructions {
		switch instr.Type {
		case "TimelineAddEntries":
			candidates = append(candidates, instr.Entries...)
		case "TimelineModule":
			for _, mi := range instr.Items {
				if mi.Item != nil && mi.Item.ItemContent != nil {
					candidates = append(candidates, *mi.Item)
				}
			}
		}
	}
	return candidates
}

func fromTimeline(candidates []candidate) []types.SocialRecord {
	var records []types.SocialRecord
	for i := range candidates {
		c := &candidates[i]

		var result *tweetResult
		for _, path := range tweetPaths {
			if r := path(c); r != nil {
				result = r
				break
			}
		}
		if result == nil || result.TypeName != "Tweet" || result.Legacy == nil {
			continue
		}

		user := resolveUser(result)
		if user == nil || user.ScreenName == "" || result.Legacy.IDStr == "" {
			continue
		}

		records = append(records, types.SocialRecord{
			URL:            permalink(user.ScreenName, result.Legacy.IDStr),
			Snippet:        result.Legacy.FullText,
			ScreenName:     user.ScreenName,
			FollowersCount: user.FollowersCount,
			FavoriteCount:  result.Legacy.FavoriteCount,
			QuoteCount:     result.Legacy.QuoteCount,
			ReplyCount:     result.Legacy.ReplyCount,
			RetweetCount:   result.Legacy.RetweetCount,
			PostedAt:       result.Legacy.CreatedAt,
		})
	}
	return records
}

// resolveUser finds the author record; it lives under core.user_results for
// ordinary posts and under user for some post types (community posts).
func resolveUser(result *tweetResult) *userLegacy {
	if result.Core != nil && result.Core.UserResults != nil && result.Core.UserResults.Result != nil {
		if legacy := result.Core.UserResults.Result.Legacy; legacy != nil {
			return legacy
		}
	}
	if result.User != nil && result.User.Result != nil {
		return result.User.Result.Legacy
	}
	return nil
}

// fromGlobalObjects walks the flat tweet map, resolving each post's author
// through the user-id-keyed users map. Iteration is sorted by post id for
// deterministic output.
func fromGlobalObjects(objects *globalObjects) []types.SocialRecord {
	if objects == nil || len(objects.Tweets) == 0 {
		return nil
	}

	ids := make([]string, 0, len(objects.Tweets))
	for id := range objects.Tweets {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var records []types.SocialRecord
	for _, id := range ids {
		tweet := objects.Tweets[id]
		user, ok := objects.Users[tweet.UserIDStr]
		if !ok || user.ScreenName == "" {
			continue
		}

		text := tweet.FullText
		if text == "" {
			text = tweet.Text
		}

		records = append(records, types.SocialRecord{
			URL:            permalink(user.ScreenName, id),
			Snippet:        text,
			ScreenName:     user.ScreenName,
			FollowersCount: user.FollowersCount,
			FavoriteCount:  tweet.FavoriteCount,
			QuoteCount:     tweet.QuoteCount,
			ReplyCount:     tweet.ReplyCount,
			RetweetCount:   tweet.RetweetCount,
			PostedAt:       tweet.CreatedAt,
		})
	}
	return records
}

func permalink(screenName, id string) string {
	return fmt.Sprintf("https://twitter.com/%s/status/%s", screenName, id)
}
