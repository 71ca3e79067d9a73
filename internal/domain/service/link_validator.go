package service

import (
	"fmt"
	"regexp"
	"strings"

	"redeem-server/internal/domain/redemption_code"
)

// LinkValidator 配送先リンクの構造検証を行うドメインサービス
// ネットワークアクセスは行わず、同一入力に対して常に同一の結果を返す
type LinkValidator struct{}

// NewLinkValidator 新しいLinkValidatorを作成
func NewLinkValidator() *LinkValidator {
	return &LinkValidator{}
}

// LinkClassification リンク分類の結果
type LinkClassification struct {
	Accepted bool
	Message  string
}

// linkShape URL形状の識別子
type linkShape string

const (
	shapeYouTubeChannel   linkShape = "youtube_channel"
	shapeYouTubeVideo     linkShape = "youtube_video"
	shapeYouTubeShorts    linkShape = "youtube_shorts"
	shapeInstagramProfile linkShape = "instagram_profile"
	shapeInstagramPost    linkShape = "instagram_post"
	shapeTikTokProfile    linkShape = "tiktok_profile"
	shapeTikTokVideo      linkShape = "tiktok_video"
	shapeTwitterProfile   linkShape = "twitter_profile"
	shapeTwitterTweet     linkShape = "twitter_tweet"
	shapeFacebookPage     linkShape = "facebook_page"
	shapeTelegram         linkShape = "telegram"
	shapeTwitchChannel    linkShape = "twitch_channel"
	shapeRedditProfile    linkShape = "reddit_profile"
	shapeRedditPost       linkShape = "reddit_post"
	shapeSpotifyItem      linkShape = "spotify_item"
)

// shapePatterns URL形状ごとの受理パターン
var shapePatterns = map[linkShape][]*regexp.Regexp{
	shapeYouTubeChannel: {
		regexp.MustCompile(`(?i)^(?:https?://)?(?:www\.)?youtube\.com/@[\w-]+`),
		regexp.MustCompile(`(?i)^(?:https?://)?(?:www\.)?youtube\.com/channel/[\w-]+`),
		regexp.MustCompile(`(?i)^(?:https?://)?(?:www\.)?youtube\.com/c/[\w-]+`),
		regexp.MustCompile(`(?i)^(?:https?://)?(?:www\.)?youtube\.com/user/[\w-]+`),
	},
	shapeYouTubeVideo: {
		regexp.MustCompile(`(?i)^(?:https?://)?(?:www\.)?youtube\.com/watch\?v=[\w-]+`),
		regexp.MustCompile(`(?i)^(?:https?://)?youtu\.be/[\w-]+`),
	},
	shapeYouTubeShorts: {
		regexp.MustCompile(`(?i)^(?:https?://)?(?:www\.)?youtube\.com/shorts/[\w-]+`),
	},
	shapeInstagramProfile: {
		regexp.MustCompile(`(?i)^(?:https?://)?(?:www\.)?instagram\.com/[\w.]+/?$`),
	},
	shapeInstagramPost: {
		regexp.MustCompile(`(?i)^(?:https?://)?(?:www\.)?instagram\.com/p/[\w-]+`),
		regexp.MustCompile(`(?i)^(?:https?://)?(?:www\.)?instagram\.com/reel/[\w-]+`),
	},
	shapeTikTokProfile: {
		regexp.MustCompile(`(?i)^(?:https?://)?(?:www\.)?tiktok\.com/@[\w.]+`),
	},
	shapeTikTokVideo: {
		regexp.MustCompile(`(?i)^(?:https?://)?(?:www\.)?tiktok\.com/@[\w.]+/video/\d+`),
	},
	shapeTwitterProfile: {
		regexp.MustCompile(`(?i)^(?:https?://)?(?:www\.)?(?:twitter|x)\.com/\w+/?$`),
	},
	shapeTwitterTweet: {
		regexp.MustCompile(`(?i)^(?:https?://)?(?:www\.)?(?:twitter|x)\.com/\w+/status/\d+`),
	},
	shapeFacebookPage: {
		regexp.MustCompile(`(?i)^(?:https?://)?(?:www\.)?facebook\.com/pages/[\w-]+/\d+`),
		regexp.MustCompile(`(?i)^(?:https?://)?(?:www\.)?facebook\.com/[\w.]+`),
	},
	shapeTelegram: {
		regexp.MustCompile(`(?i)^(?:https?://)?t\.me/\w+`),
	},
	shapeTwitchChannel: {
		regexp.MustCompile(`(?i)^(?:https?://)?(?:www\.)?twitch\.tv/\w+`),
	},
	shapeRedditProfile: {
		regexp.MustCompile(`(?i)^(?:https?://)?(?:www\.)?reddit\.com/user/[\w-]+`),
	},
	shapeRedditPost: {
		regexp.MustCompile(`(?i)^(?:https?://)?(?:www\.)?reddit\.com/r/\w+/comments/\w+/`),
	},
	shapeSpotifyItem: {
		regexp.MustCompile(`(?i)^(?:https?://)?open\.spotify\.com/artist/\w+`),
		regexp.MustCompile(`(?i)^(?:https?://)?open\.spotify\.com/track/\w+`),
		regexp.MustCompile(`(?i)^(?:https?://)?open\.spotify\.com/playlist/\w+`),
	},
}

// linkRule 1つのプラットフォーム・サービス種別の組に対する受理規則
type linkRule struct {
	shapes  []linkShape
	accept  string
	reject  string
}

// linkRules プラットフォーム・サービス種別の組ごとの規則表
// 新しい組への対応は、呼び出し側に分岐を増やすのではなくここにエントリを追加する
var linkRules = map[redemption_code.Platform]map[redemption_code.ServiceType]linkRule{
	redemption_code.PlatformYouTube: {
		redemption_code.ServiceTypeSubscribers: {
			shapes: []linkShape{shapeYouTubeChannel},
			accept: "valid YouTube channel link",
			reject: "invalid link: YouTube subscribers require a channel link (youtube.com/@username or /channel/ID)",
		},
		redemption_code.ServiceTypeViews: {
			shapes: []linkShape{shapeYouTubeVideo, shapeYouTubeShorts},
			accept: "valid YouTube video link",
			reject: "invalid link: YouTube views require a video link (youtube.com/watch?v=... or /shorts/...)",
		},
		redemption_code.ServiceTypeLikes: {
			shapes: []linkShape{shapeYouTubeVideo, shapeYouTubeShorts},
			accept: "valid YouTube video link",
			reject: "invalid link: YouTube likes require a video link (youtube.com/watch?v=... or /shorts/...)",
		},
		redemption_code.ServiceTypeComments: {
			shapes: []linkShape{shapeYouTubeVideo, shapeYouTubeShorts},
			accept: "valid YouTube video link",
			reject: "invalid link: YouTube comments require a video link (youtube.com/watch?v=... or /shorts/...)",
		},
	},
	redemption_code.PlatformInstagram: {
		redemption_code.ServiceTypeFollowers: {
			shapes: []linkShape{shapeInstagramProfile},
			accept: "valid Instagram profile link",
			reject: "invalid link: Instagram followers require a profile link (instagram.com/username)",
		},
		redemption_code.ServiceTypeLikes: {
			shapes: []linkShape{shapeInstagramPost},
			accept: "valid Instagram post link",
			reject: "invalid link: provide an Instagram post or reel link (instagram.com/p/... or /reel/...)",
		},
		redemption_code.ServiceTypeViews: {
			shapes: []linkShape{shapeInstagramPost},
			accept: "valid Instagram post link",
			reject: "invalid link: provide an Instagram post or reel link (instagram.com/p/... or /reel/...)",
		},
		redemption_code.ServiceTypeComments: {
			shapes: []linkShape{shapeInstagramPost},
			accept: "valid Instagram post link",
			reject: "invalid link: provide an Instagram post or reel link (instagram.com/p/... or /reel/...)",
		},
	},
	redemption_code.PlatformTikTok: {
		redemption_code.ServiceTypeFollowers: {
			shapes: []linkShape{shapeTikTokProfile},
			accept: "valid TikTok profile link",
			reject: "invalid link: TikTok followers require a profile link (tiktok.com/@username)",
		},
		redemption_code.ServiceTypeLikes: {
			shapes: []linkShape{shapeTikTokVideo, shapeTikTokProfile},
			accept: "valid TikTok link",
			reject: "invalid link: provide a TikTok video link (tiktok.com/@user/video/...)",
		},
		redemption_code.ServiceTypeViews: {
			shapes: []linkShape{shapeTikTokVideo, shapeTikTokProfile},
			accept: "valid TikTok link",
			reject: "invalid link: provide a TikTok video link (tiktok.com/@user/video/...)",
		},
		redemption_code.ServiceTypeComments: {
			shapes: []linkShape{shapeTikTokVideo},
			accept: "valid TikTok video link",
			reject: "invalid link: provide a TikTok video link (tiktok.com/@user/video/...)",
		},
	},
	redemption_code.PlatformTwitter: {
		redemption_code.ServiceTypeFollowers: {
			shapes: []linkShape{shapeTwitterProfile},
			accept: "valid Twitter/X profile link",
			reject: "invalid link: Twitter followers require a profile link (twitter.com/username or x.com/username)",
		},
		redemption_code.ServiceTypeLikes: {
			shapes: []linkShape{shapeTwitterTweet},
			accept: "valid Twitter/X tweet link",
			reject: "invalid link: provide a tweet link (twitter.com/user/status/...)",
		},
		redemption_code.ServiceTypeRetweets: {
			shapes: []linkShape{shapeTwitterTweet},
			accept: "valid Twitter/X tweet link",
			reject: "invalid link: provide a tweet link (twitter.com/user/status/...)",
		},
		redemption_code.ServiceTypeViews: {
			shapes: []linkShape{shapeTwitterTweet},
			accept: "valid Twitter/X tweet link",
			reject: "invalid link: provide a tweet link (twitter.com/user/status/...)",
		},
	},
	redemption_code.PlatformFacebook: {
		redemption_code.ServiceTypeFollowers: {
			shapes: []linkShape{shapeFacebookPage},
			accept: "valid Facebook link",
			reject: "invalid link: provide a Facebook profile or page link",
		},
		redemption_code.ServiceTypeLikes: {
			shapes: []linkShape{shapeFacebookPage},
			accept: "valid Facebook link",
			reject: "invalid link: provide a Facebook profile or page link",
		},
	},
	redemption_code.PlatformTelegram: {
		redemption_code.ServiceTypeSubscribers: {
			shapes: []linkShape{shapeTelegram},
			accept: "valid Telegram link",
			reject: "invalid link: provide a Telegram link (t.me/username)",
		},
		redemption_code.ServiceTypeViews: {
			shapes: []linkShape{shapeTelegram},
			accept: "valid Telegram link",
			reject: "invalid link: provide a Telegram link (t.me/username)",
		},
	},
	redemption_code.PlatformTwitch: {
		redemption_code.ServiceTypeFollowers: {
			shapes: []linkShape{shapeTwitchChannel},
			accept: "valid Twitch channel link",
			reject: "invalid link: provide a Twitch channel link (twitch.tv/username)",
		},
		redemption_code.ServiceTypeViews: {
			shapes: []linkShape{shapeTwitchChannel},
			accept: "valid Twitch channel link",
			reject: "invalid link: provide a Twitch channel link (twitch.tv/username)",
		},
	},
	redemption_code.PlatformReddit: {
		redemption_code.ServiceTypeFollowers: {
			shapes: []linkShape{shapeRedditProfile},
			accept: "valid Reddit profile link",
			reject: "invalid link: provide a Reddit profile link (reddit.com/user/username)",
		},
		redemption_code.ServiceTypeLikes: {
			shapes: []linkShape{shapeRedditPost},
			accept: "valid Reddit post link",
			reject: "invalid link: provide a Reddit post link",
		},
		redemption_code.ServiceTypeComments: {
			shapes: []linkShape{shapeRedditPost},
			accept: "valid Reddit post link",
			reject: "invalid link: provide a Reddit post link",
		},
	},
	redemption_code.PlatformSpotify: {
		redemption_code.ServiceTypeFollowers: {
			shapes: []linkShape{shapeSpotifyItem},
			accept: "valid Spotify link",
			reject: "invalid link: provide a Spotify artist, track, or playlist link",
		},
		redemption_code.ServiceTypeViews: {
			shapes: []linkShape{shapeSpotifyItem},
			accept: "valid Spotify link",
			reject: "invalid link: provide a Spotify artist, track, or playlist link",
		},
	},
}

// Classify プラットフォーム・サービス種別の組に対してリンクの形状を判定する
// 不正な入力に対しても必ず構造化された結果を返し、panicしない
func (v *LinkValidator) Classify(platform redemption_code.Platform, serviceType redemption_code.ServiceType, link string) LinkClassification {
	link = strings.TrimSpace(link)

	platformRules, ok := linkRules[platform]
	if !ok {
		return LinkClassification{
			Accepted: false,
			Message:  fmt.Sprintf("unsupported platform: %s", platform),
		}
	}

	rule, ok := platformRules[serviceType]
	if !ok {
		return LinkClassification{
			Accepted: false,
			Message:  fmt.Sprintf("unsupported combination: %s / %s", platform, serviceType),
		}
	}

	for _, shape := range rule.shapes {
		for _, pattern := range shapePatterns[shape] {
			if pattern.MatchString(link) {
				return LinkClassification{
					Accepted: true,
					Message:  rule.accept,
				}
			}
		}
	}

	return LinkClassification{
		Accepted: false,
		Message:  rule.reject,
	}
}
