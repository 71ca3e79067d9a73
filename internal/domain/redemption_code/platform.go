package redemption_code

import (
	"fmt"
	"strings"
)

// Platform 対象プラットフォームを表す値オブジェクト
type Platform string

const (
	PlatformYouTube   Platform = "youtube"
	PlatformInstagram Platform = "instagram"
	PlatformTikTok    Platform = "tiktok"
	PlatformTwitter   Platform = "twitter"
	PlatformFacebook  Platform = "facebook"
	PlatformTelegram  Platform = "telegram"
	PlatformTwitch    Platform = "twitch"
	PlatformReddit    Platform = "reddit"
	PlatformSpotify   Platform = "spotify"
)

// NewPlatform 新しいPlatformを作成（"x"はtwitterの別名として扱う）
func NewPlatform(s string) (Platform, error) {
	normalized := strings.ToLower(strings.TrimSpace(s))
	if normalized == "x" {
		normalized = "twitter"
	}

	p := Platform(normalized)
	if !p.Valid() {
		return "", fmt.Errorf("invalid platform: %s", s)
	}
	return p, nil
}

// String 文字列表現を返す
func (p Platform) String() string {
	return string(p)
}

// Valid 有効なプラットフォームかどうかを返す
func (p Platform) Valid() bool {
	switch p {
	case PlatformYouTube, PlatformInstagram, PlatformTikTok, PlatformTwitter,
		PlatformFacebook, PlatformTelegram, PlatformTwitch, PlatformReddit,
		PlatformSpotify:
		return true
	default:
		return false
	}
}
