package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"redeem-server/internal/domain/redemption_code"
)

func TestLinkValidator_Classify(t *testing.T) {
	validator := NewLinkValidator()

	tests := []struct {
		name         string
		platform     redemption_code.Platform
		serviceType  redemption_code.ServiceType
		link         string
		wantAccepted bool
	}{
		{
			name:         "正常系: YouTubeチャンネルリンク（@形式）",
			platform:     redemption_code.PlatformYouTube,
			serviceType:  redemption_code.ServiceTypeSubscribers,
			link:         "https://youtube.com/@testuser",
			wantAccepted: true,
		},
		{
			name:         "正常系: YouTubeチャンネルリンク（channel形式）",
			platform:     redemption_code.PlatformYouTube,
			serviceType:  redemption_code.ServiceTypeSubscribers,
			link:         "https://www.youtube.com/channel/UCabc123",
			wantAccepted: true,
		},
		{
			name:         "正常系: スキームなしのリンクも受理される",
			platform:     redemption_code.PlatformYouTube,
			serviceType:  redemption_code.ServiceTypeSubscribers,
			link:         "youtube.com/@testuser",
			wantAccepted: true,
		},
		{
			name:         "異常系: subscribersに動画リンク",
			platform:     redemption_code.PlatformYouTube,
			serviceType:  redemption_code.ServiceTypeSubscribers,
			link:         "https://youtube.com/watch?v=xyz",
			wantAccepted: false,
		},
		{
			name:         "正常系: viewsに動画リンク",
			platform:     redemption_code.PlatformYouTube,
			serviceType:  redemption_code.ServiceTypeViews,
			link:         "https://youtube.com/watch?v=abc123",
			wantAccepted: true,
		},
		{
			name:         "正常系: viewsにshortsリンク",
			platform:     redemption_code.PlatformYouTube,
			serviceType:  redemption_code.ServiceTypeViews,
			link:         "https://youtube.com/shorts/abc123",
			wantAccepted: true,
		},
		{
			name:         "正常系: youtu.be短縮リンク",
			platform:     redemption_code.PlatformYouTube,
			serviceType:  redemption_code.ServiceTypeLikes,
			link:         "https://youtu.be/abc123",
			wantAccepted: true,
		},
		{
			name:         "異常系: viewsにチャンネルリンク",
			platform:     redemption_code.PlatformYouTube,
			serviceType:  redemption_code.ServiceTypeViews,
			link:         "https://youtube.com/@testuser",
			wantAccepted: false,
		},
		{
			name:         "正常系: Instagramプロフィールリンク",
			platform:     redemption_code.PlatformInstagram,
			serviceType:  redemption_code.ServiceTypeFollowers,
			link:         "https://instagram.com/testuser",
			wantAccepted: true,
		},
		{
			name:         "異常系: followersに投稿リンク",
			platform:     redemption_code.PlatformInstagram,
			serviceType:  redemption_code.ServiceTypeFollowers,
			link:         "https://instagram.com/p/abc123",
			wantAccepted: false,
		},
		{
			name:         "正常系: Instagram投稿リンク",
			platform:     redemption_code.PlatformInstagram,
			serviceType:  redemption_code.ServiceTypeLikes,
			link:         "https://instagram.com/p/abc123",
			wantAccepted: true,
		},
		{
			name:         "正常系: Instagramリールリンク",
			platform:     redemption_code.PlatformInstagram,
			serviceType:  redemption_code.ServiceTypeViews,
			link:         "https://www.instagram.com/reel/abc123",
			wantAccepted: true,
		},
		{
			name:         "異常系: likesにプロフィールリンク",
			platform:     redemption_code.PlatformInstagram,
			serviceType:  redemption_code.ServiceTypeLikes,
			link:         "https://instagram.com/testuser",
			wantAccepted: false,
		},
		{
			name:         "正常系: TikTokプロフィールリンク",
			platform:     redemption_code.PlatformTikTok,
			serviceType:  redemption_code.ServiceTypeFollowers,
			link:         "https://tiktok.com/@testuser",
			wantAccepted: true,
		},
		{
			name:         "正常系: TikTok動画リンク",
			platform:     redemption_code.PlatformTikTok,
			serviceType:  redemption_code.ServiceTypeViews,
			link:         "https://www.tiktok.com/@testuser/video/1234567890",
			wantAccepted: true,
		},
		{
			name:         "正常系: Twitterプロフィールリンク",
			platform:     redemption_code.PlatformTwitter,
			serviceType:  redemption_code.ServiceTypeFollowers,
			link:         "https://x.com/testuser",
			wantAccepted: true,
		},
		{
			name:         "正常系: ツイートリンク",
			platform:     redemption_code.PlatformTwitter,
			serviceType:  redemption_code.ServiceTypeLikes,
			link:         "https://twitter.com/testuser/status/1234567890",
			wantAccepted: true,
		},
		{
			name:         "異常系: followersにツイートリンク",
			platform:     redemption_code.PlatformTwitter,
			serviceType:  redemption_code.ServiceTypeFollowers,
			link:         "https://twitter.com/testuser/status/1234567890",
			wantAccepted: false,
		},
		{
			name:         "正常系: Telegramリンク",
			platform:     redemption_code.PlatformTelegram,
			serviceType:  redemption_code.ServiceTypeSubscribers,
			link:         "https://t.me/testchannel",
			wantAccepted: true,
		},
		{
			name:         "正常系: Twitchチャンネルリンク",
			platform:     redemption_code.PlatformTwitch,
			serviceType:  redemption_code.ServiceTypeFollowers,
			link:         "https://twitch.tv/teststreamer",
			wantAccepted: true,
		},
		{
			name:         "正常系: Redditプロフィールリンク",
			platform:     redemption_code.PlatformReddit,
			serviceType:  redemption_code.ServiceTypeFollowers,
			link:         "https://reddit.com/user/testuser",
			wantAccepted: true,
		},
		{
			name:         "正常系: Spotifyアーティストリンク",
			platform:     redemption_code.PlatformSpotify,
			serviceType:  redemption_code.ServiceTypeFollowers,
			link:         "https://open.spotify.com/artist/abc123",
			wantAccepted: true,
		},
		{
			name:         "異常系: 未対応の組み合わせ",
			platform:     redemption_code.PlatformYouTube,
			serviceType:  redemption_code.ServiceTypeRetweets,
			link:         "https://youtube.com/@testuser",
			wantAccepted: false,
		},
		{
			name:         "異常系: 空のリンク",
			platform:     redemption_code.PlatformYouTube,
			serviceType:  redemption_code.ServiceTypeSubscribers,
			link:         "",
			wantAccepted: false,
		},
		{
			name:         "異常系: URLでない文字列",
			platform:     redemption_code.PlatformYouTube,
			serviceType:  redemption_code.ServiceTypeSubscribers,
			link:         "not a url at all",
			wantAccepted: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := validator.Classify(tt.platform, tt.serviceType, tt.link)
			assert.Equal(t, tt.wantAccepted, result.Accepted)
			assert.NotEmpty(t, result.Message)
		})
	}
}

// 同一入力に対して常に同一の結果を返すこと
func TestLinkValidator_Classify_Deterministic(t *testing.T) {
	validator := NewLinkValidator()

	first := validator.Classify(redemption_code.PlatformYouTube, redemption_code.ServiceTypeSubscribers, "https://youtube.com/@testuser")
	for i := 0; i < 100; i++ {
		result := validator.Classify(redemption_code.PlatformYouTube, redemption_code.ServiceTypeSubscribers, "https://youtube.com/@testuser")
		assert.Equal(t, first, result)
	}
}

// 形状不一致と未対応の組み合わせでは異なる理由が返ること
func TestLinkValidator_Classify_DistinctReasons(t *testing.T) {
	validator := NewLinkValidator()

	wrongShape := validator.Classify(redemption_code.PlatformYouTube, redemption_code.ServiceTypeSubscribers, "https://youtube.com/watch?v=xyz")
	unsupported := validator.Classify(redemption_code.PlatformYouTube, redemption_code.ServiceTypeRetweets, "https://youtube.com/watch?v=xyz")

	assert.False(t, wrongShape.Accepted)
	assert.False(t, unsupported.Accepted)
	assert.NotEqual(t, wrongShape.Message, unsupported.Message)
	assert.Contains(t, unsupported.Message, "unsupported combination")
}
