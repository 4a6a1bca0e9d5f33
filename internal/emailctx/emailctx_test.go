package emailctx

import (
	"net/url"
	"testing"

	"github.com/phrazzld/forum-notifier/internal/config"
	"github.com/phrazzld/forum-notifier/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSettings() Settings {
	return Settings{
		PlatformName:          "Open edX",
		ContactEmail:          "support@example.com",
		ContactMailingAddress: "1 Main St",
		SocialMediaURLs:       map[string]string{"twitter": "https://twitter.com/example"},
		LogoURL:               "https://cdn.example.com/logo.png",
		Revision:              "abc123",
		Scheme:                "https",
		AnalyticsAccount:      "UA-1-1",
	}
}

func testSite() *domain.Site {
	return &domain.Site{
		ID:     1,
		Domain: "courses.example.com",
		Configuration: map[string]any{
			"platform_name": "Example Learning",
		},
	}
}

func TestSettingsFromConfig(t *testing.T) {
	s := SettingsFromConfig(config.PlatformConfig{
		Name:                  "Open edX",
		UseHTTPS:              false,
		TrackingID:            "UA-9-9",
		AnalyticsTrackingID:   "G-9",
		UserIDCustomDimension: 4,
	})

	assert.Equal(t, "http", s.Scheme)
	assert.Equal(t, "UA-9-9", s.AnalyticsAccount)
	assert.Equal(t, "G-9", s.AnalyticsTrackingID)

	// The tracking id is the platform fallback when no account is configured.
	fallback := SettingsFromConfig(config.PlatformConfig{AnalyticsTrackingID: "G-9"})
	pixel := TrackingPixel{Settings: fallback, Site: &domain.Site{Domain: "courses.example.com"}}
	assert.Contains(t, pixel.ImageURL(), "tid=G-9")
	assert.Equal(t, 4, s.UserIDCustomDimension)
}

func TestConfigValue(t *testing.T) {
	s := testSettings()
	site := testSite()

	assert.Equal(t, "Example Learning", s.ConfigString(site, SettingPlatformName, KeyPlatformName))
	assert.Equal(t, "support@example.com", s.ConfigString(site, SettingContactEmail, KeyContactEmail))
	assert.Equal(t, "Open edX", s.ConfigString(nil, SettingPlatformName, KeyPlatformName))
	assert.Nil(t, s.ConfigValue(site, "UNKNOWN_SETTING", ""))
}

func TestBaseTemplateContext(t *testing.T) {
	ctx := testSettings().BaseTemplateContext(testSite())

	assert.Equal(t, "Example Learning", ctx[KeyPlatformName])
	assert.Equal(t, "support@example.com", ctx[KeyContactEmail])
	assert.Equal(t, "1 Main St", ctx[KeyContactMailingAddress])
	assert.Equal(t, map[string]string{"twitter": "https://twitter.com/example"}, ctx[KeySocialMediaURLs])
	assert.Equal(t, "https://cdn.example.com/logo.png", ctx[KeyLogoURL])
	assert.Equal(t, "https://courses.example.com/", ctx[KeyHomepageURL])
	assert.Equal(t, "https://courses.example.com/dashboard", ctx[KeyDashboardURL])
	assert.Equal(t, "abc123", ctx[KeyTemplateRevision])
	assert.Contains(t, ctx, KeyMobileStoreURLs)
}

func TestCampaignTrackingInfo_QueryString(t *testing.T) {
	assert.Equal(t, "utm_medium=email&utm_source=discussions",
		NewCampaignTrackingInfo("discussions").QueryString())

	full := CampaignTrackingInfo{Source: "s", Medium: "m", Campaign: "c", Term: "t", Content: "x"}
	assert.Equal(t, "utm_campaign=c&utm_content=x&utm_medium=m&utm_source=s&utm_term=t", full.QueryString())

	assert.Equal(t, "", CampaignTrackingInfo{}.QueryString())
}

func TestAbsoluteURL(t *testing.T) {
	s := testSettings()
	campaign := NewCampaignTrackingInfo("discussions")

	assert.Equal(t,
		"https://courses.example.com/courses/x/discussion?utm_medium=email&utm_source=discussions",
		s.AbsoluteURL(testSite(), "/courses/x/discussion", &campaign))

	s.Scheme = "http"
	assert.Equal(t, "http://courses.example.com/dashboard", s.AbsoluteURL(testSite(), "/dashboard", nil))
}

func TestTrackingPixel_ImageURL(t *testing.T) {
	t.Run("all parameters", func(t *testing.T) {
		s := testSettings()
		s.UserIDCustomDimension = 3

		pixel := TrackingPixel{
			Settings:       s,
			Site:           testSite(),
			UserID:         42,
			CourseID:       "course-v1:edX+DemoX+Demo",
			DocumentPath:   "/email/discussions/thread/updated",
			CampaignSource: "discussions",
		}

		raw := pixel.ImageURL()
		u, err := url.Parse(raw)
		require.NoError(t, err)
		assert.Equal(t, "www.google-analytics.com", u.Host)
		assert.Equal(t, "/collect", u.Path)

		q := u.Query()
		assert.Equal(t, "1", q.Get("v"))
		assert.Equal(t, "event", q.Get("t"))
		assert.Equal(t, "email", q.Get("ec"))
		assert.Equal(t, "edx.bi.email.opened", q.Get("ea"))
		assert.Equal(t, "email", q.Get("cm"))
		assert.Equal(t, "555", q.Get("cid"))
		assert.Equal(t, "UA-1-1", q.Get("tid"))
		assert.Equal(t, "42", q.Get("uid"))
		assert.Equal(t, "42", q.Get("cd3"))
		assert.Equal(t, "/email/discussions/thread/updated", q.Get("dp"))
		assert.Equal(t, "discussions", q.Get("cs"))
		// The event label defaults to the course id.
		assert.Equal(t, "course-v1:edX+DemoX+Demo", q.Get("el"))
		assert.False(t, q.Has("cn"))
	})

	t.Run("site account wins", func(t *testing.T) {
		site := testSite()
		site.Configuration[SettingAnalyticsAccount] = "UA-SITE-1"

		u, err := url.Parse(TrackingPixel{Settings: testSettings(), Site: site}.ImageURL())
		require.NoError(t, err)
		assert.Equal(t, "UA-SITE-1", u.Query().Get("tid"))
		assert.False(t, u.Query().Has("uid"))
	})

	t.Run("tracking id fallback", func(t *testing.T) {
		s := testSettings()
		s.AnalyticsAccount = ""
		s.AnalyticsTrackingID = "G-FALLBACK"

		u, err := url.Parse(TrackingPixel{Settings: s, Site: testSite(), EventLabel: "label"}.ImageURL())
		require.NoError(t, err)
		assert.Equal(t, "G-FALLBACK", u.Query().Get("tid"))
		assert.Equal(t, "label", u.Query().Get("el"))
	})

	t.Run("no tracking id", func(t *testing.T) {
		s := testSettings()
		s.AnalyticsAccount = ""

		assert.Equal(t, "", TrackingPixel{Settings: s, Site: testSite(), UserID: 42}.ImageURL())
	})
}
