package emailctx

import (
	"github.com/phrazzld/forum-notifier/internal/config"
	"github.com/phrazzld/forum-notifier/internal/domain"
)

// Setting names, as used for site configuration overrides.
const (
	SettingPlatformName          = "PLATFORM_NAME"
	SettingContactEmail          = "CONTACT_EMAIL"
	SettingContactMailingAddress = "CONTACT_MAILING_ADDRESS"
	SettingSocialMediaURLs       = "SOCIAL_MEDIA_FOOTER_URLS"
	SettingMobileStoreURLs       = "MOBILE_STORE_URLS"
	SettingLogoURL               = "LOGO_URL"
	SettingAnalyticsAccount      = "GOOGLE_ANALYTICS_ACCOUNT"
	SettingAnalyticsTrackingID   = "GOOGLE_ANALYTICS_TRACKING_ID"
)

// DashboardPath is the learner dashboard, relative to the site root.
const DashboardPath = "/dashboard"

// Settings are the platform-wide defaults.
type Settings struct {
	PlatformName          string
	ContactEmail          string
	ContactMailingAddress string
	SocialMediaURLs       map[string]string
	MobileStoreURLs       map[string]string
	LogoURL               string
	HomepageURL           string
	Revision              string
	// Scheme is used for every absolute URL, "https" unless configured otherwise.
	Scheme                string
	AnalyticsAccount      string
	AnalyticsTrackingID   string
	UserIDCustomDimension int
}

// SettingsFromConfig maps platform configuration onto Settings.
func SettingsFromConfig(cfg config.PlatformConfig) Settings {
	scheme := "https"
	if !cfg.UseHTTPS {
		scheme = "http"
	}
	return Settings{
		PlatformName:          cfg.Name,
		ContactEmail:          cfg.ContactEmail,
		ContactMailingAddress: cfg.ContactMailingAddress,
		SocialMediaURLs:       cfg.SocialMediaURLs,
		MobileStoreURLs:       cfg.MobileStoreURLs,
		LogoURL:               cfg.LogoURL,
		HomepageURL:           cfg.HomepageURL,
		Revision:              cfg.Revision,
		Scheme:                scheme,
		AnalyticsAccount:      cfg.TrackingID,
		AnalyticsTrackingID:   cfg.AnalyticsTrackingID,
		UserIDCustomDimension: cfg.UserIDCustomDimension,
	}
}

func (s Settings) value(name string) any {
	switch name {
	case SettingPlatformName:
		return s.PlatformName
	case SettingContactEmail:
		return s.ContactEmail
	case SettingContactMailingAddress:
		return s.ContactMailingAddress
	case SettingSocialMediaURLs:
		return s.SocialMediaURLs
	case SettingMobileStoreURLs:
		return s.MobileStoreURLs
	case SettingLogoURL:
		return s.LogoURL
	case SettingAnalyticsAccount:
		return s.AnalyticsAccount
	case SettingAnalyticsTrackingID:
		return s.AnalyticsTrackingID
	}
	return nil
}

// ConfigValue returns the site's configuration entry siteName, falling back
// to the platform setting name. An empty siteName looks up name on the site too.
func (s Settings) ConfigValue(site *domain.Site, name, siteName string) any {
	if siteName == "" {
		siteName = name
	}
	if v, ok := site.ConfigValue(siteName); ok {
		return v
	}
	return s.value(name)
}

// ConfigString is ConfigValue for string settings; non-string values read as "".
func (s Settings) ConfigString(site *domain.Site, name, siteName string) string {
	str, _ := s.ConfigValue(site, name, siteName).(string)
	return str
}

func (s Settings) scheme() string {
	if s.Scheme == "" {
		return "https"
	}
	return s.Scheme
}
