package emailctx

import (
	"github.com/phrazzld/forum-notifier/internal/domain"
)

// Base template context keys.
const (
	KeyPlatformName          = "platform_name"
	KeyContactEmail          = "contact_email"
	KeyContactMailingAddress = "contact_mailing_address"
	KeySocialMediaURLs       = "social_media_urls"
	KeyMobileStoreURLs       = "mobile_store_urls"
	KeyLogoURL               = "logo_url"
	KeyHomepageURL           = "homepage_url"
	KeyDashboardURL          = "dashboard_url"
	KeyTemplateRevision      = "template_revision"
)

// BaseTemplateContext returns the entries needed by every template that uses
// the base email layout.
func (s Settings) BaseTemplateContext(site *domain.Site) map[string]any {
	homepage := s.HomepageURL
	if homepage == "" {
		homepage = s.AbsoluteURL(site, "/", nil)
	}

	return map[string]any{
		KeyPlatformName:          s.ConfigString(site, SettingPlatformName, KeyPlatformName),
		KeyContactEmail:          s.ConfigString(site, SettingContactEmail, KeyContactEmail),
		KeyContactMailingAddress: s.ConfigString(site, SettingContactMailingAddress, KeyContactMailingAddress),
		KeySocialMediaURLs:       s.ConfigValue(site, SettingSocialMediaURLs, ""),
		KeyMobileStoreURLs:       s.ConfigValue(site, SettingMobileStoreURLs, ""),
		KeyLogoURL:               s.ConfigString(site, SettingLogoURL, KeyLogoURL),
		KeyHomepageURL:           homepage,
		KeyDashboardURL:          s.AbsoluteURL(site, DashboardPath, nil),
		KeyTemplateRevision:      s.Revision,
	}
}
