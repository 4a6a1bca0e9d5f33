package emailctx

import (
	"net/url"
	"strconv"

	"github.com/phrazzld/forum-notifier/internal/domain"
)

// CampaignTrackingInfo describes the utm_* parameters appended to links in an email.
type CampaignTrackingInfo struct {
	Source   string
	Medium   string
	Campaign string
	Term     string
	Content  string
}

// NewCampaignTrackingInfo returns email campaign info for source.
func NewCampaignTrackingInfo(source string) CampaignTrackingInfo {
	return CampaignTrackingInfo{Source: source, Medium: "email"}
}

// QueryString encodes the set fields as utm_* parameters, sorted by key.
func (c CampaignTrackingInfo) QueryString() string {
	v := url.Values{}
	set := func(key, value string) {
		if value != "" {
			v.Set(key, value)
		}
	}
	set("utm_source", c.Source)
	set("utm_medium", c.Medium)
	set("utm_campaign", c.Campaign)
	set("utm_term", c.Term)
	set("utm_content", c.Content)
	return v.Encode()
}

// AbsoluteURL returns path on the site's domain, with campaign parameters
// when given. path may already be escaped; escapes in it are kept.
func (s Settings) AbsoluteURL(site *domain.Site, path string, campaign *CampaignTrackingInfo) string {
	u := url.URL{Scheme: s.scheme(), Path: path}
	if unescaped, err := url.PathUnescape(path); err == nil {
		u.Path, u.RawPath = unescaped, path
	}
	if site != nil {
		u.Host = site.Domain
	}
	if campaign != nil {
		u.RawQuery = campaign.QueryString()
	}
	return u.String()
}

// analyticsCollectURL is the measurement protocol endpoint.
const analyticsCollectURL = "https://www.google-analytics.com/collect"

// Fixed measurement protocol values for email open events.
const (
	pixelVersion       = "1"
	pixelHitType       = "event"
	pixelEventCategory = "email"
	pixelEventAction   = "edx.bi.email.opened"
	pixelMedium        = "email"
	// The real client id is unknown when an email is opened.
	pixelClientID = "555"
)

// TrackingPixel describes an open-tracking image embedded in an email.
type TrackingPixel struct {
	Settings        Settings
	Site            *domain.Site
	UserID          int64
	CourseID        string
	DocumentPath    string
	EventLabel      string
	CampaignSource  string
	CampaignName    string
	CampaignContent string
}

// trackingID prefers the analytics account over the tracking id, checking the
// site before the platform for each.
func (p TrackingPixel) trackingID() string {
	if id := p.Settings.ConfigString(p.Site, SettingAnalyticsAccount, ""); id != "" {
		return id
	}
	return p.Settings.ConfigString(p.Site, SettingAnalyticsTrackingID, "")
}

// ImageURL returns the pixel URL, or "" when no tracking id is configured.
func (p TrackingPixel) ImageURL() string {
	tid := p.trackingID()
	if tid == "" {
		return ""
	}

	v := url.Values{}
	v.Set("v", pixelVersion)
	v.Set("t", pixelHitType)
	v.Set("ec", pixelEventCategory)
	v.Set("ea", pixelEventAction)
	v.Set("cm", pixelMedium)
	v.Set("cid", pixelClientID)
	v.Set("tid", tid)

	label := p.EventLabel
	if label == "" {
		label = p.CourseID
	}
	optional := map[string]string{
		"el": label,
		"dp": p.DocumentPath,
		"cs": p.CampaignSource,
		"cn": p.CampaignName,
		"cc": p.CampaignContent,
	}
	for key, value := range optional {
		if value != "" {
			v.Set(key, value)
		}
	}

	if p.UserID > 0 {
		uid := strconv.FormatInt(p.UserID, 10)
		v.Set("uid", uid)
		if dim := p.Settings.UserIDCustomDimension; dim > 0 {
			v.Set("cd"+strconv.Itoa(dim), uid)
		}
	}

	return analyticsCollectURL + "?" + v.Encode()
}
