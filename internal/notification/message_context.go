package notification

import (
	"bytes"
	"fmt"
	"html/template"
	"net/url"

	"github.com/microcosm-cc/bluemonday"
	"github.com/phrazzld/forum-notifier/internal/domain"
	"github.com/phrazzld/forum-notifier/internal/emailctx"
	"github.com/yuin/goldmark"
)

// CampaignSource tags links and tracking events from discussion emails.
const CampaignSource = "discussions"

// TrackingDocumentPath is the virtual page recorded when the email is opened.
const TrackingDocumentPath = "/email/discussions/thread/updated"

// Message context keys added on top of the publisher context.
const (
	KeyPostLink         = "post_link"
	KeyTrackingPixelURL = "ga_tracking_pixel_url"
	KeyCommentBodyHTML  = "comment_body_html"
	KeyCourseID         = "course_id"
	KeySite             = "site"
)

var (
	markdown  = goldmark.New()
	sanitizer = bluemonday.UGCPolicy()
)

// Permalink returns the site-relative, escaped URL path of a thread. The ids
// are escaped as single segments; course key components are already path safe.
func Permalink(courseKey domain.CourseKey, commentableID, threadID string) string {
	return "/courses/" + courseKey.String() +
		"/discussion/forum/" + url.PathEscape(commentableID) +
		"/threads/" + url.PathEscape(threadID)
}

// BuildMessageContext assembles the template context for a response
// notification: the base template context, then the publisher's fields, then
// the thread link and tracking pixel.
func BuildMessageContext(
	settings emailctx.Settings,
	payload *Payload,
	courseKey domain.CourseKey,
	site *domain.Site,
	author *domain.User,
	campaign emailctx.CampaignTrackingInfo,
) (map[string]any, error) {
	msgCtx := settings.BaseTemplateContext(site)
	for key, value := range payload.Fields {
		msgCtx[key] = value
	}
	msgCtx[KeyCourseID] = courseKey.String()
	msgCtx[KeySite] = site.Domain

	permalink := Permalink(courseKey, payload.ThreadCommentableID, payload.ThreadID)
	msgCtx[KeyPostLink] = settings.AbsoluteURL(site, permalink, &campaign)

	pixel := emailctx.TrackingPixel{
		Settings:       settings,
		Site:           site,
		UserID:         author.ID,
		CourseID:       courseKey.String(),
		DocumentPath:   TrackingDocumentPath,
		EventLabel:     courseKey.String(),
		CampaignSource: campaign.Source,
	}
	msgCtx[KeyTrackingPixelURL] = pixel.ImageURL()

	if payload.CommentBody != "" {
		body, err := RenderCommentBody(payload.CommentBody)
		if err != nil {
			return nil, err
		}
		msgCtx[KeyCommentBodyHTML] = body
	}

	return msgCtx, nil
}

// RenderCommentBody converts a markdown comment into sanitized HTML that is
// safe to embed in an email.
func RenderCommentBody(body string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(body), &buf); err != nil {
		return "", fmt.Errorf("render comment body: %w", err)
	}
	return template.HTML(sanitizer.SanitizeBytes(buf.Bytes())), nil
}
