// Package requestctx emulates the request a user would make to a site, so
// rendering code can resolve the current site, user and theme the same way
// whether it runs inside a web request or a background task.
package requestctx

import (
	"context"

	"github.com/phrazzld/forum-notifier/internal/domain"
)

// ThemeConfigKey is the site configuration entry naming the site's theme.
const ThemeConfigKey = "theme"

type contextKey int

const (
	siteKey contextKey = iota
	userKey
	themeKey
)

// Emulate returns a context carrying site, user and the site's theme.
// Nothing is attached for a nil site or user.
func Emulate(ctx context.Context, site *domain.Site, user *domain.User) context.Context {
	if site != nil {
		ctx = context.WithValue(ctx, siteKey, site)
		if theme, ok := site.ConfigString(ThemeConfigKey); ok {
			ctx = context.WithValue(ctx, themeKey, theme)
		}
	}
	if user != nil {
		ctx = context.WithValue(ctx, userKey, user)
	}
	return ctx
}

// Site returns the current site, if any.
func Site(ctx context.Context) (*domain.Site, bool) {
	site, ok := ctx.Value(siteKey).(*domain.Site)
	return site, ok
}

// User returns the current user, if any.
func User(ctx context.Context) (*domain.User, bool) {
	user, ok := ctx.Value(userKey).(*domain.User)
	return user, ok
}

// Theme returns the current site theme, or "" for the default theme.
func Theme(ctx context.Context) string {
	theme, _ := ctx.Value(themeKey).(string)
	return theme
}
