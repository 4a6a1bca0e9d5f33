// Package emailctx builds the values every platform email template expects:
// the base template context, absolute links with campaign tracking, and the
// analytics open-tracking pixel.
//
// Each value is read from the site's configuration first and from the
// platform-wide Settings otherwise.
package emailctx
