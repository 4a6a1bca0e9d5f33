// Package discussion is a client for the discussion (comments) service.
//
// Only the subscription endpoints are implemented: the notification task needs
// to know whether a thread author still follows a thread before emailing them.
package discussion
