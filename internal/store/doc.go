// Package store defines the read interfaces the notifier uses to resolve
// users, sites and course overviews, together with the error values every
// store implementation returns.
package store
