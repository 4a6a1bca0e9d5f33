// Package domain defines the entities the notifier reads while handling a
// forum comment event: learners, sites, course keys and course overviews.
// None of them are owned here; they are read-only views of records kept by
// the learning platform.
package domain
