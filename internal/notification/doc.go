// Package notification implements the forum response notification: when
// someone responds to a thread, email the thread's author if they still
// follow the thread.
//
// The task context comes from the publisher verbatim. ResponseNotifier
// resolves the site, checks the author's subscriptions with the discussion
// service, and hands a personalized message to the ace sender while the
// author's request is emulated on the site.
package notification
