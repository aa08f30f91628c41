// Package notifications pushes job outcomes to ntfy.
//
// The ntfy implementation posts to the topic configured under
// [notifications] and degrades to a no-op when no topic is set. Each event can
// be switched off individually. Job code depends only on the Service
// interface.
package notifications
