// Package cache provides the in-memory credential cache shared by wxnotify
// senders.
//
// A [Cache] maps a key to a string value with an absolute expiry instant.
// Entries are visible to [Cache.Get] only while the current time is strictly
// before their expiry; expired entries are evicted lazily on read, or in bulk
// with [Cache.Purge].
//
// Nothing is persisted: the cache lives as long as the process. Most programs
// use the process-wide instance returned by [Shared], which is what
// wxwork.NewClient injects when no cache is supplied, so that every client
// configured with the same credentials reuses one access token.
//
// # Version
//
// Current version: 1.0.0
// Minimum compatible version: 1.0.0
package cache
