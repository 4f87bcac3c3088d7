package cache

// Version information for the cache module.
const (
	Version              = "1.0.0"
	MinCompatibleVersion = "1.0.0"
)
