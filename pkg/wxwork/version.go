package wxwork

// Version information for the wxwork module.
const (
	Version              = "1.0.0"
	MinCompatibleVersion = "1.0.0"
)
