package message

// Version information for the message module.
const (
	Version              = "1.0.0"
	MinCompatibleVersion = "1.0.0"
)
