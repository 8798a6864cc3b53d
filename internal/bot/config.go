package bot

// BotConfig represents the configuration for the bot
type BotConfig struct {
	// Lesson used when a chat has not picked one yet
	DefaultLesson string
	// Poll timeout in seconds for long polling
	UpdateTimeout int
}

// DefaultConfig returns the default bot configuration
func DefaultConfig() *BotConfig {
	return &BotConfig{
		DefaultLesson: "general",
		UpdateTimeout: 30,
	}
}
