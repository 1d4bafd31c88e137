package problemgen

// Config controls the behavior of the LLMGenerator.
type Config struct {
	// Questions is the number of questions requested per exam. Extra
	// questions in the response are dropped.
	Questions int

	// MaxTokens is the token budget for the LLM response.
	MaxTokens int

	// Temperature controls LLM output randomness (0.0-1.0).
	Temperature float64
}

// DefaultConfig returns the recommended defaults.
func DefaultConfig() Config {
	return Config{
		Questions:   5,
		MaxTokens:   4096,
		Temperature: 0.7,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Questions <= 0 {
		c.Questions = d.Questions
	}
	if c.MaxTokens <= 0 {
		c.MaxTokens = d.MaxTokens
	}
	if c.Temperature < 0 {
		c.Temperature = d.Temperature
	}
	return c
}
