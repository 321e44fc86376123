package feed

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config holds the options of one Paginator.
type Config struct {
	// Pages bounds Run and Pages. It must be at least 1.
	Pages int `mapstructure:"pages" validate:"min=1"`

	IncludeReplies bool `mapstructure:"replies"`
	IncludeReposts bool `mapstructure:"reposts"`

	// Delay is the pause between two page requests of the same batch.
	// Zero disables pacing.
	Delay time.Duration `mapstructure:"delay" validate:"min=0"`

	// StartCursor resumes a walk from a previously saved cursor.
	StartCursor string `mapstructure:"cursor"`
}

// DefaultConfig fetches a single page, drops replies and reposts, and
// paces requests two seconds apart.
func DefaultConfig() Config {
	return Config{Pages: 1, Delay: 2 * time.Second}
}

var validate = validator.New()

// Validate checks the documented bounds.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid paginator config: %w", err)
	}
	return nil
}
