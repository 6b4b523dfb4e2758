package cli

import (
	"strings"
	"sync"

	"github.com/mrlokans/fable-exporter/internal/config"
)

// commandContext loads the configuration once per invocation and shares it
// between subcommands.
type commandContext struct {
	configFlag  *string
	envFileFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag, envFileFlag *string) *commandContext {
	return &commandContext{
		configFlag:  configFlag,
		envFileFlag: envFileFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var configPath, envFile string
		if c.configFlag != nil {
			configPath = strings.TrimSpace(*c.configFlag)
		}
		if c.envFileFlag != nil {
			envFile = strings.TrimSpace(*c.envFileFlag)
		}
		c.config, c.configErr = config.NewConfig(envFile, configPath)
	})
	return c.config, c.configErr
}
