package config

// applyStageDefaults applies global defaults to stage-specific configuration
func (c *Config) applyStageDefaults(stageCfg *StageAIConfig) {
	if stageCfg.Provider == "" {
		stageCfg.Provider = c.AI.Provider
	}
	if stageCfg.Model == "" {
		stageCfg.Model = c.AI.Model
	}
	if stageCfg.Timeout == nil {
		stageCfg.Timeout = &c.AI.Timeout
	}
	if stageCfg.APIKey == "" {
		stageCfg.APIKey = c.AI.APIKey
	}
	if stageCfg.Temperature == nil {
		stageCfg.Temperature = &c.AI.Temperature
	}
	// UseSystemPrompts: apply global default only if not explicitly set
	if stageCfg.UseSystemPrompts == nil {
		stageCfg.UseSystemPrompts = &c.AI.UseSystemPrompts
	}
}

// GetParseConfig returns the AI configuration for the parse stage with fallback to global config
func (c *Config) GetParseConfig() StageAIConfig {
	config := c.AI.Parse

	c.applyStageDefaults(&config)

	if config.CustomPrompts.SystemPrompts.ParseResume == "" {
		config.CustomPrompts.SystemPrompts.ParseResume = c.AI.CustomPrompts.SystemPrompts.ParseResume
	}
	if config.CustomPrompts.UserPrompts.ParseResume == "" {
		config.CustomPrompts.UserPrompts.ParseResume = c.AI.CustomPrompts.UserPrompts.ParseResume
	}
	// Also copy file paths for potential later loading
	if config.CustomPrompts.SystemPrompts.ParseResumeFile == "" {
		config.CustomPrompts.SystemPrompts.ParseResumeFile = c.AI.CustomPrompts.SystemPrompts.ParseResumeFile
	}
	if config.CustomPrompts.UserPrompts.ParseResumeFile == "" {
		config.CustomPrompts.UserPrompts.ParseResumeFile = c.AI.CustomPrompts.UserPrompts.ParseResumeFile
	}

	return config
}

// GetDiscoverConfig returns the AI configuration for the discover stage with fallback to global config
func (c *Config) GetDiscoverConfig() StageAIConfig {
	config := c.AI.Discover

	c.applyStageDefaults(&config)

	if config.CustomPrompts.SystemPrompts.DiscoverProfile == "" {
		config.CustomPrompts.SystemPrompts.DiscoverProfile = c.AI.CustomPrompts.SystemPrompts.DiscoverProfile
	}
	if config.CustomPrompts.UserPrompts.DiscoverProfile == "" {
		config.CustomPrompts.UserPrompts.DiscoverProfile = c.AI.CustomPrompts.UserPrompts.DiscoverProfile
	}
	if config.CustomPrompts.SystemPrompts.DiscoverProfileFile == "" {
		config.CustomPrompts.SystemPrompts.DiscoverProfileFile = c.AI.CustomPrompts.SystemPrompts.DiscoverProfileFile
	}
	if config.CustomPrompts.UserPrompts.DiscoverProfileFile == "" {
		config.CustomPrompts.UserPrompts.DiscoverProfileFile = c.AI.CustomPrompts.UserPrompts.DiscoverProfileFile
	}

	return config
}

// GetFlagConfig returns the AI configuration for the flag stage with fallback to global config
func (c *Config) GetFlagConfig() StageAIConfig {
	config := c.AI.Flag

	c.applyStageDefaults(&config)

	if config.CustomPrompts.SystemPrompts.DetectFlags == "" {
		config.CustomPrompts.SystemPrompts.DetectFlags = c.AI.CustomPrompts.SystemPrompts.DetectFlags
	}
	if config.CustomPrompts.UserPrompts.DetectFlags == "" {
		config.CustomPrompts.UserPrompts.DetectFlags = c.AI.CustomPrompts.UserPrompts.DetectFlags
	}
	if config.CustomPrompts.SystemPrompts.DetectFlagsFile == "" {
		config.CustomPrompts.SystemPrompts.DetectFlagsFile = c.AI.CustomPrompts.SystemPrompts.DetectFlagsFile
	}
	if config.CustomPrompts.UserPrompts.DetectFlagsFile == "" {
		config.CustomPrompts.UserPrompts.DetectFlagsFile = c.AI.CustomPrompts.UserPrompts.DetectFlagsFile
	}

	return config
}

// GetMatchConfig returns the AI configuration for the match stage with fallback to global config
func (c *Config) GetMatchConfig() StageAIConfig {
	config := c.AI.Match

	c.applyStageDefaults(&config)

	if config.CustomPrompts.SystemPrompts.MatchRole == "" {
		config.CustomPrompts.SystemPrompts.MatchRole = c.AI.CustomPrompts.SystemPrompts.MatchRole
	}
	if config.CustomPrompts.UserPrompts.MatchRole == "" {
		config.CustomPrompts.UserPrompts.MatchRole = c.AI.CustomPrompts.UserPrompts.MatchRole
	}
	if config.CustomPrompts.SystemPrompts.MatchRoleFile == "" {
		config.CustomPrompts.SystemPrompts.MatchRoleFile = c.AI.CustomPrompts.SystemPrompts.MatchRoleFile
	}
	if config.CustomPrompts.UserPrompts.MatchRoleFile == "" {
		config.CustomPrompts.UserPrompts.MatchRoleFile = c.AI.CustomPrompts.UserPrompts.MatchRoleFile
	}

	return config
}

// GetStageConfig returns the AI configuration for a stage by name
func (c *Config) GetStageConfig(stageName string) StageAIConfig {
	switch stageName {
	case "parse":
		return c.GetParseConfig()
	case "discover":
		return c.GetDiscoverConfig()
	case "flag":
		return c.GetFlagConfig()
	case "match":
		return c.GetMatchConfig()
	default:
		cfg := StageAIConfig{}
		c.applyStageDefaults(&cfg)
		return cfg
	}
}

// GetLoadedParsePrompts returns a copy of the loaded prompts for the parse stage
func (c *Config) GetLoadedParsePrompts() StageLoadedPrompts {
	return getLoadedPromptsSnapshot().Parse
}

// GetLoadedDiscoverPrompts returns a copy of the loaded prompts for the discover stage
func (c *Config) GetLoadedDiscoverPrompts() StageLoadedPrompts {
	return getLoadedPromptsSnapshot().Discover
}

// GetLoadedFlagPrompts returns a copy of the loaded prompts for the flag stage
func (c *Config) GetLoadedFlagPrompts() StageLoadedPrompts {
	return getLoadedPromptsSnapshot().Flag
}

// GetLoadedMatchPrompts returns a copy of the loaded prompts for the match stage
func (c *Config) GetLoadedMatchPrompts() StageLoadedPrompts {
	return getLoadedPromptsSnapshot().Match
}

// GetLoadedGlobalPrompts returns a copy of the loaded global prompts
func (c *Config) GetLoadedGlobalPrompts() LoadedPrompts {
	return getLoadedPromptsSnapshot().Global
}
