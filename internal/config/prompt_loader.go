package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
)

// PromptSource represents where a prompt was loaded from
type PromptSource struct {
	Source   string // "file", "stage-config", "global-config", or "default"
	FilePath string // Set if Source is "file"
	Stage    string // The stage this prompt is for
	Type     string // "system" or "user"
}

// GetLoadedPrompts returns a copy of the loaded prompt content
func GetLoadedPrompts() AllLoadedPrompts {
	return getLoadedPromptsSnapshot()
}

// loadPromptsFromFiles loads custom prompts from external files if file paths are specified
func (c *Config) loadPromptsFromFiles() error {
	log.Println("[CONFIG] Starting custom prompt loading from files")

	var fresh AllLoadedPrompts

	// Load global prompts
	if err := c.loadSystemPromptsFromFiles(&c.AI.CustomPrompts.SystemPrompts, &fresh.Global.SystemPrompts); err != nil {
		return fmt.Errorf("failed to load global system prompts: %w", err)
	}
	if err := c.loadUserPromptsFromFiles(&c.AI.CustomPrompts.UserPrompts, &fresh.Global.UserPrompts); err != nil {
		return fmt.Errorf("failed to load global user prompts: %w", err)
	}

	// Load stage-specific prompts
	if err := c.loadSystemPromptsFromFiles(&c.AI.Parse.CustomPrompts.SystemPrompts, &fresh.Parse.SystemPrompts); err != nil {
		return fmt.Errorf("failed to load parse system prompts: %w", err)
	}
	if err := c.loadUserPromptsFromFiles(&c.AI.Parse.CustomPrompts.UserPrompts, &fresh.Parse.UserPrompts); err != nil {
		return fmt.Errorf("failed to load parse user prompts: %w", err)
	}

	if err := c.loadSystemPromptsFromFiles(&c.AI.Discover.CustomPrompts.SystemPrompts, &fresh.Discover.SystemPrompts); err != nil {
		return fmt.Errorf("failed to load discover system prompts: %w", err)
	}
	if err := c.loadUserPromptsFromFiles(&c.AI.Discover.CustomPrompts.UserPrompts, &fresh.Discover.UserPrompts); err != nil {
		return fmt.Errorf("failed to load discover user prompts: %w", err)
	}

	if err := c.loadSystemPromptsFromFiles(&c.AI.Flag.CustomPrompts.SystemPrompts, &fresh.Flag.SystemPrompts); err != nil {
		return fmt.Errorf("failed to load flag system prompts: %w", err)
	}
	if err := c.loadUserPromptsFromFiles(&c.AI.Flag.CustomPrompts.UserPrompts, &fresh.Flag.UserPrompts); err != nil {
		return fmt.Errorf("failed to load flag user prompts: %w", err)
	}

	if err := c.loadSystemPromptsFromFiles(&c.AI.Match.CustomPrompts.SystemPrompts, &fresh.Match.SystemPrompts); err != nil {
		return fmt.Errorf("failed to load match system prompts: %w", err)
	}
	if err := c.loadUserPromptsFromFiles(&c.AI.Match.CustomPrompts.UserPrompts, &fresh.Match.UserPrompts); err != nil {
		return fmt.Errorf("failed to load match user prompts: %w", err)
	}

	setLoadedPrompts(fresh)

	// Log summary of prompt sources after loading
	c.logPromptLoadingSummary()

	return nil
}

// ReloadPromptFiles re-reads every configured prompt file and swaps in the
// fresh content. Used by the prompt watcher when a file changes on disk.
func (c *Config) ReloadPromptFiles() error {
	return c.loadPromptsFromFiles()
}

// PromptFilePaths returns every configured prompt file path, for watching
func (c *Config) PromptFilePaths() []string {
	candidates := []string{
		c.AI.CustomPrompts.SystemPrompts.ParseResumeFile,
		c.AI.CustomPrompts.SystemPrompts.DiscoverProfileFile,
		c.AI.CustomPrompts.SystemPrompts.DetectFlagsFile,
		c.AI.CustomPrompts.SystemPrompts.MatchRoleFile,
		c.AI.CustomPrompts.UserPrompts.ParseResumeFile,
		c.AI.CustomPrompts.UserPrompts.DiscoverProfileFile,
		c.AI.CustomPrompts.UserPrompts.DetectFlagsFile,
		c.AI.CustomPrompts.UserPrompts.MatchRoleFile,
		c.AI.Parse.CustomPrompts.SystemPrompts.ParseResumeFile,
		c.AI.Parse.CustomPrompts.UserPrompts.ParseResumeFile,
		c.AI.Discover.CustomPrompts.SystemPrompts.DiscoverProfileFile,
		c.AI.Discover.CustomPrompts.UserPrompts.DiscoverProfileFile,
		c.AI.Flag.CustomPrompts.SystemPrompts.DetectFlagsFile,
		c.AI.Flag.CustomPrompts.UserPrompts.DetectFlagsFile,
		c.AI.Match.CustomPrompts.SystemPrompts.MatchRoleFile,
		c.AI.Match.CustomPrompts.UserPrompts.MatchRoleFile,
	}

	var paths []string
	for _, p := range candidates {
		if p != "" {
			paths = append(paths, p)
		}
	}
	return paths
}

// loadSystemPromptsFromFiles loads system prompts from files if file paths are specified
func (c *Config) loadSystemPromptsFromFiles(prompts *SystemPrompts, target *LoadedSystemPrompts) error {
	if prompts.ParseResumeFile != "" {
		content, err := c.loadPromptFromFile(prompts.ParseResumeFile, "system", "parseResume")
		if err != nil {
			return err
		}
		target.ParseResume = content
	}

	if prompts.DiscoverProfileFile != "" {
		content, err := c.loadPromptFromFile(prompts.DiscoverProfileFile, "system", "discoverProfile")
		if err != nil {
			return err
		}
		target.DiscoverProfile = content
	}

	if prompts.DetectFlagsFile != "" {
		content, err := c.loadPromptFromFile(prompts.DetectFlagsFile, "system", "detectFlags")
		if err != nil {
			return err
		}
		target.DetectFlags = content
	}

	if prompts.MatchRoleFile != "" {
		content, err := c.loadPromptFromFile(prompts.MatchRoleFile, "system", "matchRole")
		if err != nil {
			return err
		}
		target.MatchRole = content
	}

	return nil
}

// loadUserPromptsFromFiles loads user prompts from files if file paths are specified
func (c *Config) loadUserPromptsFromFiles(prompts *UserPrompts, target *LoadedUserPrompts) error {
	if prompts.ParseResumeFile != "" {
		content, err := c.loadPromptFromFile(prompts.ParseResumeFile, "user", "parseResume")
		if err != nil {
			return err
		}
		target.ParseResume = content
	}

	if prompts.DiscoverProfileFile != "" {
		content, err := c.loadPromptFromFile(prompts.DiscoverProfileFile, "user", "discoverProfile")
		if err != nil {
			return err
		}
		target.DiscoverProfile = content
	}

	if prompts.DetectFlagsFile != "" {
		content, err := c.loadPromptFromFile(prompts.DetectFlagsFile, "user", "detectFlags")
		if err != nil {
			return err
		}
		target.DetectFlags = content
	}

	if prompts.MatchRoleFile != "" {
		content, err := c.loadPromptFromFile(prompts.MatchRoleFile, "user", "matchRole")
		if err != nil {
			return err
		}
		target.MatchRole = content
	}

	return nil
}

// loadPromptFromFile loads a prompt from a file with proper error handling and logging
func (c *Config) loadPromptFromFile(filePath, promptType, stage string) (string, error) {
	// Resolve relative paths
	absPath, err := filepath.Abs(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to resolve absolute path for %s %s prompt file '%s': %w", promptType, stage, filePath, err)
	}

	// Check if file exists
	if _, err := os.Stat(absPath); os.IsNotExist(err) {
		return "", fmt.Errorf("%s %s prompt file not found: %s", promptType, stage, absPath)
	}

	// Read file content
	content, err := os.ReadFile(absPath)
	if err != nil {
		return "", fmt.Errorf("failed to read %s %s prompt file '%s': %w", promptType, stage, absPath, err)
	}

	// Validate content is not empty
	trimmedContent := strings.TrimSpace(string(content))
	if trimmedContent == "" {
		return "", fmt.Errorf("%s %s prompt file '%s' is empty", promptType, stage, absPath)
	}

	log.Printf("[CONFIG] Successfully loaded %s %s prompt from file: %s (%d characters)",
		promptType, stage, absPath, len(trimmedContent))

	return trimmedContent, nil
}

// validatePromptFiles validates that prompt files exist and are readable before loading
func (c *Config) validatePromptFiles() error {
	var validationErrors []string

	// Helper function to validate a file path
	validateFile := func(filePath, promptType, stage string) {
		if filePath == "" {
			return // No file specified, skip validation
		}

		absPath, err := filepath.Abs(filePath)
		if err != nil {
			validationErrors = append(validationErrors, fmt.Sprintf("invalid path for %s %s prompt: %s", promptType, stage, filePath))
			return
		}

		if _, err := os.Stat(absPath); os.IsNotExist(err) {
			validationErrors = append(validationErrors, fmt.Sprintf("%s %s prompt file not found: %s", promptType, stage, absPath))
		}
	}

	// Validate global prompt files
	validateFile(c.AI.CustomPrompts.SystemPrompts.ParseResumeFile, "system", "parseResume")
	validateFile(c.AI.CustomPrompts.SystemPrompts.DiscoverProfileFile, "system", "discoverProfile")
	validateFile(c.AI.CustomPrompts.SystemPrompts.DetectFlagsFile, "system", "detectFlags")
	validateFile(c.AI.CustomPrompts.SystemPrompts.MatchRoleFile, "system", "matchRole")
	validateFile(c.AI.CustomPrompts.UserPrompts.ParseResumeFile, "user", "parseResume")
	validateFile(c.AI.CustomPrompts.UserPrompts.DiscoverProfileFile, "user", "discoverProfile")
	validateFile(c.AI.CustomPrompts.UserPrompts.DetectFlagsFile, "user", "detectFlags")
	validateFile(c.AI.CustomPrompts.UserPrompts.MatchRoleFile, "user", "matchRole")

	// Validate stage-specific prompt files
	validateFile(c.AI.Parse.CustomPrompts.SystemPrompts.ParseResumeFile, "parse system", "parseResume")
	validateFile(c.AI.Parse.CustomPrompts.UserPrompts.ParseResumeFile, "parse user", "parseResume")
	validateFile(c.AI.Discover.CustomPrompts.SystemPrompts.DiscoverProfileFile, "discover system", "discoverProfile")
	validateFile(c.AI.Discover.CustomPrompts.UserPrompts.DiscoverProfileFile, "discover user", "discoverProfile")
	validateFile(c.AI.Flag.CustomPrompts.SystemPrompts.DetectFlagsFile, "flag system", "detectFlags")
	validateFile(c.AI.Flag.CustomPrompts.UserPrompts.DetectFlagsFile, "flag user", "detectFlags")
	validateFile(c.AI.Match.CustomPrompts.SystemPrompts.MatchRoleFile, "match system", "matchRole")
	validateFile(c.AI.Match.CustomPrompts.UserPrompts.MatchRoleFile, "match user", "matchRole")

	if len(validationErrors) > 0 {
		return fmt.Errorf("prompt file validation failed:\n%s", strings.Join(validationErrors, "\n"))
	}

	return nil
}

// logPromptLoadingSummary logs a summary of loaded prompts
func (c *Config) logPromptLoadingSummary() {
	log.Println("[CONFIG] === Custom Prompt Loading Summary ===")

	snapshot := getLoadedPromptsSnapshot()
	promptCount := 0

	promptChecks := []struct {
		content string
		message string
	}{
		{snapshot.Global.SystemPrompts.ParseResume, "[CONFIG] Global system parse prompt: loaded from config/file"},
		{snapshot.Global.SystemPrompts.DiscoverProfile, "[CONFIG] Global system discover prompt: loaded from config/file"},
		{snapshot.Global.SystemPrompts.DetectFlags, "[CONFIG] Global system flag prompt: loaded from config/file"},
		{snapshot.Global.SystemPrompts.MatchRole, "[CONFIG] Global system match prompt: loaded from config/file"},
		{snapshot.Global.UserPrompts.ParseResume, "[CONFIG] Global user parse prompt: loaded from config/file"},
		{snapshot.Global.UserPrompts.DiscoverProfile, "[CONFIG] Global user discover prompt: loaded from config/file"},
		{snapshot.Global.UserPrompts.DetectFlags, "[CONFIG] Global user flag prompt: loaded from config/file"},
		{snapshot.Global.UserPrompts.MatchRole, "[CONFIG] Global user match prompt: loaded from config/file"},
		{snapshot.Parse.SystemPrompts.ParseResume, "[CONFIG] Parse-specific system prompt: loaded from config/file"},
		{snapshot.Parse.UserPrompts.ParseResume, "[CONFIG] Parse-specific user prompt: loaded from config/file"},
		{snapshot.Discover.SystemPrompts.DiscoverProfile, "[CONFIG] Discover-specific system prompt: loaded from config/file"},
		{snapshot.Discover.UserPrompts.DiscoverProfile, "[CONFIG] Discover-specific user prompt: loaded from config/file"},
		{snapshot.Flag.SystemPrompts.DetectFlags, "[CONFIG] Flag-specific system prompt: loaded from config/file"},
		{snapshot.Flag.UserPrompts.DetectFlags, "[CONFIG] Flag-specific user prompt: loaded from config/file"},
		{snapshot.Match.SystemPrompts.MatchRole, "[CONFIG] Match-specific system prompt: loaded from config/file"},
		{snapshot.Match.UserPrompts.MatchRole, "[CONFIG] Match-specific user prompt: loaded from config/file"},
	}

	for _, check := range promptChecks {
		if check.content != "" {
			log.Println(check.message)
			promptCount++
		}
	}

	if promptCount == 0 {
		log.Println("[CONFIG] No custom prompts loaded - using built-in defaults")
	} else {
		log.Printf("[CONFIG] Total custom prompts loaded: %d", promptCount)
	}

	log.Println("[CONFIG] ==========================================")
}
