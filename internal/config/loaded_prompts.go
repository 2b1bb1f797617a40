package config

import (
	"sync"
)

var (
	loadedPrompts   AllLoadedPrompts
	loadedPromptsMu sync.RWMutex
)

// LoadedPrompts holds the content of prompts loaded from files
type LoadedPrompts struct {
	SystemPrompts LoadedSystemPrompts
	UserPrompts   LoadedUserPrompts
}

// LoadedSystemPrompts contains loaded system-level instructions
type LoadedSystemPrompts struct {
	ParseResume     string
	DiscoverProfile string
	DetectFlags     string
	MatchRole       string
}

// LoadedUserPrompts contains loaded user-level prompt templates
type LoadedUserPrompts struct {
	ParseResume     string
	DiscoverProfile string
	DetectFlags     string
	MatchRole       string
}

// StageLoadedPrompts holds loaded prompts for a specific stage
type StageLoadedPrompts struct {
	SystemPrompts LoadedSystemPrompts
	UserPrompts   LoadedUserPrompts
}

// AllLoadedPrompts holds all loaded prompts for all stages
type AllLoadedPrompts struct {
	Global   LoadedPrompts
	Parse    StageLoadedPrompts
	Discover StageLoadedPrompts
	Flag     StageLoadedPrompts
	Match    StageLoadedPrompts
}

// getLoadedPromptsSnapshot returns a copy of the current prompt state.
// Reads race with the prompt watcher's reloads, hence the lock.
func getLoadedPromptsSnapshot() AllLoadedPrompts {
	loadedPromptsMu.RLock()
	defer loadedPromptsMu.RUnlock()
	return loadedPrompts
}

// setLoadedPrompts swaps the full prompt state under lock
func setLoadedPrompts(prompts AllLoadedPrompts) {
	loadedPromptsMu.Lock()
	defer loadedPromptsMu.Unlock()
	loadedPrompts = prompts
}

// GetPromptsForStage returns a copy of the loaded prompts for a stage
func GetPromptsForStage(stageName string) StageLoadedPrompts {
	snapshot := getLoadedPromptsSnapshot()

	switch stageName {
	case "parse":
		return snapshot.Parse
	case "discover":
		return snapshot.Discover
	case "flag":
		return snapshot.Flag
	case "match":
		return snapshot.Match
	default:
		return StageLoadedPrompts{
			SystemPrompts: snapshot.Global.SystemPrompts,
			UserPrompts:   snapshot.Global.UserPrompts,
		}
	}
}
