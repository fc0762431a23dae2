// Package agent maps engine tasks (e.g. "assumption_suggestion") onto LLM
// providers, with per-task overrides loaded from config/models.yaml.
package agent

import (
	"dcf_engine/pkg/core/llm"
)

type Config struct {
	ActiveProvider string                `yaml:"active_provider"`
	Tasks          map[string]TaskConfig `yaml:"tasks"`
}

type TaskConfig struct {
	Provider    string `yaml:"provider"` // Optional override
	Model       string `yaml:"model"`    // Optional model override
	Description string `yaml:"description"`
}

type Manager struct {
	config    Config
	providers map[string]llm.Provider
}

func NewManager(config Config) *Manager {
	return &Manager{
		config: config,
		providers: map[string]llm.Provider{
			"gemini":   &llm.GeminiProvider{},
			"deepseek": &llm.DeepSeekProvider{},
		},
	}
}

// GetProvider returns the provider for a task, honoring the per-task
// override, then the global active provider, then Gemini.
func (m *Manager) GetProvider(task string) llm.Provider {
	if taskConfig, ok := m.config.Tasks[task]; ok && taskConfig.Provider != "" {
		if p, ok := m.providers[taskConfig.Provider]; ok {
			return p
		}
	}
	if p, ok := m.providers[m.config.ActiveProvider]; ok {
		return p
	}
	return m.providers["gemini"]
}
