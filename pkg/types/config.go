// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "biograph-engine/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// SearchDepth selects the search provider's result quality tradeoff.
type SearchDepth string

const (
	DepthBasic    SearchDepth = "basic"
	DepthAdvanced SearchDepth = "advanced"
)

// DiscoveryConfig holds settings for the discovery stage.
type DiscoveryConfig struct {
	HTTPConfig `yaml:",inline"`

	// SearchAPIKey authenticates against the full-text search provider.
	SearchAPIKey string `json:"search_api_key,omitempty" yaml:"search_api_key,omitempty"`

	// KnowledgeGraphAPIKey authenticates against the Knowledge Graph API.
	// Empty disables that supplemental provider.
	KnowledgeGraphAPIKey string `json:"knowledge_graph_api_key,omitempty" yaml:"knowledge_graph_api_key,omitempty"`

	// MaxResults is the maximum number of search hits per query (default 10).
	MaxResults int `json:"max_results" yaml:"max_results"`

	// Depth is the search depth for the primary discovery query.
	Depth SearchDepth `json:"depth" yaml:"depth"`
}

// AIConfig holds shared settings for stages that call a Generative AI API.
type AIConfig struct {
	// Endpoint is the OpenAI-compatible base URL (e.g. "https://api.openai.com/v1").
	Endpoint string `json:"endpoint" yaml:"endpoint"`

	// Model is the AI model identifier (e.g. "gpt-4o").
	Model string `json:"model" yaml:"model"`

	// APIKey is the authentication key for the AI API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// MaxRetries is the number of retry attempts for failed API calls (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// ResearchConfig holds the four knobs that shape a research run. The
// presets below differ only in these values.
type ResearchConfig struct {
	// MaxSourcesPerEvent caps how many citations an event keeps after
	// ranking.
	MaxSourcesPerEvent int `json:"max_sources_per_event" yaml:"max_sources_per_event"`

	// MinConfidenceThreshold is the verification confidence required to
	// mark an event verified.
	MinConfidenceThreshold float64 `json:"min_confidence_threshold" yaml:"min_confidence_threshold"`

	// VerifyAllEvents verifies every event when true; otherwise only
	// structurally major event types (birth, death, achievement, career).
	VerifyAllEvents bool `json:"verify_all_events" yaml:"verify_all_events"`

	// EnrichLowConfidenceOnly restricts supplementary citation searches to
	// events that failed verification.
	EnrichLowConfidenceOnly bool `json:"enrich_low_confidence_only" yaml:"enrich_low_confidence_only"`
}

// QuickResearch is the fast/shallow preset.
func QuickResearch() ResearchConfig {
	return ResearchConfig{
		MaxSourcesPerEvent:      2,
		MinConfidenceThreshold:  0.5,
		VerifyAllEvents:         false,
		EnrichLowConfidenceOnly: true,
	}
}

// ThoroughResearch is the exhaustive preset.
func ThoroughResearch() ResearchConfig {
	return ResearchConfig{
		MaxSourcesPerEvent:      5,
		MinConfidenceThreshold:  0.8,
		VerifyAllEvents:         true,
		EnrichLowConfidenceOnly: false,
	}
}

// BalancedResearch is the default preset.
func BalancedResearch() ResearchConfig {
	return ResearchConfig{
		MaxSourcesPerEvent:      3,
		MinConfidenceThreshold:  0.7,
		VerifyAllEvents:         false,
		EnrichLowConfidenceOnly: false,
	}
}

// PresetByName returns the named preset, defaulting to balanced for
// unrecognized names.
func PresetByName(name string) ResearchConfig {
	switch name {
	case "quick":
		return QuickResearch()
	case "thorough":
		return ThoroughResearch()
	default:
		return BalancedResearch()
	}
}

// StoreConfig holds settings for the person store.
type StoreConfig struct {
	// DataDir is the directory holding the SQLite database (default "data").
	DataDir string `json:"data_dir" yaml:"data_dir"`

	// PageSize is the default page size for filtered queries (default 20).
	PageSize int `json:"page_size" yaml:"page_size"`
}

// PipelineConfig groups all stage configurations for the pipeline.
type PipelineConfig struct {
	Discovery  DiscoveryConfig `json:"discovery" yaml:"discovery"`
	Generation AIConfig        `json:"generation" yaml:"generation"`
	Research   ResearchConfig  `json:"research" yaml:"research"`
	Store      StoreConfig     `json:"store" yaml:"store"`
}
