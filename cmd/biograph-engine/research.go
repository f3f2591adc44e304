// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/biograph-engine/internal/discover"
	"github.com/pdiddy/biograph-engine/internal/enrich"
	"github.com/pdiddy/biograph-engine/internal/pipeline"
	"github.com/pdiddy/biograph-engine/internal/store"
	"github.com/pdiddy/biograph-engine/internal/synthesize"
	"github.com/pdiddy/biograph-engine/internal/verify"
	"github.com/pdiddy/biograph-engine/pkg/types"
)

var researchCmd = &cobra.Command{
	Use:   "research <name>",
	Short: "Research a historical figure into a verified timeline",
	Long: `Research runs the full pipeline for one person: discovery across the
search and knowledge providers, timeline synthesis, date verification,
and citation enrichment. The result prints as YAML, optionally writes to
a file with --out, and optionally persists to the local store with --save.

Presets trade speed for rigor: quick, balanced (default), or thorough.`,
	Args: cobra.ExactArgs(1),
	RunE: runResearch,
}

func init() {
	researchCmd.Flags().String("preset", "balanced", "research preset: quick, balanced, or thorough")
	researchCmd.Flags().String("model", "", "AI model identifier for synthesis")
	researchCmd.Flags().String("endpoint", "", "OpenAI-compatible API base URL")
	researchCmd.Flags().Int("max-results", 10, "maximum search hits per discovery query")
	researchCmd.Flags().String("out", "", "write the result as YAML to this file")
	researchCmd.Flags().Bool("save", false, "persist the result to the local store")
	researchCmd.Flags().Bool("classify", true, "annotate the person with era/domain/region/impact metadata")
	researchCmd.Flags().String("data-dir", "data", "directory for the SQLite store")

	rootCmd.AddCommand(researchCmd)
}

func runResearch(cmd *cobra.Command, args []string) error {
	name := args[0]

	cfg, err := researchPipelineConfig(cmd)
	if err != nil {
		return err
	}

	classify, _ := cmd.Flags().GetBool("classify")

	progressCh := make(chan pipeline.Progress, 16)
	p := newPipeline(cfg, progressCh, classify)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		printProgress(progressCh)
	}()

	person, runErr := p.ResearchPerson(ctx, name)
	close(progressCh)
	wg.Wait()
	if runErr != nil {
		return runErr
	}

	out, _ := cmd.Flags().GetString("out")
	if err := emitResult(person, out); err != nil {
		return err
	}

	if save, _ := cmd.Flags().GetBool("save"); save {
		dataDir, _ := cmd.Flags().GetString("data-dir")
		if err := savePerson(ctx, person, dataDir); err != nil {
			return err
		}
	}
	return nil
}

// researchPipelineConfig assembles the stage configs from flags, the
// config file, and loaded secrets. Flags win over the config file.
func researchPipelineConfig(cmd *cobra.Command) (types.PipelineConfig, error) {
	preset, _ := cmd.Flags().GetString("preset")
	model, _ := cmd.Flags().GetString("model")
	endpoint, _ := cmd.Flags().GetString("endpoint")
	maxResults, _ := cmd.Flags().GetInt("max-results")
	dataDir, _ := cmd.Flags().GetString("data-dir")

	if model == "" {
		model = viper.GetString("generation.model")
	}
	if model == "" {
		model = "gpt-4o"
	}
	if endpoint == "" {
		endpoint = viper.GetString("generation.endpoint")
	}

	searchKey := secretDefault("tavily-api-key", viper.GetString("discovery.search_api_key"))
	if searchKey == "" {
		return types.PipelineConfig{}, fmt.Errorf("no search API key: add tavily-api-key to .secrets/ or set discovery.search_api_key")
	}
	aiKey := secretDefault("openai-api-key", viper.GetString("generation.api_key"))
	if aiKey == "" {
		return types.PipelineConfig{}, fmt.Errorf("no generation API key: add openai-api-key to .secrets/ or set generation.api_key")
	}

	return types.PipelineConfig{
		Discovery: types.DiscoveryConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:   30 * time.Second,
				UserAgent: "biograph-engine/" + version,
			},
			SearchAPIKey:         searchKey,
			KnowledgeGraphAPIKey: secretDefault("kgraph-api-key", viper.GetString("discovery.knowledge_graph_api_key")),
			MaxResults:           maxResults,
			Depth:                types.DepthAdvanced,
		},
		Generation: types.AIConfig{
			Endpoint:   endpoint,
			Model:      model,
			APIKey:     aiKey,
			MaxRetries: 3,
		},
		Research: types.PresetByName(preset),
		Store: types.StoreConfig{
			DataDir:  dataDir,
			PageSize: 20,
		},
	}, nil
}

// newPipeline wires the stage collaborators for one research run. A nil
// classifier skips the metadata stage entirely.
func newPipeline(cfg types.PipelineConfig, progress chan<- pipeline.Progress, classify bool) *pipeline.Pipeline {
	httpClient := &http.Client{Timeout: cfg.Discovery.Timeout}

	searcher := &discover.TavilyClient{
		APIKey:    cfg.Discovery.SearchAPIKey,
		Client:    httpClient,
		UserAgent: cfg.Discovery.UserAgent,
	}
	wikidata := &discover.WikidataClient{
		Client:    httpClient,
		UserAgent: cfg.Discovery.UserAgent,
	}
	orchestrator := &discover.Orchestrator{
		Search: searcher,
		Supplementals: []discover.SupplementalProvider{
			wikidata,
			&discover.KGraphClient{
				APIKey:    cfg.Discovery.KnowledgeGraphAPIKey,
				Client:    httpClient,
				UserAgent: cfg.Discovery.UserAgent,
			},
		},
		Resolver: wikidata,
		Config:   cfg.Discovery,
	}

	backend := synthesize.NewOpenAIBackend(cfg.Generation)

	var classifier pipeline.Classifier
	if classify {
		classifier = &pipeline.LLMClassifier{Backend: backend}
	}

	return &pipeline.Pipeline{
		Discoverer:  orchestrator,
		Synthesizer: &synthesize.Synthesizer{Backend: backend, Config: cfg.Generation},
		Verifier:    &verify.Verifier{Search: searcher, Config: cfg.Research},
		Enricher:    &enrich.Enricher{Search: searcher, Config: cfg.Research},
		Classifier:  classifier,
		Config:      cfg.Research,
		Progress:    progress,
		Log:         os.Stderr,
	}
}

// printProgress renders stage reports until the channel closes.
func printProgress(ch <-chan pipeline.Progress) {
	for p := range ch {
		fmt.Fprintf(os.Stderr, "[%3.0f%%] %-18s %s\n", p.Overall()*100, p.Stage, p.Message)
	}
}

func emitResult(person *types.VerifiedPerson, out string) error {
	data, err := yaml.Marshal(person)
	if err != nil {
		return fmt.Errorf("encoding result: %w", err)
	}
	if out == "" {
		_, err = os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", out, err)
	}
	fmt.Fprintf(os.Stderr, "Wrote %s\n", out)
	return nil
}

func savePerson(ctx context.Context, person *types.VerifiedPerson, dataDir string) error {
	s, err := store.Open(types.StoreConfig{DataDir: dataDir})
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.Insert(ctx, &person.Person); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Saved %s (%s)\n", person.Person.Name, person.Person.ID)
	return nil
}
