// Command retriever runs the issue pipeline once and prints the records.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ahmednasr/issue-retriever/internal/config"
	igithub "github.com/ahmednasr/issue-retriever/internal/github"
	"github.com/ahmednasr/issue-retriever/internal/links"
	"github.com/ahmednasr/issue-retriever/internal/logger"
	"github.com/ahmednasr/issue-retriever/internal/models"
	"github.com/ahmednasr/issue-retriever/internal/pipeline"
	"github.com/ahmednasr/issue-retriever/internal/service"
)

type options struct {
	configPath   string
	initConfig   bool
	repo         string
	state        string
	issue        int
	chunkSize    int
	chunkOverlap int
	asJSON       bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:          "retriever",
		Short:        "Fetch GitHub issues and turn them into summarized, chunked records",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if opts.initConfig {
				if err := config.WriteExample(opts.configPath); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s. Edit it with your GitHub token and run again.\n", opts.configPath)
				return nil
			}
			return run(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.configPath, "config", "config.yaml", "YAML configuration file")
	f.BoolVar(&opts.initConfig, "init-config", false, "write an example configuration file and exit")
	f.StringVar(&opts.repo, "repo", "", `repository as "owner/name"`)
	f.StringVar(&opts.state, "state", models.StateOpen, "issue state: open, closed or all")
	f.IntVar(&opts.issue, "issue", 0, "process a single issue number")
	f.IntVar(&opts.chunkSize, "chunk-size", models.DefaultChunkSize, "maximum chunk length in characters")
	f.IntVar(&opts.chunkOverlap, "chunk-overlap", models.DefaultChunkOverlap, "characters repeated between chunks")
	f.BoolVar(&opts.asJSON, "json", false, "print the response as JSON")

	return cmd
}

func run(cmd *cobra.Command, opts options) error {
	cfg, err := config.LoadFile(opts.configPath)
	if errors.Is(err, fs.ErrNotExist) {
		if werr := config.WriteExample(opts.configPath); werr == nil {
			return fmt.Errorf("%w; wrote an example to %s, edit it with your GitHub token and run again", err, opts.configPath)
		}
	}
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	zl, err := logger.New(cfg.Env)
	if err != nil {
		return err
	}
	defer func() { _ = zl.Sync() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	p, closeLLM, err := newPipeline(ctx, cfg, zl)
	if err != nil {
		return err
	}
	defer func() { _ = closeLLM() }()

	req := models.RetrieveRequest{
		Repo:         opts.repo,
		State:        opts.state,
		ChunkSize:    opts.chunkSize,
		ChunkOverlap: opts.chunkOverlap,
	}
	if cmd.Flags().Changed("issue") {
		n := opts.issue
		req.IssueNumber = &n
	}

	res := <-p.RetrieveAsync(ctx, req)
	if res.Err != nil {
		return res.Err
	}

	out := cmd.OutOrStdout()
	if opts.asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(res.Response)
	}
	printResponse(out, res.Response)
	return nil
}

func newPipeline(ctx context.Context, cfg config.Config, zl *zap.Logger) (*pipeline.Pipeline, func() error, error) {
	tracker, err := igithub.NewClient(cfg.GitHubToken, cfg.GitHubAPIURL, cfg.GitHubTimeout)
	if err != nil {
		return nil, nil, err
	}

	llm, closeLLM, err := service.NewLLM(ctx, service.LLMConfig{
		Provider: cfg.LLMProvider,
		Model:    cfg.LLMModel,
		BaseURL:  cfg.LLMBaseURL,
		APIKey:   cfg.OpenAIAPIKey,
		Vertex: service.VertexConfig{
			ProjectID:       cfg.ProjectID,
			Location:        cfg.Location,
			Model:           cfg.LLMModel,
			CredentialsFile: cfg.CredentialsFile,
		},
	}, zl)
	if err != nil {
		return nil, nil, err
	}

	p := pipeline.New(
		tracker,
		links.NewFetcher(links.WithWorkers(cfg.LinkFetchWorkers), links.WithLogger(zl)),
		service.NewSummarizer(llm, zl),
		pipeline.Config{
			WebBaseURL:          cfg.WebBaseURL(),
			TrackerTimeout:      cfg.GitHubTimeout,
			SummaryTimeout:      cfg.LLMTimeout,
			SkipFailedSummaries: cfg.SkipFailedSummaries,
		},
		zl,
	)
	return p, closeLLM, nil
}
