package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/repoflat/internal/flatten"
	"github.com/fyrsmithlabs/repoflat/internal/gitapi"
	"github.com/fyrsmithlabs/repoflat/internal/logging"
	"github.com/fyrsmithlabs/repoflat/internal/render"
)

var (
	renderMode   string
	renderOutput string
	renderRef    string
	maxFileSize  int64
	concurrency  int
	excludes     []string
)

var renderCmd = &cobra.Command{
	Use:   "render <owner>/<name>[@ref]",
	Short: "Flatten one repository and write the rendering",
	Long: `Render resolves the repository's file tree at the given ref, filters and
fetches its content and writes the result to a file or stdout.

Examples:
  # Interactive HTML page for the default branch
  repoflat render golang/go -o go.html

  # Transcript of a tagged release to stdout
  repoflat render fatih/color@v1.16.0 --mode transcript

  # Tighter size limit and extra exclusions
  repoflat render octo/demo --max-file-size 65536 --exclude 'testdata/' --exclude '*.golden'`,
	Args: cobra.ExactArgs(1),
	RunE: runRender,
}

func init() {
	renderCmd.Flags().StringVarP(&renderMode, "mode", "m", "interactive", "output mode: interactive or transcript")
	renderCmd.Flags().StringVarP(&renderOutput, "output", "o", "-", "output file, - for stdout")
	renderCmd.Flags().StringVar(&renderRef, "ref", "", "branch, tag or commit (overrides @ref in the argument)")
	renderCmd.Flags().Int64Var(&maxFileSize, "max-file-size", 0, "largest file in bytes to include (0 keeps the configured value)")
	renderCmd.Flags().IntVar(&concurrency, "concurrency", 0, "parallel content fetches (0 keeps the configured value)")
	renderCmd.Flags().StringArrayVar(&excludes, "exclude", nil, "extra gitignore-style exclusion, repeatable")
}

// parseRepoArg splits "owner/name[@ref]" into a repository reference.
func parseRepoArg(arg string) (flatten.RepoRef, error) {
	repo, ref, _ := strings.Cut(arg, "@")
	owner, name, found := strings.Cut(repo, "/")
	if !found || owner == "" || name == "" || strings.Contains(name, "/") {
		return flatten.RepoRef{}, fmt.Errorf("expected <owner>/<name>[@ref], got %q", arg)
	}
	return flatten.RepoRef{Owner: owner, Name: name, Ref: ref}, nil
}

func runRender(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer logging.Sync(logger)

	ref, err := parseRepoArg(args[0])
	if err != nil {
		return err
	}
	if renderRef != "" {
		ref.Ref = renderRef
	}

	// Flag overrides on top of file and environment config.
	if maxFileSize > 0 {
		cfg.Flatten.MaxFileSize = maxFileSize
	}
	if concurrency > 0 {
		cfg.Flatten.Concurrency = concurrency
	}
	cfg.Flatten.ExcludePatterns = append(cfg.Flatten.ExcludePatterns, excludes...)

	if renderMode != "interactive" && renderMode != "transcript" {
		return fmt.Errorf("unknown mode %q, want interactive or transcript", renderMode)
	}

	ctx := cmd.Context()
	client, err := gitapi.NewClient(ctx, cfg.GitHub, cfg.Flatten, cfg.Retry, logger)
	if err != nil {
		return err
	}
	filter, err := flatten.NewFilter(cfg.Flatten)
	if err != nil {
		return err
	}
	pipeline := flatten.NewPipeline(client, client, filter, logger)

	doc, err := pipeline.Flatten(ctx, ref)
	if err != nil {
		return fmt.Errorf("rendering %s: %w", ref.String(), err)
	}

	out := os.Stdout
	if renderOutput != "-" {
		f, err := os.Create(renderOutput)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	switch renderMode {
	case "transcript":
		opts := render.TranscriptOptions{SkippedPlaceholders: cfg.Flatten.SkippedPlaceholders}
		if _, err := out.WriteString(render.Transcript(doc, opts)); err != nil {
			return err
		}
	case "interactive":
		model, err := render.Interactive(doc)
		if err != nil {
			return err
		}
		if err := render.WritePage(out, model); err != nil {
			return err
		}
	}

	logger.Info("render complete",
		zap.String("repo", ref.String()),
		zap.String("mode", renderMode),
		zap.String("output", renderOutput),
		zap.Int("included", doc.Stats.Included),
		zap.Int("skipped", doc.Stats.Total-doc.Stats.Included),
	)
	return nil
}
