package main

import (
	"fmt"
	"log/slog"

	"github.com/example/go-nmt-prep/internal/config"
	"github.com/example/go-nmt-prep/internal/corpus"
	"github.com/example/go-nmt-prep/internal/store"
	"github.com/example/go-nmt-prep/internal/vectorizer"
	"github.com/spf13/cobra"
)

func newBuildCmd() *cobra.Command {
	var pairsFile string
	var sourceFile string
	var targetFile string
	var out string
	var storeName string

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build a vectorizer from a parallel corpus",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}

			pairs, err := readCorpus(pairsFile, sourceFile, targetFile)
			if err != nil {
				return err
			}

			vec, err := vectorizer.FromPairs(pairs, cfg.Vectorizer.MaxWords)
			if err != nil {
				return err
			}

			slog.Info("vectorizer built",
				slog.Int("pairs", len(pairs)),
				slog.Int("source_vocab", vec.SourceVocab().Len()),
				slog.Int("target_vocab", vec.TargetVocab().Len()),
				slog.Int("max_words", vec.MaxWords()),
			)

			snap := vec.Snapshot()

			artifactPath := cfg.Paths.ArtifactPath
			if out != "" {
				artifactPath = out
			}

			if err := store.SaveFile(artifactPath, snap); err != nil {
				return err
			}

			cmd.Printf("wrote %s (source vocab %d, target vocab %d, max words %d)\n",
				artifactPath, vec.SourceVocab().Len(), vec.TargetVocab().Len(), vec.MaxWords())

			if storeName != "" {
				if err := putSnapshot(cfg, storeName, snap); err != nil {
					return err
				}

				cmd.Printf("stored snapshot %q in %s\n", storeName, cfg.Paths.StorePath)
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&pairsFile, "pairs-file", "", "Tab-separated corpus file, one source/target pair per line")
	cmd.Flags().StringVar(&sourceFile, "source-file", "", "Source side of a line-aligned corpus pair")
	cmd.Flags().StringVar(&targetFile, "target-file", "", "Target side of a line-aligned corpus pair")
	cmd.Flags().StringVar(&out, "out", "", "Artifact output path (default: paths.artifact_path)")
	cmd.Flags().StringVar(&storeName, "store-name", "", "Also store the snapshot under this name in the SQLite store")

	return cmd
}

func readCorpus(pairsFile, sourceFile, targetFile string) ([]vectorizer.Pair, error) {
	switch {
	case pairsFile != "" && (sourceFile != "" || targetFile != ""):
		return nil, fmt.Errorf("--pairs-file and --source-file/--target-file are mutually exclusive")
	case pairsFile != "":
		return corpus.ReadPairsFile(pairsFile)
	case sourceFile != "" && targetFile != "":
		return corpus.ReadAlignedFiles(sourceFile, targetFile)
	default:
		return nil, fmt.Errorf("a corpus is required: --pairs-file, or --source-file with --target-file")
	}
}

func putSnapshot(cfg config.Config, name string, snap vectorizer.Snapshot) error {
	s, err := store.Open(cfg.Paths.StorePath)
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	return s.Put(name, snap)
}
