package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newEncodeCmd() *cobra.Command {
	var source string
	var target string
	var out string
	var storeName string

	cmd := &cobra.Command{
		Use:   "encode",
		Short: "Vectorize a sentence or sentence pair",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}

			if source == "" {
				return fmt.Errorf("--source is required")
			}

			vec, err := loadVectorizer(cfg, storeName)
			if err != nil {
				return err
			}

			var result any

			if target == "" {
				sourceVector, err := vec.VectorizeSource(source)
				if err != nil {
					return err
				}

				result = map[string]any{
					"source_vector": sourceVector,
					"source_mask":   vec.SourceMask(sourceVector),
				}
			} else {
				result, err = vec.Vectorize(source, target)
				if err != nil {
					return err
				}
			}

			raw, err := json.MarshalIndent(result, "", "  ")
			if err != nil {
				return fmt.Errorf("encode result: %w", err)
			}

			raw = append(raw, '\n')

			if out != "" {
				if err := os.WriteFile(out, raw, 0o644); err != nil {
					return fmt.Errorf("write result: %w", err)
				}

				return nil
			}

			cmd.Print(string(raw))

			return nil
		},
	}

	cmd.Flags().StringVar(&source, "source", "", "Source sentence to vectorize")
	cmd.Flags().StringVar(&target, "target", "", "Optional target sentence for a full training example")
	cmd.Flags().StringVar(&out, "out", "", "Write the JSON result to this file instead of stdout")
	cmd.Flags().StringVar(&storeName, "store-name", "", "Load the snapshot with this name from the SQLite store")

	return cmd
}
