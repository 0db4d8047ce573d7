package main

import (
	"github.com/example/go-nmt-prep/internal/vectorizer"
	"github.com/example/go-nmt-prep/internal/vocab"
	"github.com/spf13/cobra"
)

func newInspectCmd() *cobra.Command {
	var storeName string

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Show vocabulary sizes and special-token indices of an artifact",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}

			vec, err := loadVectorizer(cfg, storeName)
			if err != nil {
				return err
			}

			cmd.Printf("max words: %d\n", vec.MaxWords())
			cmd.Printf("source vocab: %d tokens\n", vec.SourceVocab().Len())
			printSpecials(cmd, vec.SourceVocab())
			cmd.Printf("target vocab: %d tokens\n", vec.TargetVocab().Len())
			printSpecials(cmd, vec.TargetVocab())

			return nil
		},
	}

	cmd.Flags().StringVar(&storeName, "store-name", "", "Load the snapshot with this name from the SQLite store")

	return cmd
}

func printSpecials(cmd *cobra.Command, v *vocab.Vocabulary) {
	for _, token := range []string{vectorizer.UnknownToken, vectorizer.PadToken, vectorizer.StartToken, vectorizer.EndToken} {
		if idx, ok := v.Lookup(token); ok {
			cmd.Printf("  %s = %d\n", token, idx)
		}
	}
}
