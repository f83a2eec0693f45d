package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"datadeck/internal/config"
	"datadeck/internal/ingest"
	"datadeck/internal/service"
)

var (
	ingestTable     string
	ingestDelimiter string
	ingestEncoding  string
)

func init() {
	ingestCmd.Flags().StringVarP(&ingestTable, "table", "t", "", "Target table name (default: derived from file name)")
	ingestCmd.Flags().StringVar(&ingestDelimiter, "delimiter", "", "CSV delimiter (default comma)")
	ingestCmd.Flags().StringVar(&ingestEncoding, "encoding", "", "Input charset: utf-8, latin-1, windows-1252")
	rootCmd.AddCommand(ingestCmd)
}

var ingestCmd = &cobra.Command{
	Use:   "ingest <file>",
	Short: "Ingest one CSV/TSV/xlsx file and print the upsert summary",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}

		st, err := openStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer st.Close()

		raw, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read %s: %w", args[0], err)
		}

		opts := ingest.Options{Encoding: ingestEncoding}
		if ingestDelimiter != "" {
			opts.Delimiter = rune(ingestDelimiter[0])
		}

		svc := service.NewIngestService(ingest.NewEngine(st), service.LogEmitter{})
		summaries, err := svc.IngestFile(ctx, raw, filepath.Base(args[0]), ingestTable, opts)
		if err != nil {
			return err
		}

		out, _ := json.MarshalIndent(summaries, "", "  ")
		fmt.Println(string(out))
		return nil
	},
}
