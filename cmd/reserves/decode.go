package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"reserveScope/internal/aave"
	"reserveScope/internal/config"
	"reserveScope/internal/model"
)

type decodedWord struct {
	Version string                    `json:"version"`
	Word    string                    `json:"word"`
	Fields  model.ReserveConfigFields `json:"fields"`
}

func runDecode(cmd *cobra.Command, args []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadDecode(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	input := cfg.Word
	if len(args) > 0 {
		input = args[0]
	}
	if input == "" {
		return fmt.Errorf("configuration word is required")
	}

	version, err := aave.ParseVersion(cfg.Version)
	if err != nil {
		return err
	}
	word, err := aave.ParseConfigWord(input)
	if err != nil {
		return err
	}
	fields, err := aave.Decode(version, word)
	if err != nil {
		return err
	}

	logger.Debug("word decoded", zap.String("word", word.Hex()), zap.String("version", string(version)))

	out, err := json.MarshalIndent(decodedWord{Version: string(version), Word: word.Hex(), Fields: fields}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal decoded word: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}
