package main

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/nao1215/nightcrawler/internal/config"
)

//go:embed templates/nightcrawler.yaml
var configTemplate []byte

// NewInitCmd creates the init command.
func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a sample configuration file",
		Long: `Init writes a commented sample .nightcrawler configuration file.

The file documents the per-site settings nightcrawler reads: excluded
headers, ignore/follow patterns, user agents and request caps.

Examples:
  # Create .nightcrawler in the current directory
  nightcrawler init

  # Create it somewhere else
  nightcrawler init --output ~/.nightcrawler`,
		Args: cobra.NoArgs,
		RunE: runInitCmd,
	}

	cmd.Flags().StringP("output", "o", config.DefaultConfigFile,
		"Path of the configuration file to create")
	cmd.Flags().BoolP("force", "f", false,
		"Overwrite the file if it already exists")

	return cmd
}

// runInitCmd executes the init command.
func runInitCmd(cmd *cobra.Command, _ []string) error {
	output, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}
	force, err := cmd.Flags().GetBool("force")
	if err != nil {
		return err
	}

	if _, err := os.Stat(output); err == nil && !force {
		return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", output)
	}

	dir := filepath.Dir(output)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	if err := os.WriteFile(output, configTemplate, 0600); err != nil {
		return fmt.Errorf("failed to write configuration file: %w", err)
	}

	fmt.Printf("Created %s\n", output)
	fmt.Println("Edit it to customize per-site crawl behavior, then run:")
	fmt.Println("  nightcrawler crawl <url>")
	return nil
}
