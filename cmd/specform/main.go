package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-specform/internal/config"
)

// Version information set at build time.
var version = "dev"

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "specform",
		Short: "Category attribute forms synced with a specifications field",
		Long: `specform serves, renders and edits category-dependent attribute forms
whose values are stored as a single JSON "specifications" document.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to "+config.FileName)

	loadConfig := func() (*config.Config, error) {
		return config.Load(configPath)
	}

	rootCmd.AddCommand(
		serveCmd(loadConfig),
		renderCmd(loadConfig),
		editCmd(loadConfig),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

type configLoader func() (*config.Config, error)

func readSpecifications(path string) (string, error) {
	if path == "" || path == "-" {
		return "", nil
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func writeSpecifications(path, content string) error {
	if path == "" || path == "-" {
		_, err := fmt.Fprintln(os.Stdout, content)
		return err
	}
	return os.WriteFile(path, []byte(content+"\n"), 0o644)
}
