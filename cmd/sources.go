package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"swapquote/config"
	"swapquote/pkg/source"
)

var sourcesNetwork string

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List the liquidity sources registered for a network",
	Run:   runSources,
}

func init() {
	rootCmd.AddCommand(sourcesCmd)

	sourcesCmd.Flags().StringVar(&sourcesNetwork, "network", "ethereum", "Network to list sources for")
}

func runSources(cmd *cobra.Command, args []string) {
	jsonOutput, _ := cmd.Flags().GetBool("json")

	cfg, err := config.Load()
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	network, err := cfg.Network(sourcesNetwork)
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	registry := source.NewRegistry(cfg.RegistryURL, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	sources, err := registry.Sources(ctx, network)
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	if jsonOutput {
		jsonData, _ := json.MarshalIndent(sources, "", "  ")
		fmt.Println(string(jsonData))
		return
	}

	if len(sources) == 0 {
		fmt.Printf("\nNo sources registered for network %s.\n\n", network.ID)
		return
	}

	fmt.Printf("\nSources on %s:\n\n", color.YellowString(network.ID))
	for i, src := range sources {
		kind := src.Kind
		if kind == "" {
			kind = "dex"
		}
		fmt.Printf("  %2d. %-20s %-8s %s\n", i+1, src.DisplayName, kind, color.CyanString(src.ID))
	}
	fmt.Println()
}
