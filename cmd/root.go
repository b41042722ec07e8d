package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "swapquote",
	Short: "A CLI for aggregating swap and bridge quotes across liquidity sources",
	Long: `swapquote queries every registered liquidity source for a trade in
parallel, tolerates individual sources failing, and ranks the surviving
quotes into a single reproducible best answer.

Examples:
  swapquote quote 1 ETH to USDC --network ethereum
  swapquote sources --network ethereum
  swapquote execute 1 ETH to USDC --network ethereum --from 0x1234...
  swapquote watch 1 ETH to USDC --network ethereum`,
	Version: "0.1.0",
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Add global flags
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "Output in JSON format")
}

func printError(err error) {
	fmt.Printf("\nError: %v\n\n", err)
}
