package cmd

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"swapquote/config"
	"swapquote/pkg/execution"
	"swapquote/pkg/provider"
)

var (
	executeNetwork string
	executeFrom    string
	executeSource  string
	executeYes     bool
)

var executeCmd = &cobra.Command{
	Use:   "execute <amount> <pay-token> to <receive-token>",
	Short: "Fetch quotes and build an execution request for the best route",
	Long: `Fetch quotes, pick the active route (best by ranking, or --source to
override), and build the unsigned execution request handed to an
external signer. Nothing is signed or broadcast by this command.

Examples:
  swapquote execute 1 ETH to USDC --network ethereum --from 0x1234...
  swapquote execute 1 ETH to USDC --network ethereum --from 0x1234... --source sushiswap`,
	Args: cobra.MinimumNArgs(1),
	Run:  runExecute,
}

func init() {
	rootCmd.AddCommand(executeCmd)

	executeCmd.Flags().StringVar(&executeNetwork, "network", "ethereum", "Network to trade on")
	executeCmd.Flags().StringVar(&executeFrom, "from", "", "Trader address (REQUIRED)")
	executeCmd.Flags().StringVar(&executeSource, "source", "", "Override the ranked best source")
	executeCmd.Flags().BoolVarP(&executeYes, "yes", "y", false, "Skip confirmation prompt")
}

func runExecute(cmd *cobra.Command, args []string) {
	verbose, _ := cmd.Flags().GetBool("verbose")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	if executeFrom == "" {
		printError(fmt.Errorf("--from is required: the execution request needs the trader address"))
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	params, err := resolveTradeParams(cfg, args, executeNetwork, executeFrom)
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	eng, err := buildEngine(cfg, executeNetwork, verbose)
	if err != nil {
		printError(err)
		os.Exit(1)
	}
	defer eng.Close()

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	if !jsonOutput {
		s.Suffix = " Fetching quotes..."
		s.Start()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	snap, err := eng.QuoteOnce(ctx, params)
	if !jsonOutput {
		s.Stop()
	}
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	if snap.NoRoutes {
		printError(fmt.Errorf("no routes available for this trade"))
		os.Exit(1)
	}

	// Apply the manual override after the round settles
	if executeSource != "" {
		if err := eng.SelectSource(executeSource); err != nil {
			printError(err)
			os.Exit(1)
		}
		snap = eng.Snapshot()
	}

	active := snap.ActiveResult()
	if active == nil || active.Quote == nil {
		printError(fmt.Errorf("no active quote to execute"))
		os.Exit(1)
	}

	if !jsonOutput {
		displaySnapshot(snap, params, cfg)
	}

	if !executeYes && !jsonOutput {
		if !confirmExecution() {
			fmt.Println("\nExecution cancelled.")
			os.Exit(0)
		}
	}

	// Bridge quotes are ranked dry; commit reserves the live deposit
	// address the execution request needs
	quote := active.Quote
	factory, err := providerFactory(cfg, executeNetwork)
	if err != nil {
		printError(err)
		os.Exit(1)
	}
	prov, err := factory.Provider(active.Source)
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	commitCtx, commitCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer commitCancel()

	quote, err = provider.CommitQuote(commitCtx, prov, quote, params)
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	req, err := execution.BuildExecution(quote, params, executeFrom)
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	jsonData, _ := json.MarshalIndent(req, "", "  ")
	if jsonOutput {
		fmt.Println(string(jsonData))
		return
	}

	fmt.Println("\n" + strings.Repeat("=", 60))
	color.Yellow("                 EXECUTION REQUEST")
	fmt.Println(strings.Repeat("=", 60))
	fmt.Printf("\n  Route: %s\n\n", color.CyanString(active.Source.DisplayName))
	fmt.Println(string(jsonData))
	fmt.Println("\nHand this request to your signer to sign and broadcast.")
	fmt.Println(strings.Repeat("=", 60) + "\n")
}

func confirmExecution() bool {
	reader := bufio.NewReader(os.Stdin)
	fmt.Print("\nBuild execution request for this route? (y/N): ")

	response, err := reader.ReadString('\n')
	if err != nil {
		return false
	}

	response = strings.TrimSpace(strings.ToLower(response))
	return response == "y" || response == "yes"
}
