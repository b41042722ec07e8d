package cmd

import (
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
	"swapquote/pkg/engine"
	"swapquote/pkg/types"
)

var (
	quoteNetwork string
	quoteFrom    string
)

var quoteCmd = &cobra.Command{
	Use:   "quote <amount> <pay-token> to <receive-token>",
	Short: "Fetch quotes from every registered source and rank them",
	Long: `Query all liquidity sources registered for the network in parallel
and rank the resolved quotes by output amount. Individual sources
failing does not fail the batch; they are listed as unavailable.

Examples:
  swapquote quote 1 ETH to USDC --network ethereum
  swapquote quote 100 USDC to SOL --network solana --from <address>`,
	Args: cobra.MinimumNArgs(1),
	Run:  runQuote,
}

func init() {
	rootCmd.AddCommand(quoteCmd)

	quoteCmd.Flags().StringVar(&quoteNetwork, "network", "ethereum", "Network to quote on")
	quoteCmd.Flags().StringVar(&quoteFrom, "from", "", "Trader address (required for bridge sources)")
}

func runQuote(cmd *cobra.Command, args []string) {
	verbose, _ := cmd.Flags().GetBool("verbose")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	cfg, err := config.Load()
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	params, err := resolveTradeParams(cfg, args, quoteNetwork, quoteFrom)
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	eng, err := buildEngine(cfg, quoteNetwork, verbose)
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

	if jsonOutput {
		printSnapshotJSON(snap, params)
		return
	}

	displaySnapshot(snap, params, cfg)
}

// printSnapshotJSON renders a snapshot for scripting
func printSnapshotJSON(snap engine.Snapshot, params types.TradeParameters) {
	type resultJSON struct {
		Source        string `json:"source"`
		State         string `json:"state"`
		ReceiveAmount string `json:"receive_amount,omitempty"`
		ReceiveRaw    string `json:"receive_amount_raw,omitempty"`
		DurationSec   int    `json:"duration_sec,omitempty"`
		Error         string `json:"error,omitempty"`
	}

	results := make([]resultJSON, 0, len(snap.Results))
	for _, r := range snap.Results {
		rj := resultJSON{Source: r.SourceID, State: string(r.State), Error: r.ErrorReason}
		if r.Quote != nil {
			rj.ReceiveAmount = r.Quote.ReceiveAmount(params.ReceiveToken).String()
			rj.ReceiveRaw = r.Quote.ReceiveAmountRaw.String()
			rj.DurationSec = r.Quote.DurationSeconds
		}
		results = append(results, rj)
	}

	output := map[string]interface{}{
		"pay_amount":    params.PayAmount,
		"pay_token":     params.PayToken.Symbol,
		"receive_token": params.ReceiveToken.Symbol,
		"best_source":   snap.BestSourceID,
		"active_source": snap.ActiveSourceID,
		"no_routes":     snap.NoRoutes,
		"results":       results,
	}

	jsonData, _ := json.MarshalIndent(output, "", "  ")
	fmt.Println(string(jsonData))
}

// displaySnapshot renders the ranked results for humans
func displaySnapshot(snap engine.Snapshot, params types.TradeParameters, cfg *config.Config) {
	fmt.Println("\n" + strings.Repeat("=", 60))
	color.Green("                     QUOTES")
	fmt.Println(strings.Repeat("=", 60))

	fmt.Printf("\n  Trade: %s %s -> %s on %s\n\n",
		params.PayAmount,
		color.YellowString(params.PayToken.Symbol),
		color.YellowString(params.ReceiveToken.Symbol),
		params.Network.ID)

	if snap.NoRoutes {
		color.Red("  No routes available for this trade.\n")
		fmt.Println(strings.Repeat("=", 60) + "\n")
		return
	}

	for _, r := range snap.Results {
		marker := "   "
		if r.SourceID == snap.ActiveSourceID {
			marker = color.GreenString(" > ")
		}

		switch r.State {
		case types.ResultResolved:
			amount := r.Quote.ReceiveAmount(params.ReceiveToken)
			line := fmt.Sprintf("%s%-16s %s %s", marker, r.Source.DisplayName, amount.String(), params.ReceiveToken.Symbol)
			if label := engine.DurationLabel(r.Quote.DurationSeconds); label != "" {
				line += fmt.Sprintf("  (%s)", label)
			}
			if amount.IsZero() {
				line += color.YellowString("  [zero output]")
			}
			fmt.Println(line)
		case types.ResultFailed:
			fmt.Printf("%s%-16s %s\n", marker, r.Source.DisplayName, color.RedString("route unavailable (%s)", r.ErrorReason))
		default:
			fmt.Printf("%s%-16s pending...\n", marker, r.Source.DisplayName)
		}
	}

	if active := snap.ActiveResult(); active != nil && active.Quote != nil {
		oracle := buildOracle(cfg, params, snap.ActiveSourceID)
		m, err := engine.ComputeMetrics(context.Background(), active.Quote, params, oracle, cfg.Engine.SlippageBps)
		if err == nil {
			fmt.Println()
			fmt.Printf("  Minimum received:  %s %s\n", m.MinReceived.String(), params.ReceiveToken.Symbol)
			if m.PriceImpactPercent != nil {
				fmt.Printf("  Price impact:      %s%%\n", m.PriceImpactPercent.StringFixed(2))
			}
			if m.GasFeeUSD != nil {
				fmt.Printf("  Gas estimate:      $%s\n", m.GasFeeUSD.StringFixed(2))
			}
		}
	}

	fmt.Println("\n" + strings.Repeat("=", 60) + "\n")
}
