package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"swapquote/config"
	"swapquote/pkg/engine"
	"swapquote/pkg/types"
)

var (
	watchNetwork string
	watchFrom    string
)

var watchCmd = &cobra.Command{
	Use:   "watch <amount> <pay-token> to <receive-token>",
	Short: "Interactively re-quote a trade as you edit the amount",
	Long: `Start an interactive session for a trade pair. Each line you type
becomes the new pay amount; edits are debounced, superseded rounds are
cancelled, and results print as each source settles.

Type a new amount and press enter to re-quote. Enter an empty amount
to clear quotes. Type 'q' to quit.`,
	Args: cobra.MinimumNArgs(1),
	Run:  runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().StringVar(&watchNetwork, "network", "ethereum", "Network to quote on")
	watchCmd.Flags().StringVar(&watchFrom, "from", "", "Trader address (required for bridge sources)")
}

func runWatch(cmd *cobra.Command, args []string) {
	verbose, _ := cmd.Flags().GetBool("verbose")

	cfg, err := config.Load()
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	params, err := resolveTradeParams(cfg, args, watchNetwork, watchFrom)
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	eng, err := buildEngine(cfg, watchNetwork, verbose)
	if err != nil {
		printError(err)
		os.Exit(1)
	}
	defer eng.Close()

	unsubscribe := eng.Subscribe(func(snap engine.Snapshot) {
		printWatchUpdate(snap, params.ReceiveToken)
	})
	defer unsubscribe()

	fmt.Printf("\nWatching %s -> %s on %s. New amount per line, 'q' to quit.\n\n",
		color.YellowString(params.PayToken.Symbol),
		color.YellowString(params.ReceiveToken.Symbol),
		params.Network.ID)

	eng.UpdateParameters(params)

	reader := bufio.NewReader(os.Stdin)
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			return
		}
		line = strings.TrimSpace(line)

		if line == "q" || line == "quit" {
			return
		}

		next := params
		next.PayAmount = line
		eng.UpdateParameters(next)
	}
}

// printWatchUpdate renders one engine state change as a single line
func printWatchUpdate(snap engine.Snapshot, receiveToken types.Token) {
	if snap.Err != nil {
		color.Red("  registry unavailable: %v", snap.Err)
		return
	}
	if len(snap.Results) == 0 {
		fmt.Println("  (cleared)")
		return
	}
	if snap.NoRoutes {
		color.Red("  no routes found")
		return
	}

	settled := 0
	for _, r := range snap.Results {
		if r.State != types.ResultPending {
			settled++
		}
	}

	line := fmt.Sprintf("  [%d/%d settled]", settled, len(snap.Results))
	if active := snap.ActiveResult(); active != nil && active.Quote != nil {
		line += fmt.Sprintf("  best: %s %s %s",
			color.GreenString(active.Source.DisplayName),
			active.Quote.ReceiveAmount(receiveToken).String(),
			receiveToken.Symbol)
	}
	fmt.Println(line)
}
