// Command oraclectl inspects and settles questions on the oracle market
// contract from the command line.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/spf13/cobra"

	"oraclemarket/config"
	"oraclemarket/gateway"
	"oraclemarket/market"
	"oraclemarket/observability/logging"
	"oraclemarket/observability/otel"
)

var (
	cfgPath     string
	userFilter  string
	waitConfirm bool
	timeout     time.Duration
)

var rootCmd = &cobra.Command{
	Use:           "oraclectl",
	Short:         "Client for a bonded-answer oracle market",
	SilenceErrors: true,
	SilenceUsage:  true,
}

var questionCmd = &cobra.Command{
	Use:   "question <question-id>",
	Short: "Show a question's on-ledger state",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withMarket(cmd.Context(), func(ctx context.Context, m *market.Market, _ *config.Config) error {
			question, err := m.GetQuestion(ctx, parseQuestionID(args[0]))
			if err != nil {
				return err
			}
			if !question.Exists() {
				fmt.Println("question not found")
				return nil
			}
			fmt.Printf("best answer:        %s\n", question.BestAnswer.Hex())
			fmt.Printf("finalize timestamp: %d\n", question.FinalizeTimestamp)
			fmt.Printf("history hash:       %s\n", question.HistoryHash.Hex())
			fmt.Printf("finalized:          %t\n", question.Finalized)
			fmt.Printf("claimed:            %t\n", question.Claimed())
			return nil
		})
	},
}

var bondsCmd = &cobra.Command{
	Use:   "bonds <question-id>",
	Short: "Show accumulated bonds per answer",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withMarket(cmd.Context(), func(ctx context.Context, m *market.Market, _ *config.Config) error {
			var user *common.Address
			if trimmed := strings.TrimSpace(userFilter); trimmed != "" {
				if !common.IsHexAddress(trimmed) {
					return fmt.Errorf("--user %q is not a hex address", trimmed)
				}
				addr := common.HexToAddress(trimmed)
				user = &addr
			}
			ledger, err := m.GetBondsByAnswer(ctx, parseQuestionID(args[0]), user)
			if err != nil {
				return err
			}
			if ledger.Len() == 0 {
				fmt.Println("no bonds posted")
				return nil
			}
			for _, answer := range ledger.Answers() {
				fmt.Printf("%s  %s\n", answer.Hex(), market.FormatUnits(ledger.AnswerTotal(answer), market.BondDecimals))
			}
			if user != nil {
				fmt.Printf("total  %s\n", market.FormatUnits(ledger.Total(), market.BondDecimals))
			}
			return nil
		})
	},
}

var claimCmd = &cobra.Command{
	Use:   "claim <question-id>",
	Short: "Claim the winnings of a finalized question",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withMarket(cmd.Context(), func(ctx context.Context, m *market.Market, cfg *config.Config) error {
			handle, err := m.ClaimWinnings(ctx, parseQuestionID(args[0]))
			if err != nil {
				return err
			}
			if handle == nil {
				fmt.Println("nothing to claim (not finalized, already claimed, or no answers)")
				return nil
			}
			fmt.Printf("submitted %s\n", handle.Hash().Hex())
			if !waitConfirm {
				return nil
			}
			receipt, err := handle.Await(ctx, cfg.Confirmations)
			if err != nil {
				return err
			}
			fmt.Printf("confirmed in block %s\n", receipt.BlockNumber.String())
			return nil
		})
	},
}

func withMarket(parent context.Context, run func(context.Context, *market.Market, *config.Config) error) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	log := logging.Setup("oraclectl", cfg.Environment, logging.ParseLevel(cfg.LogLevel))

	ctx, cancel := context.WithTimeout(parent, timeout)
	defer cancel()

	if cfg.Telemetry.Traces || cfg.Telemetry.Metrics {
		shutdown, err := otel.Init(ctx, otel.Config{
			ServiceName: "oraclectl",
			Environment: cfg.Environment,
			Endpoint:    cfg.Telemetry.Endpoint,
			Insecure:    cfg.Telemetry.Insecure,
			Traces:      cfg.Telemetry.Traces,
			Metrics:     cfg.Telemetry.Metrics,
		})
		if err != nil {
			return err
		}
		defer func() {
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer shutdownCancel()
			if err := shutdown(shutdownCtx); err != nil {
				log.Warn("telemetry shutdown", "err", err)
			}
		}()
	}

	client, err := gateway.Dial(ctx, cfg.RPCEndpoint)
	if err != nil {
		return err
	}
	defer client.Close()

	opts := gateway.Options{
		Contract:       cfg.Contract(),
		GasHeadroomPct: cfg.GasHeadroomPct,
		RateLimit:      cfg.RateLimit,
		RateBurst:      cfg.RateBurst,
	}
	if keyHex := cfg.SenderKeyHex(); keyHex != "" {
		key, err := crypto.HexToECDSA(strings.TrimPrefix(keyHex, "0x"))
		if err != nil {
			return fmt.Errorf("parse sender key: %w", err)
		}
		opts.Key = key
	}
	gw, err := gateway.NewEthGateway(client, opts, log)
	if err != nil {
		return err
	}
	return run(ctx, market.New(gw, cfg.LogWindow, log), cfg)
}

// parseQuestionID accepts both 0x-prefixed and bare 32-byte hex identifiers.
func parseQuestionID(raw string) common.Hash {
	return common.HexToHash(strings.TrimSpace(raw))
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "oraclemarket.toml", "path to the TOML config file")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 2*time.Minute, "overall command timeout")
	bondsCmd.Flags().StringVar(&userFilter, "user", "", "restrict totals to one poster's bonds")
	claimCmd.Flags().BoolVar(&waitConfirm, "await", false, "wait for the configured confirmation depth")
	rootCmd.AddCommand(questionCmd, bondsCmd, claimCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
