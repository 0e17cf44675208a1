package cli

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/BukiOffor/concordium-dapp-examples/internal/contract"
	"github.com/BukiOffor/concordium-dapp-examples/internal/core/domain"
)

var (
	addItemName     string
	addItemMinBid   uint64
	addItemTokenID  string
	addItemStart    string
	addItemDuration time.Duration

	bidItemIndex uint64
	bidAmount    uint64
	bidTokenID   string

	finalizeItemIndex uint64
	viewItemIndex     uint64
)

var addItemCmd = &cobra.Command{
	Use:   "add-item",
	Short: "Put a new item up for auction",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		ctx := cmd.Context()

		start := time.Now()
		if addItemStart != "" {
			parsed, err := time.Parse(time.RFC3339, addItemStart)
			if err != nil {
				slog.Error("Invalid --start, want RFC3339", "error", err)
				os.Exit(1)
			}
			start = parsed
		}

		nodeClient := dialNode(ctx, cfg)
		defer nodeClient.Close()
		w := connectedWallet(ctx, cfg)
		defer w.Disconnect()

		auction := contract.NewClient(nodeClient, cfg.Contract.Auction)
		hash, err := auction.AddItem(ctx, w, domain.AddItemParams{
			Name:       addItemName,
			Start:      start,
			End:        start.Add(addItemDuration),
			MinimumBid: domain.TokenAmount(addItemMinBid),
			TokenID:    domain.TokenID(addItemTokenID),
		})
		if err != nil {
			slog.Error("Add item failed", "error", err)
			os.Exit(1)
		}
		fmt.Println(hash)
	},
}

var bidCmd = &cobra.Command{
	Use:   "bid",
	Short: "Bid on an auctioned item",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		ctx := cmd.Context()

		nodeClient := dialNode(ctx, cfg)
		defer nodeClient.Close()
		w := connectedWallet(ctx, cfg)
		defer w.Disconnect()

		auction := contract.NewClient(nodeClient, cfg.Contract.Auction)
		hash, err := auction.Bid(ctx, w, domain.BidParams{
			ItemIndex: bidItemIndex,
			Amount:    domain.TokenAmount(bidAmount),
			TokenID:   domain.TokenID(bidTokenID),
		})
		if err != nil {
			slog.Error("Bid failed", "item", bidItemIndex, "error", err)
			os.Exit(1)
		}
		fmt.Println(hash)
	},
}

var finalizeCmd = &cobra.Command{
	Use:   "finalize",
	Short: "Finalize an ended auction",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		ctx := cmd.Context()

		nodeClient := dialNode(ctx, cfg)
		defer nodeClient.Close()
		w := connectedWallet(ctx, cfg)
		defer w.Disconnect()

		auction := contract.NewClient(nodeClient, cfg.Contract.Auction)
		hash, err := auction.Finalize(ctx, w, domain.FinalizeParams{ItemIndex: finalizeItemIndex})
		if err != nil {
			slog.Error("Finalize failed", "item", finalizeItemIndex, "error", err)
			os.Exit(1)
		}
		fmt.Println(hash)
	},
}

var viewItemCmd = &cobra.Command{
	Use:   "view-item",
	Short: "Show the on-chain state of one auctioned item",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		ctx := cmd.Context()

		nodeClient := dialNode(ctx, cfg)
		defer nodeClient.Close()

		auction := contract.NewClient(nodeClient, cfg.Contract.Auction)
		state, err := auction.ViewItemState(ctx, viewItemIndex)
		if err != nil {
			slog.Error("View item failed", "item", viewItemIndex, "error", err)
			os.Exit(1)
		}
		printJSON(state)
	},
}

var viewCmd = &cobra.Command{
	Use:   "view",
	Short: "Show the full auction contract state",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		ctx := cmd.Context()

		nodeClient := dialNode(ctx, cfg)
		defer nodeClient.Close()

		auction := contract.NewClient(nodeClient, cfg.Contract.Auction)
		state, err := auction.View(ctx)
		if err != nil {
			slog.Error("View failed", "error", err)
			os.Exit(1)
		}
		printJSON(state)
	},
}

func printJSON(v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		slog.Error("Failed to encode output", "error", err)
		os.Exit(1)
	}
	fmt.Println(string(data))
}

func init() {
	addItemCmd.Flags().StringVar(&addItemName, "name", "", "item name")
	addItemCmd.Flags().Uint64Var(&addItemMinBid, "min-bid", 1, "minimum bid in token units")
	addItemCmd.Flags().StringVar(&addItemTokenID, "token-id", "01", "CIS-2 token id accepted for bids")
	addItemCmd.Flags().StringVar(&addItemStart, "start", "", "auction start (RFC3339, default now)")
	addItemCmd.Flags().DurationVar(&addItemDuration, "duration", 24*time.Hour, "auction duration")
	addItemCmd.MarkFlagRequired("name")

	bidCmd.Flags().Uint64Var(&bidItemIndex, "item", 0, "item index")
	bidCmd.Flags().Uint64Var(&bidAmount, "amount", 0, "bid amount in token units")
	bidCmd.Flags().StringVar(&bidTokenID, "token-id", "01", "CIS-2 token id")
	bidCmd.MarkFlagRequired("item")
	bidCmd.MarkFlagRequired("amount")

	finalizeCmd.Flags().Uint64Var(&finalizeItemIndex, "item", 0, "item index")
	finalizeCmd.MarkFlagRequired("item")

	viewItemCmd.Flags().Uint64Var(&viewItemIndex, "item", 0, "item index")
	viewItemCmd.MarkFlagRequired("item")

	rootCmd.AddCommand(addItemCmd, bidCmd, finalizeCmd, viewItemCmd, viewCmd)
}
