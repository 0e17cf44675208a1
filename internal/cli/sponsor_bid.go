package cli

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/BukiOffor/concordium-dapp-examples/internal/core/domain"
	"github.com/BukiOffor/concordium-dapp-examples/internal/sponsor"
)

var (
	sponsorBidItem    uint64
	sponsorBidAmount  uint64
	sponsorBidTokenID string
)

var sponsorBidCmd = &cobra.Command{
	Use:   "sponsor-bid",
	Short: "Bid through the sponsor service (the sponsor pays the fees)",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		ctx := cmd.Context()

		w := connectedWallet(ctx, cfg)
		defer w.Disconnect()
		account, _ := w.Account()

		permit := sponsor.Permit{
			Contract: cfg.Contract.Auction,
			Params: domain.BidParams{
				ItemIndex: sponsorBidItem,
				Amount:    domain.TokenAmount(sponsorBidAmount),
				TokenID:   domain.TokenID(sponsorBidTokenID),
			},
			Nonce:  uint64(time.Now().UnixNano()),
			Expiry: time.Now().Add(10 * time.Minute),
		}
		payload, err := sponsor.PermitPayload(permit)
		if err != nil {
			slog.Error("Failed to encode permit", "error", err)
			os.Exit(1)
		}
		sig, err := w.SignMessage(payload)
		if err != nil {
			slog.Error("Failed to sign permit", "error", err)
			os.Exit(1)
		}

		client := sponsor.NewClient(cfg.Verifier.URL, 0)
		hash, err := client.SubmitBid(ctx, sponsor.SignedPermit{
			Signer:    account,
			Permit:    permit,
			Signature: sig,
		})
		if err != nil {
			slog.Error("Sponsored bid failed", "item", sponsorBidItem, "error", err)
			os.Exit(1)
		}
		fmt.Println(hash)
	},
}

func init() {
	sponsorBidCmd.Flags().Uint64Var(&sponsorBidItem, "item", 0, "item index")
	sponsorBidCmd.Flags().Uint64Var(&sponsorBidAmount, "amount", 0, "bid amount in token units")
	sponsorBidCmd.Flags().StringVar(&sponsorBidTokenID, "token-id", "01", "CIS-2 token id")
	sponsorBidCmd.MarkFlagRequired("item")
	sponsorBidCmd.MarkFlagRequired("amount")

	rootCmd.AddCommand(sponsorBidCmd)
}
