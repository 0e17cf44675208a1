package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/BukiOffor/concordium-dapp-examples/internal/core/session"
	"github.com/BukiOffor/concordium-dapp-examples/internal/verifier"
	"github.com/BukiOffor/concordium-dapp-examples/internal/wallet"
)

var keystoreAttrs map[string]string

var initKeystoreCmd = &cobra.Command{
	Use:   "init-keystore",
	Short: "Create a new encrypted account keystore",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()

		address, err := wallet.CreateKeystore(cfg.Wallet.KeystorePath, cfg.Wallet.Passphrase, keystoreAttrs)
		if err != nil {
			slog.Error("Failed to create keystore", "path", cfg.Wallet.KeystorePath, "error", err)
			os.Exit(1)
		}
		slog.Info("Keystore created", "path", cfg.Wallet.KeystorePath)
		fmt.Println(address)
	},
}

var connectCmd = &cobra.Command{
	Use:   "connect",
	Short: "Connect the wallet and print the account address",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()

		sess := session.New(
			wallet.New(cfg.Wallet.KeystorePath, cfg.Wallet.Passphrase),
			verifier.NewClient(cfg.Verifier.URL, 0),
		)
		account, err := sess.Connect(cmd.Context())
		if err != nil {
			slog.Error("Connect failed", "error", err)
			os.Exit(1)
		}
		fmt.Println(account)
	},
}

var authorizeCmd = &cobra.Command{
	Use:   "authorize",
	Short: "Run the challenge/proof handshake and print the auth token",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		ctx := cmd.Context()

		sess := session.New(
			wallet.New(cfg.Wallet.KeystorePath, cfg.Wallet.Passphrase),
			verifier.NewClient(cfg.Verifier.URL, 0),
		)
		account, err := sess.Connect(ctx)
		if err != nil {
			slog.Error("Connect failed", "error", err)
			os.Exit(1)
		}
		token, err := sess.Authorize(ctx)
		if err != nil {
			slog.Error("Authorize failed", "account", account, "error", err)
			os.Exit(1)
		}
		slog.Info("Authorized", "account", account)
		fmt.Println(token)
	},
}

func init() {
	initKeystoreCmd.Flags().StringToStringVar(&keystoreAttrs, "attr", nil,
		"identity attributes as tag=value pairs (e.g. --attr countryOfResidence=DE)")
	rootCmd.AddCommand(initKeystoreCmd, connectCmd, authorizeCmd)
}
