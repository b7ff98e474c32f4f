package main

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/spec-kit/payroll-registry/internal/auth"
)

const programName = "registryctl"

func main() {
	if err := rootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           programName,
		Short:         "Key tooling for payroll registry identities",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	rootCmd.AddCommand(keygenCommand())
	rootCmd.AddCommand(addressCommand())
	rootCmd.AddCommand(signCommand())
	return rootCmd
}

func keygenCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "keygen",
		Short: "Generate an Ed25519 key pair and print its registry identity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return keygenRun(cmd.OutOrStdout())
		},
	}
}

func keygenRun(out io.Writer) error {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return fmt.Errorf("generate key: %w", err)
	}
	address, err := auth.AddressFromPublicKey(pub)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "private_key: %s\n", hex.EncodeToString(priv.Seed()))
	fmt.Fprintf(out, "public_key:  %s\n", hex.EncodeToString(pub))
	fmt.Fprintf(out, "address:     %s\n", address)
	return nil
}

func addressCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "address <public-key-hex>",
		Short: "Derive the registry identity of a public key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pub, err := auth.ParsePublicKey(args[0])
			if err != nil {
				return err
			}
			address, err := auth.AddressFromPublicKey(pub)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), address)
			return nil
		},
	}
}

func signCommand() *cobra.Command {
	var keyHex string
	cmd := &cobra.Command{
		Use:   "sign <nonce>",
		Short: "Sign a login challenge nonce with a private key seed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			priv, err := parsePrivateKey(keyHex)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), auth.SignChallenge(priv, args[0]))
			return nil
		},
	}
	cmd.Flags().StringVarP(&keyHex, "key", "k", os.Getenv("REGISTRY_PRIVATE_KEY"), "hex private key seed (defaults to $REGISTRY_PRIVATE_KEY)")
	return cmd
}

// parsePrivateKey accepts the 32-byte seed printed by keygen or a full
// 64-byte private key.
func parsePrivateKey(s string) (ed25519.PrivateKey, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "0x")
	if s == "" {
		return nil, fmt.Errorf("private key required")
	}
	raw, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("private key: %w", err)
	}
	switch len(raw) {
	case ed25519.SeedSize:
		return ed25519.NewKeyFromSeed(raw), nil
	case ed25519.PrivateKeySize:
		return ed25519.PrivateKey(raw), nil
	default:
		return nil, fmt.Errorf("private key must be %d or %d bytes, got %d", ed25519.SeedSize, ed25519.PrivateKeySize, len(raw))
	}
}
