package cmd

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/example/rec-sniper/internal/crypto"
)

func newKeysCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "keys",
		Short: "Generate cookie-cache and credential keys (base64)",
		RunE: func(cmd *cobra.Command, args []string) error {
			hash := make([]byte, 32)
			block := make([]byte, 32)
			cred := make([]byte, 32)
			for _, b := range [][]byte{hash, block, cred} {
				if _, err := rand.Read(b); err != nil {
					return err
				}
			}
			fmt.Fprintf(os.Stdout, "export RECSNIPER_COOKIE_HASH_KEY=%s\n", base64.StdEncoding.EncodeToString(hash))
			fmt.Fprintf(os.Stdout, "export RECSNIPER_COOKIE_BLOCK_KEY=%s\n", base64.StdEncoding.EncodeToString(block))
			fmt.Fprintf(os.Stdout, "export RECSNIPER_CRED_KEY=%s\n", base64.StdEncoding.EncodeToString(cred))
			return nil
		},
	}
}

func newEncryptCmd() *cobra.Command {
	var password string

	c := &cobra.Command{
		Use:   "encrypt",
		Short: "Encrypt a password for storage in the config file",
		RunE: func(cmd *cobra.Command, args []string) error {
			raw := strings.TrimSpace(os.Getenv("RECSNIPER_CRED_KEY"))
			if raw == "" {
				return fmt.Errorf("RECSNIPER_CRED_KEY is not set (run `recsniper keys` first)")
			}
			key, err := base64.StdEncoding.DecodeString(raw)
			if err != nil {
				return fmt.Errorf("RECSNIPER_CRED_KEY: invalid base64")
			}
			aead, err := crypto.New(key)
			if err != nil {
				return err
			}
			sealed, err := aead.Seal(password)
			if err != nil {
				return err
			}
			fmt.Fprintf(os.Stdout, "%s\n", sealed)
			return nil
		},
	}

	c.Flags().StringVar(&password, "password", "", "plaintext password")
	_ = c.MarkFlagRequired("password")
	return c
}
