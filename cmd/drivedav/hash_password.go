package main

import (
	"errors"
	"fmt"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/sagarc03/drivedav"
)

var hashPasswordCmd = &cobra.Command{
	Use:   "hash-password",
	Short: "Hash a password for the users file",
	Long: `Prompt for a password and print a bcrypt hash that can be used as
the password of an entry in auth.users. Plaintext passwords are accepted
too, but hashes keep the users file safe to share.`,
	Args: cobra.NoArgs,
	RunE: runHashPassword,
}

func init() {
	rootCmd.AddCommand(hashPasswordCmd)
}

func runHashPassword(cmd *cobra.Command, args []string) error {
	prompt := promptui.Prompt{
		Label: "Password",
		Mask:  '*',
		Validate: func(s string) error {
			if s == "" {
				return errors.New("password cannot be empty")
			}
			return nil
		},
	}

	password, err := prompt.Run()
	if err != nil {
		return fmt.Errorf("read password: %w", err)
	}

	hash, err := drivedav.HashSecret(password)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), hash)
	return err
}
