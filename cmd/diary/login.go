package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/diarynotes/diary-go/internal/model"
)

var (
	loginEmail string
	loginCode  string
	loginPIN   string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in with a signup code or email and a 4-digit PIN",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		auth := a.auth()

		var user model.User
		if loginCode != "" {
			user, err = auth.LoginWithCode(cmd.Context(), loginCode, loginPIN)
		} else {
			user, err = auth.LoginWithEmail(cmd.Context(), loginEmail, loginPIN)
		}
		if err != nil {
			return err
		}

		name := user.FullName
		if name == "" {
			name = user.Email
		}
		fmt.Printf("Logged in as %s\n", name)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(loginCmd)
	loginCmd.Flags().StringVar(&loginEmail, "email", "", "Email address")
	loginCmd.Flags().StringVar(&loginCode, "code", "", "4-character signup code")
	loginCmd.Flags().StringVar(&loginPIN, "pin", "", "4-digit PIN")
	loginCmd.MarkFlagsMutuallyExclusive("email", "code")
	loginCmd.MarkFlagsOneRequired("email", "code")
	loginCmd.MarkFlagRequired("pin")
}
