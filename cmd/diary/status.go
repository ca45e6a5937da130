package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/diarynotes/diary-go/internal/dategroup"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show who is logged in",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}

		fmt.Printf("API:      %s\n", a.cfg.APIURL)
		fmt.Printf("Session:  %s\n", a.file.Path())

		if !a.store.IsLoggedIn() {
			fmt.Println("Status:   logged out")
			return nil
		}

		fmt.Println("Status:   logged in")
		if user, ok := a.store.User(); ok {
			fmt.Printf("User:     %s <%s>\n", user.FullName, user.Email)
		}
		if profileID, ok := a.store.ProfileID(); ok {
			fmt.Printf("Profile:  %s\n", profileID)
		}
		if exp, ok := a.store.ExpiresAt(); ok {
			now := time.Now()
			state := "valid"
			if exp.Before(now) {
				state = "expired"
			}
			fmt.Printf("Token:    %s, expires %s\n", state, dategroup.FormatDetail(exp.UnixMilli(), now))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
