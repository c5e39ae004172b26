package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wanjohi/go-curator/core/api"
)

var (
	usersPage    int
	usersPerPage int
	usersSearch  string

	userName string
	userRole string
)

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Manage operator accounts",
}

var usersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List operator accounts",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
		defer cancel()

		page, err := client.Users(ctx, api.ListOptions{
			Page:     usersPage,
			PageSize: usersPerPage,
			Search:   usersSearch,
		})
		if err != nil {
			return err
		}
		return printJSON(page)
	},
}

var usersCreateCmd = &cobra.Command{
	Use:   "create <email>",
	Short: "Create an operator account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
		defer cancel()

		user, err := client.CreateUser(ctx, api.User{
			Email: args[0],
			Name:  userName,
			Role:  userRole,
		})
		if err != nil {
			return err
		}
		return printJSON(user)
	},
}

var usersDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete an operator account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
		defer cancel()

		if err := client.DeleteUser(ctx, args[0]); err != nil {
			return err
		}
		fmt.Printf("deleted user %s\n", args[0])
		return nil
	},
}

var usersUnlockCmd = &cobra.Command{
	Use:   "unlock <id>",
	Short: "Unlock a locked operator account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
		defer cancel()

		user, err := client.UnlockUser(ctx, args[0])
		if err != nil {
			return err
		}
		return printJSON(user)
	},
}

func init() {
	usersListCmd.Flags().IntVar(&usersPage, "page", 1, "page to fetch")
	usersListCmd.Flags().IntVar(&usersPerPage, "per-page", 30, "users per page")
	usersListCmd.Flags().StringVar(&usersSearch, "search", "", "full-text search term")

	usersCreateCmd.Flags().StringVar(&userName, "name", "", "display name")
	usersCreateCmd.Flags().StringVar(&userRole, "role", "", "account role")

	usersCmd.AddCommand(usersListCmd)
	usersCmd.AddCommand(usersCreateCmd)
	usersCmd.AddCommand(usersDeleteCmd)
	usersCmd.AddCommand(usersUnlockCmd)
}
