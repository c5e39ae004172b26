package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/wanjohi/go-curator/core/api"
)

var collectionSchemaFile string

var collectionsCmd = &cobra.Command{
	Use:   "collections",
	Short: "Manage collections and their schemas",
}

var collectionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all collections",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
		defer cancel()

		cols, err := client.Collections(ctx)
		if err != nil {
			return err
		}
		return printJSON(cols)
	},
}

var collectionsShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Show one collection and its schema",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
		defer cancel()

		col, err := client.Collection(ctx, args[0])
		if err != nil {
			return err
		}
		return printJSON(col)
	},
}

var collectionsCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a collection from a schema file",
	Long: `Create a collection whose field definitions come from a JSON file,
for example:

  [{"name": "title", "type": "text", "required": true},
   {"name": "price", "type": "number", "constraints": {"min": 0}}]`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		col, err := collectionFromFile(args[0], collectionSchemaFile)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
		defer cancel()

		created, err := client.CreateCollection(ctx, *col)
		if err != nil {
			return err
		}
		return printJSON(created)
	},
}

var collectionsUpdateCmd = &cobra.Command{
	Use:   "update <name>",
	Short: "Replace a collection's schema from a schema file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		col, err := collectionFromFile(args[0], collectionSchemaFile)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
		defer cancel()

		updated, err := client.UpdateCollection(ctx, args[0], *col)
		if err != nil {
			return err
		}
		return printJSON(updated)
	},
}

var collectionsDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a collection",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
		defer cancel()

		if err := client.DeleteCollection(ctx, args[0]); err != nil {
			return err
		}
		fmt.Printf("deleted collection %q\n", args[0])
		return nil
	},
}

// collectionFromFile builds a Collection named name with fields decoded
// from the JSON schema file at path.
func collectionFromFile(name, path string) (*api.Collection, error) {
	if path == "" {
		return nil, fmt.Errorf("a schema file is required (use --schema)")
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read schema file: %w", err)
	}

	col := api.Collection{Name: name}
	col.Schema.Name = name
	if err := json.Unmarshal(raw, &col.Schema.Fields); err != nil {
		return nil, fmt.Errorf("parse schema file: %w", err)
	}
	return &col, nil
}

func init() {
	collectionsCreateCmd.Flags().StringVarP(&collectionSchemaFile, "schema", "s", "", "path to a JSON field-definition file")
	collectionsUpdateCmd.Flags().StringVarP(&collectionSchemaFile, "schema", "s", "", "path to a JSON field-definition file")

	collectionsCmd.AddCommand(collectionsListCmd)
	collectionsCmd.AddCommand(collectionsShowCmd)
	collectionsCmd.AddCommand(collectionsCreateCmd)
	collectionsCmd.AddCommand(collectionsUpdateCmd)
	collectionsCmd.AddCommand(collectionsDeleteCmd)
}
