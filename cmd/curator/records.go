package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wanjohi/go-curator/core/api"
	"github.com/wanjohi/go-curator/core/console"
)

var (
	recordsPage    int
	recordsPerPage int
	recordsSearch  string
	recordsFilter  []string
)

var recordsCmd = &cobra.Command{
	Use:   "records",
	Short: "Manage the records of a collection",
}

var recordsListCmd = &cobra.Command{
	Use:   "list <collection>",
	Short: "List records of a collection",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		filter, err := parseFilterFlags(recordsFilter)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
		defer cancel()

		page, err := client.Records(ctx, args[0], api.ListOptions{
			Page:     recordsPage,
			PageSize: recordsPerPage,
			Search:   recordsSearch,
			Filter:   filter,
		})
		if err != nil {
			return err
		}
		return printJSON(page)
	},
}

var recordsCreateCmd = &cobra.Command{
	Use:   "create <collection> [field=value ...]",
	Short: "Create a record from field=value pairs",
	Long: `Create a record. Values are form values and are normalized against the
collection schema, so "price=12.5" becomes the number 12.5 when price is a
number field. Invalid input is rejected before anything is sent.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		form, err := parseFieldArgs(args[1:])
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
		defer cancel()

		rec, err := client.CreateRecord(ctx, args[0], form)
		if err != nil {
			return describeValidation(err)
		}
		return printJSON(rec)
	},
}

var recordsUpdateCmd = &cobra.Command{
	Use:   "update <collection> <id> [field=value ...]",
	Short: "Update a record from field=value pairs",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		form, err := parseFieldArgs(args[2:])
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
		defer cancel()

		rec, err := client.UpdateRecord(ctx, args[0], args[1], form)
		if err != nil {
			return describeValidation(err)
		}
		return printJSON(rec)
	},
}

var recordsDeleteCmd = &cobra.Command{
	Use:   "delete <collection> <id>",
	Short: "Delete a record",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
		defer cancel()

		if err := client.DeleteRecord(ctx, args[0], args[1]); err != nil {
			return err
		}
		fmt.Printf("deleted record %s/%s\n", args[0], args[1])
		return nil
	},
}

// parseFieldArgs turns field=value arguments into a form-value map. Values
// stay strings; schema normalization decides their wire type.
func parseFieldArgs(args []string) (map[string]any, error) {
	form := make(map[string]any, len(args))
	for _, arg := range args {
		name, value, ok := strings.Cut(arg, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid field argument %q, expected field=value", arg)
		}
		form[name] = value
	}
	return form, nil
}

// parseFilterFlags turns repeated --filter key=value flags into a filter map.
func parseFilterFlags(flags []string) (map[string]string, error) {
	if len(flags) == 0 {
		return nil, nil
	}
	filter := make(map[string]string, len(flags))
	for _, f := range flags {
		key, value, ok := strings.Cut(f, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid filter %q, expected key=value", f)
		}
		filter[key] = value
	}
	return filter, nil
}

// describeValidation renders per-field validation errors readably instead
// of as one opaque error line.
func describeValidation(err error) error {
	var verr *console.ValidationError
	if !errors.As(err, &verr) {
		return err
	}
	out, mErr := json.MarshalIndent(verr.Fields, "", "  ")
	if mErr != nil {
		return err
	}
	return fmt.Errorf("validation failed:\n%s", out)
}

func init() {
	recordsListCmd.Flags().IntVar(&recordsPage, "page", 1, "page to fetch")
	recordsListCmd.Flags().IntVar(&recordsPerPage, "per-page", 30, "records per page")
	recordsListCmd.Flags().StringVar(&recordsSearch, "search", "", "full-text search term")
	recordsListCmd.Flags().StringArrayVar(&recordsFilter, "filter", nil, "field filter as key=value, repeatable")

	recordsCmd.AddCommand(recordsListCmd)
	recordsCmd.AddCommand(recordsCreateCmd)
	recordsCmd.AddCommand(recordsUpdateCmd)
	recordsCmd.AddCommand(recordsDeleteCmd)
}
