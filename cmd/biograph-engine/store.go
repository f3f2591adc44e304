// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/biograph-engine/internal/store"
	"github.com/pdiddy/biograph-engine/pkg/types"
)

var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Browse and manage researched people",
	Long: `Store manages the local SQLite database of researched people. Use
subcommands to list with filters, search by name, show a full record, or
delete one.`,
}

// --- list subcommand ---

var storeListCmd = &cobra.Command{
	Use:   "list",
	Short: "List researched people with optional filters",
	Long: `List shows one page of people, filterable by the classification
metadata (era, domain, region, impact) and sortable by name, creation
time, or view count.`,
	RunE: runStoreList,
}

func runStoreList(cmd *cobra.Command, args []string) error {
	s, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	era, _ := cmd.Flags().GetString("era")
	domain, _ := cmd.Flags().GetString("domain")
	region, _ := cmd.Flags().GetString("region")
	impact, _ := cmd.Flags().GetString("impact")
	sortBy, _ := cmd.Flags().GetString("sort")
	desc, _ := cmd.Flags().GetBool("desc")
	page, _ := cmd.Flags().GetInt("page")
	pageSize, _ := cmd.Flags().GetInt("page-size")

	people, total, err := s.Query(context.Background(), store.QueryOptions{
		Filter:   types.FilterMetadata{Era: era, Domain: domain, Region: region, Impact: impact},
		SortBy:   sortBy,
		SortDesc: desc,
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		return err
	}

	printPeopleTable(people)
	fmt.Fprintf(os.Stdout, "\nPage %d (%d total)\n", page, total)
	return nil
}

// --- search subcommand ---

var storeSearchCmd = &cobra.Command{
	Use:   "search <substring>",
	Short: "Search people by name",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		people, err := s.SearchByName(context.Background(), args[0])
		if err != nil {
			return err
		}
		printPeopleTable(people)
		return nil
	},
}

// --- show subcommand ---

var storeShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print one person's full record as YAML",
	Long: `Show prints the complete stored record, timeline and citations
included, and counts the view.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		ctx := context.Background()
		person, err := s.Get(ctx, args[0])
		if err != nil {
			return err
		}
		if _, err := s.IncrementViewCount(ctx, person.ID); err != nil {
			return err
		}

		data, err := yaml.Marshal(person)
		if err != nil {
			return fmt.Errorf("encoding person: %w", err)
		}
		_, err = os.Stdout.Write(data)
		return err
	},
}

// --- delete subcommand ---

var storeDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete one person from the store",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		if err := s.Delete(context.Background(), args[0]); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Deleted %s\n", args[0])
		return nil
	},
}

// --- shared helpers ---

func openStore(cmd *cobra.Command) (*store.Store, error) {
	dataDir, _ := cmd.Flags().GetString("data-dir")
	pageSize, _ := cmd.Flags().GetInt("page-size")
	return store.Open(types.StoreConfig{DataDir: dataDir, PageSize: pageSize})
}

func printPeopleTable(people []types.Person) {
	if len(people) == 0 {
		fmt.Println("No people found.")
		return
	}

	fmt.Fprintf(os.Stdout, "%-36s  %-24s  %-12s  %-12s  %-6s  %s\n",
		"ID", "Name", "Era", "Domain", "Views", "Events")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 104))

	for _, p := range people {
		name := p.Name
		if len(name) > 24 {
			name = name[:21] + "..."
		}
		fmt.Fprintf(os.Stdout, "%-36s  %-24s  %-12s  %-12s  %-6d  %d\n",
			p.ID, name, p.FilterMetadata.Era, p.FilterMetadata.Domain, p.ViewCount, len(p.Events))
	}
}

func init() {
	storeCmd.PersistentFlags().String("data-dir", "data", "directory for the SQLite store")
	storeCmd.PersistentFlags().Int("page-size", 20, "page size for listings")

	storeListCmd.Flags().String("era", "", "filter by era")
	storeListCmd.Flags().String("domain", "", "filter by domain")
	storeListCmd.Flags().String("region", "", "filter by region")
	storeListCmd.Flags().String("impact", "", "filter by impact")
	storeListCmd.Flags().String("sort", "name", "sort field: name, created_at, or view_count")
	storeListCmd.Flags().Bool("desc", false, "sort descending")
	storeListCmd.Flags().Int("page", 1, "page number")

	storeCmd.AddCommand(storeListCmd, storeSearchCmd, storeShowCmd, storeDeleteCmd)
	rootCmd.AddCommand(storeCmd)
}
