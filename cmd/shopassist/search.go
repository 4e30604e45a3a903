package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/PabloGalante/shopassist/internal/app/intent"
	"github.com/PabloGalante/shopassist/internal/app/products"
	"github.com/PabloGalante/shopassist/internal/config"
	"github.com/PabloGalante/shopassist/internal/domain"
	"github.com/PabloGalante/shopassist/internal/observability"
)

var (
	nameStyle = lipgloss.NewStyle().Bold(true)
	dimStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	warnStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444"))
)

type searchFlags struct {
	category string
	min      string
	max      string
	inStock  bool
	asJSON   bool
}

func newSearchCmd() *cobra.Command {
	var flags searchFlags

	cmd := &cobra.Command{
		Use:   "search [query...]",
		Short: "Search the catalog once and print the matches",
		Long: `Search the catalog once and print the matches.

The query is matched case-insensitively against item names, descriptions
and categories. An empty query lists everything that passes the filters.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			observability.Setup(os.Stderr, "warn", "console")

			src, err := buildCatalog(cfg)
			if err != nil {
				return err
			}

			f := flags.criteria()
			found := products.NewService(src.provider).Search(cmd.Context(), strings.Join(args, " "), f)

			if flags.asJSON {
				return writeItemsJSON(cmd.OutOrStdout(), found)
			}
			writeItems(cmd.OutOrStdout(), found)
			return nil
		},
	}

	cmd.Flags().StringVar(&flags.category, "category", domain.CategoryAll, "category to search in")
	cmd.Flags().StringVar(&flags.min, "min", "", "minimum price")
	cmd.Flags().StringVar(&flags.max, "max", "", "maximum price")
	cmd.Flags().BoolVar(&flags.inStock, "in-stock", false, "only items in stock")
	cmd.Flags().BoolVar(&flags.asJSON, "json", false, "print matches as JSON")
	return cmd
}

func (f searchFlags) criteria() domain.FilterCriteria {
	c := domain.DefaultFilters()
	c.SetCategory(f.category)
	c.SetMinPrice(f.min)
	c.SetMaxPrice(f.max)
	c.SetInStockOnly(f.inStock)
	return c
}

func writeItems(w io.Writer, items []domain.Item) {
	if len(items) == 0 {
		fmt.Fprintln(w, intent.NoMatchText)
		return
	}

	fmt.Fprintln(w, intent.FoundText(len(items)))
	for _, it := range items {
		line := fmt.Sprintf("  %s  $%.2f  ★ %.1f  %s",
			nameStyle.Render(it.Name), it.Price, it.Rating, dimStyle.Render(it.Category))
		if !it.InStock {
			line += "  " + warnStyle.Render("out of stock")
		}
		fmt.Fprintln(w, line)
	}
}

func writeItemsJSON(w io.Writer, items []domain.Item) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(items)
}
