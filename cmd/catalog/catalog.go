// Package catalog prints the pricing catalog.
package catalog

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/Jeremy009/BMC/cmd/root"
	"github.com/Jeremy009/BMC/internal/catalog"
	"github.com/Jeremy009/BMC/internal/models"

	"github.com/spf13/cobra"
)

// Cmd represents the catalog command
var Cmd = &cobra.Command{
	Use:   "catalog",
	Short: "Show the pricing catalog",
	Long: `Show the entries, rentals and sales the register can sell, with their
prices, in the order they appear on reports. Products of the configured
products database are listed under sales as "achat <name>".`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := root.Container()
		if err != nil {
			return err
		}
		cat, err := c.GetCatalog(cmd.Context())
		if err != nil {
			return err
		}
		return Print(cmd.OutOrStdout(), cat, c.GetConfig().Register.CurrencySymbol)
	},
}

var sectionTitles = []struct {
	section catalog.Section
	title   string
}{
	{catalog.SectionEntries, "Entrées"},
	{catalog.SectionRentals, "Locations"},
	{catalog.SectionSales, "Ventes"},
}

// Print lists the catalog by section.
func Print(out io.Writer, cat *catalog.Catalog, currency string) error {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, s := range sectionTitles {
		items := cat.Section(s.section)
		if len(items) == 0 {
			continue
		}
		_, _ = fmt.Fprintf(tw, "%s\n", s.title)
		for _, item := range items {
			_, _ = fmt.Fprintf(tw, "  %s\t%s%s\n", item.Key, currency, models.FormatAmount(item.Price))
		}
	}
	return tw.Flush()
}
