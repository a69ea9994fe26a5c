package main

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/RoyceAzure/lab/storefront/internal/domain/catalog"
	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/RoyceAzure/lab/storefront/internal/domain/pricing"
)

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
}

func renderMenu(w io.Writer, items []model.CatalogItem, date time.Time) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tNAME\tCATEGORY\tPRICE\tRATING\tPOPULAR\tSPECIAL")
	for _, item := range items {
		special := "-"
		if catalog.IsOnSpecial(item, date) {
			special = pricing.DiscountedPrice(item.Price).StringFixed(2)
		}
		popular := ""
		if item.Popular {
			popular = "yes"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			item.ID, item.Name, item.Category, item.Price.StringFixed(2), item.Rating.StringFixed(1), popular, special)
	}
	return tw.Flush()
}

func renderSummary(tw *tabwriter.Writer, s pricing.Summary) {
	fmt.Fprintf(tw, "\t\t\tSubtotal\t%s\n", s.Subtotal.StringFixed(2))
	fmt.Fprintf(tw, "\t\t\tDelivery\t%s\n", s.DeliveryFee.StringFixed(2))
	fmt.Fprintf(tw, "\t\t\tTax\t%s\n", s.Tax.StringFixed(2))
	fmt.Fprintf(tw, "\t\t\tTotal\t%s\n", s.Total.StringFixed(2))
}

func renderCart(w io.Writer, lines []model.CartLine, summary pricing.Summary) error {
	if len(lines) == 0 {
		_, err := fmt.Fprintln(w, "cart is empty")
		return err
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tNAME\tQTY\tUNIT\tAMOUNT")
	for _, l := range lines {
		unit := l.UnitPrice.StringFixed(2)
		if l.Discounted {
			unit += " (special)"
		}
		fmt.Fprintf(tw, "%d\t%s\t%d\t%s\t%s\n", l.ItemID, l.Name, l.Quantity, unit, l.LineTotal.StringFixed(2))
	}
	renderSummary(tw, summary)
	return tw.Flush()
}

func renderOrders(w io.Writer, orders []model.Order) error {
	if len(orders) == 0 {
		_, err := fmt.Fprintln(w, "no orders yet")
		return err
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tDATE\tITEMS\tTOTAL\tSTATUS\tPAYMENT")
	for _, o := range orders {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\t%s\n",
			o.ID, o.Date.Local().Format("2006-01-02 15:04"), o.ItemCount(), o.Total.StringFixed(2), o.Status, o.PaymentMethod)
	}
	return tw.Flush()
}

func renderOrder(w io.Writer, o model.Order) error {
	fmt.Fprintf(w, "Order %s  %s  %s  %s\n", o.ID, o.Date.Local().Format("2006-01-02 15:04"), o.Status, o.PaymentMethod)
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tNAME\tQTY\tUNIT\tAMOUNT")
	for _, item := range o.Items {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%s\t%s\n",
			item.ItemID, item.Name, item.Quantity, item.Price.StringFixed(2), item.Amount().StringFixed(2))
	}
	renderSummary(tw, pricing.SummarizeOrder(o))
	return tw.Flush()
}
