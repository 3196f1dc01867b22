package cli

import (
	"context"
	"fmt"

	"familystock/internal/services"
)

func (a *App) listReceipts(ctx context.Context) {
	list, err := a.receiptSvc.List(ctx)
	if err != nil {
		fmt.Fprintf(a.out, "Error: %v\n", err)
		return
	}
	if len(list) == 0 {
		fmt.Fprintln(a.out, "No receipts yet")
		return
	}
	for _, r := range list {
		amount := ""
		if r.Amount != nil {
			amount = fmt.Sprintf("  %.2f", *r.Amount)
		}
		fmt.Fprintf(a.out, "%s  %s  %s%s\n",
			r.ID, r.Timestamp.Format("2006-01-02 15:04"), r.ShopName, amount)
		for _, it := range r.Items {
			fmt.Fprintf(a.out, "    %s  %.1f\n", it.ItemName, it.Quantity)
		}
	}
}

// addReceipt collects the shop name, an optional total and then line items
// until the user enters an empty name.
func (a *App) addReceipt(ctx context.Context) {
	shopName, err := getSimpleText(a.reader, "Shop name", a.out)
	if err != nil {
		fmt.Fprintf(a.out, "Error: %v\n", err)
		return
	}
	total, err := GetNumber(a.reader, "Total amount (optional)", 0, a.out)
	if err != nil {
		fmt.Fprintf(a.out, "Error: %v\n", err)
		return
	}
	var amount *float64
	if total != 0 {
		amount = &total
	}

	var lines []services.ReceiptLine
	for {
		name, err := getSimpleText(a.reader, "Item name (empty to finish)", a.out)
		if err != nil {
			fmt.Fprintf(a.out, "Error: %v\n", err)
			return
		}
		if name == "" {
			break
		}
		quantity, err := GetNumber(a.reader, "Quantity", 1, a.out)
		if err != nil {
			fmt.Fprintf(a.out, "Error: %v\n", err)
			return
		}
		lines = append(lines, services.ReceiptLine{Name: name, Quantity: quantity})
	}

	receipt, err := a.receiptSvc.Add(ctx, shopName, amount, lines)
	if err != nil {
		fmt.Fprintf(a.out, "Error: %v\n", err)
		return
	}
	fmt.Fprintf(a.out, "Receipt saved (%s), %d items\n", receipt.ID, len(receipt.Items))
}

func (a *App) deleteReceipt(ctx context.Context, id string) {
	if err := a.receiptSvc.Delete(ctx, id); err != nil {
		a.printEntityError(err)
		return
	}
	fmt.Fprintln(a.out, "Deleted")
}
