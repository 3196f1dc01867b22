package cli

import (
	"context"
	"fmt"
)

func (a *App) listShopping(ctx context.Context) {
	entries, err := a.shoppingSvc.List(ctx)
	if err != nil {
		fmt.Fprintf(a.out, "Error: %v\n", err)
		return
	}
	if len(entries) == 0 {
		fmt.Fprintln(a.out, "Shopping list is empty")
		return
	}
	for _, e := range entries {
		flag := " "
		if e.IsCompleted {
			flag = "x"
		}
		note := ""
		if e.Note != nil {
			note = "  (" + *e.Note + ")"
		}
		fmt.Fprintf(a.out, "[%s] %s  %s  %.1f %s%s\n",
			flag, e.ID, e.ItemID, e.DesiredQuantity, e.Unit, note)
	}
}

func (a *App) addShopping(ctx context.Context) {
	itemID, err := getSimpleText(a.reader, "Item id", a.out)
	if err != nil {
		fmt.Fprintf(a.out, "Error: %v\n", err)
		return
	}
	quantity, err := GetNumber(a.reader, "Quantity", 1, a.out)
	if err != nil {
		fmt.Fprintf(a.out, "Error: %v\n", err)
		return
	}
	unit, err := getSimpleText(a.reader, "Unit (default pcs)", a.out)
	if err != nil {
		fmt.Fprintf(a.out, "Error: %v\n", err)
		return
	}
	noteText, err := getSimpleText(a.reader, "Note (optional)", a.out)
	if err != nil {
		fmt.Fprintf(a.out, "Error: %v\n", err)
		return
	}
	var note *string
	if noteText != "" {
		note = &noteText
	}

	entry, err := a.shoppingSvc.Add(ctx, itemID, quantity, unit, note)
	if err != nil {
		fmt.Fprintf(a.out, "Error: %v\n", err)
		return
	}
	fmt.Fprintf(a.out, "Added to shopping list (%s)\n", entry.ID)
}

func (a *App) setCompleted(ctx context.Context, id string, completed bool) {
	if err := a.shoppingSvc.SetCompleted(ctx, id, completed); err != nil {
		a.printEntityError(err)
		return
	}
	if completed {
		fmt.Fprintln(a.out, "Marked done")
	} else {
		fmt.Fprintln(a.out, "Marked not done")
	}
}

func (a *App) removeShopping(ctx context.Context, id string) {
	if err := a.shoppingSvc.Remove(ctx, id); err != nil {
		a.printEntityError(err)
		return
	}
	fmt.Fprintln(a.out, "Removed")
}
