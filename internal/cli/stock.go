package cli

import (
	"context"
	"errors"
	"fmt"

	"familystock/internal/shared"
)

func (a *App) listStock(ctx context.Context) {
	items, err := a.stockSvc.List(ctx, true)
	if err != nil {
		fmt.Fprintf(a.out, "Error: %v\n", err)
		return
	}
	if len(items) == 0 {
		fmt.Fprintln(a.out, "No stock items yet")
		return
	}
	for _, it := range items {
		flag := " "
		if it.IsArchived {
			flag = "A"
		}
		category := ""
		if it.Category != nil {
			category = " [" + *it.Category + "]"
		}
		fmt.Fprintf(a.out, "%s %s  %s%s  %.1f/%.1f\n",
			flag, it.ID, it.Name, category, it.QuantityInStock, it.QuantityFullStock)
	}
}

func (a *App) addStock(ctx context.Context) {
	name, err := getSimpleText(a.reader, "Item name", a.out)
	if err != nil {
		fmt.Fprintf(a.out, "Error: %v\n", err)
		return
	}
	categoryText, err := getSimpleText(a.reader, "Category (optional)", a.out)
	if err != nil {
		fmt.Fprintf(a.out, "Error: %v\n", err)
		return
	}
	var category *string
	if categoryText != "" {
		category = &categoryText
	}
	full, err := GetNumber(a.reader, "Full stock quantity", 1, a.out)
	if err != nil {
		fmt.Fprintf(a.out, "Error: %v\n", err)
		return
	}
	inStock, err := GetNumber(a.reader, "Currently in stock", full, a.out)
	if err != nil {
		fmt.Fprintf(a.out, "Error: %v\n", err)
		return
	}

	item, err := a.stockSvc.Add(ctx, name, category, inStock, full)
	if err != nil {
		fmt.Fprintf(a.out, "Error: %v\n", err)
		return
	}
	fmt.Fprintf(a.out, "Added %s (%s)\n", item.Name, item.ID)
}

func (a *App) setStock(ctx context.Context, id string) {
	full, err := GetNumber(a.reader, "Full stock quantity", 1, a.out)
	if err != nil {
		fmt.Fprintf(a.out, "Error: %v\n", err)
		return
	}
	inStock, err := GetNumber(a.reader, "Currently in stock", full, a.out)
	if err != nil {
		fmt.Fprintf(a.out, "Error: %v\n", err)
		return
	}

	if err := a.stockSvc.SetQuantities(ctx, id, inStock, full); err != nil {
		a.printEntityError(err)
		return
	}
	fmt.Fprintln(a.out, "Updated")
}

func (a *App) setArchived(ctx context.Context, id string, archived bool) {
	if err := a.stockSvc.SetArchived(ctx, id, archived); err != nil {
		a.printEntityError(err)
		return
	}
	if archived {
		fmt.Fprintln(a.out, "Archived")
	} else {
		fmt.Fprintln(a.out, "Unarchived")
	}
}

func (a *App) printEntityError(err error) {
	switch {
	case errors.Is(err, shared.ErrorNotFound):
		fmt.Fprintln(a.out, "No such entry")
	default:
		fmt.Fprintf(a.out, "Error: %v\n", err)
	}
}
