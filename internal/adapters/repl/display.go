package repl

import (
	"fmt"
	"strings"

	"orderdesk/internal/app"
	"orderdesk/internal/core"
)

func printCustomerResults(results []core.Customer) {
	if len(results) == 0 {
		fmt.Println("No customers matched.")
		return
	}
	fmt.Println()
	fmt.Printf("  %-4s %-30s %-16s %s\n", "#", "NAME", "PHONE", "CITY")
	fmt.Println(strings.Repeat("-", 70))
	for i, c := range results {
		fmt.Printf("  %-4d %-30s %-16s %s\n", i+1, c.Name, c.CellPhone, c.Address.City)
	}
	fmt.Println("Use /pick <#> to select.")
}

func printProductResults(results []core.Product) {
	if len(results) == 0 {
		fmt.Println("No products matched.")
		return
	}
	fmt.Println()
	fmt.Printf("  %-4s %-34s %-6s %12s\n", "#", "NAME", "UNIT", "PRICE")
	fmt.Println(strings.Repeat("-", 62))
	for i, p := range results {
		fmt.Printf("  %-4d %-34s %-6s %12s\n",
			i+1, p.Name, p.ResolveUnitType(), core.FormatMoney(p.Price))
	}
	fmt.Println("Use /add <#> to add to the order.")
}

func printOrder(sess *app.Session) {
	o := sess.Order()

	header := "(new order)"
	if o.ID != 0 {
		header = fmt.Sprintf("Order #%d", o.ID)
	}
	fmt.Println()
	fmt.Println(strings.Repeat("-", 70))
	fmt.Printf("  %s — %s\n", header, o.Status.Label())
	fmt.Printf("  Customer:  %s", valueOr(o.CustomerName, "(none)"))
	if o.CustomerPhone != "" {
		fmt.Printf("  (%s)", o.CustomerPhone)
	}
	fmt.Println()
	if o.IsDelivery {
		fmt.Printf("  Delivery:  %s %s\n", o.DeliveryDate, o.DeliveryTime)
		if o.Address.Street != "" {
			fmt.Printf("  Address:   %s, %s — %s, %s\n",
				o.Address.Street, o.Address.Number, o.Address.Neighborhood, o.Address.City)
		}
	} else {
		fmt.Printf("  Pickup:    %s %s\n", o.DeliveryDate, o.DeliveryTime)
	}
	fmt.Println(strings.Repeat("-", 70))

	items := o.Ledger.Items()
	if len(items) == 0 {
		fmt.Println("  (no items)")
	} else {
		fmt.Printf("  %-4s %-28s %-6s %5s %10s %12s\n", "#", "PRODUCT", "UNIT", "QTY", "PRICE", "TOTAL")
		fmt.Println(strings.Repeat("-", 70))
		for i, it := range items {
			fmt.Printf("  %-4d %-28s %-6s %5d %10s %12s\n",
				i+1, it.ProductName, it.UnitType, it.Quantity,
				core.FormatMoney(it.UnitPrice), core.FormatMoney(it.LineTotal()))
			if it.Note != "" {
				fmt.Printf("       obs: %s\n", it.Note)
			}
		}
	}
	fmt.Println(strings.Repeat("-", 70))
	printTotals(sess)
}

func printTotals(sess *app.Session) {
	o := sess.Order()
	t := sess.Totals()
	fmt.Printf("  %-46s %12s\n", "SUBTOTAL", core.FormatMoney(t.Subtotal))
	if !o.Discount.IsZero() {
		fmt.Printf("  %-46s %12s\n", "DISCOUNT", core.FormatMoney(o.Discount))
	}
	if o.IsDelivery && !o.DeliveryFee.IsZero() {
		fmt.Printf("  %-46s %12s\n", "DELIVERY FEE", core.FormatMoney(o.DeliveryFee))
	}
	fmt.Printf("  %-46s %12s\n", "TOTAL", core.FormatMoney(t.Total))
	if !o.AmountPaid.IsZero() {
		fmt.Printf("  %-46s %12s\n", "PAID", core.FormatMoney(o.AmountPaid))
		fmt.Printf("  %-46s %12s\n", "REMAINING", core.FormatMoney(t.Remaining))
	}
}

func printOrderList(orders []core.OrderSummary) {
	fmt.Println()
	fmt.Println(strings.Repeat("=", 76))
	fmt.Println("  ORDERS")
	fmt.Println(strings.Repeat("=", 76))
	if len(orders) == 0 {
		fmt.Println("  No orders found.")
		fmt.Println(strings.Repeat("=", 76))
		return
	}
	fmt.Printf("  %-6s %-26s %-18s %-12s %10s\n", "ID", "CUSTOMER", "STATUS", "DATE", "TOTAL")
	fmt.Println(strings.Repeat("-", 76))
	for _, o := range orders {
		fmt.Printf("  %-6d %-26s %-18s %-12s %10s\n",
			o.ID, o.CustomerName, o.Status.Label(), o.DeliveryDate, core.FormatMoney(o.Total))
	}
	fmt.Println(strings.Repeat("=", 76))
}

func printHelp() {
	fmt.Println()
	fmt.Println("ORDER DESK — COMMANDS")
	fmt.Println(strings.Repeat("=", 62))
	fmt.Println()
	fmt.Println("  ORDER")
	fmt.Println("  /new                             Open a blank order draft")
	fmt.Println("  /edit <id>                       Load an existing order for editing")
	fmt.Println("  /show                            Show the current order and totals")
	fmt.Println("  /save                            Validate and persist the order")
	fmt.Println()
	fmt.Println("  CUSTOMER")
	fmt.Println("  /customer <query>                Search customers")
	fmt.Println("  /pick <#>                        Select a search result")
	fmt.Println("  /name <text>                     Set customer name manually")
	fmt.Println("  /phone <number>                  Set customer phone")
	fmt.Println()
	fmt.Println("  ITEMS")
	fmt.Println("  /product <query>                 Search products")
	fmt.Println("  /add <#>                         Add a search result to the order")
	fmt.Println("  /qty <line> <n>                  Change line quantity")
	fmt.Println("  /price <line> <value>            Override line unit price")
	fmt.Println("  /note <line> [text]              Set or clear a line note")
	fmt.Println("  /remove <line>                   Remove a line")
	fmt.Println()
	fmt.Println("  DELIVERY & PAYMENT")
	fmt.Println("  /delivery on|off                 Toggle delivery vs pickup")
	fmt.Println("  /addr                            Edit the delivery address (interactive)")
	fmt.Println("  /date <YYYY-MM-DD>               Set delivery date")
	fmt.Println("  /time <HH:MM>                    Set delivery time")
	fmt.Println("  /discount <amount>               Set discount")
	fmt.Println("  /fee <amount>                    Set delivery fee")
	fmt.Println("  /paid <amount>|full|half         Record amount paid")
	fmt.Println("  /status <value>                  Set order status")
	fmt.Println()
	fmt.Println("  OUTBOUND")
	fmt.Println("  /message                         Compose the customer message + link")
	fmt.Println("  /print [kitchen]                 Print URL for the current order")
	fmt.Println()
	fmt.Println("  SESSION")
	fmt.Println("  /orders [search]                 List saved orders")
	fmt.Println("  /refresh                         Reload customer/product caches")
	fmt.Println("  /help                            Show this help")
	fmt.Println("  /exit                            Exit")
	fmt.Println(strings.Repeat("=", 62))
}

func valueOr(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
