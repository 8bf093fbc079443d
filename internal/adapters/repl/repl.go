package repl

import (
	"bufio"
	"context"
	"fmt"
	"strconv"
	"strings"

	"orderdesk/internal/app"
	"orderdesk/internal/core"

	"github.com/shopspring/decimal"
)

// Run starts the interactive order desk loop.
// It reads slash commands from reader and drives a single editing session
// at a time against the application service.
func Run(ctx context.Context, svc *app.Service, reader *bufio.Reader) {
	fmt.Println("Order Desk")
	fmt.Println("Compose and save orders against the store backend. Type /help for commands.")
	fmt.Println(strings.Repeat("-", 70))

	if err := svc.RefreshCatalog(ctx); err != nil {
		fmt.Printf("Warning: catalog refresh failed: %v\n", err)
		fmt.Println("Searches will fall back to remote lookups only.")
	}

	var sess *app.Session

	errExit := fmt.Errorf("exit")

	requireSession := func() bool {
		if sess == nil {
			fmt.Println("No open order. Use /new or /edit <id> first.")
			return false
		}
		return true
	}

	parseIndex := func(raw string) (int, bool) {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			fmt.Printf("Invalid line number: %s\n", raw)
			return 0, false
		}
		return n - 1, true
	}

	parseAmount := func(raw string) (decimal.Decimal, bool) {
		d, err := decimal.NewFromString(strings.ReplaceAll(raw, ",", "."))
		if err != nil || d.IsNegative() {
			fmt.Printf("Invalid amount: %s\n", raw)
			return decimal.Zero, false
		}
		return d, true
	}

	dispatchSlash := func(input string) error {
		tokens := strings.Fields(strings.TrimPrefix(input, "/"))
		if len(tokens) == 0 {
			return nil
		}
		cmd := strings.ToLower(tokens[0])
		args := tokens[1:]

		switch cmd {
		case "new":
			sess = svc.NewSession()
			fmt.Println("New order draft opened.")
			printOrder(sess)

		case "edit":
			if len(args) < 1 {
				fmt.Println("Usage: /edit <order-id>")
				return nil
			}
			id, err := strconv.Atoi(args[0])
			if err != nil {
				fmt.Printf("Invalid order id: %s\n", args[0])
				return nil
			}
			loaded, err := svc.EditSession(ctx, id)
			if err != nil {
				return err
			}
			sess = loaded
			fmt.Printf("Editing order #%d.\n", id)
			printOrder(sess)

		case "customer", "c":
			if !requireSession() {
				return nil
			}
			sess.SearchCustomers(ctx, strings.Join(args, " "))
			printCustomerResults(sess.CustomerResults())

		case "pick":
			if !requireSession() {
				return nil
			}
			if len(args) < 1 {
				fmt.Println("Usage: /pick <result-number>")
				return nil
			}
			index, ok := parseIndex(args[0])
			if !ok {
				return nil
			}
			results := sess.CustomerResults()
			if index >= len(results) {
				fmt.Printf("No result #%d. Run /customer <query> first.\n", index+1)
				return nil
			}
			if err := sess.SelectCustomer(ctx, results[index]); err != nil {
				return err
			}
			printOrder(sess)

		case "name":
			if !requireSession() {
				return nil
			}
			if err := sess.SetCustomerName(strings.Join(args, " ")); err != nil {
				return err
			}
			printOrder(sess)

		case "phone":
			if !requireSession() {
				return nil
			}
			if len(args) < 1 {
				fmt.Println("Usage: /phone <number>")
				return nil
			}
			sess.SetCustomerPhone(strings.Join(args, ""))
			printOrder(sess)

		case "product", "p":
			if !requireSession() {
				return nil
			}
			sess.SearchProducts(ctx, strings.Join(args, " "))
			printProductResults(sess.ProductResults())

		case "add":
			if !requireSession() {
				return nil
			}
			if len(args) < 1 {
				fmt.Println("Usage: /add <result-number>")
				return nil
			}
			index, ok := parseIndex(args[0])
			if !ok {
				return nil
			}
			results := sess.ProductResults()
			if index >= len(results) {
				fmt.Printf("No result #%d. Run /product <query> first.\n", index+1)
				return nil
			}
			sess.AddProduct(results[index])
			printOrder(sess)

		case "qty":
			if !requireSession() {
				return nil
			}
			if len(args) < 2 {
				fmt.Println("Usage: /qty <line> <quantity>")
				return nil
			}
			index, ok := parseIndex(args[0])
			if !ok {
				return nil
			}
			qty, err := strconv.Atoi(args[1])
			if err != nil || qty < 1 {
				fmt.Printf("Invalid quantity: %s\n", args[1])
				return nil
			}
			if err := sess.UpdateItem(index, core.ItemPatch{Quantity: &qty}); err != nil {
				return err
			}
			printOrder(sess)

		case "price":
			if !requireSession() {
				return nil
			}
			if len(args) < 2 {
				fmt.Println("Usage: /price <line> <unit-price>")
				return nil
			}
			index, ok := parseIndex(args[0])
			if !ok {
				return nil
			}
			price, ok := parseAmount(args[1])
			if !ok {
				return nil
			}
			if err := sess.UpdateItem(index, core.ItemPatch{UnitPrice: &price}); err != nil {
				return err
			}
			printOrder(sess)

		case "note":
			if !requireSession() {
				return nil
			}
			if len(args) < 1 {
				fmt.Println("Usage: /note <line> [text]")
				return nil
			}
			index, ok := parseIndex(args[0])
			if !ok {
				return nil
			}
			note := strings.Join(args[1:], " ")
			if err := sess.UpdateItem(index, core.ItemPatch{Note: &note}); err != nil {
				return err
			}
			printOrder(sess)

		case "remove", "rm":
			if !requireSession() {
				return nil
			}
			if len(args) < 1 {
				fmt.Println("Usage: /remove <line>")
				return nil
			}
			index, ok := parseIndex(args[0])
			if !ok {
				return nil
			}
			if err := sess.RemoveItem(index); err != nil {
				return err
			}
			printOrder(sess)

		case "delivery":
			if !requireSession() {
				return nil
			}
			if len(args) < 1 {
				fmt.Println("Usage: /delivery on|off")
				return nil
			}
			switch strings.ToLower(args[0]) {
			case "on":
				sess.SetDelivery(ctx, true)
			case "off":
				sess.SetDelivery(ctx, false)
			default:
				fmt.Println("Usage: /delivery on|off")
				return nil
			}
			printOrder(sess)

		case "addr", "address":
			if !requireSession() {
				return nil
			}
			handleAddress(reader, sess)
			printOrder(sess)

		case "discount":
			if !requireSession() {
				return nil
			}
			if len(args) < 1 {
				fmt.Println("Usage: /discount <amount>")
				return nil
			}
			d, ok := parseAmount(args[0])
			if !ok {
				return nil
			}
			sess.SetDiscount(d)
			printTotals(sess)

		case "fee":
			if !requireSession() {
				return nil
			}
			if len(args) < 1 {
				fmt.Println("Usage: /fee <amount>")
				return nil
			}
			d, ok := parseAmount(args[0])
			if !ok {
				return nil
			}
			sess.SetDeliveryFee(d)
			printTotals(sess)

		case "paid":
			if !requireSession() {
				return nil
			}
			if len(args) < 1 {
				fmt.Println("Usage: /paid <amount>|full|half")
				return nil
			}
			switch strings.ToLower(args[0]) {
			case "full":
				sess.SetPaidFull()
			case "half":
				sess.SetPaidHalf()
			default:
				d, ok := parseAmount(args[0])
				if !ok {
					return nil
				}
				sess.SetAmountPaid(d)
			}
			printTotals(sess)

		case "status":
			if !requireSession() {
				return nil
			}
			if len(args) < 1 {
				fmt.Println("Usage: /status <" + statusUsage() + ">")
				return nil
			}
			status, err := core.ParseStatus(strings.Join(args, " "))
			if err != nil {
				return err
			}
			if err := sess.SetStatus(status); err != nil {
				return err
			}
			fmt.Printf("Status: %s\n", status.Label())

		case "date":
			if !requireSession() {
				return nil
			}
			if len(args) < 1 {
				fmt.Println("Usage: /date <YYYY-MM-DD>")
				return nil
			}
			sess.SetDeliveryDate(args[0])
			printOrder(sess)

		case "time":
			if !requireSession() {
				return nil
			}
			if len(args) < 1 {
				fmt.Println("Usage: /time <HH:MM>")
				return nil
			}
			sess.SetDeliveryTime(args[0])
			printOrder(sess)

		case "show", "totals":
			if !requireSession() {
				return nil
			}
			printOrder(sess)

		case "save":
			if !requireSession() {
				return nil
			}
			saved, err := sess.Save(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("Order SAVED. ID: %d, Status: %s\n", saved.ID, saved.Status.Label())
			printOrder(sess)

		case "message", "msg":
			if !requireSession() {
				return nil
			}
			body, err := sess.ComposeMessage(ctx)
			if err != nil {
				return err
			}
			target, err := sess.MessageURL(ctx)
			if err != nil {
				return err
			}
			fmt.Println()
			fmt.Println(body)
			fmt.Printf("\nSend: %s\n", target)

		case "print":
			if !requireSession() {
				return nil
			}
			kitchen := len(args) > 0 && strings.EqualFold(args[0], "kitchen")
			fmt.Printf("Print: %s\n", sess.PrintURL(kitchen))

		case "orders":
			filter := core.OrderFilter{Search: strings.Join(args, " ")}
			orders, err := svc.ListOrders(ctx, filter)
			if err != nil {
				return err
			}
			printOrderList(orders)

		case "refresh":
			if err := svc.RefreshCatalog(ctx); err != nil {
				return err
			}
			fmt.Printf("Catalog refreshed: %d customers, %d products.\n",
				svc.Customers().Len(), svc.Products().Len())

		case "help", "h":
			printHelp()

		case "exit", "quit", "e", "q":
			return errExit

		default:
			fmt.Printf("Unknown command: /%s  (type /help for all commands)\n", cmd)
		}
		return nil
	}

	for {
		fmt.Print("\n> ")
		input, _ := reader.ReadString('\n')
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		if !strings.HasPrefix(input, "/") {
			fmt.Println("Commands start with / — type /help.")
			continue
		}
		if err := dispatchSlash(input); err != nil {
			if err == errExit {
				fmt.Println("Goodbye!")
				break
			}
			fmt.Printf("Error: %v\n", err)
		}
	}
}

func statusUsage() string {
	keys := make([]string, 0, 3)
	for _, s := range core.Statuses() {
		keys = append(keys, string(s))
	}
	return strings.Join(keys, "|")
}
