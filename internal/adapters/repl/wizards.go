package repl

import (
	"bufio"
	"fmt"
	"strings"

	"orderdesk/internal/app"
	"orderdesk/internal/core"
)

// handleAddress runs an interactive address editing session.
// Blank input keeps the current value for that field.
func handleAddress(reader *bufio.Reader, sess *app.Session) {
	current := sess.Order().Address
	fmt.Println("Editing delivery address. Leave a field blank to keep its current value.")

	prompt := func(label, current string) string {
		if current != "" {
			fmt.Printf("  %s [%s]: ", label, current)
		} else {
			fmt.Printf("  %s: ", label)
		}
		raw, _ := reader.ReadString('\n')
		raw = strings.TrimSpace(raw)
		if raw == "" {
			return current
		}
		return raw
	}

	a := core.Address{
		Street:       prompt("Street", current.Street),
		Number:       prompt("Number", current.Number),
		Neighborhood: prompt("Neighborhood", current.Neighborhood),
		City:         prompt("City", current.City),
		State:        prompt("State", current.State),
	}

	fmt.Print("  Apartment? (y/n): ")
	choice, _ := reader.ReadString('\n')
	if strings.HasPrefix(strings.ToLower(strings.TrimSpace(choice)), "y") {
		a.Apartment = true
		a.ApartmentNumber = prompt("Apartment number", current.ApartmentNumber)
	}

	sess.SetAddress(a)
	fmt.Println("Address updated.")
}
