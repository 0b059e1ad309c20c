package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/boddenberg/crm-desk-go/internal/domain"

	"github.com/spf13/cobra"
)

const shellHelp = `Commands:
  /<text>        search as you type (debounced; a bare / clears the text)
  field <f>      set search field: all, name, email, company
  clear          clear search text and field
  sort <column>  cycle column sort: desc, asc, off
  next, prev     page navigation
  first, last    jump to first/last page
  page <n>       jump to page n
  open <id>      show a customer with contacts and notes
  back           leave the customer view
  reload         refetch the current page
  help           show this help
  quit           exit`

// newShellCmd starts the interactive list screen. Every line of input maps
// onto the coordinator, so search is debounced and pagination is bounded
// exactly as on the dashboard.
func newShellCmd(d *Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Interactive customer browser",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireSession(d); err != nil {
				return err
			}
			return runShell(cmd, d)
		},
	}
}

func runShell(cmd *cobra.Command, d *Deps) error {
	out := cmd.OutOrStdout()

	// Render pushed state: list updates arrive asynchronously when a
	// debounced search fires, errors whenever any load or mutation fails.
	unsubList := d.Store.SubscribeList(func([]domain.Customer) {
		renderPage(out, d)
	})
	defer unsubList()
	unsubErr := d.Store.SubscribeError(func(msg string) {
		if msg != "" {
			fmt.Fprintf(out, "! %s\n", msg)
		}
	})
	defer unsubErr()

	fmt.Fprintf(out, "Signed in as %s. Type 'help' for commands.\n", d.Session.CurrentUser().Name)
	d.Coordinator.Reload()

	scanner := bufio.NewScanner(cmd.InOrStdin())
	fmt.Fprint(out, "> ")
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if quit := dispatch(cmd, d, line); quit {
			return nil
		}
		fmt.Fprint(out, "> ")
	}
	return scanner.Err()
}

func dispatch(cmd *cobra.Command, d *Deps, line string) (quit bool) {
	out := cmd.OutOrStdout()

	if strings.HasPrefix(line, "/") {
		d.Coordinator.SetQueryInput(strings.TrimPrefix(line, "/"))
		return false
	}

	verb, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	switch verb {
	case "":
	case "help":
		fmt.Fprintln(out, shellHelp)
	case "field":
		d.Coordinator.SetField(arg)
	case "clear":
		d.Coordinator.ClearSearch()
	case "sort":
		if arg == "" {
			fmt.Fprintln(out, "usage: sort <column>")
			break
		}
		d.Coordinator.ToggleSort(arg)
	case "next":
		d.Coordinator.NextPage()
	case "prev":
		d.Coordinator.PrevPage()
	case "first":
		d.Coordinator.FirstPage()
	case "last":
		d.Coordinator.LastPage()
	case "page":
		n, err := parseID(arg)
		if err != nil {
			fmt.Fprintln(out, "usage: page <n>")
			break
		}
		d.Coordinator.GoToPage(int(n))
	case "open":
		id, err := parseID(arg)
		if err != nil {
			fmt.Fprintln(out, "usage: open <id>")
			break
		}
		d.Store.LoadCustomerByID(cmd.Context(), id)
		if d.Store.NotFound() {
			fmt.Fprintf(out, "Customer %d not found.\n", id)
			break
		}
		if view := d.Store.CustomerView(); view != nil {
			renderCustomerView(out, view)
		}
	case "back":
		d.Store.ClearCustomer()
		renderPage(out, d)
	case "reload":
		d.Coordinator.Reload()
	case "quit", "exit":
		return true
	default:
		fmt.Fprintf(out, "Unknown command %q. Type 'help'.\n", verb)
	}
	return false
}

func renderPage(out io.Writer, d *Deps) {
	customers := d.Store.CustomersList()
	if len(customers) == 0 {
		fmt.Fprintln(out, "No customers found.")
	}
	for _, c := range customers {
		fmt.Fprintf(out, "%6d  %-28s %-28s %-20s %s\n", c.ID, c.Name, c.Email, c.Company, c.Status)
	}

	if query := d.Store.SearchQuery(); query != "" {
		fmt.Fprintf(out, "search: %q in %s\n", query, d.Store.SearchField())
	}
	if column, dir := d.Coordinator.Sort(); column != "" {
		fmt.Fprintf(out, "sort: %s %s\n", column, dir)
	}
	fmt.Fprintf(out, "%d customers  %s\n", d.Store.TotalCustomers(), formatPages(d))
}

// formatPages renders the compact pagination window, e.g. "1 … 4 [5] 6 … 12".
func formatPages(d *Deps) string {
	current := d.Coordinator.Page()
	parts := make([]string, 0, 9)
	for _, item := range d.Coordinator.VisiblePages() {
		switch {
		case item.Gap:
			parts = append(parts, "…")
		case item.Number == current:
			parts = append(parts, fmt.Sprintf("[%d]", item.Number))
		default:
			parts = append(parts, fmt.Sprintf("%d", item.Number))
		}
	}
	return strings.Join(parts, " ")
}
