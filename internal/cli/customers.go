package cli

import (
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/boddenberg/crm-desk-go/internal/domain"

	"github.com/spf13/cobra"
)

func newCustomersCmd(d *Deps) *cobra.Command {
	var (
		page, size      int
		search, field   string
		sortBy, sortDir string
	)

	cmd := &cobra.Command{
		Use:   "customers",
		Short: "List customers",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireSession(d); err != nil {
				return err
			}
			if size <= 0 {
				size = d.Config.PageSize
			}

			d.Store.LoadList(cmd.Context(), domain.ListQuery{
				Page:        page,
				Size:        size,
				Search:      search,
				SearchField: field,
				SortBy:      sortBy,
				SortDir:     sortDir,
			})
			if msg := d.Store.Error(); msg != "" {
				return fmt.Errorf("%s", msg)
			}

			renderCustomerList(cmd.OutOrStdout(), d, page, size)
			return nil
		},
	}

	cmd.Flags().IntVar(&page, "page", 1, "page number (1-based)")
	cmd.Flags().IntVar(&size, "size", 0, "page size")
	cmd.Flags().StringVar(&search, "search", "", "search text")
	cmd.Flags().StringVar(&field, "field", domain.SearchFieldAll, "search field (all, name, email, company)")
	cmd.Flags().StringVar(&sortBy, "sort", "", "sort column")
	cmd.Flags().StringVar(&sortDir, "dir", "", "sort direction (asc, desc)")
	return cmd
}

func renderCustomerList(out io.Writer, d *Deps, page, size int) {
	customers := d.Store.CustomersList()
	total := d.Store.TotalCustomers()

	if len(customers) == 0 {
		fmt.Fprintln(out, "No customers found.")
		return
	}
	for _, c := range customers {
		fmt.Fprintf(out, "%6d  %-28s %-28s %-20s %s\n", c.ID, c.Name, c.Email, c.Company, c.Status)
	}

	pages := int(math.Ceil(float64(total) / float64(size)))
	if pages < 1 {
		pages = 1
	}
	fmt.Fprintf(out, "\n%d customers, page %d of %d\n", total, page, pages)
}

func newCustomerCmd(d *Deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "customer",
		Short: "Inspect and manage a single customer",
	}
	cmd.AddCommand(
		newCustomerGetCmd(d),
		newCustomerAddCmd(d),
		newCustomerUpdateCmd(d),
		newCustomerDeleteCmd(d),
	)
	return cmd
}

func newCustomerGetCmd(d *Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show a customer with contacts and notes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireSession(d); err != nil {
				return err
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			d.Store.LoadCustomerByID(cmd.Context(), id)
			defer d.Store.ClearCustomer()

			if d.Store.NotFound() {
				return fmt.Errorf("customer %d not found", id)
			}
			view := d.Store.CustomerView()
			if view == nil {
				if msg := d.Store.Error(); msg != "" {
					return fmt.Errorf("%s", msg)
				}
				return fmt.Errorf("customer %d could not be loaded", id)
			}

			renderCustomerView(cmd.OutOrStdout(), view)
			if msg := d.Store.Error(); msg != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "\nwarning: %s\n", msg)
			}
			return nil
		},
	}
}

func renderCustomerView(out io.Writer, view *domain.CustomerView) {
	fmt.Fprintf(out, "#%d %s\n", view.ID, view.Name)
	fmt.Fprintf(out, "  Email:   %s\n", view.Email)
	fmt.Fprintf(out, "  Phone:   %s\n", view.Phone)
	if view.Address != "" {
		fmt.Fprintf(out, "  Address: %s\n", view.Address)
	}
	fmt.Fprintf(out, "  Company: %s\n", view.Company)
	fmt.Fprintf(out, "  Status:  %s\n", view.Status)

	fmt.Fprintf(out, "\nContacts (%d)\n", len(view.Contacts))
	for _, c := range view.Contacts {
		fmt.Fprintf(out, "  %6d  %-24s %-20s %-28s %s\n", c.ID, c.Name, c.Position, c.Email, c.Phone)
	}

	fmt.Fprintf(out, "\nNotes (%d)\n", len(view.Notes))
	for _, n := range view.Notes {
		fmt.Fprintf(out, "  %6d  [%s] %s\n", n.ID, n.CreatedAt, n.Title)
		fmt.Fprintf(out, "          %s\n", n.Content)
	}
}

func customerDetailFlags(cmd *cobra.Command, details *domain.CustomerDetails) {
	cmd.Flags().StringVar(&details.Name, "name", "", "customer name")
	cmd.Flags().StringVar(&details.Email, "email", "", "customer email")
	cmd.Flags().StringVar(&details.Phone, "phone", "", "customer phone")
	cmd.Flags().StringVar(&details.Address, "address", "", "customer address")
	cmd.Flags().StringVar(&details.Company, "company", "", "customer company")
	cmd.Flags().StringVar(&details.Status, "status", "Active", "customer status")
}

func newCustomerAddCmd(d *Deps) *cobra.Command {
	var details domain.CustomerDetails

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a customer",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireSession(d); err != nil {
				return err
			}

			customer, err := d.Customers.Add(cmd.Context(), &details)
			if err != nil {
				return fmt.Errorf("%s", d.Store.Error())
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created customer #%d %s\n", customer.ID, customer.Name)
			return nil
		},
	}

	customerDetailFlags(cmd, &details)
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newCustomerUpdateCmd(d *Deps) *cobra.Command {
	var details domain.CustomerDetails

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a customer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireSession(d); err != nil {
				return err
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			customer, err := d.Customers.Update(cmd.Context(), id, &details)
			if err != nil {
				return fmt.Errorf("%s", d.Store.Error())
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated customer #%d %s\n", customer.ID, customer.Name)
			return nil
		},
	}

	customerDetailFlags(cmd, &details)
	return cmd
}

func newCustomerDeleteCmd(d *Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a customer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireSession(d); err != nil {
				return err
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			if err := d.Customers.Delete(cmd.Context(), id); err != nil {
				return fmt.Errorf("%s", d.Store.Error())
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted customer #%d\n", id)
			return nil
		},
	}
}

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", arg)
	}
	return id, nil
}
