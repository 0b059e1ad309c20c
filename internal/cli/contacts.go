package cli

import (
	"fmt"

	"github.com/boddenberg/crm-desk-go/internal/domain"

	"github.com/spf13/cobra"
)

func newContactCmd(d *Deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "contact",
		Short: "Manage a customer's contacts",
	}
	cmd.AddCommand(
		newContactAddCmd(d),
		newContactUpdateCmd(d),
		newContactDeleteCmd(d),
	)
	return cmd
}

func contactFlags(cmd *cobra.Command, contact *domain.Contact) {
	cmd.Flags().StringVar(&contact.Name, "name", "", "contact name")
	cmd.Flags().StringVar(&contact.Position, "position", "", "contact position")
	cmd.Flags().StringVar(&contact.Email, "email", "", "contact email")
	cmd.Flags().StringVar(&contact.Phone, "phone", "", "contact phone")
}

func newContactAddCmd(d *Deps) *cobra.Command {
	var contact domain.Contact

	cmd := &cobra.Command{
		Use:   "add <customer-id>",
		Short: "Add a contact to a customer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireSession(d); err != nil {
				return err
			}
			customerID, err := parseID(args[0])
			if err != nil {
				return err
			}
			contact.CustomerID = customerID

			saved, err := d.Contacts.Add(cmd.Context(), &contact)
			if err != nil {
				return fmt.Errorf("%s", d.Store.Error())
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added contact #%d %s\n", saved.ID, saved.Name)
			return nil
		},
	}

	contactFlags(cmd, &contact)
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newContactUpdateCmd(d *Deps) *cobra.Command {
	var contact domain.Contact

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a contact",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireSession(d); err != nil {
				return err
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			saved, err := d.Contacts.Update(cmd.Context(), id, &contact)
			if err != nil {
				return fmt.Errorf("%s", d.Store.Error())
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated contact #%d %s\n", saved.ID, saved.Name)
			return nil
		},
	}

	contactFlags(cmd, &contact)
	return cmd
}

func newContactDeleteCmd(d *Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a contact",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireSession(d); err != nil {
				return err
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			if err := d.Contacts.Delete(cmd.Context(), id); err != nil {
				return fmt.Errorf("%s", d.Store.Error())
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted contact #%d\n", id)
			return nil
		},
	}
}
