package cli

import (
	"fmt"

	"github.com/boddenberg/crm-desk-go/internal/domain"

	"github.com/spf13/cobra"
)

func newNoteCmd(d *Deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "note",
		Short: "Manage a customer's notes",
	}
	cmd.AddCommand(
		newNoteAddCmd(d),
		newNoteUpdateCmd(d),
		newNoteDeleteCmd(d),
	)
	return cmd
}

func newNoteAddCmd(d *Deps) *cobra.Command {
	var title, content string

	cmd := &cobra.Command{
		Use:   "add <customer-id>",
		Short: "Add a note to a customer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireSession(d); err != nil {
				return err
			}
			customerID, err := parseID(args[0])
			if err != nil {
				return err
			}

			saved, err := d.Notes.Add(cmd.Context(), customerID, title, content)
			if err != nil {
				return fmt.Errorf("%s", d.Store.Error())
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added note #%d %q\n", saved.ID, saved.Title)
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "note title")
	cmd.Flags().StringVar(&content, "content", "", "note content")
	_ = cmd.MarkFlagRequired("title")
	return cmd
}

func newNoteUpdateCmd(d *Deps) *cobra.Command {
	var title, content string

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireSession(d); err != nil {
				return err
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			saved, err := d.Notes.Update(cmd.Context(), id, &domain.Note{
				Title:   title,
				Content: content,
			})
			if err != nil {
				return fmt.Errorf("%s", d.Store.Error())
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated note #%d %q\n", saved.ID, saved.Title)
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "note title")
	cmd.Flags().StringVar(&content, "content", "", "note content")
	return cmd
}

func newNoteDeleteCmd(d *Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireSession(d); err != nil {
				return err
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			if err := d.Notes.Delete(cmd.Context(), id); err != nil {
				return fmt.Errorf("%s", d.Store.Error())
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted note #%d\n", id)
			return nil
		},
	}
}
