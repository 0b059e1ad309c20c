// Package cli wires the session, store and coordinator into the crmdesk
// command tree. Each command plays the role of a page component: it calls
// the services and renders the store's state.
package cli

import (
	"errors"

	"github.com/boddenberg/crm-desk-go/internal/config"
	"github.com/boddenberg/crm-desk-go/internal/search"
	"github.com/boddenberg/crm-desk-go/internal/service"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// ErrNotLoggedIn is returned by commands that need a session.
var ErrNotLoggedIn = errors.New("not logged in: run 'crmdesk login' first")

// Deps bundles everything the command tree needs.
type Deps struct {
	Config      *config.Config
	Logger      *zap.Logger
	Session     *service.Session
	Store       *service.Store
	Customers   *service.CustomerService
	Contacts    *service.ContactService
	Notes       *service.NoteService
	Coordinator *search.Coordinator
}

// NewRoot builds the crmdesk command tree.
func NewRoot(d *Deps) *cobra.Command {
	root := &cobra.Command{
		Use:           "crmdesk",
		Short:         "Terminal client for the CRM backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newLoginCmd(d),
		newRegisterCmd(d),
		newLogoutCmd(d),
		newWhoamiCmd(d),
		newProfileCmd(d),
		newCustomersCmd(d),
		newCustomerCmd(d),
		newContactCmd(d),
		newNoteCmd(d),
		newShellCmd(d),
	)

	return root
}

// requireSession is the auth guard: commands that talk to protected
// endpoints refuse to run without a stored session.
func requireSession(d *Deps) error {
	if !d.Session.IsAuthenticated() {
		return ErrNotLoggedIn
	}
	return nil
}
