package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/outreach-cli/internal/waterfall"
)

var (
	contactsCompany string
	contactsDomain  string
	contactsRoles   []string
)

var contactsCmd = &cobra.Command{
	Use:   "contacts",
	Short: "Discover contacts at a company via the scraping provider",
	Example: `  outreach-cli contacts --company "Acme Corp" --domain acme.com
  outreach-cli contacts --domain acme.com --roles "VP Sales,Head of Marketing"`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := cfg.Validate("contacts"); err != nil {
			return err
		}

		disc := buildDiscoverer(cfg)
		if disc == nil {
			return eris.New("contacts: no scraping provider configured (set apify.token and apify.actor_id)")
		}

		domain := waterfall.NormalizeDomain(contactsDomain)
		records, err := disc.FindCompanyContacts(cmd.Context(), contactsCompany, domain, contactsRoles)
		if err != nil {
			return eris.Wrap(err, "contacts")
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	},
}

func init() {
	contactsCmd.Flags().StringVar(&contactsCompany, "company", "", "company name")
	contactsCmd.Flags().StringVar(&contactsDomain, "domain", "", "company domain or website URL")
	contactsCmd.Flags().StringSliceVar(&contactsRoles, "roles", nil, "target roles for the standard search pass")
	rootCmd.AddCommand(contactsCmd)
}
