package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/outreach-cli/internal/waterfall"
)

var (
	resolveName    string
	resolveCompany string
	resolveDomain  string
)

var resolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Resolve a single person's email address",
	Example: `  outreach-cli resolve --name "Jane Doe" --company Acme --domain acme.com
  outreach-cli resolve --name "Jane Doe" --domain https://www.acme.com/about`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := cfg.Validate("resolve"); err != nil {
			return err
		}

		req, err := waterfall.NewRequest(resolveName, resolveCompany, resolveDomain)
		if err != nil {
			return err
		}

		exec, err := buildExecutor(cfg)
		if err != nil {
			return err
		}

		outcome, err := exec.Resolve(cmd.Context(), req)
		if err != nil {
			return eris.Wrap(err, "resolve")
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(outcome)
	},
}

func init() {
	resolveCmd.Flags().StringVar(&resolveName, "name", "", "person's full name (required)")
	resolveCmd.Flags().StringVar(&resolveCompany, "company", "", "company name")
	resolveCmd.Flags().StringVar(&resolveDomain, "domain", "", "company domain or website URL")
	_ = resolveCmd.MarkFlagRequired("name")
	rootCmd.AddCommand(resolveCmd)
}
