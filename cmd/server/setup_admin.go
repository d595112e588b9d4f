package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/stih/tank-insights/internal/service"
	"github.com/stih/tank-insights/internal/utils"
)

var setupAdminCmd = &cobra.Command{
	Use:   "setup-admin",
	Short: "Create or replace the admin account",
	RunE: func(cmd *cobra.Command, args []string) error {
		return setupAdmin(cmd.InOrStdin(), cmd.OutOrStdout(), service.NewAdminStore(cfg.AdminSettingsPath), cfg.BcryptCost)
	},
}

func init() {
	rootCmd.AddCommand(setupAdminCmd)
}

// setupAdmin prompts for the credentials on in and writes the settings
// file.  An empty username defaults to "admin".
func setupAdmin(in io.Reader, out io.Writer, admins *service.AdminStore, cost int) error {
	r := bufio.NewReader(in)
	ask := func(q string) (string, error) {
		fmt.Fprint(out, q)
		line, err := r.ReadString('\n')
		if err != nil && !(err == io.EOF && line != "") {
			return "", eris.Wrap(err, "read input")
		}
		return strings.TrimRight(line, "\r\n"), nil
	}

	username, err := ask("Enter admin username (default: admin): ")
	if err != nil {
		return err
	}
	if username = strings.TrimSpace(username); username == "" {
		username = "admin"
	}
	password, err := ask("Enter admin password: ")
	if err != nil {
		return err
	}
	confirm, err := ask("Confirm admin password: ")
	if err != nil {
		return err
	}
	if password != confirm {
		return eris.New("passwords do not match")
	}
	if len(password) < utils.MinPasswordLen {
		return utils.ErrWeakPassword
	}

	if _, err := admins.Save(username, password, cost); err != nil {
		return err
	}
	fmt.Fprintf(out, "\nAdmin credentials saved.\n  Username: %s\n  Password: [hidden]\n  Location: %s\n", username, admins.Path())
	return nil
}
