package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var initForce bool

// initTemplate is the default zmigrate.yaml scaffold.
const initTemplate = `# zmigrate configuration
source:
  host: mail-old.example.com
  admin_user: admin@example.com
  admin_password: changeme
  ldap:
    protocol: "ldaps://"
    host: dir-old.example.com
    port: 636
    bind_user: uid=zimbra,cn=admins,cn=zimbra
    bind_password: changeme
    base_dn: ou=people,dc=example,dc=com
    # filter: (objectClass=zimbraAccount)

destination:
  host: mail-new.example.com
  admin_user: admin@example.com
  admin_password: changeme
  ldap:
    protocol: "ldaps://"
    host: dir-new.example.com
    port: 636
    bind_user: uid=zimbra,cn=admins,cn=zimbra
    bind_password: changeme
    base_dn: ou=people,dc=example,dc=com

global:
  root_folder: /var/zmigrate
  session_file: session.txt
  log_file: /var/log/zmigrate.log
  log_level: info
  # fallback_host: store1.example.com

# Destination mailbox stores, in 'run --store' index order.
stores:
  - store1.example.com
  - store2.example.com

# Per-host admin port overrides (default 7071).
# ports:
#   store2.example.com: 9071
`

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a starter zmigrate.yaml configuration",
	Long: `Creates a zmigrate.yaml file with placeholder cluster, directory and
store settings to edit before the first run.

Use --force to overwrite an existing configuration file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		outPath := configPath
		if !filepath.IsAbs(outPath) {
			abs, err := filepath.Abs(outPath)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}
			outPath = abs
		}

		if !initForce {
			if _, err := os.Stat(outPath); err == nil {
				return fmt.Errorf("%s already exists (use --force to overwrite)", outPath)
			}
		}

		if err := os.WriteFile(outPath, []byte(initTemplate), 0644); err != nil {
			return fmt.Errorf("writing config: %w", err)
		}

		info("Created %s", outPath)
		info("")
		info("Next steps:")
		info("  1. Edit the cluster, directory and store settings")
		info("  2. Run 'zmigrate stores' to check the destination store list")
		info("  3. Run 'zmigrate run --ldiff --full -s accounts.txt' to migrate")
		return nil
	},
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "overwrite existing config file")
	rootCmd.AddCommand(initCmd)
}
