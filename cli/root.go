package cli

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"idlectl/api"
	"idlectl/config"
)

var (
	rootAddr string
	rootNoUI bool
)

var rootCmd = &cobra.Command{
	Use:   "idlectl",
	Short: "Control surface for the game idling scheduler",
	Long: `idlectl talks to a running scheduler daemon: it shows the cycle
gauge, account rotation and live logs, and lets you edit the game list
and timing settings.

Run without arguments on a terminal to open the interactive dashboard.

Dashboard keys:
  tab          - Open settings
  r / s        - Run now / Stop
  left/right   - Pick an account, Enter to switch
  G            - Jump to newest log line
  q            - Quit`,
	SilenceUsage: true,
	RunE:         runRoot,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&rootAddr, "addr", "", "Daemon address (default "+api.DefaultBaseURL+")")
	rootCmd.Flags().BoolVar(&rootNoUI, "no-ui", false, "Print a plain text summary instead of the interactive dashboard")
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newClient resolves the daemon address. Precedence: --addr flag, then
// IDLECTL_ADDR, then the config file, then the default.
func newClient() *api.Client {
	cfg := config.Load(config.Path())
	if rootAddr != "" {
		cfg.Addr = rootAddr
	}
	return api.New(cfg.Addr)
}

func newAudit() *auditLogger {
	return newAuditLogger(filepath.Join(config.Dir(), "audit.jsonl"))
}

func runRoot(cmd *cobra.Command, args []string) error {
	if shouldUseDashboardUI(isInteractiveTerminal(), rootNoUI) {
		return runDashboardUI(rootAddr)
	}
	return printStatus(cmd, newClient())
}
