package main

import (
	"fmt"
	"os"
	"sort"

	"awmcp/internal/activity"
	"awmcp/internal/clients"
	"awmcp/internal/paths"

	"github.com/spf13/cobra"
)

var (
	clientsFormat     string
	summaryStart      string
	summaryEnd        string
	summaryIncludeWeb bool
	summaryLimit      int
	clientsInitForce  bool
)

var clientsCmd = &cobra.Command{
	Use:   "clients",
	Short: "Manage client detection rules and time attribution",
	Long:  "View client detection rules and attribute tracked time to clients.",
}

var clientsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List configured clients",
	Long: `List the configured clients and their detection rules.

Examples:
  awmcp clients list
  awmcp clients list --format=human`,
	Run: runClientsList,
}

var clientsSummaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Attribute tracked time to clients",
	Long: `Aggregate folder activity for a range and attribute it to clients.

Each folder group is claimed by the first client whose rules match it;
unclaimed time goes to the default client. Billable hours are rounded to
the configured granularity, and non-default clients under the minimum
billable threshold are reported but not billed.

Examples:
  awmcp clients summary
  awmcp clients summary --start=2024-03-01 --end=2024-03-14
  awmcp clients summary --format=human`,
	Run: runClientsSummary,
}

var clientsInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a starter clients.toml",
	Long: `Write the default clients.toml to the awmcp home directory.

The default file declares a single personal client; edit it to add
billable clients and their folder, project, and ticket-prefix rules.`,
	Run: runClientsInit,
}

func init() {
	clientsListCmd.Flags().StringVar(&clientsFormat, "format", "json", "Output format (json, human)")

	clientsSummaryCmd.Flags().StringVar(&clientsFormat, "format", "json", "Output format (json, human)")
	clientsSummaryCmd.Flags().StringVar(&summaryStart, "start", "today", "Range start (ISO date or natural expression)")
	clientsSummaryCmd.Flags().StringVar(&summaryEnd, "end", "", "Range end (defaults to the end of the start day)")
	clientsSummaryCmd.Flags().BoolVar(&summaryIncludeWeb, "include-web", false, "Count web URLs as folder references")
	clientsSummaryCmd.Flags().IntVar(&summaryLimit, "limit", 0, "Maximum events to fetch per bucket (0 uses the configured default)")

	clientsInitCmd.Flags().BoolVar(&clientsInitForce, "force", false, "Overwrite an existing clients.toml")

	clientsCmd.AddCommand(clientsListCmd)
	clientsCmd.AddCommand(clientsSummaryCmd)
	clientsCmd.AddCommand(clientsInitCmd)
	rootCmd.AddCommand(clientsCmd)
}

func runClientsList(cmd *cobra.Command, args []string) {
	logger := newCLILogger()
	cfg := loadConfig(logger)
	rules := loadClients(cfg, logger)

	response := &ClientsResponseCLI{
		DefaultClient: rules.Settings.DefaultClient,
		Priority:      rules.DetectionPriority,
		Clients:       make([]ClientRuleCLI, 0, len(rules.Clients)),
	}
	for id, client := range rules.Clients {
		response.Clients = append(response.Clients, ClientRuleCLI{
			ID:             id,
			Name:           client.Name,
			DisplayName:    client.DisplayName,
			Folders:        client.Folders,
			Projects:       client.Projects,
			TicketPrefixes: client.TicketPrefixes,
			Tags:           client.Tags,
		})
	}
	sort.Slice(response.Clients, func(i, j int) bool {
		return response.Clients[i].ID < response.Clients[j].ID
	})

	printResponse(response, clientsFormat)
}

func runClientsSummary(cmd *cobra.Command, args []string) {
	logger := newCLILogger()
	cfg := loadConfig(logger)

	if !cmd.Flags().Changed("include-web") {
		summaryIncludeWeb = cfg.Defaults.IncludeWeb
	}
	if summaryLimit <= 0 {
		summaryLimit = cfg.Defaults.PageLimit
	}

	r := mustParseRange(summaryStart, summaryEnd)
	client := newAwClient(cfg, logger)
	ctx := newContext()

	sweep, err := sweepWindow(ctx, client, r, summaryLimit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error fetching events: %v\n", err)
		os.Exit(1)
	}

	rules := loadClients(cfg, logger)
	activities := activity.Aggregate(sweep.Events, summaryIncludeWeb)
	summary := clients.NewDetector(rules).Summarize(activities)

	response := &ClientSummaryResponseCLI{
		Start:   r.StartISO(),
		End:     r.EndISO(),
		Buckets: sweep.Buckets,
		Summary: summary,
	}
	printResponse(response, clientsFormat)
}

func runClientsInit(cmd *cobra.Command, args []string) {
	path, err := paths.GetClientsConfigPath()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if _, err := os.Stat(path); err == nil && !clientsInitForce {
		fmt.Fprintf(os.Stderr, "Error: %s already exists (use --force to overwrite)\n", path)
		os.Exit(1)
	}

	if err := clients.DefaultConfig().Save(); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing clients config: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Wrote %s\n", path)
}

// ClientsResponseCLI contains the client rule listing
type ClientsResponseCLI struct {
	DefaultClient string          `json:"defaultClient"`
	Priority      []string        `json:"priority,omitempty"`
	Clients       []ClientRuleCLI `json:"clients"`
}

// ClientRuleCLI is one configured client and its detection rules
type ClientRuleCLI struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	DisplayName    string   `json:"displayName,omitempty"`
	Folders        []string `json:"folders,omitempty"`
	Projects       []string `json:"projects,omitempty"`
	TicketPrefixes []string `json:"ticketPrefixes,omitempty"`
	Tags           []string `json:"tags,omitempty"`
}

// ClientSummaryResponseCLI contains per-client time attribution
type ClientSummaryResponseCLI struct {
	Start   string          `json:"start"`
	End     string          `json:"end"`
	Buckets []string        `json:"buckets,omitempty"`
	Summary clients.Summary `json:"summary"`
}
