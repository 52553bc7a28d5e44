package main

import (
	"fmt"
	"os"

	"awmcp/internal/aql"
	"awmcp/internal/categories"
	"awmcp/internal/clients"
	"awmcp/internal/config"
	"awmcp/internal/paths"

	"github.com/spf13/cobra"
)

var (
	configFormat    string
	configInitForce bool
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage awmcp configuration",
	Long:  "View and manage the awmcp configuration stored in the awmcp home directory.",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the current configuration",
	Long: `Display the current awmcp configuration.

Examples:
  awmcp config show
  awmcp config show --format=json`,
	Run: runConfigShow,
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration files",
	Long: `Validate config.json and the rule files it references.

Checks config.json, clients.toml, categories.toml, and queries.yaml.
Missing files pass; defaults apply in their place. Unparseable or
inconsistent files fail with the underlying error.

Examples:
  awmcp config validate
  awmcp config validate --format=json`,
	Run: runConfigValidate,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default config.json",
	Long:  "Write the default configuration to the awmcp home directory.",
	Run:   runConfigInit,
}

func init() {
	configShowCmd.Flags().StringVar(&configFormat, "format", "human", "Output format (json, human)")
	configValidateCmd.Flags().StringVar(&configFormat, "format", "human", "Output format (json, human)")
	configInitCmd.Flags().BoolVar(&configInitForce, "force", false, "Overwrite an existing config.json")

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configValidateCmd)
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) {
	path, err := paths.GetConfigPath()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	_, statErr := os.Stat(path)
	response := &ConfigShowResponseCLI{
		Path:         path,
		UsedDefaults: statErr != nil,
		Config:       cfg,
	}
	printResponse(response, configFormat)
}

func runConfigValidate(cmd *cobra.Command, args []string) {
	response := &ValidateResponseCLI{Valid: true}
	record := func(name, path string, err error) {
		check := ValidateCheckCLI{Name: name, Path: path, Status: "pass"}
		switch {
		case err != nil:
			check.Status = "fail"
			check.Message = err.Error()
			response.Valid = false
		case !fileExists(path):
			check.Message = "not present, defaults in effect"
		}
		response.Checks = append(response.Checks, check)
	}

	configPath, err := paths.GetConfigPath()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	cfg, err := config.LoadConfig()
	record("config", configPath, err)
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	clientsPath := cfg.ClientsFile
	if clientsPath == "" {
		clientsPath, _ = paths.GetClientsConfigPath()
	}
	_, err = clients.LoadFrom(clientsPath)
	record("clients", clientsPath, err)

	categoriesPath := cfg.CategoriesFile
	if categoriesPath == "" {
		categoriesPath, _ = paths.GetCategoriesConfigPath()
	}
	_, err = categories.LoadFrom(categoriesPath)
	record("categories", categoriesPath, err)

	queriesPath := cfg.QueriesFile
	if queriesPath == "" {
		queriesPath, _ = paths.GetQueriesConfigPath()
	}
	_, err = aql.LoadFrom(queriesPath)
	record("queries", queriesPath, err)

	printResponse(response, configFormat)

	if !response.Valid {
		os.Exit(1)
	}
}

func runConfigInit(cmd *cobra.Command, args []string) {
	path, err := paths.GetConfigPath()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if fileExists(path) && !configInitForce {
		fmt.Fprintf(os.Stderr, "Error: %s already exists (use --force to overwrite)\n", path)
		os.Exit(1)
	}

	dir, err := paths.EnsureAwmcpHome()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := config.DefaultConfig().Save(dir); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing config: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Wrote %s\n", path)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// ConfigShowResponseCLI contains the resolved configuration
type ConfigShowResponseCLI struct {
	Path         string         `json:"path"`
	UsedDefaults bool           `json:"usedDefaults"`
	Config       *config.Config `json:"config"`
}

// ValidateResponseCLI contains the validation verdict per file
type ValidateResponseCLI struct {
	Valid  bool               `json:"valid"`
	Checks []ValidateCheckCLI `json:"checks"`
}

// ValidateCheckCLI is one validated file
type ValidateCheckCLI struct {
	Name    string `json:"name"`
	Path    string `json:"path"`
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}
