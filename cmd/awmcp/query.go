package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var (
	queryStart      string
	queryEnd        string
	queryFormat     string
	queryParams     []string
	queryStatements []string
	queryList       bool
)

var queryCmd = &cobra.Command{
	Use:   "query [template]",
	Short: "Run an AQL query against the ActivityWatch server",
	Long: `Run an ActivityWatch Query Language (AQL) query.

Queries come from the named template library (built-ins plus queries.yaml)
or from raw statements passed with --statement. Template placeholders are
filled with --param key=value pairs.

Examples:
  awmcp query --list
  awmcp query app-summary --param=window_bucket=aw-watcher-window_devbox
  awmcp query window-events --start=yesterday
  awmcp query --statement='events = query_bucket("aw-watcher-window_x");' --statement='RETURN = events;'`,
	Args: cobra.MaximumNArgs(1),
	Run:  runQuery,
}

func init() {
	queryCmd.Flags().StringVar(&queryStart, "start", "today", "Range start (ISO date or natural expression)")
	queryCmd.Flags().StringVar(&queryEnd, "end", "", "Range end (defaults to the end of the start day)")
	queryCmd.Flags().StringVar(&queryFormat, "format", "json", "Output format (json, human)")
	queryCmd.Flags().StringArrayVar(&queryParams, "param", nil, "Template parameter as key=value (repeatable)")
	queryCmd.Flags().StringArrayVar(&queryStatements, "statement", nil, "Raw AQL statement (repeatable)")
	queryCmd.Flags().BoolVar(&queryList, "list", false, "List available query templates")
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) {
	logger := newCLILogger()
	cfg := loadConfig(logger)
	library := loadQueries(cfg, logger)

	if queryList || (len(args) == 0 && len(queryStatements) == 0) {
		response := &QueryListResponseCLI{
			Count:     len(library.Names()),
			Templates: make([]QueryTemplateCLI, 0, len(library.Names())),
		}
		for _, name := range library.Names() {
			template, _ := library.Get(name)
			response.Templates = append(response.Templates, QueryTemplateCLI{
				Name:        name,
				Description: template.Description,
				Params:      template.Params,
			})
		}
		printResponse(response, queryFormat)
		return
	}

	if len(args) > 0 && len(queryStatements) > 0 {
		fmt.Fprintln(os.Stderr, "Error: a template name and --statement are mutually exclusive")
		os.Exit(1)
	}

	statements := queryStatements
	templateName := ""
	if len(args) > 0 {
		templateName = args[0]
		params, err := parseTemplateParams(queryParams)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		statements, err = library.Render(templateName, params)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error rendering template: %v\n", err)
			os.Exit(1)
		}
	}

	r := mustParseRange(queryStart, queryEnd)
	client := newAwClient(cfg, logger)
	ctx := newContext()

	results, err := client.Query(ctx, []string{r.Timeperiod()}, statements)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error running query: %v\n", err)
		os.Exit(1)
	}

	response := &QueryResponseCLI{
		Template:   templateName,
		Timeperiod: r.Timeperiod(),
		Results:    results,
	}
	printResponse(response, queryFormat)
}

// parseTemplateParams splits repeated key=value flags into a parameter map.
func parseTemplateParams(pairs []string) (map[string]string, error) {
	params := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, found := strings.Cut(pair, "=")
		if !found || key == "" {
			return nil, fmt.Errorf("invalid --param %q (want key=value)", pair)
		}
		params[key] = value
	}
	return params, nil
}

// QueryListResponseCLI contains the template library listing
type QueryListResponseCLI struct {
	Count     int                `json:"count"`
	Templates []QueryTemplateCLI `json:"templates"`
}

// QueryTemplateCLI is one query template row
type QueryTemplateCLI struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Params      []string `json:"params,omitempty"`
}

// QueryResponseCLI contains raw AQL query results
type QueryResponseCLI struct {
	Template   string            `json:"template,omitempty"`
	Timeperiod string            `json:"timeperiod"`
	Results    []json.RawMessage `json:"results"`
}
