package mcp

import "awmcp/internal/envelope"

// Tool represents an awmcp tool exposed via MCP
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// ToolHandler is a function that handles a tool call and returns an envelope response.
type ToolHandler func(params map[string]interface{}) (*envelope.Response, error)

// GetToolDefinitions returns all tool definitions
func (s *MCPServer) GetToolDefinitions() []Tool {
	return []Tool{
		{
			Name:        "listBuckets",
			Description: "List the event buckets on the ActivityWatch server with their type, client, and hostname. Window-focus buckets have type 'currentwindow', AFK buckets 'afkstatus'. Call this first to discover what data is available.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"type": map[string]interface{}{
						"type":        "string",
						"description": "Only return buckets of this type, e.g. 'currentwindow' or 'afkstatus'",
					},
				},
			},
		},
		{
			Name:        "getEvents",
			Description: "Get raw events from one bucket. Dates accept ISO 8601 or natural language ('yesterday', '3 days ago'). When start is given without end, the range covers start's entire day.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"bucketId": map[string]interface{}{
						"type":        "string",
						"description": "The bucket ID, as reported by listBuckets",
					},
					"start": map[string]interface{}{
						"type":        "string",
						"description": "Range start (ISO 8601 or natural language)",
					},
					"end": map[string]interface{}{
						"type":        "string",
						"description": "Range end; defaults to the end of start's day",
					},
					"limit": map[string]interface{}{
						"type":        "number",
						"description": "Maximum number of events to return (default from config)",
					},
				},
				"required": []string{"bucketId"},
			},
		},
		{
			Name:        "runQuery",
			Description: "Run an AQL query against the server. Provide timeperiods plus either raw query statements or the name of a canned template with params (see the awmcp://queries resource). The final statement must RETURN a value.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"timeperiods": map[string]interface{}{
						"type": "array",
						"items": map[string]interface{}{
							"type": "string",
						},
						"description": "Time periods, each 'start/end' or a single date expression expanded to its full day",
					},
					"query": map[string]interface{}{
						"type": "array",
						"items": map[string]interface{}{
							"type": "string",
						},
						"description": "AQL statements, run once per timeperiod",
					},
					"template": map[string]interface{}{
						"type":        "string",
						"description": "Name of a canned query template; mutually exclusive with query",
					},
					"params": map[string]interface{}{
						"type":        "object",
						"description": "Values for the template's placeholders",
					},
				},
				"required": []string{"timeperiods"},
			},
		},
		{
			Name:        "getSettings",
			Description: "Read aw-server settings, optionally scoped to a single key.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"key": map[string]interface{}{
						"type":        "string",
						"description": "Settings key; omit for the full settings object",
					},
				},
			},
		},
		{
			Name:        "getFolderActivity",
			Description: "Summarize folder/project activity for a time range. Sweeps every window bucket, classifies window titles into folder references, and aggregates time per (folder, app). Buckets that fail to respond are skipped with a warning.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"start": map[string]interface{}{
						"type":        "string",
						"description": "Range start (ISO 8601 or natural language like 'yesterday')",
					},
					"end": map[string]interface{}{
						"type":        "string",
						"description": "Range end; defaults to the end of start's day",
					},
					"includeWeb": map[string]interface{}{
						"type":        "boolean",
						"description": "Count web URLs in browser titles as folder references (default from config)",
					},
					"minDuration": map[string]interface{}{
						"type":        "number",
						"description": "Drop folders with less than this many seconds of activity",
					},
					"limit": map[string]interface{}{
						"type":        "number",
						"description": "Maximum number of folders to return",
					},
				},
				"required": []string{"start"},
			},
		},
		{
			Name:        "getActiveFolders",
			Description: "List the distinct folder paths touched in a time range, regardless of duration. Scans every window title for path-like strings; broader recall than getFolderActivity.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"start": map[string]interface{}{
						"type":        "string",
						"description": "Range start (ISO 8601 or natural language)",
					},
					"end": map[string]interface{}{
						"type":        "string",
						"description": "Range end; defaults to the end of start's day",
					},
					"limit": map[string]interface{}{
						"type":        "number",
						"description": "Maximum number of folders to return",
					},
				},
				"required": []string{"start"},
			},
		},
		{
			Name:        "getClientSummary",
			Description: "Roll folder activity up to billing clients using the clients.toml detection rules. Reports per-client hours, billable vs side-project split, and the folders attributed to each client.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"start": map[string]interface{}{
						"type":        "string",
						"description": "Range start (ISO 8601 or natural language)",
					},
					"end": map[string]interface{}{
						"type":        "string",
						"description": "Range end; defaults to the end of start's day",
					},
					"includeWeb": map[string]interface{}{
						"type":        "boolean",
						"description": "Count web URLs as folder references before attribution (default from config)",
					},
				},
				"required": []string{"start"},
			},
		},
		{
			Name:        "exportEvents",
			Description: "Export raw events from one bucket to a local JSONL archive, zstd-compressed by default. Returns the archive manifest with path, event count, and size.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"bucketId": map[string]interface{}{
						"type":        "string",
						"description": "The bucket to export",
					},
					"start": map[string]interface{}{
						"type":        "string",
						"description": "Range start (ISO 8601 or natural language)",
					},
					"end": map[string]interface{}{
						"type":        "string",
						"description": "Range end; defaults to the end of start's day",
					},
					"limit": map[string]interface{}{
						"type":        "number",
						"description": "Maximum number of events to export",
					},
					"compress": map[string]interface{}{
						"type":        "boolean",
						"description": "Write a .jsonl.zst archive instead of plain .jsonl (default from config)",
					},
				},
				"required": []string{"bucketId"},
			},
		},
		{
			Name:        "getToolMetrics",
			Description: "Get per-tool invocation metrics for this server: call counts, error rates, latency, and response sizes. Internal/debug tool.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"since": map[string]interface{}{
						"type":        "string",
						"description": "Only include persisted calls recorded at or after this date; omit for all history",
					},
				},
			},
		},
	}
}

// RegisterTools registers all tool handlers
func (s *MCPServer) RegisterTools() {
	s.tools["listBuckets"] = s.toolListBuckets
	s.tools["getEvents"] = s.toolGetEvents
	s.tools["runQuery"] = s.toolRunQuery
	s.tools["getSettings"] = s.toolGetSettings
	s.tools["getFolderActivity"] = s.toolGetFolderActivity
	s.tools["getActiveFolders"] = s.toolGetActiveFolders
	s.tools["getClientSummary"] = s.toolGetClientSummary
	s.tools["exportEvents"] = s.toolExportEvents
	s.tools["getToolMetrics"] = s.toolGetToolMetrics
}
