package mcp

import (
	"bytes"
	"encoding/json"
	"io"
	"strings"
	"testing"
	"time"

	"awmcp/internal/aw"
	"awmcp/internal/config"
	"awmcp/internal/slogutil"
)

// newTestMCPServer creates an MCP server pointed at the given ActivityWatch
// URL. Protocol-level tests never touch the backend, so any URL works for
// them; tool tests pass a fixture server.
func newTestMCPServer(t *testing.T, awURL string) *MCPServer {
	t.Helper()

	logger := slogutil.NewDiscardLogger()
	client := aw.NewClient(awURL, 5*time.Second, logger)

	return NewMCPServer("test", Deps{
		Client: client,
		Config: config.DefaultConfig(),
	}, logger)
}

// sendRequest sends a request and returns the response
func sendRequest(t *testing.T, server *MCPServer, method string, id int, params interface{}) *MCPMessage {
	t.Helper()

	request := MCPMessage{
		Jsonrpc: "2.0",
		Id:      id,
		Method:  method,
		Params:  params,
	}

	requestBytes, err := json.Marshal(request)
	if err != nil {
		t.Fatalf("Failed to marshal request: %v", err)
	}
	requestBytes = append(requestBytes, '\n')

	stdin := bytes.NewReader(requestBytes)
	stdout := &bytes.Buffer{}

	server.SetStdin(stdin)
	server.SetStdout(stdout)

	// Read and handle one message. Going through the transport means params
	// arrive exactly as they would from a real client (numbers as float64).
	msg, err := server.readMessage()
	if err != nil && err != io.EOF {
		t.Fatalf("Failed to read message: %v", err)
	}

	return server.handleMessage(msg)
}

func TestMCPServerCreation(t *testing.T) {
	server := newTestMCPServer(t, "http://localhost:5600")

	if server == nil {
		t.Fatal("Server should not be nil")
	}

	if len(server.tools) != 9 {
		t.Errorf("Server should have 9 registered tools, got %d", len(server.tools))
	}

	for _, name := range []string{
		"listBuckets", "getEvents", "runQuery", "getSettings",
		"getFolderActivity", "getActiveFolders", "getClientSummary",
		"exportEvents", "getToolMetrics",
	} {
		if _, ok := server.tools[name]; !ok {
			t.Errorf("Tool %q should be registered", name)
		}
	}
}

func TestInitializeMethod(t *testing.T) {
	server := newTestMCPServer(t, "http://localhost:5600")

	params := map[string]interface{}{
		"protocolVersion": "2024-11-05",
		"capabilities":    map[string]interface{}{},
		"clientInfo": map[string]interface{}{
			"name":    "test-client",
			"version": "1.0.0",
		},
	}

	response := sendRequest(t, server, "initialize", 1, params)

	if response == nil {
		t.Fatal("Response should not be nil")
	}
	if response.Error != nil {
		t.Fatalf("Should not have error: %v", response.Error.Message)
	}

	result, ok := response.Result.(*InitializeResult)
	if !ok {
		t.Fatalf("Result should be an InitializeResult, got %T", response.Result)
	}

	if result.ProtocolVersion != "2024-11-05" {
		t.Errorf("protocolVersion = %q, want 2024-11-05", result.ProtocolVersion)
	}
	if result.ServerInfo.Name != "awmcp" {
		t.Errorf("serverInfo.name = %q, want awmcp", result.ServerInfo.Name)
	}
	if result.Capabilities.Tools == nil {
		t.Error("Capabilities should advertise tools")
	}
	if result.Capabilities.Resources == nil {
		t.Error("Capabilities should advertise resources")
	}
}

func TestToolsListMethod(t *testing.T) {
	server := newTestMCPServer(t, "http://localhost:5600")

	response := sendRequest(t, server, "tools/list", 1, nil)

	if response == nil {
		t.Fatal("Response should not be nil")
	}
	if response.Error != nil {
		t.Fatalf("Should not have error: %v", response.Error.Message)
	}

	result, ok := response.Result.(map[string]interface{})
	if !ok {
		t.Fatalf("Result should be a map, got %T", response.Result)
	}

	tools, ok := result["tools"].([]Tool)
	if !ok {
		t.Fatalf("Tools should be []Tool, got %T", result["tools"])
	}

	if len(tools) != 9 {
		t.Errorf("Should list 9 tools, got %d", len(tools))
	}

	for _, tool := range tools {
		if tool.Name == "" {
			t.Error("Tool should have name")
		}
		if tool.Description == "" {
			t.Errorf("Tool %q should have description", tool.Name)
		}
		if tool.InputSchema == nil {
			t.Errorf("Tool %q should have inputSchema", tool.Name)
		}
	}
}

func TestResourcesListMethod(t *testing.T) {
	server := newTestMCPServer(t, "http://localhost:5600")

	response := sendRequest(t, server, "resources/list", 1, nil)

	if response == nil {
		t.Fatal("Response should not be nil")
	}
	if response.Error != nil {
		t.Fatalf("Should not have error: %v", response.Error.Message)
	}

	result, ok := response.Result.(map[string]interface{})
	if !ok {
		t.Fatalf("Result should be a map, got %T", response.Result)
	}

	resources, ok := result["resources"].([]Resource)
	if !ok {
		t.Fatalf("Resources should be []Resource, got %T", result["resources"])
	}
	if len(resources) != 3 {
		t.Errorf("Should list 3 static resources, got %d", len(resources))
	}

	templates, ok := result["resourceTemplates"].([]ResourceTemplate)
	if !ok {
		t.Fatalf("Templates should be []ResourceTemplate, got %T", result["resourceTemplates"])
	}
	if len(templates) != 1 {
		t.Errorf("Should list 1 resource template, got %d", len(templates))
	}
}

func TestUnknownMethod(t *testing.T) {
	server := newTestMCPServer(t, "http://localhost:5600")

	response := sendRequest(t, server, "unknown/method", 1, nil)

	if response == nil {
		t.Fatal("Response should not be nil")
	}
	if response.Error == nil {
		t.Fatal("Should have error for unknown method")
	}
	if response.Error.Code != MethodNotFound {
		t.Errorf("Expected MethodNotFound error code, got %d", response.Error.Code)
	}
}

func TestToolCallWithMissingName(t *testing.T) {
	server := newTestMCPServer(t, "http://localhost:5600")

	params := map[string]interface{}{
		"arguments": map[string]interface{}{
			"start": "today",
		},
	}

	response := sendRequest(t, server, "tools/call", 1, params)

	if response == nil {
		t.Fatal("Response should not be nil")
	}
	if response.Error == nil {
		t.Fatal("Should have error for missing tool name")
	}
	if response.Error.Code != InvalidParams {
		t.Errorf("Expected InvalidParams error code, got %d", response.Error.Code)
	}
}

func TestToolCallUnknownTool(t *testing.T) {
	server := newTestMCPServer(t, "http://localhost:5600")

	params := map[string]interface{}{
		"name":      "unknownTool",
		"arguments": map[string]interface{}{},
	}

	response := sendRequest(t, server, "tools/call", 1, params)

	if response == nil {
		t.Fatal("Response should not be nil")
	}
	if response.Error == nil {
		t.Fatal("Should have error for unknown tool")
	}
	if response.Error.Code != MethodNotFound {
		t.Errorf("Expected MethodNotFound error code, got %d", response.Error.Code)
	}

	// The structured taxonomy code rides along in the error data.
	data, ok := response.Error.Data.(map[string]interface{})
	if !ok {
		t.Fatalf("Error data should be a map, got %T", response.Error.Data)
	}
	if data["code"] != "TOOL_NOT_FOUND" {
		t.Errorf("Error data code = %v, want TOOL_NOT_FOUND", data["code"])
	}
}

func TestToolCallWithNonObjectParams(t *testing.T) {
	server := newTestMCPServer(t, "http://localhost:5600")

	response := sendRequest(t, server, "tools/call", 1, "not-an-object")

	if response == nil {
		t.Fatal("Response should not be nil")
	}
	if response.Error == nil {
		t.Fatal("Should have error for non-object params")
	}
	if response.Error.Code != InvalidParams {
		t.Errorf("Expected InvalidParams error code, got %d", response.Error.Code)
	}
}

// TestServerLoop runs a whole session through Start: initialize, the
// initialized notification, one request, then EOF.
func TestServerLoop(t *testing.T) {
	server := newTestMCPServer(t, "http://localhost:5600")

	var input bytes.Buffer
	input.WriteString(`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{}}` + "\n")
	input.WriteString(`{"jsonrpc":"2.0","method":"notifications/initialized"}` + "\n")
	input.WriteString(`{"jsonrpc":"2.0","id":2,"method":"tools/list"}` + "\n")

	var output bytes.Buffer
	server.SetStdin(&input)
	server.SetStdout(&output)

	if err := server.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	lines := strings.Split(strings.TrimSpace(output.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d response lines, want 2 (the notification produces none)", len(lines))
	}

	var first MCPMessage
	if err := json.Unmarshal([]byte(lines[0]), &first); err != nil {
		t.Fatalf("first response is not valid JSON: %v", err)
	}
	if first.Error != nil {
		t.Fatalf("initialize failed: %v", first.Error.Message)
	}
	result, ok := first.Result.(map[string]interface{})
	if !ok {
		t.Fatalf("initialize result should decode as an object, got %T", first.Result)
	}
	if result["protocolVersion"] != "2024-11-05" {
		t.Errorf("protocolVersion = %v, want 2024-11-05", result["protocolVersion"])
	}

	var second MCPMessage
	if err := json.Unmarshal([]byte(lines[1]), &second); err != nil {
		t.Fatalf("second response is not valid JSON: %v", err)
	}
	if id, ok := second.Id.(float64); !ok || id != 2 {
		t.Errorf("second response id = %v, want 2", second.Id)
	}
	if second.Error != nil {
		t.Errorf("tools/list failed: %v", second.Error.Message)
	}
}

// TestServerLoopRecoversFromGarbage feeds an unparseable line followed by a
// valid request; the loop must keep serving.
func TestServerLoopRecoversFromGarbage(t *testing.T) {
	server := newTestMCPServer(t, "http://localhost:5600")

	var input bytes.Buffer
	input.WriteString("this is not json\n")
	input.WriteString(`{"jsonrpc":"2.0","id":7,"method":"tools/list"}` + "\n")

	var output bytes.Buffer
	server.SetStdin(&input)
	server.SetStdout(&output)

	if err := server.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	lines := strings.Split(strings.TrimSpace(output.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("got %d response lines, want 1", len(lines))
	}

	var response MCPMessage
	if err := json.Unmarshal([]byte(lines[0]), &response); err != nil {
		t.Fatalf("response is not valid JSON: %v", err)
	}
	if id, ok := response.Id.(float64); !ok || id != 7 {
		t.Errorf("response id = %v, want 7", response.Id)
	}
	if response.Error != nil {
		t.Errorf("request after garbage failed: %v", response.Error.Message)
	}
}

func TestMCPMessageTypes(t *testing.T) {
	request := &MCPMessage{
		Jsonrpc: "2.0",
		Id:      1,
		Method:  "test",
	}
	if !request.IsRequest() {
		t.Error("Should be detected as request")
	}
	if request.IsNotification() {
		t.Error("Should not be detected as notification")
	}
	if request.IsResponse() {
		t.Error("Should not be detected as response")
	}

	notification := &MCPMessage{
		Jsonrpc: "2.0",
		Method:  "test",
	}
	if notification.IsRequest() {
		t.Error("Should not be detected as request")
	}
	if !notification.IsNotification() {
		t.Error("Should be detected as notification")
	}
	if notification.IsResponse() {
		t.Error("Should not be detected as response")
	}

	response := &MCPMessage{
		Jsonrpc: "2.0",
		Id:      1,
		Result:  "ok",
	}
	if response.IsRequest() {
		t.Error("Should not be detected as request")
	}
	if response.IsNotification() {
		t.Error("Should not be detected as notification")
	}
	if !response.IsResponse() {
		t.Error("Should be detected as response")
	}
}

func TestNewErrorMessage(t *testing.T) {
	msg := NewErrorMessage(1, InvalidParams, "Invalid parameters", nil)

	if msg.Jsonrpc != "2.0" {
		t.Error("Should have jsonrpc 2.0")
	}
	if msg.Id != 1 {
		t.Error("Should have id 1")
	}
	if msg.Error == nil {
		t.Fatal("Should have error")
	}
	if msg.Error.Code != InvalidParams {
		t.Error("Should have InvalidParams code")
	}
	if msg.Error.Message != "Invalid parameters" {
		t.Error("Should have correct message")
	}
}

func TestNewResultMessage(t *testing.T) {
	result := map[string]string{"status": "ok"}
	msg := NewResultMessage(1, result)

	if msg.Jsonrpc != "2.0" {
		t.Error("Should have jsonrpc 2.0")
	}
	if msg.Id != 1 {
		t.Error("Should have id 1")
	}
	if msg.Result == nil {
		t.Fatal("Should have result")
	}
	if msg.Error != nil {
		t.Error("Should not have error")
	}
}
