package mcp

import (
	"encoding/json"
	"fmt"
	"time"

	"awmcp/internal/envelope"
	"awmcp/internal/errors"
)

// handleMessage processes an incoming MCP message and returns a response
func (s *MCPServer) handleMessage(msg *MCPMessage) *MCPMessage {
	// Responses would only arrive if we had issued a request to the client;
	// this server never does, so log and move on.
	if msg.IsResponse() {
		s.logger.Warn("Received unexpected response message",
			"id", msg.Id,
		)
		return nil
	}

	// Handle requests
	if msg.IsRequest() {
		return s.handleRequest(msg)
	}

	// Handle notifications (no response needed)
	if msg.IsNotification() {
		s.handleNotification(msg)
		return nil
	}

	// Invalid message
	return NewErrorMessage(msg.Id, InvalidRequest, "Invalid message: not a request or notification", nil)
}

// handleRequest handles a JSON-RPC request
func (s *MCPServer) handleRequest(msg *MCPMessage) *MCPMessage {
	s.logger.Debug("Handling request",
		"method", msg.Method,
		"id", msg.Id,
	)

	switch msg.Method {
	case "initialize":
		return s.handleInitializeRequest(msg)
	case "tools/list":
		return s.handleListToolsRequest(msg)
	case "tools/call":
		return s.handleCallToolRequest(msg)
	case "resources/list":
		return s.handleListResourcesRequest(msg)
	case "resources/read":
		return s.handleReadResourceRequest(msg)
	default:
		return NewErrorMessage(msg.Id, MethodNotFound, fmt.Sprintf("Method not found: %s", msg.Method), nil)
	}
}

// handleNotification handles a JSON-RPC notification
func (s *MCPServer) handleNotification(msg *MCPMessage) {
	s.logger.Debug("Handling notification",
		"method", msg.Method,
	)

	switch msg.Method {
	case "notifications/initialized":
		s.logger.Info("Client initialized")
	default:
		s.logger.Debug("Unknown notification",
			"method", msg.Method,
		)
	}
}

// handleInitializeRequest handles the initialize request
func (s *MCPServer) handleInitializeRequest(msg *MCPMessage) *MCPMessage {
	params, ok := msg.Params.(map[string]interface{})
	if !ok {
		params = make(map[string]interface{})
	}

	result, err := s.handleInitialize(params)
	if err != nil {
		return NewErrorMessage(msg.Id, InternalError, err.Error(), nil)
	}

	return NewResultMessage(msg.Id, result)
}

// handleListToolsRequest handles the tools/list request
func (s *MCPServer) handleListToolsRequest(msg *MCPMessage) *MCPMessage {
	result, err := s.handleListTools()
	if err != nil {
		return NewErrorMessage(msg.Id, InternalError, err.Error(), nil)
	}

	return NewResultMessage(msg.Id, result)
}

// handleCallToolRequest handles the tools/call request
func (s *MCPServer) handleCallToolRequest(msg *MCPMessage) *MCPMessage {
	params, ok := msg.Params.(map[string]interface{})
	if !ok {
		return NewErrorMessage(msg.Id, InvalidParams, "Invalid params: expected object", nil)
	}

	result, err := s.handleCallTool(params)
	if err != nil {
		// Dispatch failures (unknown tool, malformed call shape) are protocol
		// errors; tool-logic failures never reach here, they travel inside
		// the envelope.
		ae := errors.From(err)
		switch ae.Code {
		case errors.ToolNotFound:
			return NewErrorMessage(msg.Id, MethodNotFound, ae.Message, map[string]interface{}{"code": string(ae.Code)})
		case errors.InvalidParameter:
			return NewErrorMessage(msg.Id, InvalidParams, ae.Message, map[string]interface{}{"code": string(ae.Code)})
		default:
			return NewErrorMessage(msg.Id, InternalError, err.Error(), nil)
		}
	}

	return NewResultMessage(msg.Id, result)
}

// handleListResourcesRequest handles the resources/list request
func (s *MCPServer) handleListResourcesRequest(msg *MCPMessage) *MCPMessage {
	result, err := s.handleListResources()
	if err != nil {
		return NewErrorMessage(msg.Id, InternalError, err.Error(), nil)
	}

	return NewResultMessage(msg.Id, result)
}

// handleReadResourceRequest handles the resources/read request
func (s *MCPServer) handleReadResourceRequest(msg *MCPMessage) *MCPMessage {
	params, ok := msg.Params.(map[string]interface{})
	if !ok {
		return NewErrorMessage(msg.Id, InvalidParams, "Invalid params: expected object", nil)
	}

	result, err := s.handleReadResource(params)
	if err != nil {
		ae := errors.From(err)
		if ae.Code == errors.InvalidParameter {
			return NewErrorMessage(msg.Id, InvalidParams, ae.Message, nil)
		}
		return NewErrorMessage(msg.Id, InternalError, err.Error(), nil)
	}

	return NewResultMessage(msg.Id, result)
}

// handleListTools returns the list of available tools
func (s *MCPServer) handleListTools() (interface{}, error) {
	return map[string]interface{}{
		"tools": s.GetToolDefinitions(),
	}, nil
}

// handleCallTool executes a tool and wraps its envelope into MCP content.
func (s *MCPServer) handleCallTool(params map[string]interface{}) (interface{}, error) {
	toolName, ok := params["name"].(string)
	if !ok || toolName == "" {
		return nil, errors.NewInvalidParameterError("tool name is required")
	}

	toolParams, ok := params["arguments"].(map[string]interface{})
	if !ok {
		toolParams = make(map[string]interface{})
	}

	handler, exists := s.tools[toolName]
	if !exists {
		return nil, errors.NewToolNotFoundError(toolName)
	}

	s.logger.Info("Calling tool",
		"tool", toolName,
		"params", toolParams,
	)

	start := time.Now()
	resp, err := handler(toolParams)
	elapsed := time.Since(start)

	if err != nil {
		// Tool-logic failure: wrap in envelope format
		resp = envelope.New().Data(nil).Error(err).Build()
	}
	if resp == nil {
		resp = envelope.Operational(nil)
	}

	jsonBytes, err := json.Marshal(resp)
	if err != nil {
		return nil, errors.NewOperationError("marshal response", err)
	}

	s.metrics.Record(toolName, resp, len(jsonBytes), elapsed)

	result := map[string]interface{}{
		"content": []map[string]interface{}{
			{
				"type": "text",
				"text": string(jsonBytes),
			},
		},
	}
	if resp.IsError() {
		result["isError"] = true
	}

	return result, nil
}

// handleListResources returns the list of available resources
func (s *MCPServer) handleListResources() (interface{}, error) {
	resources, templates := s.GetResourceDefinitions()
	return map[string]interface{}{
		"resources":         resources,
		"resourceTemplates": templates,
	}, nil
}

// handleReadResource reads a resource by URI
func (s *MCPServer) handleReadResource(params map[string]interface{}) (interface{}, error) {
	uri, ok := params["uri"].(string)
	if !ok {
		return nil, errors.NewInvalidParameterError("uri is required")
	}

	s.logger.Info("Reading resource",
		"uri", uri,
	)

	result, err := s.handleResourceRead(uri)
	if err != nil {
		return nil, err
	}

	jsonBytes, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return nil, errors.NewOperationError("marshal resource", err)
	}

	return map[string]interface{}{
		"contents": []map[string]interface{}{
			{
				"uri":      uri,
				"mimeType": "application/json",
				"text":     string(jsonBytes),
			},
		},
	}, nil
}
