package mcp

import (
	"context"
	"strings"

	"awmcp/internal/errors"
)

// Resource represents a static resource
type Resource struct {
	URI  string `json:"uri"`
	Name string `json:"name"`
}

// ResourceTemplate represents a dynamic resource with URI template
type ResourceTemplate struct {
	URITemplate string `json:"uriTemplate"`
	Name        string `json:"name"`
}

// GetResourceDefinitions returns static resources and resource templates
func (s *MCPServer) GetResourceDefinitions() ([]Resource, []ResourceTemplate) {
	resources := []Resource{
		{
			URI:  "awmcp://server",
			Name: "Server Info",
		},
		{
			URI:  "awmcp://buckets",
			Name: "Buckets",
		},
		{
			URI:  "awmcp://queries",
			Name: "Query Templates",
		},
	}

	templates := []ResourceTemplate{
		{
			URITemplate: "awmcp://bucket/{bucketId}",
			Name:        "Bucket",
		},
	}

	return resources, templates
}

// handleResourceRead handles reading a resource by URI
func (s *MCPServer) handleResourceRead(uri string) (interface{}, error) {
	if !strings.HasPrefix(uri, "awmcp://") {
		return nil, errors.NewInvalidParameterError("expected awmcp:// resource URI")
	}

	path := strings.TrimPrefix(uri, "awmcp://")
	parts := strings.Split(path, "/")

	switch parts[0] {
	case "server":
		return s.readServerResource(), nil
	case "buckets":
		return s.readBucketsResource()
	case "queries":
		return s.readQueriesResource(), nil
	case "bucket":
		if len(parts) < 2 || parts[1] == "" {
			return nil, errors.NewInvalidParameterError("bucket URI requires a bucket ID")
		}
		return s.readBucketResource(strings.Join(parts[1:], "/"))
	default:
		return nil, errors.NewInvalidParameterError("unknown resource: " + uri)
	}
}

// readServerResource describes this server and, when reachable, the remote
// aw-server behind it.
func (s *MCPServer) readServerResource() interface{} {
	result := map[string]interface{}{
		"name":    "awmcp",
		"version": s.version,
		"server":  s.client.BaseURL(),
	}

	if info, err := s.client.GetInfo(context.Background()); err == nil {
		result["remote"] = info
	} else {
		result["remoteError"] = err.Error()
	}
	return result
}

func (s *MCPServer) readBucketsResource() (interface{}, error) {
	buckets, err := s.client.ListBuckets(context.Background())
	if err != nil {
		return nil, remoteError(err, "")
	}
	return map[string]interface{}{
		"buckets": buckets,
		"count":   len(buckets),
	}, nil
}

func (s *MCPServer) readQueriesResource() interface{} {
	type entry struct {
		Name        string   `json:"name"`
		Description string   `json:"description,omitempty"`
		Params      []string `json:"params,omitempty"`
		Statements  []string `json:"statements"`
	}

	names := s.queries.Names()
	templates := make([]entry, 0, len(names))
	for _, name := range names {
		tmpl, _ := s.queries.Get(name)
		templates = append(templates, entry{
			Name:        name,
			Description: tmpl.Description,
			Params:      tmpl.Params,
			Statements:  tmpl.Statements,
		})
	}
	return map[string]interface{}{
		"templates": templates,
	}
}

func (s *MCPServer) readBucketResource(bucketID string) (interface{}, error) {
	buckets, err := s.client.ListBuckets(context.Background())
	if err != nil {
		return nil, remoteError(err, "")
	}
	for _, b := range buckets {
		if b.ID == bucketID {
			return b, nil
		}
	}
	return nil, errors.NewBucketNotFoundError(bucketID)
}
