package main

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/ndk/internal/executor"
	"github.com/ternarybob/ndk/pkg/uri"
)

func errorResult(format string, args ...interface{}) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.NewTextContent(fmt.Sprintf(format, args...))},
	}
}

func parseExpandMode(s string) executor.ExpandMode {
	if s == "auto" {
		return executor.ExpandAuto
	}
	return executor.ExpandNone
}

func parseLoadMode(s string) executor.LoadMode {
	switch s {
	case "force":
		return executor.LoadForce
	case "none":
		return executor.LoadNone
	default:
		return executor.LoadAuto
	}
}

// handleResourcesLoad implements the resources_load tool (§6.2
// resources/load).
func handleResourcesLoad(e *executor.Executor, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		rawURI, err := request.RequireString("uri")
		if err != nil || rawURI == "" {
			return errorResult("Error: uri parameter is required"), nil
		}
		target, err := uri.ParseKnowledgeURI(rawURI)
		if err != nil {
			return errorResult("Error: invalid uri: %v", err), nil
		}

		var observe []executor.Observable
		for _, s := range request.GetStringSlice("observe", nil) {
			obs, err := uri.ParseKnowledgeURI(s)
			if err != nil {
				return errorResult("Error: invalid observe uri %q: %v", s, err), nil
			}
			observe = append(observe, obs)
		}

		action := executor.Action{
			Kind:        executor.ActionLoad,
			LoadURI:     target.Resource,
			ExpandDepth: request.GetInt("expand_depth", 0),
			ExpandMode:  parseExpandMode(request.GetString("expand_mode", "none")),
			LoadMode:    parseLoadMode(request.GetString("load_mode", "auto")),
			Observe:     observe,
		}

		return runQuery(ctx, e, logger, action)
	}
}

// handleResourcesObserve implements the resources_observe tool (§6.2
// resources/observe).
func handleResourcesObserve(e *executor.Executor, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		rawURI, err := request.RequireString("uri")
		if err != nil || rawURI == "" {
			return errorResult("Error: uri parameter is required"), nil
		}
		observable, err := uri.ParseKnowledgeURI(rawURI)
		if err != nil {
			return errorResult("Error: invalid uri: %v", err), nil
		}

		action := executor.Action{Kind: executor.ActionObserve, ObserveURI: observable}
		return runQuery(ctx, e, logger, action)
	}
}

// handleResourcesAttach implements the resources_attach tool (§6.2
// resources/attachment).
func handleResourcesAttach(e *executor.Executor, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		rawURI, err := request.RequireString("uri")
		if err != nil || rawURI == "" {
			return errorResult("Error: uri parameter is required"), nil
		}
		target, err := uri.ParseKnowledgeURI(rawURI)
		if err != nil {
			return errorResult("Error: invalid uri: %v", err), nil
		}

		attachmentType, err := request.RequireString("attachment_type")
		if err != nil {
			return errorResult("Error: attachment_type parameter is required"), nil
		}

		payload := executor.Attachment{MimeType: request.GetString("mime_type", "")}
		switch attachmentType {
		case "plain":
			payload.Kind = executor.AttachmentPlain
			payload.Text = request.GetString("text", "")
		case "url":
			payload.Kind = executor.AttachmentURL
			payload.URL = request.GetString("url", "")
		case "blob":
			payload.Kind = executor.AttachmentBlob
			blob, err := base64.StdEncoding.DecodeString(request.GetString("blob_base64", ""))
			if err != nil {
				return errorResult("Error: blob_base64 is not valid base64: %v", err), nil
			}
			payload.Blob = blob
		default:
			return errorResult("Error: attachment_type must be blob, plain or url, got %q", attachmentType), nil
		}

		action := executor.Action{
			Kind:              executor.ActionAttachment,
			AttachmentURI:     target.Resource,
			AttachmentPayload: payload,
		}
		if name := request.GetString("name", ""); name != "" {
			action.AttachmentName = &name
		}
		if description := request.GetString("description", ""); description != "" {
			action.AttachmentDescription = &description
		}

		return runQuery(ctx, e, logger, action)
	}
}

// runQuery runs a single action through the executor and formats the
// resulting Resources bundle as markdown.
func runQuery(ctx context.Context, e *executor.Executor, logger arbor.ILogger, action executor.Action) (*mcp.CallToolResult, error) {
	out, err := e.ExecuteQueryAll(ctx, []executor.Action{action}, executor.QueryOptions{})
	if err != nil {
		logger.Error().Err(err).Msg("query execution failed")
		return errorResult("Query error: %v", err), nil
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.NewTextContent(formatResources(out))},
	}, nil
}
