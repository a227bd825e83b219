package main

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// createResourcesLoadTool mirrors §6.2's resources/load action object:
// load a resource, optionally expanding its relations/dependencies and
// observing a set of affordances in the same round trip.
func createResourcesLoadTool() mcp.Tool {
	return mcp.NewTool("resources_load",
		mcp.WithDescription("Load a resource by its ndk:// URI, optionally expanding related resources and observing affordances"),
		mcp.WithString("uri",
			mcp.Required(),
			mcp.Description("Resource URI, e.g. ndk://github/acme/widgets/issues/42"),
		),
		mcp.WithNumber("expand_depth",
			mcp.Description("How many relation/dependency hops to expand (default: 0)"),
		),
		mcp.WithString("expand_mode",
			mcp.Description("none or auto (default: none)"),
		),
		mcp.WithString("load_mode",
			mcp.Description("none, auto or force (default: auto)"),
		),
		mcp.WithArray("observe",
			mcp.WithStringItems(),
			mcp.Description("Observable URIs to observe, e.g. [\"ndk://github/acme/widgets/issues/42/$body\"]"),
		),
	)
}

// createResourcesObserveTool mirrors §6.2's resources/observe action
// object: observe a single already-known affordance.
func createResourcesObserveTool() mcp.Tool {
	return mcp.NewTool("resources_observe",
		mcp.WithDescription("Observe a single resource affordance by its ndk:// Observable URI"),
		mcp.WithString("uri",
			mcp.Required(),
			mcp.Description("Observable URI, e.g. ndk://github/acme/widgets/issues/42/$body"),
		),
	)
}

// createResourcesAttachTool mirrors §6.2's resources/attachment action
// object: write an inline blob/plain/url payload straight to history.
func createResourcesAttachTool() mcp.Tool {
	return mcp.NewTool("resources_attach",
		mcp.WithDescription("Attach an inline blob, plain text or URL payload to a resource"),
		mcp.WithString("uri",
			mcp.Required(),
			mcp.Description("Resource URI the attachment belongs to"),
		),
		mcp.WithString("name",
			mcp.Description("Short attachment name"),
		),
		mcp.WithString("description",
			mcp.Description("Longer attachment description"),
		),
		mcp.WithString("attachment_type",
			mcp.Required(),
			mcp.Description("blob, plain or url"),
		),
		mcp.WithString("mime_type",
			mcp.Description("MIME type of the attachment payload"),
		),
		mcp.WithString("text",
			mcp.Description("Text payload, when attachment_type is plain"),
		),
		mcp.WithString("url",
			mcp.Description("Remote URL, when attachment_type is url"),
		),
		mcp.WithString("blob_base64",
			mcp.Description("Base64-encoded payload, when attachment_type is blob"),
		),
	)
}
