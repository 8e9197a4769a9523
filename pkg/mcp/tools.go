package mcp

import "github.com/mark3labs/mcp-go/mcp"

func compileTemplateTool() mcp.Tool {
	return mcp.NewTool("compile_template",
		mcp.WithDescription("Compile a react-json-templates template (.rjt.tsx / .rjt.jsx) into a component module. Returns the compiled source, or the compile error with a code frame."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Template path, absolute or relative to the project root")),
		mcp.WithString("source", mcp.Description("Unsaved template content to compile instead of the file on disk. Imports still resolve relative to path.")),
		mcp.WithString("format", mcp.Description("Output format"), mcp.Enum("source", "js")),
	)
}

func analyzeFileTool() mcp.Tool {
	return mcp.NewTool("analyze_file",
		mcp.WithDescription("Classify the exports of a module as Templates or Serializable components. Returns JSON: {\"type\": \"Exports\"|\"Template\", \"exports\": {name: {\"type\": \"Template\"|\"Serializable\", \"name\"?: string}}}."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Module path, absolute or relative to the project root")),
	)
}

func inspectTemplateTool() mcp.Tool {
	return mcp.NewTool("inspect_template",
		mcp.WithDescription("Report every tag a template uses with its props, children count and classification, including tags that would fail to compile. Returns JSON."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Template path, absolute or relative to the project root")),
		mcp.WithString("source", mcp.Description("Unsaved template content to inspect instead of the file on disk.")),
	)
}
