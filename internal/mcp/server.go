package mcp

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/sirupsen/logrus"

	"github.com/regdata/saqextract/internal/config"
	"github.com/regdata/saqextract/internal/export"
	"github.com/regdata/saqextract/internal/extract"
	"github.com/regdata/saqextract/internal/pdfio"
)

// Server exposes the extraction service over the Model Context Protocol.
type Server struct {
	config    *config.Config
	extractor *extract.Service
	validator *pdfio.Validator
	log       *logrus.Logger
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP server instance
func NewServer(cfg *config.Config, extractor *extract.Service, validator *pdfio.Validator, log *logrus.Logger) (*Server, error) {
	if extractor == nil {
		return nil, fmt.Errorf("extractor cannot be nil")
	}
	if validator == nil {
		return nil, fmt.Errorf("validator cannot be nil")
	}
	if log == nil {
		log = logrus.New()
	}

	mcpServer := server.NewMCPServer(
		cfg.ServerName,
		cfg.Version,
		server.WithToolCapabilities(false), // We don't support dynamic tool capabilities
	)

	s := &Server{
		config:    cfg,
		extractor: extractor,
		validator: validator,
		log:       log,
		mcpServer: mcpServer,
	}

	s.registerTools()

	return s, nil
}

// registerTools registers all available MCP tools
func (s *Server) registerTools() {
	extractTool := mcp.NewTool(
		"saq_extract_requirements",
		mcp.WithDescription("Extract structured PCI DSS requirements from a SAQ PDF document"),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Full path to the SAQ PDF file"),
		),
		mcp.WithString("language",
			mcp.Description("Language code (EN, FR, DE, ES, PT); detected from filename when empty"),
		),
		mcp.WithString("format",
			mcp.Description("Row format in the response: csv or summary (default summary)"),
		),
	)
	s.mcpServer.AddTool(extractTool, s.handleExtractRequirements)

	validateTool := mcp.NewTool(
		"saq_validate_file",
		mcp.WithDescription("Validate that a file is a readable PDF document"),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Full path to the PDF file"),
		),
	)
	s.mcpServer.AddTool(validateTool, s.handleValidateFile)

	profilesTool := mcp.NewTool(
		"saq_list_profiles",
		mcp.WithDescription("List the built-in language profiles available for extraction"),
	)
	s.mcpServer.AddTool(profilesTool, s.handleListProfiles)

	infoTool := mcp.NewTool(
		"saq_server_info",
		mcp.WithDescription("Get server information, available tools and usage guidance"),
	)
	s.mcpServer.AddTool(infoTool, s.handleServerInfo)
}

// Handler functions

func (s *Server) handleExtractRequirements(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	path = s.resolvePath(path)

	args := request.GetArguments()
	language := ""
	if lang, ok := args["language"].(string); ok {
		language = lang
	}
	format := "summary"
	if f, ok := args["format"].(string); ok && f != "" {
		format = f
	}

	result, err := s.extractor.ExtractFromFile(extract.ExtractFileRequest{
		Path:     path,
		Language: language,
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(s.formatExtractResult(result, format)), nil
}

func (s *Server) handleValidateFile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.validator.ValidateFile(s.resolvePath(path))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var responseText string
	if result.Valid {
		responseText = fmt.Sprintf("PDF file %s is valid and readable (%d pages)", result.Path, result.Pages)
	} else {
		responseText = fmt.Sprintf("PDF validation failed for %s: %s", result.Path, result.Message)
	}

	return mcp.NewToolResultText(responseText), nil
}

func (s *Server) handleListProfiles(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text := "Built-in language profiles:\n"
	for _, code := range extract.ProfileCodes() {
		profile, err := extract.ProfileFor(code)
		if err != nil {
			continue
		}
		text += fmt.Sprintf("\n• %s\n", profile.Code)
		text += fmt.Sprintf("  Test indicators: %s\n", strings.Join(profile.TestIndicators, ", "))
		text += fmt.Sprintf("  Applicability marker: %s\n", profile.ApplicabilityMarker)
		text += fmt.Sprintf("  Guidance marker: %s\n", profile.GuidanceMarker)
	}
	return mcp.NewToolResultText(text), nil
}

func (s *Server) handleServerInfo(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text := fmt.Sprintf("%s v%s - Server Information\n", s.config.ServerName, s.config.Version)
	text += fmt.Sprintf("Document Directory: %s\n", s.config.DocumentDirectory)
	text += fmt.Sprintf("Max File Size: %d MB\n\n", s.config.MaxFileSize/(1024*1024))

	text += "Available Tools:\n"
	text += "\n• saq_extract_requirements\n"
	text += "  Extract structured requirements (number, text, tests, guidance) from a SAQ PDF.\n"
	text += "  Parameters: path (required), language, format\n"
	text += "\n• saq_validate_file\n"
	text += "  Validate that a file is a readable PDF.\n"
	text += "  Parameters: path (required)\n"
	text += "\n• saq_list_profiles\n"
	text += "  List built-in language profiles.\n"
	text += "\n• saq_server_info\n"
	text += "  This information.\n"

	text += "\nProvide SAQ D documents as PDF files. The language is detected from the "
	text += "filename (for example '-merchant-fr' selects French); pass an explicit "
	text += "language code to override."

	return mcp.NewToolResultText(text), nil
}

// resolvePath anchors a relative tool path in the configured document
// directory.
func (s *Server) resolvePath(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(s.config.DocumentDirectory, path)
}

// Formatting

func (s *Server) formatExtractResult(result *extract.ExtractResult, format string) string {
	summary := result.Summary
	text := fmt.Sprintf("Extracted %d requirement(s), language %s\n",
		summary.TotalRequirements, result.Language)
	text += fmt.Sprintf("Pages %d-%d\n", result.Range.Start+1, result.Range.End+1)
	if summary.TotalRequirements > 0 {
		text += fmt.Sprintf("First: %s, Last: %s\n", summary.FirstNumber, summary.LastNumber)
		text += fmt.Sprintf("With tests: %d, with guidance: %d, total tests: %d\n",
			summary.WithTests, summary.WithGuidance, summary.TotalTests)
	}
	for _, d := range result.Diagnostics {
		text += fmt.Sprintf("Warning (%s): %s\n", d.Kind, d.Message)
	}

	switch format {
	case "csv":
		var sb strings.Builder
		if err := export.WriteCSV(&sb, result.Requirements); err == nil {
			text += "\n" + sb.String()
		}
	default:
		if len(result.Requirements) > 0 {
			text += "\nRequirements:\n"
			for _, r := range result.Requirements {
				text += fmt.Sprintf("\n%s %s\n", r.Number, r.Text)
				for _, t := range r.Tests {
					text += fmt.Sprintf("  - %s\n", t)
				}
				if r.Guidance != "" {
					text += fmt.Sprintf("  Guidance: %s\n", r.Guidance)
				}
			}
		}
	}

	return text
}

// Run starts the MCP server in the configured mode
func (s *Server) Run(ctx context.Context) error {
	if s.config.IsServerMode() {
		return s.runServerMode(ctx)
	}
	return s.runStdioMode(ctx)
}

// runStdioMode runs the server in stdio mode
func (s *Server) runStdioMode(_ context.Context) error {
	if s.config.IsDebug() {
		s.log.WithField("dir", s.config.DocumentDirectory).Debug("starting SAQ extraction MCP server in stdio mode")
	}

	// Use the mark3labs/mcp-go server.ServeStdio function
	if err := server.ServeStdio(s.mcpServer); err != nil {
		return fmt.Errorf("failed to serve stdio: %w", err)
	}
	return nil
}

// runServerMode runs the server in HTTP server mode
func (s *Server) runServerMode(ctx context.Context) error {
	// The mark3labs transport handles HTTP differently; stdio covers every
	// current deployment.
	s.log.Warn("server mode not yet implemented, falling back to stdio mode")
	return s.runStdioMode(ctx)
}
