package reminder

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const (
	serverName    = "reminder"
	serverVersion = "2.0.0"
)

// Server is the MCP server for reminder management.
type Server struct {
	mcpServer *server.MCPServer
	store     *SQLStore
	engine    *Engine
	today     func() Date
}

// NewServer creates a new Reminder MCP server backed by the given store.
// today supplies the reference date for status and renewal decisions.
func NewServer(store *SQLStore, engine *Engine, today func() Date) *Server {
	s := &Server{
		store:  store,
		engine: engine,
		today:  today,
	}

	s.mcpServer = server.NewMCPServer(
		serverName,
		serverVersion,
		server.WithToolCapabilities(false),
	)

	s.registerTools()
	return s
}

// MCPServer returns the underlying MCP server for serving.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

func (s *Server) registerTools() {
	recordOptions := []mcp.ToolOption{
		mcp.WithString("type", mcp.Description("Category, e.g. certification or contract")),
		mcp.WithString("certifier", mcp.Description("Person holding the certification")),
		mcp.WithString("handler", mcp.Description("Person responsible for renewal")),
		mcp.WithNumber("period", mcp.Description("Informational renewal cycle in days")),
		mcp.WithString("start_date", mcp.Description("Start date, YYYY-MM-DD")),
		mcp.WithNumber("advance_days", mcp.Description("Days before end_date to start reminding (default 0)")),
		mcp.WithBoolean("auto_renew", mcp.Description("Create a successor automatically once expired")),
		mcp.WithNumber("renew_period", mcp.Description("Days covered by each renewal (default 365)")),
	}

	// add_reminder
	addOpts := append([]mcp.ToolOption{
		mcp.WithDescription("Add a reminder for a compliance or renewal item"),
		mcp.WithString("name", mcp.Required(), mcp.Description("Reminder name")),
		mcp.WithString("end_date", mcp.Required(), mcp.Description("Deadline, YYYY-MM-DD")),
	}, recordOptions...)
	s.mcpServer.AddTool(mcp.NewTool("add_reminder", addOpts...), s.handleAddReminder)

	// update_reminder
	updateOpts := append([]mcp.ToolOption{
		mcp.WithDescription("Replace a reminder. Fields not given keep their current value"),
		mcp.WithNumber("id", mcp.Required(), mcp.Description("Reminder ID")),
		mcp.WithString("name", mcp.Description("Reminder name")),
		mcp.WithString("end_date", mcp.Description("Deadline, YYYY-MM-DD")),
	}, recordOptions...)
	s.mcpServer.AddTool(mcp.NewTool("update_reminder", updateOpts...), s.handleUpdateReminder)

	// list_reminders
	s.mcpServer.AddTool(
		mcp.NewTool("list_reminders",
			mcp.WithDescription("List reminders with their computed status, optionally filtered by status"),
			mcp.WithString("status", mcp.Description("Filter: normal, warning, expired, or empty for all")),
		),
		s.handleListReminders,
	)

	// get_stats
	s.mcpServer.AddTool(
		mcp.NewTool("get_stats",
			mcp.WithDescription("Count reminders: total, warning, expired, normal"),
		),
		s.handleGetStats,
	)

	// get_upcoming_reminders
	s.mcpServer.AddTool(
		mcp.NewTool("get_upcoming_reminders",
			mcp.WithDescription("Get reminders whose reminder window is open today"),
		),
		s.handleGetUpcoming,
	)

	// run_renewal
	s.mcpServer.AddTool(
		mcp.NewTool("run_renewal",
			mcp.WithDescription("Create successors for expired auto-renewing reminders"),
		),
		s.handleRunRenewal,
	)

	// delete_reminder
	s.mcpServer.AddTool(
		mcp.NewTool("delete_reminder",
			mcp.WithDescription("Delete a reminder permanently"),
			mcp.WithNumber("id", mcp.Required(), mcp.Description("Reminder ID")),
		),
		s.handleDeleteReminder,
	)
}

func (s *Server) handleAddReminder(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	draft, err := draftFromArgs(req.GetArguments())
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	added, err := s.store.Create(ctx, draft)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to add reminder: %v", err)), nil
	}
	return jsonResult(View{Reminder: *added, Status: Classify(*added, s.today())})
}

func (s *Server) handleUpdateReminder(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, ok := idArg(req)
	if !ok {
		return mcp.NewToolResultError("id is required and must be a positive number"), nil
	}

	existing, err := s.store.GetByID(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to get reminder: %v", err)), nil
	}

	// Overlay the given arguments on the stored record.
	base, err := toArgs(existing.Draft)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	for k, v := range req.GetArguments() {
		if k != "id" {
			base[k] = v
		}
	}
	draft, err := draftFromArgs(base)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	updated, err := s.store.Replace(ctx, id, draft)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to update reminder: %v", err)), nil
	}
	return jsonResult(View{Reminder: *updated, Status: Classify(*updated, s.today())})
}

func (s *Server) handleListReminders(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	today := s.today()
	reminders, err := s.store.List(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list reminders: %v", err)), nil
	}

	if v := req.GetString("status", ""); v != "" {
		status, err := ParseStatus(v)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		reminders = FilterByStatus(reminders, status, today)
	}

	if len(reminders) == 0 {
		return mcp.NewToolResultText("No reminders found."), nil
	}
	return jsonResult(Views(reminders, today))
}

func (s *Server) handleGetStats(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	reminders, err := s.store.List(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list reminders: %v", err)), nil
	}
	return jsonResult(ComputeStats(reminders, s.today()))
}

func (s *Server) handleGetUpcoming(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	today := s.today()
	reminders, err := s.store.List(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list reminders: %v", err)), nil
	}

	upcoming := Upcoming(reminders, today)
	if len(upcoming) == 0 {
		return mcp.NewToolResultText("No upcoming reminders."), nil
	}
	return jsonResult(Views(upcoming, today))
}

func (s *Server) handleRunRenewal(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	res, err := s.engine.Run(ctx, s.today())
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("renewal failed: %v", err)), nil
	}
	return jsonResult(res.Report())
}

func (s *Server) handleDeleteReminder(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, ok := idArg(req)
	if !ok {
		return mcp.NewToolResultError("id is required and must be a positive number"), nil
	}

	if err := s.store.Delete(ctx, id); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to delete reminder: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Reminder %d deleted.", id)), nil
}

func idArg(req mcp.CallToolRequest) (int64, bool) {
	idFloat := req.GetFloat("id", -1)
	if idFloat <= 0 {
		return 0, false
	}
	return int64(idFloat), true
}

// draftFromArgs routes tool arguments through the wire decoder so MCP
// clients get the same validation as HTTP clients.
func draftFromArgs(args map[string]any) (Draft, error) {
	data, err := json.Marshal(args)
	if err != nil {
		return Draft{}, fmt.Errorf("invalid arguments: %w", err)
	}
	return DecodeDraft(data)
}

func toArgs(d Draft) (map[string]any, error) {
	data, err := json.Marshal(d)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return m, nil
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	output, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(output)), nil
}
