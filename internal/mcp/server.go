package mcp

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/aisle-md/aislemd/internal/database"
	"github.com/aisle-md/aislemd/internal/services"
	"github.com/aisle-md/aislemd/internal/usecase"
)

// ShoppingList is the use case the tools call into.
type ShoppingList interface {
	Sync(ctx context.Context) (*usecase.Result, error)
	List(ctx context.Context) (*usecase.Result, error)
	Item(ctx context.Context, id string) (*database.ItemRecord, error)
}

// Server exposes the shopping list as MCP tools.
type Server struct {
	server *mcp.Server
	list   ShoppingList
	logger *zap.Logger
}

// NewServer creates a new MCP server instance
func NewServer(list ShoppingList, version string, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	mcpServer := mcp.NewServer(&mcp.Implementation{
		Name:    "aisle.md",
		Version: version,
	}, nil)

	s := &Server{
		server: mcpServer,
		list:   list,
		logger: logger,
	}

	s.registerTools()

	return s
}

// Run serves over stdio until the client disconnects or ctx ends.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "shopping_list_sync",
		Description: "Sync the shopping list from Reminders, look up aisles and return it grouped by aisle",
	}, s.handleSync)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "shopping_list",
		Description: "Return the stored shopping list grouped by aisle without syncing",
	}, s.handleList)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "shopping_item",
		Description: "Get the stored record for one shopping list item",
	}, s.handleItem)
}

type ListInput struct{}

type ItemInput struct {
	ID string `json:"id" jsonschema:"the Reminders external id of the item"`
}

type ItemOutput struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Aisle     *string `json:"aisle,omitempty"`
	Image     *string `json:"image,omitempty"`
	Error     *string `json:"error,omitempty"`
	CreatedAt string  `json:"createdAt"`
	UpdatedAt string  `json:"updatedAt"`
}

type GroupOutput struct {
	Aisle string       `json:"aisle"`
	Items []ItemOutput `json:"items"`
}

type ListOutput struct {
	Groups []GroupOutput `json:"groups"`
}

type FailureOutput struct {
	ID   string `json:"id"`
	Code string `json:"code"`
}

type ReportOutput struct {
	SyncID      string          `json:"syncId"`
	Inserted    int             `json:"inserted"`
	Deleted     int             `json:"deleted"`
	Renamed     int             `json:"renamed"`
	Queued      int             `json:"queued"`
	Enriched    int             `json:"enriched"`
	Failed      []FailureOutput `json:"failed,omitempty"`
	SourceError string          `json:"sourceError,omitempty"`
}

type SyncOutput struct {
	Groups []GroupOutput `json:"groups"`
	Report ReportOutput  `json:"report"`
}

func (s *Server) handleSync(ctx context.Context, req *mcp.CallToolRequest, _ ListInput) (*mcp.CallToolResult, SyncOutput, error) {
	result, err := s.list.Sync(ctx)
	if err != nil {
		s.logger.Error("mcp sync failed", zap.Error(err))
		return nil, SyncOutput{}, fmt.Errorf("failed to sync shopping list: %w", err)
	}

	return nil, SyncOutput{
		Groups: toGroups(result.Groups),
		Report: toReport(result.Report),
	}, nil
}

func (s *Server) handleList(ctx context.Context, req *mcp.CallToolRequest, _ ListInput) (*mcp.CallToolResult, ListOutput, error) {
	result, err := s.list.List(ctx)
	if err != nil {
		return nil, ListOutput{}, fmt.Errorf("failed to load shopping list: %w", err)
	}

	return nil, ListOutput{Groups: toGroups(result.Groups)}, nil
}

func (s *Server) handleItem(ctx context.Context, req *mcp.CallToolRequest, input ItemInput) (*mcp.CallToolResult, ItemOutput, error) {
	if input.ID == "" {
		return nil, ItemOutput{}, errors.New("id is required")
	}

	rec, err := s.list.Item(ctx, input.ID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, ItemOutput{}, fmt.Errorf("item not found: %s", input.ID)
		}
		return nil, ItemOutput{}, fmt.Errorf("failed to get item: %w", err)
	}

	return nil, toItem(*rec), nil
}

func toGroups(groups []services.Group) []GroupOutput {
	out := make([]GroupOutput, 0, len(groups))
	for _, g := range groups {
		items := make([]ItemOutput, 0, len(g.Items))
		for _, it := range g.Items {
			items = append(items, toItem(it))
		}
		out = append(out, GroupOutput{Aisle: g.Aisle, Items: items})
	}
	return out
}

func toItem(rec database.ItemRecord) ItemOutput {
	return ItemOutput{
		ID:        rec.ID,
		Name:      rec.Name,
		Aisle:     rec.Aisle,
		Image:     rec.Image,
		Error:     rec.Error,
		CreatedAt: rec.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt: rec.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func toReport(report *usecase.SyncReport) ReportOutput {
	if report == nil {
		return ReportOutput{}
	}
	out := ReportOutput{
		SyncID:   report.SyncID,
		Inserted: report.Inserted,
		Deleted:  report.Deleted,
		Renamed:  report.Renamed,
		Queued:   report.Queued,
		Enriched: report.Enriched,
	}
	for _, f := range report.Failed {
		out.Failed = append(out.Failed, FailureOutput{ID: f.ID, Code: f.Code})
	}
	if report.SourceErr != nil {
		out.SourceError = report.SourceErr.Error()
	}
	return out
}
