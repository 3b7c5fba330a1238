package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aisle-md/aislemd/internal/database"
	"github.com/aisle-md/aislemd/internal/services"
	"github.com/aisle-md/aislemd/internal/usecase"
)

type stubList struct {
	result *usecase.Result
	items  map[string]database.ItemRecord
	err    error
}

func (s *stubList) Sync(context.Context) (*usecase.Result, error) { return s.result, s.err }
func (s *stubList) List(context.Context) (*usecase.Result, error) { return s.result, s.err }

func (s *stubList) Item(_ context.Context, id string) (*database.ItemRecord, error) {
	rec, ok := s.items[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	return &rec, nil
}

func connect(t *testing.T, list ShoppingList) *mcp.ClientSession {
	t.Helper()
	ctx := context.Background()

	server := NewServer(list, "test", nil)
	serverTransport, clientTransport := mcp.NewInMemoryTransports()

	serverSession, err := server.server.Connect(ctx, serverTransport, nil)
	require.NoError(t, err)

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "test"}, nil)
	clientSession, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = clientSession.Close()
		_ = serverSession.Wait()
	})
	return clientSession
}

func decode[T any](t *testing.T, res *mcp.CallToolResult) T {
	t.Helper()
	var out T
	raw, err := json.Marshal(res.StructuredContent)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func milk() database.ItemRecord {
	aisle := "Aisle 3"
	at := time.Date(2026, 10, 17, 9, 30, 0, 0, time.UTC)
	return database.ItemRecord{ID: "r1", Name: "Milk", Aisle: &aisle, CreatedAt: at, UpdatedAt: at}
}

func TestToolsAreRegistered(t *testing.T) {
	session := connect(t, &stubList{})

	res, err := session.ListTools(context.Background(), nil)
	require.NoError(t, err)

	names := make([]string, 0, len(res.Tools))
	for _, tool := range res.Tools {
		names = append(names, tool.Name)
	}
	assert.ElementsMatch(t, []string{"shopping_list_sync", "shopping_list", "shopping_item"}, names)
}

func TestSyncToolReturnsGroupsAndReport(t *testing.T) {
	list := &stubList{result: &usecase.Result{
		Groups: []services.Group{{Aisle: "Aisle 3", Items: []database.ItemRecord{milk()}}},
		Report: &usecase.SyncReport{
			SyncID:   "sync-1",
			Inserted: 1,
			Queued:   2,
			Enriched: 1,
			Failed:   []services.Failed{{ID: "r2", Code: "503"}},
		},
	}}
	session := connect(t, list)

	res, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "shopping_list_sync",
		Arguments: map[string]any{},
	})
	require.NoError(t, err)
	require.False(t, res.IsError)

	out := decode[SyncOutput](t, res)
	require.Len(t, out.Groups, 1)
	assert.Equal(t, "Aisle 3", out.Groups[0].Aisle)
	assert.Equal(t, "2026-10-17T09:30:00Z", out.Groups[0].Items[0].UpdatedAt)
	assert.Equal(t, "sync-1", out.Report.SyncID)
	assert.Equal(t, []FailureOutput{{ID: "r2", Code: "503"}}, out.Report.Failed)
}

func TestItemTool(t *testing.T) {
	session := connect(t, &stubList{items: map[string]database.ItemRecord{"r1": milk()}})

	res, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "shopping_item",
		Arguments: map[string]any{"id": "r1"},
	})
	require.NoError(t, err)
	require.False(t, res.IsError)

	out := decode[ItemOutput](t, res)
	assert.Equal(t, "Milk", out.Name)
	require.NotNil(t, out.Aisle)
	assert.Equal(t, "Aisle 3", *out.Aisle)

	res, err = session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "shopping_item",
		Arguments: map[string]any{"id": "missing"},
	})
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestListToolSurfacesFailures(t *testing.T) {
	session := connect(t, &stubList{err: errors.New("database is locked")})

	res, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "shopping_list",
		Arguments: map[string]any{},
	})
	require.NoError(t, err)
	assert.True(t, res.IsError)
}
