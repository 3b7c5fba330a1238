// Package httpapi serves the grouped shopping list over HTTP.
package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/aisle-md/aislemd/internal/database"
	"github.com/aisle-md/aislemd/internal/services"
	"github.com/aisle-md/aislemd/internal/usecase"
)

// ShoppingList is the use case behind the endpoints.
type ShoppingList interface {
	Sync(ctx context.Context) (*usecase.Result, error)
	List(ctx context.Context) (*usecase.Result, error)
}

type Server struct {
	list   ShoppingList
	logger *zap.Logger
}

func New(list ShoppingList, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{list: list, logger: logger}
}

// Handler exposes the API routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("GET /api/shopping-list", s.listEndpoint(s.list.Sync))
	mux.Handle("GET /api/shopping-list/cached", s.listEndpoint(s.list.List))
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	return mux
}

type itemJSON struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Aisle     *string   `json:"aisle"`
	Image     *string   `json:"image"`
	Error     *string   `json:"error"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type groupJSON struct {
	Aisle string     `json:"aisle"`
	Items []itemJSON `json:"items"`
}

type listResponse struct {
	Results []groupJSON `json:"results"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) listEndpoint(load func(context.Context) (*usecase.Result, error)) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		result, err := load(r.Context())
		if err != nil {
			s.logger.Error("shopping list request failed", zap.String("path", r.URL.Path), zap.Error(err))
			writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "Internal server error"})
			return
		}

		writeJSON(w, http.StatusOK, listResponse{Results: toGroupsJSON(result.Groups)})
		s.logger.Debug("served shopping list",
			zap.String("path", r.URL.Path),
			zap.Int("groups", len(result.Groups)),
			zap.Duration("elapsed", time.Since(started)),
		)
	})
}

func toGroupsJSON(groups []services.Group) []groupJSON {
	out := make([]groupJSON, 0, len(groups))
	for _, g := range groups {
		items := make([]itemJSON, 0, len(g.Items))
		for _, it := range g.Items {
			items = append(items, toItemJSON(it))
		}
		out = append(out, groupJSON{Aisle: g.Aisle, Items: items})
	}
	return out
}

func toItemJSON(rec database.ItemRecord) itemJSON {
	return itemJSON{
		ID:        rec.ID,
		Name:      rec.Name,
		Aisle:     rec.Aisle,
		Image:     rec.Image,
		Error:     rec.Error,
		CreatedAt: rec.CreatedAt.UTC(),
		UpdatedAt: rec.UpdatedAt.UTC(),
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
