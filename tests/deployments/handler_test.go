package deployments_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/cyberforge/cyberforge/internal/deployments"
	"github.com/cyberforge/cyberforge/pkg/pagination"
)

type mockSystem struct {
	recordFn func(ctx context.Context, cmd deployments.RecordCommand) (*deployments.Deployment, error)
	listFn   func(ctx context.Context, page pagination.PageRequest, filters deployments.Filters) (*pagination.PageResult[deployments.Deployment], error)
	findFn   func(ctx context.Context, id uuid.UUID) (*deployments.Deployment, error)
}

func (m *mockSystem) Handler() *deployments.Handler {
	return newTestHandler(m)
}

func (m *mockSystem) Record(ctx context.Context, cmd deployments.RecordCommand) (*deployments.Deployment, error) {
	return m.recordFn(ctx, cmd)
}

func (m *mockSystem) List(ctx context.Context, page pagination.PageRequest, filters deployments.Filters) (*pagination.PageResult[deployments.Deployment], error) {
	return m.listFn(ctx, page, filters)
}

func (m *mockSystem) Find(ctx context.Context, id uuid.UUID) (*deployments.Deployment, error) {
	return m.findFn(ctx, id)
}

func newTestHandler(sys deployments.System) *deployments.Handler {
	return deployments.NewHandler(
		sys,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		pagination.Config{DefaultPageSize: 20, MaxPageSize: 100},
	)
}

func setupMux(h *deployments.Handler) *http.ServeMux {
	mux := http.NewServeMux()
	group := h.Routes()
	for _, route := range group.Routes {
		pattern := route.Method + " " + group.Prefix + route.Pattern
		mux.HandleFunc(pattern, route.Handler)
	}
	return mux
}

func sampleDeployment() deployments.Deployment {
	now := time.Now().UTC().Truncate(time.Second)
	recID := uuid.MustParse("550e8400-e29b-41d4-a716-446655440000")
	platform := "streamlit-cloud"
	level := "strict"
	return deployments.Deployment{
		ID:               uuid.New(),
		UserID:           uuid.MustParse("660e8400-e29b-41d4-a716-446655440000"),
		RecommendationID: &recID,
		Title:            "Applied: Deployment recommendation based on 6 recent threats",
		Platform:         &platform,
		SecurityLevel:    &level,
		DeployedAt:       now,
		WasSuccessful:    true,
		CreatedAt:        now,
	}
}

func TestHandlerRecord(t *testing.T) {
	d := sampleDeployment()

	t.Run("records deployment", func(t *testing.T) {
		sys := &mockSystem{
			recordFn: func(_ context.Context, cmd deployments.RecordCommand) (*deployments.Deployment, error) {
				if cmd.Title == "" {
					t.Error("title not decoded")
				}
				return &d, nil
			},
		}
		mux := setupMux(newTestHandler(sys))

		body, _ := json.Marshal(deployments.RecordCommand{
			UserID:        d.UserID,
			Title:         d.Title,
			WasSuccessful: true,
		})

		w := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/deployments", bytes.NewReader(body))
		mux.ServeHTTP(w, req)

		if w.Code != http.StatusCreated {
			t.Fatalf("status = %d, want 201", w.Code)
		}
	})

	t.Run("invalid command yields 400", func(t *testing.T) {
		sys := &mockSystem{
			recordFn: func(_ context.Context, cmd deployments.RecordCommand) (*deployments.Deployment, error) {
				return nil, cmd.Validate()
			},
		}
		mux := setupMux(newTestHandler(sys))

		body, _ := json.Marshal(deployments.RecordCommand{UserID: d.UserID})

		w := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/deployments", bytes.NewReader(body))
		mux.ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", w.Code)
		}
	})
}

func TestHandlerList(t *testing.T) {
	d := sampleDeployment()
	sys := &mockSystem{
		listFn: func(_ context.Context, _ pagination.PageRequest, filters deployments.Filters) (*pagination.PageResult[deployments.Deployment], error) {
			if !filters.SuccessfulOnly {
				t.Error("successful_only filter not parsed")
			}
			result := pagination.NewPageResult([]deployments.Deployment{d}, 1, 1, 20)
			return &result, nil
		},
	}
	mux := setupMux(newTestHandler(sys))

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/deployments?successful_only=true", nil)
	mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
}

func TestHandlerFind(t *testing.T) {
	d := sampleDeployment()
	sys := &mockSystem{
		findFn: func(_ context.Context, id uuid.UUID) (*deployments.Deployment, error) {
			if id == d.ID {
				return &d, nil
			}
			return nil, deployments.ErrNotFound
		},
	}
	mux := setupMux(newTestHandler(sys))

	t.Run("found", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/deployments/"+d.ID.String(), nil)
		mux.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", w.Code)
		}
	})

	t.Run("missing yields 404", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/deployments/"+uuid.NewString(), nil)
		mux.ServeHTTP(w, req)

		if w.Code != http.StatusNotFound {
			t.Fatalf("status = %d, want 404", w.Code)
		}
	})
}

func TestRecordCommandValidate(t *testing.T) {
	valid := deployments.RecordCommand{UserID: uuid.New(), Title: "Manual Deployment"}
	if err := valid.Validate(); err != nil {
		t.Errorf("valid command: %v", err)
	}

	missing := deployments.RecordCommand{Title: "Manual Deployment"}
	if err := missing.Validate(); err == nil {
		t.Error("expected error for missing user_id")
	}

	untitled := deployments.RecordCommand{UserID: uuid.New()}
	if err := untitled.Validate(); err == nil {
		t.Error("expected error for missing title")
	}
}

func TestFiltersFromQuery(t *testing.T) {
	userID := uuid.New()
	recID := uuid.New()

	values := url.Values{}
	values.Set("user_id", userID.String())
	values.Set("recommendation_id", recID.String())
	values.Set("successful_only", "true")

	f := deployments.FiltersFromQuery(values)

	if f.UserID == nil || *f.UserID != userID {
		t.Error("user_id not parsed")
	}
	if f.RecommendationID == nil || *f.RecommendationID != recID {
		t.Error("recommendation_id not parsed")
	}
	if !f.SuccessfulOnly {
		t.Error("successful_only not parsed")
	}
}
