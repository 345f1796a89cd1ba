package recommendations_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/cyberforge/cyberforge/internal/recommendations"
	"github.com/cyberforge/cyberforge/pkg/pagination"
)

type mockSystem struct {
	generateThreatFn func(ctx context.Context, cmd recommendations.GenerateThreatCommand) (*recommendations.Recommendation, error)
	generateCostFn   func(ctx context.Context, cmd recommendations.GenerateCostCommand) (*recommendations.Recommendation, error)
	refreshFn        func(ctx context.Context, userID uuid.UUID) ([]recommendations.Recommendation, error)
	markAppliedFn    func(ctx context.Context, id uuid.UUID) (*recommendations.Recommendation, error)
	listFn           func(ctx context.Context, page pagination.PageRequest, filters recommendations.Filters) (*pagination.PageResult[recommendations.Recommendation], error)
	findFn           func(ctx context.Context, id uuid.UUID) (*recommendations.Recommendation, error)
	exportFn         func(ctx context.Context, id uuid.UUID) (*recommendations.ExportResult, error)
}

func (m *mockSystem) Handler() *recommendations.Handler {
	return newTestHandler(m)
}

func (m *mockSystem) GenerateThreatBased(ctx context.Context, cmd recommendations.GenerateThreatCommand) (*recommendations.Recommendation, error) {
	return m.generateThreatFn(ctx, cmd)
}

func (m *mockSystem) GenerateCostOptimization(ctx context.Context, cmd recommendations.GenerateCostCommand) (*recommendations.Recommendation, error) {
	return m.generateCostFn(ctx, cmd)
}

func (m *mockSystem) Refresh(ctx context.Context, userID uuid.UUID) ([]recommendations.Recommendation, error) {
	return m.refreshFn(ctx, userID)
}

func (m *mockSystem) MarkApplied(ctx context.Context, id uuid.UUID) (*recommendations.Recommendation, error) {
	return m.markAppliedFn(ctx, id)
}

func (m *mockSystem) List(ctx context.Context, page pagination.PageRequest, filters recommendations.Filters) (*pagination.PageResult[recommendations.Recommendation], error) {
	return m.listFn(ctx, page, filters)
}

func (m *mockSystem) Find(ctx context.Context, id uuid.UUID) (*recommendations.Recommendation, error) {
	return m.findFn(ctx, id)
}

func (m *mockSystem) Export(ctx context.Context, id uuid.UUID) (*recommendations.ExportResult, error) {
	return m.exportFn(ctx, id)
}

func newTestHandler(sys recommendations.System) *recommendations.Handler {
	return recommendations.NewHandler(
		sys,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		pagination.Config{DefaultPageSize: 20, MaxPageSize: 100},
	)
}

func setupMux(h *recommendations.Handler) *http.ServeMux {
	mux := http.NewServeMux()
	group := h.Routes()
	for _, route := range group.Routes {
		pattern := route.Method + " " + group.Prefix + route.Pattern
		mux.HandleFunc(pattern, route.Handler)
	}
	return mux
}

func sampleRecommendation() recommendations.Recommendation {
	now := time.Now().UTC().Truncate(time.Second)
	start := now
	end := now.Add(168 * time.Hour)
	expires := now.Add(168 * time.Hour)
	summary := "Threat Assessment Summary"

	return recommendations.Recommendation{
		ID:                      uuid.MustParse("550e8400-e29b-41d4-a716-446655440000"),
		UserID:                  uuid.MustParse("660e8400-e29b-41d4-a716-446655440000"),
		Title:                   "Deployment recommendation based on 6 recent threats",
		Description:             "Automatic recommendation generated from threat analysis over the past 7 days.",
		SecurityLevel:           recommendations.SecurityStrict,
		TimingRecommendation:    recommendations.TimingHighRisk,
		TimingJustification:     "High severity threats detected in the past 7 days.",
		RecommendedWindowStart:  &start,
		RecommendedWindowEnd:    &end,
		ThreatAssessmentSummary: &summary,
		HighRiskThreatsCount:    1,
		MediumRiskThreatsCount:  3,
		LowRiskThreatsCount:     2,
		ExpiresAt:               &expires,
		CreatedAt:               now,
	}
}

func TestHandlerGenerateThreats(t *testing.T) {
	rec := sampleRecommendation()

	t.Run("returns created recommendation", func(t *testing.T) {
		sys := &mockSystem{
			generateThreatFn: func(_ context.Context, cmd recommendations.GenerateThreatCommand) (*recommendations.Recommendation, error) {
				if cmd.LookBackDays == nil || *cmd.LookBackDays != 7 {
					t.Errorf("look_back_days = %v, want 7", cmd.LookBackDays)
				}
				return &rec, nil
			},
		}
		mux := setupMux(newTestHandler(sys))

		body, _ := json.Marshal(map[string]any{
			"user_id":        rec.UserID,
			"look_back_days": 7,
		})

		w := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/recommendations/generate/threats", bytes.NewReader(body))
		mux.ServeHTTP(w, req)

		if w.Code != http.StatusCreated {
			t.Fatalf("status = %d, want 201", w.Code)
		}

		var got recommendations.Recommendation
		if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if got.SecurityLevel != recommendations.SecurityStrict {
			t.Errorf("security level = %s, want strict", got.SecurityLevel)
		}
		if got.TimingRecommendation != recommendations.TimingHighRisk {
			t.Errorf("timing = %s, want high_risk", got.TimingRecommendation)
		}
	})

	t.Run("no signal yields 204 with empty body", func(t *testing.T) {
		sys := &mockSystem{
			generateThreatFn: func(_ context.Context, _ recommendations.GenerateThreatCommand) (*recommendations.Recommendation, error) {
				return nil, recommendations.ErrNoSignal
			},
		}
		mux := setupMux(newTestHandler(sys))

		body, _ := json.Marshal(map[string]any{"user_id": rec.UserID})

		w := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/recommendations/generate/threats", bytes.NewReader(body))
		mux.ServeHTTP(w, req)

		if w.Code != http.StatusNoContent {
			t.Fatalf("status = %d, want 204", w.Code)
		}
		if w.Body.Len() != 0 {
			t.Errorf("204 must not carry a body, got %q", w.Body.String())
		}
	})

	t.Run("invalid window yields 400", func(t *testing.T) {
		sys := &mockSystem{
			generateThreatFn: func(_ context.Context, _ recommendations.GenerateThreatCommand) (*recommendations.Recommendation, error) {
				return nil, recommendations.ErrInvalidWindow
			},
		}
		mux := setupMux(newTestHandler(sys))

		body, _ := json.Marshal(map[string]any{"user_id": rec.UserID, "look_back_days": -1})

		w := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/recommendations/generate/threats", bytes.NewReader(body))
		mux.ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", w.Code)
		}
	})

	t.Run("malformed body yields 400", func(t *testing.T) {
		sys := &mockSystem{}
		mux := setupMux(newTestHandler(sys))

		w := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/recommendations/generate/threats", bytes.NewReader([]byte("{")))
		mux.ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", w.Code)
		}
	})
}

func TestHandlerGenerateCost(t *testing.T) {
	t.Run("returns created recommendation", func(t *testing.T) {
		rec := sampleRecommendation()
		rec.SecurityLevel = recommendations.SecurityCustom
		rec.TimingRecommendation = recommendations.TimingUnknown

		sys := &mockSystem{
			generateCostFn: func(_ context.Context, _ recommendations.GenerateCostCommand) (*recommendations.Recommendation, error) {
				return &rec, nil
			},
		}
		mux := setupMux(newTestHandler(sys))

		body, _ := json.Marshal(map[string]any{"user_id": rec.UserID})

		w := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/recommendations/generate/cost", bytes.NewReader(body))
		mux.ServeHTTP(w, req)

		if w.Code != http.StatusCreated {
			t.Fatalf("status = %d, want 201", w.Code)
		}
	})

	t.Run("upstream failure yields 502", func(t *testing.T) {
		sys := &mockSystem{
			generateCostFn: func(_ context.Context, _ recommendations.GenerateCostCommand) (*recommendations.Recommendation, error) {
				return nil, recommendations.ErrUpstream
			},
		}
		mux := setupMux(newTestHandler(sys))

		body, _ := json.Marshal(map[string]any{"user_id": uuid.New()})

		w := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/recommendations/generate/cost", bytes.NewReader(body))
		mux.ServeHTTP(w, req)

		if w.Code != http.StatusBadGateway {
			t.Fatalf("status = %d, want 502", w.Code)
		}
	})
}

func TestHandlerRefresh(t *testing.T) {
	rec := sampleRecommendation()
	sys := &mockSystem{
		refreshFn: func(_ context.Context, userID uuid.UUID) ([]recommendations.Recommendation, error) {
			if userID != rec.UserID {
				t.Errorf("user_id = %s, want %s", userID, rec.UserID)
			}
			return []recommendations.Recommendation{rec}, nil
		},
	}
	mux := setupMux(newTestHandler(sys))

	body, _ := json.Marshal(map[string]any{"user_id": rec.UserID})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/recommendations/refresh", bytes.NewReader(body))
	mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var got []recommendations.Recommendation
	if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d recommendations, want 1", len(got))
	}
}

func TestHandlerApply(t *testing.T) {
	t.Run("returns applied recommendation", func(t *testing.T) {
		rec := sampleRecommendation()
		applied := time.Now().UTC().Truncate(time.Second)
		rec.IsApplied = true
		rec.AppliedAt = &applied

		sys := &mockSystem{
			markAppliedFn: func(_ context.Context, id uuid.UUID) (*recommendations.Recommendation, error) {
				if id != rec.ID {
					t.Errorf("id = %s, want %s", id, rec.ID)
				}
				return &rec, nil
			},
		}
		mux := setupMux(newTestHandler(sys))

		w := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/recommendations/"+rec.ID.String()+"/apply", nil)
		mux.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", w.Code)
		}

		var got recommendations.Recommendation
		if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if !got.IsApplied {
			t.Error("is_applied should be true")
		}
		if got.AppliedAt == nil || !got.AppliedAt.Equal(applied) {
			t.Errorf("applied_at = %v, want %v", got.AppliedAt, applied)
		}
	})

	t.Run("missing recommendation yields 404", func(t *testing.T) {
		sys := &mockSystem{
			markAppliedFn: func(_ context.Context, _ uuid.UUID) (*recommendations.Recommendation, error) {
				return nil, recommendations.ErrNotFound
			},
		}
		mux := setupMux(newTestHandler(sys))

		w := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/recommendations/"+uuid.NewString()+"/apply", nil)
		mux.ServeHTTP(w, req)

		if w.Code != http.StatusNotFound {
			t.Fatalf("status = %d, want 404", w.Code)
		}
	})

	t.Run("invalid id yields 400", func(t *testing.T) {
		sys := &mockSystem{}
		mux := setupMux(newTestHandler(sys))

		w := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/recommendations/not-a-uuid/apply", nil)
		mux.ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", w.Code)
		}
	})
}

func TestHandlerList(t *testing.T) {
	rec := sampleRecommendation()

	sys := &mockSystem{
		listFn: func(_ context.Context, _ pagination.PageRequest, filters recommendations.Filters) (*pagination.PageResult[recommendations.Recommendation], error) {
			if !filters.ActiveOnly {
				t.Error("active_only filter not parsed")
			}
			if filters.UserID == nil || *filters.UserID != rec.UserID {
				t.Error("user_id filter not parsed")
			}
			result := pagination.NewPageResult([]recommendations.Recommendation{rec}, 1, 1, 20)
			return &result, nil
		},
	}
	mux := setupMux(newTestHandler(sys))

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/recommendations?active_only=true&user_id="+rec.UserID.String(), nil)
	mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var result pagination.PageResult[recommendations.Recommendation]
	if err := json.NewDecoder(w.Body).Decode(&result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if result.Total != 1 {
		t.Errorf("total = %d, want 1", result.Total)
	}
}

func TestHandlerFind(t *testing.T) {
	rec := sampleRecommendation()

	sys := &mockSystem{
		findFn: func(_ context.Context, id uuid.UUID) (*recommendations.Recommendation, error) {
			if id == rec.ID {
				return &rec, nil
			}
			return nil, recommendations.ErrNotFound
		},
	}
	mux := setupMux(newTestHandler(sys))

	t.Run("found", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/recommendations/"+rec.ID.String(), nil)
		mux.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", w.Code)
		}
	})

	t.Run("missing", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/recommendations/"+uuid.NewString(), nil)
		mux.ServeHTTP(w, req)

		if w.Code != http.StatusNotFound {
			t.Fatalf("status = %d, want 404", w.Code)
		}
	})
}

func TestHandlerExport(t *testing.T) {
	rec := sampleRecommendation()

	sys := &mockSystem{
		exportFn: func(_ context.Context, id uuid.UUID) (*recommendations.ExportResult, error) {
			return &recommendations.ExportResult{
				Key:  "assessments/" + id.String() + ".txt",
				Size: 512,
			}, nil
		},
	}
	mux := setupMux(newTestHandler(sys))

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/recommendations/"+rec.ID.String()+"/export", nil)
	mux.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", w.Code)
	}

	var result recommendations.ExportResult
	if err := json.NewDecoder(w.Body).Decode(&result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if result.Key != "assessments/"+rec.ID.String()+".txt" {
		t.Errorf("key = %s", result.Key)
	}
}

func TestFiltersFromQuery(t *testing.T) {
	userID := uuid.New()
	values := url.Values{}
	values.Set("user_id", userID.String())
	values.Set("active_only", "true")
	values.Set("include_expired", "true")

	f := recommendations.FiltersFromQuery(values)

	if f.UserID == nil || *f.UserID != userID {
		t.Error("user_id not parsed")
	}
	if !f.ActiveOnly {
		t.Error("active_only not parsed")
	}
	if !f.IncludeExpired {
		t.Error("include_expired not parsed")
	}

	empty := recommendations.FiltersFromQuery(url.Values{})
	if empty.UserID != nil || empty.ActiveOnly || empty.IncludeExpired {
		t.Error("empty query should produce zero filters")
	}
}

func TestMapHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{recommendations.ErrNotFound, http.StatusNotFound},
		{recommendations.ErrInvalid, http.StatusBadRequest},
		{recommendations.ErrInvalidWindow, http.StatusBadRequest},
		{recommendations.ErrNoSignal, http.StatusNoContent},
		{recommendations.ErrDuplicate, http.StatusConflict},
		{recommendations.ErrUpstream, http.StatusBadGateway},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		if got := recommendations.MapHTTPStatus(tt.err); got != tt.want {
			t.Errorf("MapHTTPStatus(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestRecommendationExpired(t *testing.T) {
	now := time.Now().UTC()

	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	expired := recommendations.Recommendation{ExpiresAt: &past}
	if !expired.Expired(now) {
		t.Error("past expiry should report expired")
	}

	active := recommendations.Recommendation{ExpiresAt: &future}
	if active.Expired(now) {
		t.Error("future expiry should not report expired")
	}

	never := recommendations.Recommendation{}
	if never.Expired(now) {
		t.Error("nil expiry should never report expired")
	}
}

func TestHandlerGenerateMissingUser(t *testing.T) {
	t.Run("threat generation yields 400", func(t *testing.T) {
		sys := &mockSystem{
			generateThreatFn: func(_ context.Context, cmd recommendations.GenerateThreatCommand) (*recommendations.Recommendation, error) {
				return nil, cmd.Validate()
			},
		}
		mux := setupMux(newTestHandler(sys))

		w := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/recommendations/generate/threats", bytes.NewReader([]byte(`{}`)))
		mux.ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", w.Code)
		}
	})

	t.Run("cost generation yields 400", func(t *testing.T) {
		sys := &mockSystem{
			generateCostFn: func(_ context.Context, cmd recommendations.GenerateCostCommand) (*recommendations.Recommendation, error) {
				return nil, cmd.Validate()
			},
		}
		mux := setupMux(newTestHandler(sys))

		w := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/recommendations/generate/cost", bytes.NewReader([]byte(`{}`)))
		mux.ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", w.Code)
		}
	})

	t.Run("refresh yields 400", func(t *testing.T) {
		sys := &mockSystem{
			refreshFn: func(_ context.Context, userID uuid.UUID) ([]recommendations.Recommendation, error) {
				if userID != uuid.Nil {
					t.Errorf("user_id = %s, want zero", userID)
				}
				return nil, recommendations.ErrInvalid
			},
		}
		mux := setupMux(newTestHandler(sys))

		w := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/recommendations/refresh", bytes.NewReader([]byte(`{}`)))
		mux.ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", w.Code)
		}
	})
}
