package api_test

import (
	"testing"

	"github.com/cyberforge/cyberforge/internal/api"
	"github.com/cyberforge/cyberforge/internal/billing"
	"github.com/cyberforge/cyberforge/internal/config"
	"github.com/cyberforge/cyberforge/internal/infrastructure"
	"github.com/cyberforge/cyberforge/pkg/database"
	"github.com/cyberforge/cyberforge/pkg/middleware"
	"github.com/cyberforge/cyberforge/pkg/pagination"
	"github.com/cyberforge/cyberforge/pkg/storage"
)

const azuriteConnString = "DefaultEndpointsProtocol=http;AccountName=forgestore;AccountKey=Eby8vdM02xNOcqFlqUwJPLlmEtlCDXJ1OUzFT50uSRZ6IFsuFq2UVErCz4I6tq/K1SZFPTOtr/KBHBeksoGMGw==;BlobEndpoint=http://127.0.0.1:10000/forgestore;"

func validConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			ReadTimeout:     "1m",
			WriteTimeout:    "15m",
			ShutdownTimeout: "30s",
		},
		Database: database.Config{
			Host:            "localhost",
			Port:            5432,
			Name:            "cyberforge",
			User:            "cyberforge",
			Password:        "cyberforge",
			SSLMode:         "disable",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: "15m",
			ConnTimeout:     "5s",
		},
		Storage: storage.Config{
			ContainerName:    "assessments",
			ConnectionString: azuriteConnString,
		},
		API: config.APIConfig{
			BasePath: "/api",
			CORS: middleware.CORSConfig{
				Enabled: false,
			},
			Pagination: pagination.Config{
				DefaultPageSize: 20,
				MaxPageSize:     100,
			},
		},
		Engine: config.EngineConfig{
			LookBackDays:     7,
			DefaultWindow:    "168h",
			DelayCooldown:    "24h",
			HighRiskCooldown: "72h",
			ThreatValidity:   "168h",
			CostValidity:     "720h",
			MinSaving:        5,
			Pricing: []config.TierPrice{
				{Tier: "free", MonthlyCost: 0},
				{Tier: "basic", MonthlyCost: 29},
				{Tier: "professional", MonthlyCost: 79},
				{Tier: "enterprise", MonthlyCost: 199},
			},
		},
		ShutdownTimeout: "30s",
		Version:         "0.1.0",
	}
}

func setupInfra(t *testing.T) *infrastructure.Infrastructure {
	t.Helper()
	infra, err := infrastructure.New(validConfig())
	if err != nil {
		t.Fatalf("infrastructure.New() error = %v", err)
	}
	return infra
}

func TestNewModule(t *testing.T) {
	cfg := validConfig()
	infra := setupInfra(t)

	m, err := api.NewModule(cfg, infra)
	if err != nil {
		t.Fatalf("NewModule() error = %v", err)
	}

	if m.Prefix() != "/api" {
		t.Errorf("prefix: got %s, want /api", m.Prefix())
	}
}

func TestNewRuntime(t *testing.T) {
	cfg := validConfig()
	infra := setupInfra(t)

	runtime := api.NewRuntime(cfg, infra)

	if runtime.Pagination.DefaultPageSize != 20 {
		t.Errorf("pagination default page size: got %d, want 20", runtime.Pagination.DefaultPageSize)
	}
	if runtime.Pagination.MaxPageSize != 100 {
		t.Errorf("pagination max page size: got %d, want 100", runtime.Pagination.MaxPageSize)
	}
	if runtime.Logger == nil {
		t.Error("runtime logger is nil")
	}
	if runtime.Database == nil {
		t.Error("runtime database is nil")
	}
	if runtime.Storage == nil {
		t.Error("runtime storage is nil")
	}
	if runtime.Lifecycle == nil {
		t.Error("runtime lifecycle is nil")
	}
}

func TestNewRuntimePolicy(t *testing.T) {
	cfg := validConfig()
	infra := setupInfra(t)

	runtime := api.NewRuntime(cfg, infra)

	if runtime.Policy.LookBackDays != 7 {
		t.Errorf("policy look back: got %d, want 7", runtime.Policy.LookBackDays)
	}
	if runtime.Policy.MinSaving != 5 {
		t.Errorf("policy min saving: got %f, want 5", runtime.Policy.MinSaving)
	}
	if cost := runtime.Pricing[billing.TierProfessional]; cost != 79 {
		t.Errorf("professional tier cost: got %f, want 79", cost)
	}
	if len(runtime.Pricing) != 4 {
		t.Errorf("pricing table: got %d tiers, want 4", len(runtime.Pricing))
	}
}

func TestNewDomain(t *testing.T) {
	cfg := validConfig()
	infra := setupInfra(t)
	runtime := api.NewRuntime(cfg, infra)

	domain := api.NewDomain(runtime)
	if domain == nil {
		t.Fatal("NewDomain() returned nil")
	}
	if domain.Intel == nil {
		t.Error("intel system is nil")
	}
	if domain.Recommendations == nil {
		t.Error("recommendations system is nil")
	}
	if domain.Deployments == nil {
		t.Error("deployments system is nil")
	}
	if domain.Billing == nil {
		t.Error("billing system is nil")
	}
}

func TestSpec(t *testing.T) {
	cfg := validConfig()

	data, err := api.Spec(cfg)
	if err != nil {
		t.Fatalf("Spec() error = %v", err)
	}
	if len(data) == 0 {
		t.Fatal("Spec() returned empty document")
	}
}
