package api

import (
	"github.com/cyberforge/cyberforge/internal/config"
	"github.com/cyberforge/cyberforge/pkg/openapi"
)

// Spec builds the serialized OpenAPI document for the API module's routes.
func Spec(cfg *config.Config) ([]byte, error) {
	spec := openapi.NewSpec("CyberForge API", cfg.Version)
	spec.SetDescription("Threat-intelligence driven deployment recommendation service.")
	spec.AddServer(cfg.API.BasePath)

	spec.Components.AddSchemas(map[string]*openapi.Schema{
		"IntelRecord": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"id":            {Type: "string", Format: "uuid"},
				"user_id":       {Type: "string", Format: "uuid"},
				"title":         {Type: "string"},
				"severity":      {Type: "string", Enum: []any{"low", "medium", "high"}},
				"source_name":   {Type: "string"},
				"source_url":    {Type: "string"},
				"discovered_at": {Type: "string", Format: "date-time"},
				"created_at":    {Type: "string", Format: "date-time"},
			},
		},
		"Recommendation": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"id":      {Type: "string", Format: "uuid"},
				"user_id": {Type: "string", Format: "uuid"},
				"title":   {Type: "string"},
				"security_level": {
					Type: "string",
					Enum: []any{"standard", "enhanced", "strict", "custom"},
				},
				"timing_recommendation": {
					Type: "string",
					Enum: []any{"safe_to_deploy", "caution", "delay_recommended", "high_risk", "unknown"},
				},
				"timing_justification":      {Type: "string"},
				"recommended_window_start":  {Type: "string", Format: "date-time"},
				"recommended_window_end":    {Type: "string", Format: "date-time"},
				"estimated_cost":            {Type: "number"},
				"cost_saving_potential":     {Type: "number"},
				"cost_justification":        {Type: "string"},
				"threat_assessment_summary": {Type: "string"},
				"high_risk_threats_count":   {Type: "integer"},
				"medium_risk_threats_count": {Type: "integer"},
				"low_risk_threats_count":    {Type: "integer"},
				"is_applied":                {Type: "boolean"},
				"applied_at":                {Type: "string", Format: "date-time"},
				"expires_at":                {Type: "string", Format: "date-time"},
				"created_at":                {Type: "string", Format: "date-time"},
			},
		},
		"Deployment": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"id":                {Type: "string", Format: "uuid"},
				"user_id":           {Type: "string", Format: "uuid"},
				"recommendation_id": {Type: "string", Format: "uuid"},
				"title":             {Type: "string"},
				"description":       {Type: "string"},
				"platform":          {Type: "string"},
				"security_level":    {Type: "string"},
				"deployed_at":       {Type: "string", Format: "date-time"},
				"was_successful":    {Type: "boolean"},
				"failure_reason":    {Type: "string"},
				"created_at":        {Type: "string", Format: "date-time"},
			},
		},
		"UsageSnapshot": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"user_id":      {Type: "string", Format: "uuid"},
				"current_tier": {Type: "string"},
				"current_cost": {Type: "number"},
				"alternative_tiers": {
					Type: "array",
					Items: &openapi.Schema{
						Type: "object",
						Properties: map[string]*openapi.Schema{
							"tier":         {Type: "string"},
							"monthly_cost": {Type: "number"},
						},
					},
				},
			},
		},
		"GenerateThreatCommand": {
			Type:     "object",
			Required: []string{"user_id"},
			Properties: map[string]*openapi.Schema{
				"user_id":        {Type: "string", Format: "uuid"},
				"look_back_days": {Type: "integer", Description: "Look-back window in days; omit for the configured default"},
			},
		},
		"GenerateCostCommand": {
			Type:     "object",
			Required: []string{"user_id"},
			Properties: map[string]*openapi.Schema{
				"user_id": {Type: "string", Format: "uuid"},
			},
		},
	})

	spec.Paths["/recommendations/generate/threats"] = &openapi.PathItem{
		Post: &openapi.Operation{
			Summary:     "Generate a threat-based deployment recommendation",
			Tags:        []string{"recommendations"},
			RequestBody: openapi.RequestBodyJSON("GenerateThreatCommand", true),
			Responses: map[int]*openapi.Response{
				201: openapi.ResponseJSON("Recommendation generated", "Recommendation"),
				204: {Description: "No intelligence records in the window"},
				400: openapi.ResponseRef("BadRequest"),
			},
		},
	}

	spec.Paths["/recommendations/generate/cost"] = &openapi.PathItem{
		Post: &openapi.Operation{
			Summary:     "Generate a cost optimization recommendation",
			Tags:        []string{"recommendations"},
			RequestBody: openapi.RequestBodyJSON("GenerateCostCommand", true),
			Responses: map[int]*openapi.Response{
				201: openapi.ResponseJSON("Recommendation generated", "Recommendation"),
				204: {Description: "No saving above the configured threshold"},
				400: openapi.ResponseRef("BadRequest"),
			},
		},
	}

	spec.Paths["/recommendations/refresh"] = &openapi.PathItem{
		Post: &openapi.Operation{
			Summary:     "Run both generators for a user",
			Tags:        []string{"recommendations"},
			RequestBody: openapi.RequestBodyJSON("GenerateCostCommand", true),
			Responses: map[int]*openapi.Response{
				200: {Description: "Recommendations generated, possibly empty"},
				400: openapi.ResponseRef("BadRequest"),
			},
		},
	}

	spec.Paths["/recommendations"] = &openapi.PathItem{
		Get: &openapi.Operation{
			Summary: "List recommendations, newest first",
			Tags:    []string{"recommendations"},
			Parameters: []*openapi.Parameter{
				openapi.QueryParam("user_id", "string", "Filter by user", false),
				openapi.QueryParam("active_only", "boolean", "Only unapplied recommendations", false),
				openapi.QueryParam("include_expired", "boolean", "Include expired recommendations", false),
			},
			Responses: map[int]*openapi.Response{
				200: {Description: "Paginated recommendations"},
			},
		},
	}

	spec.Paths["/recommendations/{id}"] = &openapi.PathItem{
		Get: &openapi.Operation{
			Summary:    "Find a recommendation",
			Tags:       []string{"recommendations"},
			Parameters: []*openapi.Parameter{openapi.PathParam("id", "Recommendation ID")},
			Responses: map[int]*openapi.Response{
				200: openapi.ResponseJSON("Recommendation", "Recommendation"),
				404: openapi.ResponseRef("NotFound"),
			},
		},
	}

	spec.Paths["/recommendations/{id}/apply"] = &openapi.PathItem{
		Post: &openapi.Operation{
			Summary:    "Mark a recommendation as applied",
			Tags:       []string{"recommendations"},
			Parameters: []*openapi.Parameter{openapi.PathParam("id", "Recommendation ID")},
			Responses: map[int]*openapi.Response{
				200: openapi.ResponseJSON("Applied recommendation", "Recommendation"),
				404: openapi.ResponseRef("NotFound"),
			},
		},
	}

	spec.Paths["/recommendations/{id}/export"] = &openapi.PathItem{
		Post: &openapi.Operation{
			Summary:    "Export an assessment report to blob storage",
			Tags:       []string{"recommendations"},
			Parameters: []*openapi.Parameter{openapi.PathParam("id", "Recommendation ID")},
			Responses: map[int]*openapi.Response{
				201: {Description: "Stored key and size"},
				404: openapi.ResponseRef("NotFound"),
			},
		},
	}

	spec.Paths["/intel"] = &openapi.PathItem{
		Get: &openapi.Operation{
			Summary: "List intelligence records",
			Tags:    []string{"intel"},
			Parameters: []*openapi.Parameter{
				openapi.QueryParam("user_id", "string", "Filter by user", false),
				openapi.QueryParam("severity", "string", "Filter by severity", false),
				openapi.QueryParam("source_name", "string", "Filter by source", false),
			},
			Responses: map[int]*openapi.Response{
				200: {Description: "Paginated intelligence records"},
			},
		},
		Post: &openapi.Operation{
			Summary: "Ingest an intelligence record",
			Tags:    []string{"intel"},
			Responses: map[int]*openapi.Response{
				201: openapi.ResponseJSON("Ingested record", "IntelRecord"),
				400: openapi.ResponseRef("BadRequest"),
			},
		},
	}

	spec.Paths["/intel/bulk"] = &openapi.PathItem{
		Post: &openapi.Operation{
			Summary: "Ingest intelligence records in bulk",
			Tags:    []string{"intel"},
			Responses: map[int]*openapi.Response{
				201: {Description: "Ingested records"},
				400: openapi.ResponseRef("BadRequest"),
			},
		},
	}

	spec.Paths["/intel/{id}"] = &openapi.PathItem{
		Get: &openapi.Operation{
			Summary:    "Find an intelligence record",
			Tags:       []string{"intel"},
			Parameters: []*openapi.Parameter{openapi.PathParam("id", "Record ID")},
			Responses: map[int]*openapi.Response{
				200: openapi.ResponseJSON("Intelligence record", "IntelRecord"),
				404: openapi.ResponseRef("NotFound"),
			},
		},
	}

	spec.Paths["/deployments"] = &openapi.PathItem{
		Get: &openapi.Operation{
			Summary: "List deployment history, newest first",
			Tags:    []string{"deployments"},
			Parameters: []*openapi.Parameter{
				openapi.QueryParam("user_id", "string", "Filter by user", false),
				openapi.QueryParam("successful_only", "boolean", "Only successful deployments", false),
			},
			Responses: map[int]*openapi.Response{
				200: {Description: "Paginated deployment history"},
			},
		},
		Post: &openapi.Operation{
			Summary: "Record a deployment",
			Tags:    []string{"deployments"},
			Responses: map[int]*openapi.Response{
				201: openapi.ResponseJSON("Recorded deployment", "Deployment"),
				400: openapi.ResponseRef("BadRequest"),
			},
		},
	}

	spec.Paths["/deployments/{id}"] = &openapi.PathItem{
		Get: &openapi.Operation{
			Summary:    "Find a deployment entry",
			Tags:       []string{"deployments"},
			Parameters: []*openapi.Parameter{openapi.PathParam("id", "Deployment ID")},
			Responses: map[int]*openapi.Response{
				200: openapi.ResponseJSON("Deployment entry", "Deployment"),
				404: openapi.ResponseRef("NotFound"),
			},
		},
	}

	spec.Paths["/billing/snapshot"] = &openapi.PathItem{
		Get: &openapi.Operation{
			Summary: "Get a user's usage snapshot",
			Tags:    []string{"billing"},
			Parameters: []*openapi.Parameter{
				openapi.QueryParam("user_id", "string", "User ID", true),
			},
			Responses: map[int]*openapi.Response{
				200: openapi.ResponseJSON("Usage snapshot", "UsageSnapshot"),
				400: openapi.ResponseRef("BadRequest"),
			},
		},
	}

	spec.Paths["/billing/tier"] = &openapi.PathItem{
		Post: &openapi.Operation{
			Summary: "Record a subscription tier change",
			Tags:    []string{"billing"},
			Responses: map[int]*openapi.Response{
				201: {Description: "Recorded subscription"},
				400: openapi.ResponseRef("BadRequest"),
			},
		},
	}

	return openapi.MarshalJSON(spec)
}
