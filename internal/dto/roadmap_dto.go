package dto

import (
	"encoding/json"
	"time"
)

// RoadmapStageResponse serializes roadmap stage payloads.
type RoadmapStageResponse struct {
	ID             uint              `json:"id"`
	Slug           string            `json:"slug"`
	Track          string            `json:"track"`
	Title          string            `json:"title"`
	Description    string            `json:"description"`
	Sequence       int               `json:"sequence"`
	EstimatedHours int               `json:"estimated_hours"`
	Icon           string            `json:"icon"`
	Tags           []string          `json:"tags"`
	Skills         map[string]string `json:"skills"`
	Resources      json.RawMessage   `json:"resources,omitempty"`
	UpdatedAt      time.Time         `json:"updated_at"`
}

// RoadmapStageListResult wraps paginated roadmap stages.
type RoadmapStageListResult struct {
	Items      []RoadmapStageResponse `json:"items"`
	Pagination PaginationMeta         `json:"pagination"`
	Filters    RoadmapStageFilters    `json:"filters"`
	CacheHit   bool                   `json:"cache_hit"`
}

// RoadmapStageFilters describes applied filters.
type RoadmapStageFilters struct {
	Track  string   `json:"track,omitempty"`
	Search string   `json:"search,omitempty"`
	Tags   []string `json:"tags,omitempty"`
	Sort   string   `json:"sort,omitempty"`
}

// RoadmapStageListRequest captures query params.
type RoadmapStageListRequest struct {
	Track    string
	Page     int
	PageSize int
	Sort     string
	Search   string
	Tags     []string
}

// RoadmapTrackResponse summarises one roadmap track.
type RoadmapTrackResponse struct {
	Track          string `json:"track"`
	Stages         int    `json:"stages"`
	EstimatedHours int    `json:"estimated_hours"`
}
