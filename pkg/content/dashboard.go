package content

import (
	"context"
	"fmt"

	"github.com/mchmarny/blogadmin/pkg/api"
	"github.com/mchmarny/blogadmin/pkg/nav"
)

// DashboardStats are the admin dashboard counters.
type DashboardStats struct {
	Users struct {
		Total       int64   `json:"total"`
		Growth      float64 `json:"growth"`
		NewToday    int64   `json:"newToday"`
		ActiveToday int64   `json:"activeToday"`
	} `json:"users"`
	Posts struct {
		Total          int64   `json:"total"`
		Growth         float64 `json:"growth"`
		NewToday       int64   `json:"newToday"`
		PublishedToday int64   `json:"publishedToday"`
	} `json:"posts"`
	Assets struct {
		Total         int64   `json:"total"`
		Growth        float64 `json:"growth"`
		TotalSize     int64   `json:"totalSize"`
		UploadedToday int64   `json:"uploadedToday"`
	} `json:"assets"`
	Views struct {
		Total       int64   `json:"total"`
		Growth      float64 `json:"growth"`
		Today       int64   `json:"today"`
		UniqueToday int64   `json:"uniqueToday"`
	} `json:"views"`
}

// ServiceStatus is the health of one backend dependency.
type ServiceStatus struct {
	Name         string `json:"name"`
	Status       string `json:"status"`
	Uptime       string `json:"uptime,omitempty"`
	LastChecked  string `json:"lastChecked,omitempty"`
	ErrorMessage string `json:"errorMessage,omitempty"`
}

// SystemStatus is the backend health summary. Status is one of
// healthy, warning or error.
type SystemStatus struct {
	Status    string          `json:"status"`
	Services  []ServiceStatus `json:"services,omitempty"`
	Resources *struct {
		CPU         int    `json:"cpu"`
		Memory      int    `json:"memory"`
		Disk        int    `json:"disk"`
		Network     int    `json:"network"`
		DiskSpace   string `json:"diskSpace,omitempty"`
		MemoryUsage string `json:"memoryUsage,omitempty"`
	} `json:"resources,omitempty"`
	Database *struct {
		Status          string  `json:"status"`
		ConnectionCount int     `json:"connectionCount"`
		MaxConnections  int     `json:"maxConnections"`
		ResponseTime    float64 `json:"responseTime"`
		Version         string  `json:"version,omitempty"`
	} `json:"database,omitempty"`
}

// Healthy reports whether the backend considers itself healthy.
func (s SystemStatus) Healthy() bool {
	return s.Status == "healthy"
}

// ActivityLog is one audited admin action.
type ActivityLog struct {
	ID           nav.ID `json:"id"`
	User         string `json:"user"`
	UserID       nav.ID `json:"userId,omitempty"`
	Action       string `json:"action"`
	Description  string `json:"description,omitempty"`
	Status       string `json:"status,omitempty"`
	IPAddress    string `json:"ipAddress,omitempty"`
	UserAgent    string `json:"userAgent,omitempty"`
	Timestamp    string `json:"timestamp,omitempty"`
	ResourceType string `json:"resourceType,omitempty"`
	ResourceID   nav.ID `json:"resourceId,omitempty"`
	OldValue     string `json:"oldValue,omitempty"`
	NewValue     string `json:"newValue,omitempty"`
}

// Dashboard calls the /admin/dashboard endpoints.
type Dashboard struct {
	api api.Doer
}

// NewDashboard returns a dashboard service issuing requests through d.
func NewDashboard(d api.Doer) *Dashboard {
	return &Dashboard{api: d}
}

// Stats returns the dashboard counters.
func (s *Dashboard) Stats(ctx context.Context) (*DashboardStats, error) {
	var out DashboardStats
	if err := s.api.Do(ctx, api.Request{Path: "/admin/dashboard/stats"}, &out); err != nil {
		return nil, fmt.Errorf("get dashboard stats: %w", err)
	}
	return &out, nil
}

// SystemStatus returns the backend health summary.
func (s *Dashboard) SystemStatus(ctx context.Context) (*SystemStatus, error) {
	var out SystemStatus
	if err := s.api.Do(ctx, api.Request{Path: "/admin/dashboard/system-status"}, &out); err != nil {
		return nil, fmt.Errorf("get system status: %w", err)
	}
	return &out, nil
}

// ActivityLogs returns the latest limit activity entries, newest first.
func (s *Dashboard) ActivityLogs(ctx context.Context, limit int) ([]ActivityLog, error) {
	var out []ActivityLog
	err := s.api.Do(ctx, api.Request{Path: "/admin/dashboard/activity-logs", Query: limitQuery(limit)}, &out)
	if err != nil {
		return nil, fmt.Errorf("list activity logs: %w", err)
	}
	return out, nil
}
