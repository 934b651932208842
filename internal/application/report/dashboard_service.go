package report

import (
	"context"
	"time"

	"github.com/billing/backend/internal/domain/report"
	"github.com/billing/backend/internal/domain/shared"
	"github.com/google/uuid"
)

const (
	defaultRevenueMonths = 6
	maxRevenueMonths     = 24
	defaultDebtorLimit   = 5
)

// DashboardService serves the aggregate billing dashboard
type DashboardService struct {
	dashboardRepo report.DashboardRepository
}

// NewDashboardService creates a new DashboardService
func NewDashboardService(dashboardRepo report.DashboardRepository) *DashboardService {
	return &DashboardService{dashboardRepo: dashboardRepo}
}

// Summary returns the tenant's current billing position
func (s *DashboardService) Summary(ctx context.Context, tenantID uuid.UUID) (*report.DashboardSummary, error) {
	return s.dashboardRepo.Summary(ctx, tenantID, time.Now())
}

// MonthlyRevenue returns invoiced vs collected totals per month
func (s *DashboardService) MonthlyRevenue(ctx context.Context, tenantID uuid.UUID, months int) ([]report.MonthlyRevenue, error) {
	if months <= 0 {
		months = defaultRevenueMonths
	}
	if months > maxRevenueMonths {
		return nil, shared.NewValidationError("months cannot exceed %d", maxRevenueMonths)
	}
	return s.dashboardRepo.MonthlyRevenue(ctx, tenantID, months, time.Now())
}

// TopDebtors returns the customers with the largest outstanding balances
func (s *DashboardService) TopDebtors(ctx context.Context, tenantID uuid.UUID, limit int) ([]report.TopDebtor, error) {
	if limit <= 0 {
		limit = defaultDebtorLimit
	}
	if limit > 50 {
		limit = 50
	}
	return s.dashboardRepo.TopDebtors(ctx, tenantID, limit)
}
