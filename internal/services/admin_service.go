// internal/services/admin_service.go
package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/javajoker/fashion-storefront/internal/models"
	"github.com/javajoker/fashion-storefront/internal/utils"
)

const LowStockThreshold = 5

type AdminService struct {
	db *gorm.DB
}

type AdminDashboardStats struct {
	TotalProducts     int64            `json:"totalProducts"`
	TotalCategories   int64            `json:"totalCategories"`
	TotalCustomers    int64            `json:"totalCustomers"`
	TotalOrders       int64            `json:"totalOrders"`
	PendingOrders     int64            `json:"pendingOrders"`
	OrdersThisMonth   int64            `json:"ordersThisMonth"`
	TotalRevenue      decimal.Decimal  `json:"totalRevenue"`
	MonthlyRevenue    decimal.Decimal  `json:"monthlyRevenue"`
	LowStockProducts  []models.Product `json:"lowStockProducts"`
	LowStockThreshold int              `json:"lowStockThreshold"`
}

type AuditLogFilter struct {
	utils.PaginationParams
	ResourceType string
	UserID       *uint
}

func NewAdminService(db *gorm.DB) *AdminService {
	return &AdminService{
		db: db,
	}
}

// Dashboard Statistics
func (s *AdminService) GetDashboardStats(ctx context.Context) (*AdminDashboardStats, error) {
	db := s.db.WithContext(ctx)
	stats := &AdminDashboardStats{LowStockThreshold: LowStockThreshold}

	now := time.Now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	counts := []struct {
		query *gorm.DB
		dest  *int64
	}{
		{db.Model(&models.Product{}), &stats.TotalProducts},
		{db.Model(&models.Category{}), &stats.TotalCategories},
		{db.Model(&models.User{}).Where("role = ?", models.RoleCustomer), &stats.TotalCustomers},
		{db.Model(&models.Order{}), &stats.TotalOrders},
		{db.Model(&models.Order{}).Where("status = ?", models.OrderStatusPending), &stats.PendingOrders},
		{db.Model(&models.Order{}).Where("created_at >= ?", monthStart), &stats.OrdersThisMonth},
	}
	for _, c := range counts {
		if err := c.query.Count(c.dest).Error; err != nil {
			return nil, NewInternalError("failed to compute dashboard stats", err)
		}
	}

	var err error
	if stats.TotalRevenue, err = s.sumRevenue(db, time.Time{}); err != nil {
		return nil, err
	}
	if stats.MonthlyRevenue, err = s.sumRevenue(db, monthStart); err != nil {
		return nil, err
	}

	if err := db.Where("stock <= ?", LowStockThreshold).
		Order("stock ASC, id ASC").
		Limit(20).
		Find(&stats.LowStockProducts).Error; err != nil {
		return nil, NewInternalError("failed to load low stock products", err)
	}

	return stats, nil
}

// sumRevenue adds up non-cancelled order totals. Totals are summed in Go so
// the decimal precision does not depend on the driver.
func (s *AdminService) sumRevenue(db *gorm.DB, since time.Time) (decimal.Decimal, error) {
	var totals []decimal.Decimal
	query := db.Model(&models.Order{}).Where("status <> ?", models.OrderStatusCancelled)
	if !since.IsZero() {
		query = query.Where("created_at >= ?", since)
	}
	if err := query.Pluck("total", &totals).Error; err != nil {
		return decimal.Zero, NewInternalError("failed to sum revenue", err)
	}

	sum := decimal.Zero
	for _, t := range totals {
		sum = sum.Add(t)
	}
	return sum, nil
}

func (s *AdminService) ListAuditLogs(ctx context.Context, filter AuditLogFilter) ([]models.AuditLog, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.AuditLog{})
	if filter.ResourceType != "" {
		query = query.Where("resource_type = ?", filter.ResourceType)
	}
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, NewInternalError("failed to count audit logs", err)
	}

	var logs []models.AuditLog
	query = utils.ApplySort(query, filter.PaginationParams, []string{"created_at"})
	if err := utils.ApplyPagination(query, filter.PaginationParams).Order("id DESC").Find(&logs).Error; err != nil {
		return nil, 0, NewInternalError("failed to list audit logs", err)
	}

	return logs, total, nil
}
