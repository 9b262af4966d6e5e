package dashboard

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/madrasati/schoolstore-backend/internal/orders"
	pkgerrors "github.com/madrasati/schoolstore-backend/pkg/errors"
)

const (
	popularProductLimit = 5
	revenueDayWindow    = 7
)

// PopularProduct is one row of the top-sellers ranking.
type PopularProduct struct {
	ProductID *uuid.UUID `json:"product_id,omitempty"`
	Name      string     `json:"name"`
	Quantity  int        `json:"quantity"`
}

// RevenueDay is one calendar-date bucket of revenue.
type RevenueDay struct {
	Date   string          `json:"date"`
	Amount decimal.Decimal `json:"amount"`
}

// Stats is the back-office overview computed from the full order collection.
type Stats struct {
	TotalRevenue    decimal.Decimal  `json:"total_revenue"`
	TotalOrders     int              `json:"total_orders"`
	PopularProducts []PopularProduct `json:"popular_products"`
	RevenueByDay    []RevenueDay     `json:"revenue_by_day"`
}

type orderLister interface {
	ListAll(ctx context.Context) ([]orders.OrderDTO, error)
}

// Service computes read-only aggregates for the admin dashboard.
type Service interface {
	Stats(ctx context.Context) (*Stats, error)
}

type service struct {
	orders orderLister
}

// NewService builds the dashboard aggregation service.
func NewService(orderSvc orderLister) (Service, error) {
	if orderSvc == nil {
		return nil, fmt.Errorf("orders service required")
	}
	return &service{orders: orderSvc}, nil
}

// Stats derives all aggregates in one pass over the full collection. Nothing
// is cached; callers re-fetch after every mutation.
func (s *service) Stats(ctx context.Context) (*Stats, error) {
	all, err := s.orders.ListAll(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load orders")
	}

	stats := &Stats{
		TotalRevenue:    decimal.Zero,
		TotalOrders:     len(all),
		PopularProducts: []PopularProduct{},
		RevenueByDay:    []RevenueDay{},
	}

	type productTally struct {
		row   PopularProduct
		first int // insertion order, the tie breaker
	}
	tallies := map[string]*productTally{}
	tallyOrder := 0

	dayTotals := map[string]decimal.Decimal{}

	for _, order := range all {
		stats.TotalRevenue = stats.TotalRevenue.Add(order.TotalAmount)

		day := order.CreatedAt.Format("2006-01-02")
		dayTotals[day] = dayTotals[day].Add(order.TotalAmount)

		for _, item := range order.Items {
			key := item.Name
			if item.ProductID != nil {
				key = item.ProductID.String()
			}
			tally, ok := tallies[key]
			if !ok {
				tally = &productTally{
					row:   PopularProduct{ProductID: item.ProductID, Name: item.Name},
					first: tallyOrder,
				}
				tallyOrder++
				tallies[key] = tally
			}
			tally.row.Quantity += item.Quantity
		}
	}

	ranked := make([]*productTally, 0, len(tallies))
	for _, tally := range tallies {
		ranked = append(ranked, tally)
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].row.Quantity != ranked[j].row.Quantity {
			return ranked[i].row.Quantity > ranked[j].row.Quantity
		}
		return ranked[i].first < ranked[j].first
	})
	for i, tally := range ranked {
		if i == popularProductLimit {
			break
		}
		stats.PopularProducts = append(stats.PopularProducts, tally.row)
	}

	days := make([]string, 0, len(dayTotals))
	for day := range dayTotals {
		days = append(days, day)
	}
	// Most recent 7 distinct dates present, reported ascending.
	sort.Sort(sort.Reverse(sort.StringSlice(days)))
	if len(days) > revenueDayWindow {
		days = days[:revenueDayWindow]
	}
	sort.Strings(days)
	for _, day := range days {
		stats.RevenueByDay = append(stats.RevenueByDay, RevenueDay{Date: day, Amount: dayTotals[day]})
	}

	return stats, nil
}
