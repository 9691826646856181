// Package orders reads the shopper's order history.
package orders

import (
	"context"
	"fmt"
	"sort"

	"github.com/angelmondragon/minimarket-client/internal/storefront"
	"github.com/angelmondragon/minimarket-client/pkg/enums"
	"github.com/angelmondragon/minimarket-client/pkg/pagination"
	pkgerrors "github.com/angelmondragon/minimarket-client/pkg/errors"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// LatestCount is how many recent orders the dashboard shows.
const LatestCount = 5

type remoteAPI interface {
	ListOrdersByUser(ctx context.Context, userID string) ([]storefront.Order, error)
	GetOrder(ctx context.Context, id string) (*storefront.Order, error)
	ListProducts(ctx context.Context) ([]storefront.Product, error)
	ListCategories(ctx context.Context) ([]storefront.Category, error)
}

type userResolver interface {
	UserID(ctx context.Context) (string, error)
}

// Service exposes the order history views.
type Service interface {
	List(ctx context.Context) ([]OrderSummary, error)
	Detail(ctx context.Context, id string) (*OrderDetail, error)
	Stats(ctx context.Context) (*Stats, error)
}

type service struct {
	api   remoteAPI
	users userResolver
}

func NewService(api remoteAPI, users userResolver) (Service, error) {
	if api == nil {
		return nil, fmt.Errorf("storefront api required")
	}
	if users == nil {
		return nil, fmt.Errorf("user resolver required")
	}
	return &service{api: api, users: users}, nil
}

// List returns the current user's orders, newest first.
func (s *service) List(ctx context.Context) ([]OrderSummary, error) {
	orders, err := s.fetch(ctx)
	if err != nil {
		return nil, err
	}
	return summarize(orders), nil
}

// Stats aggregates the current user's orders.
func (s *service) Stats(ctx context.Context) (*Stats, error) {
	orders, err := s.fetch(ctx)
	if err != nil {
		return nil, err
	}
	stats := Aggregate(orders)
	return &stats, nil
}

func (s *service) fetch(ctx context.Context) ([]storefront.Order, error) {
	userID, err := s.users.UserID(ctx)
	if err != nil {
		return nil, err
	}
	orders, err := s.api.ListOrdersByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	sortNewestFirst(orders)
	return orders, nil
}

// Detail loads an order together with the catalog so each line carries the
// product name and its category name.
func (s *service) Detail(ctx context.Context, id string) (*OrderDetail, error) {
	var (
		order      *storefront.Order
		products   []storefront.Product
		categories []storefront.Category
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		order, err = s.api.GetOrder(gctx, id)
		return err
	})
	g.Go(func() error {
		var err error
		products, err = s.api.ListProducts(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		categories, err = s.api.ListCategories(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if userID, err := s.users.UserID(ctx); err == nil && order.UserID != "" && order.UserID != userID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}

	return join(*order, products, categories), nil
}

func join(order storefront.Order, products []storefront.Product, categories []storefront.Category) *OrderDetail {
	categoryNames := make(map[string]string, len(categories))
	for _, c := range categories {
		categoryNames[c.ID] = c.Name
	}
	byID := make(map[string]storefront.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	lines := make([]DetailLine, 0, len(order.Lines))
	for _, line := range order.Lines {
		detail := DetailLine{ProductID: line.ProductID, Quantity: line.Quantity}
		if p, ok := byID[line.ProductID]; ok {
			detail.InCatalog = true
			detail.Name = p.Name
			detail.UnitPrice = p.Price
			detail.Category = p.CategoryID
			if name, ok := categoryNames[p.CategoryID]; ok {
				detail.Category = name
			}
		}
		detail.LineTotal = detail.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity)))
		lines = append(lines, detail)
	}

	return &OrderDetail{
		OrderSummary: summary(order),
		UpdatedAt:    order.UpdatedAt,
		Lines:        lines,
	}
}

// Aggregate computes the dashboard counters for orders.
func Aggregate(orders []storefront.Order) Stats {
	stats := Stats{CompletedValue: decimal.Zero, ActiveValue: decimal.Zero}
	for _, o := range orders {
		switch o.Status {
		case enums.OrderStatusActive:
			stats.Active++
			stats.ActiveValue = stats.ActiveValue.Add(o.Price)
		case enums.OrderStatusCompleted:
			stats.Completed++
			stats.CompletedValue = stats.CompletedValue.Add(o.Price)
		case enums.OrderStatusCanceled:
			stats.Canceled++
		}
	}

	sorted := append([]storefront.Order(nil), orders...)
	sortNewestFirst(sorted)
	if len(sorted) > LatestCount {
		sorted = sorted[:LatestCount]
	}
	stats.Latest = summarize(sorted)
	return stats
}

// StatusLabel is the shopper-facing name of a status.
func StatusLabel(status enums.OrderStatus) string {
	return status.Label()
}

func summarize(orders []storefront.Order) []OrderSummary {
	out := make([]OrderSummary, 0, len(orders))
	for _, o := range orders {
		out = append(out, summary(o))
	}
	return out
}

func summary(o storefront.Order) OrderSummary {
	items := 0
	for _, line := range o.Lines {
		items += line.Quantity
	}
	return OrderSummary{
		ID:          o.ID,
		Status:      o.Status,
		StatusLabel: StatusLabel(o.Status),
		Price:       o.Price,
		TotalItems:  items,
		CreatedAt:   o.CreatedAt,
	}
}

func sortNewestFirst(orders []storefront.Order) {
	sort.SliceStable(orders, func(i, j int) bool {
		if !orders[i].CreatedAt.Equal(orders[j].CreatedAt) {
			return orders[i].CreatedAt.After(orders[j].CreatedAt)
		}
		return orders[i].ID > orders[j].ID
	})
}

// Paginate slices a newest first summary list into one page.
func Paginate(list []OrderSummary, params pagination.Params) (*OrderPage, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	limit := pagination.NormalizeLimit(params.Limit)

	rest := list
	if cursor != nil {
		rest = nil
		for i, s := range list {
			if cursor.Follows(s.CreatedAt, s.ID) {
				rest = list[i:]
				break
			}
		}
	}

	page := &OrderPage{Orders: rest}
	if page.Orders == nil {
		page.Orders = []OrderSummary{}
	}
	if len(rest) > limit {
		page.Orders = rest[:limit]
		last := page.Orders[limit-1]
		page.NextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return page, nil
}
