// Package checkout turns a user's cart into a durable order.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/MikeMC777/shop-service/internal/apperr"
	"github.com/MikeMC777/shop-service/internal/cart"
	"github.com/MikeMC777/shop-service/internal/order"
	"github.com/MikeMC777/shop-service/internal/product"
)

type ProductReader interface {
	GetByID(ctx context.Context, id string) (*product.Product, error)
}

type OrderWriter interface {
	Create(ctx context.Context, o *order.Order) error
}

// Publisher announces placed orders. Failures never undo a checkout.
type Publisher interface {
	OrderPlaced(ctx context.Context, o order.Order) error
}

type Service struct {
	carts    cart.Registry
	products ProductReader
	orders   OrderWriter
	events   Publisher
	log      *slog.Logger
	tracer   trace.Tracer

	maxConcurrent int
}

func NewService(carts cart.Registry, products ProductReader, orders OrderWriter, events Publisher, log *slog.Logger, maxConcurrent int) *Service {
	if maxConcurrent <= 0 {
		maxConcurrent = 8
	}
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		carts:         carts,
		products:      products,
		orders:        orders,
		events:        events,
		log:           log,
		tracer:        otel.Tracer("github.com/MikeMC777/shop-service/internal/checkout"),
		maxConcurrent: maxConcurrent,
	}
}

// Checkout prices the user's cart at current catalog prices, writes the order and
// clears the cart, all under the user's cart lock. Entries whose product no longer
// exists are dropped. If the order write fails the cart is left untouched.
func (s *Service) Checkout(ctx context.Context, userID string) (*order.Order, error) {
	ctx, span := s.tracer.Start(ctx, "checkout.Checkout", trace.WithAttributes(attribute.String("user.id", userID)))
	defer span.End()

	var placed *order.Order
	err := s.carts.Drain(ctx, userID, func(entries []cart.Entry) error {
		if len(entries) == 0 {
			return apperr.ErrEmptyCart
		}

		items, err := s.resolve(ctx, entries)
		if err != nil {
			return err
		}

		o := &order.Order{
			ID:     uuid.NewString(),
			UserID: userID,
			Status: order.StatusPlaced,
			Total:  order.SumItems(items),
			Items:  items,
		}
		for i := range o.Items {
			o.Items[i].OrderID = o.ID
		}
		if err := s.orders.Create(ctx, o); err != nil {
			if !errors.Is(err, apperr.ErrPersistence) && !errors.Is(err, apperr.ErrUnavailable) {
				err = fmt.Errorf("%w: %w", apperr.ErrPersistence, err)
			}
			return apperr.Wrap("checkout: write order", err)
		}
		placed = o
		return nil
	})

	if err != nil && placed == nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if err != nil {
		// The order is durable; only the cart clear failed. Report the order.
		s.log.ErrorContext(ctx, "cart not cleared after checkout",
			slog.String("user_id", userID), slog.String("order_id", placed.ID), slog.Any("err", err))
	}

	span.SetAttributes(
		attribute.String("order.id", placed.ID),
		attribute.Int("order.items", len(placed.Items)),
		attribute.String("order.total", placed.Total.String()),
	)
	s.log.InfoContext(ctx, "order placed",
		slog.String("user_id", userID), slog.String("order_id", placed.ID),
		slog.Int("items", len(placed.Items)), slog.String("total", placed.Total.String()))

	if s.events != nil {
		if err := s.events.OrderPlaced(ctx, *placed); err != nil {
			s.log.WarnContext(ctx, "order event not published",
				slog.String("order_id", placed.ID), slog.Any("err", err))
		}
	}
	return placed, nil
}

// resolve looks every entry up in the catalog, at most maxConcurrent at a time.
// The returned items keep cart order.
func (s *Service) resolve(ctx context.Context, entries []cart.Entry) ([]order.Item, error) {
	resolved := make([]*order.Item, len(entries))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.maxConcurrent)
	for idx, e := range entries {
		g.Go(func() error {
			p, err := s.products.GetByID(gctx, e.ProductID)
			if errors.Is(err, apperr.ErrNotFound) {
				s.log.WarnContext(ctx, "dropping unresolvable cart entry",
					slog.String("product_id", e.ProductID), slog.Int("quantity", e.Quantity))
				return nil
			}
			if err != nil {
				return apperr.Store("checkout: price "+e.ProductID, err)
			}
			resolved[idx] = &order.Item{
				ID:        uuid.NewString(),
				ProductID: p.ID,
				Quantity:  e.Quantity,
				Price:     p.Price,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	items := make([]order.Item, 0, len(entries))
	for _, it := range resolved {
		if it != nil {
			items = append(items, *it)
		}
	}
	return items, nil
}
