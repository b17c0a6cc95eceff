// Package frontend serves the storefront API: catalog, cart validation,
// checkout and the customer-facing order views.
package frontend

import (
	"net/http"
	"strconv"
	"time"

	"log/slog"

	"github.com/aurelab/aurelab-manager/internal/apisrv/httputil"
	"github.com/aurelab/aurelab-manager/internal/dependency"
	"github.com/aurelab/aurelab-manager/internal/entity"
	gerr "github.com/aurelab/aurelab-manager/internal/errors"
	"github.com/asaskevich/govalidator"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/shopspring/decimal"
)

// Server implements the storefront endpoints.
type Server struct {
	repository dependency.Repository
	mailer     dependency.Mailer
}

// New creates a new frontend server.
func New(rep dependency.Repository, m dependency.Mailer) *Server {
	return &Server{
		repository: rep,
		mailer:     m,
	}
}

// Routes mounts the storefront endpoints. Checkout goes through the rate
// limiter the router provides.
func (s *Server) Routes(r chi.Router, checkoutLimiter func(http.Handler) http.Handler) {
	r.Get("/dictionary", s.getDictionary)
	r.Get("/products", s.listProducts)
	r.Get("/products/{slug}", s.getProductBySlug)
	r.Get("/products/{slug}/reviews", s.getProductReviews)
	r.Post("/cart/validate", s.validateCart)
	r.With(checkoutLimiter).Post("/checkout", s.checkout)
	r.Get("/orders/{reference}", s.getOrder)
	r.Post("/orders/{uuid}/confirm-delivery", s.confirmDelivery)
	r.Post("/reviews", s.submitReview)
}

func pageParams(r *http.Request) (limit, offset int) {
	limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	offset, _ = strconv.Atoi(r.URL.Query().Get("offset"))
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

func (s *Server) getDictionary(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, s.repository.Cache().GetDict())
}

type productListResponse struct {
	Products []entity.Product `json:"products"`
	Total    int              `json:"total"`
}

func (s *Server) listProducts(w http.ResponseWriter, r *http.Request) {
	limit, offset := pageParams(r)
	products, total, err := s.repository.Products().GetProductsPaged(r.Context(), limit, offset, false)
	if err != nil {
		httputil.RenderErr(w, r, err)
		return
	}
	render.JSON(w, r, &productListResponse{Products: products, Total: total})
}

func (s *Server) getProductBySlug(w http.ResponseWriter, r *http.Request) {
	prd, err := s.repository.Products().GetProductBySlugNoHidden(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		httputil.RenderErr(w, r, err)
		return
	}
	render.JSON(w, r, prd)
}

func (s *Server) getProductReviews(w http.ResponseWriter, r *http.Request) {
	prd, err := s.repository.Products().GetProductBySlugNoHidden(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		httputil.RenderErr(w, r, err)
		return
	}
	limit, offset := pageParams(r)
	reviews, err := s.repository.Reviews().GetProductReviews(r.Context(), prd.ID, limit, offset)
	if err != nil {
		httputil.RenderErr(w, r, err)
		return
	}
	render.JSON(w, r, reviews)
}

type cartRequest struct {
	Items []entity.OrderItemInsert `json:"items" valid:"required"`
}

func (cr *cartRequest) Bind(r *http.Request) error {
	_, err := govalidator.ValidateStruct(cr)
	return err
}

type cartValidationResponse struct {
	Items      []entity.OrderItemInsert `json:"items"`
	Subtotal   decimal.Decimal          `json:"subtotal"`
	HasChanged bool                     `json:"hasChanged"`
}

// validateCart reprices the cart against live stock so the storefront can
// surface clamped quantities and price changes before checkout.
func (s *Server) validateCart(w http.ResponseWriter, r *http.Request) {
	req := &cartRequest{}
	if err := render.Bind(r, req); err != nil {
		render.Render(w, r, httputil.ErrInvalidRequest(err))
		return
	}
	validation, err := s.repository.Order().ValidateOrderItemsInsert(r.Context(), req.Items)
	if err != nil {
		httputil.RenderErr(w, r, err)
		return
	}
	render.JSON(w, r, &cartValidationResponse{
		Items:      validation.ValidItems,
		Subtotal:   validation.SubtotalDecimal(),
		HasChanged: validation.HasChanged,
	})
}

type checkoutRequest struct {
	entity.OrderNew
}

func (cr *checkoutRequest) Bind(r *http.Request) error {
	_, err := govalidator.ValidateStruct(cr)
	return err
}

func (s *Server) checkout(w http.ResponseWriter, r *http.Request) {
	req := &checkoutRequest{}
	if err := render.Bind(r, req); err != nil {
		render.Render(w, r, httputil.ErrInvalidRequest(err))
		return
	}

	order, err := s.repository.Order().CreateOrder(r.Context(), &req.OrderNew)
	if err != nil {
		httputil.RenderErr(w, r, err)
		return
	}

	if err := s.mailer.SendOrderConfirmation(r.Context(), s.repository, order.Buyer.Email, order); err != nil {
		slog.Default().ErrorContext(r.Context(), "can't send order confirmation",
			slog.String("err", err.Error()),
		)
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, s.orderView(order))
}

func (s *Server) getOrder(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if !govalidator.IsEmail(email) {
		render.Render(w, r, httputil.ErrInvalidRequest(gerr.ErrOrderNotFound))
		return
	}
	order, err := s.repository.Order().GetOrderByReferenceAndEmail(r.Context(), chi.URLParam(r, "reference"), email)
	if err != nil {
		httputil.RenderErr(w, r, err)
		return
	}
	render.JSON(w, r, s.orderView(order))
}

func (s *Server) confirmDelivery(w http.ResponseWriter, r *http.Request) {
	order, err := s.repository.Order().ConfirmDelivery(r.Context(), chi.URLParam(r, "uuid"))
	if err != nil {
		httputil.RenderErr(w, r, err)
		return
	}

	if err := s.mailer.SendDeliveryConfirmed(r.Context(), s.repository, order.Buyer.Email, order); err != nil {
		slog.Default().ErrorContext(r.Context(), "can't send delivery confirmation",
			slog.String("err", err.Error()),
		)
	}

	render.JSON(w, r, s.orderView(order))
}

type reviewRequest struct {
	entity.ReviewInsert
}

func (rr *reviewRequest) Bind(r *http.Request) error {
	_, err := govalidator.ValidateStruct(rr)
	return err
}

func (s *Server) submitReview(w http.ResponseWriter, r *http.Request) {
	req := &reviewRequest{}
	if err := render.Bind(r, req); err != nil {
		render.Render(w, r, httputil.ErrInvalidRequest(err))
		return
	}
	id, err := s.repository.Reviews().AddReview(r.Context(), &req.ReviewInsert)
	if err != nil {
		httputil.RenderErr(w, r, err)
		return
	}
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, map[string]int{"id": id})
}

// orderView is the customer-facing projection of an order.
type orderView struct {
	UUID              string            `json:"uuid"`
	Reference         string            `json:"reference"`
	Placed            time.Time         `json:"placed"`
	Status            string            `json:"status"`
	Subtotal          decimal.Decimal   `json:"subtotal"`
	ShippingCost      decimal.Decimal   `json:"shippingCost"`
	TaxAmount         decimal.Decimal   `json:"taxAmount"`
	TotalPrice        decimal.Decimal   `json:"totalPrice"`
	DeliveryConfirmed bool              `json:"deliveryConfirmed"`
	Items             []orderItemView   `json:"items"`
	Tracking          *entity.Tracking  `json:"tracking,omitempty"`
	History           []orderStatusView `json:"history"`
}

type orderItemView struct {
	ProductName  string          `json:"productName"`
	Slug         string          `json:"slug"`
	ProductPrice decimal.Decimal `json:"productPrice"`
	Quantity     int             `json:"quantity"`
}

type orderStatusView struct {
	Status    string    `json:"status"`
	ChangedAt time.Time `json:"changedAt"`
	Notes     string    `json:"notes"`
}

func (s *Server) orderView(order *entity.OrderFull) *orderView {
	ov := &orderView{
		UUID:              order.Order.UUID,
		Reference:         order.Order.Reference,
		Placed:            order.Order.Placed,
		Status:            s.statusName(order.Order.OrderStatusID),
		Subtotal:          order.Order.Subtotal,
		ShippingCost:      order.Order.ShippingCost,
		TaxAmount:         order.Order.TaxAmount,
		TotalPrice:        order.Order.TotalPrice,
		DeliveryConfirmed: order.Order.DeliveryConfirmed,
		Tracking:          order.Tracking,
	}
	for _, it := range order.OrderItems {
		ov.Items = append(ov.Items, orderItemView{
			ProductName:  it.ProductName,
			Slug:         it.Slug,
			ProductPrice: it.ProductPrice,
			Quantity:     it.Quantity,
		})
	}
	for _, h := range order.History {
		ov.History = append(ov.History, orderStatusView{
			Status:    s.statusName(h.OrderStatusID),
			ChangedAt: h.ChangedAt,
			Notes:     h.Notes,
		})
	}
	return ov
}

func (s *Server) statusName(statusId int) string {
	status, ok := s.repository.Cache().GetOrderStatusByID(statusId)
	if !ok {
		return ""
	}
	return status.Name.String()
}
