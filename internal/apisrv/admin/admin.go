// Package admin serves the back office API: catalog and vendor management,
// stock adjustments, order lifecycle operations, customers and financial
// reports.
package admin

import (
	"database/sql"
	"net/http"
	"strconv"
	"time"

	"log/slog"

	"github.com/aurelab/aurelab-manager/internal/analytics"
	"github.com/aurelab/aurelab-manager/internal/apisrv/auth"
	"github.com/aurelab/aurelab-manager/internal/apisrv/httputil"
	"github.com/aurelab/aurelab-manager/internal/dependency"
	"github.com/aurelab/aurelab-manager/internal/entity"
	gerr "github.com/aurelab/aurelab-manager/internal/errors"
	"github.com/asaskevich/govalidator"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/shopspring/decimal"
)

// Server implements the back office endpoints.
type Server struct {
	repository dependency.Repository
	mailer     dependency.Mailer
	auth       *auth.Server
}

// New creates a new admin server.
func New(rep dependency.Repository, m dependency.Mailer, as *auth.Server) *Server {
	return &Server{
		repository: rep,
		mailer:     m,
		auth:       as,
	}
}

// Routes mounts the back office endpoints. Reads are open to any
// authenticated role, writes require admin or superadmin.
func (s *Server) Routes(r chi.Router) {
	r.Get("/products", s.listProducts)
	r.Get("/products/{id}", s.getProduct)
	r.Get("/products/{id}/stock-changes", s.getStockChanges)
	r.Get("/vendors", s.listVendors)
	r.Get("/vendors/{id}", s.getVendor)
	r.Get("/customers", s.listCustomers)
	r.Get("/customers/{email}/orders", s.getCustomerOrders)
	r.Get("/orders", s.listOrders)
	r.Get("/orders/{uuid}", s.getOrder)
	r.Get("/reports/financial", s.financialReport)

	r.Group(func(r chi.Router) {
		r.Use(s.auth.WithRole(entity.RoleAdmin, entity.RoleSuperAdmin))
		r.Post("/products", s.addProduct)
		r.Put("/products/{id}", s.updateProduct)
		r.Delete("/products/{id}", s.deleteProduct)
		r.Post("/products/{id}/hidden", s.setHidden)
		r.Post("/products/{id}/stock", s.adjustStock)
		r.Post("/vendors", s.addVendor)
		r.Put("/vendors/{id}", s.updateVendor)
		r.Delete("/vendors/{id}", s.deleteVendor)
		r.Post("/orders/{uuid}/status", s.updateOrderStatus)
		r.Post("/orders/{uuid}/tracking", s.setTracking)
		r.Post("/orders/{uuid}/cancel", s.cancelOrder)
		r.Post("/orders/{uuid}/refund", s.addRefund)
		r.Post("/orders/{uuid}/discount", s.addDiscount)
	})
}

func idParam(r *http.Request) (int, error) {
	return strconv.Atoi(chi.URLParam(r, "id"))
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

// products

type productRequest struct {
	Name        string           `json:"name" valid:"required"`
	Slug        string           `json:"slug" valid:"required"`
	Description string           `json:"description"`
	CategoryID  int              `json:"categoryId" valid:"required"`
	VendorID    *int             `json:"vendorId"`
	Price       decimal.Decimal  `json:"price"`
	Cost        *decimal.Decimal `json:"cost"`
	Stock       int              `json:"stock"`
	Hidden      bool             `json:"hidden"`
}

func (pr *productRequest) Bind(r *http.Request) error {
	if _, err := govalidator.ValidateStruct(pr); err != nil {
		return err
	}
	if !pr.Price.IsPositive() {
		return gerr.ErrNonPositivePrice
	}
	if pr.Stock < 0 {
		return gerr.ErrNegativeStock
	}
	return nil
}

func (pr *productRequest) toInsert() *entity.ProductInsert {
	ins := &entity.ProductInsert{
		Name:        pr.Name,
		Slug:        pr.Slug,
		Description: pr.Description,
		CategoryID:  pr.CategoryID,
		Price:       pr.Price,
		Stock:       pr.Stock,
		Hidden:      pr.Hidden,
	}
	if pr.VendorID != nil {
		ins.VendorID = sql.NullInt32{Int32: int32(*pr.VendorID), Valid: true}
	}
	if pr.Cost != nil {
		ins.Cost = decimal.NewNullDecimal(*pr.Cost)
	}
	return ins
}

func (s *Server) addProduct(w http.ResponseWriter, r *http.Request) {
	req := &productRequest{}
	if err := render.Bind(r, req); err != nil {
		render.Render(w, r, httputil.ErrInvalidRequest(err))
		return
	}
	if _, ok := s.repository.Cache().GetCategoryByID(req.CategoryID); !ok {
		render.Render(w, r, httputil.ErrInvalidRequest(gerr.ErrUnknownCategory))
		return
	}

	id, err := s.repository.Products().AddProduct(r.Context(), req.toInsert())
	if err != nil {
		httputil.RenderErr(w, r, err)
		return
	}
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, map[string]int{"id": id})
}

func (s *Server) updateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		render.Render(w, r, httputil.ErrInvalidRequest(err))
		return
	}
	req := &productRequest{}
	if err := render.Bind(r, req); err != nil {
		render.Render(w, r, httputil.ErrInvalidRequest(err))
		return
	}
	if _, ok := s.repository.Cache().GetCategoryByID(req.CategoryID); !ok {
		render.Render(w, r, httputil.ErrInvalidRequest(gerr.ErrUnknownCategory))
		return
	}
	if err := s.repository.Products().UpdateProduct(r.Context(), req.toInsert(), id); err != nil {
		httputil.RenderErr(w, r, err)
		return
	}
	render.NoContent(w, r)
}

func (s *Server) listProducts(w http.ResponseWriter, r *http.Request) {
	limit, offset := pageParams(r)
	products, total, err := s.repository.Products().GetProductsPaged(r.Context(), limit, offset, true)
	if err != nil {
		httputil.RenderErr(w, r, err)
		return
	}
	render.JSON(w, r, map[string]any{"products": products, "total": total})
}

func (s *Server) getProduct(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		render.Render(w, r, httputil.ErrInvalidRequest(err))
		return
	}
	prd, err := s.repository.Products().GetProductById(r.Context(), id)
	if err != nil {
		httputil.RenderErr(w, r, err)
		return
	}
	render.JSON(w, r, prd)
}

func (s *Server) deleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		render.Render(w, r, httputil.ErrInvalidRequest(err))
		return
	}
	if err := s.repository.Products().DeleteProductById(r.Context(), id); err != nil {
		httputil.RenderErr(w, r, err)
		return
	}
	render.NoContent(w, r)
}

type hiddenRequest struct {
	Hidden bool `json:"hidden"`
}

func (hr *hiddenRequest) Bind(r *http.Request) error {
	return nil
}

func (s *Server) setHidden(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		render.Render(w, r, httputil.ErrInvalidRequest(err))
		return
	}
	req := &hiddenRequest{}
	if err := render.Bind(r, req); err != nil {
		render.Render(w, r, httputil.ErrInvalidRequest(err))
		return
	}
	if err := s.repository.Products().SetHidden(r.Context(), id, req.Hidden); err != nil {
		httputil.RenderErr(w, r, err)
		return
	}
	render.NoContent(w, r)
}

type stockRequest struct {
	Delta int    `json:"delta"`
	Note  string `json:"note"`
}

func (sr *stockRequest) Bind(r *http.Request) error {
	if sr.Delta == 0 {
		return gerr.ErrZeroStockDelta
	}
	return nil
}

func (s *Server) adjustStock(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		render.Render(w, r, httputil.ErrInvalidRequest(err))
		return
	}
	req := &stockRequest{}
	if err := render.Bind(r, req); err != nil {
		render.Render(w, r, httputil.ErrInvalidRequest(err))
		return
	}
	err = s.repository.Products().AdjustStock(r.Context(), id, req.Delta, entity.StockSourceAdminAdjust, req.Note)
	if err != nil {
		httputil.RenderErr(w, r, err)
		return
	}
	render.NoContent(w, r)
}

func (s *Server) getStockChanges(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		render.Render(w, r, httputil.ErrInvalidRequest(err))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	changes, err := s.repository.Products().GetStockChanges(r.Context(), id, limit)
	if err != nil {
		httputil.RenderErr(w, r, err)
		return
	}
	render.JSON(w, r, changes)
}

// vendors

type vendorRequest struct {
	entity.VendorInsert
}

func (vr *vendorRequest) Bind(r *http.Request) error {
	_, err := govalidator.ValidateStruct(vr)
	return err
}

func (s *Server) addVendor(w http.ResponseWriter, r *http.Request) {
	req := &vendorRequest{}
	if err := render.Bind(r, req); err != nil {
		render.Render(w, r, httputil.ErrInvalidRequest(err))
		return
	}
	id, err := s.repository.Vendors().AddVendor(r.Context(), &req.VendorInsert)
	if err != nil {
		httputil.RenderErr(w, r, err)
		return
	}
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, map[string]int{"id": id})
}

func (s *Server) updateVendor(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		render.Render(w, r, httputil.ErrInvalidRequest(err))
		return
	}
	req := &vendorRequest{}
	if err := render.Bind(r, req); err != nil {
		render.Render(w, r, httputil.ErrInvalidRequest(err))
		return
	}
	if err := s.repository.Vendors().UpdateVendor(r.Context(), &req.VendorInsert, id); err != nil {
		httputil.RenderErr(w, r, err)
		return
	}
	render.NoContent(w, r)
}

func (s *Server) deleteVendor(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		render.Render(w, r, httputil.ErrInvalidRequest(err))
		return
	}
	if err := s.repository.Vendors().DeleteVendorById(r.Context(), id); err != nil {
		httputil.RenderErr(w, r, err)
		return
	}
	render.NoContent(w, r)
}

func (s *Server) getVendor(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		render.Render(w, r, httputil.ErrInvalidRequest(err))
		return
	}
	v, err := s.repository.Vendors().GetVendorById(r.Context(), id)
	if err != nil {
		httputil.RenderErr(w, r, err)
		return
	}
	render.JSON(w, r, v)
}

func (s *Server) listVendors(w http.ResponseWriter, r *http.Request) {
	limit, offset := pageParams(r)
	vendors, err := s.repository.Vendors().ListVendors(r.Context(), limit, offset)
	if err != nil {
		httputil.RenderErr(w, r, err)
		return
	}
	render.JSON(w, r, vendors)
}

// customers

func (s *Server) listCustomers(w http.ResponseWriter, r *http.Request) {
	limit, offset := pageParams(r)
	customers, total, err := s.repository.Customers().ListCustomers(r.Context(), limit, offset)
	if err != nil {
		httputil.RenderErr(w, r, err)
		return
	}
	render.JSON(w, r, map[string]any{"customers": customers, "total": total})
}

func (s *Server) getCustomerOrders(w http.ResponseWriter, r *http.Request) {
	email := chi.URLParam(r, "email")
	if !govalidator.IsEmail(email) {
		render.Render(w, r, httputil.ErrInvalidRequest(gerr.ErrUserNotFound))
		return
	}
	limit, offset := pageParams(r)
	orders, err := s.repository.Customers().GetCustomerOrders(r.Context(), email, limit, offset)
	if err != nil {
		httputil.RenderErr(w, r, err)
		return
	}
	render.JSON(w, r, orders)
}

// orders

func (s *Server) listOrders(w http.ResponseWriter, r *http.Request) {
	limit, offset := pageParams(r)
	statusId := 0
	if statusName := r.URL.Query().Get("status"); statusName != "" {
		status, ok := s.repository.Cache().GetOrderStatusByName(entity.OrderStatusName(statusName))
		if !ok {
			render.Render(w, r, httputil.ErrInvalidRequest(gerr.ErrUnknownStatus))
			return
		}
		statusId = status.ID
	}
	orders, total, err := s.repository.Order().GetOrdersPaged(r.Context(), statusId, limit, offset)
	if err != nil {
		httputil.RenderErr(w, r, err)
		return
	}
	render.JSON(w, r, map[string]any{"orders": orders, "total": total})
}

func (s *Server) getOrder(w http.ResponseWriter, r *http.Request) {
	order, err := s.repository.Order().GetOrderFullByUUID(r.Context(), chi.URLParam(r, "uuid"))
	if err != nil {
		httputil.RenderErr(w, r, err)
		return
	}
	render.JSON(w, r, order)
}

type statusRequest struct {
	Status string `json:"status" valid:"required"`
	Notes  string `json:"notes"`
}

func (sr *statusRequest) Bind(r *http.Request) error {
	if _, err := govalidator.ValidateStruct(sr); err != nil {
		return err
	}
	if !entity.ValidOrderStatusNames[entity.OrderStatusName(sr.Status)] {
		return gerr.ErrUnknownStatus
	}
	return nil
}

func (s *Server) updateOrderStatus(w http.ResponseWriter, r *http.Request) {
	req := &statusRequest{}
	if err := render.Bind(r, req); err != nil {
		render.Render(w, r, httputil.ErrInvalidRequest(err))
		return
	}
	changedBy := auth.UsernameFromContext(r.Context())
	order, err := s.repository.Order().UpdateOrderStatus(r.Context(),
		chi.URLParam(r, "uuid"), entity.OrderStatusName(req.Status), changedBy, req.Notes)
	if err != nil {
		httputil.RenderErr(w, r, err)
		return
	}
	render.JSON(w, r, order)
}

type trackingRequest struct {
	Carrier           string     `json:"carrier" valid:"required"`
	TrackingCode      string     `json:"trackingCode" valid:"required"`
	CurrentLocation   string     `json:"currentLocation"`
	EstimatedDelivery *time.Time `json:"estimatedDelivery"`
	EventStatus       string     `json:"eventStatus"`
	EventDescription  string     `json:"eventDescription"`
}

func (tr *trackingRequest) Bind(r *http.Request) error {
	_, err := govalidator.ValidateStruct(tr)
	return err
}

func (s *Server) setTracking(w http.ResponseWriter, r *http.Request) {
	req := &trackingRequest{}
	if err := render.Bind(r, req); err != nil {
		render.Render(w, r, httputil.ErrInvalidRequest(err))
		return
	}

	ins := &entity.TrackingInsert{
		Carrier:      req.Carrier,
		TrackingCode: req.TrackingCode,
	}
	if req.CurrentLocation != "" {
		ins.CurrentLocation = sql.NullString{String: req.CurrentLocation, Valid: true}
	}
	if req.EstimatedDelivery != nil {
		ins.EstimatedDelivery = sql.NullTime{Time: *req.EstimatedDelivery, Valid: true}
	}
	var event *entity.TrackingEvent
	if req.EventStatus != "" {
		event = &entity.TrackingEvent{
			Status:     req.EventStatus,
			OccurredAt: time.Now(),
		}
		if req.CurrentLocation != "" {
			event.Location = sql.NullString{String: req.CurrentLocation, Valid: true}
		}
		if req.EventDescription != "" {
			event.Description = sql.NullString{String: req.EventDescription, Valid: true}
		}
	}

	order, err := s.repository.Order().SetTracking(r.Context(), chi.URLParam(r, "uuid"), ins, event)
	if err != nil {
		httputil.RenderErr(w, r, err)
		return
	}

	if err := s.mailer.SendTrackingUpdate(r.Context(), s.repository, order.Buyer.Email, order); err != nil {
		slog.Default().ErrorContext(r.Context(), "can't send tracking update",
			slog.String("err", err.Error()),
		)
	}

	render.JSON(w, r, order)
}

func (s *Server) cancelOrder(w http.ResponseWriter, r *http.Request) {
	order, err := s.repository.Order().CancelOrder(r.Context(), chi.URLParam(r, "uuid"))
	if err != nil {
		httputil.RenderErr(w, r, err)
		return
	}

	if err := s.mailer.SendOrderCancellation(r.Context(), s.repository, order.Buyer.Email, order); err != nil {
		slog.Default().ErrorContext(r.Context(), "can't send cancellation email",
			slog.String("err", err.Error()),
		)
	}

	render.JSON(w, r, order)
}

type refundRequest struct {
	Amount decimal.Decimal `json:"amount"`
	Reason string          `json:"reason"`
}

func (rr *refundRequest) Bind(r *http.Request) error {
	if !rr.Amount.IsPositive() {
		return gerr.ErrNonPositiveAmount
	}
	return nil
}

func (s *Server) addRefund(w http.ResponseWriter, r *http.Request) {
	req := &refundRequest{}
	if err := render.Bind(r, req); err != nil {
		render.Render(w, r, httputil.ErrInvalidRequest(err))
		return
	}
	err := s.repository.Order().AddRefund(r.Context(), chi.URLParam(r, "uuid"), req.Amount, req.Reason)
	if err != nil {
		httputil.RenderErr(w, r, err)
		return
	}
	render.NoContent(w, r)
}

type discountRequest struct {
	Code   string          `json:"code"`
	Amount decimal.Decimal `json:"amount"`
}

func (dr *discountRequest) Bind(r *http.Request) error {
	if !dr.Amount.IsPositive() {
		return gerr.ErrNonPositiveAmount
	}
	return nil
}

func (s *Server) addDiscount(w http.ResponseWriter, r *http.Request) {
	req := &discountRequest{}
	if err := render.Bind(r, req); err != nil {
		render.Render(w, r, httputil.ErrInvalidRequest(err))
		return
	}
	err := s.repository.Order().AddDiscount(r.Context(), chi.URLParam(r, "uuid"), req.Code, req.Amount)
	if err != nil {
		httputil.RenderErr(w, r, err)
		return
	}
	render.NoContent(w, r)
}

// reports

// financialReport loads one wide window of order summaries covering the
// period and its year-back comparison, then aggregates in memory.
func (s *Server) financialReport(w http.ResponseWriter, r *http.Request) {
	period, err := analytics.ParsePeriod(r.URL.Query().Get("from"), r.URL.Query().Get("to"))
	if err != nil {
		httputil.RenderErr(w, r, err)
		return
	}

	orders, err := s.repository.Order().GetOrderSummaries(r.Context(),
		period.From.AddDate(-1, 0, 0), period.To.Add(time.Nanosecond))
	if err != nil {
		httputil.RenderErr(w, r, err)
		return
	}

	render.JSON(w, r, analytics.BuildReport(orders, period))
}
