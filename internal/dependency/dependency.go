package dependency

import (
	"context"
	"database/sql"
	"time"

	"github.com/aurelab/aurelab-manager/internal/entity"
	"github.com/jmoiron/sqlx"
	"github.com/sendgrid/rest"
	mailsg "github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/shopspring/decimal"
)

type (
	Products interface {
		// AddProduct adds a new product along with its associated data.
		AddProduct(ctx context.Context, prd *entity.ProductInsert) (int, error)
		// UpdateProduct replaces the mutable fields of a product.
		UpdateProduct(ctx context.Context, prd *entity.ProductInsert, id int) error
		// GetProductsPaged returns a paged list of products.
		GetProductsPaged(ctx context.Context, limit, offset int, showHidden bool) ([]entity.Product, int, error)
		// GetProductById returns a product by its ID no matter hidden or not.
		GetProductById(ctx context.Context, id int) (*entity.Product, error)
		// GetProductBySlugNoHidden returns a product by its slug if it is not hidden.
		GetProductBySlugNoHidden(ctx context.Context, slug string) (*entity.Product, error)
		// DeleteProductById deletes a product by its ID.
		DeleteProductById(ctx context.Context, id int) error
		// SetHidden toggles storefront visibility.
		SetHidden(ctx context.Context, id int, hidden bool) error
		// AdjustStock applies delta to product stock and writes the audit row
		// in the same transaction. Negative deltas below zero stock fail.
		AdjustStock(ctx context.Context, id int, delta int, source entity.StockChangeSource, note string) error
		// GetStockChanges returns the audit log for a product, newest first.
		GetStockChanges(ctx context.Context, productId int, limit int) ([]entity.StockChange, error)
	}

	Vendors interface {
		AddVendor(ctx context.Context, v *entity.VendorInsert) (int, error)
		UpdateVendor(ctx context.Context, v *entity.VendorInsert, id int) error
		DeleteVendorById(ctx context.Context, id int) error
		GetVendorById(ctx context.Context, id int) (*entity.Vendor, error)
		ListVendors(ctx context.Context, limit, offset int) ([]entity.Vendor, error)
	}

	Order interface {
		// CreateOrder validates the cart against live stock, snapshots prices
		// and costs, reduces stock and creates the pending order in one tx.
		CreateOrder(ctx context.Context, orderNew *entity.OrderNew) (*entity.OrderFull, error)
		ValidateOrderItemsInsert(ctx context.Context, items []entity.OrderItemInsert) (*entity.OrderItemValidation, error)
		GetOrderById(ctx context.Context, orderId int) (*entity.OrderFull, error)
		GetOrderByUUID(ctx context.Context, orderUUID string) (*entity.Order, error)
		GetOrderFullByUUID(ctx context.Context, orderUUID string) (*entity.OrderFull, error)
		// GetOrderByReferenceAndEmail is the storefront lookup: order reference
		// plus the buyer email it was placed with.
		GetOrderByReferenceAndEmail(ctx context.Context, reference, email string) (*entity.OrderFull, error)
		GetOrdersPaged(ctx context.Context, statusId, limit, offset int) ([]entity.Order, int, error)
		// UpdateOrderStatus moves the order through the status machine,
		// recording the transition in order_status_history.
		UpdateOrderStatus(ctx context.Context, orderUUID string, newStatus entity.OrderStatusName, changedBy, notes string) (*entity.OrderFull, error)
		// SetTracking upserts carrier tracking and appends a tracking event.
		SetTracking(ctx context.Context, orderUUID string, t *entity.TrackingInsert, event *entity.TrackingEvent) (*entity.OrderFull, error)
		// ConfirmDelivery flips delivery_confirmed; only valid once delivered.
		ConfirmDelivery(ctx context.Context, orderUUID string) (*entity.OrderFull, error)
		// CancelOrder cancels the order and restores reserved stock.
		CancelOrder(ctx context.Context, orderUUID string) (*entity.OrderFull, error)
		AddRefund(ctx context.Context, orderUUID string, amount decimal.Decimal, reason string) error
		AddDiscount(ctx context.Context, orderUUID string, code string, amount decimal.Decimal) error
		// GetOrderSummaries loads flattened orders for the report aggregator.
		GetOrderSummaries(ctx context.Context, from, to time.Time) ([]entity.OrderSummary, error)
		// GetStuckPendingOrders returns pending orders placed before olderThan.
		GetStuckPendingOrders(ctx context.Context, olderThan time.Time) ([]entity.Order, error)
	}

	Customers interface {
		ListCustomers(ctx context.Context, limit, offset int) ([]entity.Customer, int, error)
		GetCustomerOrders(ctx context.Context, email string, limit, offset int) ([]entity.Order, error)
	}

	Reviews interface {
		// AddReview inserts a review; fails unless the order has
		// delivery_confirmed set.
		AddReview(ctx context.Context, r *entity.ReviewInsert) (int, error)
		GetProductReviews(ctx context.Context, productId int, limit, offset int) ([]entity.Review, error)
	}

	Admin interface {
		AddUser(ctx context.Context, un, email, pwHash string, role entity.UserRole) error
		DeleteUser(ctx context.Context, username string) error
		ChangePassword(ctx context.Context, un, newHash string) error
		ChangeRole(ctx context.Context, un string, role entity.UserRole) error
		PasswordHashByUsername(ctx context.Context, un string) (string, error)
		GetUserByUsername(ctx context.Context, username string) (*entity.AdminUser, error)
		ListUsers(ctx context.Context) ([]entity.AdminUser, error)
	}

	Mail interface {
		AddMail(ctx context.Context, ser *entity.SendEmailRequest) (int, error)
		GetAllUnsent(ctx context.Context, withError bool) ([]entity.SendEmailRequest, error)
		UpdateSent(ctx context.Context, id int) error
		AddError(ctx context.Context, id int, errMsg string) error
	}

	Repository interface {
		Products() Products
		Vendors() Vendors
		Order() Order
		Customers() Customers
		Reviews() Reviews
		Admin() Admin
		Mail() Mail
		Tx(ctx context.Context, f func(context.Context, Repository) error) error
		TxBegin(ctx context.Context) (Repository, error)
		TxCommit(ctx context.Context) error
		TxRollback(ctx context.Context) error
		Now() time.Time
		InTx() bool
		Close()
		IsErrUniqueViolation(err error) bool
		IsErrorRepeat(err error) bool
		Cache() Cache
		DB() DB
	}

	// DB represents database interface.
	DB interface {
		BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
		ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)

		// sqlx methods
		GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
		NamedExecContext(ctx context.Context, query string, arg interface{}) (sql.Result, error)
		NamedQuery(query string, arg interface{}) (*sqlx.Rows, error)
		PrepareNamedContext(ctx context.Context, query string) (*sqlx.NamedStmt, error)
		PreparexContext(ctx context.Context, query string) (*sqlx.Stmt, error)
		QueryRowxContext(ctx context.Context, query string, args ...interface{}) *sqlx.Row
		QueryxContext(ctx context.Context, query string, args ...interface{}) (*sqlx.Rows, error)
		SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	}

	Mailer interface {
		SendOrderConfirmation(ctx context.Context, rep Repository, to string, order *entity.OrderFull) error
		SendOrderCancellation(ctx context.Context, rep Repository, to string, order *entity.OrderFull) error
		SendTrackingUpdate(ctx context.Context, rep Repository, to string, order *entity.OrderFull) error
		SendDeliveryConfirmed(ctx context.Context, rep Repository, to string, order *entity.OrderFull) error
		Start(ctx context.Context) error
		Stop() error
	}

	Sender interface {
		Send(email *mailsg.SGMailV3) (*rest.Response, error)
	}

	Cache interface {
		GetCategoryByID(id int) (*entity.Category, bool)
		GetCategoryByName(category entity.CategoryEnum) (entity.Category, bool)

		GetOrderStatusByID(id int) (*entity.OrderStatus, bool)
		GetOrderStatusByName(orderStatus entity.OrderStatusName) (entity.OrderStatus, bool)

		GetDict() *entity.Dict
	}
)
