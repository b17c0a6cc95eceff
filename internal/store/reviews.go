package store

import (
	"context"
	"fmt"

	"github.com/aurelab/aurelab-manager/internal/dependency"
	"github.com/aurelab/aurelab-manager/internal/entity"
	gerr "github.com/aurelab/aurelab-manager/internal/errors"
)

type reviewStore struct {
	*MYSQLStore
}

// Reviews returns an object implementing reviews interface
func (ms *MYSQLStore) Reviews() dependency.Reviews {
	return &reviewStore{
		MYSQLStore: ms,
	}
}

// AddReview inserts a review for a product on a confirmed-delivered order.
// The product must actually be on the order and the buyer must have pressed
// the delivery confirmation, otherwise the review is rejected.
func (ms *MYSQLStore) AddReview(ctx context.Context, r *entity.ReviewInsert) (int, error) {
	var reviewId int
	err := ms.Tx(ctx, func(ctx context.Context, rep dependency.Repository) error {
		cnt, err := QueryCountNamed(ctx, rep.DB(), `
			SELECT COUNT(*)
			FROM customer_order co
			JOIN order_item oi ON oi.order_id = co.id
			WHERE co.id = :orderId
				AND oi.product_id = :productId
				AND co.delivery_confirmed = true`,
			map[string]any{
				"orderId":   r.OrderID,
				"productId": r.ProductID,
			})
		if err != nil {
			return fmt.Errorf("can't check delivery confirmation: %w", err)
		}
		if cnt == 0 {
			return gerr.ErrDeliveryNotConfirmed
		}

		reviewId, err = ExecNamedLastId(ctx, rep.DB(), `
			INSERT INTO review (order_id, product_id, rating, title, body)
			VALUES (:orderId, :productId, :rating, :title, :body)`,
			map[string]any{
				"orderId":   r.OrderID,
				"productId": r.ProductID,
				"rating":    r.Rating,
				"title":     r.Title,
				"body":      r.Body,
			})
		if err != nil {
			if rep.IsErrUniqueViolation(err) {
				return gerr.ErrReviewAlreadyExists
			}
			return fmt.Errorf("can't add review: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return reviewId, nil
}

func (ms *MYSQLStore) GetProductReviews(ctx context.Context, productId int, limit, offset int) ([]entity.Review, error) {
	reviews, err := QueryListNamed[entity.Review](ctx, ms.DB(), `
		SELECT id, created_at, order_id, product_id, rating, title, body
		FROM review
		WHERE product_id = :productId
		ORDER BY created_at DESC
		LIMIT :limit OFFSET :offset`,
		map[string]any{
			"productId": productId,
			"limit":     limit,
			"offset":    offset,
		})
	if err != nil {
		return nil, fmt.Errorf("can't get product reviews: %w", err)
	}
	return reviews, nil
}
