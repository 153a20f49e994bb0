package repositories

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/AndrewYakovlev/aso-uni/domain"
)

// OwnedRecordsRepositoryImpl implements domain.OwnedRecordsRepository. The
// merge runs inside one gorm transaction so a concurrent reader never
// observes a half-moved cart, and every step is conditional on current
// ownership, which makes a second invocation a no-op.
type OwnedRecordsRepositoryImpl struct {
	db         *gorm.DB
	sessions   domain.AnonymousSessionRepository
	maxItemQty int
}

// NewOwnedRecordsRepository creates the merge engine over the given store.
// The session repository answers the linked-sessions part of UserCounts.
// maxItemQty is the per-line quantity ceiling applied when summing
// duplicate cart lines.
func NewOwnedRecordsRepository(db *gorm.DB, sessions domain.AnonymousSessionRepository, maxItemQty int) domain.OwnedRecordsRepository {
	if maxItemQty <= 0 {
		maxItemQty = 99
	}
	return &OwnedRecordsRepositoryImpl{db: db, sessions: sessions, maxItemQty: maxItemQty}
}

// Merge implements domain.OwnedRecordsRepository.
func (r *OwnedRecordsRepositoryImpl) Merge(ctx context.Context, userID, anonymousID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Link the session. The guard on linked_user_id keeps the link
		// one-directional and permanent; the row is retained for analytics.
		if err := tx.Model(&DBAnonymousSession{}).
			Where("id = ? AND linked_user_id IS NULL", anonymousID).
			Update("linked_user_id", userID).Error; err != nil {
			return err
		}

		if err := r.mergeCarts(tx, userID, anonymousID); err != nil {
			return err
		}
		if err := r.mergeFavorites(tx, userID, anonymousID); err != nil {
			return err
		}

		// Histories and chats reassign wholesale: append-only logs need no
		// dedup.
		reassign := map[string]interface{}{"user_id": userID, "anonymous_id": nil}
		if err := tx.Model(&DBViewHistory{}).
			Where("anonymous_id = ? AND user_id IS NULL", anonymousID).
			Updates(reassign).Error; err != nil {
			return err
		}
		if err := tx.Model(&DBSearchHistory{}).
			Where("anonymous_id = ? AND user_id IS NULL", anonymousID).
			Updates(reassign).Error; err != nil {
			return err
		}
		if err := tx.Model(&DBSupportChat{}).
			Where("anonymous_id = ? AND user_id IS NULL", anonymousID).
			Updates(reassign).Error; err != nil {
			return err
		}
		return nil
	})
}

func (r *OwnedRecordsRepositoryImpl) mergeCarts(tx *gorm.DB, userID, anonymousID uint) error {
	var anonCart DBCart
	err := tx.Preload("Items").Where("anonymous_id = ?", anonymousID).First(&anonCart).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	var userCart DBCart
	err = tx.Preload("Items").Where("user_id = ?", userID).First(&userCart).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// No conflict: flip ownership of the whole cart.
		return tx.Model(&DBCart{}).Where("id = ?", anonCart.ID).
			Updates(map[string]interface{}{"user_id": userID, "anonymous_id": nil}).Error
	}
	if err != nil {
		return err
	}

	byProduct := make(map[uint]*DBCartItem, len(userCart.Items))
	for i := range userCart.Items {
		byProduct[userCart.Items[i].ProductID] = &userCart.Items[i]
	}

	for i := range anonCart.Items {
		item := &anonCart.Items[i]
		if existing, ok := byProduct[item.ProductID]; ok {
			qty := existing.Quantity + item.Quantity
			if qty > r.maxItemQty {
				qty = r.maxItemQty
			}
			if err := tx.Model(&DBCartItem{}).Where("id = ?", existing.ID).
				Update("quantity", qty).Error; err != nil {
				return err
			}
			if err := tx.Delete(&DBCartItem{}, item.ID).Error; err != nil {
				return err
			}
		} else {
			if err := tx.Model(&DBCartItem{}).Where("id = ?", item.ID).
				Update("cart_id", userCart.ID).Error; err != nil {
				return err
			}
		}
	}

	// The anonymous cart is empty now; remove it.
	return tx.Delete(&DBCart{}, anonCart.ID).Error
}

func (r *OwnedRecordsRepositoryImpl) mergeFavorites(tx *gorm.DB, userID, anonymousID uint) error {
	var anonFavorites []DBFavorite
	if err := tx.Where("anonymous_id = ? AND user_id IS NULL", anonymousID).
		Find(&anonFavorites).Error; err != nil {
		return err
	}

	for _, fav := range anonFavorites {
		var count int64
		if err := tx.Model(&DBFavorite{}).
			Where("user_id = ? AND product_id = ?", userID, fav.ProductID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			// User already favorited this product: skip, keep the anonymous
			// row with its session.
			continue
		}
		if err := tx.Model(&DBFavorite{}).Where("id = ?", fav.ID).
			Updates(map[string]interface{}{"user_id": userID, "anonymous_id": nil}).Error; err != nil {
			return err
		}
	}
	return nil
}

// UserCounts implements domain.OwnedRecordsRepository.
func (r *OwnedRecordsRepositoryImpl) UserCounts(ctx context.Context, userID uint) (*domain.UserCounts, error) {
	var counts domain.UserCounts
	db := r.db.WithContext(ctx)
	if err := db.Model(&DBFavorite{}).Where("user_id = ?", userID).
		Count(&counts.Favorites).Error; err != nil {
		return nil, err
	}
	linked, err := r.sessions.CountLinkedTo(ctx, userID)
	if err != nil {
		return nil, err
	}
	counts.LinkedSessions = linked
	return &counts, nil
}

// SessionCounts implements domain.OwnedRecordsRepository.
func (r *OwnedRecordsRepositoryImpl) SessionCounts(ctx context.Context, anonymousID uint) (*domain.SessionCounts, error) {
	var counts domain.SessionCounts
	db := r.db.WithContext(ctx)
	if err := db.Model(&DBCart{}).Where("anonymous_id = ?", anonymousID).
		Count(&counts.Carts).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&DBFavorite{}).Where("anonymous_id = ? AND user_id IS NULL", anonymousID).
		Count(&counts.Favorites).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&DBViewHistory{}).Where("anonymous_id = ?", anonymousID).
		Count(&counts.Views).Error; err != nil {
		return nil, err
	}
	return &counts, nil
}
