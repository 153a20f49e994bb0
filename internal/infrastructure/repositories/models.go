package repositories

import (
	"time"

	"gorm.io/gorm"
)

// DBUser is the database model for domain.User.
type DBUser struct {
	ID             uint   `gorm:"primaryKey"`
	Phone          string `gorm:"uniqueIndex;size:32"`
	Email          string `gorm:"size:255"`
	FirstName      string `gorm:"size:128"`
	LastName       string `gorm:"size:128"`
	Role           string `gorm:"index;size:32"`
	PhoneVerified  bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
	LastLoginAt    *time.Time
	LastActivityAt *time.Time
	DeletedAt      gorm.DeletedAt `gorm:"index"`
}

func (DBUser) TableName() string { return "users" }

// DBAnonymousSession is the database model for domain.AnonymousSession.
// Token and SessionID live in distinct unique namespaces.
type DBAnonymousSession struct {
	ID             uint   `gorm:"primaryKey"`
	Token          string `gorm:"uniqueIndex;size:64"`
	SessionID      string `gorm:"uniqueIndex;size:64"`
	IPAddress      string `gorm:"size:64"`
	UserAgent      string `gorm:"size:500"`
	LinkedUserID   *uint  `gorm:"index"`
	CreatedAt      time.Time
	LastActivityAt time.Time `gorm:"index"`
}

func (DBAnonymousSession) TableName() string { return "anonymous_sessions" }

// DBOtpCode is the database model for domain.OtpCode.
type DBOtpCode struct {
	ID        uint   `gorm:"primaryKey"`
	Phone     string `gorm:"index;size:32"`
	Code      string `gorm:"size:8"`
	Attempts  int
	ExpiresAt time.Time `gorm:"index"`
	CreatedAt time.Time
}

func (DBOtpCode) TableName() string { return "otp_codes" }

// DBCart references exactly one owner: UserID or AnonymousID.
type DBCart struct {
	ID          uint         `gorm:"primaryKey"`
	UserID      *uint        `gorm:"index"`
	AnonymousID *uint        `gorm:"index"`
	Items       []DBCartItem `gorm:"foreignKey:CartID"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (DBCart) TableName() string { return "carts" }

// DBCartItem is one product line inside a cart.
type DBCartItem struct {
	ID        uint `gorm:"primaryKey"`
	CartID    uint `gorm:"index"`
	ProductID uint `gorm:"index"`
	Quantity  int
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (DBCartItem) TableName() string { return "cart_items" }

// DBFavorite is unique per (user, product); anonymous favorites share the
// table with a nullable owner column.
type DBFavorite struct {
	ID          uint  `gorm:"primaryKey"`
	UserID      *uint `gorm:"index:idx_favorites_user_product,unique"`
	AnonymousID *uint `gorm:"index"`
	ProductID   uint  `gorm:"index:idx_favorites_user_product,unique"`
	CreatedAt   time.Time
}

func (DBFavorite) TableName() string { return "favorites" }

// DBViewHistory is an append-only view log row.
type DBViewHistory struct {
	ID          uint  `gorm:"primaryKey"`
	UserID      *uint `gorm:"index"`
	AnonymousID *uint `gorm:"index"`
	ProductID   uint  `gorm:"index"`
	ViewedAt    time.Time
}

func (DBViewHistory) TableName() string { return "view_history" }

// DBSearchHistory is an append-only search log row.
type DBSearchHistory struct {
	ID          uint   `gorm:"primaryKey"`
	UserID      *uint  `gorm:"index"`
	AnonymousID *uint  `gorm:"index"`
	Query       string `gorm:"size:512"`
	CreatedAt   time.Time
}

func (DBSearchHistory) TableName() string { return "search_history" }

// DBSupportChat is a support conversation row.
type DBSupportChat struct {
	ID          uint   `gorm:"primaryKey"`
	UserID      *uint  `gorm:"index"`
	AnonymousID *uint  `gorm:"index"`
	Subject     string `gorm:"size:255"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (DBSupportChat) TableName() string { return "support_chats" }
