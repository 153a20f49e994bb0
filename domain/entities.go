package domain

import "time"

// UserRole is the coarse role carried in tokens and checked by the edge gate.
type UserRole string

const (
	RoleCustomer UserRole = "CUSTOMER"
	RoleManager  UserRole = "MANAGER"
	RoleAdmin    UserRole = "ADMIN"
)

// User represents a registered user. Phone is the sole credential and the
// unique lookup key; there is no password.
type User struct {
	ID             uint
	Phone          string
	Email          string
	FirstName      string
	LastName       string
	Role           UserRole
	PhoneVerified  bool
	CreatedAt      time.Time
	LastLoginAt    *time.Time
	LastActivityAt *time.Time
	DeletedAt      *time.Time
}

// IsDeleted reports whether the user is soft-deleted. Soft-deleted users are
// treated as nonexistent for authentication.
func (u *User) IsDeleted() bool {
	return u.DeletedAt != nil
}

// AnonymousSession is the durable pre-authentication identity of a
// browser/device. Token is the bearer credential; SessionID is a legacy
// secondary identifier kept in its own namespace.
type AnonymousSession struct {
	ID             uint
	Token          string
	SessionID      string
	IPAddress      string
	UserAgent      string
	LinkedUserID   *uint
	CreatedAt      time.Time
	LastActivityAt time.Time
}

// Linked reports whether the session has been promoted to a user. Once set,
// the link is never cleared; the row is retained for analytics.
func (s *AnonymousSession) Linked() bool {
	return s.LinkedUserID != nil
}

// OtpCode is a one-time verification code tied to a phone number.
type OtpCode struct {
	ID        uint
	Phone     string
	Code      string
	Attempts  int
	ExpiresAt time.Time
	CreatedAt time.Time
}

// TokenType discriminates access from refresh credentials inside a signed
// token. Mandatory claim even though the two types also use distinct secrets.
type TokenType string

const (
	TokenAccess  TokenType = "access"
	TokenRefresh TokenType = "refresh"
)

// TokenClaims are the verified contents of a signed token.
type TokenClaims struct {
	UserID    uint
	Role      UserRole
	Type      TokenType
	IssuedAt  int64
	ExpiresAt int64
}

// TokenPair is a freshly minted access+refresh credential pair.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int64
}

// IdentityKind tags the two possible resolved identities of a request.
type IdentityKind string

const (
	IdentityUser      IdentityKind = "user"
	IdentityAnonymous IdentityKind = "anonymous"
)

// Identity is the canonical "who is making this call" produced by the
// session resolver. Exactly one of User or Session is set, per Kind.
type Identity struct {
	Kind    IdentityKind
	User    *User
	Session *AnonymousSession
}

// IsUser reports whether the identity is an authenticated user.
func (i *Identity) IsUser() bool {
	return i != nil && i.Kind == IdentityUser
}

// IsAnonymous reports whether the identity is an anonymous session.
func (i *Identity) IsAnonymous() bool {
	return i != nil && i.Kind == IdentityAnonymous
}

// RoleOrEmpty returns the user role, or empty for anonymous identities.
func (i *Identity) RoleOrEmpty() UserRole {
	if i.IsUser() {
		return i.User.Role
	}
	return ""
}

// Credentials are the raw credential slots extracted from a request by the
// credential carrier. Either or both may be empty.
type Credentials struct {
	AccessToken    string
	RefreshToken   string
	AnonymousToken string
}

// MergeResult records the outcome of an identity merge. A merge failure is
// logged and never propagated as an authentication failure, so the outcome
// travels as data instead of as an error.
type MergeResult struct {
	Attempted bool
	Merged    bool
	Err       error
}

// AuthResult is the outcome of a successful OTP verification or token
// refresh.
type AuthResult struct {
	User      *User
	Tokens    TokenPair
	Merge     MergeResult
	IsNewUser bool
}

// AuthenticateInput carries the verify-code request payload plus the
// anonymous credential present on the request, if any.
type AuthenticateInput struct {
	Phone          string
	Code           string
	FirstName      string
	LastName       string
	Email          string
	AnonymousToken string
}

// Cart and its lines are owned by either a user or an anonymous session,
// never both at once. The merge engine flips ownership.
type Cart struct {
	ID          uint
	UserID      *uint
	AnonymousID *uint
	Items       []CartItem
	CreatedAt   time.Time
}

// CartItem is a single product line inside a cart.
type CartItem struct {
	ID        uint
	CartID    uint
	ProductID uint
	Quantity  int
}

// Favorite marks a product as favorited by one identity. Unique per
// (user, product).
type Favorite struct {
	ID          uint
	UserID      *uint
	AnonymousID *uint
	ProductID   uint
	CreatedAt   time.Time
}

// ViewHistory is an append-only product view log entry.
type ViewHistory struct {
	ID          uint
	UserID      *uint
	AnonymousID *uint
	ProductID   uint
	ViewedAt    time.Time
}

// SearchHistory is an append-only search log entry.
type SearchHistory struct {
	ID          uint
	UserID      *uint
	AnonymousID *uint
	Query       string
	CreatedAt   time.Time
}

// SupportChat is a support conversation owned by one identity.
type SupportChat struct {
	ID          uint
	UserID      *uint
	AnonymousID *uint
	Subject     string
	CreatedAt   time.Time
}

// UserCounts are the aggregate figures returned on /auth/me for an
// authenticated user.
type UserCounts struct {
	Favorites      int64
	LinkedSessions int64
}

// SessionCounts are the aggregate figures returned on /auth/me for an
// anonymous session.
type SessionCounts struct {
	Carts     int64
	Favorites int64
	Views     int64
}
