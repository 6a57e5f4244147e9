package userservice

import (
	"database/sql"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/sushihentaime/bloghub/internal/common"
)

const (
	DefaultTokenTTL time.Duration = 7 * 24 * time.Hour
	DefaultIssuer                 = "bloghub"
)

var (
	AnonymousUser = User{}
)

type UserService struct {
	m      *UserModel
	tokens *TokenManager
	mb     common.MessageProducer
	c      *common.Cache
	logger *slog.Logger
}

type UserModel struct {
	db *sql.DB
}

type User struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Password  Password  `json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Password struct {
	Plain string `json:"-"`
	hash  []byte `json:"-"`
}

// Owner is the public summary of a user embedded in blog responses.
type Owner struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email,omitempty"`
}

// TokenManager signs and verifies HS256 access tokens whose subject is the user id.
type TokenManager struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

type Claims struct {
	jwt.RegisteredClaims
}

// Token is the signed access token handed to the client.
type Token struct {
	Plain  string    `json:"token"`
	ID     string    `json:"-"`
	Expiry time.Time `json:"expiry"`
}
