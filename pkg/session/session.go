// Package session gates access to the document behind the password prompt
// when encryption is enabled, and hands the browser a short-lived token
// after a successful unlock.
package session

import (
	"errors"
	"os"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

var jwtSecret = []byte(os.Getenv("JWT_SECRET"))
var jwtAlgorithm = jwt.SigningMethodHS256

// ErrBusy is returned when an unlock or import attempt overlaps another.
var ErrBusy = errors.New("another unlock or import is in progress")

// Claims represents the JWT claims of an unlocked session
type Claims struct {
	Unlocked bool `json:"unlocked"`
	jwt.RegisteredClaims
}

// CreateToken creates a new session token after a successful unlock
func CreateToken() (string, error) {
	expirationTime := time.Now().Add(12 * time.Hour)
	claims := &Claims{
		Unlocked: true,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expirationTime),
		},
	}

	token := jwt.NewWithClaims(jwtAlgorithm, claims)
	return token.SignedString(jwtSecret)
}

// VerifyToken verifies a session token
func VerifyToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return jwtSecret, nil
	})

	if err != nil {
		return nil, err
	}

	if !token.Valid || !claims.Unlocked {
		return nil, errors.New("invalid token")
	}

	return claims, nil
}

// Controller serializes lock, unlock and import attempts with a simple
// busy flag. There is no mid-operation abort path: an attempt either
// completes or fails before the flag is released.
type Controller struct {
	mu   sync.Mutex
	busy bool
}

// Begin claims the busy flag. Callers must pair it with End.
func (c *Controller) Begin() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.busy {
		return ErrBusy
	}
	c.busy = true
	return nil
}

// End releases the busy flag.
func (c *Controller) End() {
	c.mu.Lock()
	c.busy = false
	c.mu.Unlock()
}
