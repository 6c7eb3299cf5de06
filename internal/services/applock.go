package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"sanctuary/internal/storage"
)

const (
	pinLength    = 4
	tokenSubject = "app"
)

var (
	ErrInvalidPIN   = errors.New("PIN must be exactly 4 digits")
	ErrPINMismatch  = errors.New("PINs do not match")
	ErrPINExists    = errors.New("a PIN is already set")
	ErrNoPIN        = errors.New("no PIN is set")
	ErrWrongPIN     = errors.New("incorrect PIN")
	ErrInvalidToken = errors.New("invalid unlock token")
)

// AppLock gates the app behind a 4-digit PIN. The PIN is kept as a bcrypt
// hash under the app_pin key; a successful unlock yields a signed token.
type AppLock struct {
	store  storage.KeyValueStore
	secret []byte
	ttl    time.Duration
	logger *zap.Logger
	now    func() time.Time
}

func NewAppLock(store storage.KeyValueStore, secret []byte, ttl time.Duration, logger *zap.Logger) *AppLock {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AppLock{store: store, secret: secret, ttl: ttl, logger: logger, now: time.Now}
}

func validPIN(pin string) bool {
	if len(pin) != pinLength {
		return false
	}
	for _, r := range pin {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func (l *AppLock) HasPIN(ctx context.Context) (bool, error) {
	hash, found, err := l.store.Get(ctx, storage.KeyAppPIN)
	if err != nil {
		return false, fmt.Errorf("services.AppLock.HasPIN: %w", err)
	}
	return found && hash != "", nil
}

// SetPIN stores a new PIN. It refuses to overwrite an existing one.
func (l *AppLock) SetPIN(ctx context.Context, pin, confirm string) error {
	const op = "services.AppLock.SetPIN"

	if !validPIN(pin) {
		return ErrInvalidPIN
	}
	if pin != confirm {
		return ErrPINMismatch
	}
	exists, err := l.HasPIN(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if exists {
		return ErrPINExists
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("%s: hash: %w", op, err)
	}
	if err := l.store.Set(ctx, storage.KeyAppPIN, string(hashed)); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	l.logger.Info("app PIN set")
	return nil
}

// Unlock checks pin and returns a token valid for the configured TTL.
// A store failure keeps the app locked.
func (l *AppLock) Unlock(ctx context.Context, pin string) (string, error) {
	const op = "services.AppLock.Unlock"

	hash, found, err := l.store.Get(ctx, storage.KeyAppPIN)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if !found || hash == "" {
		return "", ErrNoPIN
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(pin)) != nil {
		l.logger.Info("unlock rejected")
		return "", ErrWrongPIN
	}

	now := l.now()
	claims := jwt.MapClaims{
		"sub": tokenSubject,
		"exp": now.Add(l.ttl).Unix(),
		"iat": now.Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(l.secret)
	if err != nil {
		return "", fmt.Errorf("%s: sign: %w", op, err)
	}
	return token, nil
}

// VerifyToken accepts only unexpired HS256 tokens issued by Unlock.
func (l *AppLock) VerifyToken(tokenStr string) error {
	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return l.secret, nil
	}, jwt.WithTimeFunc(l.now), jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return ErrInvalidToken
	}
	if sub, _ := claims["sub"].(string); sub != tokenSubject {
		return ErrInvalidToken
	}
	return nil
}

// ResetPIN forgets the PIN. Tokens already issued stay valid until they expire.
func (l *AppLock) ResetPIN(ctx context.Context) error {
	if err := l.store.Remove(ctx, storage.KeyAppPIN); err != nil {
		return fmt.Errorf("services.AppLock.ResetPIN: %w", err)
	}
	return nil
}
