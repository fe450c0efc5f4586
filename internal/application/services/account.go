package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"cloudy/internal/application/ports"
	"cloudy/internal/domain/apperr"
	"cloudy/internal/domain/user"
	"cloudy/internal/infrastructure/jwt"
)

const (
	otpTTL     = 10 * time.Minute
	otpDigits  = 6
	sessionTTL = 24 * time.Hour

	// maxOTPAttempts wrong guesses burn the pending secret.
	maxOTPAttempts = 5

	defaultAvatar = "https://img.freepik.com/free-psd/3d-illustration-person-with-sunglasses_23-2149436188.jpg"
)

type pendingSecret struct {
	hash      []byte
	expiresAt time.Time
	attempts  int
}

type AccountService struct {
	logger         *zap.Logger
	userRepository user.Repository
	sender         ports.OTPSender
	jwtService     *jwt.Service

	mu      sync.Mutex
	pending map[string]*pendingSecret
	now     func() time.Time
}

func NewAccountService(
	logger *zap.Logger,
	userRepository user.Repository,
	sender ports.OTPSender,
	jwtService *jwt.Service,
) ports.AccountService {
	return &AccountService{
		logger:         logger,
		userRepository: userRepository,
		sender:         sender,
		jwtService:     jwtService,
		pending:        make(map[string]*pendingSecret),
		now:            time.Now,
	}
}

// CreateAccount sends a one-time secret to email and creates the user record
// when it does not exist yet. Returns the account id to verify against.
func (as *AccountService) CreateAccount(ctx context.Context, fullName, email string) (string, error) {
	email = normalizeEmail(email)

	u, err := as.userRepository.FetchUserByEmail(ctx, email)
	switch {
	case err == nil:
		return as.issueSecret(ctx, u)
	case !errors.Is(err, apperr.ErrNotFound):
		return "", err
	}

	u, err = as.userRepository.CreateUser(ctx, user.User{
		AccountID: uuid.NewString(),
		Email:     email,
		FullName:  fullName,
		Avatar:    defaultAvatar,
	})
	if err != nil {
		return "", err
	}

	return as.issueSecret(ctx, u)
}

func (as *AccountService) SignIn(ctx context.Context, email string) (string, error) {
	u, err := as.userRepository.FetchUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return "", err
	}
	return as.issueSecret(ctx, u)
}

// VerifySecret consumes the pending secret for accountID and returns a
// session token. A secret can be used once.
func (as *AccountService) VerifySecret(ctx context.Context, accountID, secret string) (string, error) {
	if err := as.consumeSecret(accountID, secret); err != nil {
		return "", err
	}

	u, err := as.userRepository.FetchUserByAccountID(ctx, accountID)
	if err != nil {
		return "", err
	}

	token, err := as.jwtService.GenerateJWT(u.ID.String(), u.AccountID, sessionTTL)
	if err != nil {
		return "", fmt.Errorf("generate session token: %w", err)
	}

	return token, nil
}

// consumeSecret checks secret against the pending one for accountID. The
// check and the removal happen under one lock so a secret verifies at most
// once, and maxOTPAttempts failures drop it.
func (as *AccountService) consumeSecret(accountID, secret string) error {
	as.mu.Lock()
	defer as.mu.Unlock()

	p, ok := as.pending[accountID]
	if !ok {
		return fmt.Errorf("%w: no pending secret", apperr.ErrUnauthorized)
	}
	if !as.now().Before(p.expiresAt) {
		delete(as.pending, accountID)
		return fmt.Errorf("%w: no pending secret", apperr.ErrUnauthorized)
	}

	if err := bcrypt.CompareHashAndPassword(p.hash, []byte(secret)); err != nil {
		p.attempts++
		if p.attempts >= maxOTPAttempts {
			delete(as.pending, accountID)
			as.logger.Warn("otp attempts exhausted", zap.String("account_id", accountID))
		}
		return fmt.Errorf("%w: invalid secret", apperr.ErrUnauthorized)
	}

	delete(as.pending, accountID)
	return nil
}

func (as *AccountService) FindUserByID(ctx context.Context, id user.ID) (*user.User, error) {
	return as.userRepository.FetchUserByID(ctx, id)
}

func (as *AccountService) issueSecret(ctx context.Context, u *user.User) (string, error) {
	code, err := genSecret()
	if err != nil {
		return "", err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash secret: %w", err)
	}

	as.mu.Lock()
	as.pending[u.AccountID] = &pendingSecret{hash: hash, expiresAt: as.now().Add(otpTTL)}
	as.mu.Unlock()

	if err = as.sender.SendOTP(ctx, u.Email, code); err != nil {
		as.logger.Error("failed to send otp", zap.String("account_id", u.AccountID), zap.Error(err))
		return "", err
	}

	return u.AccountID, nil
}

func genSecret() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", fmt.Errorf("generate secret: %w", err)
	}
	return fmt.Sprintf("%0*d", otpDigits, n.Int64()), nil
}
