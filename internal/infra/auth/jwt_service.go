package auth

import (
	"time"

	"authcore/config"
	"authcore/internal/domain/entity"
	"authcore/internal/domain/service"
	"authcore/internal/errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Sub-second claims keep a token valid for its full TTL instead of expiring at the
// previous whole second.
func init() {
	jwt.TimePrecision = time.Millisecond
}

// jwtService is a concrete implementation of the TokenService interface using HS256 JWTs.
type jwtService struct {
	accessSecret  []byte        // Secret key for signing access tokens.
	refreshSecret []byte        // Secret key for signing refresh tokens.
	accessTTL     time.Duration // Time-to-live for access tokens.
	refreshTTL    time.Duration // Time-to-live for refresh tokens.
	issuer        string
	now           func() time.Time
}

// NewJWTService is the constructor for jwtService.
func NewJWTService(cfg *config.Config) (service.TokenService, error) {
	svc, err := newJWTService(cfg, time.Now)
	if err != nil {
		return nil, err
	}

	return svc, nil
}

func newJWTService(cfg *config.Config, now func() time.Time) (*jwtService, error) {
	if cfg.SecretKey.Access == "" || cfg.SecretKey.Refresh == "" {
		return nil, errors.New("jwt secrets must be provided")
	}

	svc := &jwtService{
		accessSecret:  []byte(cfg.SecretKey.Access),
		refreshSecret: []byte(cfg.SecretKey.Refresh),
		accessTTL:     15 * time.Minute,
		refreshTTL:    7 * 24 * time.Hour,
		now:           now,
	}
	if cfg.Auth != nil {
		if cfg.Auth.AccessTokenTTL > 0 {
			svc.accessTTL = cfg.Auth.AccessTokenTTL
		}
		if cfg.Auth.RefreshTokenTTL > 0 {
			svc.refreshTTL = cfg.Auth.RefreshTokenTTL
		}
		svc.issuer = cfg.Auth.Issuer
	}

	return svc, nil
}

// IssueAccessToken creates a short-lived token carrying the user's role.
func (s *jwtService) IssueAccessToken(user *entity.User) (string, time.Time, error) {
	return s.issue(user.ID, user.Role, service.TokenKindAccess, s.accessTTL, s.accessSecret)
}

// IssueRefreshToken creates a long-lived token. It carries no role since
// the role is re-read from the store on every refresh.
func (s *jwtService) IssueRefreshToken(user *entity.User) (string, time.Time, error) {
	return s.issue(user.ID, "", service.TokenKindRefresh, s.refreshTTL, s.refreshSecret)
}

// Verify checks signature, expiry and kind against the secret of the expected kind.
func (s *jwtService) Verify(tokenString string, kind service.TokenKind) (*service.Claims, error) {
	secret, err := s.secretFor(kind)
	if err != nil {
		return nil, err
	}

	claims := &service.Claims{}
	_, err = jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		return secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, errors.WithStack(service.ErrTokenExpired)
		}

		return nil, errors.Wrap(service.ErrTokenInvalid, err.Error())
	}

	if claims.Kind != kind {
		return nil, errors.WithStack(service.ErrTokenWrongKind)
	}
	if claims.UserID == uuid.Nil {
		return nil, errors.Wrap(service.ErrTokenInvalid, "missing subject")
	}

	return claims, nil
}

func (s *jwtService) secretFor(kind service.TokenKind) ([]byte, error) {
	switch kind {
	case service.TokenKindAccess:
		return s.accessSecret, nil
	case service.TokenKindRefresh:
		return s.refreshSecret, nil
	default:
		return nil, errors.Wrapf(service.ErrTokenWrongKind, "unknown token kind %q", kind)
	}
}

func (s *jwtService) issue(userID uuid.UUID, role entity.Role, kind service.TokenKind, ttl time.Duration, secret []byte) (string, time.Time, error) {
	issuedAt := s.now().Truncate(jwt.TimePrecision)
	expiresAt := issuedAt.Add(ttl)

	claims := &service.Claims{
		UserID: userID,
		Role:   role,
		Kind:   kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			// Two tokens issued for the same user within a second must still differ.
			ID: uuid.NewString(),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", time.Time{}, errors.Wrapf(err, "failed to sign %s token", kind)
	}

	return signed, expiresAt, nil
}
