package gateway

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/example/kiosk-orders/internal/domain/payment"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	localSignatureHeader = "Local-Signature"
	localIssuer          = "kiosk-local-gateway"

	audienceClient   = "client"
	audienceTerminal = "terminal"
	audienceWebhook  = "webhook"
)

var ErrSecretTooShort = errors.New("local gateway secret must be at least 32 bytes")

// IntentClaims is carried by a local client secret.
type IntentClaims struct {
	OrderID  string `json:"order_id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	jwt.RegisteredClaims
}

type webhookClaims struct {
	PayloadSHA256 string `json:"payload_sha256"`
	jwt.RegisteredClaims
}

// Local is a self-contained gateway for development and kiosk demos. Client
// secrets, connection tokens and webhook signatures are HS256 JWTs, and
// webhooks use the same JSON shape as Stripe.
type Local struct {
	secretKey     []byte
	currency      string
	tokenExpiry   time.Duration
	webhookMaxAge time.Duration
}

func NewLocal(secret, currency string) (*Local, error) {
	if len(secret) < 32 {
		return nil, ErrSecretTooShort
	}
	return &Local{
		secretKey:     []byte(secret),
		currency:      currency,
		tokenExpiry:   15 * time.Minute,
		webhookMaxAge: 5 * time.Minute,
	}, nil
}

func (l *Local) CreateIntent(ctx context.Context, req payment.IntentRequest) (*payment.Intent, error) {
	id := "pi_local_" + uuid.New().String()
	now := time.Now()

	claims := IntentClaims{
		OrderID:  req.OrderID,
		Amount:   req.Amount,
		Currency: l.currency,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        id,
			Issuer:    localIssuer,
			Audience:  jwt.ClaimStrings{audienceClient},
			Subject:   req.OrderID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(l.tokenExpiry)),
		},
	}

	secret, err := l.sign(claims)
	if err != nil {
		return nil, fmt.Errorf("sign client secret: %w", err)
	}
	return &payment.Intent{ID: id, ClientSecret: secret}, nil
}

// ValidateClientSecret returns the claims of a client secret issued by CreateIntent.
func (l *Local) ValidateClientSecret(secret string) (*IntentClaims, error) {
	claims := &IntentClaims{}
	if err := l.parse(secret, claims, audienceClient); err != nil {
		return nil, err
	}
	return claims, nil
}

func (l *Local) CreateConnectionToken(ctx context.Context) (string, error) {
	now := time.Now()
	return l.sign(jwt.RegisteredClaims{
		ID:        uuid.New().String(),
		Issuer:    localIssuer,
		Audience:  jwt.ClaimStrings{audienceTerminal},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(l.tokenExpiry)),
	})
}

// SignWebhook produces the Local-Signature header value for payload.
func (l *Local) SignWebhook(payload []byte) (string, error) {
	sum := sha256.Sum256(payload)
	now := time.Now()
	return l.sign(webhookClaims{
		PayloadSHA256: hex.EncodeToString(sum[:]),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    localIssuer,
			Audience:  jwt.ClaimStrings{audienceWebhook},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(l.webhookMaxAge)),
		},
	})
}

type localIntent struct {
	ID               string            `json:"id"`
	Metadata         map[string]string `json:"metadata"`
	LastPaymentError *struct {
		Message string `json:"message"`
	} `json:"last_payment_error"`
}

type localEvent struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object localIntent `json:"object"`
	} `json:"data"`
}

func (l *Local) ParseWebhook(payload []byte, signature string) (*payment.WebhookEvent, error) {
	claims := &webhookClaims{}
	if err := l.parse(signature, claims, audienceWebhook); err != nil {
		return nil, fmt.Errorf("%w: %v", payment.ErrInvalidSignature, err)
	}
	sum := sha256.Sum256(payload)
	if claims.PayloadSHA256 != hex.EncodeToString(sum[:]) {
		return nil, fmt.Errorf("%w: payload digest mismatch", payment.ErrInvalidSignature)
	}

	var e localEvent
	if err := json.Unmarshal(payload, &e); err != nil {
		return nil, fmt.Errorf("%w: %v", payment.ErrMalformedWebhook, err)
	}

	out := &payment.WebhookEvent{
		ID:       e.ID,
		Type:     e.Type,
		Kind:     webhookKind(e.Type),
		IntentID: e.Data.Object.ID,
		OrderID:  e.Data.Object.Metadata[metadataOrderID],
	}
	if e.Data.Object.LastPaymentError != nil {
		out.FailureMessage = e.Data.Object.LastPaymentError.Message
	}
	return out, nil
}

func (l *Local) SignatureHeader() string {
	return localSignatureHeader
}

func (l *Local) sign(claims jwt.Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(l.secretKey)
}

func (l *Local) parse(tokenString string, claims jwt.Claims, audience string) error {
	_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return l.secretKey, nil
	},
		jwt.WithIssuer(localIssuer),
		jwt.WithAudience(audience),
		jwt.WithExpirationRequired(),
	)
	return err
}

var (
	_ payment.Gateway = (*Local)(nil)
	_ payment.Gateway = (*Stripe)(nil)
)
