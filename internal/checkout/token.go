package checkout

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"fastkart/internal/models"
)

// TokenCodec encodes and decodes the signed "checkout" cookie. The value is
// base64url(payload JSON) + "." + base64url(HMAC-SHA256(payload)). Decode
// failures of any kind collapse into ErrInvalidCheckoutToken.
type TokenCodec struct {
	secret   []byte
	validate *validator.Validate
}

func NewTokenCodec(secret string) *TokenCodec {
	return &TokenCodec{
		secret:   []byte(secret),
		validate: validator.New(),
	}
}

func (c *TokenCodec) Encode(intent models.CheckoutIntent) (string, error) {
	if intent.Version == 0 {
		intent.Version = 1
	}
	if err := c.validate.Struct(intent); err != nil {
		return "", fmt.Errorf("encode checkout token: %w", err)
	}

	payload, err := json.Marshal(intent)
	if err != nil {
		return "", fmt.Errorf("encode checkout token: %w", err)
	}

	encoded := base64.RawURLEncoding.EncodeToString(payload)
	return encoded + "." + c.sign(encoded), nil
}

func (c *TokenCodec) Decode(raw string) (*models.CheckoutIntent, error) {
	encoded, sig, ok := strings.Cut(strings.TrimSpace(raw), ".")
	if !ok {
		return nil, fmt.Errorf("%w: missing signature", ErrInvalidCheckoutToken)
	}

	if !hmac.Equal([]byte(c.sign(encoded)), []byte(sig)) {
		return nil, fmt.Errorf("%w: signature mismatch", ErrInvalidCheckoutToken)
	}

	payload, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCheckoutToken, err)
	}

	var intent models.CheckoutIntent
	if err := json.Unmarshal(payload, &intent); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCheckoutToken, err)
	}

	if err := c.validate.Struct(intent); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCheckoutToken, err)
	}

	return &intent, nil
}

func (c *TokenCodec) sign(encoded string) string {
	mac := hmac.New(sha256.New, c.secret)
	mac.Write([]byte(encoded))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
