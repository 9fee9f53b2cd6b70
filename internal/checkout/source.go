package checkout

import "fastkart/internal/models"

// SourceKind discriminates where a checkout originates from.
type SourceKind int

const (
	// SourceDirect is a transient "buy now" intent carried in the checkout
	// cookie. It takes precedence over the cart and never touches it.
	SourceDirect SourceKind = iota
	// SourceCart draws the order from the user's persistent cart. The cart
	// is cleared after the order is placed.
	SourceCart
)

// Source is the resolved checkout origin. Intent is set iff Kind is
// SourceDirect.
type Source struct {
	Kind   SourceKind
	Intent *models.CheckoutIntent
}

// ResolveSource decides between direct checkout and cart checkout. A present
// token wins; a malformed one is rejected outright rather than falling back
// to the cart.
func ResolveSource(codec *TokenCodec, rawToken string) (Source, error) {
	if rawToken == "" {
		return Source{Kind: SourceCart}, nil
	}

	intent, err := codec.Decode(rawToken)
	if err != nil {
		return Source{}, err
	}

	return Source{Kind: SourceDirect, Intent: intent}, nil
}
