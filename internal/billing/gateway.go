package billing

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// ErrPaymentDeclined is returned when tokenization or the charge fails.
var ErrPaymentDeclined = errors.New("payment failed")

// Card is the raw card input. Only the number is validated.
type Card struct {
	Number string
	Expiry string
	CVC    string
}

// Digits returns the card number without spaces or dashes.
func (c Card) Digits() string {
	return strings.Map(func(r rune) rune {
		if r == ' ' || r == '-' {
			return -1
		}
		return r
	}, c.Number)
}

// Last4 returns the last four digits for display.
func (c Card) Last4() string {
	d := c.Digits()
	if len(d) < 4 {
		return d
	}
	return d[len(d)-4:]
}

// Gateway is a two-step card processor: tokenize, then charge.
type Gateway interface {
	Tokenize(ctx context.Context, card Card) (string, error)
	Charge(ctx context.Context, token string, amount float64) error
}

// Sandbox card numbers understood by StubGateway.
const (
	SandboxCard = "4111111111111111"
	DeclineCard = "4000000000000002"
)

// StubGateway is an in-process sandbox. It tokenizes any Luhn-valid number
// and declines DeclineCard at charge time.
type StubGateway struct {
	mu      sync.Mutex
	tokens  map[string]string
	Charges []float64
}

func NewStubGateway() *StubGateway {
	return &StubGateway{tokens: make(map[string]string)}
}

func (g *StubGateway) Tokenize(ctx context.Context, card Card) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	d := card.Digits()
	if len(d) < 12 || len(d) > 19 || !Luhn(d) {
		return "", fmt.Errorf("%w: invalid card number", ErrPaymentDeclined)
	}
	tok := "tok_" + uuid.NewString()
	g.mu.Lock()
	g.tokens[tok] = d
	g.mu.Unlock()
	return tok, nil
}

func (g *StubGateway) Charge(ctx context.Context, token string, amount float64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	d, ok := g.tokens[token]
	if !ok {
		return fmt.Errorf("%w: unknown token", ErrPaymentDeclined)
	}
	delete(g.tokens, token)
	if d == DeclineCard {
		return fmt.Errorf("%w: card declined", ErrPaymentDeclined)
	}
	g.Charges = append(g.Charges, amount)
	return nil
}

// Luhn reports whether digits passes the mod-10 checksum.
func Luhn(digits string) bool {
	if digits == "" {
		return false
	}
	sum := 0
	double := false
	for i := len(digits) - 1; i >= 0; i-- {
		c := digits[i]
		if c < '0' || c > '9' {
			return false
		}
		n := int(c - '0')
		if double {
			n *= 2
			if n > 9 {
				n -= 9
			}
		}
		sum += n
		double = !double
	}
	return sum%10 == 0
}
