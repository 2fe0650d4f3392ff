package pix

import (
	"math/rand/v2"
	"strings"

	"github.com/cassiomorais/pixgateway/internal/domain/fields"
)

const (
	documentLength = 11
	suffixLength   = 6
	phoneAreaCode  = "11"
)

// DigitSource yields pseudo-random integers in [0, n). *rand.Rand satisfies it.
type DigitSource interface {
	IntN(n int) int
}

type globalSource struct{}

func (globalSource) IntN(n int) int { return rand.IntN(n) }

// DefaultDigits draws from the math/rand/v2 global generator. Placeholder data
// only, nothing here needs to be unpredictable.
var DefaultDigits DigitSource = globalSource{}

// RandomDigits returns n uniformly drawn decimal digits.
func RandomDigits(src DigitSource, n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte('0' + src.IntN(10))
	}
	return string(b)
}

// Placeholders synthesizes stand-in customer data for one request. Every
// value derived from the suffix shares it so the generated records can be
// matched up later.
type Placeholders struct {
	Suffix string
	digits DigitSource
}

// NewPlaceholders draws the per-request suffix from src.
func NewPlaceholders(src DigitSource) *Placeholders {
	if src == nil {
		src = DefaultDigits
	}
	return &Placeholders{Suffix: RandomDigits(src, suffixLength), digits: src}
}

func (p *Placeholders) Name() string     { return "Cliente " + p.Suffix }
func (p *Placeholders) Email() string    { return "cliente" + p.Suffix + "@example.com" }
func (p *Placeholders) Tracking() string { return "pedido-" + p.Suffix }

// Phone is the fixed area code followed by nine random digits.
func (p *Placeholders) Phone() string {
	return phoneAreaCode + RandomDigits(p.digits, 9)
}

// Document is eleven random digits.
func (p *Placeholders) Document() string {
	return RandomDigits(p.digits, documentLength)
}

// Customer is the payer identity sent to the gateway.
type Customer struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Document string `json:"document"`
}

// ResolveCustomer reads the customer from the client body, filling any field
// the client left out with a placeholder.
func ResolveCustomer(body map[string]any, p *Placeholders) Customer {
	c := Customer{
		Name:  fields.First(body, "nome", "name", "customer_name"),
		Email: fields.First(body, "email", "customer_email"),
	}
	if c.Name == "" {
		c.Name = p.Name()
	}
	if c.Email == "" {
		c.Email = p.Email()
	}

	phone := fields.First(body, "phone", "customer_phone")
	if phone == "" {
		phone = p.Phone()
	}
	c.Phone = fields.DigitsOnly(phone)

	doc := fields.First(body, "cpf", "document", "customer_cpf")
	if doc == "" {
		doc = p.Document()
	}
	c.Document = NormalizeDocument(doc)
	return c
}

// ResolveTracking returns the client tracking label or a placeholder one.
func ResolveTracking(body map[string]any, p *Placeholders) string {
	if t := fields.First(body, "tracking", "rastreio", "codigo"); t != "" {
		return t
	}
	return p.Tracking()
}

// NormalizeDocument keeps digits only and forces exactly eleven of them,
// padding with zeros on the right or truncating.
func NormalizeDocument(s string) string {
	d := fields.DigitsOnly(s)
	if len(d) < documentLength {
		return d + strings.Repeat("0", documentLength-len(d))
	}
	return d[:documentLength]
}
