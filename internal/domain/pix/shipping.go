package pix

import "github.com/cassiomorais/pixgateway/internal/domain/fields"

// Country is the only jurisdiction the gateway accepts.
const Country = "BR"

// Shipping is the delivery address attached to a charge.
type Shipping struct {
	Neighborhood string `json:"neighborhood"`
	ZipCode      string `json:"zipCode"`
	City         string `json:"city"`
	Complement   string `json:"complement"`
	StreetNumber string `json:"streetNumber"`
	Street       string `json:"street"`
	State        string `json:"state"`
	Country      string `json:"country"`
}

// ResolveShipping reads the address from the client body with fixed defaults
// for every missing field.
func ResolveShipping(body map[string]any) Shipping {
	return Shipping{
		Neighborhood: fields.FirstOr(body, "Centro", "neighborhood"),
		ZipCode:      fields.FirstOr(body, "01001000", "zipCode"),
		City:         fields.FirstOr(body, "Sao Paulo", "city"),
		Complement:   fields.First(body, "complement"),
		StreetNumber: fields.FirstOr(body, "1", "streetNumber"),
		Street:       fields.FirstOr(body, "Rua Exemplo", "street"),
		State:        fields.FirstOr(body, "SP", "state"),
		Country:      Country,
	}
}
