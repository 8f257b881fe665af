package application

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"

	"github.com/Apurer/storefront-api/internal/domains/orders/ports"
)

type normalizedCheckout struct {
	Items    []normalizedItem  `json:"items"`
	Address  normalizedAddress `json:"address"`
	Method   string            `json:"method"`
	Notes    string            `json:"notes"`
	Expected string            `json:"expected,omitempty"`
}

type normalizedItem struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
	Size      string `json:"size"`
	Color     string `json:"color"`
}

type normalizedAddress struct {
	FullName   string `json:"fullName"`
	Phone      string `json:"phone"`
	Street     string `json:"street"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
}

// FingerprintCheckout builds a deterministic hash of the checkout payload,
// excluding the idempotency key and the caller.
func FingerprintCheckout(input ports.CreateOrderInput) (string, error) {
	payload, err := json.Marshal(normalizeCheckout(input))
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:]), nil
}

func normalizeCheckout(input ports.CreateOrderInput) normalizedCheckout {
	items := make([]normalizedItem, 0, len(input.Items))
	for _, item := range input.Items {
		items = append(items, normalizedItem{
			ProductID: strings.TrimSpace(item.ProductID),
			Quantity:  item.Quantity,
			Size:      strings.TrimSpace(item.Size),
			Color:     strings.TrimSpace(item.Color),
		})
	}
	addr := input.ShippingAddress
	normalized := normalizedCheckout{
		Items: items,
		Address: normalizedAddress{
			FullName:   strings.TrimSpace(addr.FullName),
			Phone:      strings.TrimSpace(addr.Phone),
			Street:     strings.TrimSpace(addr.Street),
			City:       strings.TrimSpace(addr.City),
			State:      strings.TrimSpace(addr.State),
			PostalCode: strings.TrimSpace(addr.PostalCode),
			Country:    strings.TrimSpace(addr.Country),
		},
		Method: string(input.PaymentMethod),
		Notes:  strings.TrimSpace(input.Notes),
	}
	if input.ClientTotals != nil {
		normalized.Expected = input.ClientTotals.Total.StringFixed(2)
	}
	return normalized
}
