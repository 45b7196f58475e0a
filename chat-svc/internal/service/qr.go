package service

import (
	"fmt"

	qrcode "github.com/skip2/go-qrcode"
)

// PickupQRGenerator encodes the order's public status URL as a PNG so the
// counter screen can be scanned on pickup.
type PickupQRGenerator struct {
	BaseURL string
}

var _ QRGenerator = (*PickupQRGenerator)(nil)

func (g *PickupQRGenerator) Generate(orderID string) ([]byte, error) {
	payload := fmt.Sprintf("%s/orders/%s", g.BaseURL, orderID)
	return qrcode.Encode(payload, qrcode.Medium, 256)
}
