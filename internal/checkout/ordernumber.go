package checkout

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

// GenerateOrderNumber produces a shopper-facing order reference like
// TN-20250601-3F9A2C. The random suffix keeps numbers unguessable; the unique
// index on order_number catches the unlikely collision.
func GenerateOrderNumber(now time.Time) (string, error) {
	suffix := make([]byte, 3)
	if _, err := rand.Read(suffix); err != nil {
		return "", fmt.Errorf("generating order number: %w", err)
	}
	return fmt.Sprintf("TN-%s-%s", now.UTC().Format("20060102"), strings.ToUpper(hex.EncodeToString(suffix))), nil
}
