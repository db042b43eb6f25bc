package cache

import (
	"fmt"

	"github.com/google/uuid"
)

func DeviceRollupKey(accountID uuid.UUID, sortMode string) string {
	return fmt.Sprintf("rollup:%s:%s", accountID, sortMode)
}

func RateLimitKey(clientID string) string {
	return fmt.Sprintf("ratelimit:%s", clientID)
}
