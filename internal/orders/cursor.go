package orders

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/noorvia/noorvia-backend/pkg/db/models"
	"github.com/noorvia/noorvia-backend/pkg/enums"
)

// Page sizes for the admin order listing.
const (
	DefaultPageSize = 25
	MaxPageSize     = 100
)

// ListParams selects one page of the admin order listing. An empty Status
// lists every order.
type ListParams struct {
	Limit  int
	Cursor string
	Status enums.OrderStatus
}

func (p ListParams) pageSize() int {
	switch {
	case p.Limit <= 0:
		return DefaultPageSize
	case p.Limit > MaxPageSize:
		return MaxPageSize
	}
	return p.Limit
}

// pageCursor marks the last order of a page. It carries the status filter it
// was issued for so it cannot be replayed against a different listing.
type pageCursor struct {
	PlacedAt time.Time         `json:"at"`
	OrderID  uuid.UUID         `json:"id"`
	Status   enums.OrderStatus `json:"st,omitempty"`
}

func cursorAfter(order models.Order, status enums.OrderStatus) string {
	raw, _ := json.Marshal(pageCursor{PlacedAt: order.CreatedAt.UTC(), OrderID: order.ID, Status: status})
	return base64.RawURLEncoding.EncodeToString(raw)
}

func parseCursor(value string, status enums.OrderStatus) (*pageCursor, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	raw, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCursor, err)
	}
	var c pageCursor
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCursor, err)
	}
	if c.OrderID == uuid.Nil || c.PlacedAt.IsZero() {
		return nil, fmt.Errorf("%w: incomplete cursor", ErrInvalidCursor)
	}
	if c.Status != status {
		return nil, fmt.Errorf("%w: cursor was issued for status %q", ErrInvalidCursor, c.Status)
	}
	return &c, nil
}
