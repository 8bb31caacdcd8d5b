package model

import "time"

// Product corresponds to a row in the `products` table.  Code is the
// user-supplied business key and is unique; Price is always positive.
type Product struct {
    ID          uint64    `json:"id"`
    Code        string    `json:"code"`
    Name        string    `json:"name"`
    Price       float64   `json:"price"`
    Description *string   `json:"description"`
    CreatedBy   uint64    `json:"created_by"`
    CreatedAt   time.Time `json:"created_at"`
}
