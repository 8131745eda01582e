// Package store holds the shop's entities and wires their repositories
// through the full decorator stack.
package store

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/uptrace/bun"
)

// Category groups products for browsing.
type Category struct {
	bun.BaseModel `bun:"table:categories,alias:c"`

	ID        string    `bun:"id,pk" json:"id" msgpack:"id"`
	Name      string    `bun:"name,notnull" json:"name" msgpack:"name"`
	Slug      string    `bun:"slug,notnull,unique" json:"slug" msgpack:"slug"`
	CreatedAt time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at" msgpack:"created_at"`
}

func (c *Category) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Name, validation.Required, validation.Length(1, 120)),
		validation.Field(&c.Slug, validation.Required, validation.Length(1, 120)),
	)
}

// Product is a sellable item. PriceCents avoids floating point money.
type Product struct {
	bun.BaseModel `bun:"table:products,alias:p"`

	ID         string    `bun:"id,pk" json:"id" msgpack:"id"`
	CategoryID string    `bun:"category_id,notnull" json:"category_id" msgpack:"category_id"`
	Name       string    `bun:"name,notnull" json:"name" msgpack:"name"`
	SKU        string    `bun:"sku,notnull,unique" json:"sku" msgpack:"sku"`
	PriceCents int64     `bun:"price_cents,notnull" json:"price_cents" msgpack:"price_cents"`
	Stock      int       `bun:"stock,notnull,default:0" json:"stock" msgpack:"stock"`
	CreatedAt  time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at" msgpack:"created_at"`
	UpdatedAt  time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at" msgpack:"updated_at"`
}

func (p *Product) Validate() error {
	return validation.ValidateStruct(p,
		validation.Field(&p.CategoryID, validation.Required),
		validation.Field(&p.Name, validation.Required, validation.Length(1, 200)),
		validation.Field(&p.SKU, validation.Required),
		validation.Field(&p.PriceCents, validation.Min(0)),
		validation.Field(&p.Stock, validation.Min(0)),
	)
}

// User is a customer account.
type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID        string    `bun:"id,pk" json:"id" msgpack:"id"`
	Email     string    `bun:"email,notnull,unique" json:"email" msgpack:"email"`
	Name      string    `bun:"name,notnull" json:"name" msgpack:"name"`
	CreatedAt time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at" msgpack:"created_at"`
}

func (u *User) Validate() error {
	return validation.ValidateStruct(u,
		validation.Field(&u.Email, validation.Required, is.Email),
		validation.Field(&u.Name, validation.Required, validation.Length(1, 120)),
	)
}

// OrderStatus is the order lifecycle state.
type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderPaid      OrderStatus = "paid"
	OrderShipped   OrderStatus = "shipped"
	OrderCancelled OrderStatus = "cancelled"
)

// Order records a purchase.
type Order struct {
	bun.BaseModel `bun:"table:orders,alias:o"`

	ID         string      `bun:"id,pk" json:"id" msgpack:"id"`
	UserID     string      `bun:"user_id,notnull" json:"user_id" msgpack:"user_id"`
	Status     OrderStatus `bun:"status,notnull,default:'pending'" json:"status" msgpack:"status"`
	TotalCents int64       `bun:"total_cents,notnull" json:"total_cents" msgpack:"total_cents"`
	CreatedAt  time.Time   `bun:"created_at,nullzero,default:current_timestamp" json:"created_at" msgpack:"created_at"`
	UpdatedAt  time.Time   `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at" msgpack:"updated_at"`
}

func (o *Order) Validate() error {
	return validation.ValidateStruct(o,
		validation.Field(&o.UserID, validation.Required),
		validation.Field(&o.Status, validation.Required, validation.In(
			OrderPending, OrderPaid, OrderShipped, OrderCancelled)),
		validation.Field(&o.TotalCents, validation.Min(int64(0))),
	)
}
