package store

import (
	"go.uber.org/zap"

	"github.com/storekit/datalayer/cache"
	"github.com/storekit/datalayer/datasource"
	"github.com/storekit/datalayer/repository"
	"github.com/storekit/datalayer/repositorycache"
)

// Store bundles the repositories for the shop's entities. Each repository is
// the full decorator stack: cache on the outside, route interception in the
// middle, the bun-backed repository at the core. Callers only ever see the
// [repository.Repository] contract.
type Store struct {
	Products   repository.Repository[*Product]
	Categories repository.Repository[*Category]
	Users      repository.Repository[*User]
	Orders     repository.Repository[*Order]
}

// New assembles the store on top of the router and cache service.
func New(router *datasource.Router, cacheService cache.Cache, log *zap.Logger) (*Store, error) {
	if log == nil {
		log = zap.NewNop()
	}
	keys := cache.NewDefaultKeySerializer()

	products, err := newEntityRepo(router, cacheService, keys, log, ProductHandlers())
	if err != nil {
		return nil, err
	}
	categories, err := newEntityRepo(router, cacheService, keys, log, CategoryHandlers())
	if err != nil {
		return nil, err
	}
	users, err := newEntityRepo(router, cacheService, keys, log, UserHandlers())
	if err != nil {
		return nil, err
	}
	orders, err := newEntityRepo(router, cacheService, keys, log, OrderHandlers())
	if err != nil {
		return nil, err
	}

	return &Store{
		Products:   products,
		Categories: categories,
		Users:      users,
		Orders:     orders,
	}, nil
}

// newEntityRepo builds the Cached(Routing(Bun)) stack for one entity.
func newEntityRepo[T any](
	router *datasource.Router,
	cacheService cache.Cache,
	keys cache.KeySerializer,
	log *zap.Logger,
	handlers repository.ModelHandlers[T],
) (repository.Repository[T], error) {
	base, err := repository.NewBun[T](router, handlers)
	if err != nil {
		return nil, err
	}
	routed := repository.NewRouting[T](base)
	if cacheService == nil {
		return routed, nil
	}
	return repositorycache.New[T](routed, cacheService, keys,
		repositorycache.WithRecordID[T](handlers.GetID),
		repositorycache.WithCachedLogger[T](log),
	), nil
}

// ProductHandlers returns the entity hooks for products.
func ProductHandlers() repository.ModelHandlers[*Product] {
	return repository.ModelHandlers[*Product]{
		NewRecord: func() *Product { return &Product{} },
		GetID:     func(p *Product) string { return p.ID },
		SetID:     func(p *Product, id string) { p.ID = id },
	}
}

// CategoryHandlers returns the entity hooks for categories.
func CategoryHandlers() repository.ModelHandlers[*Category] {
	return repository.ModelHandlers[*Category]{
		NewRecord: func() *Category { return &Category{} },
		GetID:     func(c *Category) string { return c.ID },
		SetID:     func(c *Category, id string) { c.ID = id },
	}
}

// UserHandlers returns the entity hooks for users.
func UserHandlers() repository.ModelHandlers[*User] {
	return repository.ModelHandlers[*User]{
		NewRecord: func() *User { return &User{} },
		GetID:     func(u *User) string { return u.ID },
		SetID:     func(u *User, id string) { u.ID = id },
	}
}

// OrderHandlers returns the entity hooks for orders.
func OrderHandlers() repository.ModelHandlers[*Order] {
	return repository.ModelHandlers[*Order]{
		NewRecord: func() *Order { return &Order{} },
		GetID:     func(o *Order) string { return o.ID },
		SetID:     func(o *Order, id string) { o.ID = id },
	}
}
