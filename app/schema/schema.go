// Package schema exposes the storefront over GraphQL. Resolvers run with
// the request context, so they act on the caller's visitor space.
package schema

import (
	gql "github.com/graphql-go/graphql"

	"github.com/shashiranjanraj/bloomthread/app/models"
	"github.com/shashiranjanraj/bloomthread/app/services"
	"github.com/shashiranjanraj/bloomthread/pkg/graphql"
)

var productType = gql.NewObject(gql.ObjectConfig{
	Name: "Product",
	Fields: gql.Fields{
		"id":    &gql.Field{Type: gql.NewNonNull(gql.ID)},
		"title": &gql.Field{Type: gql.NewNonNull(gql.String)},
		"price": &gql.Field{Type: gql.NewNonNull(gql.Int)},
		"tags":  &gql.Field{Type: gql.NewList(gql.String)},
		"img":   &gql.Field{Type: gql.String},
	},
})

var lineType = gql.NewObject(gql.ObjectConfig{
	Name: "CartLine",
	Fields: gql.Fields{
		"id":       &gql.Field{Type: gql.NewNonNull(gql.ID)},
		"title":    &gql.Field{Type: gql.String},
		"price":    &gql.Field{Type: gql.Int},
		"img":      &gql.Field{Type: gql.String},
		"qty":      &gql.Field{Type: gql.Int},
		"subtotal": &gql.Field{Type: gql.Int},
	},
})

var cartType = gql.NewObject(gql.ObjectConfig{
	Name: "Cart",
	Fields: gql.Fields{
		"lines": &gql.Field{Type: gql.NewList(lineType)},
		"total": &gql.Field{Type: gql.Int},
		"count": &gql.Field{Type: gql.Int},
	},
})

var orderType = gql.NewObject(gql.ObjectConfig{
	Name: "Order",
	Fields: gql.Fields{
		"id":      &gql.Field{Type: gql.NewNonNull(gql.ID)},
		"created": &gql.Field{Type: gql.String},
		"name":    &gql.Field{Type: gql.String},
		"email":   &gql.Field{Type: gql.String},
		"method":  &gql.Field{Type: gql.String},
		"status":  &gql.Field{Type: gql.String},
		"amount":  &gql.Field{Type: gql.Int},
		"items":   &gql.Field{Type: gql.NewList(lineType)},
	},
})

// New builds the schema over svc.
func New(svc *services.Services) (gql.Schema, error) {
	query := gql.NewObject(gql.ObjectConfig{
		Name: "Query",
		Fields: gql.Fields{
			"products": &gql.Field{
				Type: gql.NewList(productType),
				Args: gql.FieldConfigArgument{
					"tag":  &gql.ArgumentConfig{Type: gql.String},
					"q":    &gql.ArgumentConfig{Type: gql.String},
					"sort": &gql.ArgumentConfig{Type: gql.String, DefaultValue: services.SortPopular},
				},
				Resolve: func(p gql.ResolveParams) (any, error) {
					tag, _ := p.Args["tag"].(string)
					q, _ := p.Args["q"].(string)
					sort, _ := p.Args["sort"].(string)
					products, err := svc.Catalog.List(p.Context, services.Filter{Tag: tag, Query: q, Sort: sort})
					if err != nil {
						return nil, err
					}
					return svc.Catalog.WithImages(p.Context, products), nil
				},
			},
			"product": &gql.Field{
				Type: productType,
				Args: gql.FieldConfigArgument{
					"id": &gql.ArgumentConfig{Type: gql.NewNonNull(gql.ID)},
				},
				Resolve: func(p gql.ResolveParams) (any, error) {
					id, _ := p.Args["id"].(string)
					product, err := svc.Catalog.Find(p.Context, id)
					if err != nil {
						return nil, err
					}
					return svc.Catalog.WithImages(p.Context, []models.Product{product})[0], nil
				},
			},
			"tags": &gql.Field{
				Type: gql.NewList(gql.String),
				Resolve: func(p gql.ResolveParams) (any, error) {
					return svc.Catalog.Tags(p.Context)
				},
			},
			"cart": &gql.Field{
				Type: cartType,
				Resolve: func(p gql.ResolveParams) (any, error) {
					return svc.Cart.View(p.Context)
				},
			},
			"theme": &gql.Field{
				Type: gql.String,
				Resolve: func(p gql.ResolveParams) (any, error) {
					return svc.Theme.Current(p.Context)
				},
			},
			"orders": &gql.Field{
				Type: gql.NewList(orderType),
				Resolve: func(p gql.ResolveParams) (any, error) {
					return svc.Checkout.Orders(p.Context)
				},
			},
		},
	})

	mutation := gql.NewObject(gql.ObjectConfig{
		Name: "Mutation",
		Fields: gql.Fields{
			"addToCart": &gql.Field{
				Type: cartType,
				Args: gql.FieldConfigArgument{
					"productId": &gql.ArgumentConfig{Type: gql.NewNonNull(gql.ID)},
				},
				Resolve: func(p gql.ResolveParams) (any, error) {
					id, _ := p.Args["productId"].(string)
					if _, err := svc.Cart.Add(p.Context, id); err != nil {
						return nil, err
					}
					return svc.Cart.View(p.Context)
				},
			},
			"removeFromCart": &gql.Field{
				Type: cartType,
				Args: gql.FieldConfigArgument{
					"productId": &gql.ArgumentConfig{Type: gql.NewNonNull(gql.ID)},
				},
				Resolve: func(p gql.ResolveParams) (any, error) {
					id, _ := p.Args["productId"].(string)
					if err := svc.Cart.Remove(p.Context, id); err != nil {
						return nil, err
					}
					return svc.Cart.View(p.Context)
				},
			},
			"clearCart": &gql.Field{
				Type: cartType,
				Resolve: func(p gql.ResolveParams) (any, error) {
					if err := svc.Cart.Clear(p.Context); err != nil {
						return nil, err
					}
					return svc.Cart.View(p.Context)
				},
			},
			"toggleTheme": &gql.Field{
				Type: gql.String,
				Resolve: func(p gql.ResolveParams) (any, error) {
					return svc.Theme.Toggle(p.Context)
				},
			},
		},
	})

	return graphql.NewSchema(query, mutation)
}
