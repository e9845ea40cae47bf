// Package routes mounts the storefront's pages and API on the router.
package routes

import (
	"html/template"

	gql "github.com/graphql-go/graphql"

	"github.com/shashiranjanraj/bloomthread/app/controllers"
	"github.com/shashiranjanraj/bloomthread/app/services"
	"github.com/shashiranjanraj/bloomthread/pkg/sse"
	"github.com/shashiranjanraj/bloomthread/pkg/ws"
)

// Deps are the collaborators the handlers need.
type Deps struct {
	Services *services.Services
	Views    *template.Template
	Images   controllers.ImageChecker
	Schema   gql.Schema
	Hub      *ws.Hub
	Streams  *sse.Broker
	Store    controllers.Pinger
}
