// Package kernel assembles the storefront's HTTP handler: global
// middleware, services, listeners and routes.
package kernel

import (
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/shashiranjanraj/bloomthread/app/controllers"
	"github.com/shashiranjanraj/bloomthread/app/listeners"
	"github.com/shashiranjanraj/bloomthread/app/repositories"
	"github.com/shashiranjanraj/bloomthread/app/routes"
	"github.com/shashiranjanraj/bloomthread/app/schema"
	"github.com/shashiranjanraj/bloomthread/app/services"
	"github.com/shashiranjanraj/bloomthread/config"
	"github.com/shashiranjanraj/bloomthread/pkg/event"
	"github.com/shashiranjanraj/bloomthread/pkg/imagecheck"
	"github.com/shashiranjanraj/bloomthread/pkg/kv"
	"github.com/shashiranjanraj/bloomthread/pkg/metrics"
	"github.com/shashiranjanraj/bloomthread/pkg/middleware"
	"github.com/shashiranjanraj/bloomthread/pkg/reqid"
	"github.com/shashiranjanraj/bloomthread/pkg/response"
	"github.com/shashiranjanraj/bloomthread/pkg/router"
	"github.com/shashiranjanraj/bloomthread/pkg/session"
	"github.com/shashiranjanraj/bloomthread/pkg/sse"
	"github.com/shashiranjanraj/bloomthread/pkg/ws"
	"github.com/shashiranjanraj/bloomthread/resources"
)

// Options configures New. Store is required; the rest default.
type Options struct {
	Store   kv.Store
	Images  *imagecheck.Checker
	Events  *event.Dispatcher
	Hub     *ws.Hub
	Streams *sse.Broker
	Limiter *middleware.Limiter
	Session *session.Options
	Views   *template.Template
}

// Kernel is the assembled HTTP application.
type Kernel struct {
	Router   *router.Router
	Services *services.Services
	Limiter  *middleware.Limiter
}

// New wires the application. Listeners are registered on opts.Events,
// so each kernel should get its own dispatcher in tests.
func New(opts Options) (*Kernel, error) {
	if opts.Store == nil {
		return nil, fmt.Errorf("kernel: a visitor store is required")
	}
	if opts.Events == nil {
		opts.Events = event.Default
	}
	if opts.Limiter == nil {
		opts.Limiter = middleware.NewLimiter(config.RateLimit(), time.Minute)
	}
	if opts.Session == nil {
		s := session.DefaultOptions()
		opts.Session = &s
	}
	if opts.Views == nil {
		opts.Views = resources.Views
	}

	var resolver services.ImageResolver
	var checker controllers.ImageChecker
	if opts.Images != nil {
		resolver, checker = opts.Images, opts.Images
	}

	var pubs listeners.Publishers
	if opts.Hub != nil {
		pubs = append(pubs, opts.Hub)
	}
	if opts.Streams != nil {
		pubs = append(pubs, opts.Streams)
	}
	var pub listeners.Publisher
	if len(pubs) > 0 {
		pub = pubs
	}

	repo := repositories.NewStoreRepository(opts.Store)
	svc := services.New(repo, resolver, opts.Events)
	listeners.Register(opts.Events, pub)

	gqlSchema, err := schema.New(svc)
	if err != nil {
		return nil, fmt.Errorf("kernel: graphql schema: %w", err)
	}

	r := router.New()

	// Global middleware, outermost first:
	//  1. metrics     total latency including everything below
	//  2. recovery    panics become a 500 envelope
	//  3. request id  before anything logs
	//  4. logger      one line per request, tagged with the request id
	//  5. session     resolves the visitor and its space
	//  6. CORS
	//  7. rate limit
	r.Use(metrics.Middleware())
	r.Use(middleware.Recovery)
	r.Use(reqid.Middleware())
	r.Use(middleware.Logger)
	r.Use(session.Middleware(*opts.Session))
	r.Use(middleware.CORS(middleware.DefaultCORSOptions()))
	r.Use(opts.Limiter.Middleware)

	r.Handle("/metrics", "metrics", metrics.Handler())

	deps := routes.Deps{
		Services: svc,
		Views:    opts.Views,
		Images:   checker,
		Schema:   gqlSchema,
		Hub:      opts.Hub,
		Streams:  opts.Streams,
		Store:    opts.Store,
	}
	routes.RegisterWeb(r, deps)
	routes.RegisterAPI(r, deps)

	r.NotFound(notFound)

	return &Kernel{Router: r, Services: svc, Limiter: opts.Limiter}, nil
}

// Handler returns the root handler.
func (k *Kernel) Handler() http.Handler { return k.Router.Handler() }

func notFound(w http.ResponseWriter, r *http.Request) {
	if strings.HasPrefix(r.URL.Path, "/api/") {
		response.NotFound(w, "Route not found")
		return
	}
	http.NotFound(w, r)
}
