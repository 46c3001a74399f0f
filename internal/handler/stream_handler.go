package handler

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/GTDGit/gtd_shop/internal/admin"
	"github.com/GTDGit/gtd_shop/internal/auth"
	"github.com/GTDGit/gtd_shop/internal/catalog"
	"github.com/GTDGit/gtd_shop/internal/models"
	"github.com/GTDGit/gtd_shop/internal/session"
	"github.com/GTDGit/gtd_shop/internal/sse"
	"github.com/GTDGit/gtd_shop/internal/utils"
	"github.com/GTDGit/gtd_shop/internal/view"
)

const pingInterval = 30 * time.Second

// Dashboard bundles the admin components a signed-in stream renders.
type Dashboard struct {
	Products *admin.CatalogManager
	Orders   *admin.OrderManager
	Policies *admin.PolicyEditor
}

// StreamHandler serves Server-Sent Events: live catalog frames for the
// storefront and the guarded dashboard for the admin console.
type StreamHandler struct {
	hub       *sse.Hub
	catalog   *catalog.Catalog
	provider  auth.Provider
	dashboard Dashboard
}

// NewStreamHandler creates a new StreamHandler.
func NewStreamHandler(hub *sse.Hub, c *catalog.Catalog, provider auth.Provider, dashboard Dashboard) *StreamHandler {
	return &StreamHandler{hub: hub, catalog: c, provider: provider, dashboard: dashboard}
}

// StoreStream handles GET /v1/store/products/stream?category=&q=
func (h *StreamHandler) StoreStream(c *gin.Context) {
	var q catalog.Query
	_ = c.ShouldBindQuery(&q)

	client := h.hub.Register("store-" + uuid.NewString())
	defer h.hub.Unregister(client.ID)

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	live := h.catalog.NewView(ctx, func(f catalog.Frame) {
		client.Send(sse.EventCatalog, f)
	})
	defer live.Close()

	if err := live.SetQuery(q); err != nil {
		respondError(c, err, "Failed to subscribe to products")
		return
	}

	h.stream(c, client)
}

// AdminStream handles GET /v1/admin/stream?token=<jwt>
// EventSource API cannot set custom headers, so JWT is passed via query param.
// The first event is the guard state; dashboard tables follow while the
// session stays signed in.
func (h *StreamHandler) AdminStream(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		utils.Error(c, 401, utils.CodeUnauthorized, "Missing token query parameter")
		return
	}

	client := h.hub.Register("admin-" + uuid.NewString())
	defer h.hub.Unregister(client.ID)

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	feed := &dashboardFeed{dashboard: h.dashboard, client: client}
	defer feed.stop()

	guard := session.NewGuard(ctx, h.provider,
		session.OnAuthenticated(func(ctx context.Context, id *auth.Identity) {
			log.Info().Str("client_id", client.ID).Int("user_id", id.UserID).Msg("Admin dashboard stream started")
			feed.start(ctx)
		}),
		session.OnChange(func(st session.Status) {
			if st.State != session.Authenticated {
				feed.stop()
			}
			client.Send(sse.EventGuard, st)
		}),
	)
	defer guard.Close()

	if err := guard.Resume(token); err != nil {
		respondError(c, err, "Failed to check session")
		return
	}

	h.stream(c, client)
}

// stream writes queued events until the client disconnects.
func (h *StreamHandler) stream(c *gin.Context, client *sse.Client) {
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no") // Disable nginx buffering

	c.SSEvent("connected", gin.H{
		"clientId":  client.ID,
		"message":   "SSE connection established",
		"timestamp": time.Now().Format(time.RFC3339),
	})
	c.Writer.Flush()

	ping := time.NewTicker(pingInterval)
	defer ping.Stop()

	c.Stream(func(w io.Writer) bool {
		select {
		case msg := <-client.Events:
			c.SSEvent(msg.Event, string(msg.Data))
			return msg.Event != sse.EventShutdown
		case <-client.Wake():
			for _, msg := range client.Drain() {
				c.SSEvent(msg.Event, string(msg.Data))
				if msg.Event == sse.EventShutdown {
					return false
				}
			}
			return true
		case <-ping.C:
			c.SSEvent("ping", gin.H{"timestamp": time.Now().Format(time.RFC3339)})
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}

// dashboardFeed runs the dashboard subscriptions for one signed-in stream.
type dashboardFeed struct {
	dashboard Dashboard
	client    *sse.Client

	mu     sync.Mutex
	cancel context.CancelFunc
	stops  []func()
}

func (f *dashboardFeed) start(parent context.Context) {
	f.stop()

	ctx, cancel := context.WithCancel(parent)
	var stops []func()

	if sub, err := f.dashboard.Products.Watch(ctx, func(t admin.ProductsTable) {
		f.client.Send(sse.EventProducts, t)
	}); err != nil {
		f.fail("Failed to load products", err)
	} else {
		stops = append(stops, sub.Cancel)
	}

	if stop, err := f.dashboard.Orders.Watch(ctx, func(t admin.OrdersTable) {
		f.client.Send(sse.EventOrders, t)
	}); err != nil {
		f.fail("Failed to load orders", err)
	} else {
		stops = append(stops, stop)
	}

	if sub, err := f.dashboard.Policies.Watch(ctx, func(p *models.PolicySet) {
		f.client.Send(sse.EventPolicies, p)
	}); err != nil {
		f.fail("Failed to load policies", err)
	} else {
		stops = append(stops, sub.Cancel)
	}

	f.mu.Lock()
	f.cancel = cancel
	f.stops = stops
	f.mu.Unlock()
}

func (f *dashboardFeed) stop() {
	f.mu.Lock()
	cancel, stops := f.cancel, f.stops
	f.cancel, f.stops = nil, nil
	f.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	for _, s := range stops {
		s()
	}
}

func (f *dashboardFeed) fail(msg string, err error) {
	log.Error().Err(err).Str("client_id", f.client.ID).Msg(msg)
	f.client.Send(sse.EventNotice, view.Failure(fmt.Sprintf("%s. Please reload.", msg)))
}
