package handler

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/GTDGit/gtd_shop/internal/admin"
	"github.com/GTDGit/gtd_shop/internal/auth"
	"github.com/GTDGit/gtd_shop/internal/catalog"
	"github.com/GTDGit/gtd_shop/internal/checkout"
	"github.com/GTDGit/gtd_shop/internal/middleware"
	"github.com/GTDGit/gtd_shop/internal/models"
	"github.com/GTDGit/gtd_shop/internal/repository"
	"github.com/GTDGit/gtd_shop/internal/service"
	"github.com/GTDGit/gtd_shop/internal/sse"
	"github.com/GTDGit/gtd_shop/internal/store"
)

func init() { gin.SetMode(gin.TestMode) }

type envelope struct {
	Success bool            `json:"success"`
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	Meta struct {
		Pagination *struct {
			Page       int `json:"page"`
			Limit      int `json:"limit"`
			TotalItems int `json:"totalItems"`
			TotalPages int `json:"totalPages"`
		} `json:"pagination"`
	} `json:"meta"`
}

type memoryUsers struct {
	mu    sync.Mutex
	users map[string]*models.AdminUser
}

func (m *memoryUsers) GetByEmail(_ context.Context, email string) (*models.AdminUser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[email]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (m *memoryUsers) Create(_ context.Context, u *models.AdminUser) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u.ID = len(m.users) + 1
	cp := *u
	m.users[u.Email] = &cp
	return nil
}

func (m *memoryUsers) TouchLogin(context.Context, int) error { return nil }

type fakeUploader struct{ got string }

func (f *fakeUploader) Upload(_ context.Context, file io.Reader, filename string) (*service.UploadedImage, error) {
	data, _ := io.ReadAll(file)
	f.got = filename + ":" + string(data)
	return &service.UploadedImage{URL: "https://cdn.example/" + filename, PublicID: "products/x"}, nil
}

// memoryDrafts keeps checkout drafts as JSON, like the Redis draft cache.
type memoryDrafts struct {
	mu      sync.Mutex
	entries map[string][]byte
}

func (m *memoryDrafts) Load(_ context.Context, id string) (*checkout.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.entries[id]
	if !ok {
		return nil, checkout.ErrSessionNotFound
	}
	var s checkout.Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (m *memoryDrafts) Save(_ context.Context, id string, s *checkout.Snapshot) error {
	data, err := json.Marshal(s)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[id] = data
	return nil
}

type fixture struct {
	router   *gin.Engine
	mem      *store.Memory
	products *repository.ProductRepository
	orders   *repository.OrderRepository
	auth     *auth.Service
	uploads  *fakeUploader
	hub      *sse.Hub
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	mem := store.NewMemory()
	products := repository.NewProductRepository(mem)
	orders := repository.NewOrderRepository(mem)
	policies := repository.NewPolicyRepository(mem)

	authSvc := auth.NewService(&memoryUsers{users: map[string]*models.AdminUser{}}, auth.NewMemoryRevocations(), "test-secret", time.Hour)
	require.NoError(t, authSvc.CreateAdmin(ctx, "ops@shop.test", "hunter22", "Ops"))

	cat := catalog.New(products)
	orderMgr := admin.NewOrderManager(orders, products, time.UTC)
	policyEditor := admin.NewPolicyEditor(policies)
	hub := sse.NewHub()
	uploads := &fakeUploader{}

	storefront := NewStorefrontHandler(cat, policies)
	checkoutH := NewCheckoutHandler(checkout.NewSessions(&memoryDrafts{entries: map[string][]byte{}}, products, orders))
	limiter := middleware.NewLoginRateLimiter(ctx, 5, time.Minute)
	authH := NewAuthHandler(authSvc, limiter)
	productsH := NewAdminProductHandler(products)
	ordersH := NewAdminOrderHandler(orderMgr)
	policiesH := NewAdminPolicyHandler(policyEditor)
	uploadH := NewUploadHandler(uploads)
	streamH := NewStreamHandler(hub, cat, authSvc, Dashboard{
		Products: admin.NewCatalogManager(products),
		Orders:   orderMgr,
		Policies: policyEditor,
	})

	r := gin.New()
	shop := r.Group("/v1/store")
	shop.GET("/products", storefront.ListProducts)
	shop.GET("/products/stream", streamH.StoreStream)
	shop.GET("/products/:id", storefront.GetProduct)
	shop.GET("/categories", storefront.ListCategories)
	shop.GET("/policies/:kind", storefront.GetPolicy)
	shop.POST("/checkout", checkoutH.Start)
	shop.GET("/checkout/:id", checkoutH.Get)
	shop.POST("/checkout/:id/product", checkoutH.SelectProduct)
	shop.POST("/checkout/:id/increment", checkoutH.Increment)
	shop.POST("/checkout/:id/decrement", checkoutH.Decrement)
	shop.POST("/checkout/:id/size", checkoutH.ChooseSize)
	shop.POST("/checkout/:id/address", checkoutH.SubmitAddress)
	shop.POST("/checkout/:id/confirm", checkoutH.Confirm)
	shop.POST("/checkout/:id/back", checkoutH.Back)
	shop.POST("/checkout/:id/reset", checkoutH.Reset)

	adm := r.Group("/v1/admin")
	adm.POST("/auth/login", limiter.Handle(), authH.Login)
	adm.GET("/stream", streamH.AdminStream)
	adm.Use(middleware.NewJWTMiddleware(authSvc).Handle())
	adm.POST("/auth/logout", authH.Logout)
	adm.GET("/products", productsH.ListProducts)
	adm.POST("/products", productsH.CreateProduct)
	adm.GET("/products/:id/form", productsH.GetForm)
	adm.PUT("/products/:id", productsH.UpdateProduct)
	adm.DELETE("/products/:id", productsH.DeleteProduct)
	adm.GET("/orders", ordersH.ListOrders)
	adm.PATCH("/orders/:id/status", ordersH.UpdateStatus)
	adm.GET("/policies", policiesH.GetPolicies)
	adm.PUT("/policies", policiesH.SavePolicies)
	adm.POST("/uploads", uploadH.UploadImage)

	return &fixture{router: r, mem: mem, products: products, orders: orders, auth: authSvc, uploads: uploads, hub: hub}
}

func (f *fixture) do(t *testing.T, method, path, token string, body any) (int, envelope) {
	t.Helper()
	var rdr io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		rdr = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, rdr)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w.Code, env
}

func (f *fixture) login(t *testing.T) string {
	t.Helper()
	code, env := f.do(t, http.MethodPost, "/v1/admin/auth/login", "", gin.H{"email": "ops@shop.test", "password": "hunter22"})
	require.Equal(t, http.StatusOK, code)
	var sess auth.Session
	require.NoError(t, json.Unmarshal(env.Data, &sess))
	return sess.Token
}

func (f *fixture) seedProduct(t *testing.T, p models.Product) string {
	t.Helper()
	id, err := f.products.Create(context.Background(), &p)
	require.NoError(t, err)
	return id
}
