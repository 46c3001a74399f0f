package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GTDGit/gtd_shop/internal/admin"
	"github.com/GTDGit/gtd_shop/internal/models"
	"github.com/GTDGit/gtd_shop/internal/repository"
)

func TestLoginValidation(t *testing.T) {
	f := newFixture(t)

	code, env := f.do(t, http.MethodPost, "/v1/admin/auth/login", "", gin.H{"email": "ops@shop.test"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Please enter email and password", env.Message)

	code, env = f.do(t, http.MethodPost, "/v1/admin/auth/login", "", gin.H{"email": "ops@shop.test", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "INVALID_CREDENTIALS", env.Error.Code)
}

func TestLoginRateLimited(t *testing.T) {
	f := newFixture(t)
	for i := 0; i < 5; i++ {
		code, _ := f.do(t, http.MethodPost, "/v1/admin/auth/login", "", gin.H{"email": "ops@shop.test", "password": "nope"})
		require.Equal(t, http.StatusUnauthorized, code)
	}
	code, _ := f.do(t, http.MethodPost, "/v1/admin/auth/login", "", gin.H{"email": "ops@shop.test", "password": "hunter22"})
	assert.Equal(t, http.StatusTooManyRequests, code)
}

func TestLogoutRevokesToken(t *testing.T) {
	f := newFixture(t)
	token := f.login(t)

	code, _ := f.do(t, http.MethodGet, "/v1/admin/products", token, nil)
	require.Equal(t, http.StatusOK, code)

	code, _ = f.do(t, http.MethodPost, "/v1/admin/auth/logout", token, nil)
	require.Equal(t, http.StatusOK, code)

	code, _ = f.do(t, http.MethodGet, "/v1/admin/products", token, nil)
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestAdminProductLifecycle(t *testing.T) {
	f := newFixture(t)
	token := f.login(t)

	code, env := f.do(t, http.MethodPost, "/v1/admin/products", token, admin.ProductForm{Title: "Cap"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Please fill in required fields: Title, Price, and Category", env.Message)

	code, env = f.do(t, http.MethodPost, "/v1/admin/products", token, admin.ProductForm{
		Title: "Cap", Price: "99", Category: "Hats", Sizes: "S, M, L", Images: "a.jpg\nb.jpg",
	})
	require.Equal(t, http.StatusCreated, code)
	var created struct{ ID string }
	require.NoError(t, json.Unmarshal(env.Data, &created))

	code, env = f.do(t, http.MethodGet, "/v1/admin/products/"+created.ID+"/form", token, nil)
	require.Equal(t, http.StatusOK, code)
	var ed admin.EditorState
	require.NoError(t, json.Unmarshal(env.Data, &ed))
	assert.Equal(t, "S, M, L", ed.Form.Sizes)
	assert.Equal(t, "a.jpg\nb.jpg", ed.Form.Images)

	code, _ = f.do(t, http.MethodPut, "/v1/admin/products/"+created.ID, token, admin.ProductForm{Title: "Cap 2", Price: "120", Category: "Hats"})
	require.Equal(t, http.StatusOK, code)
	p, err := f.products.Get(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Cap 2", p.Title)

	code, _ = f.do(t, http.MethodPut, "/v1/admin/products/missing", token, admin.ProductForm{Title: "X", Price: "1", Category: "Y"})
	assert.Equal(t, http.StatusNotFound, code)

	code, env = f.do(t, http.MethodDelete, "/v1/admin/products/"+created.ID, token, nil)
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, admin.DeletePrompt, env.Message)
	_, err = f.products.Get(context.Background(), created.ID)
	require.NoError(t, err)

	code, _ = f.do(t, http.MethodDelete, "/v1/admin/products/"+created.ID+"?confirm=true", token, nil)
	require.Equal(t, http.StatusOK, code)
	_, err = f.products.Get(context.Background(), created.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestAdminOrderStatus(t *testing.T) {
	f := newFixture(t)
	token := f.login(t)
	pid := f.seedProduct(t, models.Product{Title: "Tee", Price: 100, Category: "Tops"})
	oid, err := f.orders.Create(context.Background(), &models.Order{
		ProductID: pid, Size: "M", Qty: 2, Payment: models.PaymentPrepaid,
		FullName: "Asha", Mobile: "9876543210", Status: models.OrderPending, Timestamp: 1,
	})
	require.NoError(t, err)

	code, _ := f.do(t, http.MethodPatch, "/v1/admin/orders/"+oid+"/status", token, gin.H{"status": "Lost"})
	assert.Equal(t, http.StatusBadRequest, code)
	code, _ = f.do(t, http.MethodPatch, "/v1/admin/orders/nope/status", token, gin.H{"status": "Shipped"})
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = f.do(t, http.MethodPatch, "/v1/admin/orders/"+oid+"/status", token, gin.H{"status": "Delivered"})
	require.Equal(t, http.StatusOK, code)

	o, err := f.orders.Get(context.Background(), oid)
	require.NoError(t, err)
	assert.Equal(t, models.OrderDelivered, o.Status)
	assert.Equal(t, "Asha", o.FullName)
	assert.Equal(t, 2, o.Qty)

	code, env := f.do(t, http.MethodGet, "/v1/admin/orders", token, nil)
	require.Equal(t, http.StatusOK, code)
	var table admin.OrdersTable
	require.NoError(t, json.Unmarshal(env.Data, &table))
	require.Len(t, table.Rows, 1)
	require.NotNil(t, table.Rows[0].Total)
	assert.Equal(t, float64(250), *table.Rows[0].Total)
}

func TestAdminOrdersPaginated(t *testing.T) {
	f := newFixture(t)
	token := f.login(t)
	var ids []string
	for i := 0; i < 3; i++ {
		oid, err := f.orders.Create(context.Background(), &models.Order{ProductID: "p", Qty: 1, Status: models.OrderPending})
		require.NoError(t, err)
		ids = append(ids, oid)
	}
	sort.Strings(ids)

	code, env := f.do(t, http.MethodGet, "/v1/admin/orders?page=2&limit=2", token, nil)
	require.Equal(t, http.StatusOK, code)
	var table admin.OrdersTable
	require.NoError(t, json.Unmarshal(env.Data, &table))
	require.Len(t, table.Rows, 1)
	assert.Equal(t, ids[2], table.Rows[0].ID)
	require.NotNil(t, env.Meta.Pagination)
	assert.Equal(t, 2, env.Meta.Pagination.Page)
	assert.Equal(t, 3, env.Meta.Pagination.TotalItems)
	assert.Equal(t, 2, env.Meta.Pagination.TotalPages)

	code, env = f.do(t, http.MethodGet, "/v1/admin/orders?page=9", token, nil)
	require.Equal(t, http.StatusOK, code)
	require.NoError(t, json.Unmarshal(env.Data, &table))
	assert.Empty(t, table.Rows)
	assert.Equal(t, 50, env.Meta.Pagination.Limit)
}

func TestAdminPolicies(t *testing.T) {
	f := newFixture(t)
	token := f.login(t)

	set := models.PolicySet{About: "Hello", Refund: "30 days"}
	code, _ := f.do(t, http.MethodPut, "/v1/admin/policies", token, set)
	require.Equal(t, http.StatusOK, code)

	code, env := f.do(t, http.MethodGet, "/v1/admin/policies", token, nil)
	require.Equal(t, http.StatusOK, code)
	var got models.PolicySet
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.Equal(t, set, got)

	code, env = f.do(t, http.MethodGet, "/v1/store/policies/about", "", nil)
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"kind":"about","title":"About Us","content":"Hello"}`, string(env.Data))
}

func TestUploadImage(t *testing.T) {
	f := newFixture(t)
	token := f.login(t)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("image", "shirt.jpg")
	require.NoError(t, err)
	_, _ = part.Write([]byte("jpeg-bytes"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/v1/admin/uploads", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "https://cdn.example/shirt.jpg")
	assert.Equal(t, "shirt.jpg:jpeg-bytes", f.uploads.got)
}

func TestAdminRoutesRequireToken(t *testing.T) {
	f := newFixture(t)
	code, env := f.do(t, http.MethodGet, "/v1/admin/orders", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.False(t, env.Success)
}
