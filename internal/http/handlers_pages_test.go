package httpx

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	domainauth "github.com/voxa-app/voxa-api/internal/domain/auth"
	"github.com/voxa-app/voxa-api/internal/domain/billing"
)

var browser = map[string]string{"Accept": "text/html,application/xhtml+xml"}

func TestProtectedPages_RedirectAnonymous(t *testing.T) {
	app := newTestApp(t)

	for _, path := range []string{"/", "/interview", "/stripe", "/payment-success"} {
		t.Run(path, func(t *testing.T) {
			rec := app.do(t, testRequest{method: http.MethodGet, path: path, headers: browser})
			assert.Equal(t, http.StatusFound, rec.Code)
			assert.Equal(t, SignInPath, rec.Header().Get("Location"))
		})
	}
}

func TestProtectedPages_RedirectNonBrowserClients(t *testing.T) {
	app := newTestApp(t)

	for _, path := range []string{"/", "/interview", "/stripe", "/payment-success"} {
		t.Run(path, func(t *testing.T) {
			rec := app.do(t, testRequest{method: http.MethodGet, path: path,
				headers: map[string]string{"Accept": "application/json"}})
			assert.Equal(t, http.StatusFound, rec.Code)
			assert.Equal(t, SignInPath, rec.Header().Get("Location"))
		})
	}
}

func TestPublicPages(t *testing.T) {
	app := newTestApp(t)

	for _, path := range []string{"/sign-in", "/sign-up"} {
		t.Run(path, func(t *testing.T) {
			rec := app.do(t, testRequest{method: http.MethodGet, path: path, headers: browser})
			require.Equal(t, http.StatusOK, rec.Code)
			assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
			assert.Contains(t, rec.Body.String(), "idToken")
		})
	}
}

func TestInterviewPage_UpsellByPlan(t *testing.T) {
	app := newTestApp(t)
	app.addUser("uid-free", domainauth.PlanFree)
	app.addUser("uid-premium", domainauth.PlanPremium)

	free := app.do(t, testRequest{method: http.MethodGet, path: "/interview", headers: browser,
		session: app.signIn(t, "uid-free")})
	require.Equal(t, http.StatusOK, free.Code)
	assert.Contains(t, free.Body.String(), `href="/stripe"`)
	assert.Contains(t, free.Body.String(), "Upgrade to Premium")
	assert.NotContains(t, free.Body.String(), "Premium interviews")

	premium := app.do(t, testRequest{method: http.MethodGet, path: "/interview", headers: browser,
		session: app.signIn(t, "uid-premium")})
	require.Equal(t, http.StatusOK, premium.Code)
	assert.Contains(t, premium.Body.String(), "Premium interviews")
	assert.NotContains(t, premium.Body.String(), "Upgrade to Premium")
}

func TestCheckoutPage(t *testing.T) {
	app := newTestApp(t)
	app.addUser("uid-1", domainauth.PlanFree)

	rec := app.do(t, testRequest{method: http.MethodGet, path: "/stripe", headers: browser,
		session: app.signIn(t, "uid-1")})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "pk_test_123")
	assert.Contains(t, rec.Body.String(), "$9.99")
	assert.Contains(t, rec.Body.String(), "/api/create-payment-intent")
}

func TestPageHandlers_RenderCheckoutView(t *testing.T) {
	tr, err := NewTemplateRenderer(TemplateRendererConfig{TemplateFS: os.DirFS(TemplatePathFromTest)})
	require.NoError(t, err)
	h := &PageHandlers{
		T:            tr,
		CheckoutView: CheckoutView{PublishableKey: "pk_live_abc", Price: billing.Price{Amount: 1205, Currency: "eur"}},
	}
	ctx := SetPrincipalInContext(context.Background(),
		domainauth.Authenticated(domainauth.Profile{ID: "uid-1", Plan: domainauth.PlanFree}))

	checkout := httptest.NewRecorder()
	h.Checkout(checkout, httptest.NewRequest(http.MethodGet, "/stripe", nil).WithContext(ctx))
	require.Equal(t, http.StatusOK, checkout.Code)
	assert.Contains(t, checkout.Body.String(), `data-publishable-key="pk_live_abc"`)
	assert.Contains(t, checkout.Body.String(), "12.05 EUR")

	success := httptest.NewRecorder()
	h.PaymentSuccess(success, httptest.NewRequest(http.MethodGet, "/payment-success?payment_intent=pi_7", nil).WithContext(ctx))
	require.Equal(t, http.StatusOK, success.Code)
	assert.Contains(t, success.Body.String(), "12.05 EUR")
	assert.Contains(t, success.Body.String(), `data-payment-intent="pi_7"`)
}

func TestPaymentSuccessPage_CarriesIntent(t *testing.T) {
	app := newTestApp(t)
	app.addUser("uid-1", domainauth.PlanFree)

	rec := app.do(t, testRequest{method: http.MethodGet, path: "/payment-success?payment_intent=pi_123", headers: browser,
		session: app.signIn(t, "uid-1")})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `data-payment-intent="pi_123"`)
	assert.Contains(t, rec.Body.String(), "/api/update-plan")
}

func TestNotFound(t *testing.T) {
	app := newTestApp(t)

	page := app.do(t, testRequest{method: http.MethodGet, path: "/nope", headers: browser})
	assert.Equal(t, http.StatusNotFound, page.Code)
	assert.Contains(t, page.Body.String(), "Page not found")

	api := app.do(t, testRequest{method: http.MethodGet, path: "/api/nope"})
	assert.Equal(t, http.StatusNotFound, api.Code)
	assert.Equal(t, false, decodeBody(t, api)["success"])
}

func TestDisplayPrice(t *testing.T) {
	tests := []struct {
		price billing.Price
		want  string
	}{
		{price: billing.Price{Amount: 999, Currency: "usd"}, want: "$9.99"},
		{price: billing.Price{Amount: 1205, Currency: "eur"}, want: "12.05 EUR"},
		{price: billing.Price{Amount: 5, Currency: "USD"}, want: "$0.05"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CheckoutView{Price: tt.price}.DisplayPrice())
	}
}
