package httpx

import (
	"errors"
	"log/slog"
	"net/http"
)

// PageHandlers serves the server-rendered pages.
type PageHandlers struct {
	T            *TemplateRenderer
	CheckoutView CheckoutView
	Logger       *slog.Logger
}

func (h *PageHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

func (h *PageHandlers) render(w http.ResponseWriter, status int, data PageData) {
	if err := h.T.RenderPage(w, status, data); err != nil {
		h.logger().Error("page render failed", "page", data.Page, "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

// Home renders the signed-in landing page.
func (h *PageHandlers) Home(w http.ResponseWriter, r *http.Request) {
	h.render(w, http.StatusOK, newPageData(r, PageMeta{Page: PageHome, Title: "Voxa"}))
}

// Interview renders the interview page. Free users see the upgrade prompt in place
// of the premium section.
func (h *PageHandlers) Interview(w http.ResponseWriter, r *http.Request) {
	h.render(w, http.StatusOK, newPageData(r, PageMeta{Page: PageInterview, Title: "Interview practice"}))
}

// Checkout renders the premium purchase page.
func (h *PageHandlers) Checkout(w http.ResponseWriter, r *http.Request) {
	data := newPageData(r, PageMeta{Page: PageCheckout, Title: "Upgrade to Premium"})
	data.Checkout = h.CheckoutView
	h.render(w, http.StatusOK, data)
}

// PaymentSuccess renders the page the processor redirects to after payment.
// The page confirms the upgrade through /api/update-plan.
func (h *PageHandlers) PaymentSuccess(w http.ResponseWriter, r *http.Request) {
	data := newPageData(r, PageMeta{Page: PagePaymentSuccess, Title: "Payment successful"})
	data.Checkout = h.CheckoutView
	data.PaymentIntentID = r.URL.Query().Get("payment_intent")
	h.render(w, http.StatusOK, data)
}

// SignIn renders the public sign-in page.
func (h *PageHandlers) SignIn(w http.ResponseWriter, r *http.Request) {
	h.render(w, http.StatusOK, newPageData(r, PageMeta{Page: PageSignIn, Title: "Sign in"}))
}

// SignUp renders the public sign-up page.
func (h *PageHandlers) SignUp(w http.ResponseWriter, r *http.Request) {
	h.render(w, http.StatusOK, newPageData(r, PageMeta{Page: PageSignUp, Title: "Create an account"}))
}

// NotFound renders a 404 page for browsers and a JSON error for API clients.
func (h *PageHandlers) NotFound(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.T == nil || !IsBrowserRequest(r) {
		WriteError(w, ErrorParams{Code: http.StatusNotFound, ErrCode: "not_found", Err: errors.New("not found")})
		return
	}
	h.render(w, http.StatusNotFound, newPageData(r, PageMeta{Page: PageNotFound, Title: "Not found"}))
}
