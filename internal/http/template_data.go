package httpx

import (
	"fmt"
	"net/http"
	"strings"

	domainauth "github.com/voxa-app/voxa-api/internal/domain/auth"
	"github.com/voxa-app/voxa-api/internal/domain/billing"
	"github.com/voxa-app/voxa-api/internal/service"
)

// Page identifiers. Each has a matching "<page>-content" template.
const (
	PageHome           = "home"
	PageInterview      = "interview"
	PageCheckout       = "stripe"
	PagePaymentSuccess = "payment-success"
	PageSignIn         = "sign-in"
	PageSignUp         = "sign-up"
	PageNotFound       = "not-found"
)

// PageMeta describes the page being rendered.
type PageMeta struct {
	Page  string
	Title string
}

// CheckoutView carries what the checkout page needs from the payment config.
type CheckoutView struct {
	PublishableKey string
	Price          billing.Price
}

// DisplayPrice formats the price for humans, e.g. "$9.99" or "9.99 EUR".
func (c CheckoutView) DisplayPrice() string {
	major := fmt.Sprintf("%d.%02d", c.Price.Amount/100, c.Price.Amount%100)
	if strings.EqualFold(c.Price.Currency, "usd") {
		return "$" + major
	}
	return major + " " + strings.ToUpper(c.Price.Currency)
}

// PageData is the view model shared by every page template.
type PageData struct {
	PageMeta
	User       *domainauth.Profile
	Premium    bool
	UpgradeURL string
	Checkout   CheckoutView
	// PaymentIntentID is set on the payment-success page from the processor redirect.
	PaymentIntentID string
}

// newPageData builds the common view model from the request principal.
func newPageData(r *http.Request, meta PageMeta) PageData {
	principal := PrincipalFromContext(r.Context())
	data := PageData{
		PageMeta:   meta,
		Premium:    service.Can(principal, domainauth.CapabilityPremiumFeature),
		UpgradeURL: service.UpgradePath,
	}
	if profile, ok := principal.Profile(); ok {
		data.User = &profile
	}
	return data
}
