package service

import domainauth "github.com/voxa-app/voxa-api/internal/domain/auth"

// UpgradePath is where denied premium capabilities send the user.
const UpgradePath = "/stripe"

// RequireCapability reports whether profile holds capability. Only
// domainauth.CapabilityPremiumFeature exists; it requires the premium plan.
// Unknown capabilities are denied.
func RequireCapability(profile domainauth.Profile, capability domainauth.Capability) bool {
	switch capability {
	case domainauth.CapabilityPremiumFeature:
		return profile.Plan == domainauth.PlanPremium
	default:
		return false
	}
}

// Can evaluates capability for a resolved principal. Anonymous principals hold none.
func Can(p domainauth.Principal, capability domainauth.Capability) bool {
	profile, ok := p.Profile()
	return ok && RequireCapability(profile, capability)
}

// Capabilities lists every known capability and whether p holds it.
func Capabilities(p domainauth.Principal) map[domainauth.Capability]bool {
	return map[domainauth.Capability]bool{
		domainauth.CapabilityPremiumFeature: Can(p, domainauth.CapabilityPremiumFeature),
	}
}
