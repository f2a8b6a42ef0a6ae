// Package mocks provides gomock implementations of the account and billing ports.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	repo := mocks.NewMockProfileRepository(ctrl)
//	repo.EXPECT().SetPlan(gomock.Any(), "u1", domainauth.PlanPremium).Return(nil)
package mocks

// MockProfileRepository: Create, GetByID, SetPlan
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=profile_repository_mock.go github.com/voxa-app/voxa-api/internal/ports ProfileRepository

// MockPaymentGateway: CreateIntent, GetIntent
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=payment_gateway_mock.go github.com/voxa-app/voxa-api/internal/ports PaymentGateway
