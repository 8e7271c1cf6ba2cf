// Package mocks provides mock implementations for testing the storefront.
//
// This package uses go.uber.org/mock (gomock) to generate type-safe mocks for
// the ports interfaces. The mocks are generated using go:generate directives
// and provide a fluent API for setting up test expectations.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	defer ctrl.Finish()
//	store := mocks.NewMockCredentialStore(ctrl)
//	store.EXPECT().Set(gomock.Any(), ports.KeyCustomerToken, "T1").Return(nil)
package mocks

// Generate mock for CredentialStore interface from internal/ports.
// This creates MockCredentialStore with Get, Set, Delete.
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=credential_store_mock.go github.com/onepos/storefront/internal/ports CredentialStore

// Generate mock for CatalogCache interface from internal/ports.
// This creates MockCatalogCache with Get, Set.
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=catalog_cache_mock.go github.com/onepos/storefront/internal/ports CatalogCache
