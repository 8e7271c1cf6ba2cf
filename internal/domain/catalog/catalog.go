package catalog

// Package catalog contains domain-level types for the public storefront
// catalog served by the commerce backend. Field names mirror the backend's
// JSON payloads (Mongo-style `_id` identifiers).

// Product is a sellable item in a tenant's catalog.
type Product struct {
	ID          string   `json:"_id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Price       float64  `json:"price"`
	Images      []string `json:"images,omitempty"`
	Category    string   `json:"category,omitempty"`
	CategoryID  string   `json:"categoryId,omitempty"`
	ProductType string   `json:"productType,omitempty"`
	IsActive    bool     `json:"isActive"`
	TenantID    string   `json:"tenantId,omitempty"`
}

// Service is a bookable service offering.
type Service struct {
	ID              string   `json:"_id"`
	Name            string   `json:"name"`
	Description     string   `json:"description,omitempty"`
	Price           float64  `json:"price"`
	DurationMinutes int      `json:"durationMinutes,omitempty"`
	Images          []string `json:"images,omitempty"`
	Category        string   `json:"category,omitempty"`
	CategoryID      string   `json:"categoryId,omitempty"`
	TenantID        string   `json:"tenantId,omitempty"`
}

// Store is a storefront/organization partition of the backend.
type Store struct {
	ID       string `json:"_id"`
	Slug     string `json:"slug"`
	Name     string `json:"name"`
	LogoURL  string `json:"logoUrl,omitempty"`
	Address  string `json:"address,omitempty"`
	Phone    string `json:"phone,omitempty"`
	IsActive bool   `json:"isActive"`
}

// Category groups products and services.
type Category struct {
	ID       string `json:"_id"`
	Name     string `json:"name"`
	TenantID string `json:"tenantId,omitempty"`
}

// Discount is an active promotion in a tenant's catalog.
type Discount struct {
	ID         string  `json:"_id"`
	Name       string  `json:"name"`
	Percentage float64 `json:"percentage,omitempty"`
	Amount     float64 `json:"amount,omitempty"`
	TenantID   string  `json:"tenantId,omitempty"`
}

// Bundle is a priced grouping of products.
type Bundle struct {
	ID         string   `json:"_id"`
	Name       string   `json:"name"`
	Price      float64  `json:"price"`
	ProductIDs []string `json:"productIds,omitempty"`
	TenantID   string   `json:"tenantId,omitempty"`
}

// ProductQuery filters a product listing.
type ProductQuery struct {
	TenantSlug  string
	Search      string
	Category    string
	CategoryID  string
	ProductType string
	IsActive    *bool
}

// ServiceQuery filters a service listing.
type ServiceQuery struct {
	TenantSlug string
	Search     string
	Category   string
	CategoryID string
}

// StoreQuery filters a store listing.
type StoreQuery struct {
	Search   string
	IsActive *bool
}

// SearchQuery drives the universal search endpoint.
type SearchQuery struct {
	Term       string
	Type       string // products | services | stores | categories | all
	TenantSlug string
}

// SearchResult aggregates hits across catalog entities.
type SearchResult struct {
	Products   []Product  `json:"products,omitempty"`
	Services   []Service  `json:"services,omitempty"`
	Stores     []Store    `json:"stores,omitempty"`
	Categories []Category `json:"categories,omitempty"`
}
