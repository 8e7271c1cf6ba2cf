package session

// Package session contains domain-level types for the storefront's
// process-wide authentication state. It is pure and free of
// framework/adapter concerns.

// Customer is the registered-customer principal returned by the backend.
type Customer struct {
	ID        string `json:"_id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
	Avatar    string `json:"avatar,omitempty"`
}

// Guest is the anonymous-session principal returned by the backend.
type Guest struct {
	GuestID  string `json:"guestId"`
	TenantID string `json:"tenantId"`
}

// State identifies one of the four session states.
// Keep string form for easy logging and template use.
type State string

const (
	// StateUnknown means startup reconciliation has not finished yet.
	StateUnknown State = "unknown"
	// StateAnonymous means no principal is held.
	StateAnonymous State = "anonymous"
	// StateGuest means an anonymous backend session is held.
	StateGuest State = "guest"
	// StateCustomer means a registered customer is signed in.
	StateCustomer State = "customer"
)

// Snapshot is an immutable view of the session at one instant.
// At most one of Customer/Guest is set; both nil means anonymous.
type Snapshot struct {
	Customer  *Customer
	Guest     *Guest
	IsLoading bool
}

// IsAuthenticated reports whether a registered customer is signed in.
func (s Snapshot) IsAuthenticated() bool { return s.Customer != nil }

// IsGuest reports whether the session holds an anonymous guest principal.
func (s Snapshot) IsGuest() bool { return s.Customer == nil && s.Guest != nil }

// State maps the snapshot onto the session state machine.
func (s Snapshot) State() State {
	switch {
	case s.IsLoading:
		return StateUnknown
	case s.Customer != nil:
		return StateCustomer
	case s.Guest != nil:
		return StateGuest
	default:
		return StateAnonymous
	}
}

// Loading returns the initial snapshot created at process start.
func Loading() Snapshot {
	return Snapshot{IsLoading: true}
}

// Anonymous returns a snapshot with no principal and loading finished.
func Anonymous() Snapshot {
	return Snapshot{}
}

// ForCustomer returns a snapshot holding the given customer principal.
// Any guest state is dropped.
func ForCustomer(c Customer) Snapshot {
	return Snapshot{Customer: &c}
}

// ForGuest returns a snapshot holding the given guest principal.
// Any customer state is dropped.
func ForGuest(g Guest) Snapshot {
	return Snapshot{Guest: &g}
}

// DisplayName returns a human-readable name for the current principal.
func (s Snapshot) DisplayName() string {
	switch {
	case s.Customer != nil && s.Customer.FirstName != "":
		if s.Customer.LastName != "" {
			return s.Customer.FirstName + " " + s.Customer.LastName
		}
		return s.Customer.FirstName
	case s.Customer != nil:
		return s.Customer.Email
	case s.Guest != nil:
		return "Guest"
	default:
		return ""
	}
}
