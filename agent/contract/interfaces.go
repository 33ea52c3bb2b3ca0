package contract

import "context"

// Agent is a handler bound to one domain.
type Agent interface {
	Type() AgentType
	Tools() []ToolDescriptor
	ProcessRequest(ctx context.Context, req Request) Response
}

// ProfileAware agents consume and maintain long-lived customer profiles.
type ProfileAware interface {
	Profile(ctx context.Context, customerID string) (Preferences, error)
	UpdateProfile(ctx context.Context, customerID string, prefs Preferences) error
}

// DataService provides the structured domain lookups behind agent tools.
// Single-record lookups report absence with an error wrapping ErrNotFound.
type DataService interface {
	AlbumsByArtist(ctx context.Context, artist string) ([]Album, error)
	ArtistsByGenre(ctx context.Context, genre string) ([]Artist, error)
	TopTracksByArtist(ctx context.Context, artist string) ([]Track, error)
	CustomerByID(ctx context.Context, customerID string) (*Customer, error)
	InvoiceByID(ctx context.Context, invoiceID string) (*Invoice, error)
	PurchaseHistory(ctx context.Context, customerID string) ([]Purchase, error)
}

// Completer turns a query plus context into a reply, invoking tools as needed.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (Completion, error)
}
