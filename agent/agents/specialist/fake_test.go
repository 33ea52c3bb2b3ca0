package specialist

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	contractx "github.com/tanpawarit/Chative-Multi-Agent-Support/agent/contract"
	memoryx "github.com/tanpawarit/Chative-Multi-Agent-Support/agent/memory"
	promptx "github.com/tanpawarit/Chative-Multi-Agent-Support/agent/prompt"
	statex "github.com/tanpawarit/Chative-Multi-Agent-Support/agent/state"
)

// fakeCompleter returns canned replies. A non-nil run overrides them and can
// call the request's tools the way a real completion loop would.
type fakeCompleter struct {
	mu       sync.Mutex
	replies  []string
	err      error
	run      func(ctx context.Context, req contractx.CompletionRequest) (contractx.Completion, error)
	requests []contractx.CompletionRequest
}

func (f *fakeCompleter) Complete(ctx context.Context, req contractx.CompletionRequest) (contractx.Completion, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.requests = append(f.requests, req)
	if f.run != nil {
		return f.run(ctx, req)
	}
	if f.err != nil {
		return contractx.Completion{}, f.err
	}
	if len(f.replies) == 0 {
		return contractx.Completion{}, errors.New("no fake reply left")
	}
	reply := f.replies[0]
	f.replies = f.replies[1:]
	return contractx.Completion{Content: reply}, nil
}

func (f *fakeCompleter) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func (f *fakeCompleter) lastRequest() contractx.CompletionRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[len(f.requests)-1]
}

func invokeTool(ctx context.Context, req contractx.CompletionRequest, name string, args map[string]any) contractx.ToolResult {
	for _, t := range req.Tools {
		if t.Name == name {
			return t.Invoke(ctx, args)
		}
	}
	return contractx.ToolResult{Tool: name, Error: "missing"}
}

type fakeDataService struct {
	mu          sync.Mutex
	customers   map[string]*contractx.Customer
	invoices    map[string]*contractx.Invoice
	albums      map[string][]contractx.Album
	customerErr error
	calls       int
}

func (f *fakeDataService) hit() {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
}

func (f *fakeDataService) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeDataService) AlbumsByArtist(ctx context.Context, artist string) ([]contractx.Album, error) {
	f.hit()
	return f.albums[artist], nil
}

func (f *fakeDataService) ArtistsByGenre(ctx context.Context, genre string) ([]contractx.Artist, error) {
	f.hit()
	return nil, nil
}

func (f *fakeDataService) TopTracksByArtist(ctx context.Context, artist string) ([]contractx.Track, error) {
	f.hit()
	return nil, nil
}

func (f *fakeDataService) CustomerByID(ctx context.Context, customerID string) (*contractx.Customer, error) {
	f.hit()
	if f.customerErr != nil {
		return nil, f.customerErr
	}
	c, ok := f.customers[customerID]
	if !ok {
		return nil, fmt.Errorf("customer %s: %w", customerID, contractx.ErrNotFound)
	}
	return c, nil
}

func (f *fakeDataService) InvoiceByID(ctx context.Context, invoiceID string) (*contractx.Invoice, error) {
	f.hit()
	inv, ok := f.invoices[invoiceID]
	if !ok {
		return nil, fmt.Errorf("invoice %s: %w", invoiceID, contractx.ErrNotFound)
	}
	return inv, nil
}

func (f *fakeDataService) PurchaseHistory(ctx context.Context, customerID string) ([]contractx.Purchase, error) {
	f.hit()
	return []contractx.Purchase{}, nil
}

// failingProfiles fails every call.
type failingProfiles struct{}

var errProfileStoreDown = errors.New("profile store down")

func (failingProfiles) Get(context.Context, string, string) (contractx.Preferences, error) {
	return nil, errProfileStoreDown
}

func (failingProfiles) Put(context.Context, string, string, contractx.Preferences) error {
	return errProfileStoreDown
}

func (failingProfiles) Update(context.Context, string, string, memoryx.UpdateFunc) (contractx.Preferences, error) {
	return nil, errProfileStoreDown
}

func (failingProfiles) Delete(context.Context, string, string) error {
	return errProfileStoreDown
}

func newTestData() *fakeDataService {
	return &fakeDataService{
		customers: map[string]*contractx.Customer{
			"42": {ID: 42, Name: "Luís Gonçalves", Email: "luisg@embraer.com.br"},
			"7":  {ID: 7, Name: "Astrid Gruber", Email: "astrid.gruber@apple.at"},
		},
		invoices: map[string]*contractx.Invoice{
			"98":  {ID: 98, CustomerID: 42, Total: 3.98},
			"121": {ID: 121, CustomerID: 7, Total: 1.98},
		},
		albums: map[string][]contractx.Album{
			"Nirvana": {
				{ID: 1, Title: "Nevermind", Artist: "Nirvana"},
				{ID: 2, Title: "In Utero", Artist: "Nirvana"},
			},
		},
	}
}

type testEnv struct {
	data        *fakeDataService
	completer   *fakeCompleter
	profiles    *memoryx.InMemoryStore
	checkpoints *statex.MemoryStore
	registry    *Registry
}

func newTestEnv(t *testing.T, completer *fakeCompleter, merge bool) *testEnv {
	t.Helper()

	env := &testEnv{
		data:        newTestData(),
		completer:   completer,
		profiles:    memoryx.NewInMemoryStore(),
		checkpoints: statex.NewMemoryStore(),
	}
	reg, err := NewRegistry(Deps{
		Data:          env.data,
		Completer:     completer,
		Profiles:      env.profiles,
		Checkpoints:   env.checkpoints,
		Prompts:       promptx.LoadPromptSet(),
		MergeProfiles: merge,
		Now:           func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) },
	})
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}
	env.registry = reg
	return env
}

func testPrompts() promptx.PromptSet {
	return promptx.LoadPromptSet()
}
