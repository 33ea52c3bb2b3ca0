package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	contractx "github.com/tanpawarit/Chative-Multi-Agent-Support/agent/contract"
)

type fakeToolCallingModel struct {
	mu        sync.Mutex
	responses []*schema.Message
	err       error
	idx       int
	inputs    [][]*schema.Message
	boundTool []*schema.ToolInfo
}

func (f *fakeToolCallingModel) Generate(ctx context.Context, input []*schema.Message, opts ...einomodel.Option) (*schema.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.inputs = append(f.inputs, append([]*schema.Message(nil), input...))
	if f.err != nil {
		return nil, f.err
	}
	if f.idx >= len(f.responses) {
		return nil, errors.New("no fake response left")
	}
	msg := f.responses[f.idx]
	f.idx++
	return msg, nil
}

func (f *fakeToolCallingModel) Stream(ctx context.Context, input []*schema.Message, opts ...einomodel.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("stream not implemented in fake model")
}

func (f *fakeToolCallingModel) WithTools(tools []*schema.ToolInfo) (einomodel.ToolCallingChatModel, error) {
	f.boundTool = tools
	return f, nil
}

func toolCallMessage(id, name, args string) *schema.Message {
	return &schema.Message{
		Role: schema.Assistant,
		ToolCalls: []schema.ToolCall{
			{
				ID:   id,
				Type: "function",
				Function: schema.FunctionCall{
					Name:      name,
					Arguments: args,
				},
			},
		},
	}
}

type fakeMusicService struct {
	artists []string
}

func (f *fakeMusicService) AlbumsByArtist(ctx context.Context, artist string) ([]contractx.Album, error) {
	f.artists = append(f.artists, artist)
	return []contractx.Album{{ID: 1, Title: "Back in Black", Artist: artist}}, nil
}

func (f *fakeMusicService) ArtistsByGenre(ctx context.Context, genre string) ([]contractx.Artist, error) {
	return nil, nil
}

func (f *fakeMusicService) TopTracksByArtist(ctx context.Context, artist string) ([]contractx.Track, error) {
	return nil, nil
}

func (f *fakeMusicService) CustomerByID(ctx context.Context, customerID string) (*contractx.Customer, error) {
	return nil, fmt.Errorf("customer %s: %w", customerID, contractx.ErrNotFound)
}

func (f *fakeMusicService) InvoiceByID(ctx context.Context, invoiceID string) (*contractx.Invoice, error) {
	return nil, fmt.Errorf("invoice %s: %w", invoiceID, contractx.ErrNotFound)
}

func (f *fakeMusicService) PurchaseHistory(ctx context.Context, customerID string) ([]contractx.Purchase, error) {
	return nil, nil
}

func contains(haystack, needle string) bool {
	return strings.Contains(haystack, needle)
}
