package tool

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	contractx "github.com/tanpawarit/Chative-Multi-Agent-Support/agent/contract"
)

const (
	GetAlbumsByArtist  = "get_albums_by_artist"
	GetArtistsByGenre  = "get_artists_by_genre"
	GetTopTracks       = "get_top_tracks"
	GetCustomerInfo    = "get_customer_info"
	GetInvoiceDetails  = "get_invoice_details"
	GetPurchaseHistory = "get_purchase_history"
)

const (
	errNotFound    = "not found"
	errUnavailable = "data service unavailable"
)

// MusicTools returns the catalog lookups of the music agent, in a fixed order.
func MusicTools(svc contractx.DataService) []contractx.ToolDescriptor {
	return []contractx.ToolDescriptor{
		{
			Name:        GetAlbumsByArtist,
			Description: "Get albums by an artist. Matches artist names case-insensitively by substring.",
			Params:      []contractx.ToolParam{{Name: "artist", Desc: "Artist name or part of it"}},
			Invoke: func(ctx context.Context, args map[string]any) contractx.ToolResult {
				artist, err := StringArg(args, "artist")
				if err != nil {
					return failure(GetAlbumsByArtist, err)
				}
				albums, err := svc.AlbumsByArtist(ctx, artist)
				if err != nil {
					return failure(GetAlbumsByArtist, err)
				}
				return success(GetAlbumsByArtist, map[string]any{"albums": albums})
			},
		},
		{
			Name:        GetArtistsByGenre,
			Description: "Get artists who have tracks in a music genre.",
			Params:      []contractx.ToolParam{{Name: "genre", Desc: "Genre name, for example Rock or Jazz"}},
			Invoke: func(ctx context.Context, args map[string]any) contractx.ToolResult {
				genre, err := StringArg(args, "genre")
				if err != nil {
					return failure(GetArtistsByGenre, err)
				}
				artists, err := svc.ArtistsByGenre(ctx, genre)
				if err != nil {
					return failure(GetArtistsByGenre, err)
				}
				return success(GetArtistsByGenre, map[string]any{"artists": artists})
			},
		},
		{
			Name:        GetTopTracks,
			Description: "Get the ten best-selling tracks of an artist.",
			Params:      []contractx.ToolParam{{Name: "artist", Desc: "Artist name or part of it"}},
			Invoke: func(ctx context.Context, args map[string]any) contractx.ToolResult {
				artist, err := StringArg(args, "artist")
				if err != nil {
					return failure(GetTopTracks, err)
				}
				tracks, err := svc.TopTracksByArtist(ctx, artist)
				if err != nil {
					return failure(GetTopTracks, err)
				}
				return success(GetTopTracks, map[string]any{"tracks": tracks})
			},
		},
	}
}

// InvoiceTools returns the billing lookups of the invoice agent. When
// customerID is set every lookup is pinned to that customer: customer_id
// arguments are ignored and invoices of other customers read as not found.
func InvoiceTools(svc contractx.DataService, customerID string) []contractx.ToolDescriptor {
	pinned := strings.TrimSpace(customerID)

	resolveCustomer := func(args map[string]any) (string, error) {
		if pinned != "" {
			return pinned, nil
		}
		return StringArg(args, "customer_id")
	}

	return []contractx.ToolDescriptor{
		{
			Name:        GetCustomerInfo,
			Description: "Get contact information of the customer.",
			Params:      []contractx.ToolParam{{Name: "customer_id", Desc: "Numeric customer id"}},
			Invoke: func(ctx context.Context, args map[string]any) contractx.ToolResult {
				id, err := resolveCustomer(args)
				if err != nil {
					return failure(GetCustomerInfo, err)
				}
				customer, err := svc.CustomerByID(ctx, id)
				if err != nil {
					return failure(GetCustomerInfo, err)
				}
				return success(GetCustomerInfo, customer)
			},
		},
		{
			Name:        GetInvoiceDetails,
			Description: "Get date, billing address and total of one invoice.",
			Params:      []contractx.ToolParam{{Name: "invoice_id", Desc: "Numeric invoice id"}},
			Invoke: func(ctx context.Context, args map[string]any) contractx.ToolResult {
				invoiceID, err := StringArg(args, "invoice_id")
				if err != nil {
					return failure(GetInvoiceDetails, err)
				}
				invoice, err := svc.InvoiceByID(ctx, invoiceID)
				if err != nil {
					return failure(GetInvoiceDetails, err)
				}
				if pinned != "" && !sameCustomer(invoice.CustomerID, pinned) {
					return failure(GetInvoiceDetails, fmt.Errorf("invoice %s: %w", invoiceID, contractx.ErrNotFound))
				}
				return success(GetInvoiceDetails, invoice)
			},
		},
		{
			Name:        GetPurchaseHistory,
			Description: "Get the ten most recent purchases of the customer, newest first.",
			Params:      []contractx.ToolParam{{Name: "customer_id", Desc: "Numeric customer id"}},
			Invoke: func(ctx context.Context, args map[string]any) contractx.ToolResult {
				id, err := resolveCustomer(args)
				if err != nil {
					return failure(GetPurchaseHistory, err)
				}
				purchases, err := svc.PurchaseHistory(ctx, id)
				if err != nil {
					return failure(GetPurchaseHistory, err)
				}
				return success(GetPurchaseHistory, map[string]any{"purchases": purchases})
			},
		},
	}
}

// sameCustomer compares numerically so equivalent spellings of an id match.
func sameCustomer(id int64, pinned string) bool {
	n, err := strconv.ParseInt(pinned, 10, 64)
	return err == nil && n == id
}

// Executor runs one named tool call against a fixed tool set.
type Executor func(ctx context.Context, tool string, args map[string]any) contractx.ToolResult

func NewExecutor(tools []contractx.ToolDescriptor) Executor {
	byName := make(map[string]contractx.ToolDescriptor, len(tools))
	for _, t := range tools {
		if strings.TrimSpace(t.Name) == "" || t.Invoke == nil {
			continue
		}
		byName[t.Name] = t
	}

	return func(ctx context.Context, tool string, args map[string]any) contractx.ToolResult {
		desc, ok := byName[tool]
		if !ok {
			return contractx.ToolResult{
				Tool:  tool,
				Error: fmt.Sprintf("tool=%s is unavailable", tool),
			}
		}
		if args == nil {
			args = map[string]any{}
		}
		return desc.Invoke(ctx, args)
	}
}

// StringArg reads a required scalar argument. Numbers are accepted and
// rendered without a fractional part when they are integral.
func StringArg(args map[string]any, name string) (string, error) {
	raw, ok := args[name]
	if !ok || raw == nil {
		return "", fmt.Errorf("%w: %s is required", contractx.ErrValidation, name)
	}

	var s string
	switch v := raw.(type) {
	case string:
		s = v
	case json.Number:
		s = v.String()
	case float64:
		if v == float64(int64(v)) {
			s = strconv.FormatInt(int64(v), 10)
		} else {
			s = strconv.FormatFloat(v, 'f', -1, 64)
		}
	case int:
		s = strconv.Itoa(v)
	case int64:
		s = strconv.FormatInt(v, 10)
	default:
		return "", fmt.Errorf("%w: %s must be a string", contractx.ErrValidation, name)
	}

	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("%w: %s is required", contractx.ErrValidation, name)
	}
	return s, nil
}

func success(tool string, result any) contractx.ToolResult {
	return contractx.ToolResult{Tool: tool, Result: result}
}

func failure(tool string, err error) contractx.ToolResult {
	switch {
	case errors.Is(err, contractx.ErrValidation):
		return contractx.ToolResult{Tool: tool, Error: err.Error()}
	case errors.Is(err, contractx.ErrNotFound):
		return contractx.ToolResult{Tool: tool, Error: errNotFound}
	default:
		log.Warn().Err(err).Str("tool", tool).Msg("tool invocation failed")
		return contractx.ToolResult{Tool: tool, Error: errUnavailable}
	}
}
