package chinook

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	contractx "github.com/tanpawarit/Chative-Multi-Agent-Support/agent/contract"
	"github.com/uptrace/bun"
)

const (
	topTracksLimit       = 10
	purchaseHistoryLimit = 10
	likeEscape           = "!"
)

var _ contractx.DataService = (*Service)(nil)

// Service answers catalog and billing lookups against the Chinook schema.
// Name lookups are case-insensitive substring matches; id lookups are exact.
type Service struct {
	db bun.IDB
}

func NewService(db bun.IDB) *Service {
	return &Service{db: db}
}

type albumRow struct {
	ID     int64  `bun:"id"`
	Title  string `bun:"title"`
	Artist string `bun:"artist"`
}

type artistRow struct {
	ID   int64  `bun:"id"`
	Name string `bun:"name"`
}

type trackRow struct {
	ID        int64  `bun:"id"`
	Name      string `bun:"name"`
	Album     string `bun:"album"`
	Purchases int64  `bun:"purchases"`
}

type customerRow struct {
	ID        int64          `bun:"id"`
	FirstName string         `bun:"first_name"`
	LastName  string         `bun:"last_name"`
	Email     string         `bun:"email"`
	Phone     sql.NullString `bun:"phone"`
	Company   sql.NullString `bun:"company"`
}

type invoiceRow struct {
	ID         int64           `bun:"id"`
	CustomerID int64           `bun:"customer_id"`
	Date       time.Time       `bun:"date"`
	Address    sql.NullString  `bun:"address"`
	Total      sql.NullFloat64 `bun:"total"`
}

// NUMERIC columns may surface as int64, float64 or text depending on the
// driver, so totals go through database/sql conversion.
type purchaseRow struct {
	ID    int64           `bun:"id"`
	Date  time.Time       `bun:"date"`
	Total sql.NullFloat64 `bun:"total"`
}

func (s *Service) AlbumsByArtist(ctx context.Context, artist string) ([]contractx.Album, error) {
	var rows []albumRow
	err := s.db.NewSelect().
		ColumnExpr(`al."AlbumId" AS id`).
		ColumnExpr(`al."Title" AS title`).
		ColumnExpr(`ar."Name" AS artist`).
		TableExpr(`"Album" AS al`).
		Join(`JOIN "Artist" AS ar ON ar."ArtistId" = al."ArtistId"`).
		Where(`LOWER(ar."Name") LIKE LOWER(?) ESCAPE '`+likeEscape+`'`, containsPattern(artist)).
		OrderExpr(`al."AlbumId" ASC`).
		Scan(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("%w: albums by artist: %v", contractx.ErrDataService, err)
	}

	out := make([]contractx.Album, 0, len(rows))
	for _, r := range rows {
		out = append(out, contractx.Album{ID: r.ID, Title: r.Title, Artist: r.Artist})
	}
	return out, nil
}

func (s *Service) ArtistsByGenre(ctx context.Context, genre string) ([]contractx.Artist, error) {
	var rows []artistRow
	err := s.db.NewSelect().
		Distinct().
		ColumnExpr(`ar."ArtistId" AS id`).
		ColumnExpr(`ar."Name" AS name`).
		TableExpr(`"Artist" AS ar`).
		Join(`JOIN "Album" AS al ON al."ArtistId" = ar."ArtistId"`).
		Join(`JOIN "Track" AS t ON t."AlbumId" = al."AlbumId"`).
		Join(`JOIN "Genre" AS g ON g."GenreId" = t."GenreId"`).
		Where(`LOWER(g."Name") LIKE LOWER(?) ESCAPE '`+likeEscape+`'`, containsPattern(genre)).
		OrderExpr(`name ASC`).
		Scan(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("%w: artists by genre: %v", contractx.ErrDataService, err)
	}

	out := make([]contractx.Artist, 0, len(rows))
	for _, r := range rows {
		out = append(out, contractx.Artist{ID: r.ID, Name: r.Name})
	}
	return out, nil
}

// TopTracksByArtist ranks an artist's tracks by how many invoice lines sold them.
func (s *Service) TopTracksByArtist(ctx context.Context, artist string) ([]contractx.Track, error) {
	var rows []trackRow
	err := s.db.NewSelect().
		ColumnExpr(`t."TrackId" AS id`).
		ColumnExpr(`t."Name" AS name`).
		ColumnExpr(`al."Title" AS album`).
		ColumnExpr(`COUNT(il."InvoiceLineId") AS purchases`).
		TableExpr(`"Track" AS t`).
		Join(`JOIN "Album" AS al ON al."AlbumId" = t."AlbumId"`).
		Join(`JOIN "Artist" AS ar ON ar."ArtistId" = al."ArtistId"`).
		Join(`LEFT JOIN "InvoiceLine" AS il ON il."TrackId" = t."TrackId"`).
		Where(`LOWER(ar."Name") LIKE LOWER(?) ESCAPE '`+likeEscape+`'`, containsPattern(artist)).
		GroupExpr(`t."TrackId", t."Name", al."Title"`).
		OrderExpr(`purchases DESC`).
		OrderExpr(`t."TrackId" ASC`).
		Limit(topTracksLimit).
		Scan(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("%w: top tracks: %v", contractx.ErrDataService, err)
	}

	out := make([]contractx.Track, 0, len(rows))
	for _, r := range rows {
		out = append(out, contractx.Track{ID: r.ID, Name: r.Name, Album: r.Album, Purchases: r.Purchases})
	}
	return out, nil
}

func (s *Service) CustomerByID(ctx context.Context, customerID string) (*contractx.Customer, error) {
	id, ok := parseID(customerID)
	if !ok {
		return nil, fmt.Errorf("customer %q: %w", customerID, contractx.ErrNotFound)
	}

	var row customerRow
	err := s.db.NewSelect().
		ColumnExpr(`"CustomerId" AS id`).
		ColumnExpr(`"FirstName" AS first_name`).
		ColumnExpr(`"LastName" AS last_name`).
		ColumnExpr(`"Email" AS email`).
		ColumnExpr(`"Phone" AS phone`).
		ColumnExpr(`"Company" AS company`).
		TableExpr(`"Customer"`).
		Where(`"CustomerId" = ?`, id).
		Limit(1).
		Scan(ctx, &row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("customer %d: %w", id, contractx.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: customer by id: %v", contractx.ErrDataService, err)
	}

	return &contractx.Customer{
		ID:      row.ID,
		Name:    strings.TrimSpace(row.FirstName + " " + row.LastName),
		Email:   row.Email,
		Phone:   row.Phone.String,
		Company: row.Company.String,
	}, nil
}

func (s *Service) InvoiceByID(ctx context.Context, invoiceID string) (*contractx.Invoice, error) {
	id, ok := parseID(invoiceID)
	if !ok {
		return nil, fmt.Errorf("invoice %q: %w", invoiceID, contractx.ErrNotFound)
	}

	var row invoiceRow
	err := s.db.NewSelect().
		ColumnExpr(`"InvoiceId" AS id`).
		ColumnExpr(`"CustomerId" AS customer_id`).
		ColumnExpr(`"InvoiceDate" AS date`).
		ColumnExpr(`"BillingAddress" AS address`).
		ColumnExpr(`"Total" AS total`).
		TableExpr(`"Invoice"`).
		Where(`"InvoiceId" = ?`, id).
		Limit(1).
		Scan(ctx, &row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("invoice %d: %w", id, contractx.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: invoice by id: %v", contractx.ErrDataService, err)
	}

	return &contractx.Invoice{
		ID:         row.ID,
		CustomerID: row.CustomerID,
		Date:       row.Date.UTC(),
		Address:    row.Address.String,
		Total:      roundCents(row.Total.Float64),
	}, nil
}

// PurchaseHistory lists the customer's most recent invoices, newest first,
// with totals summed from their invoice lines.
func (s *Service) PurchaseHistory(ctx context.Context, customerID string) ([]contractx.Purchase, error) {
	id, ok := parseID(customerID)
	if !ok {
		return []contractx.Purchase{}, nil
	}

	var rows []purchaseRow
	err := s.db.NewSelect().
		ColumnExpr(`i."InvoiceId" AS id`).
		ColumnExpr(`i."InvoiceDate" AS date`).
		ColumnExpr(`SUM(il."UnitPrice" * il."Quantity") AS total`).
		TableExpr(`"Invoice" AS i`).
		Join(`JOIN "InvoiceLine" AS il ON il."InvoiceId" = i."InvoiceId"`).
		Where(`i."CustomerId" = ?`, id).
		GroupExpr(`i."InvoiceId", i."InvoiceDate"`).
		OrderExpr(`i."InvoiceDate" DESC`).
		OrderExpr(`i."InvoiceId" DESC`).
		Limit(purchaseHistoryLimit).
		Scan(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("%w: purchase history: %v", contractx.ErrDataService, err)
	}

	out := make([]contractx.Purchase, 0, len(rows))
	for _, r := range rows {
		out = append(out, contractx.Purchase{ID: r.ID, Date: r.Date.UTC(), Total: roundCents(r.Total.Float64)})
	}
	return out, nil
}

func parseID(raw string) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// containsPattern builds a LIKE pattern matching raw anywhere, with the
// wildcard characters in raw matched literally.
func containsPattern(raw string) string {
	r := strings.NewReplacer(likeEscape, likeEscape+likeEscape, "%", likeEscape+"%", "_", likeEscape+"_")
	return "%" + r.Replace(strings.TrimSpace(raw)) + "%"
}

func roundCents(v float64) float64 {
	if v < 0 {
		return -roundCents(-v)
	}
	return float64(int64(v*100+0.5)) / 100
}
