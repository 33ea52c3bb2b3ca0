package chinook

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/uptrace/bun"
)

var fixtureStatements = []string{
	`CREATE TABLE "Artist" ("ArtistId" INTEGER PRIMARY KEY, "Name" NVARCHAR(120))`,
	`CREATE TABLE "Genre" ("GenreId" INTEGER PRIMARY KEY, "Name" NVARCHAR(120))`,
	`CREATE TABLE "Album" ("AlbumId" INTEGER PRIMARY KEY, "Title" NVARCHAR(160) NOT NULL, "ArtistId" INTEGER NOT NULL)`,
	`CREATE TABLE "Track" ("TrackId" INTEGER PRIMARY KEY, "Name" NVARCHAR(200) NOT NULL, "AlbumId" INTEGER, "GenreId" INTEGER)`,
	`CREATE TABLE "Customer" ("CustomerId" INTEGER PRIMARY KEY, "FirstName" NVARCHAR(40) NOT NULL, "LastName" NVARCHAR(20) NOT NULL,
		"Company" NVARCHAR(80), "Phone" NVARCHAR(24), "Email" NVARCHAR(60) NOT NULL)`,
	`CREATE TABLE "Invoice" ("InvoiceId" INTEGER PRIMARY KEY, "CustomerId" INTEGER NOT NULL, "InvoiceDate" DATETIME NOT NULL,
		"BillingAddress" NVARCHAR(70), "Total" NUMERIC(10,2) NOT NULL)`,
	`CREATE TABLE "InvoiceLine" ("InvoiceLineId" INTEGER PRIMARY KEY, "InvoiceId" INTEGER NOT NULL, "TrackId" INTEGER NOT NULL,
		"UnitPrice" NUMERIC(10,2) NOT NULL, "Quantity" INTEGER NOT NULL)`,

	`INSERT INTO "Artist" VALUES (1, 'AC/DC'), (2, 'Nirvana'), (3, 'Miles Davis'), (4, '100%_Pure')`,
	`INSERT INTO "Genre" VALUES (1, 'Rock'), (2, 'Jazz')`,
	`INSERT INTO "Album" VALUES
		(1, 'For Those About To Rock We Salute You', 1),
		(2, 'Let There Be Rock', 1),
		(3, 'Nevermind', 2),
		(4, 'Kind of Blue', 3),
		(5, 'Pure Album', 4)`,
	`INSERT INTO "Track" VALUES
		(1, 'Smells Like Teen Spirit', 3, 1),
		(2, 'Come As You Are', 3, 1),
		(3, 'Lithium', 3, 1),
		(4, 'So What', 4, 2),
		(5, 'Let There Be Rock', 2, 1),
		(6, 'Pure Track', 5, 2)`,
	`INSERT INTO "Customer" VALUES
		(1, 'Luís', 'Gonçalves', 'Embraer', '+55 (12) 3923-5555', 'luisg@embraer.com.br'),
		(2, 'Leonie', 'Köhler', NULL, '+49 0711 2842222', 'leonekohler@surfeu.de')`,
	`INSERT INTO "Invoice" VALUES
		(1, 1, '2009-01-01 00:00:00', 'Theodor-Heuss-Straße 34', 3.96),
		(2, 1, '2010-03-11 00:00:00', 'Theodor-Heuss-Straße 34', 1.98),
		(3, 2, '2011-05-05 00:00:00', 'Grevenmacherweg 2', 0.99)`,
	`INSERT INTO "InvoiceLine" VALUES
		(1, 1, 2, 0.99, 2),
		(2, 1, 1, 0.99, 2),
		(3, 2, 2, 0.99, 2),
		(4, 3, 2, 0.99, 1)`,
}

func openFixtureDB(t *testing.T) *bun.DB {
	t.Helper()

	ctx := context.Background()
	db, err := Open(ctx, Config{
		Driver: DriverSQLite,
		DSN:    filepath.Join(t.TempDir(), "chinook.db"),
	})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	for _, stmt := range fixtureStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			t.Fatalf("seed fixture: %v\n%s", err, stmt)
		}
	}
	return db
}
