package library

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3" // dialect registration
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

const legacyDialect = "sqlite3"

// LegacyRecord is one book from a legacy library database together with its
// current borrower, if the book is checked out.
type LegacyRecord struct {
	Book     Book
	Borrower *Student
}

type legacyBookRow struct {
	Title        string         `db:"title"`
	Author       string         `db:"author"`
	Available    bool           `db:"available"`
	BorrowerID   sql.NullInt64  `db:"borrower_id"`
	BorrowerName sql.NullString `db:"borrower_name"`
}

// LegacyDatabase reads the SQLite library database written by older
// releases (tables books and members). It never writes to the file.
type LegacyDatabase struct {
	db *sqlx.DB
}

// OpenLegacyDatabase opens the database at path read-only.
func OpenLegacyDatabase(path string) (*LegacyDatabase, error) {
	// sqlite would create a missing file; refuse instead.
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("stat legacy db: %w", err)
	}

	dsn, err := legacyDSN(path)
	if err != nil {
		return nil, err
	}
	db, err := sqlx.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	return &LegacyDatabase{db: db}, nil
}

// legacyDSN builds a read-only sqlite URI for path with its characters
// percent-encoded, so '?', '#' and '%' in file names stay part of the path.
func legacyDSN(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve legacy db path: %w", err)
	}
	u := url.URL{
		Scheme:   "file",
		Path:     filepath.ToSlash(abs),
		RawQuery: "mode=ro&_busy_timeout=5000",
	}
	return u.String(), nil
}

// Close closes the DB.
func (d *LegacyDatabase) Close() error { return d.db.Close() }

// Records returns every book in id order.
func (d *LegacyDatabase) Records(ctx context.Context) ([]LegacyRecord, error) {
	query, err := buildLegacySelect()
	if err != nil {
		return nil, err
	}

	var rows []legacyBookRow
	if err := d.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("query legacy books: %w", err)
	}

	records := make([]LegacyRecord, 0, len(rows))
	for _, row := range rows {
		rec := LegacyRecord{Book: Book{Title: row.Title, Author: row.Author}}
		if !row.Available && row.BorrowerID.Valid {
			s := studentFromMember(row.BorrowerID.Int64, row.BorrowerName.String)
			rec.Borrower = &s
		}
		records = append(records, rec)
	}
	return records, nil
}

func buildLegacySelect() (string, error) {
	query, _, err := goqu.Dialect(legacyDialect).
		From(goqu.T("books").As("b")).
		LeftJoin(
			goqu.T("members").As("m"),
			goqu.On(goqu.I("m.id").Eq(goqu.I("b.borrower_id"))),
		).
		Select(
			goqu.I("b.title").As("title"),
			goqu.I("b.author").As("author"),
			goqu.I("b.available").As("available"),
			goqu.I("b.borrower_id").As("borrower_id"),
			goqu.I("m.name").As("borrower_name"),
		).
		Order(goqu.I("b.id").Asc()).
		ToSQL()
	if err != nil {
		return "", fmt.Errorf("build legacy query: %w", err)
	}
	return query, nil
}

// studentFromMember maps a legacy member to a Student: the first word of the
// name is the given name, the remainder the surname, and the member id the
// personal number.
func studentFromMember(id int64, name string) Student {
	s := Student{PersonalNumber: strconv.FormatInt(id, 10)}
	fields := strings.Fields(name)
	if len(fields) > 0 {
		s.Name = fields[0]
		s.Surname = strings.Join(fields[1:], " ")
	}
	return s
}
