package library

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// ------------------ State file layout ------------------

// A state file looks like:
//
//	Books:
//	Title: <title, 30 wide> Author: <author, 20 wide>
//	Borrowed by: Name: <20 wide> Surname: <20 wide> Personal Number: <20 wide>
//	<blank>
//
// The borrower line only follows books on loan. Values that could be confused
// with the markers are written as Go quoted strings.

const (
	headerLine = "Books:"

	titleMarker          = "Title:"
	authorMarker         = "Author:"
	borrowerMarker       = "Borrowed by:"
	nameMarker           = "Name:"
	surnameMarker        = "Surname:"
	personalNumberMarker = "Personal Number:"

	titleLineFormat    = "Title: %-30s Author: %-20s\n"
	borrowerLineFormat = "Borrowed by: Name: %-20s Surname: %-20s Personal Number: %-20s\n"
)

// ------------------ Encoding ------------------

// Encode writes the catalog in the state file format.
func (c *Catalog) Encode(w io.Writer) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(headerLine + "\n"); err != nil {
		return err
	}
	for _, b := range c.books {
		if _, err := fmt.Fprintf(bw, titleLineFormat, encodeField(b.Title), encodeField(b.Author)); err != nil {
			return err
		}
		if s, ok := c.loans[b]; ok {
			if _, err := fmt.Fprintf(bw, borrowerLineFormat,
				encodeField(s.Name), encodeField(s.Surname), encodeField(s.PersonalNumber)); err != nil {
				return err
			}
		}
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// SaveState writes the catalog to path. The file is replaced atomically, so
// a failed save leaves any previous state file intact.
func (c *Catalog) SaveState(path string) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("%w: create temp file: %w", ErrStateIO, err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if err = c.Encode(tmp); err != nil {
		return fmt.Errorf("%w: write %s: %w", ErrStateIO, path, err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("%w: sync %s: %w", ErrStateIO, path, err)
	}
	if err = tmp.Chmod(0o644); err != nil {
		return fmt.Errorf("%w: chmod %s: %w", ErrStateIO, path, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("%w: close %s: %w", ErrStateIO, path, err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("%w: replace %s: %w", ErrStateIO, path, err)
	}
	return nil
}

// LoadState replaces the catalog with the contents of path. On failure the
// catalog is left unchanged.
func (c *Catalog) LoadState(path string) error {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("%w: open %s: %w", ErrStateIO, path, err)
	}
	defer f.Close()

	loaded, err := DecodeCatalog(f)
	if err != nil {
		return err
	}
	c.books, c.loans = loaded.books, loaded.loans
	return nil
}

// ------------------ Decoding ------------------

type parseState int

const (
	seekingHeader parseState = iota
	inBooks
	done
)

// DecodeCatalog reads a catalog in the state file format. Content before the
// Books: header and lines that are neither title nor borrower lines are
// ignored; input without a header yields an empty catalog.
func DecodeCatalog(r io.Reader) (*Catalog, error) {
	c := NewCatalog()
	br := bufio.NewReader(r)
	state := seekingHeader
	lineNo := 0

	for state != done {
		raw, readErr := br.ReadString('\n')
		if readErr != nil && !errors.Is(readErr, io.EOF) {
			return nil, fmt.Errorf("%w: read line %d: %w", ErrStateIO, lineNo+1, readErr)
		}
		if raw == "" && readErr != nil {
			state = done
			continue
		}
		lineNo++
		line := strings.TrimSpace(raw)

		switch {
		case line == headerLine:
			state = inBooks
		case state != inBooks:
			// preamble before the header
		case strings.HasPrefix(line, titleMarker):
			b, err := parseTitleLine(line)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: %w", ErrCorruptRecord, lineNo, err)
			}
			c.AddBook(b)
		case strings.HasPrefix(line, borrowerMarker):
			s, err := parseBorrowerLine(line)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: %w", ErrCorruptRecord, lineNo, err)
			}
			if len(c.books) == 0 {
				return nil, fmt.Errorf("%w: line %d: borrower without a preceding title", ErrCorruptRecord, lineNo)
			}
			c.loans[c.books[len(c.books)-1]] = s
		}

		if readErr != nil {
			state = done
		}
	}
	return c, nil
}

func parseTitleLine(line string) (Book, error) {
	var b Book
	rest := line[len(titleMarker):]
	var err error
	if b.Title, rest, err = nextField(rest, authorMarker); err != nil {
		return Book{}, fmt.Errorf("title: %w", err)
	}
	if b.Author, _, err = nextField(rest, ""); err != nil {
		return Book{}, fmt.Errorf("author: %w", err)
	}
	return b, nil
}

func parseBorrowerLine(line string) (Student, error) {
	var s Student
	rest := strings.TrimLeft(line[len(borrowerMarker):], " \t")
	if !strings.HasPrefix(rest, nameMarker) {
		return Student{}, fmt.Errorf("missing %q", nameMarker)
	}
	rest = rest[len(nameMarker):]

	var err error
	if s.Name, rest, err = nextField(rest, surnameMarker); err != nil {
		return Student{}, fmt.Errorf("name: %w", err)
	}
	if s.Surname, rest, err = nextField(rest, personalNumberMarker); err != nil {
		return Student{}, fmt.Errorf("surname: %w", err)
	}
	if s.PersonalNumber, _, err = nextField(rest, ""); err != nil {
		return Student{}, fmt.Errorf("personal number: %w", err)
	}
	return s, nil
}

// nextField reads one value from s and consumes the marker that follows it.
// An empty marker means the value runs to the end of the line.
func nextField(s, marker string) (value, rest string, err error) {
	s = strings.TrimLeft(s, " \t")

	if strings.HasPrefix(s, `"`) {
		quoted, err := strconv.QuotedPrefix(s)
		if err != nil {
			return "", "", fmt.Errorf("bad quoted value: %w", err)
		}
		value, err = strconv.Unquote(quoted)
		if err != nil {
			return "", "", fmt.Errorf("bad quoted value: %w", err)
		}
		rest = strings.TrimLeft(s[len(quoted):], " \t")
		if marker == "" {
			if rest != "" {
				return "", "", fmt.Errorf("unexpected text %q after value", rest)
			}
			return value, "", nil
		}
		if !strings.HasPrefix(rest, marker) {
			return "", "", fmt.Errorf("missing %q", marker)
		}
		return value, rest[len(marker):], nil
	}

	if marker == "" {
		return strings.TrimSpace(s), "", nil
	}
	i := strings.Index(s, marker)
	if i < 0 {
		return "", "", fmt.Errorf("missing %q", marker)
	}
	return strings.TrimSpace(s[:i]), s[i+len(marker):], nil
}

// encodeField quotes v when it could not be read back bare.
func encodeField(v string) string {
	if needsQuoting(v) {
		return strconv.Quote(v)
	}
	return v
}

func needsQuoting(v string) bool {
	if v != strings.TrimSpace(v) || strings.ContainsAny(v, `:"`) || !utf8.ValidString(v) {
		return true
	}
	return strings.ContainsFunc(v, func(r rune) bool { return !unicode.IsPrint(r) })
}
