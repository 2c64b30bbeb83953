// Package export flattens contact inquiries into the CSV format admins
// download from the dashboard.
package export

import (
	"bufio"
	"io"
	"strings"
	"time"

	"github.com/vermahardware/storefront/internal/core/domain"
)

// HeaderStyle selects the header row.
type HeaderStyle int

const (
	// HeaderFields is "name,email,message,createdAt".
	HeaderFields HeaderStyle = iota
	// HeaderDisplay is "Name,Email,Message,Date".
	HeaderDisplay
)

var headers = map[HeaderStyle]string{
	HeaderFields:  "name,email,message,createdAt",
	HeaderDisplay: "Name,Email,Message,Date",
}

var lineBreaks = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ")

// WriteContacts writes one header line plus one line per contact. Every field
// is double-quoted with embedded quotes doubled. Line breaks inside a field
// are folded to a space so each record stays on one line.
func WriteContacts(w io.Writer, contacts []domain.Contact, style HeaderStyle) error {
	header, ok := headers[style]
	if !ok {
		header = headers[HeaderFields]
	}

	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(header); err != nil {
		return err
	}
	for _, c := range contacts {
		row := []string{
			c.Name,
			c.Email,
			c.Message,
			c.CreatedAt.UTC().Format(time.RFC3339),
		}
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
		for i, field := range row {
			if i > 0 {
				if err := bw.WriteByte(','); err != nil {
					return err
				}
			}
			if _, err := bw.WriteString(quote(field)); err != nil {
				return err
			}
		}
	}
	return bw.Flush()
}

// Filename returns the download name for an export taken at t.
func Filename(t time.Time) string {
	return "contacts-" + t.UTC().Format("2006-01-02") + ".csv"
}

func quote(field string) string {
	field = lineBreaks.Replace(field)
	return `"` + strings.ReplaceAll(field, `"`, `""`) + `"`
}
