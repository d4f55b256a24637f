// Package resume extracts plain text and contact fields from uploaded
// resumes. Only PDF is parsed; other formats are rejected at the handler.
package resume

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"
)

var (
	emailRe = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-z]{2,}`)
	phoneRe = regexp.MustCompile(`\+?\d{10,15}`)
)

// Contact holds the fields extracted from resume text. Missing fields are
// empty strings; the caller decides how to present them.
type Contact struct {
	Name  string
	Email string
	Phone string
}

// ExtractText pulls the plain text out of a PDF document.
func ExtractText(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}

	var sb strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			// A single unreadable page should not sink the whole resume.
			continue
		}
		sb.WriteString(text)
		sb.WriteString(" ")
	}

	out := strings.TrimSpace(sb.String())
	if out == "" {
		return "", fmt.Errorf("no extractable text in pdf")
	}
	return out, nil
}

// ExtractContact pulls name, email, and phone from resume text. The name
// heuristic takes the first three words of the document, which is where
// resumes almost always put it.
func ExtractContact(text string) Contact {
	c := Contact{
		Email: emailRe.FindString(text),
		Phone: phoneRe.FindString(text),
	}

	words := strings.Fields(text)
	if len(words) > 3 {
		words = words[:3]
	}
	c.Name = strings.TrimSpace(strings.Join(words, " "))

	return c
}
