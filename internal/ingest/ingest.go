// Package ingest extracts plain text from the documents the CLI and API accept.
package ingest

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
)

// ErrUnsupported is returned for file types that cannot be read.
var ErrUnsupported = errors.New("unsupported file type")

// MaxBytes caps how much input is read from a file or stream.
const MaxBytes = 10 << 20

// Supported formats.
const (
	FormatText     = "text"
	FormatMarkdown = "markdown"
	FormatPDF      = "pdf"
	FormatDOCX     = "docx"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Document is extracted text plus where it came from.
type Document struct {
	Name   string
	Format string
	Text   string
}

// ReadFile extracts text from path according to its extension.
func ReadFile(path string) (*Document, error) {
	format, err := formatOf(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	defer f.Close()

	raw, err := readLimited(f)
	if err != nil {
		return nil, err
	}
	return decode(filepath.Base(path), format, raw)
}

// Read extracts plain text from r, e.g. stdin. name is used for display only.
func Read(r io.Reader, name string) (*Document, error) {
	raw, err := readLimited(r)
	if err != nil {
		return nil, err
	}
	return decode(name, FormatText, raw)
}

// Parse extracts text from raw bytes whose type is inferred from name's
// extension. It backs uploads where no file exists on disk.
func Parse(name string, raw []byte) (*Document, error) {
	format, err := formatOf(name)
	if err != nil {
		return nil, err
	}
	if len(raw) > MaxBytes {
		return nil, fmt.Errorf("input exceeds %d bytes", MaxBytes)
	}
	return decode(name, format, raw)
}

func formatOf(name string) (string, error) {
	switch ext := strings.ToLower(filepath.Ext(name)); ext {
	case "", ".txt", ".text":
		return FormatText, nil
	case ".md", ".markdown":
		return FormatMarkdown, nil
	case ".pdf":
		return FormatPDF, nil
	case ".docx":
		return FormatDOCX, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupported, ext)
	}
}

func readLimited(r io.Reader) ([]byte, error) {
	raw, err := io.ReadAll(io.LimitReader(r, MaxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	if len(raw) > MaxBytes {
		return nil, fmt.Errorf("input exceeds %d bytes", MaxBytes)
	}
	return raw, nil
}

func decode(name, format string, raw []byte) (*Document, error) {
	var (
		text string
		err  error
	)
	switch format {
	case FormatPDF:
		text, err = parsePDF(raw)
	case FormatDOCX:
		text, err = parseDOCX(raw)
	default:
		text, err = parsePlain(raw)
	}
	if err != nil {
		return nil, err
	}
	return &Document{Name: name, Format: format, Text: text}, nil
}

// parsePlain keeps layout intact: leading list markers and line breaks feed
// the detector's features.
func parsePlain(raw []byte) (string, error) {
	raw = bytes.TrimPrefix(raw, utf8BOM)
	if !utf8.Valid(raw) {
		return "", fmt.Errorf("input is not valid UTF-8 text")
	}
	return strings.ReplaceAll(string(raw), "\r\n", "\n"), nil
}

func parseDOCX(raw []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return "", fmt.Errorf("open docx zip: %w", err)
	}

	var xmlData []byte
	for _, f := range zr.File {
		if f.Name != "word/document.xml" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return "", fmt.Errorf("open document.xml: %w", err)
		}
		xmlData, err = io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return "", fmt.Errorf("read document.xml: %w", err)
		}
		break
	}
	if len(xmlData) == 0 {
		return "", fmt.Errorf("word/document.xml not found")
	}

	decoder := xml.NewDecoder(bytes.NewReader(xmlData))
	var b strings.Builder
	inText := false
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("decode document.xml: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "p":
				if b.Len() > 0 {
					b.WriteString("\n")
				}
			case "tab":
				b.WriteString("\t")
			case "br":
				b.WriteString("\n")
			}
		case xml.EndElement:
			if t.Name.Local == "t" {
				inText = false
			}
		case xml.CharData:
			if inText {
				b.Write(t)
			}
		}
	}
	return normalizeLines(b.String()), nil
}

func parsePDF(raw []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}

	var b strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		content, err := p.GetPlainText(nil)
		if err != nil {
			continue
		}
		b.WriteString(content)
		b.WriteString("\n")
	}
	if strings.TrimSpace(b.String()) == "" {
		return "", fmt.Errorf("no extractable text found in pdf")
	}
	return normalizeLines(b.String()), nil
}

// normalizeLines collapses runs of spaces within lines and drops blank lines.
func normalizeLines(text string) string {
	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line == "" {
			continue
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}
