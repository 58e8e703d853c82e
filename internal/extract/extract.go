// Package extract turns uploaded document bytes into plain text.
package extract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/gabriel-vasile/mimetype"
	"github.com/ledongthuc/pdf"
)

const (
	MimePDF  = "application/pdf"
	MimeDOC  = "application/msword"
	MimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MimeText = "text/plain"
)

var ErrUnsupportedType = errors.New("file type not allowed. Allowed types: PDF, DOC, DOCX, TXT")

var allowed = map[string]bool{MimePDF: true, MimeDOC: true, MimeDOCX: true, MimeText: true}

// ResolveMime returns the effective mime type of data. A generic or missing
// declared type is replaced by the sniffed one; parameters are dropped.
func ResolveMime(declared string, data []byte) (string, error) {
	mt := strings.ToLower(strings.TrimSpace(strings.SplitN(declared, ";", 2)[0]))
	if mt == "" || mt == "application/octet-stream" || mt == "application/zip" {
		detected := mimetype.Detect(data)
		switch {
		case detected.Is(MimeDOCX):
			mt = MimeDOCX
		case detected.Is(MimePDF):
			mt = MimePDF
		case detected.Is(MimeDOC):
			mt = MimeDOC
		case detected.Is(MimeText):
			mt = MimeText
		default:
			mt = detected.String()
		}
	}
	if !allowed[mt] {
		return "", fmt.Errorf("%w (got %s)", ErrUnsupportedType, mt)
	}
	return mt, nil
}

// Text extracts readable text for the given mime type. Unreadable input
// yields "" rather than an error; callers decide whether empty text is fatal.
func Text(data []byte, mimeType string) string {
	var (
		text string
		err  error
	)
	switch mimeType {
	case MimePDF:
		text, err = pdfText(data)
	case MimeDOCX:
		text, err = docxText(data)
	case MimeText:
		if utf8.Valid(data) {
			text = string(data)
		}
	}
	if err != nil {
		return ""
	}
	return strings.TrimSpace(text)
}

func pdfText(data []byte) (text string, err error) {
	// The pdf reader panics on some malformed inputs.
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("pdf: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}
	plain, err := r.GetPlainText()
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// docxText reads word/document.xml and joins the w:t runs, one line per paragraph.
func docxText(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}

	var doc *zip.File
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			doc = f
			break
		}
	}
	if doc == nil {
		return "", errors.New("docx: word/document.xml missing")
	}

	rc, err := doc.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()

	var (
		sb     strings.Builder
		inText bool
	)
	dec := xml.NewDecoder(rc)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				sb.WriteByte('\t')
			case "br":
				sb.WriteByte('\n')
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				sb.WriteByte('\n')
			}
		case xml.CharData:
			if inText {
				sb.Write(t)
			}
		}
	}
	return sb.String(), nil
}
