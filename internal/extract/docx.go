package extract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

// documentXML mirrors the parts of word/document.xml we read.
type documentXML struct {
	Body struct {
		Paragraphs []paragraph `xml:"p"`
	} `xml:"body"`
}

type paragraph struct {
	Runs []run `xml:"r"`
}

type run struct {
	Text []textElement `xml:"t"`
}

type textElement struct {
	Content string `xml:",chardata"`
}

// extractDOCXText opens the bytes as a DOCX package (a ZIP archive) and
// pulls the raw paragraph text out of word/document.xml.
func extractDOCXText(data []byte) (string, error) {
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("not a valid docx package: %w", err)
	}

	for _, file := range reader.File {
		if file.Name != "word/document.xml" {
			continue
		}

		rc, err := file.Open()
		if err != nil {
			return "", fmt.Errorf("failed to open document.xml: %w", err)
		}
		content, err := io.ReadAll(rc)
		_ = rc.Close()
		if err != nil {
			return "", fmt.Errorf("failed to read document.xml: %w", err)
		}

		return parseDocumentXML(content)
	}

	return "", errors.New("document.xml not found in package")
}

// parseDocumentXML extracts paragraph text, one line per paragraph.
func parseDocumentXML(content []byte) (string, error) {
	var doc documentXML
	if err := xml.Unmarshal(content, &doc); err != nil {
		return "", fmt.Errorf("failed to parse document.xml: %w", err)
	}

	var sb strings.Builder
	for i, para := range doc.Body.Paragraphs {
		if i > 0 {
			sb.WriteString("\n")
		}
		for _, r := range para.Runs {
			for _, t := range r.Text {
				sb.WriteString(t.Content)
			}
		}
	}

	return sb.String(), nil
}
