package ingest

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Line is one non-blank line of extracted text.
type Line struct {
	RawText string
}

// Extractor returns the text lines of a document. It never fails; on any
// problem it returns no lines.
type Extractor interface {
	Extract(ctx context.Context, path string) []Line
}

// ExtractorFunc adapts a function to Extractor.
type ExtractorFunc func(ctx context.Context, path string) []Line

func (f ExtractorFunc) Extract(ctx context.Context, path string) []Line { return f(ctx, path) }

func splitLines(r io.Reader) []Line {
	var out []Line
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			out = append(out, Line{RawText: line})
		}
	}
	return out
}

// TextExtractor reads the file as plain text.
type TextExtractor struct{}

func (TextExtractor) Extract(_ context.Context, path string) []Line {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	return splitLines(bytes.NewReader(data))
}

// PDFExtractor reads the text layer of a PDF, falling back to a plain text
// read when the document cannot be parsed.
type PDFExtractor struct{}

func (PDFExtractor) Extract(ctx context.Context, path string) (lines []Line) {
	defer func() {
		if recover() != nil {
			lines = TextExtractor{}.Extract(ctx, path)
		}
	}()
	f, r, err := pdf.Open(path)
	if err != nil {
		return TextExtractor{}.Extract(ctx, path)
	}
	defer f.Close()
	text, err := r.GetPlainText()
	if err != nil {
		return TextExtractor{}.Extract(ctx, path)
	}
	return splitLines(text)
}

// ImageExtractor runs the tesseract OCR binary over an image.
type ImageExtractor struct {
	Binary string // defaults to "tesseract"
	Lang   string // defaults to "eng"
}

func (e ImageExtractor) Extract(ctx context.Context, path string) []Line {
	bin := e.Binary
	if bin == "" {
		bin = "tesseract"
	}
	lang := e.Lang
	if lang == "" {
		lang = "eng"
	}
	out, err := exec.CommandContext(ctx, bin, path, "stdout", "-l", lang).Output()
	if err != nil {
		return nil
	}
	return splitLines(bytes.NewReader(out))
}
