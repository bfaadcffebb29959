package verify

import (
	"archive/zip"
	"encoding/xml"
	"io"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/pkg/errors"
)

// errUnsupportedFormat marks artifacts the engine has no reader for. The
// caller turns it into an unverifiable criterion result rather than a
// failure.
var errUnsupportedFormat = errors.New("unsupported artifact format")

func isUnsupportedFormat(err error) bool { return errors.Is(err, errUnsupportedFormat) }

// inspection is what a format reader measured about an artifact. A key being
// absent means the format does not support that measurement at all, which is
// different from measuring zero.
type inspection struct {
	counters map[string]int
	flags    map[string]bool
}

// inspectFile opens the artifact with the reader matching its extension.
func inspectFile(path string) (*inspection, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return inspectWorkbook(path)
	case ".docx":
		return inspectDocument(path)
	case ".pptx":
		return inspectPresentation(path)
	default:
		return nil, errors.Wrapf(errUnsupportedFormat, "%s", filepath.Ext(path))
	}
}

var slidePartRe = regexp.MustCompile(`^ppt/slides/slide[0-9]+\.xml$`)

// inspectWorkbook reads an .xlsx package: row and column counts from the
// worksheet XML, formulas from <f> cells, charts/tables/images from their
// package parts.
func inspectWorkbook(path string) (*inspection, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, errors.Wrap(err, "opening xlsx package")
	}
	defer zr.Close()

	insp := &inspection{
		counters: map[string]int{"rows": 0, "columns": 0},
		flags:    map[string]bool{"formula": false, "chart": false, "table": false, "image": false},
	}

	sawWorkbook := false
	for _, f := range zr.File {
		name := f.Name
		switch {
		case name == "xl/workbook.xml":
			sawWorkbook = true
		case strings.HasPrefix(name, "xl/charts/"):
			insp.flags["chart"] = true
		case strings.HasPrefix(name, "xl/tables/"):
			insp.flags["table"] = true
		case strings.HasPrefix(name, "xl/media/"):
			insp.flags["image"] = true
		}

		if strings.HasPrefix(name, "xl/worksheets/") && strings.HasSuffix(name, ".xml") {
			if err := scanWorksheet(f, insp); err != nil {
				return nil, err
			}
		}
	}
	if !sawWorkbook {
		return nil, errors.New("not a workbook: xl/workbook.xml missing")
	}
	return insp, nil
}

// scanWorksheet walks one sheet's XML, accumulating the workbook-level
// maximum row and column counts and the formula flag.
func scanWorksheet(f *zip.File, insp *inspection) error {
	rc, err := f.Open()
	if err != nil {
		return errors.Wrapf(err, "opening sheet %s", f.Name)
	}
	defer rc.Close()

	dec := xml.NewDecoder(rc)
	rows, cellsInRow, maxCells := 0, 0, 0
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return errors.Wrapf(err, "parsing sheet %s", f.Name)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "row":
				rows++
				cellsInRow = 0
			case "c":
				cellsInRow++
				if cellsInRow > maxCells {
					maxCells = cellsInRow
				}
			case "f":
				insp.flags["formula"] = true
			}
		}
	}
	if rows > insp.counters["rows"] {
		insp.counters["rows"] = rows
	}
	if maxCells > insp.counters["columns"] {
		insp.counters["columns"] = maxCells
	}
	return nil
}

// inspectDocument reads a .docx package: paragraph and word counts from the
// main document part, tables from <w:tbl>, images from the media folder or
// inline drawings.
func inspectDocument(path string) (*inspection, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, errors.Wrap(err, "opening docx package")
	}
	defer zr.Close()

	insp := &inspection{
		counters: map[string]int{"paragraphs": 0, "words": 0},
		flags:    map[string]bool{"table": false, "image": false},
	}

	var docPart *zip.File
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			docPart = f
		}
		if strings.HasPrefix(f.Name, "word/media/") {
			insp.flags["image"] = true
		}
	}
	if docPart == nil {
		return nil, errors.New("not a document: word/document.xml missing")
	}

	rc, err := docPart.Open()
	if err != nil {
		return nil, errors.Wrap(err, "opening document part")
	}
	defer rc.Close()

	dec := xml.NewDecoder(rc)
	var (
		inText        bool
		paragraphText strings.Builder
		inParagraph   bool
	)
	closeParagraph := func() {
		if inParagraph {
			text := strings.TrimSpace(paragraphText.String())
			if text != "" {
				insp.counters["paragraphs"]++
				insp.counters["words"] += len(strings.Fields(text))
			}
		}
		inParagraph = false
		paragraphText.Reset()
	}
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "parsing document part")
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "p":
				closeParagraph()
				inParagraph = true
			case "t":
				inText = true
			case "tbl":
				insp.flags["table"] = true
			case "drawing", "pic":
				insp.flags["image"] = true
			}
		case xml.EndElement:
			if t.Name.Local == "t" {
				inText = false
			}
		case xml.CharData:
			if inText {
				paragraphText.Write(t)
				paragraphText.WriteByte(' ')
			}
		}
	}
	closeParagraph()
	return insp, nil
}

// inspectPresentation reads a .pptx package: slide count from the slide
// parts, words from <a:t> runs, charts/tables/images from parts and
// elements.
func inspectPresentation(path string) (*inspection, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, errors.Wrap(err, "opening pptx package")
	}
	defer zr.Close()

	insp := &inspection{
		counters: map[string]int{"slides": 0, "words": 0},
		flags:    map[string]bool{"chart": false, "table": false, "image": false},
	}

	sawPresentation := false
	for _, f := range zr.File {
		switch {
		case f.Name == "ppt/presentation.xml":
			sawPresentation = true
		case strings.HasPrefix(f.Name, "ppt/charts/"), strings.HasPrefix(f.Name, "ppt/embeddings/"):
			insp.flags["chart"] = true
		case strings.HasPrefix(f.Name, "ppt/media/"):
			insp.flags["image"] = true
		}

		if slidePartRe.MatchString(f.Name) {
			insp.counters["slides"]++
			if err := scanSlide(f, insp); err != nil {
				return nil, err
			}
		}
	}
	if !sawPresentation {
		return nil, errors.New("not a presentation: ppt/presentation.xml missing")
	}
	return insp, nil
}

func scanSlide(f *zip.File, insp *inspection) error {
	rc, err := f.Open()
	if err != nil {
		return errors.Wrapf(err, "opening slide %s", f.Name)
	}
	defer rc.Close()

	dec := xml.NewDecoder(rc)
	inText := false
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return errors.Wrapf(err, "parsing slide %s", f.Name)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tbl":
				insp.flags["table"] = true
			case "pic", "blip":
				insp.flags["image"] = true
			case "chart":
				insp.flags["chart"] = true
			}
		case xml.EndElement:
			if t.Name.Local == "t" {
				inText = false
			}
		case xml.CharData:
			if inText {
				insp.counters["words"] += len(strings.Fields(string(t)))
			}
		}
	}
	return nil
}
