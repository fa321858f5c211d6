package resume

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/nguyenthenguyen/docx"
)

// BackupSuffix marks the untouched copy of a resume kept next to the
// original. The backup is written once and never overwritten, so the first
// version of the document survives any number of tailoring runs.
const BackupSuffix = "_original"

// ReadContent returns the plain text of a resume document. Word documents
// are unpacked and flattened to text; plain-text files pass through.
func ReadContent(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".docx":
		return readDocx(path)
	case ".pdf":
		return readPDF(path)
	case ".txt":
		raw, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("reading resume: %w", err)
		}
		return string(raw), nil
	default:
		return "", fmt.Errorf("unsupported resume format %q", filepath.Ext(path))
	}
}

// UpdateContent replaces the document's body with the given text, preserving
// the file format. The write goes through a temp file so a crash mid-write
// cannot leave a truncated resume behind.
func UpdateContent(path, content string) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".docx":
		return writeDocx(path, content)
	case ".pdf":
		return fmt.Errorf("pdf resumes are read-only; convert %s to docx to tailor in place", filepath.Base(path))
	case ".txt":
		return writeAtomic(path, []byte(content))
	default:
		return fmt.Errorf("unsupported resume format %q", filepath.Ext(path))
	}
}

// BackupPath returns where the pristine copy of the document lives.
func BackupPath(path string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + BackupSuffix + ext
}

// CreateBackup copies the document to its backup path unless a backup already
// exists. Idempotent: repeat runs keep the oldest version.
func CreateBackup(path string) (string, error) {
	backup := BackupPath(path)
	if _, err := os.Stat(backup); err == nil {
		return backup, nil
	} else if !os.IsNotExist(err) {
		return "", fmt.Errorf("checking backup: %w", err)
	}
	if err := copyFile(path, backup); err != nil {
		return "", fmt.Errorf("creating backup: %w", err)
	}
	return backup, nil
}

// RestoreOriginal copies the backup over the working document.
func RestoreOriginal(path string) error {
	backup := BackupPath(path)
	if _, err := os.Stat(backup); err != nil {
		return fmt.Errorf("no backup found for %s: %w", path, err)
	}
	if err := copyFile(backup, path); err != nil {
		return fmt.Errorf("restoring original: %w", err)
	}
	return nil
}

// SaveTailored writes a standalone copy of the tailored text into dir, named
// after the user and timestamped so successive runs never collide.
func SaveTailored(dir, userID, content string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating output dir: %w", err)
	}
	name := fmt.Sprintf("%s_%s_tailored.txt", userID, time.Now().Format("20060102_150405"))
	path := filepath.Join(dir, name)
	if err := writeAtomic(path, []byte(content)); err != nil {
		return "", fmt.Errorf("saving tailored resume: %w", err)
	}
	return path, nil
}

func readDocx(path string) (string, error) {
	r, err := docx.ReadDocxFile(path)
	if err != nil {
		return "", fmt.Errorf("opening docx: %w", err)
	}
	defer r.Close()
	return extractDocxText(r.Editable().GetContent())
}

// extractDocxText walks document.xml emitting text runs, with a newline at
// the close of each paragraph.
func extractDocxText(content string) (string, error) {
	dec := xml.NewDecoder(strings.NewReader(content))
	var b strings.Builder
	inText := false
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("parsing docx body: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "t" {
				inText = true
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				b.WriteString("\n")
			}
		case xml.CharData:
			if inText {
				b.Write(t)
			}
		}
	}
	return strings.TrimSpace(b.String()), nil
}

func writeDocx(path, content string) error {
	r, err := docx.ReadDocxFile(path)
	if err != nil {
		return fmt.Errorf("opening docx: %w", err)
	}
	defer r.Close()

	doc := r.Editable()
	doc.SetContent(buildDocxBody(content))

	tmp := path + ".tmp"
	if err := doc.WriteToFile(tmp); err != nil {
		return fmt.Errorf("writing docx: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replacing docx: %w", err)
	}
	return nil
}

// buildDocxBody renders plain text into a minimal document.xml, one paragraph
// per line.
func buildDocxBody(content string) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n")
	b.WriteString(`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`)
	for _, line := range strings.Split(content, "\n") {
		b.WriteString(`<w:p><w:r><w:t xml:space="preserve">`)
		xml.EscapeText(&b, []byte(line))
		b.WriteString(`</w:t></w:r></w:p>`)
	}
	b.WriteString(`</w:body></w:document>`)
	return b.String()
}

func copyFile(src, dst string) error {
	raw, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return writeAtomic(dst, raw)
}

func writeAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}
