package kb

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// LoadJSONBank reads a question bank from a JSON array of
// {"section": ..., "question": ...} objects. Unknown fields are ignored.
func LoadJSONBank(r io.Reader) ([]Entry, error) {
	var entries []Entry
	if err := json.NewDecoder(r).Decode(&entries); err != nil {
		return nil, fmt.Errorf("decoding question bank: %w", err)
	}
	return entries, nil
}

// LoadJSONBankFile reads a question bank from a JSON file on disk.
func LoadJSONBankFile(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return LoadJSONBank(f)
}

// LoadHTMLBank reads a question bank from an HTML document where headings
// (h1-h3) name sections and list items under a heading are questions. List
// items before the first heading are skipped.
func LoadHTMLBank(r io.Reader) ([]Entry, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parsing question bank html: %w", err)
	}

	var entries []Entry
	section := ""
	doc.Find("h1, h2, h3, li").Each(func(_ int, sel *goquery.Selection) {
		text := strings.TrimSpace(sel.Text())
		if text == "" {
			return
		}
		if goquery.NodeName(sel) == "li" {
			if section != "" {
				entries = append(entries, Entry{Section: section, Question: text})
			}
			return
		}
		section = text
	})

	return entries, nil
}
