// =============================================================================
// Donation Receipts - Receipt Register Writer
// =============================================================================
//
// The association has to be able to prove which receipts it issued. This
// module writes a register of every receipt produced in a run as XML, next
// to the PDFs in the output directory.
//
// XML STRUCTURE:
//
//   <?xml version="1.0" encoding="UTF-8"?>
//   <register run="6f1c..." issued="05.12.2025">
//     <receipt n="1" kind="consolidated" year="2024">
//       <donor>Anna Schmidt</donor>
//       <file>Schmidt_Anna_sammel.pdf</file>
//       <donations>2</donations>
//       <total>125,25</total>
//     </receipt>
//     <receipt n="2" kind="single">
//       ...
//     </receipt>
//   </register>
//
// Receipts are numbered in the order they were produced, starting at 1.
//
// =============================================================================

package xmlwriter

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Register is the root element of the register document.
type Register struct {
	XMLName  xml.Name `xml:"register"`
	RunID    string   `xml:"run,attr"`
	Issued   string   `xml:"issued,attr"`
	Receipts []Entry  `xml:"receipt"`
}

// Entry describes one issued receipt.
type Entry struct {
	Index     int    `xml:"n,attr"`
	Kind      string `xml:"kind,attr"`
	Year      int    `xml:"year,attr,omitempty"`
	Donor     string `xml:"donor"`
	File      string `xml:"file"`
	Donations int    `xml:"donations"`
	Total     string `xml:"total"`
}

// Add appends an entry and assigns its index.
func (r *Register) Add(e Entry) {
	e.Index = len(r.Receipts) + 1
	r.Receipts = append(r.Receipts, e)
}

// Generate renders the register with an XML declaration and two-space indent.
func Generate(r *Register) ([]byte, error) {
	var buffer bytes.Buffer
	buffer.WriteString(xml.Header)

	body, err := xml.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal XML: %w", err)
	}

	buffer.Write(body)
	buffer.WriteByte('\n')

	return buffer.Bytes(), nil
}

// FileName returns the register file name for an issue date:
// "05.12.2025" -> "register_05-12-2025.xml".
func FileName(issueDate string) string {
	return "register_" + strings.ReplaceAll(issueDate, ".", "-") + ".xml"
}

// Write renders r into dir and returns the written path.
func Write(r *Register, dir string) (string, error) {
	data, err := Generate(r)
	if err != nil {
		return "", err
	}

	path := filepath.Join(dir, FileName(r.Issued))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write register: %w", err)
	}

	return path, nil
}
