package xmlwriter

import (
	"encoding/xml"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Register_NumbersEntriesInOrder(t *testing.T) {
	r := &Register{RunID: "run-1", Issued: "05.12.2025"}
	r.Add(Entry{Kind: "consolidated", Year: 2024, Donor: "Anna Schmidt", File: "Schmidt_Anna_sammel.pdf", Donations: 2, Total: "125,25"})
	r.Add(Entry{Kind: "single", Donor: "Max Muster", File: "Muster_Max_01-03-2024.pdf", Donations: 1, Total: "50,00"})

	require.Len(t, r.Receipts, 2)
	assert.Equal(t, 1, r.Receipts[0].Index)
	assert.Equal(t, 2, r.Receipts[1].Index)
}

func Test_Write(t *testing.T) {
	dir := t.TempDir()
	r := &Register{RunID: "run-1", Issued: "05.12.2025"}
	r.Add(Entry{Kind: "single", Donor: "Jürgen Groß & Söhne", File: "Gross_Juergen.pdf", Donations: 1, Total: "10,00"})

	path, err := Write(r, dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "register_05-12-2025.xml"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `<?xml version="1.0" encoding="UTF-8"?>`)
	assert.Contains(t, string(data), `<receipt n="1" kind="single">`)
	assert.Contains(t, string(data), "Jürgen Groß &amp; Söhne")

	var decoded Register
	require.NoError(t, xml.Unmarshal(data, &decoded))
	assert.Equal(t, "run-1", decoded.RunID)
	require.Len(t, decoded.Receipts, 1)
	assert.Equal(t, "10,00", decoded.Receipts[0].Total)
}
