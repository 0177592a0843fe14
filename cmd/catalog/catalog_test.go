package catalog

import (
	"bytes"
	"testing"

	"github.com/Jeremy009/BMC/internal/catalog"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrint(t *testing.T) {
	cat, err := catalog.New(
		[]catalog.Item{{Key: "entree adulte", Price: decimal.RequireFromString("8")}},
		nil,
		[]catalog.Item{{Key: "achat gourde", Price: decimal.RequireFromString("12.5")}},
	)
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, Print(&out, cat, "€"))

	text := out.String()
	assert.Contains(t, text, "Entrées")
	assert.NotContains(t, text, "Locations", "empty sections are skipped")
	assert.Contains(t, text, "Ventes")
	assert.Contains(t, text, "€8.00")
	assert.Contains(t, text, "€12.50")
	assert.Less(t, bytes.Index(out.Bytes(), []byte("entree adulte")), bytes.Index(out.Bytes(), []byte("achat gourde")))
}

func TestCatalogCommand_Metadata(t *testing.T) {
	assert.Equal(t, "catalog", Cmd.Use)
	assert.NotNil(t, Cmd.RunE)
}
