package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/salesreport/internal/report"
)

func TestParseVariantList(t *testing.T) {
	all, err := parseVariantList(" ALL ")
	require.NoError(t, err)
	assert.Equal(t, report.Variants(), all)

	list, err := parseVariantList("ledger, daily,ledger,")
	require.NoError(t, err)
	assert.Equal(t, []report.Variant{report.Ledger, report.DailyMatrix}, list)

	_, err = parseVariantList("daily,weekly")
	assert.ErrorIs(t, err, report.ErrUnknownVariant)

	_, err = parseVariantList(" , ")
	assert.Error(t, err)
}

func TestFirstNonEmpty(t *testing.T) {
	assert.Equal(t, "xlsx", firstNonEmpty("", "  ", "xlsx", "pdf"))
	assert.Equal(t, "", firstNonEmpty())
}
