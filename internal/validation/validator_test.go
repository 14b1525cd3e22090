package validation

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/salesreport/internal/types"
)

var fixedNow = time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)

func testValidator() *Validator {
	opts := DefaultValidationOptions()
	opts.Now = func() time.Time { return fixedNow }
	return NewValidatorWithOptions(opts)
}

func validRecord() types.SaleRecord {
	return types.NewSaleRecord("Samsung", "S24", "8/256", 1, decimal.NewFromInt(55000), fixedNow.Add(-time.Hour))
}

func TestValidateRecord_Valid(t *testing.T) {
	assert.Empty(t, testValidator().ValidateRecord(validRecord(), 1))
}

func TestValidateRecord_FieldRules(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*types.SaleRecord)
		field  string
		rule   string
	}{
		{"blank brand", func(r *types.SaleRecord) { r.Brand = "   " }, "brand", "notblank"},
		{"missing model", func(r *types.SaleRecord) { r.Model = "" }, "model", "required"},
		{"zero quantity", func(r *types.SaleRecord) { r.Quantity = 0 }, "quantity", "gt"},
		{"negative price", func(r *types.SaleRecord) { r.UnitPrice = decimal.NewFromInt(-1); r.Segment = "" }, "unitprice", "gte"},
		{"missing timestamp", func(r *types.SaleRecord) { r.Timestamp = 0 }, "timestamp", "gt"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := validRecord()
			tc.mutate(&rec)

			problems := testValidator().ValidateRecord(rec, 7)
			require.Len(t, problems, 1)
			assert.Equal(t, SeverityError, problems[0].Severity)
			assert.Equal(t, tc.field, problems[0].Field)
			assert.Equal(t, tc.rule, problems[0].Rule)
			assert.Equal(t, 7, problems[0].RowNumber)
		})
	}
}

func TestValidateRecord_Warnings(t *testing.T) {
	rec := validRecord()
	rec.Segment = "10k-20k"
	rec.Timestamp = fixedNow.Add(48 * time.Hour).UnixMilli()

	problems := testValidator().ValidateRecord(rec, 0)
	require.Len(t, problems, 2)
	for _, p := range problems {
		assert.Equal(t, SeverityWarning, p.Severity)
	}
	assert.Equal(t, "segment_matches_price", problems[0].Rule)
	assert.Equal(t, "not_future", problems[1].Rule)
}

func TestValidateAll(t *testing.T) {
	bad := validRecord()
	bad.Quantity = -2
	records := []types.SaleRecord{validRecord(), bad, validRecord()}

	result := testValidator().ValidateAll(records, nil)
	assert.False(t, result.IsValid)
	assert.Equal(t, 1, result.ErrorCount)
	assert.Equal(t, 3, result.RecordsValidated)
	assert.Equal(t, map[int]bool{1: true}, result.Rejected)
	assert.Equal(t, 2, result.Errors[0].RowNumber)
}

func TestValidateAll_SourceRowNumbers(t *testing.T) {
	bad := validRecord()
	bad.Brand = ""

	result := testValidator().ValidateAll([]types.SaleRecord{validRecord(), bad}, []int{4, 9})
	require.Len(t, result.Errors, 1)
	assert.Equal(t, 9, result.Errors[0].RowNumber)
	assert.Equal(t, map[int]bool{1: true}, result.Rejected)
}

func TestValidateAll_WarningsAsErrors(t *testing.T) {
	warned := validRecord()
	warned.Segment = "10k-20k"
	records := []types.SaleRecord{warned, validRecord()}

	lenient := testValidator().ValidateAll(records, nil)
	assert.True(t, lenient.IsValid)
	assert.Equal(t, 1, lenient.WarningCount)
	assert.Empty(t, lenient.Rejected)

	opts := DefaultValidationOptions()
	opts.Now = func() time.Time { return fixedNow }
	opts.TreatWarningsAsErrors = true
	strict := NewValidatorWithOptions(opts).ValidateAll(records, nil)
	assert.False(t, strict.IsValid)
	assert.Equal(t, map[int]bool{0: true}, strict.Rejected)
}

func TestCustomValidators(t *testing.T) {
	opts := DefaultValidationOptions()
	opts.Now = func() time.Time { return fixedNow }
	opts.CustomValidators["brand"] = func(rec types.SaleRecord) string {
		if rec.Brand == "Samsung" {
			return "outlet does not stock Samsung"
		}
		return ""
	}

	problems := NewValidatorWithOptions(opts).ValidateRecord(validRecord(), 1)
	require.Len(t, problems, 1)
	assert.Equal(t, "custom", problems[0].Rule)
}

func TestWriteErrorLog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "errors.log")
	rec := validRecord()
	rec.Quantity = 0

	require.NoError(t, WriteErrorLog(testValidator().ValidateAll([]types.SaleRecord{rec}, nil).Errors, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "quantity must be greater than 0")
	assert.Equal(t, "No validation errors.", FormatErrors(nil))
}
