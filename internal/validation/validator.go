// =============================================================================
// Sales Report Engine - Record Validation
// =============================================================================
//
// This module checks sale records before they are stored or imported.
//
// VALIDATION STRATEGY:
//   1. Field-level: struct tags on types.SaleRecord, checked with
//      go-playground/validator (required brand and model, positive
//      quantity, non-negative price, positive timestamp)
//   2. Record-level: consistency checks the tags cannot express, such as
//      a stored segment label that disagrees with the price or a sale
//      dated in the future
//
// ERROR HANDLING:
//   - Problems are collected, never raised one at a time
//   - Each problem names the row, field, value and rule
//   - Severity "error" rejects the record; "warning" keeps it
//
// CUSTOMIZATION:
//   - Register further tags in newStructValidator
//   - Add record rules to ValidationOptions.CustomValidators
//
// =============================================================================

package validation

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/salesreport/internal/segment"
	"github.com/ginjaninja78/salesreport/internal/types"
)

const (
	SeverityError   = "error"
	SeverityWarning = "warning"
)

// =============================================================================
// VALIDATION ERROR TYPES
// =============================================================================

// ValidationError is a single problem found in a record.
type ValidationError struct {
	// Severity is SeverityError or SeverityWarning.
	Severity string

	// Field is the lower-case record field, e.g. "quantity".
	Field string

	// Value is the offending value as text.
	Value string

	// Rule is the tag or rule name that failed.
	Rule string

	// Message is a human-readable description.
	Message string

	// RecordID is the stored id, 0 for new records.
	RecordID int64

	// RowNumber is the 1-based source row for imports, 0 otherwise.
	RowNumber int
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("[%s] Row %d, Record %d, Field '%s': %s (value: '%s')",
		strings.ToUpper(e.Severity),
		e.RowNumber,
		e.RecordID,
		e.Field,
		e.Message,
		e.Value,
	)
}

// =============================================================================
// VALIDATION RESULT
// =============================================================================

// ValidationResult summarizes a batch.
type ValidationResult struct {
	// IsValid is true when no record was rejected.
	IsValid bool

	// Errors holds every problem, warnings included.
	Errors []*ValidationError

	ErrorCount   int
	WarningCount int

	// RecordsValidated is the batch size.
	RecordsValidated int

	// Rejected holds the indices of records with at least one error.
	Rejected map[int]bool
}

// =============================================================================
// VALIDATOR
// =============================================================================

// Validator checks sale records.
type Validator struct {
	validate *validator.Validate
	options  ValidationOptions
}

// ValidationOptions tunes a Validator.
type ValidationOptions struct {
	// TreatWarningsAsErrors rejects records that only have warnings.
	TreatWarningsAsErrors bool

	// FutureTolerance is how far past Now a sale may be dated before a
	// warning is raised. Zero disables the check.
	FutureTolerance time.Duration

	// Now is the reference clock. Nil means time.Now.
	Now func() time.Time

	// CustomValidators run after the built-in rules. A non-empty return is
	// recorded as an error on the named field.
	CustomValidators map[string]CustomValidatorFunc
}

// CustomValidatorFunc checks one record and returns a message on failure.
type CustomValidatorFunc func(rec types.SaleRecord) string

// DefaultValidationOptions allows a day of clock skew.
func DefaultValidationOptions() ValidationOptions {
	return ValidationOptions{
		FutureTolerance:  24 * time.Hour,
		CustomValidators: make(map[string]CustomValidatorFunc),
	}
}

// NewValidator returns a Validator with the default options.
func NewValidator() *Validator {
	return NewValidatorWithOptions(DefaultValidationOptions())
}

// NewValidatorWithOptions returns a Validator with custom options.
func NewValidatorWithOptions(options ValidationOptions) *Validator {
	if options.Now == nil {
		options.Now = time.Now
	}
	return &Validator{
		validate: newStructValidator(),
		options:  options,
	}
}

func newStructValidator() *validator.Validate {
	v := validator.New()

	// Decimal amounts compare as floats for gte/gt tags.
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			return d.InexactFloat64()
		}
		return nil
	}, decimal.Decimal{})

	v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		return strings.ToLower(fld.Name)
	})
	return v
}

// =============================================================================
// MAIN VALIDATION FUNCTIONS
// =============================================================================

// ValidateAll checks every record of a batch.
//
// PARAMETERS:
//   - records: the batch, read only.
//   - rowNumbers: the source row of each record, aligned with records.
//     Nil numbers the records from 1.
//
// RETURNS:
//   - The result with every problem in batch order. Rejected holds the
//     indices of records with an error, or with a warning when
//     TreatWarningsAsErrors is set.
func (v *Validator) ValidateAll(records []types.SaleRecord, rowNumbers []int) *ValidationResult {
	result := &ValidationResult{
		IsValid:          true,
		Errors:           make([]*ValidationError, 0),
		RecordsValidated: len(records),
		Rejected:         make(map[int]bool),
	}

	for i := range records {
		row := i + 1
		if i < len(rowNumbers) {
			row = rowNumbers[i]
		}
		for _, err := range v.ValidateRecord(records[i], row) {
			result.Errors = append(result.Errors, err)

			if err.Severity == SeverityError {
				result.ErrorCount++
			} else {
				result.WarningCount++
				if !v.options.TreatWarningsAsErrors {
					continue
				}
			}
			result.IsValid = false
			result.Rejected[i] = true
		}
	}

	return result
}

// ValidateRecord checks one record. rowNumber is carried into every
// problem for reporting; pass 0 when the record has no source row.
func (v *Validator) ValidateRecord(rec types.SaleRecord, rowNumber int) []*ValidationError {
	var problems []*ValidationError
	add := func(severity, field, value, rule, message string) {
		problems = append(problems, &ValidationError{
			Severity:  severity,
			Field:     field,
			Value:     value,
			Rule:      rule,
			Message:   message,
			RecordID:  rec.ID,
			RowNumber: rowNumber,
		})
	}

	// =========================================================================
	// FIELD RULES
	// =========================================================================

	if err := v.validate.Struct(rec); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			add(SeverityError, "", "", "struct", err.Error())
			return problems
		}
		for _, fe := range fieldErrs {
			add(SeverityError, fe.Field(), fmt.Sprint(fe.Value()), fe.Tag(), fieldMessage(fe))
		}
	}

	// =========================================================================
	// RECORD RULES
	// =========================================================================

	if rec.Segment != "" && !rec.UnitPrice.IsNegative() {
		if want := segment.Rolling10k(rec.UnitPrice); rec.Segment != want {
			add(SeverityWarning, "segment", rec.Segment, "segment_matches_price",
				fmt.Sprintf("segment does not match price band %s", want))
		}
	}

	if v.options.FutureTolerance > 0 && rec.Timestamp > 0 {
		limit := v.options.Now().Add(v.options.FutureTolerance)
		if rec.Time(time.UTC).After(limit) {
			add(SeverityWarning, "timestamp", rec.Time(time.UTC).Format(time.RFC3339), "not_future",
				"sale is dated in the future")
		}
	}

	for field, check := range v.options.CustomValidators {
		if msg := check(rec); msg != "" {
			add(SeverityError, field, "", "custom", msg)
		}
	}

	return problems
}

// fieldMessage turns a tag failure into text.
func fieldMessage(fe validator.FieldError) string {
	field, param := fe.Field(), fe.Param()
	switch fe.Tag() {
	case "required", "notblank":
		return fmt.Sprintf("%s is required", field)
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, param)
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", field, param)
	default:
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
}

// =============================================================================
// ERROR FORMATTING
// =============================================================================

// FormatErrors renders problems for display or logging.
func FormatErrors(errs []*ValidationError) string {
	if len(errs) == 0 {
		return "No validation errors."
	}

	var builder strings.Builder
	fmt.Fprintf(&builder, "Validation completed with %d problem(s):\n\n", len(errs))
	for i, err := range errs {
		fmt.Fprintf(&builder, "%d. %s\n", i+1, err.Error())
	}
	return builder.String()
}

// WriteErrorLog writes FormatErrors output to filePath, creating or
// truncating it.
func WriteErrorLog(errs []*ValidationError, filePath string) error {
	header := fmt.Sprintf("Validation log written %s\n\n", time.Now().Format(time.RFC3339))
	if err := os.WriteFile(filePath, []byte(header+FormatErrors(errs)), 0o644); err != nil {
		return fmt.Errorf("failed to write error log: %w", err)
	}
	return nil
}
