// =============================================================================
// Sales Report Engine - Main Entry Point
// =============================================================================
//
// USAGE:
//   salesreport add       - Record a sale
//   salesreport list      - Show recent sales
//   salesreport report    - Generate PDF or XLSX reports
//   salesreport import    - Import a backup workbook or CSV file
//   salesreport backup    - Export every sale to a workbook
//   salesreport version   - Display the application version
//
// ARCHITECTURE:
//   - cmd/       : CLI command definitions (Cobra)
//   - internal/  : aggregation, column building, rendering, storage
//   - pkg/utils  : file naming, atomic writes and archival
//   - profiles/  : per-outlet report profiles (YAML)
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/salesreport/cmd"
)

func main() {
	cmd.Execute()
}
