// Package files provides file system operations for the daily export files.
//
// This package contains two main components:
//
// Discovery: Locates the per-day export files in the downloads directory
// (digit-prefixed .xlsx names, normally ISO date stems) and can report the
// most recent downloaded date so a download run can resume its range.
//
// Manager: Basic file management relative to a base path: existence checks,
// directory creation, and a non-blocking writability probe used before the
// output workbook is built.
//
// Example usage:
//
//	discovery := files.NewDiscovery("")
//	exports, err := discovery.FindDailyExports("data/downloads")
//
//	manager := files.NewManager("")
//	if err := manager.CheckWritable("Estadistica Hospital.xlsx"); err != nil {
//		// the workbook is open in another program
//	}
package files
