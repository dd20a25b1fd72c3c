package scanner

// ProgressReporter receives scan progress events. Calls may arrive from
// multiple goroutines; OnFileScanned is serialized by the scanner.
type ProgressReporter interface {
	// OnScanStart is called once with the number of files to scan.
	OnScanStart(totalFiles int)

	// OnFileScanned is called after each file, with its error if any.
	OnFileScanned(path string, err error)

	// OnScanComplete is called when every file has been scanned.
	OnScanComplete(stats *Stats)
}

// NoOpProgressReporter ignores all events.
type NoOpProgressReporter struct{}

func (NoOpProgressReporter) OnScanStart(totalFiles int)           {}
func (NoOpProgressReporter) OnFileScanned(path string, err error) {}
func (NoOpProgressReporter) OnScanComplete(stats *Stats)          {}
