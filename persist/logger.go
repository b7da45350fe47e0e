package persist

import (
	"log"
	"os"
	"path/filepath"
)

// NewLogger creates a *log.Logger that appends to <dir>/<name>.log,
// creating the directory and file if necessary.
func NewLogger(dir, name string) (*log.Logger, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, err
	}
	logFile, err := os.OpenFile(filepath.Join(dir, name+".log"), os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0660)
	if err != nil {
		return nil, err
	}
	return log.New(logFile, "", log.Ldate|log.Ltime|log.Lmicroseconds|log.Lshortfile), nil
}
