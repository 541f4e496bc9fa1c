package report

import "github.com/rotisserie/eris"

// ErrUnsupportedFormat is returned for an unknown report format.
var ErrUnsupportedFormat = eris.New("report: unsupported format")
