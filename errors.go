package csvexport

import (
	"errors"

	csvcodec "github.com/go-data-exporter/csvexport/codec/csv"
	"github.com/go-data-exporter/csvexport/normalize"
)

var (
	// ErrInvalidInput is returned when the Document or one of its rows is not
	// enumerable.
	ErrInvalidInput = normalize.ErrInvalidInput

	// ErrInvalidConfig is returned for an unusable delimiter or output charset.
	ErrInvalidConfig = csvcodec.ErrInvalidConfig

	// ErrBufferAllocation is returned when the output buffer cannot grow.
	ErrBufferAllocation = errors.New("cannot allocate output buffer")
)
