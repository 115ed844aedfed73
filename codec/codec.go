package codec

import (
	csvcodec "github.com/go-data-exporter/csvexport/codec/csv"
)

// RowCodec serializes one row of field text onto a byte buffer.
type RowCodec interface {
	AppendRow(dst []byte, fields []string) []byte
}

func CSV(opts ...csvcodec.Option) RowCodec {
	return csvcodec.New(opts...)
}
