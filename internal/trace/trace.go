// Package trace exports per-frame replay traces as Parquet for offline
// threshold analysis.
package trace

import (
	"time"

	"github.com/pkg/errors"
	parquetbuffer "github.com/xitongsys/parquet-go-source/buffer"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/writer"

	"github.com/Kkkiiiirran/FitFlow/internal/rep"
)

// Row is one processed frame of a replay.
type Row struct {
	Frame        int64   `parquet:"name=frame, type=INT64" json:"frame"`
	ElapsedMs    int64   `parquet:"name=elapsed_ms, type=INT64" json:"elapsed_ms"`
	Exercise     string  `parquet:"name=exercise, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY" json:"exercise"`
	Stage        string  `parquet:"name=stage, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY" json:"stage"`
	Angle        float64 `parquet:"name=angle, type=DOUBLE" json:"angle"`
	Count        int64   `parquet:"name=count, type=INT64" json:"count"`
	Seconds      int64   `parquet:"name=seconds, type=INT64" json:"seconds"`
	Visible      bool    `parquet:"name=visible, type=BOOLEAN" json:"visible"`
	StageChanged bool    `parquet:"name=stage_changed, type=BOOLEAN" json:"stage_changed"`
	Counted      bool    `parquet:"name=counted, type=BOOLEAN" json:"counted"`
	Holding      bool    `parquet:"name=holding, type=BOOLEAN" json:"holding"`
}

// NewRow builds the trace row for frame i of exercise observed elapsed after
// the first frame.
func NewRow(i int, exercise string, elapsed time.Duration, res rep.Result) Row {
	return Row{
		Frame:        int64(i),
		ElapsedMs:    elapsed.Milliseconds(),
		Exercise:     exercise,
		Stage:        res.Stage,
		Angle:        res.Angle,
		Count:        int64(res.Count),
		Seconds:      int64(res.Seconds),
		Visible:      res.Visible,
		StageChanged: res.StageChanged,
		Counted:      res.Counted,
		Holding:      res.Holding,
	}
}

// WriteParquet encodes rows as a Snappy-compressed Parquet file.
func WriteParquet(rows []Row) ([]byte, error) {
	fw := parquetbuffer.NewBufferFile()
	pw, err := writer.NewParquetWriter(fw, new(Row), 4)
	if err != nil {
		return nil, errors.Wrap(err, "Can't create parquet writer")
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY

	for i, row := range rows {
		if err := pw.Write(row); err != nil {
			_ = pw.WriteStop()
			return nil, errors.Wrapf(err, "Can't write trace row %d", i)
		}
	}
	if err := pw.WriteStop(); err != nil {
		return nil, errors.Wrap(err, "Can't finish parquet file")
	}
	if err := fw.Close(); err != nil {
		return nil, err
	}
	return append([]byte(nil), fw.Bytes()...), nil
}
