// Package session records per-second workout rows and exports them as a
// Parquet file for offline analysis.
package session

import (
	"fmt"
	"time"

	"github.com/ZXIS-dev/ZXIS-Run/internal/models"
	parquetbuffer "github.com/xitongsys/parquet-go-source/buffer"
	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/source"
	"github.com/xitongsys/parquet-go/writer"
)

type row struct {
	TSUTCISO    string  `parquet:"name=ts_utc_iso, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	ElapsedS    float64 `parquet:"name=elapsed_s, type=DOUBLE"`
	HRBPM       int32   `parquet:"name=hr_bpm, type=INT32"`
	SmoothedBPM float64 `parquet:"name=smoothed_bpm, type=DOUBLE"`
	Command     int32   `parquet:"name=command, type=INT32"`
	Mode        string  `parquet:"name=mode, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	ValidHR     bool    `parquet:"name=valid_hr, type=BOOLEAN"`
}

// Recorder accumulates one row per status report. It lives on the service
// goroutine; no locking.
type Recorder struct {
	start time.Time
	rows  []row
}

// NewRecorder creates a recorder with the session start time.
func NewRecorder(start time.Time) *Recorder {
	return &Recorder{start: start}
}

// Add appends a row built from a status snapshot.
func (r *Recorder) Add(status *models.HeartRateStatus) {
	r.rows = append(r.rows, row{
		TSUTCISO:    status.Time.UTC().Format(time.RFC3339),
		ElapsedS:    status.Time.Sub(r.start).Seconds(),
		HRBPM:       int32(status.BPM),
		SmoothedBPM: status.SmoothedBPM,
		Command:     int32(status.Command),
		Mode:        status.Mode.String(),
		ValidHR:     !status.NoEstimate,
	})
}

// Len returns the number of recorded rows.
func (r *Recorder) Len() int { return len(r.rows) }

// WriteFile writes the session to path as Parquet.
func (r *Recorder) WriteFile(path string) error {
	fw, err := local.NewLocalFileWriter(path)
	if err != nil {
		return fmt.Errorf("create session file: %w", err)
	}
	if err := r.write(fw); err != nil {
		_ = fw.Close()
		return err
	}
	return fw.Close()
}

// Marshal returns the session Parquet-encoded in memory.
func (r *Recorder) Marshal() ([]byte, error) {
	fw := parquetbuffer.NewBufferFile()
	if err := r.write(fw); err != nil {
		return nil, err
	}
	if err := fw.Close(); err != nil {
		return nil, err
	}
	return append([]byte(nil), fw.Bytes()...), nil
}

func (r *Recorder) write(fw source.ParquetFile) error {
	pw, err := writer.NewParquetWriter(fw, new(row), 4)
	if err != nil {
		return fmt.Errorf("session writer: %w", err)
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY

	for _, rec := range r.rows {
		if err := pw.Write(rec); err != nil {
			_ = pw.WriteStop()
			return fmt.Errorf("write session row: %w", err)
		}
	}
	return pw.WriteStop()
}
