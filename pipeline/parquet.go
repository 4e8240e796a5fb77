package pipeline

import (
	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/writer"

	"github.com/lucasjlepore/trainload"
)

type dailyStatsParquetRow struct {
	Date string  `parquet:"name=date, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	TSS  int64   `parquet:"name=tss, type=INT64"`
	CTL  float64 `parquet:"name=ctl, type=DOUBLE"`
	ATL  float64 `parquet:"name=atl, type=DOUBLE"`
	TSB  float64 `parquet:"name=tsb, type=DOUBLE"`
}

func writeDailyStatsParquet(path string, stats []trainload.DailyStats) error {
	fw, err := local.NewLocalFileWriter(path)
	if err != nil {
		return err
	}
	pw, err := writer.NewParquetWriter(fw, new(dailyStatsParquetRow), 4)
	if err != nil {
		_ = fw.Close()
		return err
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY

	for _, s := range stats {
		row := dailyStatsParquetRow{
			Date: s.Date.Format("2006-01-02"),
			TSS:  int64(s.TSS),
			CTL:  s.CTL,
			ATL:  s.ATL,
			TSB:  s.TSB,
		}
		if err := pw.Write(row); err != nil {
			_ = pw.WriteStop()
			_ = fw.Close()
			return err
		}
	}
	if err := pw.WriteStop(); err != nil {
		_ = fw.Close()
		return err
	}
	return fw.Close()
}
