package recorder

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"marketsim/internal/domain"
)

// Recorder streams a run's trades and periodic price snapshots to CSV
// files and writes a final JSON summary. It is not safe for concurrent
// use; the step driver owns it.
type Recorder struct {
	dir              string
	snapshotInterval int

	tradesFile *os.File
	tradesCSV  *csv.Writer
	pricesFile *os.File
	pricesCSV  *csv.Writer
}

// New creates the output directory and opens trades.csv and
// price_history.csv with headers written.
func New(dir string, snapshotInterval int) (*Recorder, error) {
	if snapshotInterval <= 0 {
		return nil, fmt.Errorf("snapshot interval must be positive, got %d", snapshotInterval)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	tradesFile, err := os.Create(filepath.Join(dir, "trades.csv"))
	if err != nil {
		return nil, fmt.Errorf("create trades.csv: %w", err)
	}
	tradesCSV := csv.NewWriter(tradesFile)
	if err := tradesCSV.Write([]string{"trade_id", "buy_order_id", "sell_order_id", "buyer_id", "seller_id", "price", "quantity", "timestamp"}); err != nil {
		tradesFile.Close()
		return nil, fmt.Errorf("write trades header: %w", err)
	}

	pricesFile, err := os.Create(filepath.Join(dir, "price_history.csv"))
	if err != nil {
		tradesFile.Close()
		return nil, fmt.Errorf("create price_history.csv: %w", err)
	}
	pricesCSV := csv.NewWriter(pricesFile)
	if err := pricesCSV.Write([]string{"step", "timestamp", "price"}); err != nil {
		tradesFile.Close()
		pricesFile.Close()
		return nil, fmt.Errorf("write prices header: %w", err)
	}

	return &Recorder{
		dir:              dir,
		snapshotInterval: snapshotInterval,
		tradesFile:       tradesFile,
		tradesCSV:        tradesCSV,
		pricesFile:       pricesFile,
		pricesCSV:        pricesCSV,
	}, nil
}

// RecordStep appends the step's trades and, on the snapshot cadence,
// one price history row. trades must be only the trades new since the
// previous call.
func (r *Recorder) RecordStep(step int, timestamp float64, price int64, trades []domain.ExecutedTrade) error {
	for _, t := range trades {
		row := []string{
			strconv.FormatUint(t.TradeID, 10),
			strconv.FormatUint(t.BuyOrderID, 10),
			strconv.FormatUint(t.SellOrderID, 10),
			strconv.Itoa(t.BuyerID),
			strconv.Itoa(t.SellerID),
			domain.FormatCents(t.Price),
			strconv.FormatInt(t.Quantity, 10),
			strconv.FormatFloat(t.Timestamp, 'f', -1, 64),
		}
		if err := r.tradesCSV.Write(row); err != nil {
			return fmt.Errorf("write trade row: %w", err)
		}
	}

	if step%r.snapshotInterval == 0 {
		row := []string{
			strconv.Itoa(step),
			strconv.FormatFloat(timestamp, 'f', -1, 64),
			domain.FormatCents(price),
		}
		if err := r.pricesCSV.Write(row); err != nil {
			return fmt.Errorf("write price row: %w", err)
		}
	}
	return nil
}

// WriteSummary writes v as indented JSON to summary.json.
func (r *Recorder) WriteSummary(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal summary: %w", err)
	}
	path := filepath.Join(r.dir, "summary.json")
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write summary.json: %w", err)
	}
	return nil
}

// Flush pushes buffered CSV rows to disk.
func (r *Recorder) Flush() error {
	r.tradesCSV.Flush()
	if err := r.tradesCSV.Error(); err != nil {
		return fmt.Errorf("flush trades.csv: %w", err)
	}
	r.pricesCSV.Flush()
	if err := r.pricesCSV.Error(); err != nil {
		return fmt.Errorf("flush price_history.csv: %w", err)
	}
	return nil
}

// Close flushes and closes both CSV files.
func (r *Recorder) Close() error {
	flushErr := r.Flush()
	if err := r.tradesFile.Close(); err != nil && flushErr == nil {
		flushErr = err
	}
	if err := r.pricesFile.Close(); err != nil && flushErr == nil {
		flushErr = err
	}
	return flushErr
}
