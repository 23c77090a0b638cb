package storage

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"reserveScope/internal/model"
)

type countingSink struct {
	batches  int
	putErr   error
	closeErr error
}

func (c *countingSink) PutSnapshots(context.Context, []model.ReserveSnapshot) error {
	if c.putErr != nil {
		return c.putErr
	}
	c.batches++
	return nil
}

func (c *countingSink) Close() error { return c.closeErr }

func snapshots(block uint64, symbols ...string) []model.ReserveSnapshot {
	out := make([]model.ReserveSnapshot, 0, len(symbols))
	for _, symbol := range symbols {
		out = append(out, model.ReserveSnapshot{
			ChainID:     1,
			BlockNumber: block,
			Info:        model.ReserveInfo{Version: "v3", Asset: model.TokenMeta{Symbol: symbol}},
		})
	}
	return out
}

func TestJsonlStorageAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "reserves.jsonl")
	s := NewJsonlStorage(path)

	if err := s.PutSnapshots(context.Background(), snapshots(10, "WETH", "USDC")); err != nil {
		t.Fatalf("first batch: %v", err)
	}
	if err := s.PutSnapshots(context.Background(), nil); err != nil {
		t.Fatalf("empty batch: %v", err)
	}
	if err := s.PutSnapshots(context.Background(), snapshots(20, "DAI")); err != nil {
		t.Fatalf("second batch: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer file.Close()

	var got []model.ReserveSnapshot
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		var snap model.ReserveSnapshot
		if err := json.Unmarshal(scanner.Bytes(), &snap); err != nil {
			t.Fatalf("line %d: %v", len(got)+1, err)
		}
		got = append(got, snap)
	}
	if len(got) != 3 {
		t.Fatalf("lines = %d, want 3", len(got))
	}
	if got[2].BlockNumber != 20 || got[2].Info.Asset.Symbol != "DAI" {
		t.Fatalf("unexpected last line: %+v", got[2])
	}
}

func TestMultiStopsAtFirstFailure(t *testing.T) {
	first := &countingSink{}
	broken := &countingSink{putErr: errors.New("disk full"), closeErr: errors.New("close broken")}
	last := &countingSink{closeErr: errors.New("close last")}
	m := Multi{first, broken, last}

	if err := m.PutSnapshots(context.Background(), snapshots(1, "WETH")); err == nil {
		t.Fatalf("expected error")
	}
	if first.batches != 1 || last.batches != 0 {
		t.Fatalf("batches = %d/%d, want 1/0", first.batches, last.batches)
	}

	err := m.Close()
	if !errors.Is(err, broken.closeErr) || !errors.Is(err, last.closeErr) {
		t.Fatalf("close errors not joined: %v", err)
	}
}

func TestJsonlStorageReset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "reserves.jsonl")
	s := NewJsonlStorage(path)

	for i := 0; i < 2; i++ {
		if err := s.Reset(); err != nil {
			t.Fatalf("reset: %v", err)
		}
		if err := s.PutSnapshots(context.Background(), snapshots(10, "WETH", "USDC")); err != nil {
			t.Fatalf("put: %v", err)
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if lines := strings.Count(string(data), "\n"); lines != 2 {
		t.Fatalf("lines = %d, want 2", lines)
	}
}
