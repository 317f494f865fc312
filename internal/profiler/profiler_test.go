// profiler_test.go
//
// (c) 2024-2026 Zayn Otley - GPLv3 or later

package profiler

import (
	"testing"

	"sim8086/internal/mrf"
)

func TestAccessCounterTracksWiredMachine(t *testing.T) {
	ac := New()
	m := mrf.New()
	m.Observer = ac

	m.WriteByte(0x100, 0xAA)
	m.ReadByte(0x100)
	m.ReadByte(0x100)

	snap := ac.Snapshot()
	c, ok := snap[0x100]
	if !ok {
		t.Fatalf("expected an entry for address 0x100")
	}
	if c.Writes != 1 {
		t.Fatalf("Writes = %d, want 1", c.Writes)
	}
	if c.Reads != 2 {
		t.Fatalf("Reads = %d, want 2", c.Reads)
	}
}

func TestAccessCounterReset(t *testing.T) {
	ac := New()
	ac.OnRead(5, 1)
	if len(ac.Snapshot()) != 1 {
		t.Fatalf("expected one entry before reset")
	}
	ac.Reset()
	if len(ac.Snapshot()) != 0 {
		t.Fatalf("expected no entries after reset")
	}
}

func TestAccessCounterHottest(t *testing.T) {
	ac := New()
	for i := 0; i < 5; i++ {
		ac.OnRead(1, 1)
	}
	for i := 0; i < 2; i++ {
		ac.OnRead(2, 1)
	}
	ac.OnWrite(3, 1, 0)

	hot := ac.Hottest(2)
	if len(hot) != 2 {
		t.Fatalf("Hottest(2) returned %d addresses, want 2", len(hot))
	}
	if hot[0] != 1 {
		t.Fatalf("hottest address = %d, want 1", hot[0])
	}
}

func TestAccessCounterQuietReadsDoNotCount(t *testing.T) {
	ac := New()
	m := mrf.New()
	m.Observer = ac
	m.WriteByte(0x10, 1)
	m.ReadByteQuiet(0x10)

	snap := ac.Snapshot()
	c := snap[0x10]
	if c.Reads != 0 {
		t.Fatalf("quiet read should not be counted, Reads = %d", c.Reads)
	}
	if c.Writes != 1 {
		t.Fatalf("Writes = %d, want 1", c.Writes)
	}
}
