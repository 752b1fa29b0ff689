package ublaster

import (
	"context"
	"testing"
)

type recordingBackend struct {
	writes [][]byte
}

func (r *recordingBackend) Open(ctx context.Context, vid, pid uint16, desc string) error { return nil }
func (r *recordingBackend) Close() error                                                 { return nil }
func (r *recordingBackend) Read(ctx context.Context, p []byte) (int, error)               { return 0, nil }
func (r *recordingBackend) Write(ctx context.Context, p []byte) (int, error) {
	cp := append([]byte(nil), p...)
	r.writes = append(r.writes, cp)
	return len(p), nil
}

func TestPacketBufferBoundary(t *testing.T) {
	ctx := context.Background()
	be := &recordingBackend{}
	pb := newPacketBuffer(be)

	for i := 0; i < 200; i++ {
		if err := pb.queueByte(ctx, byte(i)); err != nil {
			t.Fatalf("queueByte: %v", err)
		}
		if pb.bufidx > packetSize {
			t.Fatalf("bufidx exceeded packet size: %d", pb.bufidx)
		}
	}
	if err := pb.flush(ctx); err != nil {
		t.Fatalf("flush: %v", err)
	}

	for _, w := range be.writes {
		if len(w) < 1 || len(w) > packetSize {
			t.Fatalf("write length %d out of [1,64]", len(w))
		}
	}
}

func TestPacketBufferQueueBytesOverflow(t *testing.T) {
	ctx := context.Background()
	pb := newPacketBuffer(&recordingBackend{})
	pb.bufidx = packetSize - 2

	err := pb.queueBytes(ctx, nil, 3)
	if err == nil {
		t.Fatalf("expected ProgrammerError for overflow")
	}
	if _, ok := err.(*ProgrammerError); !ok {
		t.Fatalf("expected *ProgrammerError, got %T", err)
	}
}

func TestPacketBufferShortWriteRetried(t *testing.T) {
	ctx := context.Background()
	be := &shortWriteBackend{chunk: 10}
	pb := newPacketBuffer(be)
	if err := pb.queueBytes(ctx, nil, 30); err != nil {
		t.Fatalf("queueBytes: %v", err)
	}
	if err := pb.flush(ctx); err != nil {
		t.Fatalf("flush: %v", err)
	}
	if be.total != 30 {
		t.Fatalf("total written = %d, want 30", be.total)
	}
}

type shortWriteBackend struct {
	chunk int
	total int
}

func (s *shortWriteBackend) Open(ctx context.Context, vid, pid uint16, desc string) error { return nil }
func (s *shortWriteBackend) Close() error                                                 { return nil }
func (s *shortWriteBackend) Read(ctx context.Context, p []byte) (int, error)               { return 0, nil }
func (s *shortWriteBackend) Write(ctx context.Context, p []byte) (int, error) {
	n := len(p)
	if n > s.chunk {
		n = s.chunk
	}
	s.total += n
	return n, nil
}
