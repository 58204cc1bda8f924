package bridge

import (
	"testing"

	"github.com/readm/vcdtrace"
)

type memChunkReader struct {
	data []byte
}

func (m memChunkReader) SeekAndChunks(fileOffset int64, chunkSize int, yield func(chunk []byte) (more bool, err error)) error {
	_, err := yield(m.data[fileOffset:])
	return err
}

func TestServerRunQuery(t *testing.T) {
	const content = "$var wire 1 ! clk $end\n" +
		"$enddefinitions $end\n" +
		"#0 0!\n#10 1!\n#20 0!\n"

	p := vcdtrace.New()
	p.BeginIndexing()
	if err := p.PushChunkForIndex([]byte(content), 0); err != nil {
		t.Fatalf("PushChunkForIndex: %v", err)
	}
	if err := p.FinishIndexing(); err != nil {
		t.Fatalf("FinishIndexing: %v", err)
	}

	srv := New(p, memChunkReader{data: []byte(content)})
	resp := srv.runQuery(QueryRequest{Begin: 0, End: 20, Signals: []int{0}, PixelTimeStep: -1})

	if resp.Error != "" {
		t.Fatalf("unexpected error: %s", resp.Error)
	}
	if resp.SessionID == "" {
		t.Fatalf("expected a non-empty session id")
	}
	if resp.Transitions1Bit == "" {
		t.Fatalf("expected a non-empty transitions payload")
	}
}

func TestServerRunQueryIsSerializedPerInstance(t *testing.T) {
	const content = "$var wire 1 ! clk $end\n" +
		"$enddefinitions $end\n" +
		"#0 0!\n#10 1!\n"

	p := vcdtrace.New()
	p.BeginIndexing()
	if err := p.PushChunkForIndex([]byte(content), 0); err != nil {
		t.Fatalf("PushChunkForIndex: %v", err)
	}
	if err := p.FinishIndexing(); err != nil {
		t.Fatalf("FinishIndexing: %v", err)
	}

	srv := New(p, memChunkReader{data: []byte(content)})
	done := make(chan struct{}, 2)
	for i := 0; i < 2; i++ {
		go func() {
			srv.runQuery(QueryRequest{Begin: 0, End: 10, Signals: []int{0}, PixelTimeStep: -1})
			done <- struct{}{}
		}()
	}
	<-done
	<-done
}
