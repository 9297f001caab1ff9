// Package compare implements the block-wise exact comparison of a decoded pixel
// buffer against its golden reference.
//
// The comparison is always length-first: buffers of different length are
// reported as a LengthMismatch without their content being read. Equal-length
// buffers are scanned in fixed-size blocks, the last block possibly shorter.
// The block size only affects throughput and the granularity of the reported
// offset; any block size yields the same verdict.
package compare

import (
	"bytes"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
)

// DefaultBlockSize is the block size used by the zero Comparator
const DefaultBlockSize = 32

// minBlocksPerWorker keeps small buffers on the sequential path
const minBlocksPerWorker = 1024

// Verdict is the outcome of one comparison
type Verdict int

const (
	// Pass means both buffers hold identical bytes
	Pass Verdict = iota
	// LengthMismatch means the buffers differ in length; content was not compared
	LengthMismatch
	// ContentMismatch means a block differs
	ContentMismatch
)

func (v Verdict) String() string {
	switch v {
	case Pass:
		return "pass"
	case LengthMismatch:
		return "length-mismatch"
	case ContentMismatch:
		return "content-mismatch"
	default:
		return fmt.Sprintf("verdict(%d)", int(v))
	}
}

// Result is the verdict plus its minimal diagnostic
type Result struct {
	Verdict     Verdict
	ExpectedLen int64 // reference length
	ActualLen   int64 // decoded buffer length
	Offset      int64 // start of the first differing block (ContentMismatch only)
	BlockSize   int
}

// Passed reports whether the buffers matched
func (r Result) Passed() bool {
	return r.Verdict == Pass
}

// Err returns nil on Pass and a typed mismatch error otherwise
func (r Result) Err() error {
	switch r.Verdict {
	case Pass:
		return nil
	case LengthMismatch:
		return &LengthMismatchError{Expected: r.ExpectedLen, Actual: r.ActualLen}
	default:
		return &ContentMismatchError{Offset: r.Offset, BlockSize: r.BlockSize}
	}
}

func (r Result) String() string {
	if err := r.Err(); err != nil {
		return err.Error()
	}
	return fmt.Sprintf("pass (%d bytes)", r.ActualLen)
}

// Comparator compares buffers block by block. The zero value is ready to use.
type Comparator struct {
	// BlockSize is the scan unit in bytes; values < 1 select DefaultBlockSize
	BlockSize int

	// Workers > 1 splits the block scan of large buffers across goroutines
	Workers int
}

// blockSize returns the scan unit for a buffer of n bytes, never larger than n
// so that block arithmetic cannot overflow.
func (c Comparator) blockSize(n int) int {
	bs := c.BlockSize
	if bs < 1 {
		bs = DefaultBlockSize
	}
	if n > 0 && bs > n {
		bs = n
	}
	return bs
}

// Compare compares a decoded buffer against the expected reference bytes
func (c Comparator) Compare(actual, expected []byte) Result {
	bs := c.blockSize(len(actual))
	res := Result{
		ExpectedLen: int64(len(expected)),
		ActualLen:   int64(len(actual)),
		BlockSize:   bs,
	}
	if len(actual) != len(expected) {
		res.Verdict = LengthMismatch
		return res
	}

	n := len(actual)
	blocks := n / bs
	if n%bs != 0 {
		blocks++
	}

	var first int
	if c.Workers > 1 && blocks >= c.Workers*minBlocksPerWorker {
		first = scanParallel(actual, expected, bs, blocks, c.Workers)
	} else {
		first = scanRange(actual, expected, bs, 0, blocks, nil)
	}

	if first < blocks {
		res.Verdict = ContentMismatch
		res.Offset = int64(first) * int64(bs)
	}
	return res
}

// scanRange returns the index of the first differing block in [from, to), or
// to when all match. It gives up early once limit drops to or below the block
// being scanned, since a lower differing block is already known.
func scanRange(a, b []byte, bs, from, to int, limit *atomic.Int64) int {
	n := len(a)
	for i := from; i < to; i++ {
		if limit != nil && int64(i) >= limit.Load() {
			return to
		}
		start := i * bs
		end := start + bs
		if end > n {
			end = n
		}
		if !bytes.Equal(a[start:end], b[start:end]) {
			return i
		}
	}
	return to
}

func scanParallel(a, b []byte, bs, blocks, workers int) int {
	var first atomic.Int64
	first.Store(int64(blocks))

	per := (blocks + workers - 1) / workers
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		from := w * per
		to := from + per
		if to > blocks {
			to = blocks
		}
		if from >= to {
			break
		}
		wg.Add(1)
		go func(from, to int) {
			defer wg.Done()
			if i := scanRange(a, b, bs, from, to, &first); i < to {
				for {
					cur := first.Load()
					if int64(i) >= cur || first.CompareAndSwap(cur, int64(i)) {
						return
					}
				}
			}
		}(from, to)
	}
	wg.Wait()
	return int(first.Load())
}

// CompareReader compares a decoded buffer against a reference stream of the
// declared size. The length pre-check uses size, so nothing is read when the
// lengths differ. A stream that ends early or runs past size is reported as a
// LengthMismatch carrying the stream's real length. Read failures are returned
// as errors, never as verdicts.
func (c Comparator) CompareReader(actual []byte, r io.Reader, size int64) (Result, error) {
	bs := c.blockSize(len(actual))
	res := Result{
		ExpectedLen: size,
		ActualLen:   int64(len(actual)),
		BlockSize:   bs,
	}
	if size != int64(len(actual)) {
		res.Verdict = LengthMismatch
		return res, nil
	}

	n := len(actual)
	block := make([]byte, bs)
	for start := 0; start < n; start += bs {
		m := bs
		if n-start < m {
			m = n - start
		}
		k, err := io.ReadFull(r, block[:m])
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			res.Verdict = LengthMismatch
			res.ExpectedLen = int64(start + k)
			return res, nil
		}
		if err != nil {
			return Result{}, fmt.Errorf("read reference at offset %d: %w", start, err)
		}
		if !bytes.Equal(actual[start:start+m], block[:m]) {
			res.Verdict = ContentMismatch
			res.Offset = int64(start)
			return res, nil
		}
	}

	extra, err := io.Copy(io.Discard, r)
	if err != nil {
		return Result{}, fmt.Errorf("read reference past offset %d: %w", n, err)
	}
	if extra > 0 {
		res.Verdict = LengthMismatch
		res.ExpectedLen = int64(n) + extra
	}
	return res, nil
}
