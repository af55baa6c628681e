package loop

import (
	"fmt"
	"sync"
	"time"

	"github.com/aclements/go-moremath/stats"

	"github.com/aclements/go-spa/pod"
)

// Profiler accumulates Iterate dispatch durations so a Loop's caller
// can read back a latency distribution (min/max/mean/percentiles).
// EncodeParam/DecodeLatencyStats carry that distribution as an Object
// POD of kind ObjectKindProfiler, the same wire shape a real support
// library would hand a monitoring client that asked for this loop's
// profiling parameter.
type Profiler struct {
	mu      sync.Mutex
	samples []float64
	start   time.Time

	maxSamples int
}

// NewProfiler returns a Profiler retaining up to 4096 most recent
// iteration-duration samples.
func NewProfiler() *Profiler {
	return &Profiler{maxSamples: 4096}
}

func (p *Profiler) startIteration() {
	p.start = time.Now()
}

func (p *Profiler) endIteration() {
	if p.start.IsZero() {
		return
	}
	elapsed := time.Since(p.start).Seconds() * 1e9 // nanoseconds, as a float64

	p.mu.Lock()
	defer p.mu.Unlock()
	p.samples = append(p.samples, elapsed)
	if over := len(p.samples) - p.maxSamples; over > 0 {
		p.samples = p.samples[over:]
	}
}

// LatencyStats summarizes the recorded iteration durations, all in
// nanoseconds. Count is 0 if no iteration has completed yet.
type LatencyStats struct {
	Count        int
	Min          float64
	Max          float64
	Mean         float64
	StdDev       float64
	Median       float64
	Percentile99 float64
}

// Stats computes the current latency distribution over every sample
// retained so far.
func (p *Profiler) Stats() LatencyStats {
	p.mu.Lock()
	xs := append([]float64(nil), p.samples...)
	p.mu.Unlock()

	if len(xs) == 0 {
		return LatencyStats{}
	}

	sample := stats.Sample{Xs: xs}
	sorted := sample.Copy().Sort()

	return LatencyStats{
		Count:        len(xs),
		Min:          sorted.Bounds().Low,
		Max:          sorted.Bounds().High,
		Mean:         sample.Mean(),
		StdDev:       sample.StdDev(),
		Median:       sorted.Quantile(0.5),
		Percentile99: sorted.Quantile(0.99),
	}
}

// Reset discards all recorded samples.
func (p *Profiler) Reset() {
	p.mu.Lock()
	p.samples = nil
	p.mu.Unlock()
}

// statKey identifies one property of an encoded Profiler object. These
// keys are local to this package, not part of the wire format's own
// well-known key set: no ParamKindProfile property schema was found in
// the source this module is grounded on, so the properties below are
// this profiler's own stat vocabulary, laid out the same (key, flags,
// value) way any other ObjectKind's properties are.
type statKey uint32

const (
	statKeyCount statKey = iota + 1
	statKeyMin
	statKeyMax
	statKeyMean
	statKeyStdDev
	statKeyMedian
	statKeyPercentile99
)

// EncodeParam encodes the profiler's current latency distribution as an
// Object POD of kind ObjectKindProfiler / param ParamKindProfile into
// buf, returning the written prefix.
func (p *Profiler) EncodeParam(buf []byte) ([]byte, error) {
	s := p.Stats()
	b := pod.NewBuilder(buf)
	b.PushObject(pod.ObjectKindProfiler, pod.ParamKindProfile, func(o *pod.ObjectBuilder) {
		pod.PushPropertyLong(o, statKeyCount, 0, int64(s.Count))
		pod.PushPropertyDouble(o, statKeyMin, 0, s.Min)
		pod.PushPropertyDouble(o, statKeyMax, 0, s.Max)
		pod.PushPropertyDouble(o, statKeyMean, 0, s.Mean)
		pod.PushPropertyDouble(o, statKeyStdDev, 0, s.StdDev)
		pod.PushPropertyDouble(o, statKeyMedian, 0, s.Median)
		pod.PushPropertyDouble(o, statKeyPercentile99, 0, s.Percentile99)
	})
	return b.Build()
}

// DecodeLatencyStats decodes an Object POD previously written by
// EncodeParam back into a LatencyStats, tolerating properties in any
// order and skipping any this package doesn't recognize.
func DecodeLatencyStats(buf []byte) (LatencyStats, error) {
	var result LatencyStats
	p := pod.NewParser(buf)
	err := p.PopObject(pod.ObjectKindProfiler, func(op *pod.ObjectParser, _ pod.ParamKind) {
		for {
			key, _, value, ok, perr := op.PopProperty()
			if perr != nil || !ok {
				return
			}
			switch statKey(key) {
			case statKeyCount:
				if v, err := pod.DecodeRawPrimitive[int64](value); err == nil {
					result.Count = int(v)
				}
			case statKeyMin:
				result.Min, _ = pod.DecodeRawPrimitive[float64](value)
			case statKeyMax:
				result.Max, _ = pod.DecodeRawPrimitive[float64](value)
			case statKeyMean:
				result.Mean, _ = pod.DecodeRawPrimitive[float64](value)
			case statKeyStdDev:
				result.StdDev, _ = pod.DecodeRawPrimitive[float64](value)
			case statKeyMedian:
				result.Median, _ = pod.DecodeRawPrimitive[float64](value)
			case statKeyPercentile99:
				result.Percentile99, _ = pod.DecodeRawPrimitive[float64](value)
			}
		}
	})
	if err != nil {
		return LatencyStats{}, fmt.Errorf("loop: decode profiler param: %w", err)
	}
	return result, nil
}
