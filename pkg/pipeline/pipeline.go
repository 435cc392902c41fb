// Package pipeline adapts a compiled soundlaw.Program to
// textual.Processor, so that a sequence of sound-change laws can sit
// inside a textual.Chain/Router alongside any other Parcel-based stage
// (grapheme-to-phoneme, transliteration, and so on).
package pipeline

import (
	"context"
	"strings"

	"github.com/benoit-pereira-da-silva/textual/pkg/carrier"

	"github.com/laut-go/diachron/pkg/feature"
	"github.com/laut-go/diachron/pkg/soundlaw"
	"github.com/laut-go/diachron/pkg/syllable"
	"github.com/laut-go/diachron/pkg/transducer"
)

// Processor rewrites every Fragment.Transformed of an inbound Parcel
// that carries a parseable IPA transcription, applying Program once
// per fragment. Parcel.Text and fragment coordinates are left
// untouched, the same contract the pack's g2p processors document for
// their own Result rewriting: a Processor only ever refines
// Transformed.
type Processor struct {
	Model   *feature.Model
	Program *soundlaw.Program
	Logger  transducer.Logger
}

// New builds a Processor. lg may be nil, in which case per-fragment
// parse/runtime failures are silently skipped, leaving that fragment
// unchanged.
func New(m *feature.Model, prog *soundlaw.Program, lg transducer.Logger) *Processor {
	return &Processor{Model: m, Program: prog, Logger: lg}
}

// Apply implements textual.Processor: it spawns one goroutine per call
// that rewrites Parcels as they arrive, draining (but discarding) the
// inbound channel on cancellation so upstream senders never block.
func (p *Processor) Apply(ctx context.Context, in <-chan carrier.Parcel) <-chan carrier.Parcel {
	if ctx == nil {
		ctx = context.Background()
	}

	out := make(chan carrier.Parcel)

	go func() {
		defer close(out)

		for {
			select {
			case <-ctx.Done():
				for range in {
				}
				return
			case parcel, ok := <-in:
				if !ok {
					return
				}

				processed := p.processParcel(parcel)

				select {
				case <-ctx.Done():
					for range in {
					}
					return
				case out <- processed:
				}
			}
		}
	}()

	return out
}

// processParcel parses each fragment's current transcription as a Word,
// runs Program across it, and writes the result's IPA rendering back.
// A fragment whose Transformed text does not parse as IPA against
// Model (e.g. it is still orthographic text a g2p stage upstream
// hasn't reached yet) is left unchanged and logged, per spec.md §7(c)'s
// "never abort the Word" containment policy applied one level up, at
// fragment granularity.
func (p *Processor) processParcel(parcel carrier.Parcel) carrier.Parcel {
	out := parcel
	out.Fragments = make([]carrier.Fragment, len(parcel.Fragments))
	copy(out.Fragments, parcel.Fragments)

	for i := range out.Fragments {
		frag := &out.Fragments[i]
		raw := strings.Trim(strings.TrimSpace(string(frag.Transformed)), "/")
		if raw == "" {
			continue
		}
		w, err := syllable.FromIPA(p.Model, raw)
		if err != nil {
			p.logf("pipeline: fragment %d: %v", i, err)
			continue
		}
		w = transducer.ApplyProgram(p.Model, w, p.Program, p.Logger)
		frag.Transformed = carrier.UTF8String(w.String())
	}
	return out
}

func (p *Processor) logf(format string, args ...any) {
	if p.Logger == nil {
		return
	}
	p.Logger.Printf(format, args...)
}
