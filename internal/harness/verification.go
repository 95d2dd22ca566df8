package harness

import (
	"fmt"

	"github.com/roach88/plotcheck/internal/expect"
	"github.com/roach88/plotcheck/internal/extract"
	"github.com/roach88/plotcheck/internal/scene"
	"github.com/roach88/plotcheck/internal/verify"
)

type extractionKey struct {
	subplot string
	kind    scene.Kind
}

// verification runs the checks one expectation implies against one scene.
type verification struct {
	h     *Harness
	spec  *expect.Spec
	sc    scene.Scene
	cache map[extractionKey]*extract.Extraction
}

func newVerification(h *Harness, spec *expect.Spec, sc scene.Scene) *verification {
	return &verification{
		h:     h,
		spec:  spec,
		sc:    sc,
		cache: make(map[extractionKey]*extract.Extraction),
	}
}

// run returns the top-level checks. A non-nil error means a missing
// structure was escalated; the checks gathered up to that point are still
// returned.
func (v *verification) run() ([]*verify.Result, error) {
	var checks []*verify.Result

	present := make(map[string]bool)
	for _, sp := range v.sc.Subplots() {
		present[sp.ID] = true
		channels := v.spec.ChannelsFor(sp.ID)
		if len(channels) == 0 {
			continue
		}
		sub, err := v.subplot(sp, channels)
		checks = append(checks, sub)
		if err != nil {
			return checks, err
		}
	}
	for _, id := range v.spec.Subplots() {
		if present[id] {
			continue
		}
		if v.spec.FailOnMissing {
			return checks, verify.NewMissingStructureError(id, "expected subplot not found in scene")
		}
		checks = append(checks, verify.Fail(id, verify.KindMissingStructure,
			"expected subplot not found in scene", map[string]any{"subplot": id}))
	}

	if v.spec.Strategy() != "" {
		r, err := v.strategy()
		if r != nil {
			checks = append(checks, r)
		}
		if err != nil {
			return checks, err
		}
	}

	if v.spec.LegendExpected() {
		if v.spec.FailOnMissing && len(v.legends()) == 0 {
			return checks, verify.NewMissingStructureError("visibility", "no legend found in scene")
		}
		checks = append(checks, verify.CheckVisibility(v.sc, v.spec.ExpectedLegendCount))
	}
	return checks, nil
}

// subplot runs variation and consistency checks for the channels expected
// in sp.
func (v *verification) subplot(sp scene.Subplot, channels []scene.Channel) (*verify.Result, error) {
	var checks []*verify.Result
	done := func() *verify.Result { return verify.Compose(sp.ID, checks...) }

	for _, ch := range channels {
		optional := v.spec.Optional(ch)
		kinds := v.kindsFor(sp, ch)
		seq := extract.Sequence{Channel: ch}
		var errs []extract.ValueError

		if len(kinds) == 0 && !optional {
			if v.spec.FailOnMissing {
				return done(), verify.NewMissingStructureError(sp.ID,
					fmt.Sprintf("no artifacts carrying %s", ch))
			}
			checks = append(checks, verify.Fail(verify.CheckName(sp.ID, seq, "variation"),
				verify.KindMissingStructure,
				fmt.Sprintf("no artifacts carrying %s", ch),
				map[string]any{"channel": string(ch), "source": sp.ID, "kinds": kindNames(sp.Kinds())}))
			continue
		}

		exs := make([]*extract.Extraction, len(kinds))
		for i, k := range kinds {
			exs[i] = v.extraction(sp, k)
		}
		for _, ex := range extract.Contributors(ch, exs) {
			seq = seq.Concat(ex.Sequence(ch))
			errs = append(errs, errorsFor(ex, ch)...)
		}
		if len(errs) > 0 {
			checks = append(checks, v.extractionFailure(verify.CheckName(sp.ID, seq, "extraction"), ch, errs))
		}

		checks = append(checks, verify.CheckVariation(seq, verify.VariationOptions{
			Threshold:   v.spec.Threshold(),
			Tolerance:   v.spec.Tol(),
			Mandatory:   !optional,
			SampleLimit: v.spec.Samples(),
			Source:      sp.ID,
		}))

		if !v.spec.VerifyLegendConsistency || (optional && seq.Empty()) {
			continue
		}
		r, err := v.consistency(sp, seq)
		checks = append(checks, r...)
		if err != nil {
			return done(), err
		}
	}
	return done(), nil
}

// consistency compares seq with the legend explaining it.
func (v *verification) consistency(sp scene.Subplot, seq extract.Sequence) ([]*verify.Result, error) {
	ch := seq.Channel
	name := verify.CheckName(sp.ID, seq, "consistency")
	lg, ex := v.legendFor(sp, ch)
	if lg == nil {
		if v.spec.FailOnMissing {
			return nil, verify.NewMissingStructureError(sp.ID, fmt.Sprintf("no legend explains %s", ch))
		}
		return []*verify.Result{verify.Fail(name, verify.KindMissingStructure,
			fmt.Sprintf("no legend explains %s", ch),
			map[string]any{"channel": string(ch), "source": sp.ID})}, nil
	}

	var out []*verify.Result
	if errs := errorsFor(ex, ch); len(errs) > 0 {
		out = append(out, v.extractionFailure(verify.CheckName(ex.Source, seq, "extraction"), ch, errs))
	}
	out = append(out, verify.CheckConsistency(seq, ex.Sequence(ch), verify.ConsistencyOptions{
		Tolerance:   v.spec.Tol(),
		SampleLimit: v.spec.Samples(),
		Source:      sp.ID,
	}))
	return out, nil
}

// legendFor picks the legend that explains ch in sp: the subplot's own
// legend, else a figure legend declared for ch, else the first figure
// legend whose entries carry ch.
func (v *verification) legendFor(sp scene.Subplot, ch scene.Channel) (*scene.Legend, *extract.Extraction) {
	if sp.Legend != nil {
		return sp.Legend, v.h.extractor.Legend(sp.Legend, sp.ID+"/legend")
	}
	figure := v.sc.FigureLegends()
	for i := range figure {
		if figure[i].Channel == ch {
			return &figure[i], v.h.extractor.Legend(&figure[i], figureLegendSource(i))
		}
	}
	for i := range figure {
		ex := v.h.extractor.Legend(&figure[i], figureLegendSource(i))
		if !ex.Sequence(ch).Empty() {
			return &figure[i], ex
		}
	}
	return nil, nil
}

// strategy checks the legend arrangement against counts derived from every
// subplot.
func (v *verification) strategy() (*verify.Result, error) {
	legends := v.legends()
	if len(legends) == 0 && v.spec.FailOnMissing {
		return nil, verify.NewMissingStructureError("strategy", "no legend found in scene")
	}

	channels := v.spec.AllChannels()
	derive := channels
	if len(derive) == 0 {
		derive = scene.AllChannels()
	}
	var exs []*extract.Extraction
	for _, sp := range v.sc.Subplots() {
		for _, k := range sp.Kinds() {
			exs = append(exs, v.extraction(sp, k))
		}
	}

	return verify.CheckStrategy(legends, verify.StrategyExpectation{
		Strategy:           v.spec.Strategy(),
		Channels:           channels,
		ExpectedTotal:      v.spec.ExpectedTotalEntries,
		ExpectedPerChannel: v.spec.ChannelEntries(),
		Derived:            verify.DeriveCounts(exs, derive, v.spec.Tol()),
		Tolerance:          v.spec.Tol(),
	})
}

// legends returns the figure legends followed by the subplot legends.
func (v *verification) legends() []scene.Legend {
	out := append([]scene.Legend(nil), v.sc.FigureLegends()...)
	for _, sp := range v.sc.Subplots() {
		if sp.Legend != nil {
			out = append(out, *sp.Legend)
		}
	}
	return out
}

func (v *verification) extraction(sp scene.Subplot, k scene.Kind) *extract.Extraction {
	key := extractionKey{sp.ID, k}
	if ex, ok := v.cache[key]; ok {
		return ex
	}
	ex := v.h.extractor.Subplot(sp, k)
	v.cache[key] = ex
	return ex
}

// kindsFor returns the kinds present in sp whose table rules read ch.
func (v *verification) kindsFor(sp scene.Subplot, ch scene.Channel) []scene.Kind {
	var out []scene.Kind
	for _, k := range sp.Kinds() {
		if v.h.extractor.Supports(k, ch) {
			out = append(out, k)
		}
	}
	return out
}

func (v *verification) extractionFailure(name string, ch scene.Channel, errs []extract.ValueError) *verify.Result {
	msgs := make([]string, 0, len(errs))
	for _, e := range errs {
		msgs = append(msgs, e.Error())
	}
	if limit := v.spec.Samples(); len(msgs) > limit {
		msgs = msgs[:limit]
	}
	return verify.Fail(name, verify.KindExtraction,
		fmt.Sprintf("%d %s values could not be read: %s", len(errs), ch, errs[0].Reason),
		map[string]any{"channel": string(ch), "error_count": len(errs), "errors": msgs})
}

func errorsFor(ex *extract.Extraction, ch scene.Channel) []extract.ValueError {
	var out []extract.ValueError
	for _, e := range ex.Errors {
		if e.Channel == ch {
			out = append(out, e)
		}
	}
	return out
}

func figureLegendSource(i int) string { return fmt.Sprintf("figure[%d]", i) }

func kindNames(kinds []scene.Kind) []string {
	out := make([]string, len(kinds))
	for i, k := range kinds {
		out[i] = string(k)
	}
	return out
}
