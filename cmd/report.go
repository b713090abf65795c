package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/landsim/landsim/sim/registry"
	"github.com/landsim/landsim/sim/simulation"
)

// PrintReport writes the end-of-run summary.
func PrintReport(w io.Writer, s *simulation.Simulator, elapsed time.Duration) {
	results := s.Results()
	built, refused, hired, capped := 0, 0, 0, 0
	for _, r := range results {
		built += r.Built
		refused += r.NotBuilt
		hired += r.Hired
		capped += r.PriceCapped
	}
	state := s.State()
	comma := func(n int) string { return humanize.Comma(int64(n)) }

	fmt.Fprintln(w, "=== Simulation Report ===")
	fmt.Fprintf(w, "Years Simulated      : %d\n", len(results))
	fmt.Fprintf(w, "Dwellings            : %s (%s vacant)\n",
		comma(state.Dwellings.DwellingCount()), comma(state.Dwellings.Vacancies().Total()))
	fmt.Fprintf(w, "Vacant Jobs          : %s\n", comma(state.Jobs.Vacancies().Total()))
	fmt.Fprintf(w, "Dwellings Built      : %s (%s refused for lack of land)\n", comma(built), comma(refused))
	fmt.Fprintf(w, "Prices Capped        : %s\n", comma(capped))
	fmt.Fprintf(w, "Workers Hired        : %s\n", comma(hired))
	fmt.Fprintf(w, "Exhausted Searches   : %s\n", comma(state.Jobs.Exhausted()))
	if len(results) > 0 {
		fmt.Fprintf(w, "Developable Land     : %s\n", humanize.CommafWithDigits(results[len(results)-1].DevelopableLand, 2))
	}
	for _, kind := range []registry.Kind{registry.KindDwelling, registry.KindJob} {
		total := state.Issues.Total(kind)
		fmt.Fprintf(w, "Overflow (%-8s)   : %s\n", kind, comma(total))
		for _, region := range state.Issues.Regions(kind) {
			fmt.Fprintf(w, "  region %-6d       : %s\n", region, comma(state.Issues.Overflow(kind, region)))
		}
	}
	fmt.Fprintf(w, "Wall Time            : %s\n", elapsed.Round(time.Millisecond))
}
