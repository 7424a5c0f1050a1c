package console_test

import (
	"strings"
	"testing"

	"github.com/ardanlabs/blockledger/foundation/blockchain/ledger"
	"github.com/ardanlabs/blockledger/foundation/console"
	"github.com/pterm/pterm"
)

// Success and failure markers.
const (
	success = "✓"
	failed  = "✗"
)

func Test_Chain(t *testing.T) {
	pterm.DisableColor()
	defer pterm.EnableColor()

	t.Log("Given the need to show the chain in a terminal.")
	{
		t.Logf("\tTest 0:\tWhen rendering a chain of three blocks.")
		{
			l := ledger.New(ledger.Config{})
			l.Append("Block 1 - MORE 10 BTC")
			l.Append(strings.Repeat("x", 100))

			out, err := console.Chain(l.Blocks(), l.IsValid())
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to render the chain: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould be able to render the chain.", success)

			for _, exp := range []string{
				ledger.GenesisPayload,
				"Block 1 - MORE 10 BTC",
				console.Short(l.Latest().Hash),
				"Is Blockchain valid ? true",
			} {
				if !strings.Contains(out, exp) {
					t.Logf("\t%s\tTest 0:\tgot: %s", failed, out)
					t.Fatalf("\t%s\tTest 0:\tShould contain %q.", failed, exp)
				}
			}
			t.Logf("\t%s\tTest 0:\tShould contain the blocks and the validity.", success)

			if strings.Contains(out, strings.Repeat("x", 100)) {
				t.Fatalf("\t%s\tTest 0:\tShould truncate long payloads.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould truncate long payloads.", success)
		}
	}
}
