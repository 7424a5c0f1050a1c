// Package console renders the ledger for display in a terminal.
package console

import (
	"fmt"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/ardanlabs/blockledger/foundation/blockchain/ledger"
	"github.com/pterm/pterm"
)

// maxPayload is the number of runes of a payload shown in a table cell.
const maxPayload = 40

// Chain renders the blocks as a table followed by the validity of the chain.
func Chain(blocks []ledger.Block, valid bool) (string, error) {
	data := pterm.TableData{
		{"Index", "Time", "Prev Hash", "Hash", "Payload"},
	}

	for _, b := range blocks {
		data = append(data, []string{
			strconv.FormatUint(b.Index, 10),
			time.UnixMilli(int64(b.Timestamp)).UTC().Format(time.RFC3339Nano),
			Short(b.PrevHash),
			Short(b.Hash),
			truncate(b.Payload),
		})
	}

	table, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return "", fmt.Errorf("rendering chain: %w", err)
	}

	return table + "\n" + Validity(valid), nil
}

// Validity renders the validity of the chain.
func Validity(valid bool) string {
	if valid {
		return pterm.FgGreen.Sprint("Is Blockchain valid ? true")
	}
	return pterm.FgRed.Sprint("Is Blockchain valid ? false")
}

// Short abbreviates a digest to its prefix and suffix.
func Short(hash string) string {
	if len(hash) <= 18 {
		return hash
	}
	return hash[:10] + ".." + hash[len(hash)-6:]
}

func truncate(s string) string {
	if utf8.RuneCountInString(s) <= maxPayload {
		return strconv.Quote(s)
	}

	r := []rune(s)
	return strconv.Quote(string(r[:maxPayload])) + "..."
}
